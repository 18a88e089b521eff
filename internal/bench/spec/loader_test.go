package spec

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DjordjeVuckovic/pipebench/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSpec = `
name: normalise-impute
workers: 4
datasets:
  - name: small
    source: synthetic
    params: {rows: 20, cols: 4, missing: 0.1, seed: 1}
  - name: wide
    source: synthetic
    params: {rows: 10, cols: 12}
stages:
  - name: impute
    candidates:
      - method: identity
        label: none
      - method: impute_constant
        params: {value: 0}
      - method: impute_mean
  - name: scale
    candidates:
      - method: scale_power
        sweep:
          - param: power
            values: [1, 2]
        mode: cross
annotations:
  data:
    small: {truth: 3}
`

func TestParse(t *testing.T) {
	t.Run("valid spec", func(t *testing.T) {
		s, err := Parse([]byte(validSpec))
		require.NoError(t, err)

		assert.Equal(t, "normalise-impute", s.Name)
		assert.Equal(t, 4, s.Workers)
		assert.Len(t, s.Datasets, 2)
		require.Len(t, s.Stages, 2)
		assert.Equal(t, "impute", s.Stages[0].Name)
		assert.Len(t, s.Stages[0].Candidates, 3)
		assert.Equal(t, "none", s.Stages[0].Candidates[0].Label)

		sweep := s.Stages[1].Candidates[0].Sweep
		require.Len(t, sweep, 1)
		assert.Equal(t, "power", sweep[0].Param)
		assert.Equal(t, []any{1, 2}, sweep[0].Values)

		assert.Equal(t, 3, s.Annotations["data"]["small"]["truth"])
	})

	t.Run("json body", func(t *testing.T) {
		s, err := Parse([]byte(`{"name": "j", "datasets": [{"name": "a", "source": "synthetic"}],
			"stages": [{"name": "s", "candidates": [{"method": "identity"}]}]}`))
		require.NoError(t, err)
		assert.Equal(t, "j", s.Name)
	})

	t.Run("defaults applied", func(t *testing.T) {
		s, err := Parse([]byte(`
name: d
datasets: [{name: a, source: synthetic}]
stages: [{name: s, candidates: [{method: identity}]}]
`))
		require.NoError(t, err)
		assert.Equal(t, DefaultWorkers, s.Workers)
	})
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "no name",
			yaml:    `{datasets: [{name: a, source: s}], stages: [{name: x, candidates: [{method: m}]}]}`,
			wantErr: "no name",
		},
		{
			name:    "no datasets",
			yaml:    `{name: n, datasets: [], stages: [{name: x, candidates: [{method: m}]}]}`,
			wantErr: "no datasets",
		},
		{
			name:    "no stages",
			yaml:    `{name: n, datasets: [{name: a, source: s}]}`,
			wantErr: "no stages",
		},
		{
			name:    "duplicate dataset",
			yaml:    `{name: n, datasets: [{name: a, source: s}, {name: a, source: s}], stages: [{name: x, candidates: [{method: m}]}]}`,
			wantErr: "duplicate dataset",
		},
		{
			name:    "dataset without source",
			yaml:    `{name: n, datasets: [{name: a}], stages: [{name: x, candidates: [{method: m}]}]}`,
			wantErr: "no source",
		},
		{
			name:    "duplicate stage",
			yaml:    `{name: n, datasets: [{name: a, source: s}], stages: [{name: x, candidates: [{method: m}]}, {name: x, candidates: [{method: m}]}]}`,
			wantErr: "already used",
		},
		{
			name:    "reserved stage",
			yaml:    `{name: n, datasets: [{name: a, source: s}], stages: [{name: data, candidates: [{method: m}]}]}`,
			wantErr: "reserved",
		},
		{
			name:    "stage without candidates",
			yaml:    `{name: n, datasets: [{name: a, source: s}], stages: [{name: x, candidates: []}]}`,
			wantErr: "no candidates",
		},
		{
			name:    "candidate without method",
			yaml:    `{name: n, datasets: [{name: a, source: s}], stages: [{name: x, candidates: [{label: l}]}]}`,
			wantErr: "no method",
		},
		{
			name:    "unknown mode",
			yaml:    `{name: n, datasets: [{name: a, source: s}], stages: [{name: x, candidates: [{method: m, mode: diag, sweep: [{param: k, values: [1]}]}]}]}`,
			wantErr: "unknown mode",
		},
		{
			name:    "empty sweep values",
			yaml:    `{name: n, datasets: [{name: a, source: s}], stages: [{name: x, candidates: [{method: m, sweep: [{param: k, values: []}]}]}]}`,
			wantErr: "has no values",
		},
		{
			name:    "param fixed and swept",
			yaml:    `{name: n, datasets: [{name: a, source: s}], stages: [{name: x, candidates: [{method: m, params: {k: 1}, sweep: [{param: k, values: [2]}]}]}]}`,
			wantErr: "both fixed and swept",
		},
		{
			name:    "unknown annotation column",
			yaml:    `{name: n, datasets: [{name: a, source: s}], stages: [{name: x, candidates: [{method: m}]}], annotations: {y: {a: {t: 1}}}}`,
			wantErr: "unknown stage column",
		},
		{
			name:    "malformed yaml",
			yaml:    `name: [`,
			wantErr: "parse spec YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			var ve *apperr.ValidationError
			assert.True(t, errors.As(err, &ve))
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validSpec), 0644))

	s, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "normalise-impute", s.Name)

	_, err = LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read spec file")
}
