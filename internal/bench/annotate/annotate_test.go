package annotate

import (
	"testing"

	"github.com/DjordjeVuckovic/pipebench/internal/bench/spec"
	"github.com/DjordjeVuckovic/pipebench/internal/bench/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFlat() *table.Flat {
	return &table.Flat{
		Stages: []string{"data", "method"},
		Fields: []string{"score"},
		Rows: []table.FlatRow{
			{Labels: []string{"small", "a"}, Values: []any{1.0}},
			{Labels: []string{"large", "a"}, Values: []any{2.0}},
			{Labels: []string{"small", "b"}, Values: []any{3.0}},
		},
	}
}

func TestAnnotate(t *testing.T) {
	flat := sampleFlat()

	out, err := Annotate(flat,
		Lookup{Column: "data", Values: map[string]map[string]any{
			"small": {"truth": 3, "size": "s"},
			"large": {"truth": 9},
		}},
		Lookup{Column: "method", Values: map[string]map[string]any{
			"a": {"family": "mean"},
			"b": {"family": "median"},
		}},
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"score", "size", "truth", "family"}, out.Fields)
	assert.Equal(t, []any{1.0, "s", 3, "mean"}, out.Rows[0].Values)
	assert.Equal(t, []any{2.0, nil, 9, "mean"}, out.Rows[1].Values)
	assert.Equal(t, []any{3.0, "s", 3, "median"}, out.Rows[2].Values)

	v, ok := out.Value(1, "truth")
	require.True(t, ok)
	assert.Equal(t, 9, v)

	assert.Equal(t, []string{"score"}, flat.Fields, "input must not be modified")
	assert.Len(t, flat.Rows[0].Values, 1)
}

func TestAnnotate_Errors(t *testing.T) {
	t.Run("missing label", func(t *testing.T) {
		_, err := Annotate(sampleFlat(), Lookup{Column: "data", Values: map[string]map[string]any{
			"small": {"truth": 3},
		}})
		var missing *MissingAnnotationError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "large", missing.Label)
	})

	t.Run("unknown column", func(t *testing.T) {
		_, err := Annotate(sampleFlat(), Lookup{Column: "nope"})
		assert.ErrorIs(t, err, table.ErrUnknownColumn)
	})

	t.Run("field collision", func(t *testing.T) {
		_, err := Annotate(sampleFlat(), Lookup{Column: "data", Values: map[string]map[string]any{
			"small": {"score": 1},
			"large": {"score": 2},
		}})
		var collision *FieldCollisionError
		require.ErrorAs(t, err, &collision)
		assert.Equal(t, "score", collision.Field)
	})

	t.Run("nil flat", func(t *testing.T) {
		_, err := Annotate(nil)
		assert.ErrorIs(t, err, table.ErrNilTable)
	})
}

func TestFromSpec(t *testing.T) {
	lookups := FromSpec(spec.Annotations{
		"method": {"a": {"x": 1}},
		"data":   {"small": {"truth": 3}},
	})
	require.Len(t, lookups, 2)
	assert.Equal(t, "data", lookups[0].Column)
	assert.Equal(t, "method", lookups[1].Column)
	assert.Empty(t, FromSpec(nil))
}
