package runner

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/DjordjeVuckovic/pipebench/internal/bench/paramseq"
	"github.com/DjordjeVuckovic/pipebench/internal/bench/registry"
	"github.com/DjordjeVuckovic/pipebench/internal/bench/spec"
	"github.com/DjordjeVuckovic/pipebench/internal/bench/table"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry(t *testing.T) *registry.Registry[int] {
	t.Helper()
	reg := registry.New[int]()
	require.NoError(t, reg.RegisterSource(registry.Source[int]{
		Name:     "const",
		Params:   []string{"value"},
		Defaults: paramseq.Args{"value": 0},
		Load: func(args paramseq.Args) (int, error) {
			return args.Int("value")
		},
	}))
	require.NoError(t, reg.RegisterMethod(paramseq.Func[int]{
		Name: "identity",
		Fn:   func(a int, _ paramseq.Args) (int, error) { return a, nil },
	}))
	require.NoError(t, reg.RegisterMethod(paramseq.Func[int]{
		Name:     "add",
		Params:   []string{"n"},
		Defaults: paramseq.Args{"n": 1},
		Fn: func(a int, args paramseq.Args) (int, error) {
			n, err := args.Int("n")
			return a + n, err
		},
	}))
	require.NoError(t, reg.RegisterMethod(paramseq.Func[int]{
		Name:   "affine",
		Params: []string{"m", "c"},
		Fn: func(a int, args paramseq.Args) (int, error) {
			m, err := args.Int("m")
			if err != nil {
				return 0, err
			}
			c, err := args.Int("c")
			return a*m + c, err
		},
	}))
	require.NoError(t, reg.RegisterMethod(paramseq.Func[int]{
		Name: "fail_on_odd",
		Fn: func(a int, _ paramseq.Args) (int, error) {
			if a%2 != 0 {
				return 0, errors.New("odd input")
			}
			return a, nil
		},
	}))
	return reg
}

func pipeline() *spec.PipelineSpec {
	return &spec.PipelineSpec{
		Name:    "ints",
		Workers: 1,
		Datasets: []spec.Dataset{
			{Name: "one", Source: "const", Params: map[string]any{"value": 1}},
			{Name: "ten", Source: "const", Params: map[string]any{"value": 10}},
		},
		Stages: []spec.Stage{
			{Name: "shift", Candidates: []spec.Candidate{
				{Method: "identity"},
				{Method: "add"},
				{Method: "add", Params: map[string]any{"n": 5}},
			}},
			{Name: "fit", Candidates: []spec.Candidate{
				{Method: "affine", Params: map[string]any{"c": 0}, Sweep: []spec.Sweep{{Param: "m", Values: []any{1, 2}}}},
			}},
		},
	}
}

func TestRunner_Run(t *testing.T) {
	for _, workers := range []int{1, 4} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			r := New(testRegistry(t), Config{Workers: workers})

			run, err := r.Run(context.Background(), pipeline())
			require.NoError(t, err)

			assert.Equal(t, "ints", run.Name)
			assert.Equal(t, workers, run.Workers)
			assert.NotEqual(t, uuid.Nil, run.ID)
			assert.Equal(t, []string{"shift", "fit"}, run.StageNames())

			tbl := run.Table
			assert.Equal(t, []string{"data", "shift", "fit", "result"}, tbl.Columns())
			require.Equal(t, 12, tbl.Len())

			shift, err := tbl.Column("shift")
			require.NoError(t, err)
			assert.Equal(t, []string{"identity", "identity", "add", "add", "add(n = 5)", "add(n = 5)"}, shift[:6])

			fit, err := tbl.Column("fit")
			require.NoError(t, err)
			assert.Equal(t, "affine(m = 1)", fit[0])
			assert.Equal(t, "affine(m = 2)", fit[1])

			assert.Equal(t, []int{1, 2, 2, 4, 6, 12, 10, 20, 11, 22, 15, 30}, tbl.Results())

			require.Len(t, run.Stages, 2)
			assert.Equal(t, 6, run.Stages[0].Rows)
			assert.Equal(t, 6, run.Stages[0].Latency.Samples)
			assert.Len(t, run.Stages[0].PerCand, 3)
			assert.Equal(t, 2, run.Stages[0].PerCand[1].Latency.Samples)
		})
	}
}

func TestRunner_WorkersFromSpec(t *testing.T) {
	ps := pipeline()
	ps.Workers = 3

	run, err := New(testRegistry(t), DefaultConfig()).Run(context.Background(), ps)
	require.NoError(t, err)
	assert.Equal(t, 3, run.Workers)
}

func TestRunner_Observer(t *testing.T) {
	var calls atomic.Int64
	r := New(testRegistry(t), Config{Workers: 2}, WithObserver[int](func(table.Observation) {
		calls.Add(1)
	}))

	_, err := r.Run(context.Background(), pipeline())
	require.NoError(t, err)
	assert.Equal(t, int64(6+12), calls.Load())
}

func TestRunner_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*spec.PipelineSpec)
		wantErr string
	}{
		{
			name:    "unknown source",
			mutate:  func(ps *spec.PipelineSpec) { ps.Datasets[0].Source = "nope" },
			wantErr: `unknown source "nope"`,
		},
		{
			name:    "unknown source param",
			mutate:  func(ps *spec.PipelineSpec) { ps.Datasets[0].Params = map[string]any{"x": 1} },
			wantErr: `load dataset "one"`,
		},
		{
			name:    "unknown method",
			mutate:  func(ps *spec.PipelineSpec) { ps.Stages[0].Candidates[0].Method = "nope" },
			wantErr: `unknown method "nope"`,
		},
		{
			name: "unknown sweep param",
			mutate: func(ps *spec.PipelineSpec) {
				ps.Stages[1].Candidates[0].Sweep[0].Param = "z"
			},
			wantErr: `"z" is not a parameter of affine`,
		},
		{
			name: "duplicate candidate name",
			mutate: func(ps *spec.PipelineSpec) {
				ps.Stages[0].Candidates = append(ps.Stages[0].Candidates, spec.Candidate{Method: "identity"})
			},
			wantErr: `duplicate name "identity"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps := pipeline()
			tt.mutate(ps)
			_, err := New(testRegistry(t), DefaultConfig()).Run(context.Background(), ps)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRunner_CandidateFailure(t *testing.T) {
	ps := pipeline()
	ps.Stages = append(ps.Stages, spec.Stage{
		Name:       "check",
		Candidates: []spec.Candidate{{Method: "fail_on_odd"}},
	})

	_, err := New(testRegistry(t), Config{Workers: 4}).Run(context.Background(), ps)
	require.Error(t, err)

	var invErr *table.CandidateInvocationError
	require.ErrorAs(t, err, &invErr)
	assert.Equal(t, "check", invErr.Stage)
	assert.Equal(t, "fail_on_odd", invErr.Candidate)
	assert.Equal(t, 0, invErr.Row)
}

func TestCandidateName(t *testing.T) {
	f := paramseq.Func[int]{Name: "affine", Params: []string{"m", "c"}}

	assert.Equal(t, "affine", candidateName(f, spec.Candidate{Method: "affine"}))
	assert.Equal(t, "custom", candidateName(f, spec.Candidate{Method: "affine", Label: "custom", Params: map[string]any{"m": 1}}))
	assert.Equal(t, "affine(m = 2, c = 0.5)", candidateName(f, spec.Candidate{Method: "affine", Params: map[string]any{"c": 0.5, "m": 2}}))
}
