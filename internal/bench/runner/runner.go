package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/DjordjeVuckovic/pipebench/internal/apperr"
	"github.com/DjordjeVuckovic/pipebench/internal/bench/paramseq"
	"github.com/DjordjeVuckovic/pipebench/internal/bench/registry"
	"github.com/DjordjeVuckovic/pipebench/internal/bench/spec"
	"github.com/DjordjeVuckovic/pipebench/internal/bench/table"
	"github.com/google/uuid"
)

// Runner executes pipeline specs against a registry of sources and methods.
type Runner[A any] struct {
	config    Config
	registry  *registry.Registry[A]
	observers []table.Observer
}

type Option[A any] func(*Runner[A])

// WithObserver forwards every candidate invocation to obs, in addition to
// the runner's own latency bookkeeping.
func WithObserver[A any](obs table.Observer) Option[A] {
	return func(r *Runner[A]) {
		r.observers = append(r.observers, obs)
	}
}

func New[A any](reg *registry.Registry[A], cfg Config, opts ...Option[A]) *Runner[A] {
	r := &Runner[A]{config: cfg, registry: reg}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner[A]) Run(ctx context.Context, ps *spec.PipelineSpec) (*Run[A], error) {
	run := &Run[A]{
		ID:          uuid.New(),
		Name:        ps.Name,
		StartedAt:   time.Now().UTC(),
		Workers:     r.config.workersFor(ps.Workers),
		Annotations: ps.Annotations,
	}

	data, err := r.loadDatasets(ps.Datasets)
	if err != nil {
		return nil, err
	}
	t, err := table.Init(data)
	if err != nil {
		return nil, fmt.Errorf("init table: %w", err)
	}

	slog.Info("pipeline started",
		"run", run.ID, "name", run.Name, "datasets", len(data), "stages", len(ps.Stages), "workers", run.Workers)

	for _, st := range ps.Stages {
		methods, err := r.Candidates(st)
		if err != nil {
			return nil, err
		}

		rec := newRecorder()
		start := time.Now()
		next, err := table.Apply(ctx, t, st.Name, methods,
			table.WithWorkers(run.Workers),
			table.WithObserver(r.observer(rec)),
		)
		if err != nil {
			slog.Warn("stage failed", "run", run.ID, "stage", st.Name, "error", err)
			return nil, fmt.Errorf("apply stage %q: %w", st.Name, err)
		}
		t = next

		names := methods.Names()
		perCand, latency := rec.stats(names)
		sr := StageResult{
			Name:       st.Name,
			Candidates: names,
			Rows:       t.Len(),
			Duration:   time.Since(start),
			Latency:    latency,
			PerCand:    perCand,
		}
		run.Stages = append(run.Stages, sr)

		slog.Info("stage applied",
			"run", run.ID, "stage", sr.Name, "candidates", len(names), "rows", sr.Rows, "duration", sr.Duration)
	}

	run.Table = t
	run.Duration = time.Since(run.StartedAt)
	slog.Info("pipeline finished", "run", run.ID, "rows", t.Len(), "duration", run.Duration)

	return run, nil
}

func (r *Runner[A]) observer(rec *recorder) table.Observer {
	if len(r.observers) == 0 {
		return rec.observe
	}
	return func(o table.Observation) {
		rec.observe(o)
		for _, obs := range r.observers {
			obs(o)
		}
	}
}

func (r *Runner[A]) loadDatasets(datasets []spec.Dataset) (table.Entries[A], error) {
	out := make(table.Entries[A], 0, len(datasets))
	for _, d := range datasets {
		src, ok := r.registry.Source(d.Source)
		if !ok {
			return nil, apperr.NewValidation(fmt.Sprintf("dataset %q: unknown source %q", d.Name, d.Source))
		}
		value, err := src.Open(d.Params)
		if err != nil {
			return nil, apperr.NewValidationWrap(fmt.Sprintf("load dataset %q", d.Name), err)
		}
		out = append(out, table.Entry[A]{Name: d.Name, Value: value})
	}
	return out, nil
}

// Candidates resolves the candidates of a stage to named methods. A swept
// candidate expands to one entry per parameter combination.
func (r *Runner[A]) Candidates(st spec.Stage) (table.Entries[table.Method[A]], error) {
	var out table.Entries[table.Method[A]]
	for _, c := range st.Candidates {
		entries, err := r.resolve(c)
		if err != nil {
			return nil, apperr.NewValidationWrap(fmt.Sprintf("stage %q", st.Name), err)
		}
		out = append(out, entries...)
	}
	return out, nil
}

func (r *Runner[A]) resolve(c spec.Candidate) (table.Entries[table.Method[A]], error) {
	f, ok := r.registry.Method(c.Method)
	if !ok {
		return nil, fmt.Errorf("unknown method %q", c.Method)
	}

	if len(c.Sweep) > 0 {
		base, err := f.With(c.Params)
		if err != nil {
			return nil, err
		}
		mode, err := paramseq.ParseMode(c.Mode)
		if err != nil {
			return nil, err
		}
		sweeps := make([]paramseq.Sweep, len(c.Sweep))
		for i, sw := range c.Sweep {
			sweeps[i] = paramseq.Sweep{Param: sw.Param, Values: sw.Values}
		}
		return paramseq.Grid(base, sweeps, mode)
	}

	fn, err := f.Bind(c.Params)
	if err != nil {
		return nil, err
	}
	return table.Entries[table.Method[A]]{{Name: candidateName(f, c), Value: fn}}, nil
}

// candidateName is the label if one is given, else the method name followed
// by its fixed parameters in declaration order.
func candidateName[A any](f paramseq.Func[A], c spec.Candidate) string {
	if c.Label != "" {
		return c.Label
	}
	if len(c.Params) == 0 {
		return c.Method
	}
	params := make([]string, 0, len(c.Params))
	for _, p := range f.Params {
		if _, ok := c.Params[p]; ok {
			params = append(params, p)
		}
	}
	return paramseq.Label(f.Name, c.Params, params)
}
