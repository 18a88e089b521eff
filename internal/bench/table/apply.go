package table

import (
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"
)

// Method is a candidate implementation of a stage. It receives the result of
// a previous stage and returns a new artifact.
type Method[A any] func(A) (A, error)

// Identity returns a candidate that passes its input through unchanged.
func Identity[A any]() Method[A] {
	return func(a A) (A, error) { return a, nil }
}

// Observation describes one candidate invocation made by Apply.
type Observation struct {
	Stage     string
	Candidate string
	Row       int
	Duration  time.Duration
	Err       error
}

type Observer func(Observation)

type applyOptions struct {
	workers  int
	observer Observer
}

type Option func(*applyOptions)

// WithWorkers sets how many candidate invocations may run at once. Values
// below 2 keep the applicator sequential.
func WithWorkers(n int) Option {
	return func(o *applyOptions) {
		o.workers = n
	}
}

// WithObserver registers a callback invoked after every candidate call. With
// more than one worker it is called from multiple goroutines.
func WithObserver(obs Observer) Option {
	return func(o *applyOptions) {
		o.observer = obs
	}
}

// Apply returns a new table with one extra stage column. Every candidate in
// methods is applied to the result of every row of t; the output holds
// t.Len()*len(methods) rows where row i*m+j is input row i expanded with
// candidate j. The first failing candidate aborts the whole call and t is
// never modified.
func Apply[A any](ctx context.Context, t *Table[A], stage string, methods Entries[Method[A]], opts ...Option) (*Table[A], error) {
	if t == nil {
		return nil, ErrNilTable
	}
	if stage == "" {
		return nil, ErrEmptyStageName
	}
	if len(methods) == 0 {
		return nil, fmt.Errorf("stage %q: %w", stage, ErrEmptyMethods)
	}
	if t.HasColumn(stage) {
		return nil, &DuplicateStageError{Stage: stage}
	}
	if err := methods.checkUnique(); err != nil {
		return nil, fmt.Errorf("stage %q: %w", stage, err)
	}
	for _, m := range methods {
		if m.Value == nil {
			return nil, fmt.Errorf("stage %q candidate %q: %w", stage, m.Name, ErrNilMethod)
		}
	}

	o := applyOptions{workers: 1}
	for _, opt := range opts {
		opt(&o)
	}

	m := len(methods)
	total := len(t.rows) * m
	results := make([]A, total)

	invoke := func(idx int) error {
		i, j := idx/m, idx%m
		cand := methods[j]

		start := time.Now()
		out, err := call(cand.Value, t.rows[i].Result)
		if o.observer != nil {
			o.observer(Observation{
				Stage:     stage,
				Candidate: cand.Name,
				Row:       i,
				Duration:  time.Since(start),
				Err:       err,
			})
		}
		if err != nil {
			return &CandidateInvocationError{Stage: stage, Candidate: cand.Name, Row: i, Err: err}
		}
		results[idx] = out
		return nil
	}

	var err error
	if o.workers > 1 && total > 1 {
		err = runParallel(ctx, total, o.workers, invoke)
	} else {
		err = runSequential(ctx, total, invoke)
	}
	if err != nil {
		return nil, err
	}

	out := &Table[A]{
		stages: append(slices.Clone(t.stages), stage),
		rows:   make([]Row[A], total),
	}
	for idx := range results {
		i, j := idx/m, idx%m
		labels := make([]string, 0, len(t.stages)+1)
		labels = append(labels, t.rows[i].Labels...)
		out.rows[idx] = Row[A]{
			Labels: append(labels, methods[j].Name),
			Result: results[idx],
		}
	}

	return out, nil
}

func runSequential(ctx context.Context, total int, invoke func(int) error) error {
	for idx := 0; idx < total; idx++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := invoke(idx); err != nil {
			return err
		}
	}
	return nil
}

// runParallel dispatches invocations over a bounded errgroup. Failures are
// recorded by index so the reported error is the lowest-index one observed,
// independent of completion order.
func runParallel(ctx context.Context, total, workers int, invoke func(int) error) error {
	errs := make([]error, total)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for idx := 0; idx < total; idx++ {
		if gCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := invoke(idx); err != nil {
				errs[idx] = err
				return err
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return ctx.Err()
}

func call[A any](fn Method[A], in A) (out A, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(in)
}
