package report

import (
	"fmt"
	"math"

	"github.com/DjordjeVuckovic/pipebench/internal/bench/annotate"
	"github.com/DjordjeVuckovic/pipebench/internal/bench/runner"
	"github.com/DjordjeVuckovic/pipebench/internal/bench/table"
)

// Generate explodes the run's table with fl and joins the run's annotations
// plus any extra lookups onto the rows.
func Generate[A any](run *runner.Run[A], fl table.Flattener[A], extra ...annotate.Lookup) (*Report, error) {
	flat, err := table.Explode(run.Table, fl)
	if err != nil {
		return nil, fmt.Errorf("explode run table: %w", err)
	}

	lookups := append(annotate.FromSpec(run.Annotations), extra...)
	if len(lookups) > 0 {
		if flat, err = annotate.Annotate(flat, lookups...); err != nil {
			return nil, err
		}
	}

	return FromFlat(Meta{
		RunID:       run.ID,
		Name:        run.Name,
		StartedAt:   run.StartedAt,
		Duration:    run.Duration,
		Workers:     run.Workers,
		Environment: NewEnvironmentInfo(),
	}, run.Stages, flat), nil
}

// FromFlat builds a report from exploded rows. Non-finite floats become nil so
// every report can be encoded as JSON.
func FromFlat(meta Meta, stages []runner.StageResult, flat *table.Flat) *Report {
	rows := make([][]any, len(flat.Rows))
	for i, fr := range flat.Rows {
		row := make([]any, 0, len(fr.Labels)+len(fr.Values))
		for _, l := range fr.Labels {
			row = append(row, l)
		}
		for _, v := range fr.Values {
			row = append(row, jsonSafe(v))
		}
		rows[i] = row
	}
	meta.RowCount = len(rows)

	return &Report{
		Meta:    meta,
		Stages:  stages,
		Columns: flat.Columns(),
		Rows:    rows,
	}
}

func jsonSafe(v any) any {
	switch f := v.(type) {
	case float64:
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
	case float32:
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return nil
		}
	}
	return v
}
