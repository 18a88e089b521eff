package es

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/DjordjeVuckovic/pipebench/internal/bench/report"
	"github.com/DjordjeVuckovic/pipebench/internal/bench/runner"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/google/uuid"
)

const (
	kindRun    = "run"
	kindResult = "result"
)

// RunDocument is the single per-run document of the index.
type RunDocument struct {
	Kind        string                 `json:"kind"`
	RunID       string                 `json:"run_id"`
	Name        string                 `json:"name"`
	StartedAt   time.Time              `json:"started_at"`
	DurationNs  int64                  `json:"duration_ns"`
	Workers     int                    `json:"workers"`
	RowCount    int                    `json:"row_count"`
	Columns     []string               `json:"columns"`
	Stages      []runner.StageResult   `json:"stages"`
	Environment report.EnvironmentInfo `json:"environment"`
	IndexedAt   time.Time              `json:"indexed_at"`
}

// ResultDocument holds one flattened row, keyed by column name.
type ResultDocument struct {
	Kind   string         `json:"kind"`
	RunID  string         `json:"run_id"`
	RowIdx int            `json:"row_idx"`
	Record map[string]any `json:"record"`
}

func runDocument(r *report.Report) RunDocument {
	return RunDocument{
		Kind:        kindRun,
		RunID:       r.Meta.RunID.String(),
		Name:        r.Meta.Name,
		StartedAt:   r.Meta.StartedAt,
		DurationNs:  int64(r.Meta.Duration),
		Workers:     r.Meta.Workers,
		RowCount:    len(r.Rows),
		Columns:     r.Columns,
		Stages:      r.Stages,
		Environment: r.Meta.Environment,
		IndexedAt:   time.Now().UTC(),
	}
}

func (d RunDocument) meta() (report.Meta, error) {
	id, err := uuid.Parse(d.RunID)
	if err != nil {
		return report.Meta{}, fmt.Errorf("invalid run id %q: %w", d.RunID, err)
	}
	return report.Meta{
		RunID:       id,
		Name:        d.Name,
		StartedAt:   d.StartedAt,
		Duration:    time.Duration(d.DurationNs),
		Workers:     d.Workers,
		RowCount:    d.RowCount,
		Environment: d.Environment,
	}, nil
}

func resultDocID(runID uuid.UUID, row int) string {
	return fmt.Sprintf("%s-%d", runID, row)
}

func decode[T any](raw json.RawMessage) (T, error) {
	var v T
	err := json.Unmarshal(raw, &v)
	return v, err
}

func buildMapping() types.TypeMapping {
	disabled := false
	return types.TypeMapping{
		Properties: map[string]types.Property{
			"kind":        types.NewKeywordProperty(),
			"run_id":      types.NewKeywordProperty(),
			"name":        types.NewKeywordProperty(),
			"started_at":  types.NewDateProperty(),
			"duration_ns": types.NewLongNumberProperty(),
			"workers":     types.NewIntegerNumberProperty(),
			"row_count":   types.NewIntegerNumberProperty(),
			"row_idx":     types.NewIntegerNumberProperty(),
			"columns":     types.NewKeywordProperty(),
			"record":      types.NewFlattenedProperty(),
			"stages":      &types.ObjectProperty{Enabled: &disabled},
			"environment": &types.ObjectProperty{Enabled: &disabled},
			"indexed_at":  types.NewDateProperty(),
		},
	}
}
