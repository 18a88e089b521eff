package report

import (
	"runtime"
	"time"

	"github.com/DjordjeVuckovic/pipebench/internal/bench/runner"
	"github.com/google/uuid"
)

// Report is the flattened, storable form of a run.
type Report struct {
	Meta    Meta                 `json:"meta"`
	Stages  []runner.StageResult `json:"stages"`
	Columns []string             `json:"columns"`
	Rows    [][]any              `json:"rows"`
}

type Meta struct {
	RunID       uuid.UUID       `json:"run_id"`
	Name        string          `json:"name"`
	StartedAt   time.Time       `json:"started_at"`
	Duration    time.Duration   `json:"duration"`
	Workers     int             `json:"workers"`
	RowCount    int             `json:"row_count"`
	Environment EnvironmentInfo `json:"environment"`
}

type EnvironmentInfo struct {
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	NumCPU    int    `json:"num_cpu"`
}

func NewEnvironmentInfo() EnvironmentInfo {
	return EnvironmentInfo{
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		NumCPU:    runtime.NumCPU(),
	}
}

// Record returns row i as a column name to value map.
func (r *Report) Record(i int) map[string]any {
	rec := make(map[string]any, len(r.Columns))
	for j, col := range r.Columns {
		rec[col] = r.Rows[i][j]
	}
	return rec
}

// StageColumns are the leading label columns of every row.
func (r *Report) StageColumns() []string {
	n := len(r.Stages) + 1
	if n > len(r.Columns) {
		n = len(r.Columns)
	}
	return r.Columns[:n]
}
