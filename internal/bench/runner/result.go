package runner

import (
	"time"

	"github.com/DjordjeVuckovic/pipebench/internal/bench/spec"
	"github.com/DjordjeVuckovic/pipebench/internal/bench/table"
	"github.com/google/uuid"
)

// Run is the outcome of one pipeline execution.
type Run[A any] struct {
	ID          uuid.UUID
	Name        string
	StartedAt   time.Time
	Duration    time.Duration
	Workers     int
	Table       *table.Table[A]
	Stages      []StageResult
	Annotations spec.Annotations
}

type StageResult struct {
	Name       string           `json:"name"`
	Candidates []string         `json:"candidates"`
	Rows       int              `json:"rows"`
	Duration   time.Duration    `json:"duration"`
	Latency    LatencyStats     `json:"latency"`
	PerCand    []CandidateStats `json:"per_candidate"`
}

type CandidateStats struct {
	Candidate string       `json:"candidate"`
	Latency   LatencyStats `json:"latency"`
}

func (r *Run[A]) StageNames() []string {
	names := make([]string, len(r.Stages))
	for i, s := range r.Stages {
		names[i] = s.Name
	}
	return names
}
