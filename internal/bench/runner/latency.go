package runner

import (
	"math"
	"slices"
	"sync"
	"time"

	"github.com/DjordjeVuckovic/pipebench/internal/bench/table"
)

type LatencyStats struct {
	Min     time.Duration `json:"min"`
	Max     time.Duration `json:"max"`
	Mean    time.Duration `json:"mean"`
	Median  time.Duration `json:"median"`
	Stddev  time.Duration `json:"stddev"`
	P90     time.Duration `json:"p90"`
	P95     time.Duration `json:"p95"`
	P99     time.Duration `json:"p99"`
	Samples int           `json:"samples"`
}

func ComputeLatencyStats(durations []time.Duration) LatencyStats {
	if len(durations) == 0 {
		return LatencyStats{}
	}

	sorted := slices.Clone(durations)
	slices.Sort(sorted)

	stats := LatencyStats{
		Min:     sorted[0],
		Max:     sorted[len(sorted)-1],
		Median:  percentile(sorted, 50),
		P90:     percentile(sorted, 90),
		P95:     percentile(sorted, 95),
		P99:     percentile(sorted, 99),
		Samples: len(sorted),
	}

	var sum int64
	for _, d := range sorted {
		sum += int64(d)
	}
	stats.Mean = time.Duration(sum / int64(len(sorted)))

	if len(sorted) > 1 {
		var sq float64
		mean := float64(stats.Mean)
		for _, d := range sorted {
			diff := float64(d) - mean
			sq += diff * diff
		}
		stats.Stddev = time.Duration(math.Sqrt(sq / float64(len(sorted)-1)))
	}

	return stats
}

// percentile interpolates linearly between the closest ranks of sorted.
func percentile(sorted []time.Duration, p int) time.Duration {
	switch len(sorted) {
	case 0:
		return 0
	case 1:
		return sorted[0]
	}

	rank := float64(p) / 100 * float64(len(sorted)-1)
	lower := int(rank)
	if lower+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	w := rank - float64(lower)
	return time.Duration(float64(sorted[lower])*(1-w) + float64(sorted[lower+1])*w)
}

func (s LatencyStats) IsZero() bool {
	return s.Samples == 0
}

// recorder collects candidate timings reported by table.Apply. It is safe
// for concurrent use.
type recorder struct {
	mu      sync.Mutex
	samples map[string][]time.Duration
}

func newRecorder() *recorder {
	return &recorder{samples: make(map[string][]time.Duration)}
}

func (r *recorder) observe(o table.Observation) {
	if o.Err != nil {
		return
	}
	r.mu.Lock()
	r.samples[o.Candidate] = append(r.samples[o.Candidate], o.Duration)
	r.mu.Unlock()
}

// stats returns per-candidate statistics in candidate order together with
// the statistics over all samples of the stage.
func (r *recorder) stats(candidates []string) ([]CandidateStats, LatencyStats) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var all []time.Duration
	out := make([]CandidateStats, 0, len(candidates))
	for _, c := range candidates {
		samples := r.samples[c]
		all = append(all, samples...)
		out = append(out, CandidateStats{Candidate: c, Latency: ComputeLatencyStats(samples)})
	}
	return out, ComputeLatencyStats(all)
}
