package runner

import (
	"sync"
	"testing"
	"time"

	"github.com/DjordjeVuckovic/pipebench/internal/bench/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func TestComputeLatencyStats(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		stats := ComputeLatencyStats(nil)
		assert.True(t, stats.IsZero())
		assert.Zero(t, stats.Max)
	})

	t.Run("single value", func(t *testing.T) {
		stats := ComputeLatencyStats([]time.Duration{ms(10)})
		assert.Equal(t, ms(10), stats.Min)
		assert.Equal(t, ms(10), stats.Max)
		assert.Equal(t, ms(10), stats.Median)
		assert.Equal(t, ms(10), stats.P99)
		assert.Zero(t, stats.Stddev)
		assert.Equal(t, 1, stats.Samples)
	})

	t.Run("unsorted input", func(t *testing.T) {
		in := []time.Duration{ms(50), ms(10), ms(30), ms(20), ms(40)}
		stats := ComputeLatencyStats(in)
		assert.Equal(t, ms(10), stats.Min)
		assert.Equal(t, ms(50), stats.Max)
		assert.Equal(t, ms(30), stats.Mean)
		assert.Equal(t, ms(30), stats.Median)
		assert.Greater(t, stats.Stddev, time.Duration(0))
		assert.Equal(t, ms(50), in[0], "input must not be reordered")
	})

	t.Run("even count", func(t *testing.T) {
		stats := ComputeLatencyStats([]time.Duration{ms(10), ms(20), ms(30), ms(40)})
		assert.Equal(t, ms(25), stats.Mean)
		assert.Equal(t, ms(25), stats.Median)
	})

	t.Run("percentiles", func(t *testing.T) {
		in := make([]time.Duration, 100)
		for i := range in {
			in[i] = ms(i + 1)
		}
		stats := ComputeLatencyStats(in)
		assert.InDelta(t, float64(ms(90)), float64(stats.P90), float64(ms(1)))
		assert.InDelta(t, float64(ms(95)), float64(stats.P95), float64(ms(1)))
		assert.InDelta(t, float64(ms(99)), float64(stats.P99), float64(ms(1)))
	})
}

func TestPercentile_EdgeCases(t *testing.T) {
	assert.Zero(t, percentile(nil, 50))
	one := []time.Duration{ms(10)}
	assert.Equal(t, ms(10), percentile(one, 0))
	assert.Equal(t, ms(10), percentile(one, 100))
	assert.Equal(t, ms(20), percentile([]time.Duration{ms(10), ms(20)}, 100))
}

func TestRecorder(t *testing.T) {
	rec := newRecorder()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cand := "a"
			if i%2 == 1 {
				cand = "b"
			}
			rec.observe(table.Observation{Stage: "s", Candidate: cand, Row: i, Duration: ms(i + 1)})
		}(i)
	}
	wg.Wait()
	rec.observe(table.Observation{Stage: "s", Candidate: "a", Duration: ms(100), Err: assert.AnError})

	per, all := rec.stats([]string{"b", "a", "c"})
	require.Len(t, per, 3)
	assert.Equal(t, "b", per[0].Candidate)
	assert.Equal(t, 5, per[0].Latency.Samples)
	assert.Equal(t, 5, per[1].Latency.Samples, "failed invocations are not timed")
	assert.True(t, per[2].Latency.IsZero())
	assert.Equal(t, 10, all.Samples)
	assert.Equal(t, ms(10), all.Max)
}
