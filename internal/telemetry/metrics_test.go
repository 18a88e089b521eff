package telemetry

import (
	"errors"
	"testing"
	"time"

	"github.com/DjordjeVuckovic/pipebench/internal/bench/table"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserver(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	obs := m.Observer()

	obs(table.Observation{Stage: "scale", Candidate: "a", Duration: time.Millisecond})
	obs(table.Observation{Stage: "scale", Candidate: "a", Duration: 2 * time.Millisecond})
	obs(table.Observation{Stage: "scale", Candidate: "b", Err: errors.New("boom")})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Invocations.WithLabelValues("scale", "a", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Invocations.WithLabelValues("scale", "b", "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Duration))
}

func TestRunFinished(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RunFinished("p", 12, nil)
	m.RunFinished("p", 0, errors.New("failed"))

	assert.Equal(t, 12.0, testutil.ToFloat64(m.TableRows.WithLabelValues("p")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("p", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("p", "error")))
}
