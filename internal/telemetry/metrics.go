// Package telemetry exposes pipeline execution as Prometheus metrics.
package telemetry

import (
	"github.com/DjordjeVuckovic/pipebench/internal/bench/table"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bench"

type Metrics struct {
	Invocations *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
	TableRows   *prometheus.GaugeVec
	Runs        *prometheus.CounterVec
}

// NewMetrics registers the pipeline metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Invocations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidate_invocations_total",
			Help:      "Candidate invocations by stage, candidate and result",
		}, []string{"stage", "candidate", "result"}),
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "candidate_duration_seconds",
			Help:      "Candidate invocation duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 12), // 10µs to ~40s
		}, []string{"stage"}),
		TableRows: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "table_rows",
			Help:      "Rows of the last finished table per pipeline",
		}, []string{"pipeline"}),
		Runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs by result",
		}, []string{"pipeline", "result"}),
	}
}

// Observer returns a table.Observer recording every candidate invocation.
func (m *Metrics) Observer() table.Observer {
	return func(o table.Observation) {
		result := "success"
		if o.Err != nil {
			result = "error"
		}
		m.Invocations.WithLabelValues(o.Stage, o.Candidate, result).Inc()
		m.Duration.WithLabelValues(o.Stage).Observe(o.Duration.Seconds())
	}
}

func (m *Metrics) RunFinished(pipeline string, rows int, err error) {
	if err != nil {
		m.Runs.WithLabelValues(pipeline, "error").Inc()
		return
	}
	m.Runs.WithLabelValues(pipeline, "success").Inc()
	m.TableRows.WithLabelValues(pipeline).Set(float64(rows))
}
