// Package metrics provides Prometheus metrics for long-running watch
// sessions. A one-shot `haskellings run` never starts the server; watch
// mode starts it when a metrics address is configured.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/TonyCrane/haskellings/internal/pipeline"
)

// Collector records pipeline outcomes for one watch session.
type Collector struct {
	runsTotal     *prometheus.CounterVec
	buildDuration prometheus.Histogram
	exercisesDone prometheus.Gauge
}

// NewCollector creates a collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "haskellings_runs_total",
				Help: "Pipeline runs by terminal result",
			},
			[]string{"result"},
		),
		buildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "haskellings_run_duration_seconds",
				Help:    "Wall time of one full pipeline run",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
			},
		),
		exercisesDone: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "haskellings_exercises_completed",
				Help: "Exercises without the not-done marker",
			},
		),
	}
	reg.MustRegister(c.runsTotal, c.buildDuration, c.exercisesDone)
	return c
}

// RecordRun records one pipeline invocation.
func (c *Collector) RecordRun(result pipeline.RunResult, seconds float64) {
	c.runsTotal.WithLabelValues(result.String()).Inc()
	c.buildDuration.Observe(seconds)
}

// SetCompleted updates the completed-exercise gauge.
func (c *Collector) SetCompleted(n int) {
	c.exercisesDone.Set(float64(n))
}
