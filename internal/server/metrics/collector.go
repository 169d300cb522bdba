// Package metrics exposes reminder and retention statistics to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "kitlibrarian"

// Collector is a prometheus.Collector for the reminder engine. It also
// satisfies reminders.Recorder.
type Collector struct {
	cycles              *prometheus.CounterVec
	cycleDuration       prometheus.Histogram
	batches             *prometheus.CounterVec
	logWriteFailures    prometheus.Counter
	borrowersAnonymized prometheus.Counter
}

// NewCollector returns a new Collector.
func NewCollector() *Collector {
	return &Collector{
		cycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "reminder_cycles_total",
				Help:      "Reminder cycles by outcome.",
			}, []string{"outcome"},
		),
		cycleDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "reminder_cycle_duration_seconds",
				Help:      "Time taken by completed or failed reminder cycles.",
				Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300},
			},
		),
		batches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "reminder_batches_total",
				Help:      "Per-borrower reminder batches by outcome.",
			}, []string{"outcome"},
		),
		logWriteFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "delivery_log_write_failures_total",
				Help:      "Delivery records that could not be written after a successful send.",
			},
		),
		borrowersAnonymized: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "borrowers_anonymized_total",
				Help:      "Borrowers anonymized by the retention job.",
			},
		),
	}
}

// ObserveCycle counts a cycle. Durations are only recorded for cycles that ran.
func (c *Collector) ObserveCycle(outcome string, took time.Duration) {
	c.cycles.WithLabelValues(outcome).Inc()
	if took > 0 {
		c.cycleDuration.Observe(took.Seconds())
	}
}

func (c *Collector) AddBatches(outcome string, n int) {
	c.batches.WithLabelValues(outcome).Add(float64(n))
}

func (c *Collector) AddLogWriteFailures(n int) {
	c.logWriteFailures.Add(float64(n))
}

func (c *Collector) AddAnonymized(n int) {
	c.borrowersAnonymized.Add(float64(n))
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.cycles.Describe(ch)
	c.cycleDuration.Describe(ch)
	c.batches.Describe(ch)
	c.logWriteFailures.Describe(ch)
	c.borrowersAnonymized.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.cycles.Collect(ch)
	c.cycleDuration.Collect(ch)
	c.batches.Collect(ch)
	c.logWriteFailures.Collect(ch)
	c.borrowersAnonymized.Collect(ch)
}
