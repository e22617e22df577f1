// Package metrics exposes Prometheus counters for conversion and validation
// runs. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors of one registry.
type Metrics struct {
	unitsTotal       *prometheus.CounterVec
	recordsTotal     *prometheus.CounterVec
	skippedTotal     *prometheus.CounterVec
	unitDuration     *prometheus.HistogramVec
	validationTotal  *prometheus.CounterVec
	documentsChecked prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		unitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "biocorpus_units_total",
				Help: "Source units read, by format",
			},
			[]string{"format"},
		),
		recordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "biocorpus_records_total",
				Help: "Records emitted, by format and schema",
			},
			[]string{"format", "schema"},
		),
		skippedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "biocorpus_skipped_total",
				Help: "Malformed units skipped in lenient mode, by format and kind",
			},
			[]string{"format", "kind"},
		),
		unitDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "biocorpus_unit_duration_seconds",
				Help:    "Time to parse and normalize one source unit",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
			[]string{"format"},
		),
		validationTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "biocorpus_validation_findings_total",
				Help: "Offset validator findings, by kind",
			},
			[]string{"kind"},
		),
		documentsChecked: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "biocorpus_validated_documents_total",
				Help: "Documents checked by the offset validator",
			},
		),
	}
	reg.MustRegister(
		m.unitsTotal,
		m.recordsTotal,
		m.skippedTotal,
		m.unitDuration,
		m.validationTotal,
		m.documentsChecked,
	)
	return m
}

// UnitDone records one converted source unit.
func (m *Metrics) UnitDone(format string, d time.Duration) {
	if m == nil {
		return
	}
	m.unitsTotal.WithLabelValues(format).Inc()
	m.unitDuration.WithLabelValues(format).Observe(d.Seconds())
}

// RecordEmitted counts one written record.
func (m *Metrics) RecordEmitted(format, schema string) {
	if m == nil {
		return
	}
	m.recordsTotal.WithLabelValues(format, schema).Inc()
}

// Skipped counts one skipped unit; kind is "annotation" or "document".
func (m *Metrics) Skipped(format, kind string) {
	if m == nil {
		return
	}
	m.skippedTotal.WithLabelValues(format, kind).Inc()
}

// Validated records the findings of a validation run.
func (m *Metrics) Validated(documents, mismatches, referenceErrors int) {
	if m == nil {
		return
	}
	m.documentsChecked.Add(float64(documents))
	m.validationTotal.WithLabelValues("mismatch").Add(float64(mismatches))
	m.validationTotal.WithLabelValues("reference").Add(float64(referenceErrors))
}

// WriteTextfile writes everything g gathers in the text exposition format,
// for node_exporter's textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
