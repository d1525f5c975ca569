// Package prometheus exports run summaries as Prometheus metrics.
package prometheus

import (
	"fmt"

	"github.com/fwojciec/recipefeed"
	"github.com/prometheus/client_golang/prometheus"
)

// RunMetrics holds one gauge family per summary figure, labelled by source.
type RunMetrics struct {
	registry *prometheus.Registry

	attempted   *prometheus.GaugeVec
	succeeded   *prometheus.GaugeVec
	failed      *prometheus.GaugeVec
	valid       *prometheus.GaugeVec
	invalid     *prometheus.GaugeVec
	withField   *prometheus.GaugeVec
	successRate *prometheus.GaugeVec
	threshold   *prometheus.GaugeVec
	passed      *prometheus.GaugeVec
}

// NewRunMetrics registers the run collectors against a fresh registry.
func NewRunMetrics() (*RunMetrics, error) {
	gauge := func(name, help string, labels ...string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "recipefeed",
			Name:      name,
			Help:      help,
		}, append([]string{"source"}, labels...))
	}

	m := &RunMetrics{
		registry:    prometheus.NewRegistry(),
		attempted:   gauge("urls_attempted", "Item URLs attempted in the last run."),
		succeeded:   gauge("fetch_success", "Item URLs extracted in the last run."),
		failed:      gauge("fetch_failures", "Item URLs that could not be extracted in the last run."),
		valid:       gauge("records_valid", "Records that passed validation in the last run."),
		invalid:     gauge("records_invalid", "Records with validation issues in the last run."),
		withField:   gauge("records_with_field", "Records carrying an optional field in the last run.", "field"),
		successRate: gauge("success_rate_percent", "Extraction success rate of the last run."),
		threshold:   gauge("success_threshold_percent", "Success rate the source must meet."),
		passed:      gauge("run_passed", "1 if the last run met its threshold, 0 otherwise."),
	}
	for _, c := range []prometheus.Collector{
		m.attempted,
		m.succeeded,
		m.failed,
		m.valid,
		m.invalid,
		m.withField,
		m.successRate,
		m.threshold,
		m.passed,
	} {
		if err := m.registry.Register(c); err != nil {
			return nil, fmt.Errorf("register run collector: %w", err)
		}
	}
	return m, nil
}

// Record sets the gauges of s.Source from the summary.
func (m *RunMetrics) Record(s *recipefeed.RunSummary) {
	src := s.Source
	m.attempted.WithLabelValues(src).Set(float64(s.Attempted))
	m.succeeded.WithLabelValues(src).Set(float64(s.FetchSuccess))
	m.failed.WithLabelValues(src).Set(float64(s.FetchFailures))
	m.valid.WithLabelValues(src).Set(float64(s.Valid))
	m.invalid.WithLabelValues(src).Set(float64(s.Invalid))
	m.withField.WithLabelValues(src, "images").Set(float64(s.Quality.WithImages))
	m.withField.WithLabelValues(src, "servings").Set(float64(s.Quality.WithServings))
	m.withField.WithLabelValues(src, "prep_time").Set(float64(s.Quality.WithPrepTime))
	m.withField.WithLabelValues(src, "cook_time").Set(float64(s.Quality.WithCookTime))
	m.successRate.WithLabelValues(src).Set(s.RoundedRate())
	m.threshold.WithLabelValues(src).Set(s.Threshold)

	passed := 0.0
	if s.Passed {
		passed = 1
	}
	m.passed.WithLabelValues(src).Set(passed)
}

// Gatherer exposes the registry, e.g. for an HTTP handler or tests.
func (m *RunMetrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes every recorded metric to path in the text exposition
// format read by the node exporter's textfile collector.
func (m *RunMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
