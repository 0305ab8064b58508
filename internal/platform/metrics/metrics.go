package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	ConversionOutcomes *prometheus.CounterVec
	HTTPRequests       *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		ConversionOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "civicat_conversion_records_total",
			Help: "Register records processed by the conversion pipeline, by kind and outcome",
		}, []string{"kind", "outcome"}),
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "civicat_http_requests_total",
			Help: "HTTP requests served, by app and method",
		}, []string{"app", "method"}),
	}
}

// RecordConversion counts one processed register record. outcome is one of
// created, updated, skipped or planned.
func (m *Metrics) RecordConversion(kind, outcome string) {
	m.ConversionOutcomes.WithLabelValues(kind, outcome).Inc()
}

// RecordRequest counts one served HTTP request.
func (m *Metrics) RecordRequest(app, method string) {
	m.HTTPRequests.WithLabelValues(app, method).Inc()
}
