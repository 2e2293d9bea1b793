package core

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts orchestrated operations by kind and final disposition.
// Wiring it up is optional; a nil *Metrics is safe everywhere the core
// touches it.
type Metrics struct {
	Namespace string

	registry  *prometheus.Registry
	begunVec  *prometheus.CounterVec
	doneVec   *prometheus.CounterVec
	failVec   *prometheus.CounterVec
	warnVec   *prometheus.CounterVec
	rejectVec *prometheus.CounterVec
}

func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "diskrim"
	}

	m := &Metrics{
		Namespace: namespace,
		registry:  prometheus.NewRegistry(),
	}

	counter := func(name, help string) *prometheus.CounterVec {
		v := prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      name,
				Help:      help,
			}, []string{"kind"})
		m.registry.MustRegister(v)
		return v
	}

	m.begunVec = counter("operations_begun_total", "How many operations have been recorded in the ledger")
	m.doneVec = counter("operations_completed_total", "How many operations completed cleanly")
	m.failVec = counter("operations_failed_total", "How many operations failed after the ledger record was opened")
	m.warnVec = counter("operations_warned_total", "How many operations completed with an advisory warning")
	m.rejectVec = counter("operations_rejected_total", "How many operations were rejected before any side effect")

	return m
}

// Handler serves the scrape endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) begun(kind string) {
	if m != nil {
		m.begunVec.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) completed(kind string) {
	if m != nil {
		m.doneVec.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) failed(kind string) {
	if m != nil {
		m.failVec.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) warned(kind string) {
	if m != nil {
		m.warnVec.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) rejected(kind string) {
	if m != nil {
		m.rejectVec.WithLabelValues(kind).Inc()
	}
}
