package daemon

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the daemon's prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	lines    *prometheus.CounterVec
	restarts *prometheus.CounterVec
	queries  *prometheus.CounterVec
	buffered *prometheus.GaugeVec
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		lines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "logpanel_lines_total",
			Help: "Log lines ingested, by instance and record type.",
		}, []string{"instance", "type"}),
		restarts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "logpanel_tailer_restarts_total",
			Help: "Tailer restarts after an error or exit.",
		}, []string{"instance", "tailer"}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "logpanel_queries_total",
			Help: "Logs queries served, by instance and mode.",
		}, []string{"instance", "mode"}),
		buffered: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "logpanel_buffered_records",
			Help: "Records currently held in the ring buffer.",
		}, []string{"instance"}),
	}
	m.registry.MustRegister(
		m.lines,
		m.restarts,
		m.queries,
		m.buffered,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
