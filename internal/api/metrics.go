package api

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the counters and histograms exported on /metrics.
type Metrics struct {
	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	logins       *prometheus.CounterVec
	replacements *prometheus.CounterVec
	entries      *prometheus.CounterVec
	clients      *prometheus.CounterVec
}

// NewMetrics registers the metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shopkeep_http_requests_total",
				Help: "Total number of HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
		duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shopkeep_http_request_duration_seconds",
				Help:    "HTTP request latency by route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		logins: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shopkeep_logins_total",
				Help: "Total number of login attempts by result",
			},
			[]string{"result"}, // ok, denied, error
		),
		replacements: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shopkeep_category_replacements_total",
				Help: "Total number of category selection replacements by mode and result",
			},
			[]string{"mode", "result"}, // batch, each
		),
		entries: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shopkeep_entries_written_total",
				Help: "Total number of revenue and expense writes by type and action",
			},
			[]string{"type", "action"}, // create, update, delete
		),
		clients: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shopkeep_clients_total",
				Help: "Total number of client accounts created and deleted",
			},
			[]string{"action"},
		),
	}
}

func (m *Metrics) observe(method, route string, status int, latency time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(latency.Seconds())
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
