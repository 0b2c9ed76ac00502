package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Warky-Devs/backoffice/pkg/search"
)

// Metrics holds the service collectors. It implements search.Observer.
type Metrics struct {
	// SearchTotal counts searches by collection and outcome.
	SearchTotal *prometheus.CounterVec
	// SearchDuration is the latency of searches, store calls included.
	SearchDuration *prometheus.HistogramVec
	// RequestTotal counts HTTP requests by method, route and status.
	RequestTotal *prometheus.CounterVec
	// RequestDuration is the latency of HTTP requests.
	RequestDuration *prometheus.HistogramVec
}

// New registers the collectors with reg, prometheus.DefaultRegisterer when nil.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		SearchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_search_total",
				Help: "Total number of record searches",
			},
			[]string{"collection", "outcome"},
		),
		SearchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "backoffice_search_duration_seconds",
				Help:    "Record search latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"collection"},
		),
		RequestTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "backoffice_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

var _ search.Observer = (*Metrics)(nil)

func (m *Metrics) ObserveSearch(collection string, outcome search.Outcome, elapsed time.Duration) {
	m.SearchTotal.WithLabelValues(collection, string(outcome)).Inc()
	m.SearchDuration.WithLabelValues(collection).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.RequestTotal.WithLabelValues(method, route, statusClass(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
