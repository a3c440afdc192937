package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal          *prometheus.CounterVec
	HTTPRequestDurationSeconds *prometheus.HistogramVec
	AuthLoginsTotal            *prometheus.CounterVec
	DeviceEvictionsTotal       prometheus.Counter
	LedgerTransactionsTotal    *prometheus.CounterVec
}

func New(serviceName string) *Metrics {
	labels := prometheus.Labels{"service": serviceName}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"service", "method", "path", "status"},
		).MustCurryWith(labels),
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service", "method", "path"},
		).MustCurryWith(labels).(*prometheus.HistogramVec),
		AuthLoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_logins_total",
				Help: "Total number of login attempts.",
			},
			[]string{"service", "result"},
		).MustCurryWith(labels),
		DeviceEvictionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "auth_device_evictions_total",
			Help:        "Sessions revoked to keep a user under the device limit.",
			ConstLabels: labels,
		}),
		LedgerTransactionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_transactions_total",
				Help: "Total number of recorded ledger transactions.",
			},
			[]string{"service", "type"},
		).MustCurryWith(labels),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDurationSeconds,
		m.AuthLoginsTotal,
		m.DeviceEvictionsTotal,
		m.LedgerTransactionsTotal,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Login(result string) {
	if m == nil {
		return
	}
	m.AuthLoginsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) DeviceEvicted() {
	if m == nil {
		return
	}
	m.DeviceEvictionsTotal.Inc()
}

func (m *Metrics) TransactionRecorded(txType string) {
	if m == nil {
		return
	}
	m.LedgerTransactionsTotal.WithLabelValues(txType).Inc()
}
