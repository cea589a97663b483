package portal

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts and times every call the client makes against the backend.
type Metrics struct {
	Requests *prometheus.CounterVec
	Latency  *prometheus.HistogramVec
	Retries  prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "profilesync",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Count of backend requests by method, route and status code.",
		}, []string{"method", "route", "code"}),

		Latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "profilesync",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Latency of backend requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		Retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "profilesync",
			Subsystem: "api",
			Name:      "auth_retries_total",
			Help:      "Requests replayed after a token refresh.",
		}),
	}
}

func (m *Metrics) PrometheusCollectors() []prometheus.Collector {
	return []prometheus.Collector{m.Requests, m.Latency, m.Retries}
}

// Register adds the collectors to reg. Collectors that are already
// registered are adopted so several clients can share one registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for i, c := range m.PrometheusCollectors() {
		err := reg.Register(c)
		if err == nil {
			continue
		}

		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return err
		}

		switch i {
		case 0:
			m.Requests = already.ExistingCollector.(*prometheus.CounterVec)
		case 1:
			m.Latency = already.ExistingCollector.(*prometheus.HistogramVec)
		case 2:
			m.Retries = already.ExistingCollector.(prometheus.Counter)
		}
	}

	return nil
}
