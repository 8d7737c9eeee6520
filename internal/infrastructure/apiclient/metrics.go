package apiclient

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics métricas de las llamadas a la API remota. Un *Metrics nil no registra nada.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics crea y registra las métricas en reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ecolink",
			Subsystem: "apiclient",
			Name:      "requests_total",
			Help:      "Llamadas a la API remota por método, recurso y resultado.",
		}, []string{"method", "resource", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ecolink",
			Subsystem: "apiclient",
			Name:      "request_duration_seconds",
			Help:      "Duración de las llamadas a la API remota.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "resource"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

func (m *Metrics) observe(method, resource, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, resource, status).Inc()
	m.duration.WithLabelValues(method, resource).Observe(d.Seconds())
}
