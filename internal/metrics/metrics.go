package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Review outcomes used as the "outcome" label.
const (
	OutcomeSpecial = "special"
	OutcomeDefault = "default"
)

// Metrics holds the Prometheus collectors for yr.
type Metrics struct {
	Registry *prometheus.Registry
	Reviews  *prometheus.CounterVec
}

// New creates a Metrics with its own registry, so tests and servers do not
// share global state.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		Reviews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "yr",
			Name:      "reviews_total",
			Help:      "Year reviews by outcome (special, default, type_error, range_error).",
		}, []string{"outcome"}),
	}
	reg.MustRegister(
		m.Reviews,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Observe counts one review with the given outcome. A nil Metrics is a no-op.
func (m *Metrics) Observe(outcome string) {
	if m == nil {
		return
	}
	m.Reviews.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
