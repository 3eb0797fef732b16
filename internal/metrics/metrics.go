package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var Observer = &Metrics{
	prometheus: NewPrometheusMetrics(),
}

func init() {
	prometheus.MustRegister(
		Observer.prometheus.Models,
		Observer.prometheus.Score,
		Observer.prometheus.FitDuration,
	)
}

type Metrics struct {
	prometheus Prometheus
}

// Fitted records a trained model and its fit duration.
func (m *Metrics) Fitted(model string, d time.Duration) {
	m.prometheus.Models.WithLabelValues(model).Inc()
	m.prometheus.FitDuration.WithLabelValues(model).Observe(d.Seconds())
}

// Scored records the last score of the model for the given training size.
func (m *Metrics) Scored(model string, samples int, score float64) {
	m.prometheus.Score.WithLabelValues(model, strconv.Itoa(samples)).Set(score)
}
