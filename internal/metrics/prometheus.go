package metrics

import "github.com/prometheus/client_golang/prometheus"

type Prometheus struct {
	Models      *prometheus.CounterVec
	Score       *prometheus.GaugeVec
	FitDuration *prometheus.HistogramVec
}

func NewPrometheusMetrics() Prometheus {
	return Prometheus{
		Models: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "syllable",
				Name:      "models_trained",
			}, []string{"model"}),
		Score: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "syllable",
				Name:      "score",
			}, []string{"model", "samples"}),
		FitDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "syllable",
				Name:      "fit_duration_seconds",
				Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
			}, []string{"model"}),
	}
}
