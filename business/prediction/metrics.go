package prediction

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	PredictRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "basket_predict_requests_total",
			Help: "Count of served basket predictions by source.",
		},
		[]string{"source"},
	)

	PredictLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "basket_predict_latency_seconds",
			Help:    "Latency of the basket prediction pipeline.",
			Buckets: prometheus.DefBuckets,
		},
	)

	FallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "basket_fallback_total",
			Help: "Count of ML-tier degradations by reason.",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(PredictRequestsTotal, PredictLatency, FallbackTotal)
}
