package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(avitoCallsTotal, avitoCallLatencyMs) }

var (
	avitoCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "avito_api_calls_total",
			Help: "Avito API calls by endpoint and HTTP status (0 for transport errors).",
		},
		[]string{"endpoint", "status"},
	)

	avitoCallLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "avito_api_latency_ms",
			Help:    "Avito API call latency distribution in milliseconds.",
			Buckets: []float64{25, 50, 100, 200, 400, 800, 1600, 3000, 5000, 10000, 30000},
		},
		[]string{"endpoint"},
	)
)

func ObserveAvitoCall(endpoint string, status int, elapsed time.Duration) {
	avitoCallsTotal.WithLabelValues(norm(endpoint), strconv.Itoa(status)).Inc()
	avitoCallLatencyMs.WithLabelValues(norm(endpoint)).Observe(float64(elapsed.Milliseconds()))
}
