package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		pollsTotal,
		pollDurationSeconds,
		authFailuresTotal,
		messagesRelayedTotal,
		deliveryDroppedTotal,
		watermarkSeconds,
		seenSetSize,
	)
}

var (
	pollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_polls_total",
			Help: "Poll cycles by result.",
		},
		[]string{"result"}, // 'ok', 'auth_failed', 'fetch_failed'
	)

	pollDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "relay_poll_duration_seconds",
			Help:    "Wall time of one poll cycle.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	authFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_auth_failures_total",
			Help: "Failed Avito token exchanges.",
		},
	)

	messagesRelayedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_messages_relayed_total",
			Help: "Buyer messages delivered to Telegram.",
		},
	)

	deliveryDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_delivery_dropped_total",
			Help: "Messages given up on after the last delivery attempt.",
		},
	)

	watermarkSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_watermark_seconds",
			Help: "Current watermark as a unix timestamp.",
		},
	)

	seenSetSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_seen_set_size",
			Help: "Message ids held by the dedup set.",
		},
	)
)

func IncPoll(result string) {
	pollsTotal.WithLabelValues(norm(result)).Inc()
}

func ObservePollDuration(d time.Duration) {
	pollDurationSeconds.Observe(d.Seconds())
}

func IncAuthFailure() {
	authFailuresTotal.Inc()
}

func IncMessagesRelayed() {
	messagesRelayedTotal.Inc()
}

func IncDeliveryDropped() {
	deliveryDroppedTotal.Inc()
}

func SetWatermark(unix int64) {
	watermarkSeconds.Set(float64(unix))
}

func SetSeenSetSize(n int) {
	seenSetSize.Set(float64(n))
}
