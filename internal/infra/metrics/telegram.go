package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		telegramNotificationsTotal,
		telegramCommandsReceivedTotal,
		telegramRateLimitTriggeredTotal,
	)
}

var (
	telegramNotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_notifications_total",
			Help: "Messages pushed to the destination chat, by kind and status.",
		},
		[]string{"kind", "status"}, // kind: 'message', 'alert'
	)

	telegramCommandsReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_commands_received_total",
			Help: "Counts incoming commands and button presses.",
		},
		[]string{"command", "status"}, // status: 'authorized', 'unauthorized', 'limited'
	)

	telegramRateLimitTriggeredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_rate_limit_triggered_total",
			Help: "Total number of times operators have been rate-limited.",
		},
	)
)

func IncNotification(kind, status string) {
	telegramNotificationsTotal.WithLabelValues(norm(kind), norm(status)).Inc()
}

func IncTelegramCommand(command, status string) {
	telegramCommandsReceivedTotal.WithLabelValues(norm(command), norm(status)).Inc()
}

func IncRateLimitTriggered() {
	telegramRateLimitTriggeredTotal.Inc()
}
