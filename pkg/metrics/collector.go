package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	botCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_commands_total",
			Help: "Total number of slash commands handled labeled by command and status",
		},
		[]string{"command", "status"},
	)
	commandDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "command_duration_seconds",
			Help:    "Duration of slash command handling in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)
	messagesProcessedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "messages_processed_total",
			Help: "Total number of guild messages run through the moderation filter",
		},
	)
	moderationVerdictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_verdicts_total",
			Help: "Total number of non-clean moderation verdicts by kind",
		},
		[]string{"kind"},
	)
	levelUpsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "level_ups_total",
			Help: "Total number of level-up events announced",
		},
	)
	scheduledDispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduled_dispatch_total",
			Help: "Total number of scheduled message firings by outcome",
		},
		[]string{"status"},
	)
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors split by type and severity",
		},
		[]string{"type", "severity"},
	)
	storeOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_operations_total",
			Help: "Total number of document store operations by operation and status",
		},
		[]string{"operation", "status"},
	)
	scheduledMessagesActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scheduled_messages_active",
			Help: "Number of cron entries currently registered",
		},
	)
)

// RecordCommand increments command counters and records duration.
func RecordCommand(command, status string, duration time.Duration) {
	if command == "" {
		command = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	botCommandsTotal.WithLabelValues(command, status).Inc()
	commandDurationSeconds.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordMessageProcessed counts one message through the filter pipeline.
func RecordMessageProcessed() {
	messagesProcessedTotal.Inc()
}

// RecordVerdict counts a non-clean moderation verdict.
func RecordVerdict(kind string) {
	if kind == "" {
		kind = "unknown"
	}

	moderationVerdictsTotal.WithLabelValues(kind).Inc()
}

// RecordLevelUp counts a level-up announcement.
func RecordLevelUp() {
	levelUpsTotal.Inc()
}

// RecordScheduledDispatch counts one scheduled firing by outcome.
func RecordScheduledDispatch(status string) {
	if status == "" {
		status = "unknown"
	}

	scheduledDispatchTotal.WithLabelValues(status).Inc()
}

// RecordError increments error counters with metadata.
func RecordError(errType, severity string) {
	if errType == "" {
		errType = "unknown"
	}
	if severity == "" {
		severity = "unknown"
	}

	errorsTotal.WithLabelValues(errType, severity).Inc()
}

// RecordStoreOperation counts one document store call by outcome.
func RecordStoreOperation(operation string, err error) {
	if operation == "" {
		operation = "unknown"
	}

	status := "ok"
	if err != nil {
		status = "error"
	}

	storeOperationsTotal.WithLabelValues(operation, status).Inc()
}

// SetActiveSchedules updates the gauge of live cron registrations.
func SetActiveSchedules(count int) {
	scheduledMessagesActive.Set(float64(count))
}
