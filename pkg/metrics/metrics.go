package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	IntakeLoggedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_logged_total",
			Help: "Total number of intake entries logged",
		},
		[]string{"source"}, // source: quick, custom, container
	)

	ReminderScheduledCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_scheduled_total",
			Help: "Total number of reminder triggers registered",
		},
		[]string{"mode"}, // mode: periodic, smart
	)

	ReminderTruncatedCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reminder_truncated_total",
			Help: "Total number of reminder triggers dropped by the schedule cap",
		},
	)

	ReminderDeliveredCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_delivered_total",
			Help: "Total number of reminder notifications dispatched",
		},
		[]string{"result"}, // result: success, failed
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"operation", "table"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)
)

// ObserveDBQuery records the time elapsed since start for a query. The
// elapsed time is computed inside this call, so it can be deferred at
// the top of a repository method and still capture the full duration.
func ObserveDBQuery(operation, table string, start time.Time) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func IncrementIntakeLogged(source string) {
	IntakeLoggedCount.WithLabelValues(source).Inc()
}

func IncrementReminderScheduled(mode string, n int) {
	ReminderScheduledCount.WithLabelValues(mode).Add(float64(n))
}

func IncrementReminderDelivered(result string) {
	ReminderDeliveredCount.WithLabelValues(result).Inc()
}
