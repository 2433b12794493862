package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics holds Prometheus metrics for billing-level observability.
type BusinessMetrics struct {
	// Reminder pass
	RemindersSent     *prometheus.CounterVec
	RemindersSkipped  prometheus.Counter
	ReminderFailures  *prometheus.CounterVec
	PassDuration      prometheus.Histogram
	ServicesSuspended prometheus.Counter

	// Billing
	InvoicesGenerated prometheus.Counter
	PaymentsRecorded  prometheus.Counter
	PaymentsVerified  prometheus.Counter
	PaymentsRejected  prometheus.Counter
	RevenueCollected  prometheus.Counter

	// Services
	ServicesReactivated prometheus.Counter

	// Background jobs
	JobsEnqueued  *prometheus.CounterVec
	JobsProcessed *prometheus.CounterVec
	JobsFailed    *prometheus.CounterVec
	JobDuration   *prometheus.HistogramVec

	// Notification delivery
	NotificationsSent   *prometheus.CounterVec
	NotificationsFailed *prometheus.CounterVec

	// Router provisioning
	ProvisioningCalls  *prometheus.CounterVec
	ProvisioningErrors *prometheus.CounterVec
}

// NewBusinessMetrics creates and registers all billing metrics
func NewBusinessMetrics(namespace string) *BusinessMetrics {
	if namespace == "" {
		namespace = "billd"
	}

	subsystem := "billing"

	m := &BusinessMetrics{
		RemindersSent: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "reminders_sent_total",
				Help:      "Total reminders recorded and queued, by type",
			},
			[]string{"reminder_type"}, // due_reminder, overdue_notice, suspension_warning
		),
		RemindersSkipped: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "reminders_skipped_total",
				Help:      "Total reminder candidates skipped as already sent today",
			},
		),
		ReminderFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "reminder_failures_total",
				Help:      "Total per-invoice failures during a reminder pass",
			},
			[]string{"reminder_type"},
		),
		PassDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "reminder_pass_seconds",
				Help:      "Daily reminder pass duration",
				Buckets:   []float64{.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
		),
		ServicesSuspended: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "services_suspended_total",
				Help:      "Total services auto-suspended for non-payment",
			},
		),

		InvoicesGenerated: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "invoices_generated_total",
				Help:      "Total invoices created by billing runs",
			},
		),
		PaymentsRecorded: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "payments_recorded_total",
				Help:      "Total payment reports recorded",
			},
		),
		PaymentsVerified: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "payments_verified_total",
				Help:      "Total payments verified by operators",
			},
		),
		PaymentsRejected: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "payments_rejected_total",
				Help:      "Total payments rejected by operators",
			},
		),
		RevenueCollected: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "revenue_collected_cents",
				Help:      "Total verified payment amount in cents",
			},
		),

		ServicesReactivated: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "services_reactivated_total",
				Help:      "Total suspended services reactivated",
			},
		),

		JobsEnqueued: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "jobs_enqueued_total",
				Help:      "Total background jobs enqueued",
			},
			[]string{"job_type"},
		),
		JobsProcessed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "jobs_processed_total",
				Help:      "Total background jobs successfully processed",
			},
			[]string{"job_type"},
		),
		JobsFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "jobs_failed_total",
				Help:      "Total background job failures",
			},
			[]string{"job_type"},
		),
		JobDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "job_duration_seconds",
				Help:      "Background job execution duration",
				Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"job_type"},
		),

		NotificationsSent: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "notifications_sent_total",
				Help:      "Total notifications delivered, by channel",
			},
			[]string{"channel"}, // email, whatsapp
		),
		NotificationsFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "notifications_failed_total",
				Help:      "Total notification delivery failures, by channel",
			},
			[]string{"channel"},
		),

		ProvisioningCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "provisioning_calls_total",
				Help:      "Total router provisioning operations",
			},
			[]string{"operation"}, // apply_restriction, remove_restriction
		),
		ProvisioningErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "provisioning_errors_total",
				Help:      "Total router provisioning failures",
			},
			[]string{"operation"},
		),
	}

	return m
}

// Global instance for easy access from handlers
var Business *BusinessMetrics

// InitBusinessMetrics initializes the global business metrics instance
func InitBusinessMetrics(namespace string) *BusinessMetrics {
	Business = NewBusinessMetrics(namespace)
	return Business
}
