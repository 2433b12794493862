package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mikronet/billd/internal/domain"
	"github.com/mikronet/billd/internal/repository"
)

// Job type constants for billing jobs
const (
	JobTypeRunReminderPass  = "billing:reminder_pass"
	JobTypeGenerateInvoices = "billing:generate_invoices"
)

// ReminderPassPayload represents the payload for a scheduled reminder pass
type ReminderPassPayload struct {
	Date time.Time `json:"date"`
}

// GenerateInvoicesPayload represents the payload for a billing run
type GenerateInvoicesPayload struct {
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	DueDays     int       `json:"due_days"`
}

// EnqueueReminderPass enqueues a reminder pass for the given date.
func EnqueueReminderPass(ctx context.Context, q repository.Querier, date time.Time) error {
	payloadJSON, err := json.Marshal(ReminderPassPayload{Date: date})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	_, err = q.EnqueueJob(ctx, repository.EnqueueJobParams{
		JobType:    JobTypeRunReminderPass,
		Queue:      "billing",
		Payload:    payloadJSON,
		Priority:   100,
		MaxRetries: 1, // the pass is idempotent but should not pile up retries
		ScheduledAt: pgtype.Timestamptz{
			Time:  time.Now(),
			Valid: true,
		},
		TimeoutSeconds: 300,
	})

	return err
}

// EnqueueGenerateInvoices enqueues a monthly invoice generation run.
func EnqueueGenerateInvoices(ctx context.Context, q repository.Querier, payload GenerateInvoicesPayload) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	_, err = q.EnqueueJob(ctx, repository.EnqueueJobParams{
		JobType:    JobTypeGenerateInvoices,
		Queue:      "billing",
		Payload:    payloadJSON,
		Priority:   100,
		MaxRetries: 1,
		ScheduledAt: pgtype.Timestamptz{
			Time:  time.Now(),
			Valid: true,
		},
		TimeoutSeconds: 300,
	})

	return err
}

// ProcessBillingJob processes a billing job based on its type
func ProcessBillingJob(ctx context.Context, job *repository.Job, reminders domain.ReminderService, invoices domain.InvoiceService, logger *slog.Logger) error {
	switch job.JobType {
	case JobTypeRunReminderPass:
		var payload ReminderPassPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("failed to unmarshal reminder pass payload: %w", err)
		}

		date := payload.Date
		if date.IsZero() {
			date = time.Now()
		}

		summary, err := reminders.RunDailyPass(ctx, date)
		if err != nil {
			return err
		}

		logger.Info("reminder pass completed",
			"date", summary.Date,
			"due_reminders", summary.DueReminders,
			"overdue_notices", summary.OverdueNotices,
			"suspension_warnings", summary.SuspensionWarnings,
			"services_suspended", summary.ServicesSuspended,
			"skipped", summary.Skipped,
			"failures", len(summary.Failures))
		return nil

	case JobTypeGenerateInvoices:
		var payload GenerateInvoicesPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("failed to unmarshal invoice generation payload: %w", err)
		}

		summary, err := invoices.GenerateForPeriod(ctx, domain.GenerateInvoicesParams{
			PeriodStart: payload.PeriodStart,
			PeriodEnd:   payload.PeriodEnd,
			DueDays:     payload.DueDays,
		})
		if err != nil {
			return err
		}

		logger.Info("invoice generation completed",
			"period_start", payload.PeriodStart.Format("2006-01-02"),
			"generated", summary.Generated,
			"skipped", summary.Skipped)
		return nil

	default:
		return fmt.Errorf("unknown job type: %s", job.JobType)
	}
}
