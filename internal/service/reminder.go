package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mikronet/billd/internal/domain"
	"github.com/mikronet/billd/internal/events"
	"github.com/mikronet/billd/internal/jobs"
	"github.com/mikronet/billd/internal/repository"
	"github.com/mikronet/billd/internal/telemetry"
)

// ReminderService is re-exported from domain.
type ReminderService = domain.ReminderService

// ReminderConfig tunes the daily pass windows.
type ReminderConfig struct {
	// GraceDays is how many days past due an invoice may sit before the
	// service is suspended.
	GraceDays int
	// DueReminderDays are the day offsets before the due date at which a
	// due reminder goes out, e.g. [7, 3].
	DueReminderDays []int
}

type reminderService struct {
	repo       repository.Querier
	suspension domain.SuspensionService
	dispatcher domain.Dispatcher
	events     events.Publisher
	logger     *slog.Logger
	config     ReminderConfig
}

// NewReminderService creates the daily reminder/suspension pass runner.
func NewReminderService(
	repo repository.Querier,
	suspension domain.SuspensionService,
	dispatcher domain.Dispatcher,
	publisher events.Publisher,
	logger *slog.Logger,
	config ReminderConfig,
) ReminderService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &reminderService{
		repo:       repo,
		suspension: suspension,
		dispatcher: dispatcher,
		events:     publisher,
		logger:     logger,
		config:     config,
	}
}

// RunDailyPass evaluates the due, overdue, and suspension windows for the
// given reference date. The date is truncated to day granularity; all
// window arithmetic and the reminder ledger operate on calendar days.
func (s *reminderService) RunDailyPass(ctx context.Context, today time.Time) (*domain.PassSummary, error) {
	start := time.Now()
	day := truncateToDay(today)
	summary := &domain.PassSummary{Date: day}

	if err := s.runDueWindow(ctx, summary, day); err != nil {
		return nil, err
	}
	if err := s.runOverdueWindow(ctx, summary, day); err != nil {
		return nil, err
	}
	if err := s.runSuspensionWindow(ctx, summary, day); err != nil {
		return nil, err
	}

	if telemetry.Business != nil {
		telemetry.Business.PassDuration.Observe(time.Since(start).Seconds())
	}

	s.logger.Info("daily pass finished",
		"date", day.Format("2006-01-02"),
		"due_reminders", summary.DueReminders,
		"overdue_notices", summary.OverdueNotices,
		"suspension_warnings", summary.SuspensionWarnings,
		"services_suspended", summary.ServicesSuspended,
		"skipped", summary.Skipped,
		"failures", len(summary.Failures))

	return summary, nil
}

// runDueWindow sends due reminders for invoices falling due at each
// configured offset from today.
func (s *reminderService) runDueWindow(ctx context.Context, summary *domain.PassSummary, day time.Time) error {
	for _, offset := range s.config.DueReminderDays {
		target := day.AddDate(0, 0, offset)
		candidates, err := s.repo.ListInvoicesDueOn(ctx, repository.ListInvoicesDueOnParams{
			DueDate:      dateOf(target),
			ReminderType: domain.ReminderDueSoon,
			SentOn:       dateOf(day),
		})
		if err != nil {
			return err
		}

		for _, c := range candidates {
			sent, err := s.sendReminder(ctx, c, domain.ReminderDueSoon, day)
			if err != nil {
				s.recordFailure(summary, c, domain.ReminderDueSoon, err)
				continue
			}
			if !sent {
				summary.Skipped++
				continue
			}
			summary.DueReminders++
		}
	}
	return nil
}

// runOverdueWindow flips past-due unpaid invoices to overdue and sends the
// overdue notice. The flip happens even if the notice fails: the invoice IS
// overdue regardless of whether the customer could be told.
func (s *reminderService) runOverdueWindow(ctx context.Context, summary *domain.PassSummary, day time.Time) error {
	candidates, err := s.repo.ListOverdueInvoices(ctx, repository.ListOverdueInvoicesParams{
		Before:       dateOf(day),
		ReminderType: domain.ReminderOverdue,
		SentOn:       dateOf(day),
	})
	if err != nil {
		return err
	}

	for _, c := range candidates {
		if c.Status == domain.InvoiceStatusUnpaid {
			err := s.repo.UpdateInvoiceStatus(ctx, repository.UpdateInvoiceStatusParams{
				ID:     c.InvoiceID,
				Status: domain.InvoiceStatusOverdue,
			})
			if err != nil {
				s.recordFailure(summary, c, domain.ReminderOverdue, err)
				continue
			}
		}

		sent, err := s.sendReminder(ctx, c, domain.ReminderOverdue, day)
		if err != nil {
			s.recordFailure(summary, c, domain.ReminderOverdue, err)
			continue
		}
		if !sent {
			summary.Skipped++
			continue
		}
		summary.OverdueNotices++
	}
	return nil
}

// runSuspensionWindow warns and suspends services whose unpaid invoice has
// outlived the grace period. A failed warning skips the suspension too, so
// a customer is never cut off without the notice; the service stays active
// and becomes a candidate again on the next run.
func (s *reminderService) runSuspensionWindow(ctx context.Context, summary *domain.PassSummary, day time.Time) error {
	cutoff := day.AddDate(0, 0, -s.config.GraceDays)
	candidates, err := s.repo.ListSuspensionEligibleInvoices(ctx, repository.ListSuspensionEligibleParams{
		Cutoff:       dateOf(cutoff),
		ReminderType: domain.ReminderSuspension,
		SentOn:       dateOf(day),
	})
	if err != nil {
		return err
	}

	for _, c := range candidates {
		sent, err := s.sendReminder(ctx, c, domain.ReminderSuspension, day)
		if err != nil {
			s.recordFailure(summary, c, domain.ReminderSuspension, err)
			continue
		}
		if !sent {
			summary.Skipped++
			continue
		}
		summary.SuspensionWarnings++

		suspended, err := s.suspension.Suspend(ctx, domain.SuspendParams{
			ServiceID:     uuidString(c.ServiceID),
			InvoiceID:     uuidString(c.InvoiceID),
			InvoiceNumber: c.InvoiceNumber,
			CustomerID:    uuidString(c.CustomerID),
		})
		if err != nil {
			s.recordFailure(summary, c, domain.ReminderSuspension, err)
			continue
		}
		if suspended {
			summary.ServicesSuspended++
		}
	}
	return nil
}

// sendReminder dispatches the notification tasks and then records the
// ledger entry. The order matters: a failed dispatch leaves no ledger
// entry, so the invoice is retried on the next run. A ledger insert that
// affects no rows means a concurrent run won the race; the reminder was
// sent, just not by us.
func (s *reminderService) sendReminder(ctx context.Context, c repository.ReminderCandidateRow, reminderType string, day time.Time) (bool, error) {
	if err := s.dispatcher.Dispatch(ctx, c, reminderType); err != nil {
		return false, err
	}

	rows, err := s.repo.InsertReminder(ctx, repository.InsertReminderParams{
		InvoiceID:    c.InvoiceID,
		ReminderType: reminderType,
		SentOn:       dateOf(day),
	})
	if err != nil {
		return false, err
	}
	if rows == 0 {
		return false, nil
	}

	if telemetry.Business != nil {
		telemetry.Business.RemindersSent.WithLabelValues(reminderType).Inc()
	}
	s.events.Publish(ctx, events.SubjectReminderSent, events.ReminderSent{
		InvoiceID:    uuidValue(c.InvoiceID),
		CustomerID:   uuidValue(c.CustomerID),
		ReminderType: reminderType,
		SentOn:       day.Format("2006-01-02"),
	})

	return true, nil
}

func (s *reminderService) recordFailure(summary *domain.PassSummary, c repository.ReminderCandidateRow, reminderType string, err error) {
	s.logger.Error("daily pass: invoice failed",
		"invoice_id", uuidString(c.InvoiceID),
		"reminder_type", reminderType,
		"error", err)
	if telemetry.Business != nil {
		telemetry.Business.ReminderFailures.WithLabelValues(reminderType).Inc()
	}
	summary.Failures = append(summary.Failures, domain.PassFailure{
		InvoiceID:    uuidString(c.InvoiceID),
		ReminderType: reminderType,
		Reason:       err.Error(),
	})
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dateOf(t time.Time) pgtype.Date {
	return pgtype.Date{Time: t, Valid: true}
}

// queueDispatcher enqueues notification jobs on the shared job queue, one
// per configured channel for the customer.
type queueDispatcher struct {
	repo      repository.Querier
	graceDays int
}

// NewQueueDispatcher creates a Dispatcher backed by the job queue.
func NewQueueDispatcher(repo repository.Querier, graceDays int) domain.Dispatcher {
	return &queueDispatcher{repo: repo, graceDays: graceDays}
}

func (d *queueDispatcher) Dispatch(ctx context.Context, c repository.ReminderCandidateRow, reminderType string) error {
	payload := jobs.ReminderNotificationPayload{
		InvoiceID:     uuidValue(c.InvoiceID),
		InvoiceNumber: c.InvoiceNumber,
		ReminderType:  reminderType,
		CustomerName:  c.CustomerName,
		Email:         c.Email,
		Phone:         c.Phone,
		AmountCents:   c.AmountCents,
		DueDate:       c.DueDate.Time,
		GraceDays:     d.graceDays,
	}

	if c.Email != "" {
		if err := jobs.EnqueueReminderEmail(ctx, d.repo, payload); err != nil {
			return err
		}
	}
	if c.Phone != "" {
		if err := jobs.EnqueueReminderText(ctx, d.repo, payload); err != nil {
			return err
		}
	}
	return nil
}
