package domain

import (
	"context"
	"time"

	"github.com/mikronet/billd/internal/repository"
)

// Reminder types recorded in the ledger. At most one record of a given
// type exists per invoice per calendar day; that uniqueness is what makes
// the daily pass idempotent within a day.
const (
	ReminderDueSoon    = "due_reminder"
	ReminderOverdue    = "overdue_notice"
	ReminderSuspension = "suspension_warning"
)

// ReminderService runs the daily reminder/suspension pass.
type ReminderService interface {
	// RunDailyPass evaluates all reminder windows for the given reference
	// date, dispatches notifications, flips past-due invoices to overdue,
	// and suspends services past the grace period. The reference date is
	// always passed in explicitly; the policy never reads the ambient
	// clock, so a run is reproducible for any date.
	//
	// A store or queue outage aborts the run with an error; per-invoice
	// failures are collected in the summary and do not stop the batch.
	RunDailyPass(ctx context.Context, today time.Time) (*PassSummary, error)
}

// Dispatcher enqueues the outbound notification tasks for one invoice and
// reminder type: one email task and one WhatsApp task. It does not
// deduplicate; callers are expected to have consulted the reminder ledger
// first.
type Dispatcher interface {
	Dispatch(ctx context.Context, candidate repository.ReminderCandidateRow, reminderType string) error
}

// PassSummary reports what a daily pass did: dispatch counts per reminder
// type, services suspended, candidates skipped by the ledger, and the
// per-invoice failures that were logged and stepped over.
type PassSummary struct {
	Date               time.Time     `json:"date"`
	DueReminders       int           `json:"due_reminders"`
	OverdueNotices     int           `json:"overdue_notices"`
	SuspensionWarnings int           `json:"suspension_warnings"`
	ServicesSuspended  int           `json:"services_suspended"`
	Skipped            int           `json:"skipped"`
	Failures           []PassFailure `json:"failures,omitempty"`
}

// PassFailure records one invoice the pass could not fully process.
type PassFailure struct {
	InvoiceID    string `json:"invoice_id"`
	ReminderType string `json:"reminder_type"`
	Reason       string `json:"reason"`
}
