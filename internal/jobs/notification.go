package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mikronet/billd/internal/notify"
	"github.com/mikronet/billd/internal/repository"
)

// Job type constants for notification jobs
const (
	JobTypeReminderEmail  = "notify:reminder_email"
	JobTypeReminderText   = "notify:reminder_text"
	JobTypePaymentReceipt = "notify:payment_receipt"
)

// ReminderNotificationPayload carries everything needed to render and send
// a reminder without further database reads.
type ReminderNotificationPayload struct {
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	ReminderType  string    `json:"reminder_type"`
	CustomerName  string    `json:"customer_name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	AmountCents   int64     `json:"amount_cents"`
	DueDate       time.Time `json:"due_date"`
	GraceDays     int       `json:"grace_days"`
}

// PaymentReceiptPayload represents the payload for a payment receipt job
type PaymentReceiptPayload struct {
	PaymentID     uuid.UUID `json:"payment_id"`
	InvoiceNumber string    `json:"invoice_number"`
	CustomerName  string    `json:"customer_name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	AmountCents   int64     `json:"amount_cents"`
	PaidAt        time.Time `json:"paid_at"`
}

// EnqueueReminderEmail enqueues a reminder email job
func EnqueueReminderEmail(ctx context.Context, q repository.Querier, payload ReminderNotificationPayload) error {
	return enqueueNotification(ctx, q, JobTypeReminderEmail, payload, notificationPriority(payload.ReminderType))
}

// EnqueueReminderText enqueues a reminder WhatsApp job
func EnqueueReminderText(ctx context.Context, q repository.Querier, payload ReminderNotificationPayload) error {
	return enqueueNotification(ctx, q, JobTypeReminderText, payload, notificationPriority(payload.ReminderType))
}

// EnqueuePaymentReceipt enqueues a payment receipt job
func EnqueuePaymentReceipt(ctx context.Context, q repository.Querier, payload PaymentReceiptPayload) error {
	return enqueueNotification(ctx, q, JobTypePaymentReceipt, payload, 100)
}

func enqueueNotification(ctx context.Context, q repository.Querier, jobType string, payload interface{}, priority int32) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	_, err = q.EnqueueJob(ctx, repository.EnqueueJobParams{
		JobType:    jobType,
		Queue:      "notify",
		Payload:    payloadJSON,
		Priority:   priority,
		MaxRetries: 3,
		ScheduledAt: pgtype.Timestamptz{
			Time:  time.Now(),
			Valid: true,
		},
		TimeoutSeconds: 30,
	})

	return err
}

// notificationPriority ranks suspension warnings above routine reminders.
func notificationPriority(reminderType string) int32 {
	switch reminderType {
	case "suspension_warning":
		return 80
	case "overdue_notice":
		return 75
	default:
		return 50
	}
}

// ProcessNotificationJob processes a notification job based on its type
func ProcessNotificationJob(ctx context.Context, job *repository.Job, notifier *notify.Service) error {
	switch job.JobType {
	case JobTypeReminderEmail:
		var payload ReminderNotificationPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("failed to unmarshal reminder payload: %w", err)
		}

		return notifier.SendReminderEmail(ctx, payload.Email, notify.ReminderMessage{
			ReminderType:  payload.ReminderType,
			CustomerName:  payload.CustomerName,
			InvoiceNumber: payload.InvoiceNumber,
			AmountCents:   payload.AmountCents,
			DueDate:       payload.DueDate,
			GraceDays:     payload.GraceDays,
		})

	case JobTypeReminderText:
		var payload ReminderNotificationPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("failed to unmarshal reminder payload: %w", err)
		}

		return notifier.SendReminderText(ctx, payload.Phone, notify.ReminderMessage{
			ReminderType:  payload.ReminderType,
			CustomerName:  payload.CustomerName,
			InvoiceNumber: payload.InvoiceNumber,
			AmountCents:   payload.AmountCents,
			DueDate:       payload.DueDate,
			GraceDays:     payload.GraceDays,
		})

	case JobTypePaymentReceipt:
		var payload PaymentReceiptPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("failed to unmarshal receipt payload: %w", err)
		}

		return notifier.SendPaymentReceipt(ctx, payload.Email, payload.Phone, notify.ReceiptMessage{
			CustomerName:  payload.CustomerName,
			InvoiceNumber: payload.InvoiceNumber,
			AmountCents:   payload.AmountCents,
			PaidAt:        payload.PaidAt,
		})

	default:
		return fmt.Errorf("unknown job type: %s", job.JobType)
	}
}
