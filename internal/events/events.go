// Package events publishes billing lifecycle events to NATS so other
// back-office systems (CRM, dashboards) can react without polling the
// database. Publishing is best effort: a lost event never fails the
// operation that produced it.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// Subjects for billing events
const (
	SubjectReminderSent       = "billing.reminder.sent"
	SubjectServiceSuspended   = "billing.service.suspended"
	SubjectServiceReactivated = "billing.service.reactivated"
	SubjectInvoiceGenerated   = "billing.invoice.generated"
	SubjectPaymentVerified    = "billing.payment.verified"
)

// ReminderSent is published after a reminder is recorded and queued.
type ReminderSent struct {
	InvoiceID    uuid.UUID `json:"invoice_id"`
	CustomerID   uuid.UUID `json:"customer_id"`
	ReminderType string    `json:"reminder_type"`
	SentOn       string    `json:"sent_on"`
}

// ServiceStatusChanged is published on suspension and reactivation.
type ServiceStatusChanged struct {
	ServiceID  uuid.UUID `json:"service_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Status     string    `json:"status"`
	InvoiceID  uuid.UUID `json:"invoice_id,omitempty"`
}

// InvoiceGenerated is published once per invoice created by a billing run.
type InvoiceGenerated struct {
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	CustomerID    uuid.UUID `json:"customer_id"`
	AmountCents   int64     `json:"amount_cents"`
	DueDate       string    `json:"due_date"`
}

// PaymentVerified is published when an operator verifies a payment.
type PaymentVerified struct {
	PaymentID   uuid.UUID `json:"payment_id"`
	InvoiceID   uuid.UUID `json:"invoice_id"`
	AmountCents int64     `json:"amount_cents"`
}

// Publisher emits billing events. Implementations must not block the
// caller beyond a connection write.
type Publisher interface {
	Publish(ctx context.Context, subject string, event interface{})
	Close()
}

// NATSPublisher publishes JSON-encoded events to a NATS server.
type NATSPublisher struct {
	conn   *nats.Conn
	logger *slog.Logger
}

// NewNATSPublisher connects to NATS. Reconnects are unbounded so a broker
// restart does not require a service restart.
func NewNATSPublisher(url string, logger *slog.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("billd"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}

	return &NATSPublisher{
		conn:   conn,
		logger: logger,
	}, nil
}

// Publish encodes and sends the event. Failures are logged, never returned:
// billing state is the source of truth and events are advisory.
func (p *NATSPublisher) Publish(ctx context.Context, subject string, event interface{}) {
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("events: failed to encode event", "subject", subject, "error", err)
		return
	}

	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Error("events: failed to publish event", "subject", subject, "error", err)
	}
}

// Close drains the connection so buffered events are flushed.
func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.logger.Warn("events: drain failed", "error", err)
	}
}

// Noop discards all events. Used when NATS is not configured.
type Noop struct{}

func (Noop) Publish(ctx context.Context, subject string, event interface{}) {}
func (Noop) Close()                                                         {}
