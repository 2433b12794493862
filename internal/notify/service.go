package notify

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"
)

// ReminderMessage is the data rendered into reminder notifications.
type ReminderMessage struct {
	ReminderType  string
	CustomerName  string
	InvoiceNumber string
	AmountCents   int64
	DueDate       time.Time
	GraceDays     int
}

// ReceiptMessage is the data rendered into payment receipt notifications.
type ReceiptMessage struct {
	CustomerName  string
	InvoiceNumber string
	AmountCents   int64
	PaidAt        time.Time
}

const messageTemplates = `
{{define "due_reminder"}}Hi {{.CustomerName}},

This is a friendly reminder that invoice {{.InvoiceNumber}} for {{amount .AmountCents}} is due on {{date .DueDate}}.

Please make your payment before the due date to keep your service running.{{end}}

{{define "overdue_notice"}}Hi {{.CustomerName}},

Invoice {{.InvoiceNumber}} for {{amount .AmountCents}} was due on {{date .DueDate}} and is now overdue.

Please settle the outstanding balance as soon as possible to avoid service interruption.{{end}}

{{define "suspension_warning"}}Hi {{.CustomerName}},

Invoice {{.InvoiceNumber}} for {{amount .AmountCents}} is more than {{.GraceDays}} days overdue. Your service has been suspended.

Settle the outstanding balance and your service will be reactivated.{{end}}

{{define "payment_receipt"}}Hi {{.CustomerName}},

We have received and verified your payment of {{amount .AmountCents}} for invoice {{.InvoiceNumber}} on {{date .PaidAt}}.

Thank you.{{end}}
`

var reminderSubjects = map[string]string{
	"due_reminder":       "Payment reminder for invoice %s",
	"overdue_notice":     "Invoice %s is overdue",
	"suspension_warning": "Service suspended: invoice %s unpaid",
}

// Service composes and sends customer notifications over email and
// WhatsApp. Either sender may be nil when the channel is not configured.
type Service struct {
	email       EmailSender
	text        TextSender
	fromAddress string
	fromName    string
	templates   *template.Template
}

// NewService creates a new notification service.
func NewService(email EmailSender, text TextSender, fromAddress, fromName string) (*Service, error) {
	funcs := template.FuncMap{
		"amount": FormatAmount,
		"date":   func(t time.Time) string { return t.Format("2 January 2006") },
	}

	tmpl, err := template.New("messages").Funcs(funcs).Parse(messageTemplates)
	if err != nil {
		return nil, fmt.Errorf("failed to parse message templates: %w", err)
	}

	return &Service{
		email:       email,
		text:        text,
		fromAddress: fromAddress,
		fromName:    fromName,
		templates:   tmpl,
	}, nil
}

// SendReminderEmail renders and sends a reminder of the given type.
func (s *Service) SendReminderEmail(ctx context.Context, to string, data ReminderMessage) error {
	if s.email == nil {
		return fmt.Errorf("email sender not configured")
	}

	body, err := s.render(data.ReminderType, data)
	if err != nil {
		return err
	}

	subjectFmt, ok := reminderSubjects[data.ReminderType]
	if !ok {
		return fmt.Errorf("unknown reminder type %q", data.ReminderType)
	}

	email := &Email{
		To:       []string{to},
		From:     fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress),
		Subject:  fmt.Sprintf(subjectFmt, data.InvoiceNumber),
		TextBody: body,
	}

	if _, err := s.email.Send(ctx, email); err != nil {
		return fmt.Errorf("failed to send reminder email: %w", err)
	}
	return nil
}

// SendReminderText renders and sends a reminder over WhatsApp.
func (s *Service) SendReminderText(ctx context.Context, phone string, data ReminderMessage) error {
	if s.text == nil {
		return fmt.Errorf("text sender not configured")
	}

	body, err := s.render(data.ReminderType, data)
	if err != nil {
		return err
	}

	msg := &TextMessage{To: phone, Body: body}
	if _, err := s.text.SendText(ctx, msg); err != nil {
		return fmt.Errorf("failed to send reminder message: %w", err)
	}
	return nil
}

// SendPaymentReceipt sends a payment confirmation to the customer.
// Whichever channels are configured get the message; both failing is an
// error, one succeeding is enough.
func (s *Service) SendPaymentReceipt(ctx context.Context, emailAddr, phone string, data ReceiptMessage) error {
	body, err := s.render("payment_receipt", data)
	if err != nil {
		return err
	}

	var sent bool
	var lastErr error

	if s.email != nil && emailAddr != "" {
		email := &Email{
			To:       []string{emailAddr},
			From:     fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress),
			Subject:  fmt.Sprintf("Payment received for invoice %s", data.InvoiceNumber),
			TextBody: body,
		}
		if _, err := s.email.Send(ctx, email); err != nil {
			lastErr = err
		} else {
			sent = true
		}
	}

	if s.text != nil && phone != "" {
		msg := &TextMessage{To: phone, Body: body}
		if _, err := s.text.SendText(ctx, msg); err != nil {
			lastErr = err
		} else {
			sent = true
		}
	}

	if !sent && lastErr != nil {
		return fmt.Errorf("failed to send payment receipt: %w", lastErr)
	}
	return nil
}

func (s *Service) render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

// FormatAmount formats an amount in cents as rupiah with thousand
// separators, e.g. 25000000 -> "Rp 250.000".
func FormatAmount(cents int64) string {
	whole := cents / 100
	digits := fmt.Sprintf("%d", whole)

	var b strings.Builder
	if strings.HasPrefix(digits, "-") {
		b.WriteByte('-')
		digits = digits[1:]
	}

	n := len(digits)
	for i, c := range digits {
		if i > 0 && (n-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(c)
	}
	return "Rp " + b.String()
}
