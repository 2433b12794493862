package notify

import "context"

// Email represents an email message to be sent.
type Email struct {
	To       []string
	From     string
	Subject  string
	TextBody string
	HTMLBody string
}

// EmailSender defines the interface for sending emails.
// Implementations can use SMTP, Postmark, SES, etc.
type EmailSender interface {
	// Send sends an email message.
	// Returns the message ID from the email provider (if available).
	Send(ctx context.Context, email *Email) (string, error)
}

// TextMessage represents a WhatsApp (or SMS) message to a single phone
// number.
type TextMessage struct {
	To   string // phone number in international format
	Body string
}

// TextSender defines the interface for sending WhatsApp messages through
// a gateway.
type TextSender interface {
	SendText(ctx context.Context, msg *TextMessage) (string, error)
}
