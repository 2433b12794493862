package domain

import (
	"context"
	"time"

	"github.com/mikronet/billd/internal/repository"
)

// Invoice statuses. An invoice is created unpaid at billing-cycle
// generation, flipped to overdue by the daily pass once past due, and
// marked paid by payment verification.
const (
	InvoiceStatusUnpaid  = "unpaid"
	InvoiceStatusPaid    = "paid"
	InvoiceStatusOverdue = "overdue"
)

// Payment statuses.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusVerified = "verified"
	PaymentStatusRejected = "rejected"
)

// Invoice-related domain errors.
var (
	ErrInvoiceNotFound       = &Error{Code: ENOTFOUND, Message: "Invoice not found"}
	ErrInvoiceAlreadyPaid    = &Error{Code: ECONFLICT, Message: "Invoice already paid in full"}
	ErrPaymentNotFound       = &Error{Code: ENOTFOUND, Message: "Payment not found"}
	ErrPaymentNotPending     = &Error{Code: ECONFLICT, Message: "Payment has already been verified or rejected"}
	ErrPaymentExceedsBalance = &Error{Code: EINVALID, Message: "Payment amount exceeds invoice balance"}
)

// InvoiceService manages billing-cycle invoice generation and payment
// verification.
type InvoiceService interface {
	// GenerateForPeriod creates one invoice per billable service for the
	// billing period starting on periodStart. Services that already have
	// an invoice for the period are skipped, so the operation is safe to
	// re-run.
	GenerateForPeriod(ctx context.Context, params GenerateInvoicesParams) (*GenerationSummary, error)

	// GetInvoice retrieves an invoice by ID with customer, payments, and
	// reminder history.
	GetInvoice(ctx context.Context, invoiceID string) (*InvoiceDetail, error)

	// ListInvoices lists invoices for the back office with pagination.
	ListInvoices(ctx context.Context, limit, offset int32) ([]repository.ListInvoicesRow, error)

	// ListInvoicesForCustomer lists invoices for a specific customer.
	ListInvoicesForCustomer(ctx context.Context, customerID string, limit, offset int32) ([]repository.Invoice, error)

	// RecordPayment records a pending payment against an invoice.
	RecordPayment(ctx context.Context, params RecordPaymentParams) (*repository.Payment, error)

	// VerifyPayment marks a pending payment as verified. When verified
	// payments cover the invoice amount, the invoice is marked paid.
	VerifyPayment(ctx context.Context, params ReviewPaymentParams) error

	// RejectPayment marks a pending payment as rejected.
	RejectPayment(ctx context.Context, params ReviewPaymentParams) error
}

// GenerateInvoicesParams contains parameters for billing-cycle generation.
type GenerateInvoicesParams struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	// DueDays is the number of days after generation the invoices fall
	// due. Zero means use the configured default.
	DueDays int
}

// GenerationSummary reports the outcome of a billing-cycle run.
type GenerationSummary struct {
	Generated int
	Skipped   int
}

// RecordPaymentParams contains parameters for recording a payment.
type RecordPaymentParams struct {
	InvoiceID   string
	AmountCents int64
	Method      string // "bank_transfer", "cash", "ewallet"
	Reference   string
	PaidAt      time.Time
}

// ReviewPaymentParams identifies a pending payment and the operator acting
// on it.
type ReviewPaymentParams struct {
	PaymentID string
	ActorID   string
}

// InvoiceDetail aggregates an invoice with its customer, service, payment
// history, and reminder history.
type InvoiceDetail struct {
	Invoice   repository.Invoice
	Customer  repository.Customer
	Service   repository.Service
	Payments  []repository.Payment
	Reminders []repository.Reminder
}
