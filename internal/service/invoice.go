package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mikronet/billd/internal/domain"
	"github.com/mikronet/billd/internal/events"
	"github.com/mikronet/billd/internal/jobs"
	"github.com/mikronet/billd/internal/repository"
	"github.com/mikronet/billd/internal/telemetry"
)

// InvoiceService is re-exported from domain.
type InvoiceService = domain.InvoiceService

// Type aliases - all invoice types live in domain.
type (
	GenerateInvoicesParams = domain.GenerateInvoicesParams
	GenerationSummary      = domain.GenerationSummary
	RecordPaymentParams    = domain.RecordPaymentParams
	ReviewPaymentParams    = domain.ReviewPaymentParams
	InvoiceDetail          = domain.InvoiceDetail
)

type invoiceService struct {
	repo           repository.Querier
	events         events.Publisher
	logger         *slog.Logger
	defaultDueDays int
}

// NewInvoiceService creates a new InvoiceService instance.
func NewInvoiceService(repo repository.Querier, publisher events.Publisher, logger *slog.Logger, defaultDueDays int) InvoiceService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &invoiceService{
		repo:           repo,
		events:         publisher,
		logger:         logger,
		defaultDueDays: defaultDueDays,
	}
}

// GenerateForPeriod creates one invoice per billable service for the
// period. The billable query excludes services already invoiced for the
// period, so re-running after a partial failure only fills the gaps.
func (s *invoiceService) GenerateForPeriod(ctx context.Context, params GenerateInvoicesParams) (*GenerationSummary, error) {
	dueDays := params.DueDays
	if dueDays <= 0 {
		dueDays = s.defaultDueDays
	}
	dueDate := params.PeriodStart.AddDate(0, 0, dueDays)

	billable, err := s.repo.ListBillableServices(ctx, dateOf(params.PeriodStart))
	if err != nil {
		return nil, err
	}

	summary := &GenerationSummary{}
	for _, svc := range billable {
		number, err := s.repo.NextInvoiceNumber(ctx)
		if err != nil {
			return nil, err
		}

		inv, err := s.repo.CreateInvoice(ctx, repository.CreateInvoiceParams{
			InvoiceNumber: number,
			ServiceID:     svc.ID,
			CustomerID:    svc.CustomerID,
			PeriodStart:   dateOf(params.PeriodStart),
			PeriodEnd:     dateOf(params.PeriodEnd),
			AmountCents:   svc.MonthlyPriceCents,
			DueDate:       dateOf(dueDate),
		})
		if err != nil {
			// a concurrent run may have invoiced this service already
			s.logger.Warn("billing: failed to create invoice",
				"service_id", uuidString(svc.ID), "error", err)
			summary.Skipped++
			continue
		}

		summary.Generated++
		if telemetry.Business != nil {
			telemetry.Business.InvoicesGenerated.Inc()
		}
		s.events.Publish(ctx, events.SubjectInvoiceGenerated, events.InvoiceGenerated{
			InvoiceID:     uuidValue(inv.ID),
			InvoiceNumber: inv.InvoiceNumber,
			CustomerID:    uuidValue(inv.CustomerID),
			AmountCents:   inv.AmountCents,
			DueDate:       dueDate.Format("2006-01-02"),
		})
	}

	s.logger.Info("billing run finished",
		"period_start", params.PeriodStart.Format("2006-01-02"),
		"generated", summary.Generated,
		"skipped", summary.Skipped)

	return summary, nil
}

// GetInvoice retrieves an invoice with its customer, service, payment, and
// reminder history.
func (s *invoiceService) GetInvoice(ctx context.Context, invoiceID string) (*InvoiceDetail, error) {
	id, err := parseUUID(invoiceID)
	if err != nil {
		return nil, err
	}

	inv, err := s.repo.GetInvoiceByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}

	customer, err := s.repo.GetCustomerByID(ctx, inv.CustomerID)
	if err != nil {
		return nil, err
	}
	svc, err := s.repo.GetServiceByID(ctx, inv.ServiceID)
	if err != nil {
		return nil, err
	}
	payments, err := s.repo.ListPaymentsForInvoice(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	reminders, err := s.repo.ListRemindersForInvoice(ctx, inv.ID)
	if err != nil {
		return nil, err
	}

	return &InvoiceDetail{
		Invoice:   inv,
		Customer:  customer,
		Service:   svc,
		Payments:  payments,
		Reminders: reminders,
	}, nil
}

// ListInvoices lists invoices for the back office with pagination.
func (s *invoiceService) ListInvoices(ctx context.Context, limit, offset int32) ([]repository.ListInvoicesRow, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListInvoices(ctx, repository.ListInvoicesParams{Limit: limit, Offset: offset})
}

// ListInvoicesForCustomer lists invoices for a specific customer.
func (s *invoiceService) ListInvoicesForCustomer(ctx context.Context, customerID string, limit, offset int32) ([]repository.Invoice, error) {
	id, err := parseUUID(customerID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListInvoicesForCustomer(ctx, repository.ListInvoicesForCustomerParams{
		CustomerID: id,
		Limit:      limit,
		Offset:     offset,
	})
}

// RecordPayment records a pending payment report against an invoice.
func (s *invoiceService) RecordPayment(ctx context.Context, params RecordPaymentParams) (*repository.Payment, error) {
	if params.AmountCents <= 0 {
		return nil, ErrInvalidAmount
	}

	id, err := parseUUID(params.InvoiceID)
	if err != nil {
		return nil, err
	}

	inv, err := s.repo.GetInvoiceByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	if inv.Status == domain.InvoiceStatusPaid {
		return nil, ErrInvoiceAlreadyPaid
	}

	verified, err := s.repo.SumVerifiedPayments(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	if verified+params.AmountCents > inv.AmountCents {
		return nil, ErrPaymentExceedsBalance
	}

	paidAt := params.PaidAt
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	payment, err := s.repo.CreatePayment(ctx, repository.CreatePaymentParams{
		InvoiceID:   inv.ID,
		AmountCents: params.AmountCents,
		Method:      params.Method,
		Reference:   params.Reference,
		PaidAt:      pgtype.Timestamptz{Time: paidAt, Valid: true},
	})
	if err != nil {
		return nil, err
	}

	if telemetry.Business != nil {
		telemetry.Business.PaymentsRecorded.Inc()
	}
	s.logger.Info("payment recorded",
		"payment_id", uuidString(payment.ID),
		"invoice_number", inv.InvoiceNumber,
		"amount_cents", params.AmountCents)

	return &payment, nil
}

// VerifyPayment marks a pending payment verified. Once verified payments
// cover the invoice amount the invoice is marked paid and a receipt is
// queued.
func (s *invoiceService) VerifyPayment(ctx context.Context, params ReviewPaymentParams) error {
	payment, inv, err := s.reviewPayment(ctx, params, domain.PaymentStatusVerified, domain.AuditActionPaymentVerified)
	if err != nil {
		return err
	}

	if telemetry.Business != nil {
		telemetry.Business.PaymentsVerified.Inc()
		telemetry.Business.RevenueCollected.Add(float64(payment.AmountCents))
	}
	s.events.Publish(ctx, events.SubjectPaymentVerified, events.PaymentVerified{
		PaymentID:   uuidValue(payment.ID),
		InvoiceID:   uuidValue(inv.ID),
		AmountCents: payment.AmountCents,
	})

	verified, err := s.repo.SumVerifiedPayments(ctx, inv.ID)
	if err != nil {
		return err
	}
	if verified < inv.AmountCents {
		return nil
	}

	rows, err := s.repo.MarkInvoicePaid(ctx, repository.MarkInvoicePaidParams{
		ID:     inv.ID,
		PaidAt: pgtype.Timestamptz{Time: time.Now(), Valid: true},
	})
	if err != nil {
		return err
	}
	if rows == 0 {
		// already paid, nothing left to do
		return nil
	}

	customer, err := s.repo.GetCustomerByID(ctx, inv.CustomerID)
	if err != nil {
		s.logger.Error("billing: failed to load customer for receipt",
			"invoice_number", inv.InvoiceNumber, "error", err)
		return nil
	}

	err = jobs.EnqueuePaymentReceipt(ctx, s.repo, jobs.PaymentReceiptPayload{
		PaymentID:     uuidValue(payment.ID),
		InvoiceNumber: inv.InvoiceNumber,
		CustomerName:  customer.FullName,
		Email:         customer.Email,
		Phone:         customer.Phone,
		AmountCents:   inv.AmountCents,
		PaidAt:        time.Now(),
	})
	if err != nil {
		s.logger.Error("billing: failed to enqueue receipt",
			"invoice_number", inv.InvoiceNumber, "error", err)
	}

	s.logger.Info("invoice paid", "invoice_number", inv.InvoiceNumber)
	return nil
}

// RejectPayment marks a pending payment rejected.
func (s *invoiceService) RejectPayment(ctx context.Context, params ReviewPaymentParams) error {
	_, _, err := s.reviewPayment(ctx, params, domain.PaymentStatusRejected, domain.AuditActionPaymentRejected)
	if err != nil {
		return err
	}
	if telemetry.Business != nil {
		telemetry.Business.PaymentsRejected.Inc()
	}
	return nil
}

// reviewPayment performs the shared verify/reject flow: CAS the pending
// payment to its final status and write the audit entry.
func (s *invoiceService) reviewPayment(ctx context.Context, params ReviewPaymentParams, status, auditAction string) (*repository.Payment, *repository.Invoice, error) {
	paymentID, err := parseUUID(params.PaymentID)
	if err != nil {
		return nil, nil, err
	}

	payment, err := s.repo.GetPaymentByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrPaymentNotFound
		}
		return nil, nil, err
	}

	inv, err := s.repo.GetInvoiceByID(ctx, payment.InvoiceID)
	if err != nil {
		return nil, nil, err
	}

	rows, err := s.repo.SetPaymentStatus(ctx, repository.SetPaymentStatusParams{
		ID:         payment.ID,
		Status:     status,
		VerifiedAt: pgtype.Timestamptz{Time: time.Now(), Valid: true},
	})
	if err != nil {
		return nil, nil, err
	}
	if rows == 0 {
		return nil, nil, ErrPaymentNotPending
	}

	_, err = s.repo.CreateAuditEntry(ctx, repository.CreateAuditEntryParams{
		ActorID:      actorUUID(params.ActorID),
		Action:       auditAction,
		ResourceType: domain.AuditResourcePayment,
		ResourceID:   payment.ID,
		Detail:       nil,
	})
	if err != nil {
		s.logger.Error("audit: failed to write entry", "action", auditAction, "error", err)
	}

	return &payment, &inv, nil
}
