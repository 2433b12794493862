package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikronet/billd/internal/domain"
	"github.com/mikronet/billd/internal/jobs"
)

func TestGenerateForPeriod(t *testing.T) {
	f := newFakeQuerier()
	plan := f.seedPlan("Home 20M", 25000000)
	custA := f.seedCustomer("A", "a@example.net", "62811")
	custB := f.seedCustomer("B", "b@example.net", "62812")
	svcA := f.seedService(custA, plan, "ppp-a", "active")
	f.seedService(custB, plan, "ppp-b", "suspended") // suspended still billed
	custC := f.seedCustomer("C", "c@example.net", "62813")
	f.seedService(custC, plan, "ppp-c", "terminated") // terminated is not

	periodStart := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	// svcA already invoiced for June
	inv := f.seedInvoice(svcA, "INV-existing", plan.MonthlyPriceCents, date(2024, 6, 11), "unpaid")
	inv.PeriodStart = date(2024, 6, 1)
	f.invoices[uuidString(inv.ID)] = inv

	s := NewInvoiceService(f, nil, testLogger(), 10)
	summary, err := s.GenerateForPeriod(context.Background(), GenerateInvoicesParams{
		PeriodStart: periodStart,
		PeriodEnd:   time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Generated, "only the suspended, uninvoiced service")
	assert.Equal(t, 0, summary.Skipped)

	// re-running generates nothing new
	again, err := s.GenerateForPeriod(context.Background(), GenerateInvoicesParams{
		PeriodStart: periodStart,
		PeriodEnd:   time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, again.Generated)
}

func paymentFixture(t *testing.T) (*fakeQuerier, InvoiceService, string) {
	t.Helper()
	f := newFakeQuerier()
	plan := f.seedPlan("Home 20M", 25000000)
	cust := f.seedCustomer("Budi", "budi@example.net", "62811")
	svc := f.seedService(cust, plan, "ppp-budi", "active")
	inv := f.seedInvoice(svc, "INV-202406-0001", 25000000, date(2024, 6, 11), "unpaid")
	return f, NewInvoiceService(f, nil, testLogger(), 10), uuidString(inv.ID)
}

func TestRecordPaymentValidation(t *testing.T) {
	_, s, invoiceID := paymentFixture(t)

	_, err := s.RecordPayment(context.Background(), RecordPaymentParams{
		InvoiceID:   invoiceID,
		AmountCents: 0,
	})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = s.RecordPayment(context.Background(), RecordPaymentParams{
		InvoiceID:   invoiceID,
		AmountCents: 30000000,
	})
	assert.ErrorIs(t, err, ErrPaymentExceedsBalance)

	_, err = s.RecordPayment(context.Background(), RecordPaymentParams{
		InvoiceID:   uuidString(newUUID()),
		AmountCents: 1000,
	})
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestVerifyPaymentMarksInvoicePaid(t *testing.T) {
	f, s, invoiceID := paymentFixture(t)

	payment, err := s.RecordPayment(context.Background(), RecordPaymentParams{
		InvoiceID:   invoiceID,
		AmountCents: 25000000,
		Method:      "bank_transfer",
		Reference:   "TRX-123",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, payment.Status)

	operator := uuidString(newUUID())
	err = s.VerifyPayment(context.Background(), ReviewPaymentParams{
		PaymentID: uuidString(payment.ID),
		ActorID:   operator,
	})
	require.NoError(t, err)

	detail, err := s.GetInvoice(context.Background(), invoiceID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, detail.Invoice.Status)
	require.Len(t, detail.Payments, 1)
	assert.Equal(t, domain.PaymentStatusVerified, detail.Payments[0].Status)

	// paid invoice gets a receipt queued
	assert.Len(t, f.jobsOfType(jobs.JobTypePaymentReceipt), 1)

	// verifying twice is a conflict
	err = s.VerifyPayment(context.Background(), ReviewPaymentParams{
		PaymentID: uuidString(payment.ID),
		ActorID:   operator,
	})
	assert.ErrorIs(t, err, ErrPaymentNotPending)
}

func TestVerifyPartialPaymentLeavesInvoiceOpen(t *testing.T) {
	f, s, invoiceID := paymentFixture(t)

	payment, err := s.RecordPayment(context.Background(), RecordPaymentParams{
		InvoiceID:   invoiceID,
		AmountCents: 10000000,
		Method:      "cash",
	})
	require.NoError(t, err)

	err = s.VerifyPayment(context.Background(), ReviewPaymentParams{PaymentID: uuidString(payment.ID)})
	require.NoError(t, err)

	detail, err := s.GetInvoice(context.Background(), invoiceID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusUnpaid, detail.Invoice.Status)
	assert.Empty(t, f.jobsOfType(jobs.JobTypePaymentReceipt))

	// settle the remainder
	rest, err := s.RecordPayment(context.Background(), RecordPaymentParams{
		InvoiceID:   invoiceID,
		AmountCents: 15000000,
		Method:      "bank_transfer",
	})
	require.NoError(t, err)
	err = s.VerifyPayment(context.Background(), ReviewPaymentParams{PaymentID: uuidString(rest.ID)})
	require.NoError(t, err)

	detail, err = s.GetInvoice(context.Background(), invoiceID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, detail.Invoice.Status)
}

func TestRejectPayment(t *testing.T) {
	f, s, invoiceID := paymentFixture(t)

	payment, err := s.RecordPayment(context.Background(), RecordPaymentParams{
		InvoiceID:   invoiceID,
		AmountCents: 25000000,
		Method:      "bank_transfer",
	})
	require.NoError(t, err)

	err = s.RejectPayment(context.Background(), ReviewPaymentParams{
		PaymentID: uuidString(payment.ID),
		ActorID:   uuidString(newUUID()),
	})
	require.NoError(t, err)

	detail, err := s.GetInvoice(context.Background(), invoiceID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusUnpaid, detail.Invoice.Status)
	require.Len(t, detail.Payments, 1)
	assert.Equal(t, domain.PaymentStatusRejected, detail.Payments[0].Status)

	// rejected amount frees the balance again
	_, err = s.RecordPayment(context.Background(), RecordPaymentParams{
		InvoiceID:   invoiceID,
		AmountCents: 25000000,
		Method:      "bank_transfer",
	})
	require.NoError(t, err)

	// rejection audited against the payment
	found := false
	for _, a := range f.audit {
		if a.Action == domain.AuditActionPaymentRejected {
			found = true
		}
	}
	assert.True(t, found)
}
