package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// Querier is the full data-access contract. Services depend on this
// interface so tests can substitute in-memory fakes.
type Querier interface {
	// Customers
	CreateCustomer(ctx context.Context, arg CreateCustomerParams) (Customer, error)
	GetCustomerByID(ctx context.Context, id pgtype.UUID) (Customer, error)
	ListCustomers(ctx context.Context, arg ListCustomersParams) ([]Customer, error)
	UpdateCustomer(ctx context.Context, arg UpdateCustomerParams) error

	// Plans
	CreatePlan(ctx context.Context, arg CreatePlanParams) (Plan, error)
	GetPlanByID(ctx context.Context, id pgtype.UUID) (Plan, error)
	ListPlans(ctx context.Context) ([]Plan, error)

	// Services
	CreateService(ctx context.Context, arg CreateServiceParams) (Service, error)
	GetServiceByID(ctx context.Context, id pgtype.UUID) (Service, error)
	ListServices(ctx context.Context, arg ListServicesParams) ([]Service, error)
	ListBillableServices(ctx context.Context, periodStart pgtype.Date) ([]ListBillableServicesRow, error)
	SuspendService(ctx context.Context, id pgtype.UUID) (int64, error)
	ReactivateService(ctx context.Context, id pgtype.UUID) (int64, error)
	TerminateService(ctx context.Context, id pgtype.UUID) (int64, error)

	// Invoices
	NextInvoiceNumber(ctx context.Context) (string, error)
	CreateInvoice(ctx context.Context, arg CreateInvoiceParams) (Invoice, error)
	GetInvoiceByID(ctx context.Context, id pgtype.UUID) (Invoice, error)
	ListInvoices(ctx context.Context, arg ListInvoicesParams) ([]ListInvoicesRow, error)
	ListInvoicesForCustomer(ctx context.Context, arg ListInvoicesForCustomerParams) ([]Invoice, error)
	UpdateInvoiceStatus(ctx context.Context, arg UpdateInvoiceStatusParams) error
	MarkInvoicePaid(ctx context.Context, arg MarkInvoicePaidParams) (int64, error)
	ListInvoicesDueOn(ctx context.Context, arg ListInvoicesDueOnParams) ([]ReminderCandidateRow, error)
	ListOverdueInvoices(ctx context.Context, arg ListOverdueInvoicesParams) ([]ReminderCandidateRow, error)
	ListSuspensionEligibleInvoices(ctx context.Context, arg ListSuspensionEligibleParams) ([]ReminderCandidateRow, error)

	// Reminders
	InsertReminder(ctx context.Context, arg InsertReminderParams) (int64, error)
	ListRemindersForInvoice(ctx context.Context, invoiceID pgtype.UUID) ([]Reminder, error)

	// Payments
	CreatePayment(ctx context.Context, arg CreatePaymentParams) (Payment, error)
	GetPaymentByID(ctx context.Context, id pgtype.UUID) (Payment, error)
	ListPaymentsForInvoice(ctx context.Context, invoiceID pgtype.UUID) ([]Payment, error)
	SetPaymentStatus(ctx context.Context, arg SetPaymentStatusParams) (int64, error)
	SumVerifiedPayments(ctx context.Context, invoiceID pgtype.UUID) (int64, error)

	// Audit log
	CreateAuditEntry(ctx context.Context, arg CreateAuditEntryParams) (AuditEntry, error)
	ListAuditEntries(ctx context.Context, arg ListAuditEntriesParams) ([]AuditEntry, error)

	// Tickets
	CreateTicket(ctx context.Context, arg CreateTicketParams) (Ticket, error)
	GetTicketByID(ctx context.Context, id pgtype.UUID) (Ticket, error)
	ListTickets(ctx context.Context, arg ListTicketsParams) ([]Ticket, error)
	UpdateTicketStatus(ctx context.Context, arg UpdateTicketStatusParams) error

	// Job queue
	EnqueueJob(ctx context.Context, arg EnqueueJobParams) (Job, error)
	ClaimNextJob(ctx context.Context, arg ClaimNextJobParams) (Job, error)
	CompleteJob(ctx context.Context, id pgtype.UUID) error
	FailJob(ctx context.Context, arg FailJobParams) (Job, error)
}

var _ Querier = (*Queries)(nil)
