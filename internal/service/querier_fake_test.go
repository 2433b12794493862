package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mikronet/billd/internal/repository"
)

// fakeQuerier is an in-memory Querier mirroring the SQL semantics the
// services rely on: CAS status transitions, the reminder uniqueness
// constraint, and the candidate window filters.
type fakeQuerier struct {
	mu sync.Mutex

	customers map[string]repository.Customer
	plans     map[string]repository.Plan
	services  map[string]repository.Service
	invoices  map[string]repository.Invoice
	payments  map[string]repository.Payment
	tickets   map[string]repository.Ticket
	reminders []repository.Reminder
	audit     []repository.AuditEntry
	jobs      []repository.Job

	invoiceSeq int

	// error injection
	enqueueJobErr        error
	insertReminderErr    error
	updateInvoiceErr     error
	suspendServiceErr    error
	listDueErr           error
	failInsertForInvoice string
}

func newFakeQuerier() *fakeQuerier {
	return &fakeQuerier{
		customers: make(map[string]repository.Customer),
		plans:     make(map[string]repository.Plan),
		services:  make(map[string]repository.Service),
		invoices:  make(map[string]repository.Invoice),
		payments:  make(map[string]repository.Payment),
		tickets:   make(map[string]repository.Ticket),
	}
}

var _ repository.Querier = (*fakeQuerier)(nil)

func newUUID() pgtype.UUID {
	return pgtype.UUID{Bytes: uuid.New(), Valid: true}
}

func date(y int, m time.Month, d int) pgtype.Date {
	return pgtype.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}

func sameDay(a, b pgtype.Date) bool {
	return a.Time.Equal(b.Time)
}

// --- seeding helpers ---

func (f *fakeQuerier) seedCustomer(name, email, phone string) repository.Customer {
	c := repository.Customer{ID: newUUID(), FullName: name, Email: email, Phone: phone}
	f.customers[uuidString(c.ID)] = c
	return c
}

func (f *fakeQuerier) seedPlan(name string, priceCents int64) repository.Plan {
	p := repository.Plan{ID: newUUID(), Name: name, MonthlyPriceCents: priceCents, IsActive: true}
	f.plans[uuidString(p.ID)] = p
	return p
}

func (f *fakeQuerier) seedService(customer repository.Customer, plan repository.Plan, username, status string) repository.Service {
	s := repository.Service{
		ID:         newUUID(),
		CustomerID: customer.ID,
		PlanID:     plan.ID,
		Username:   username,
		Status:     status,
	}
	f.services[uuidString(s.ID)] = s
	return s
}

func (f *fakeQuerier) seedInvoice(svc repository.Service, number string, amount int64, due pgtype.Date, status string) repository.Invoice {
	inv := repository.Invoice{
		ID:            newUUID(),
		InvoiceNumber: number,
		ServiceID:     svc.ID,
		CustomerID:    svc.CustomerID,
		AmountCents:   amount,
		DueDate:       due,
		Status:        status,
	}
	f.invoices[uuidString(inv.ID)] = inv
	return inv
}

// --- customers ---

func (f *fakeQuerier) CreateCustomer(ctx context.Context, arg repository.CreateCustomerParams) (repository.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := repository.Customer{ID: newUUID(), FullName: arg.FullName, Email: arg.Email, Phone: arg.Phone, Address: arg.Address}
	f.customers[uuidString(c.ID)] = c
	return c, nil
}

func (f *fakeQuerier) GetCustomerByID(ctx context.Context, id pgtype.UUID) (repository.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.customers[uuidString(id)]
	if !ok {
		return repository.Customer{}, pgx.ErrNoRows
	}
	return c, nil
}

func (f *fakeQuerier) ListCustomers(ctx context.Context, arg repository.ListCustomersParams) ([]repository.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.Customer
	for _, c := range f.customers {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeQuerier) UpdateCustomer(ctx context.Context, arg repository.UpdateCustomerParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.customers[uuidString(arg.ID)]
	if !ok {
		return pgx.ErrNoRows
	}
	c.FullName, c.Email, c.Phone, c.Address = arg.FullName, arg.Email, arg.Phone, arg.Address
	f.customers[uuidString(arg.ID)] = c
	return nil
}

// --- plans ---

func (f *fakeQuerier) CreatePlan(ctx context.Context, arg repository.CreatePlanParams) (repository.Plan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := repository.Plan{ID: newUUID(), Name: arg.Name, DownloadKbps: arg.DownloadKbps, UploadKbps: arg.UploadKbps, MonthlyPriceCents: arg.MonthlyPriceCents, IsActive: true}
	f.plans[uuidString(p.ID)] = p
	return p, nil
}

func (f *fakeQuerier) GetPlanByID(ctx context.Context, id pgtype.UUID) (repository.Plan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.plans[uuidString(id)]
	if !ok {
		return repository.Plan{}, pgx.ErrNoRows
	}
	return p, nil
}

func (f *fakeQuerier) ListPlans(ctx context.Context) ([]repository.Plan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.Plan
	for _, p := range f.plans {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

// --- services ---

func (f *fakeQuerier) CreateService(ctx context.Context, arg repository.CreateServiceParams) (repository.Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := repository.Service{ID: newUUID(), CustomerID: arg.CustomerID, PlanID: arg.PlanID, Username: arg.Username, RouterAddress: arg.RouterAddress, Status: "active"}
	f.services[uuidString(s.ID)] = s
	return s, nil
}

func (f *fakeQuerier) GetServiceByID(ctx context.Context, id pgtype.UUID) (repository.Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.services[uuidString(id)]
	if !ok {
		return repository.Service{}, pgx.ErrNoRows
	}
	return s, nil
}

func (f *fakeQuerier) ListServices(ctx context.Context, arg repository.ListServicesParams) ([]repository.Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.Service
	for _, s := range f.services {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeQuerier) ListBillableServices(ctx context.Context, periodStart pgtype.Date) ([]repository.ListBillableServicesRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.ListBillableServicesRow
	for _, s := range f.services {
		if s.Status == "terminated" {
			continue
		}
		invoiced := false
		for _, inv := range f.invoices {
			if inv.ServiceID == s.ID && sameDay(inv.PeriodStart, periodStart) {
				invoiced = true
				break
			}
		}
		if invoiced {
			continue
		}
		plan := f.plans[uuidString(s.PlanID)]
		out = append(out, repository.ListBillableServicesRow{
			ID:                s.ID,
			CustomerID:        s.CustomerID,
			PlanID:            s.PlanID,
			Username:          s.Username,
			MonthlyPriceCents: plan.MonthlyPriceCents,
		})
	}
	return out, nil
}

func (f *fakeQuerier) SuspendService(ctx context.Context, id pgtype.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.suspendServiceErr != nil {
		return 0, f.suspendServiceErr
	}
	s, ok := f.services[uuidString(id)]
	if !ok || s.Status != "active" {
		return 0, nil
	}
	s.Status = "suspended"
	f.services[uuidString(id)] = s
	return 1, nil
}

func (f *fakeQuerier) ReactivateService(ctx context.Context, id pgtype.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.services[uuidString(id)]
	if !ok || s.Status != "suspended" {
		return 0, nil
	}
	s.Status = "active"
	f.services[uuidString(id)] = s
	return 1, nil
}

func (f *fakeQuerier) TerminateService(ctx context.Context, id pgtype.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.services[uuidString(id)]
	if !ok || s.Status == "terminated" {
		return 0, nil
	}
	s.Status = "terminated"
	f.services[uuidString(id)] = s
	return 1, nil
}

// --- invoices ---

func (f *fakeQuerier) NextInvoiceNumber(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invoiceSeq++
	return fmt.Sprintf("INV-202406-%04d", f.invoiceSeq), nil
}

func (f *fakeQuerier) CreateInvoice(ctx context.Context, arg repository.CreateInvoiceParams) (repository.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv := repository.Invoice{
		ID:            newUUID(),
		InvoiceNumber: arg.InvoiceNumber,
		ServiceID:     arg.ServiceID,
		CustomerID:    arg.CustomerID,
		PeriodStart:   arg.PeriodStart,
		PeriodEnd:     arg.PeriodEnd,
		AmountCents:   arg.AmountCents,
		DueDate:       arg.DueDate,
		Status:        "unpaid",
	}
	f.invoices[uuidString(inv.ID)] = inv
	return inv, nil
}

func (f *fakeQuerier) GetInvoiceByID(ctx context.Context, id pgtype.UUID) (repository.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invoices[uuidString(id)]
	if !ok {
		return repository.Invoice{}, pgx.ErrNoRows
	}
	return inv, nil
}

func (f *fakeQuerier) ListInvoices(ctx context.Context, arg repository.ListInvoicesParams) ([]repository.ListInvoicesRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.ListInvoicesRow
	for _, inv := range f.invoices {
		c := f.customers[uuidString(inv.CustomerID)]
		out = append(out, repository.ListInvoicesRow{
			ID:            inv.ID,
			InvoiceNumber: inv.InvoiceNumber,
			ServiceID:     inv.ServiceID,
			CustomerID:    inv.CustomerID,
			AmountCents:   inv.AmountCents,
			DueDate:       inv.DueDate,
			Status:        inv.Status,
			CustomerName:  c.FullName,
		})
	}
	return out, nil
}

func (f *fakeQuerier) ListInvoicesForCustomer(ctx context.Context, arg repository.ListInvoicesForCustomerParams) ([]repository.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.Invoice
	for _, inv := range f.invoices {
		if inv.CustomerID == arg.CustomerID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (f *fakeQuerier) UpdateInvoiceStatus(ctx context.Context, arg repository.UpdateInvoiceStatusParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateInvoiceErr != nil {
		return f.updateInvoiceErr
	}
	inv, ok := f.invoices[uuidString(arg.ID)]
	if !ok {
		return pgx.ErrNoRows
	}
	inv.Status = arg.Status
	f.invoices[uuidString(arg.ID)] = inv
	return nil
}

func (f *fakeQuerier) MarkInvoicePaid(ctx context.Context, arg repository.MarkInvoicePaidParams) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invoices[uuidString(arg.ID)]
	if !ok || inv.Status == "paid" {
		return 0, nil
	}
	inv.Status = "paid"
	inv.PaidAt = arg.PaidAt
	f.invoices[uuidString(arg.ID)] = inv
	return 1, nil
}

func (f *fakeQuerier) candidate(inv repository.Invoice) repository.ReminderCandidateRow {
	s := f.services[uuidString(inv.ServiceID)]
	c := f.customers[uuidString(inv.CustomerID)]
	return repository.ReminderCandidateRow{
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		AmountCents:   inv.AmountCents,
		DueDate:       inv.DueDate,
		Status:        inv.Status,
		ServiceID:     s.ID,
		ServiceStatus: s.Status,
		Username:      s.Username,
		CustomerID:    c.ID,
		CustomerName:  c.FullName,
		Email:         c.Email,
		Phone:         c.Phone,
	}
}

func (f *fakeQuerier) hasReminder(invoiceID pgtype.UUID, reminderType string, sentOn pgtype.Date) bool {
	for _, r := range f.reminders {
		if r.InvoiceID == invoiceID && r.ReminderType == reminderType && sameDay(r.SentOn, sentOn) {
			return true
		}
	}
	return false
}

func (f *fakeQuerier) ListInvoicesDueOn(ctx context.Context, arg repository.ListInvoicesDueOnParams) ([]repository.ReminderCandidateRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listDueErr != nil {
		return nil, f.listDueErr
	}
	var out []repository.ReminderCandidateRow
	for _, inv := range f.invoices {
		if inv.Status == "paid" || !sameDay(inv.DueDate, arg.DueDate) {
			continue
		}
		if f.hasReminder(inv.ID, arg.ReminderType, arg.SentOn) {
			continue
		}
		out = append(out, f.candidate(inv))
	}
	return out, nil
}

func (f *fakeQuerier) ListOverdueInvoices(ctx context.Context, arg repository.ListOverdueInvoicesParams) ([]repository.ReminderCandidateRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.ReminderCandidateRow
	for _, inv := range f.invoices {
		if inv.Status == "paid" || !inv.DueDate.Time.Before(arg.Before.Time) {
			continue
		}
		if f.hasReminder(inv.ID, arg.ReminderType, arg.SentOn) {
			continue
		}
		out = append(out, f.candidate(inv))
	}
	return out, nil
}

func (f *fakeQuerier) ListSuspensionEligibleInvoices(ctx context.Context, arg repository.ListSuspensionEligibleParams) ([]repository.ReminderCandidateRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.ReminderCandidateRow
	for _, inv := range f.invoices {
		if inv.Status == "paid" || inv.DueDate.Time.After(arg.Cutoff.Time) {
			continue
		}
		svc := f.services[uuidString(inv.ServiceID)]
		if svc.Status != "active" {
			continue
		}
		if f.hasReminder(inv.ID, arg.ReminderType, arg.SentOn) {
			continue
		}
		out = append(out, f.candidate(inv))
	}
	return out, nil
}

// --- reminders ---

func (f *fakeQuerier) InsertReminder(ctx context.Context, arg repository.InsertReminderParams) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertReminderErr != nil && uuidString(arg.InvoiceID) == f.failInsertForInvoice {
		return 0, f.insertReminderErr
	}
	if f.hasReminder(arg.InvoiceID, arg.ReminderType, arg.SentOn) {
		return 0, nil
	}
	f.reminders = append(f.reminders, repository.Reminder{
		ID:           newUUID(),
		InvoiceID:    arg.InvoiceID,
		ReminderType: arg.ReminderType,
		SentOn:       arg.SentOn,
	})
	return 1, nil
}

func (f *fakeQuerier) ListRemindersForInvoice(ctx context.Context, invoiceID pgtype.UUID) ([]repository.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.Reminder
	for _, r := range f.reminders {
		if r.InvoiceID == invoiceID {
			out = append(out, r)
		}
	}
	return out, nil
}

// --- payments ---

func (f *fakeQuerier) CreatePayment(ctx context.Context, arg repository.CreatePaymentParams) (repository.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := repository.Payment{
		ID:          newUUID(),
		InvoiceID:   arg.InvoiceID,
		AmountCents: arg.AmountCents,
		Method:      arg.Method,
		Reference:   arg.Reference,
		Status:      "pending",
		PaidAt:      arg.PaidAt,
	}
	f.payments[uuidString(p.ID)] = p
	return p, nil
}

func (f *fakeQuerier) GetPaymentByID(ctx context.Context, id pgtype.UUID) (repository.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[uuidString(id)]
	if !ok {
		return repository.Payment{}, pgx.ErrNoRows
	}
	return p, nil
}

func (f *fakeQuerier) ListPaymentsForInvoice(ctx context.Context, invoiceID pgtype.UUID) ([]repository.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.Payment
	for _, p := range f.payments {
		if p.InvoiceID == invoiceID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeQuerier) SetPaymentStatus(ctx context.Context, arg repository.SetPaymentStatusParams) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[uuidString(arg.ID)]
	if !ok || p.Status != "pending" {
		return 0, nil
	}
	p.Status = arg.Status
	p.VerifiedAt = arg.VerifiedAt
	f.payments[uuidString(arg.ID)] = p
	return 1, nil
}

func (f *fakeQuerier) SumVerifiedPayments(ctx context.Context, invoiceID pgtype.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total int64
	for _, p := range f.payments {
		if p.InvoiceID == invoiceID && p.Status == "verified" {
			total += p.AmountCents
		}
	}
	return total, nil
}

// --- audit ---

func (f *fakeQuerier) CreateAuditEntry(ctx context.Context, arg repository.CreateAuditEntryParams) (repository.AuditEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := repository.AuditEntry{
		ID:           newUUID(),
		ActorID:      arg.ActorID,
		Action:       arg.Action,
		ResourceType: arg.ResourceType,
		ResourceID:   arg.ResourceID,
		Detail:       arg.Detail,
	}
	f.audit = append(f.audit, a)
	return a, nil
}

func (f *fakeQuerier) ListAuditEntries(ctx context.Context, arg repository.ListAuditEntriesParams) ([]repository.AuditEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.AuditEntry
	for _, a := range f.audit {
		if a.ResourceType == arg.ResourceType && a.ResourceID == arg.ResourceID {
			out = append(out, a)
		}
	}
	return out, nil
}

// --- tickets ---

func (f *fakeQuerier) CreateTicket(ctx context.Context, arg repository.CreateTicketParams) (repository.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := repository.Ticket{ID: newUUID(), CustomerID: arg.CustomerID, Subject: arg.Subject, Body: arg.Body, Status: "open"}
	f.tickets[uuidString(t.ID)] = t
	return t, nil
}

func (f *fakeQuerier) GetTicketByID(ctx context.Context, id pgtype.UUID) (repository.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tickets[uuidString(id)]
	if !ok {
		return repository.Ticket{}, pgx.ErrNoRows
	}
	return t, nil
}

func (f *fakeQuerier) ListTickets(ctx context.Context, arg repository.ListTicketsParams) ([]repository.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.Ticket
	for _, t := range f.tickets {
		if arg.Status == "" || t.Status == arg.Status {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeQuerier) UpdateTicketStatus(ctx context.Context, arg repository.UpdateTicketStatusParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tickets[uuidString(arg.ID)]
	if !ok {
		return pgx.ErrNoRows
	}
	t.Status = arg.Status
	f.tickets[uuidString(arg.ID)] = t
	return nil
}

// --- job queue ---

func (f *fakeQuerier) EnqueueJob(ctx context.Context, arg repository.EnqueueJobParams) (repository.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.enqueueJobErr != nil {
		return repository.Job{}, f.enqueueJobErr
	}
	j := repository.Job{
		ID:          newUUID(),
		JobType:     arg.JobType,
		Queue:       arg.Queue,
		Payload:     arg.Payload,
		Priority:    arg.Priority,
		Status:      "pending",
		MaxRetries:  arg.MaxRetries,
		ScheduledAt: arg.ScheduledAt,
	}
	f.jobs = append(f.jobs, j)
	return j, nil
}

func (f *fakeQuerier) ClaimNextJob(ctx context.Context, arg repository.ClaimNextJobParams) (repository.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, j := range f.jobs {
		if j.Status != "pending" {
			continue
		}
		if arg.Queue != "" && j.Queue != arg.Queue {
			continue
		}
		j.Status = "running"
		j.WorkerID = pgtype.Text{String: arg.WorkerID, Valid: true}
		f.jobs[i] = j
		return j, nil
	}
	return repository.Job{}, pgx.ErrNoRows
}

func (f *fakeQuerier) CompleteJob(ctx context.Context, id pgtype.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, j := range f.jobs {
		if j.ID == id {
			j.Status = "completed"
			f.jobs[i] = j
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeQuerier) FailJob(ctx context.Context, arg repository.FailJobParams) (repository.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, j := range f.jobs {
		if j.ID == arg.ID {
			j.RetryCount++
			j.ErrorMessage = arg.ErrorMessage
			if j.RetryCount >= j.MaxRetries {
				j.Status = "failed"
			} else {
				j.Status = "pending"
			}
			f.jobs[i] = j
			return j, nil
		}
	}
	return repository.Job{}, pgx.ErrNoRows
}

// jobsOfType returns queued jobs matching the given type.
func (f *fakeQuerier) jobsOfType(jobType string) []repository.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.Job
	for _, j := range f.jobs {
		if j.JobType == jobType {
			out = append(out, j)
		}
	}
	return out
}
