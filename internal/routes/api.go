package routes

import (
	"github.com/mikronet/billd/internal/router"
)

// RegisterAPIRoutes registers the back-office API under /api/v1, plus the
// operational endpoints (/healthz, /metrics) at the root.
func RegisterAPIRoutes(r *router.Router, deps APIDeps) {
	// Customers
	r.Post("/api/v1/customers", deps.Customers.Create)
	r.Get("/api/v1/customers", deps.Customers.List)
	r.Get("/api/v1/customers/{id}", deps.Customers.Get)
	r.Put("/api/v1/customers/{id}", deps.Customers.Update)
	r.Get("/api/v1/customers/{id}/invoices", deps.Invoices.ListForCustomer)

	// Plans
	r.Post("/api/v1/plans", deps.Plans.Create)
	r.Get("/api/v1/plans", deps.Plans.List)
	r.Get("/api/v1/plans/{id}", deps.Plans.Get)

	// Services
	r.Post("/api/v1/services", deps.Services.Create)
	r.Get("/api/v1/services", deps.Services.List)
	r.Get("/api/v1/services/{id}", deps.Services.Get)
	r.Post("/api/v1/services/{id}/reactivate", deps.Services.Reactivate)
	r.Post("/api/v1/services/{id}/terminate", deps.Services.Terminate)

	// Invoices and payments
	r.Post("/api/v1/invoices/generate", deps.Invoices.Generate)
	r.Get("/api/v1/invoices", deps.Invoices.List)
	r.Get("/api/v1/invoices/{id}", deps.Invoices.Get)
	r.Post("/api/v1/invoices/{id}/payments", deps.Payments.Record)
	r.Post("/api/v1/payments/{id}/verify", deps.Payments.Verify)
	r.Post("/api/v1/payments/{id}/reject", deps.Payments.Reject)

	// Tickets
	r.Post("/api/v1/tickets", deps.Tickets.Open)
	r.Get("/api/v1/tickets", deps.Tickets.List)
	r.Get("/api/v1/tickets/{id}", deps.Tickets.Get)
	r.Post("/api/v1/tickets/{id}/status", deps.Tickets.UpdateStatus)

	// Scheduler hook for the external cron
	r.Post("/api/v1/scheduler/reminder-pass", deps.Scheduler.RunReminderPass)

	// Operational endpoints
	r.Get("/healthz", deps.Health.Healthz)
	if deps.Metrics != nil {
		r.Handle("GET", "/metrics", deps.Metrics.Handler())
	}
}
