package routes

import (
	"github.com/mikronet/billd/internal/handler/api"
	"github.com/mikronet/billd/internal/middleware"
)

// APIDeps contains the constructed handlers for the back-office API.
type APIDeps struct {
	Customers *api.CustomerHandler
	Plans     *api.PlanHandler
	Services  *api.ServiceHandler
	Invoices  *api.InvoiceHandler
	Payments  *api.PaymentHandler
	Tickets   *api.TicketHandler
	Scheduler *api.SchedulerHandler
	Health    *api.HealthHandler

	// Metrics serves the Prometheus scrape endpoint and instruments
	// every route when set.
	Metrics *middleware.Metrics
}
