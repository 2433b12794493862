package api

import (
	"log/slog"
	"net/http"

	"github.com/mikronet/billd/internal/handler"
	"github.com/mikronet/billd/internal/service"
)

// TicketHandler handles support ticket routes.
type TicketHandler struct {
	tickets *service.TicketService
	logger  *slog.Logger
}

// NewTicketHandler creates a new ticket handler.
func NewTicketHandler(tickets *service.TicketService, logger *slog.Logger) *TicketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TicketHandler{tickets: tickets, logger: logger}
}

type openTicketRequest struct {
	CustomerID string `json:"customer_id" validate:"required,uuid"`
	Subject    string `json:"subject" validate:"required"`
	Body       string `json:"body" validate:"required"`
}

// Open handles POST /api/v1/tickets
func (h *TicketHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req openTicketRequest
	if err := handler.DecodeValid(r, &req); err != nil {
		handler.ValidationErrorResponse(w, r, err)
		return
	}

	ticket, err := h.tickets.OpenTicket(r.Context(), service.OpenTicketParams{
		CustomerID: req.CustomerID,
		Subject:    req.Subject,
		Body:       req.Body,
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.RespondJSON(w, http.StatusCreated, toTicketResponse(*ticket))
}

// Get handles GET /api/v1/tickets/{id}
func (h *TicketHandler) Get(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.tickets.GetTicket(r.Context(), r.PathValue("id"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.RespondJSON(w, http.StatusOK, toTicketResponse(*ticket))
}

// List handles GET /api/v1/tickets?status=open
func (h *TicketHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := handler.Pagination(r)

	tickets, err := h.tickets.ListTickets(r.Context(), r.URL.Query().Get("status"), limit, offset)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	out := make([]ticketResponse, len(tickets))
	for i, tk := range tickets {
		out[i] = toTicketResponse(tk)
	}
	handler.RespondJSON(w, http.StatusOK, map[string]interface{}{"tickets": out})
}

type updateTicketStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=open in_progress closed"`
}

// UpdateStatus handles POST /api/v1/tickets/{id}/status
func (h *TicketHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateTicketStatusRequest
	if err := handler.DecodeValid(r, &req); err != nil {
		handler.ValidationErrorResponse(w, r, err)
		return
	}

	ticket, err := h.tickets.UpdateTicketStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.RespondJSON(w, http.StatusOK, toTicketResponse(*ticket))
}
