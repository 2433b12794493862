package api

import (
	"log/slog"
	"net/http"

	"github.com/mikronet/billd/internal/domain"
	"github.com/mikronet/billd/internal/handler"
	"github.com/mikronet/billd/internal/service"
)

// ServiceHandler handles subscriber service routes, including the operator
// reactivate and terminate actions.
type ServiceHandler struct {
	customers  *service.CustomerService
	suspension domain.SuspensionService
	logger     *slog.Logger
}

// NewServiceHandler creates a new service handler.
func NewServiceHandler(customers *service.CustomerService, suspension domain.SuspensionService, logger *slog.Logger) *ServiceHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ServiceHandler{customers: customers, suspension: suspension, logger: logger}
}

type createServiceRequest struct {
	CustomerID    string `json:"customer_id" validate:"required,uuid"`
	PlanID        string `json:"plan_id" validate:"required,uuid"`
	Username      string `json:"username" validate:"required"`
	RouterAddress string `json:"router_address" validate:"required"`
}

// Create handles POST /api/v1/services
func (h *ServiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createServiceRequest
	if err := handler.DecodeValid(r, &req); err != nil {
		handler.ValidationErrorResponse(w, r, err)
		return
	}

	svc, err := h.customers.CreateService(r.Context(), service.CreateServiceParams{
		CustomerID:    req.CustomerID,
		PlanID:        req.PlanID,
		Username:      req.Username,
		RouterAddress: req.RouterAddress,
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.RespondJSON(w, http.StatusCreated, toServiceResponse(*svc))
}

// Get handles GET /api/v1/services/{id}
func (h *ServiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	svc, err := h.customers.GetService(r.Context(), r.PathValue("id"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.RespondJSON(w, http.StatusOK, toServiceResponse(*svc))
}

// List handles GET /api/v1/services
func (h *ServiceHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := handler.Pagination(r)

	services, err := h.customers.ListServices(r.Context(), limit, offset)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	out := make([]serviceResponse, len(services))
	for i, s := range services {
		out[i] = toServiceResponse(s)
	}
	handler.RespondJSON(w, http.StatusOK, map[string]interface{}{"services": out})
}

type operatorActionRequest struct {
	ActorID string `json:"actor_id" validate:"omitempty,uuid"`
}

// Reactivate handles POST /api/v1/services/{id}/reactivate
func (h *ServiceHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	var req operatorActionRequest
	if err := handler.DecodeValid(r, &req); err != nil {
		handler.ValidationErrorResponse(w, r, err)
		return
	}

	err := h.suspension.Reactivate(r.Context(), domain.ReactivateParams{
		ServiceID: r.PathValue("id"),
		ActorID:   req.ActorID,
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	svc, err := h.customers.GetService(r.Context(), r.PathValue("id"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, toServiceResponse(*svc))
}

// Terminate handles POST /api/v1/services/{id}/terminate
func (h *ServiceHandler) Terminate(w http.ResponseWriter, r *http.Request) {
	var req operatorActionRequest
	if err := handler.DecodeValid(r, &req); err != nil {
		handler.ValidationErrorResponse(w, r, err)
		return
	}

	err := h.suspension.Terminate(r.Context(), domain.ReactivateParams{
		ServiceID: r.PathValue("id"),
		ActorID:   req.ActorID,
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	svc, err := h.customers.GetService(r.Context(), r.PathValue("id"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, toServiceResponse(*svc))
}
