package api

import (
	"log/slog"
	"net/http"

	"github.com/mikronet/billd/internal/handler"
	"github.com/mikronet/billd/internal/service"
)

// CustomerHandler handles customer CRUD routes.
type CustomerHandler struct {
	customers *service.CustomerService
	logger    *slog.Logger
}

// NewCustomerHandler creates a new customer handler.
func NewCustomerHandler(customers *service.CustomerService, logger *slog.Logger) *CustomerHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CustomerHandler{customers: customers, logger: logger}
}

type createCustomerRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
	Address  string `json:"address"`
}

// Create handles POST /api/v1/customers
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if err := handler.DecodeValid(r, &req); err != nil {
		handler.ValidationErrorResponse(w, r, err)
		return
	}

	customer, err := h.customers.CreateCustomer(r.Context(), service.CreateCustomerParams{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.RespondJSON(w, http.StatusCreated, toCustomerResponse(*customer))
}

// Get handles GET /api/v1/customers/{id}
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	customer, err := h.customers.GetCustomer(r.Context(), r.PathValue("id"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.RespondJSON(w, http.StatusOK, toCustomerResponse(*customer))
}

// List handles GET /api/v1/customers
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := handler.Pagination(r)

	customers, err := h.customers.ListCustomers(r.Context(), limit, offset)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	out := make([]customerResponse, len(customers))
	for i, c := range customers {
		out[i] = toCustomerResponse(c)
	}
	handler.RespondJSON(w, http.StatusOK, map[string]interface{}{"customers": out})
}

type updateCustomerRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
	Address  string `json:"address"`
}

// Update handles PUT /api/v1/customers/{id}
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateCustomerRequest
	if err := handler.DecodeValid(r, &req); err != nil {
		handler.ValidationErrorResponse(w, r, err)
		return
	}

	customer, err := h.customers.UpdateCustomer(r.Context(), service.UpdateCustomerParams{
		CustomerID: r.PathValue("id"),
		FullName:   req.FullName,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.RespondJSON(w, http.StatusOK, toCustomerResponse(*customer))
}
