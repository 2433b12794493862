package api

import (
	"log/slog"
	"net/http"

	"github.com/mikronet/billd/internal/handler"
	"github.com/mikronet/billd/internal/service"
)

// PlanHandler handles bandwidth plan routes.
type PlanHandler struct {
	customers *service.CustomerService
	logger    *slog.Logger
}

// NewPlanHandler creates a new plan handler.
func NewPlanHandler(customers *service.CustomerService, logger *slog.Logger) *PlanHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlanHandler{customers: customers, logger: logger}
}

type createPlanRequest struct {
	Name              string `json:"name" validate:"required"`
	DownloadKbps      int32  `json:"download_kbps" validate:"gt=0"`
	UploadKbps        int32  `json:"upload_kbps" validate:"gt=0"`
	MonthlyPriceCents int64  `json:"monthly_price_cents" validate:"gt=0"`
}

// Create handles POST /api/v1/plans
func (h *PlanHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPlanRequest
	if err := handler.DecodeValid(r, &req); err != nil {
		handler.ValidationErrorResponse(w, r, err)
		return
	}

	plan, err := h.customers.CreatePlan(r.Context(), service.CreatePlanParams{
		Name:              req.Name,
		DownloadKbps:      req.DownloadKbps,
		UploadKbps:        req.UploadKbps,
		MonthlyPriceCents: req.MonthlyPriceCents,
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.RespondJSON(w, http.StatusCreated, toPlanResponse(*plan))
}

// Get handles GET /api/v1/plans/{id}
func (h *PlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	plan, err := h.customers.GetPlan(r.Context(), r.PathValue("id"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.RespondJSON(w, http.StatusOK, toPlanResponse(*plan))
}

// List handles GET /api/v1/plans
func (h *PlanHandler) List(w http.ResponseWriter, r *http.Request) {
	plans, err := h.customers.ListPlans(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	out := make([]planResponse, len(plans))
	for i, p := range plans {
		out[i] = toPlanResponse(p)
	}
	handler.RespondJSON(w, http.StatusOK, map[string]interface{}{"plans": out})
}
