package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/lendcore/credit-workflow/internal/domain"
	"github.com/lendcore/credit-workflow/internal/service"
	"github.com/lendcore/credit-workflow/pkg/response"
)

// Metrics
var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "credit_workflow_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "credit_workflow_http_request_duration_seconds",
		Help:    "Request latency",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"method", "endpoint"})
)

type ApplicationHandler struct {
	apps       *service.ApplicationService
	collateral *service.CollateralService
	validator  *validator.Validate
}

func NewApplicationHandler(apps *service.ApplicationService, collateral *service.CollateralService) *ApplicationHandler {
	return &ApplicationHandler{
		apps:       apps,
		collateral: collateral,
		validator:  validator.New(),
	}
}

func (h *ApplicationHandler) CreateApplication(w http.ResponseWriter, r *http.Request) {
	defer h.observe("POST", "/applications")()

	var req domain.CreateApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.count("POST", "/applications", http.StatusBadRequest)
		response.BadRequest(w, "Invalid request body", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		h.count("POST", "/applications", http.StatusBadRequest)
		response.BadRequest(w, "Validation failed", err)
		return
	}

	app, err := h.apps.CreateApplication(r.Context(), &req)
	if err != nil {
		h.count("POST", "/applications", http.StatusConflict)
		response.FromBusinessError(w, err)
		return
	}

	h.count("POST", "/applications", http.StatusCreated)
	response.Created(w, app)
}

func (h *ApplicationHandler) GetApplication(w http.ResponseWriter, r *http.Request) {
	defer h.observe("GET", "/applications/{id}")()

	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	resp, err := h.apps.GetApplication(r.Context(), id)
	if err != nil {
		response.FromBusinessError(w, err)
		return
	}

	h.count("GET", "/applications/{id}", http.StatusOK)
	response.Success(w, resp)
}

func (h *ApplicationHandler) UpdateApplication(w http.ResponseWriter, r *http.Request) {
	defer h.observe("PUT", "/applications/{id}")()

	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req domain.UpdateApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	app, err := h.apps.UpdateApplication(r.Context(), id, &req)
	if err != nil {
		response.FromBusinessError(w, err)
		return
	}

	h.count("PUT", "/applications/{id}", http.StatusOK)
	response.Success(w, app)
}

func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "submit", h.apps.Submit)
}

func (h *ApplicationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "approve", h.apps.Approve)
}

func (h *ApplicationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "reject", h.apps.Reject)
}

func (h *ApplicationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "cancel", h.apps.Cancel)
}

func (h *ApplicationHandler) AddCollateral(w http.ResponseWriter, r *http.Request) {
	defer h.observe("POST", "/applications/{id}/collateral")()

	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req domain.AddCollateralRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	link, err := h.collateral.AddCollateral(r.Context(), id, &req)
	if err != nil {
		response.FromBusinessError(w, err)
		return
	}

	h.count("POST", "/applications/{id}/collateral", http.StatusCreated)
	response.Created(w, link)
}

func (h *ApplicationHandler) RemoveCollateral(w http.ResponseWriter, r *http.Request) {
	defer h.observe("DELETE", "/applications/{id}/collateral/{linkId}")()

	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	linkID, ok := h.pathID(w, r, "linkId")
	if !ok {
		return
	}

	link, err := h.collateral.RemoveCollateral(r.Context(), id, linkID)
	if err != nil {
		response.FromBusinessError(w, err)
		return
	}

	h.count("DELETE", "/applications/{id}/collateral/{linkId}", http.StatusOK)
	response.Success(w, link)
}

func (h *ApplicationHandler) ListCollateral(w http.ResponseWriter, r *http.Request) {
	defer h.observe("GET", "/applications/{id}/collateral")()

	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	resp, err := h.collateral.ListCollateral(r.Context(), id)
	if err != nil {
		response.FromBusinessError(w, err)
		return
	}

	h.count("GET", "/applications/{id}/collateral", http.StatusOK)
	response.Success(w, resp)
}

func (h *ApplicationHandler) PreviewSchedule(w http.ResponseWriter, r *http.Request) {
	defer h.observe("POST", "/applications/{id}/schedule-preview")()

	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var overrides domain.SchedulePreviewRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&overrides); err != nil {
			response.BadRequest(w, "Invalid request body", err)
			return
		}
	}

	result, err := h.apps.PreviewSchedule(r.Context(), id, overrides)
	if err != nil {
		response.FromBusinessError(w, err)
		return
	}

	h.count("POST", "/applications/{id}/schedule-preview", http.StatusOK)
	response.Success(w, result)
}

type transitionFunc func(ctx context.Context, id uuid.UUID, note *string) (*domain.LoanApplication, error)

func (h *ApplicationHandler) transition(w http.ResponseWriter, r *http.Request, name string, fn transitionFunc) {
	endpoint := "/applications/{id}/" + name
	defer h.observe("POST", endpoint)()

	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req domain.TransitionRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid request body", err)
			return
		}
	}

	app, err := fn(r.Context(), id, req.Note)
	if err != nil {
		response.FromBusinessError(w, err)
		return
	}

	h.count("POST", endpoint, http.StatusOK)
	response.Success(w, app)
}

func (h *ApplicationHandler) pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.BadRequest(w, "Invalid "+name, err)
		return uuid.Nil, false
	}
	return id, true
}

func (h *ApplicationHandler) observe(method, endpoint string) func() {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues(method, endpoint))
	return func() { timer.ObserveDuration() }
}

func (h *ApplicationHandler) count(method, endpoint string, status int) {
	httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
}
