package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/swarmgate/swarmgate/internal/domain/coordination"
	"github.com/swarmgate/swarmgate/internal/domain/work"
	"github.com/swarmgate/swarmgate/internal/service"
)

// Handlers holds the engine facade consumed by all routes.
type Handlers struct {
	Coordinator *service.CoordinatorService
	Version     string
}

// NewHandlers creates the handler set.
func NewHandlers(coordinator *service.CoordinatorService, version string) *Handlers {
	return &Handlers{Coordinator: coordinator, Version: version}
}

type planRequest struct {
	Items  []work.Item  `json:"items"`
	Budget *work.Budget `json:"budget,omitempty"`
}

// CreatePlan handles POST /api/coordinations/plan
func (h *Handlers) CreatePlan(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[planRequest](w, r)
	if !ok {
		return
	}
	plan, err := h.Coordinator.Coordinate(r.Context(), req.Items, req.Budget)
	if err != nil {
		writeDomainError(w, err, "plan rejected")
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

type startRequest struct {
	ID        string                `json:"id,omitempty"`
	ItemCount int                   `json:"item_count"`
	Domains   []string              `json:"domains"`
	Strategy  coordination.Strategy `json:"strategy"`
}

type startResponse struct {
	ID string `json:"id"`
}

// StartCoordination handles POST /api/coordinations/start
func (h *Handlers) StartCoordination(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[startRequest](w, r)
	if !ok {
		return
	}
	if req.ItemCount <= 0 {
		writeError(w, http.StatusBadRequest, "item_count must be positive")
		return
	}
	if req.Strategy != "" && !req.Strategy.Valid() {
		writeError(w, http.StatusBadRequest, "unknown strategy")
		return
	}
	id, err := h.Coordinator.ReportStart(r.Context(), req.ID, req.ItemCount, req.Domains, req.Strategy)
	if err != nil {
		writeDomainError(w, err, "start not recorded")
		return
	}
	writeJSON(w, http.StatusOK, startResponse{ID: id})
}

type completeRequest struct {
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// CompleteCoordination handles POST /api/coordinations/{id}/complete
func (h *Handlers) CompleteCoordination(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	req, ok := readJSON[completeRequest](w, r)
	if !ok {
		return
	}
	event, err := h.Coordinator.ReportComplete(r.Context(), id, req.Success, req.ErrorMessage)
	if err != nil {
		writeDomainError(w, err, "completion not recorded")
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// GetAnalytics handles GET /api/analytics
func (h *Handlers) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.Coordinator.GetAnalytics(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}

// GetInsights handles GET /api/insights. Each read runs a generation pass so
// insights are always current with the pattern store.
func (h *Handlers) GetInsights(w http.ResponseWriter, r *http.Request) {
	insights, err := h.Coordinator.GenerateInsights(r.Context())
	if err != nil {
		writeDomainError(w, err, "insights unavailable")
		return
	}
	if insights == nil {
		insights = []coordination.Insight{}
	}
	writeJSON(w, http.StatusOK, insights)
}

type recommendRequest struct {
	Domains   []string `json:"domains"`
	ItemCount int      `json:"item_count"`
}

// Recommend handles POST /api/recommendations
func (h *Handlers) Recommend(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[recommendRequest](w, r)
	if !ok {
		return
	}
	if req.ItemCount <= 0 {
		writeError(w, http.StatusBadRequest, "item_count must be positive")
		return
	}
	rec := h.Coordinator.Recommend(req.Domains, req.ItemCount)
	writeJSON(w, http.StatusOK, rec)
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Health handles GET /health
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: h.Version})
}
