package http

import (
	"encoding/json"
	"errors"
	"net/http"

	mellion "mellioncoin-cloud/internal/mellion/domain"
	"mellioncoin-cloud/internal/observability/metrics"
)

// ProjectionHandler serves the multi-cycle projector endpoints.
type ProjectionHandler struct{}

// NewProjectionHandler constructs a handler.
func NewProjectionHandler() *ProjectionHandler {
	return &ProjectionHandler{}
}

// ServeHTTP routes projection requests.
func (h *ProjectionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	switch r.URL.Path {
	case "/api/v1/projections":
		h.handleProject(w, r)
	case "/api/v1/projections/required":
		h.handleRequired(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *ProjectionHandler) handleProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StartCents int64 `json:"start_cents"`
		Cycles     int   `json:"cycles"`
		Reinvest   bool  `json:"reinvest"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	rows, err := mellion.Project(mellion.Cents(req.StartCents), req.Cycles, req.Reinvest)
	if err != nil {
		metrics.IncProjection("forward", "error")
		respondProjectionError(w, err)
		return
	}
	metrics.IncProjection("forward", "success")
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"cycles": rows})
}

func (h *ProjectionHandler) handleRequired(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TargetCents int64 `json:"target_cents"`
		Cycles      int   `json:"cycles"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	required, err := mellion.RequiredInitialForTarget(mellion.Cents(req.TargetCents), req.Cycles)
	if err != nil {
		metrics.IncProjection("inverse", "error")
		respondProjectionError(w, err)
		return
	}
	metrics.IncProjection("inverse", "success")
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(required)
}

func respondProjectionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, mellion.ErrInvalidAmount),
		errors.Is(err, mellion.ErrNotUnitMultiple),
		errors.Is(err, mellion.ErrInvalidTarget),
		errors.Is(err, mellion.ErrInvalidCycleCount):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
