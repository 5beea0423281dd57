package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"mellioncoin-cloud/internal/auth"
	"mellioncoin-cloud/internal/dashboard/application"
	orders "mellioncoin-cloud/internal/orders/domain"
)

// Handler serves dashboard and analytics endpoints.
type Handler struct {
	service *application.Service
}

// NewHandler constructs a Handler.
func NewHandler(service *application.Service) (*Handler, error) {
	if service == nil {
		return nil, errors.New("dashboard handler: nil service")
	}
	return &Handler{service: service}, nil
}

// ServeHTTP routes dashboard requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	username := auth.SubjectFromContext(r.Context())
	if username == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	switch r.URL.Path {
	case "/api/v1/dashboard":
		h.handleRows(w, r, username)
	case "/api/v1/analytics":
		h.handleAnalytics(w, r, username)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleRows(w http.ResponseWriter, r *http.Request, username string) {
	rows, err := h.service.Rows(r.Context(), username, orders.Filter{})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"rows": rows})
}

func (h *Handler) handleAnalytics(w http.ResponseWriter, r *http.Request, username string) {
	months := 12
	if raw := r.URL.Query().Get("months"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 120 {
			http.Error(w, "months must be a positive integer", http.StatusBadRequest)
			return
		}
		months = parsed
	}
	rollups, err := h.service.MonthlyRollups(r.Context(), username, months)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"months": rollups})
}
