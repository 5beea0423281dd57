package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mellioncoin-cloud/internal/auth"
	mellion "mellioncoin-cloud/internal/mellion/domain"
	"mellioncoin-cloud/internal/orders/application"
	orders "mellioncoin-cloud/internal/orders/domain"
)

const timeLayout = time.RFC3339

// Handler serves simulation and order endpoints.
type Handler struct {
	service *application.SimulationService
}

// NewHandler constructs a Handler.
func NewHandler(service *application.SimulationService) (*Handler, error) {
	if service == nil {
		return nil, errors.New("orders handler: nil service")
	}
	return &Handler{service: service}, nil
}

// ServeHTTP routes simulation and order requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	username := auth.SubjectFromContext(r.Context())
	if username == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if r.URL.Path == "/api/v1/simulations" && r.Method == http.MethodPost {
		h.handleSimulate(w, r, username)
		return
	}
	if r.URL.Path == "/api/v1/orders" && r.Method == http.MethodGet {
		h.handleList(w, r, username)
		return
	}
	if r.URL.Path == "/api/v1/orders/reset" && r.Method == http.MethodPost {
		h.handleReset(w, r, username)
		return
	}

	if rest, ok := strings.CutPrefix(r.URL.Path, "/api/v1/orders/"); ok {
		parts := strings.Split(rest, "/")
		index, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil || index <= 0 {
			http.Error(w, "invalid order index", http.StatusBadRequest)
			return
		}
		if len(parts) == 1 && r.Method == http.MethodGet {
			h.handleGet(w, r, username, index)
			return
		}
		if len(parts) == 2 && parts[1] == "favorite" && r.Method == http.MethodPost {
			h.handleFavorite(w, r, username, index)
			return
		}
	}

	w.WriteHeader(http.StatusNotFound)
}

func (h *Handler) handleSimulate(w http.ResponseWriter, r *http.Request, username string) {
	var req struct {
		AmountCents int64 `json:"amount_cents"`
		Reinvest    bool  `json:"reinvest"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	order, err := h.service.Run(r.Context(), username, mellion.Cents(req.AmountCents), req.Reinvest)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(orderView(order))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request, username string) {
	filter, err := parseFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	list, err := h.service.List(r.Context(), username, filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	views := make([]map[string]any, 0, len(list))
	for _, order := range list {
		views = append(views, orderView(order))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"orders": views})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request, username string, index int64) {
	order, err := h.service.Get(r.Context(), username, index)
	if err != nil {
		if errors.Is(err, orders.ErrOrderNotFound) {
			http.Error(w, "order not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(orderView(order))
}

func (h *Handler) handleFavorite(w http.ResponseWriter, r *http.Request, username string, index int64) {
	var req struct {
		Favorite bool `json:"favorite"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := h.service.SetFavorite(r.Context(), username, index, req.Favorite); err != nil {
		if errors.Is(err, orders.ErrOrderNotFound) {
			http.Error(w, "order not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request, username string) {
	if err := h.service.Reset(r.Context(), username); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// respondEngineError maps engine validation failures to 400 with the
// sentinel text unchanged; allocation failures are server-side bugs.
func respondEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, mellion.ErrInvalidAmount), errors.Is(err, mellion.ErrNotUnitMultiple):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, mellion.ErrAllocation):
		http.Error(w, err.Error(), http.StatusInternalServerError)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func parseFilter(r *http.Request) (orders.Filter, error) {
	var filter orders.Filter
	query := r.URL.Query()
	if raw := query.Get("from"); raw != "" {
		parsed, err := time.Parse(timeLayout, raw)
		if err != nil {
			return filter, errors.New("from must be RFC3339")
		}
		filter.From = parsed.UTC()
	}
	if raw := query.Get("to"); raw != "" {
		parsed, err := time.Parse(timeLayout, raw)
		if err != nil {
			return filter, errors.New("to must be RFC3339")
		}
		filter.To = parsed.UTC()
	}
	filter.FavoritesOnly = query.Get("favorites") == "true"
	return filter, nil
}

func orderView(order *orders.Order) map[string]any {
	return map[string]any{
		"id":           order.ID,
		"order_index":  order.Index,
		"computed_at":  order.ComputedAt.Format(timeLayout),
		"cycle_end_at": order.CycleEndAt.Format(timeLayout),
		"favorite":     order.Favorite,
		"result":       order.Result,
	}
}
