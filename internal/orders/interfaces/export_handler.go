package interfaces

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"mellioncoin-cloud/internal/auth"
	dashapp "mellioncoin-cloud/internal/dashboard/application"
	"mellioncoin-cloud/internal/observability/metrics"
	"mellioncoin-cloud/internal/orders/application"
	orders "mellioncoin-cloud/internal/orders/domain"
)

// ExportHandler serves order and dashboard exports.
type ExportHandler struct {
	orders    *application.SimulationService
	dashboard *dashapp.Service
}

// NewExportHandler constructs an ExportHandler.
func NewExportHandler(orderService *application.SimulationService, dashboardService *dashapp.Service) (*ExportHandler, error) {
	if orderService == nil {
		return nil, errors.New("export handler: nil order service")
	}
	if dashboardService == nil {
		return nil, errors.New("export handler: nil dashboard service")
	}
	return &ExportHandler{orders: orderService, dashboard: dashboardService}, nil
}

// ServeHTTP handles GET /api/v1/exports/{orders|dashboard}.{csv|pdf|xlsx}.
func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	username := auth.SubjectFromContext(r.Context())
	if username == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	name, ok := strings.CutPrefix(r.URL.Path, "/api/v1/exports/")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	subject, format, ok := strings.Cut(name, ".")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	started := time.Now()
	var payload []byte
	var err error
	switch subject {
	case "orders":
		list, listErr := h.orders.List(r.Context(), username, orders.Filter{})
		if listErr != nil {
			http.Error(w, listErr.Error(), http.StatusInternalServerError)
			return
		}
		switch format {
		case "csv":
			payload, err = BuildOrdersCSV(list)
		case "pdf":
			payload, err = BuildOrdersPDF(username, list)
		case "xlsx":
			payload, err = BuildOrdersXLSX(list)
		default:
			w.WriteHeader(http.StatusNotFound)
			return
		}
	case "dashboard":
		rows, rowErr := h.dashboard.Rows(r.Context(), username, orders.Filter{})
		if rowErr != nil {
			http.Error(w, rowErr.Error(), http.StatusInternalServerError)
			return
		}
		switch format {
		case "csv":
			payload, err = BuildDashboardCSV(rows)
		case "pdf":
			payload, err = BuildDashboardPDF(username, rows)
		case "xlsx":
			payload, err = BuildDashboardXLSX(rows)
		default:
			w.WriteHeader(http.StatusNotFound)
			return
		}
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		metrics.ObserveExport(format, "error", time.Since(started))
		http.Error(w, "export error", http.StatusInternalServerError)
		return
	}
	metrics.ObserveExport(format, "success", time.Since(started))

	w.Header().Set("Content-Type", contentTypeFor(format))
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	_, _ = w.Write(payload)
}

func contentTypeFor(format string) string {
	switch format {
	case "csv":
		return "text/csv; charset=utf-8"
	case "pdf":
		return "application/pdf"
	case "xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}
