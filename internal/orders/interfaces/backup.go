package interfaces

import (
	"archive/zip"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mellioncoin-cloud/internal/auth"
	dashapp "mellioncoin-cloud/internal/dashboard/application"
	mellion "mellioncoin-cloud/internal/mellion/domain"
	"mellioncoin-cloud/internal/orders/application"
	orders "mellioncoin-cloud/internal/orders/domain"
)

const importBodyLimit = 4 << 20

// BackupHandler serves GET /api/v1/backup with a zip archive of the
// user's data and POST /api/v1/import restoring orders from a CSV.
type BackupHandler struct {
	orders    *application.SimulationService
	dashboard *dashapp.Service
}

// NewBackupHandler constructs a BackupHandler.
func NewBackupHandler(orderService *application.SimulationService, dashboardService *dashapp.Service) (*BackupHandler, error) {
	if orderService == nil {
		return nil, errors.New("backup handler: nil order service")
	}
	if dashboardService == nil {
		return nil, errors.New("backup handler: nil dashboard service")
	}
	return &BackupHandler{orders: orderService, dashboard: dashboardService}, nil
}

// ServeHTTP routes backup and import requests.
func (h *BackupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	username := auth.SubjectFromContext(r.Context())
	if username == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	switch {
	case r.URL.Path == "/api/v1/backup" && r.Method == http.MethodGet:
		h.handleBackup(w, r, username)
	case r.URL.Path == "/api/v1/import" && r.Method == http.MethodPost:
		h.handleImport(w, r, username)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *BackupHandler) handleBackup(w http.ResponseWriter, r *http.Request, username string) {
	list, err := h.orders.List(r.Context(), username, orders.Filter{})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rows, err := h.dashboard.Rows(r.Context(), username, orders.Filter{})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	ordersJSON, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		http.Error(w, "backup error", http.StatusInternalServerError)
		return
	}
	dashboardCSV, err := BuildDashboardCSV(rows)
	if err != nil {
		http.Error(w, "backup error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="mellion-backup-%s.zip"`,
		time.Now().UTC().Format("20060102")))

	archive := zip.NewWriter(w)
	for _, file := range []struct {
		name string
		data []byte
	}{
		{"orders.json", ordersJSON},
		{"dashboard.csv", dashboardCSV},
	} {
		entry, err := archive.Create(file.name)
		if err != nil {
			return
		}
		if _, err := entry.Write(file.data); err != nil {
			return
		}
	}
	_ = archive.Close()
}

// handleImport restores orders from a dashboard-style CSV. Each row
// needs a date, an amount and a reinvest flag; the engine recomputes
// the full result so imported history matches what a live run produces.
func (h *BackupHandler) handleImport(w http.ResponseWriter, r *http.Request, username string) {
	body, err := io.ReadAll(io.LimitReader(r.Body, importBodyLimit))
	if err != nil {
		http.Error(w, "read error", http.StatusBadRequest)
		return
	}
	rows, err := parseImportCSV(string(body))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rate, ok := mellion.RateForCycle(mellion.DefaultCycleDays)
	if !ok {
		http.Error(w, "import error", http.StatusInternalServerError)
		return
	}

	imported := 0
	for _, row := range rows {
		result, err := mellion.Simulate(row.amount, row.reinvest, rate)
		if err != nil {
			http.Error(w, fmt.Sprintf("row %d: %v", row.line, err), http.StatusBadRequest)
			return
		}
		order := &orders.Order{
			Username:   username,
			ComputedAt: row.date,
			CycleEndAt: row.date.AddDate(0, 0, result.CycleDays),
			Requested:  row.reinvest,
			Result:     result,
		}
		if err := h.orders.Import(r.Context(), order); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		imported++
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"imported": imported})
}

type importRow struct {
	line     int
	date     time.Time
	amount   mellion.Cents
	reinvest bool
}

// parseImportCSV accepts comma or semicolon separated files. The header
// must name date, amount and reinvest columns; extra columns are
// ignored so full dashboard exports round-trip.
func parseImportCSV(body string) ([]importRow, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, errors.New("empty file")
	}

	firstLine := body
	if idx := strings.IndexByte(body, '\n'); idx >= 0 {
		firstLine = body[:idx]
	}
	delimiter := ','
	if strings.Count(firstLine, ";") > strings.Count(firstLine, ",") {
		delimiter = ';'
	}

	reader := csv.NewReader(strings.NewReader(body))
	reader.Comma = delimiter
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.New("invalid csv header")
	}
	columns := map[string]int{}
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	dateCol, ok := columns["date"]
	if !ok {
		return nil, errors.New("missing date column")
	}
	amountCol, ok := columns["amount"]
	if !ok {
		amountCol, ok = columns["invested"]
	}
	if !ok {
		return nil, errors.New("missing amount column")
	}
	reinvestCol, hasReinvest := columns["reinvest"]

	var rows []importRow
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid csv", line)
		}
		date, err := parseImportDate(record[dateCol])
		if err != nil {
			return nil, fmt.Errorf("line %d: %v", line, err)
		}
		amount, err := parseImportAmount(record[amountCol])
		if err != nil {
			return nil, fmt.Errorf("line %d: %v", line, err)
		}
		reinvest := false
		if hasReinvest && reinvestCol < len(record) {
			reinvest, _ = strconv.ParseBool(strings.TrimSpace(record[reinvestCol]))
		}
		rows = append(rows, importRow{line: line, date: date, amount: amount, reinvest: reinvest})
	}
	if len(rows) == 0 {
		return nil, errors.New("no data rows")
	}
	return rows, nil
}

func parseImportDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{time.RFC3339, "2006-01-02", "02.01.2006"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, errors.New("unrecognized date")
}

// parseImportAmount reads a currency amount with up to two decimals
// and converts it to cents without going through floats.
func parseImportAmount(value string) (mellion.Cents, error) {
	value = strings.TrimSpace(strings.ReplaceAll(value, " ", ""))
	value = strings.ReplaceAll(value, ",", ".")
	whole, frac, hasFrac := strings.Cut(value, ".")
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, errors.New("invalid amount")
	}
	cents := units * 100
	if hasFrac {
		if len(frac) > 2 {
			frac = frac[:2]
		}
		for len(frac) < 2 {
			frac += "0"
		}
		parsed, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, errors.New("invalid amount")
		}
		if units < 0 {
			cents -= parsed
		} else {
			cents += parsed
		}
	}
	return mellion.Cents(cents), nil
}
