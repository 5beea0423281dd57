package interfaces

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mellioncoin-cloud/internal/auth"
	dashapp "mellioncoin-cloud/internal/dashboard/application"
	dashmem "mellioncoin-cloud/internal/dashboard/infrastructure/memory"
	"mellioncoin-cloud/internal/orders/application"
	orders "mellioncoin-cloud/internal/orders/domain"
	ordersmem "mellioncoin-cloud/internal/orders/infrastructure/memory"
)

func newBackupFixture(t *testing.T) (*BackupHandler, *application.SimulationService) {
	t.Helper()
	repo := ordersmem.NewOrderRepository()
	service, err := application.NewSimulationService(repo, nil, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	dashboardService, err := dashapp.NewService(repo, dashmem.NewAnalyticsRepository(repo, nil))
	if err != nil {
		t.Fatalf("new dashboard service: %v", err)
	}
	handler, err := NewBackupHandler(service, dashboardService)
	if err != nil {
		t.Fatalf("new backup handler: %v", err)
	}
	return handler, service
}

func asUser(req *http.Request, username string) *http.Request {
	return req.WithContext(auth.WithIdentity(req.Context(), auth.RoleAdmin, username))
}

func TestBackupEndpoint_ZipContents(t *testing.T) {
	handler, service := newBackupFixture(t)
	if _, err := service.Run(context.Background(), "alice", 300000, true); err != nil {
		t.Fatalf("seed: %v", err)
	}

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/v1/backup", nil), "alice")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if got := resp.Header().Get("Content-Type"); got != "application/zip" {
		t.Fatalf("expected zip content type, got %q", got)
	}

	reader, err := zip.NewReader(bytes.NewReader(resp.Body.Bytes()), int64(resp.Body.Len()))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	names := map[string]bool{}
	for _, file := range reader.File {
		names[file.Name] = true
	}
	if !names["orders.json"] || !names["dashboard.csv"] {
		t.Fatalf("expected orders.json and dashboard.csv, got %v", names)
	}

	ordersFile, err := reader.Open("orders.json")
	if err != nil {
		t.Fatalf("open orders.json: %v", err)
	}
	defer ordersFile.Close()
	data, err := io.ReadAll(ordersFile)
	if err != nil {
		t.Fatalf("read orders.json: %v", err)
	}
	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err != nil {
		t.Fatalf("orders.json is not a json array: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 order in backup, got %d", len(list))
	}
}

func TestImportEndpoint_RebuildsOrders(t *testing.T) {
	handler, service := newBackupFixture(t)

	body := strings.Join([]string{
		"date,amount,reinvest",
		"2025-01-15,3000.00,true",
		"2025-02-12,500,false",
	}, "\n")
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/v1/import", strings.NewReader(body)), "alice")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var result struct {
		Imported int `json:"imported"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Imported != 2 {
		t.Fatalf("expected 2 imported, got %d", result.Imported)
	}

	list, err := service.List(context.Background(), "alice", orders.Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(list))
	}
	first := list[0]
	if !first.Result.Reinvest.Applied {
		t.Fatal("expected reinvestment recomputed for the first row")
	}
	want := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	if !first.ComputedAt.Equal(want) {
		t.Fatalf("expected computed at %v, got %v", want, first.ComputedAt)
	}
	if !first.CycleEndAt.Equal(want.AddDate(0, 0, 28)) {
		t.Fatalf("unexpected cycle end %v", first.CycleEndAt)
	}
}

func TestImportEndpoint_RejectsBadRows(t *testing.T) {
	handler, _ := newBackupFixture(t)

	body := "date,amount\n2025-01-15,123.45"
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/v1/import", strings.NewReader(body)), "alice")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-multiple amount, got %d", resp.Code)
	}
}
