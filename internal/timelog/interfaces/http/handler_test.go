package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	timelog "carsplay/internal/timelog/domain"
	"carsplay/internal/timelog/infrastructure/memory"
)

func seedLogs(t *testing.T) *memory.Repository {
	t.Helper()
	repo := memory.NewRepository()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	logs := []timelog.TimeLog{
		{
			ClientID:        "log-1",
			StationID:       "station-1",
			StationNumber:   1,
			StationName:     "Kart 1",
			Username:        "alex",
			Start:           base,
			End:             base.Add(30 * time.Minute),
			DurationSeconds: 1800,
			Amount:          100,
		},
		{
			ClientID:        "log-2",
			StationID:       "station-2",
			StationNumber:   2,
			StationName:     "Kart 2",
			Username:        "sam",
			Start:           base.Add(time.Hour),
			End:             base.Add(time.Hour + 15*time.Minute),
			DurationSeconds: 900,
			Amount:          60,
		},
	}
	for i := range logs {
		if err := repo.Insert(context.Background(), &logs[i]); err != nil {
			t.Fatalf("seed log: %v", err)
		}
	}
	return repo
}

func TestListLogsWithTotal(t *testing.T) {
	handler, err := NewHandler(seedLogs(t))
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/time/logs", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Logs  []logResponse `json:"logs"`
		Total float64       `json:"total"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Logs) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(resp.Logs))
	}
	if resp.Total != 160 {
		t.Fatalf("expected total 160, got %v", resp.Total)
	}
	// Newest first.
	if resp.Logs[0].ClientID != "log-2" {
		t.Fatalf("expected log-2 first, got %s", resp.Logs[0].ClientID)
	}
}

func TestListLogsFilterByStation(t *testing.T) {
	handler, err := NewHandler(seedLogs(t))
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/time/logs?station_id=station-1", nil))
	var resp struct {
		Logs  []logResponse `json:"logs"`
		Total float64       `json:"total"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Logs) != 1 || resp.Logs[0].StationID != "station-1" {
		t.Fatalf("unexpected logs: %+v", resp.Logs)
	}
}

func TestListLogsRejectsBadBound(t *testing.T) {
	handler, err := NewHandler(seedLogs(t))
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/time/logs?from=yesterday", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestReportDownloads(t *testing.T) {
	handler, err := NewHandler(seedLogs(t))
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/time/report.xlsx?from=2025-06-01&to=2025-06-02", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.Len() == 0 {
		t.Fatal("expected xlsx bytes")
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/time/report.pdf", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Fatal("expected pdf magic bytes")
	}
}
