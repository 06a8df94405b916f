package http

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	rentalapp "carsplay/internal/rental/application"
	"carsplay/internal/rental/application/events"
	"carsplay/internal/rental/infrastructure/storage"
)

type nopPublisher struct{}

func (nopPublisher) PublishSessionCompleted(context.Context, events.SessionCompleted) error {
	return nil
}

func (nopPublisher) PublishSessionSettled(context.Context, events.SessionSettled) error {
	return nil
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func newTestHandler(t *testing.T) (*Handler, *rentalapp.Engine) {
	t.Helper()
	cfg := rentalapp.Config{
		DefaultMinutes: 30,
		FallbackTiers: []rentalapp.TierConfig{
			{Minutes: 15, Amount: 60},
			{Minutes: 30, Amount: 100},
		},
	}
	scheduler := rentalapp.NewIntervalScheduler(time.Hour)
	t.Cleanup(scheduler.Stop)
	engine, err := rentalapp.NewEngine(
		fixedClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)},
		scheduler,
		storage.NewMemorySnapshotStore(),
		nil,
		nopPublisher{},
		cfg,
		log.New(io.Discard, "", 0),
	)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	handler, err := NewHandler(engine)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return handler, engine
}

func TestStartReturnsStationState(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/timers/station-1/start", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp stationResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "running" || resp.SelectedMinutes != 30 || resp.PlannedAmount != 100 {
		t.Fatalf("unexpected state: %+v", resp)
	}
	if len(resp.Sessions) != 1 || resp.Sessions[0].End != nil {
		t.Fatalf("expected one open session, got %+v", resp.Sessions)
	}
}

func TestDoubleStartConflicts(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/timers/station-1/start", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/timers/station-1/start", nil))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on double start, got %d", rec.Code)
	}
}

func TestDurationRejectsUnknownTier(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/timers/station-1/duration",
		strings.NewReader(`{"minutes":42}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/timers/station-1/duration",
		strings.NewReader(`{"minutes":15}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestTransferSelfRejected(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/timers/station-1/transfer",
		strings.NewReader(`{"destination":"station-1"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestListIncludesAggregateTotal(t *testing.T) {
	handler, engine := newTestHandler(t)
	ctx := context.Background()

	if err := engine.Start(ctx, "station-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := engine.StopEarly(ctx, "station-1", "alex"); err != nil {
		t.Fatalf("stop early: %v", err)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/timers", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Stations []stationResponse `json:"stations"`
		Total    float64           `json:"total"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 100 {
		t.Fatalf("expected total 100, got %v", resp.Total)
	}
	if len(resp.Stations) != 1 || resp.Stations[0].Status != "idle" {
		t.Fatalf("unexpected stations: %+v", resp.Stations)
	}
}

func TestUnknownActionNotFound(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/timers/station-1/explode", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
