package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	mdapp "carsplay/internal/masterdata/application"
	"carsplay/internal/masterdata/infrastructure/memory"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	service, err := mdapp.NewStationService(memory.NewStationRepository(), memory.NewRateRepository())
	if err != nil {
		t.Fatalf("new station service: %v", err)
	}
	handler, err := NewHandler(service)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	handler.newID = func() string { return "fixed-id" }
	return handler
}

func TestCreateAndListStations(t *testing.T) {
	handler := newTestHandler(t)

	body := strings.NewReader(`{"name":"Kart 1","number":1,"price":50}`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/stations", body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stations", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var stations []stationResponse
	if err := json.NewDecoder(rec.Body).Decode(&stations); err != nil {
		t.Fatalf("decode stations: %v", err)
	}
	if len(stations) != 1 {
		t.Fatalf("expected 1 station, got %d", len(stations))
	}
	if stations[0].ID != "fixed-id" || stations[0].Name != "Kart 1" || !stations[0].Active {
		t.Fatalf("unexpected station: %+v", stations[0])
	}
}

func TestCreateStationRejectsEmptyName(t *testing.T) {
	handler := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/stations", strings.NewReader(`{"number":2}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestDeleteStationNotFound(t *testing.T) {
	handler := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/stations/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRateTierDuplicateMinutesConflict(t *testing.T) {
	handler := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/time/rates", strings.NewReader(`{"minutes":30,"amount":100}`)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	handler.newID = func() string { return "other-id" }
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/time/rates", strings.NewReader(`{"minutes":30,"amount":120}`)))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestUpdateRateTierKeepsID(t *testing.T) {
	handler := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/time/rates", strings.NewReader(`{"minutes":15,"amount":60}`)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/time/rates/fixed-id", strings.NewReader(`{"minutes":15,"amount":80}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/time/rates", nil))
	var tiers []rateResponse
	if err := json.NewDecoder(rec.Body).Decode(&tiers); err != nil {
		t.Fatalf("decode tiers: %v", err)
	}
	if len(tiers) != 1 || tiers[0].Amount != 80 {
		t.Fatalf("unexpected tiers: %+v", tiers)
	}
}
