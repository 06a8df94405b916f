package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestLoginHandler(t *testing.T) *LoginHandler {
	t.Helper()
	store := NewUserStore()
	if err := store.AddWithPassword("alex", "kart123", RoleEmployee); err != nil {
		t.Fatalf("add user: %v", err)
	}
	handler, err := NewLoginHandler(store, []byte("test-secret"))
	if err != nil {
		t.Fatalf("new login handler: %v", err)
	}
	return handler
}

func TestLoginIssuesToken(t *testing.T) {
	handler := newTestLoginHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"username":"alex","password":"kart123"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Role != "employee" {
		t.Fatalf("expected employee role, got %s", resp.Role)
	}
	claims, err := ParseJWT(resp.Token, []byte("test-secret"))
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims.Subject != "alex" {
		t.Fatalf("expected subject alex, got %s", claims.Subject)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	handler := newTestLoginHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"username":"alex","password":"wrong"}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestLoginRejectsUnknownUser(t *testing.T) {
	handler := newTestLoginHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"username":"ghost","password":"kart123"}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
