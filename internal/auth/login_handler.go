package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
)

const defaultTokenTTL = 12 * time.Hour

// LoginHandler issues JWTs for valid credentials.
type LoginHandler struct {
	store  *UserStore
	secret []byte
	ttl    time.Duration
}

// NewLoginHandler constructs a LoginHandler.
func NewLoginHandler(store *UserStore, secret []byte, opts ...LoginOption) (*LoginHandler, error) {
	if store == nil {
		return nil, errors.New("auth: nil user store")
	}
	if len(secret) == 0 {
		return nil, errors.New("auth: empty secret")
	}
	h := &LoginHandler{store: store, secret: secret, ttl: defaultTokenTTL}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// LoginOption configures the handler.
type LoginOption func(*LoginHandler)

// WithTokenTTL overrides the default token lifetime.
func WithTokenTTL(ttl time.Duration) LoginOption {
	return func(h *LoginHandler) {
		if ttl > 0 {
			h.ttl = ttl
		}
	}
}

// ServeHTTP handles POST /api/login.
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	role, err := h.store.Authenticate(req.Username, req.Password)
	if err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	token, err := IssueToken(req.Username, role, h.secret, h.ttl)
	if err != nil {
		http.Error(w, "token issue failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		OK       bool   `json:"ok"`
		Token    string `json:"token"`
		Username string `json:"username"`
		Role     string `json:"role"`
	}{OK: true, Token: token, Username: req.Username, Role: string(role)})
}
