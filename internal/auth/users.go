package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned on a failed login.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// User is an operator account.
type User struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
	Role         string `json:"role"`
}

// UserStore authenticates users against bcrypt hashes loaded from a
// JSON file.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]User
}

// NewUserStore constructs an empty store.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]User)}
}

// LoadUserStore reads accounts from a JSON file.
func LoadUserStore(path string) (*UserStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("auth: read users file: %w", err)
	}
	var users []User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("auth: parse users file: %w", err)
	}
	store := NewUserStore()
	for _, user := range users {
		if err := store.Add(user); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// Add registers a user.
func (s *UserStore) Add(user User) error {
	if user.Username == "" {
		return errors.New("auth: empty username")
	}
	if user.PasswordHash == "" {
		return errors.New("auth: empty password hash")
	}
	if _, ok := NormalizeRole(user.Role); !ok {
		return fmt.Errorf("auth: invalid role %q for user %q", user.Role, user.Username)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.Username] = user
	return nil
}

// AddWithPassword hashes the password and registers the user. Used by
// tests and bootstrap tooling.
func (s *UserStore) AddWithPassword(username, password string, role Role) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.Add(User{Username: username, PasswordHash: string(hash), Role: string(role)})
}

// Authenticate checks credentials and returns the user's role.
func (s *UserStore) Authenticate(username, password string) (Role, error) {
	s.mu.RLock()
	user, ok := s.users[username]
	s.mu.RUnlock()
	if !ok {
		// Burn a comparison anyway so unknown users cost the same as
		// wrong passwords.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$0123456789012345678901"), []byte(password))
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	role, _ := NormalizeRole(user.Role)
	return role, nil
}
