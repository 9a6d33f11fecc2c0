// Package server provides the HTTP REST API for the decision brief service.
package server

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/regulapm/nexus/internal/db"
)

// MemUserStore is an in-memory UserStore used by --memory demo mode and
// tests. Accounts do not survive a restart.
type MemUserStore struct {
	mu      sync.RWMutex
	users   map[uuid.UUID]db.User
	byEmail map[string]uuid.UUID
}

// NewMemUserStore creates an empty in-memory user store.
func NewMemUserStore() *MemUserStore {
	return &MemUserStore{
		users:   make(map[uuid.UUID]db.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

// CreateUser stores a new user and returns its generated ID.
func (m *MemUserStore) CreateUser(_ context.Context, name, email, passwordHash string) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	user := db.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.users[user.ID] = user
	m.byEmail[email] = user.ID
	return user.ID, nil
}

// GetUser returns a user by ID, or (nil, nil) when absent.
func (m *MemUserStore) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// GetUserByEmail returns a user by email, or (nil, nil) when absent.
func (m *MemUserStore) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byEmail[email]
	if !ok {
		return nil, nil
	}
	user := m.users[id]
	return &user, nil
}

// CheckEmailExists reports whether an account exists for email.
func (m *MemUserStore) CheckEmailExists(_ context.Context, email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.byEmail[email]
	return ok, nil
}
