package session

import (
	"sync"

	"github.com/inklinehq/roi-backend/internal/scenarios/domain"
)

// Manager hands out one Session per user. Sessions live for the lifetime
// of the process; a user always gets the same workspace back.
type Manager struct {
	mu       sync.Mutex
	store    domain.Store
	sessions map[string]*Session
}

// NewManager creates a session manager backed by the given store.
func NewManager(store domain.Store) *Manager {
	return &Manager{store: store, sessions: make(map[string]*Session)}
}

// ForUser returns the user's session, creating a fresh draft on first use.
func (m *Manager) ForUser(ownerID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[ownerID]; ok {
		return s
	}
	s := New(m.store, ownerID)
	m.sessions[ownerID] = s
	return s
}

// Drop discards a user's session, e.g. when their login is invalidated.
func (m *Manager) Drop(ownerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, ownerID)
}
