package services

import (
	"errors"
	"sync"
	"time"
)

// ErrSessionNotFound is returned for unknown or already-pruned session ids.
var ErrSessionNotFound = errors.New("session not found")

// staleSessionAge is how long an untouched, uncompleted session survives
// before Create prunes it.
const staleSessionAge = 2 * time.Hour

// SessionManager tracks live sessions by id. Completed sessions are removed
// once their record has been persisted; abandoned ones are pruned lazily.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[string]*Session)}
}

// Create registers a new session for the profile.
func (m *SessionManager) Create(ai DebateAI, profileID string, policy SessionPolicy) *Session {
	s := NewSession(ai, profileID, policy)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pruneLocked()
	m.sessions[s.ID] = s
	return s
}

// Get looks up a live session.
func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Remove discards a session, typically after its record was persisted, and
// reports whether it was still registered. The session object is not
// retained; only the derived record survives. Callers use the return value
// to guarantee the record is persisted exactly once.
func (m *SessionManager) Remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	return ok
}

func (m *SessionManager) pruneLocked() {
	cutoff := time.Now().Add(-staleSessionAge)
	for id, s := range m.sessions {
		if s.CreatedAt.Before(cutoff) {
			delete(m.sessions, id)
		}
	}
}
