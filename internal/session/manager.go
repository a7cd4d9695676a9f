package session

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/sketchd/sketchd/internal/document"
	"github.com/sketchd/sketchd/internal/typeid"
)

var (
	ErrNotFound     = errors.New("session not found")
	ErrSessionLimit = errors.New("session limit reached")
)

// Manager is the in-memory registry of editing sessions.
type Manager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	maxSessions int
}

func NewManager(maxSessions int) *Manager {
	return &Manager{
		sessions:    make(map[string]*Session),
		maxSessions: maxSessions,
	}
}

// Create opens a new session. With sample set, the document starts with
// the demo scene instead of empty.
func (m *Manager) Create(name string, passphraseHash []byte, sample bool) (*Session, error) {
	doc := document.New()
	if sample {
		doc = document.NewSampleDocument()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
		return nil, ErrSessionLimit
	}

	s := newSession(typeid.NewSessionID(), name, passphraseHash, doc)
	m.sessions[s.ID] = s

	slog.Info("session created", "session", s.ID, "name", name, "sample", sample)
	return s, nil
}

// Get looks up a session by ID.
func (m *Manager) Get(sessionID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Delete closes a session and removes it from the registry.
func (m *Manager) Delete(sessionID string) error {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
	}
	m.mu.Unlock()

	if !ok {
		return ErrNotFound
	}

	s.Close()
	slog.Info("session deleted", "session", sessionID)
	return nil
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Stop closes every session. Used during graceful shutdown.
func (m *Manager) Stop() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		sessions = append(sessions, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
