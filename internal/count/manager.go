package count

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultIdleTimeout is how long an untouched session survives.
const DefaultIdleTimeout = 2 * time.Hour

// Manager keeps the open count sessions.
type Manager struct {
	db          *sql.DB
	idleTimeout time.Duration
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a registry of count sessions over db. A zero
// idleTimeout selects DefaultIdleTimeout.
func NewManager(db *sql.DB, idleTimeout time.Duration) *Manager {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	return &Manager{
		db:          db,
		idleTimeout: idleTimeout,
		now:         time.Now,
		sessions:    make(map[string]*Session),
	}
}

// Create opens a new session.
func (m *Manager) Create(createdBy string) *Session {
	s := NewSession(uuid.NewString(), createdBy, m.db, m.now())

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	slog.Info("count session started", "id", s.ID, "user", createdBy)
	return s
}

// Get returns the open session with the given id, or nil.
func (m *Manager) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil
	}
	if s.Closed() {
		delete(m.sessions, id)
		return nil
	}
	return s
}

// Apply applies the session and removes it from the registry.
func (m *Manager) Apply(ctx context.Context, s *Session) error {
	if err := s.Apply(ctx); err != nil {
		return err
	}
	m.forget(s.ID)
	slog.Info("count session applied", "id", s.ID, "user", s.CreatedBy)
	return nil
}

// Discard cancels the session with the given id. It reports whether one
// was open.
func (m *Manager) Discard(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return false
	}
	s.Cancel()
	slog.Info("count session cancelled", "id", id)
	return true
}

// Len returns the number of sessions held.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Expire cancels sessions idle for longer than the timeout and returns how
// many were dropped.
func (m *Manager) Expire() int {
	cutoff := m.now().Add(-m.idleTimeout)

	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			s.Cancel()
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// Run expires idle sessions every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Expire(); n > 0 {
				slog.Info("expired idle count sessions", "count", n)
			}
		}
	}
}

func (m *Manager) forget(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}
