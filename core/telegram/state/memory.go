package state

import (
	"context"
	"sync"
	"time"
)

type memoryManager struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
	now      func() time.Time
}

// NewMemoryManager constructs an in-memory Manager for tests and development.
// Sessions do not survive a restart.
func NewMemoryManager() Manager {
	return &memoryManager{
		sessions: make(map[int64]*Session),
		now:      time.Now,
	}
}

// Get returns a copy of the user's session or a fresh idle one.
func (m *memoryManager) Get(_ context.Context, userID int64) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if session, ok := m.sessions[userID]; ok {
		return session.Clone(), nil
	}
	return NewSession(), nil
}

func (m *memoryManager) Save(_ context.Context, userID int64, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := s.Clone()
	cp.UpdatedAt = m.now()
	m.sessions[userID] = cp
	return nil
}

func (m *memoryManager) SetState(ctx context.Context, userID int64, st State) error {
	return m.Merge(ctx, userID, st, nil)
}

func (m *memoryManager) Merge(_ context.Context, userID int64, st State, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[userID]
	if !ok {
		session = NewSession()
		m.sessions[userID] = session
	}
	merge(session, st, values)
	session.UpdatedAt = m.now()
	return nil
}

// Clear removes the entire session for a user.
func (m *memoryManager) Clear(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, userID)
	return nil
}

// InProgress reports whether the user has an active state other than idle.
func (m *memoryManager) InProgress(_ context.Context, userID int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[userID]
	return ok && !sess.Idle(), nil
}
