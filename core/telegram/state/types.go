package state

import (
	"context"
	"time"
)

// State identifies a finite-state-machine step used in conversations.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"
)

// Session stores conversation state and collected data for a user.
type Session struct {
	State     State             `json:"state"`
	Data      map[string]string `json:"data,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// NewSession returns an idle session with an allocated data map.
func NewSession() *Session {
	return &Session{State: StateIdle, Data: map[string]string{}}
}

// Idle reports whether no conversation is active.
func (s *Session) Idle() bool {
	return s == nil || s.State == "" || s.State == StateIdle
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	if s == nil {
		return NewSession()
	}
	out := &Session{State: s.State, UpdatedAt: s.UpdatedAt, Data: make(map[string]string, len(s.Data))}
	for k, v := range s.Data {
		out.Data[k] = v
	}
	return out
}

// Manager owns user sessions. Get never returns nil; a user without a stored
// session gets an idle one. Each mutating call is durable when it returns.
type Manager interface {
	Get(ctx context.Context, userID int64) (*Session, error)
	Save(ctx context.Context, userID int64, s *Session) error
	SetState(ctx context.Context, userID int64, st State) error
	// Merge sets the state and writes values into the session data in one step.
	Merge(ctx context.Context, userID int64, st State, values map[string]string) error
	Clear(ctx context.Context, userID int64) error
	InProgress(ctx context.Context, userID int64) (bool, error)
}

// Observer receives one call per backend operation.
type Observer func(op string, err error)

func merge(s *Session, st State, values map[string]string) {
	if s.Data == nil {
		s.Data = make(map[string]string, len(values))
	}
	for k, v := range values {
		s.Data[k] = v
	}
	s.State = st
}
