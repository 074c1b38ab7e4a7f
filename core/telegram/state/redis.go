package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/m3rciful/kuafsurvey/core/logger"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces session keys.
const DefaultRedisPrefix = "session:"

// RedisOptions configures the Redis backend.
type RedisOptions struct {
	Prefix string
	// TTL expires idle sessions; zero keeps them until cleared.
	TTL     time.Duration
	Observe Observer
}

type redisManager struct {
	client  redis.Cmdable
	prefix  string
	ttl     time.Duration
	observe Observer
	now     func() time.Time
}

// NewRedisManager stores sessions as JSON documents, one key per user.
// Every mutation is a full write, so a restarted process resumes where the
// user left off.
func NewRedisManager(client redis.Cmdable, opts RedisOptions) Manager {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &redisManager{
		client:  client,
		prefix:  prefix,
		ttl:     opts.TTL,
		observe: opts.Observe,
		now:     time.Now,
	}
}

func (m *redisManager) key(userID int64) string {
	return m.prefix + strconv.FormatInt(userID, 10)
}

func (m *redisManager) Get(ctx context.Context, userID int64) (*Session, error) {
	data, err := m.client.Get(ctx, m.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		m.report("get", nil)
		return NewSession(), nil
	}
	if err != nil {
		m.report("get", err)
		return nil, fmt.Errorf("session get %d: %w", userID, err)
	}
	s := NewSession()
	if err := json.Unmarshal(data, s); err != nil {
		m.report("get", err)
		return nil, fmt.Errorf("session decode %d: %w", userID, err)
	}
	if s.Data == nil {
		s.Data = map[string]string{}
	}
	m.report("get", nil)
	return s, nil
}

func (m *redisManager) Save(ctx context.Context, userID int64, s *Session) error {
	cp := s.Clone()
	cp.UpdatedAt = m.now().UTC()
	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("session encode %d: %w", userID, err)
	}
	err = m.client.Set(ctx, m.key(userID), data, m.ttl).Err()
	m.report("save", err)
	if err != nil {
		return fmt.Errorf("session save %d: %w", userID, err)
	}
	logger.Debug(ctx, logger.CompSession, "session.flush",
		slog.Int64("user_id", userID),
		slog.String("state", string(cp.State)),
		slog.Int("fields", len(cp.Data)),
	)
	return nil
}

func (m *redisManager) SetState(ctx context.Context, userID int64, st State) error {
	return m.Merge(ctx, userID, st, nil)
}

// Merge is a read-modify-write. Callers serialize updates per user.
func (m *redisManager) Merge(ctx context.Context, userID int64, st State, values map[string]string) error {
	s, err := m.Get(ctx, userID)
	if err != nil {
		return err
	}
	merge(s, st, values)
	return m.Save(ctx, userID, s)
}

func (m *redisManager) Clear(ctx context.Context, userID int64) error {
	err := m.client.Del(ctx, m.key(userID)).Err()
	m.report("clear", err)
	if err != nil {
		return fmt.Errorf("session clear %d: %w", userID, err)
	}
	return nil
}

func (m *redisManager) InProgress(ctx context.Context, userID int64) (bool, error) {
	s, err := m.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	return !s.Idle(), nil
}

func (m *redisManager) report(op string, err error) {
	if m.observe != nil {
		m.observe(op, err)
	}
}
