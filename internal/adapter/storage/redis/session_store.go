package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"promo-order-bot/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// SessionStore implements ports.SessionStore using Redis.
// Sessions are stored as JSON, keyed by Telegram user id, with a TTL so
// abandoned wizard sessions expire on their own.
type SessionStore struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
}

// NewSessionStore creates a new Redis-backed session store.
func NewSessionStore(client *goredis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client: client,
		prefix: "session:",
		ttl:    ttl,
	}
}

func (s *SessionStore) key(userID int64) string {
	return s.prefix + strconv.FormatInt(userID, 10)
}

// Get retrieves a session by user id. Returns (nil, nil) if none exists.
func (s *SessionStore) Get(ctx context.Context, userID int64) (*domain.Session, error) {
	val, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis session get: %w", err)
	}

	session := &domain.Session{}
	if err := json.Unmarshal(val, session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return session, nil
}

// Save upserts a session, refreshing its TTL.
func (s *SessionStore) Save(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := s.client.Set(ctx, s.key(session.UserID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis session set: %w", err)
	}
	return nil
}

// Clear removes a session; no-op if none exists.
func (s *SessionStore) Clear(ctx context.Context, userID int64) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("redis session del: %w", err)
	}
	return nil
}
