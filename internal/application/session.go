package application

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

func sessionKey(userID string) string {
	return "user:session:" + userID
}

// SessionStore keeps one live login session per user in a Redis hash. With a
// nil client every token whose signature verifies is accepted.
type SessionStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewSessionStore(rdb redis.Cmdable, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl}
}

func (s *SessionStore) Save(ctx context.Context, userID, sid, role string) error {
	if s == nil || s.rdb == nil {
		return nil
	}
	key := sessionKey(userID)
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, key, map[string]any{
		"sid":        sid,
		"role":       role,
		"created_at": time.Now().UTC().Format(time.RFC3339Nano),
	})
	pipe.Expire(ctx, key, s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// Valid reports whether sid is the user's current session.
func (s *SessionStore) Valid(ctx context.Context, userID, sid string) (bool, error) {
	if s == nil || s.rdb == nil {
		return true, nil
	}
	cur, err := s.rdb.HGet(ctx, sessionKey(userID), "sid").Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return cur == sid, nil
}

func (s *SessionStore) Revoke(ctx context.Context, userID string) error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Del(ctx, sessionKey(userID)).Err()
}
