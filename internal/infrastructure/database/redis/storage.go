package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStorage is the local storage of one browsing context, kept in Redis.
// It satisfies cart.LocalStorage.
type SessionStorage struct {
	rdb       redis.Cmdable
	sessionID string
	expiry    time.Duration
}

// NewSessionStorage scopes storage to sessionID. A zero expiry keeps entries
// until they are removed.
func NewSessionStorage(rdb redis.Cmdable, sessionID string, expiry time.Duration) *SessionStorage {
	return &SessionStorage{
		rdb:       rdb,
		sessionID: sessionID,
		expiry:    expiry,
	}
}

// Key returns the Redis key backing a storage key
func (s *SessionStorage) Key(key string) string {
	return fmt.Sprintf("localstorage:%s:%s", s.sessionID, key)
}

func (s *SessionStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	value, err := s.rdb.Get(ctx, s.Key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SessionStorage) SetItem(ctx context.Context, key, value string) error {
	if err := s.rdb.Set(ctx, s.Key(key), value, s.expiry).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *SessionStorage) RemoveItem(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.Key(key)).Err(); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}
