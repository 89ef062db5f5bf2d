package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"fitment_chat_backend/platform/apperr"
)

const redisKeyPrefix = "chat:context:"

// RedisStore persists conversation contexts in Redis so that sessions survive
// restarts and multiple instances can serve the same user. Values are JSON
// documents; a zero TTL keeps them until explicitly replaced.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a store backed by the given client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Get loads the context for a user. A missing key yields a fresh context.
func (s *RedisStore) Get(ctx context.Context, userID string) (Context, error) {
	payload, err := s.client.Get(ctx, redisKeyPrefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return NewContext(userID), nil
	}
	if err != nil {
		return Context{}, apperr.Wrap(apperr.KindUnavailable, "session store get failed", err).WithOp("session.redis.get")
	}

	var sessionCtx Context
	if err := json.Unmarshal(payload, &sessionCtx); err != nil {
		// Corrupt entries are unrecoverable; start the user over.
		return NewContext(userID), nil
	}
	return sessionCtx, nil
}

// Put stores the context, refreshing the TTL.
func (s *RedisStore) Put(ctx context.Context, userID string, sessionCtx Context) error {
	payload, err := json.Marshal(sessionCtx)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "session encode failed", err).WithOp("session.redis.put")
	}
	if err := s.client.Set(ctx, redisKeyPrefix+userID, payload, s.ttl).Err(); err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "session store put failed", err).WithOp("session.redis.put")
	}
	return nil
}
