// Package session implements the platform session store the bridge
// establishes sessions in and reads them back from.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/session-bridge/internal/domain"
)

const keyPrefix = "session:"

// Store exposes the set-session and read-back capabilities of the platform.
// Get returns (nil, nil) when no session exists under the reference.
type Store interface {
	Get(ctx context.Context, ref string) (*domain.Session, error)
	Set(ctx context.Context, sess domain.Session) error
	Delete(ctx context.Context, ref string) error
}

type redisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func (r *redisStore) key(ref string) string {
	return keyPrefix + ref
}

// Set stores the session under its reference with a TTL matching the access
// token expiry. Re-presenting the same session is safe; the write is
// idempotent per attempt.
func (r *redisStore) Set(ctx context.Context, sess domain.Session) error {
	if sess.ID == "" || sess.UserID == "" {
		return fmt.Errorf("session: missing id or user_id")
	}

	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session: expires_at must be in the future")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session: failed to marshal: %w", err)
	}

	return r.client.Set(ctx, r.key(sess.ID), data, ttl).Err()
}

func (r *redisStore) Get(ctx context.Context, ref string) (*domain.Session, error) {
	val, err := r.client.Get(ctx, r.key(ref)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var sess domain.Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return nil, fmt.Errorf("session: failed to unmarshal: %w", err)
	}
	return &sess, nil
}

func (r *redisStore) Delete(ctx context.Context, ref string) error {
	return r.client.Del(ctx, r.key(ref)).Err()
}
