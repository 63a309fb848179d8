package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/arkade-01/p2pbot/internal/logger"
	"log/slog"
)

const defaultKeyPrefix = "session:"

// RedisStore persists sessions in Redis so conversation state survives
// restarts and is shared between bot instances. Expiry is delegated to
// the Redis TTL on each key.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore wraps the given client. A non-positive ttl stores keys
// without expiry.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: defaultKeyPrefix,
		ttl:    ttl,
	}
}

func (r *RedisStore) key(userID int64) string {
	return fmt.Sprintf("%s%d", r.prefix, userID)
}

// Get fetches and decodes the session for a user. A missing or expired
// key is reported as absent, not an error.
func (r *RedisStore) Get(ctx context.Context, userID int64) (*Session, bool, error) {
	data, err := r.client.Get(ctx, r.key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("session: redis get: %w", err)
	}

	var s Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		// A corrupt entry would otherwise wedge the user's routing; drop it.
		logger.SESS.Warn("dropping undecodable session",
			slog.String("event", "session.decode_failed"),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		_ = r.client.Del(ctx, r.key(userID)).Err()
		return nil, false, nil
	}
	return &s, true, nil
}

// Put stores the session and resets its TTL.
func (r *RedisStore) Put(ctx context.Context, userID int64, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}
	if err := r.client.Set(ctx, r.key(userID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("session: redis set: %w", err)
	}
	return nil
}

// Delete removes the session key. Redis DEL on a missing key is a no-op.
func (r *RedisStore) Delete(ctx context.Context, userID int64) error {
	if err := r.client.Del(ctx, r.key(userID)).Err(); err != nil {
		return fmt.Errorf("session: redis del: %w", err)
	}
	return nil
}
