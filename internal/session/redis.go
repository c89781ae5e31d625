package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"vslim/internal/core"
)

const defaultRedisTTL = 30 * time.Minute

// RedisStore keeps pending frames as JSON documents under "chat_<id>".
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultRedisTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, conversationID string) ([]core.Frame, bool, error) {
	k, err := key(conversationID)
	if err != nil {
		return nil, false, err
	}
	raw, err := s.client.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read session %s: %w", conversationID, err)
	}

	var frames []core.Frame
	if err := json.Unmarshal(raw, &frames); err != nil {
		return nil, false, fmt.Errorf("failed to decode session %s: %w", conversationID, err)
	}
	return frames, true, nil
}

func (s *RedisStore) Set(ctx context.Context, conversationID string, frames []core.Frame) error {
	k, err := key(conversationID)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(frames)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", conversationID, err)
	}
	if err := s.client.Set(ctx, k, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write session %s: %w", conversationID, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, conversationID string) error {
	k, err := key(conversationID)
	if err != nil {
		return err
	}
	if err := s.client.Del(ctx, k).Err(); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", conversationID, err)
	}
	return nil
}

// Ping reports whether the Redis server is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
