// Package session persists the pending frames of each conversation between
// turns.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"vslim/internal/core"
)

// KeyPrefix namespaces conversation entries in shared backends.
const KeyPrefix = "chat_"

var (
	ErrInvalidConversation = errors.New("conversation id is required")
	ErrInvalidBackend      = errors.New("invalid session backend")
)

// Store holds the pending frame set of each conversation. Get reports
// found=false when nothing is stored; that is not an error.
type Store interface {
	Get(ctx context.Context, conversationID string) (frames []core.Frame, found bool, err error)
	Set(ctx context.Context, conversationID string, frames []core.Frame) error
	Delete(ctx context.Context, conversationID string) error
	Close() error
}

// Backend names a Store driver.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendRedis  Backend = "redis"
)

func (b Backend) IsValid() bool {
	return b == BackendMemory || b == BackendRedis
}

// Options configures New.
type Options struct {
	// TTL bounds how long an untouched entry survives in storage.
	TTL time.Duration
	// MaxEntries bounds the memory driver. Zero means unbounded.
	MaxEntries int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// New opens a store for the given backend.
func New(ctx context.Context, backend Backend, opts Options) (Store, error) {
	switch backend {
	case BackendMemory:
		return NewMemoryStore(opts.MaxEntries, opts.TTL), nil
	case BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.RedisAddr, err)
		}
		return NewRedisStore(client, opts.TTL), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidBackend, backend)
	}
}

func key(conversationID string) (string, error) {
	if strings.TrimSpace(conversationID) == "" {
		return "", ErrInvalidConversation
	}
	return KeyPrefix + conversationID, nil
}
