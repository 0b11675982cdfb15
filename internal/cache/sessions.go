// Package cache holds the refresh-token session records in Redis.
//
// A session record maps a refresh token string to the username it was issued
// for. A refresh token is only usable while its record is live; expiry is
// enforced by the Redis TTL.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/taskdeck/backend/internal/config"
)

const (
	FailModeSoft = "soft"
	FailModeLoud = "loud"
)

type SessionStore struct {
	rdb      *redis.Client
	log      *slog.Logger
	failLoud bool
}

// NewSessionStore connects to the cache described by cfg. In "soft" fail mode
// (the default) backend failures are logged and degrade to absent reads and
// no-op writes; in "loud" mode they propagate to the caller.
func NewSessionStore(cfg config.CacheConfig, logger *slog.Logger) (*SessionStore, error) {
	var failLoud bool
	switch cfg.FailMode {
	case FailModeSoft, "":
	case FailModeLoud:
		failLoud = true
	default:
		return nil, fmt.Errorf("invalid CACHE_FAIL_MODE: %q", cfg.FailMode)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: net.JoinHostPort(cfg.Host, cfg.Port),
	})

	return &SessionStore{rdb: rdb, log: logger, failLoud: failLoud}, nil
}

// Put upserts a session record with the given time-to-live. A later Put for
// the same key overwrites the previous value and resets the TTL.
func (s *SessionStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		if s.failLoud {
			return fmt.Errorf("session store put: %w", err)
		}
		s.log.Error("session store put failed", "error", err)
		return nil
	}
	return nil
}

// Get looks up a session record. ok is false when the key was never set, has
// expired, or (in soft fail mode) the backend was unreachable.
func (s *SessionStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		if s.failLoud {
			return "", false, fmt.Errorf("session store get: %w", err)
		}
		s.log.Error("session store get failed", "error", err)
		return "", false, nil
	}
	return value, true, nil
}

func (s *SessionStore) Close() error {
	return s.rdb.Close()
}
