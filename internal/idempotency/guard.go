// Package idempotency guards mutating requests against client retries.
package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const keyPrefix = "idempotency:sale:"

// DefaultTTL is how long a claimed key blocks replays.
const DefaultTTL = 24 * time.Hour

// Guard records request keys so a replayed request can be detected.
type Guard interface {
	// Claim reports true if key was not seen before and is now held.
	Claim(ctx context.Context, key string) (bool, error)

	// Release forgets key so the request may be retried.
	Release(ctx context.Context, key string) error
}

type redisGuard struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisGuard creates a guard backed by Redis SETNX with the given TTL.
func NewRedisGuard(client redis.UniversalClient, ttl time.Duration, logger zerolog.Logger) Guard {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &redisGuard{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "idempotency").Logger(),
	}
}

func (g *redisGuard) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := g.client.SetNX(ctx, keyPrefix+key, 1, g.ttl).Result()
	if err != nil {
		g.logger.Error().Err(err).Str("key", key).Msg("failed to claim idempotency key")
		return false, fmt.Errorf("failed to claim idempotency key: %w", err)
	}
	if !ok {
		g.logger.Info().Str("key", key).Msg("duplicate request detected")
	}
	return ok, nil
}

func (g *redisGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		g.logger.Error().Err(err).Str("key", key).Msg("failed to release idempotency key")
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}

// Nop accepts every key. Used when Redis is disabled.
type Nop struct{}

func (Nop) Claim(context.Context, string) (bool, error) { return true, nil }

func (Nop) Release(context.Context, string) error { return nil }
