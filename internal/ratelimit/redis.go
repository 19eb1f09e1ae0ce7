package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/rpg-saga/internal/errors"
	redisclient "github.com/KirkDiggler/rpg-saga/internal/redis"
)

// DefaultKeyPrefix namespaces the counters
const DefaultKeyPrefix = "ratelimit:generate-story:"

// RedisConfig configures the shared limiter
type RedisConfig struct {
	Client    redisclient.Client
	Limit     int
	Window    time.Duration
	KeyPrefix string
}

// Validate ensures the client is provided and applies defaults
func (c *RedisConfig) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Client == nil {
		vb.RequiredField("Client")
	}
	if c.Limit < 0 {
		vb.InvalidField("Limit", "must not be negative")
	}
	if c.Window < 0 {
		vb.InvalidField("Window", "must not be negative")
	}

	if c.Limit == 0 {
		c.Limit = DefaultLimit
	}
	if c.Window == 0 {
		c.Window = DefaultWindow
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = DefaultKeyPrefix
	}

	return vb.Build()
}

// Redis is a fixed-window limiter shared across relay instances. The first
// request of a window creates the counter and sets its expiry.
type Redis struct {
	client redisclient.Client
	limit  int
	window time.Duration
	prefix string
}

// Ensure Redis implements Limiter
var _ Limiter = (*Redis)(nil)

// NewRedis creates a Redis-backed limiter
func NewRedis(cfg *RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &Redis{
		client: cfg.Client,
		limit:  cfg.Limit,
		window: cfg.Window,
		prefix: cfg.KeyPrefix,
	}, nil
}

func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	k := r.prefix + key

	// PEXPIRE NX also repairs a counter left behind without a TTL
	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.Do(ctx, "pexpire", k, r.window.Milliseconds(), "nx")
		return nil
	})
	if err != nil {
		return false, errors.Wrapf(err, "failed to count request for %s", key)
	}

	return incr.Val() <= int64(r.limit), nil
}
