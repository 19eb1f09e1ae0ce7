package redis

import (
	"github.com/redis/go-redis/v9"
)

// Client wraps redis.UniversalClient so session records and rate limit
// counters can run against a real server, miniredis, or a mock.
type Client interface {
	redis.UniversalClient
}
