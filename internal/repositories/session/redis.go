package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/KirkDiggler/rpg-saga/internal/entities"
	"github.com/KirkDiggler/rpg-saga/internal/errors"
	redisclient "github.com/KirkDiggler/rpg-saga/internal/redis"
)

const (
	// Key pattern: {name} or {name}:{id}
	keySeparator = ":"
	scanCount    = 100

	// Error messages
	errNameEmpty     = "session name cannot be empty"
	errSnapshotNil   = "snapshot cannot be nil"
	errCorruptRecord = "session record is corrupted"
)

// RedisConfig holds the configuration for the Redis repository
type RedisConfig struct {
	Client redisclient.Client
	TTL    time.Duration
}

// Validate ensures all required dependencies are provided
func (c *RedisConfig) Validate() error {
	if c.Client == nil {
		return errors.InvalidArgument("redis client is required")
	}
	if c.TTL < 0 {
		return errors.InvalidArgument("ttl must not be negative")
	}
	if c.TTL == 0 {
		c.TTL = DefaultTTL
	}
	return nil
}

type redisRepository struct {
	client redisclient.Client
	ttl    time.Duration
}

// NewRedisRepository creates a Redis-backed session repository. Records
// expire on their own after the configured TTL.
func NewRedisRepository(cfg *RedisConfig) (Repository, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &redisRepository{
		client: cfg.Client,
		ttl:    cfg.TTL,
	}, nil
}

// Ensure redisRepository implements Repository
var _ Repository = (*redisRepository)(nil)

// RecordKey returns the Redis key for a session name. The default name is
// stored as-is; other names are scoped under it.
func RecordKey(name string) string {
	if name == DefaultName {
		return DefaultName
	}
	return DefaultName + keySeparator + name
}

func (r *redisRepository) Save(ctx context.Context, input SaveInput) (*SaveOutput, error) {
	if input.Name == "" {
		return nil, errors.InvalidArgument(errNameEmpty)
	}
	if input.Snapshot == nil {
		return nil, errors.InvalidArgument(errSnapshotNil)
	}

	data, err := json.Marshal(input.Snapshot)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal session")
	}

	if err := r.client.Set(ctx, RecordKey(input.Name), data, r.ttl).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to store session in Redis")
	}

	return &SaveOutput{}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.Name == "" {
		return nil, errors.InvalidArgument(errNameEmpty)
	}

	data, err := r.client.Get(ctx, RecordKey(input.Name)).Bytes()
	if err != nil {
		if redisclient.IsNil(err) {
			return nil, errors.NotFoundf("session %s not found", input.Name)
		}
		return nil, errors.Wrapf(err, "failed to get session from Redis")
	}

	snap, err := decodeSnapshot(data)
	if err != nil {
		return nil, err
	}

	return &GetOutput{Snapshot: snap}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.Name == "" {
		return nil, errors.InvalidArgument(errNameEmpty)
	}

	n, err := r.client.Del(ctx, RecordKey(input.Name)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to delete session from Redis")
	}

	return &DeleteOutput{Deleted: n > 0}, nil
}

func (r *redisRepository) Exists(ctx context.Context, input ExistsInput) (*ExistsOutput, error) {
	if input.Name == "" {
		return nil, errors.InvalidArgument(errNameEmpty)
	}

	n, err := r.client.Exists(ctx, RecordKey(input.Name)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check session in Redis")
	}

	return &ExistsOutput{Exists: n > 0}, nil
}

func (r *redisRepository) Purge(ctx context.Context, input PurgeInput) (*PurgeOutput, error) {
	out := &PurgeOutput{}

	var stale []string
	for _, pattern := range []string{DefaultName, DefaultName + keySeparator + "*"} {
		iter := r.client.Scan(ctx, 0, pattern, scanCount).Iterator()
		for iter.Next(ctx) {
			key := iter.Val()
			out.Checked++

			data, err := r.client.Get(ctx, key).Bytes()
			if err != nil {
				if redisclient.IsNil(err) {
					continue
				}
				return nil, errors.Wrapf(err, "failed to read %s", key)
			}

			if shouldPurge(data, input) {
				stale = append(stale, key)
			}
		}
		if err := iter.Err(); err != nil {
			return nil, errors.Wrapf(err, "failed to scan sessions")
		}
	}

	for _, key := range stale {
		name := key
		if key != DefaultName {
			name = strings.TrimPrefix(key, DefaultName+keySeparator)
		}
		if !input.DryRun {
			if err := r.client.Del(ctx, key).Err(); err != nil {
				return nil, errors.Wrapf(err, "failed to delete %s", key)
			}
		}
		out.Removed = append(out.Removed, name)
	}

	slog.Info("Purged session records",
		"checked", out.Checked,
		"removed", len(out.Removed),
		"dry_run", input.DryRun)

	return out, nil
}

func decodeSnapshot(data []byte) (*entities.SessionSnapshot, error) {
	var snap entities.SessionSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeDataLoss, errCorruptRecord)
	}
	return &snap, nil
}

func shouldPurge(data []byte, input PurgeInput) bool {
	snap, err := decodeSnapshot(data)
	if err != nil {
		return true
	}
	return input.MaxAge > 0 && snap.Expired(input.Now, input.MaxAge)
}
