package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/KirkDiggler/rpg-saga/internal/errors"
	"github.com/KirkDiggler/rpg-saga/internal/pkg/clock"
)

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

const sessionTable = `
CREATE TABLE IF NOT EXISTS sessions (
	name       TEXT PRIMARY KEY,
	snapshot   TEXT NOT NULL,
	saved_at   INTEGER NOT NULL,
	expires_at INTEGER NOT NULL
);`

// SQLiteConfig holds the configuration for the SQLite repository
type SQLiteConfig struct {
	Path  string
	TTL   time.Duration
	Clock clock.Clock
}

// Validate ensures all required settings are provided
func (c *SQLiteConfig) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Path == "" {
		vb.RequiredField("Path")
	}
	if c.TTL < 0 {
		vb.InvalidField("TTL", "must not be negative")
	}

	if c.TTL == 0 {
		c.TTL = DefaultTTL
	}
	if c.Clock == nil {
		c.Clock = clock.New()
	}

	return vb.Build()
}

// SQLiteRepository stores snapshots in a single table keyed by name. Expiry
// is checked on read since SQLite has no TTL.
type SQLiteRepository struct {
	db    *sql.DB
	ttl   time.Duration
	clock clock.Clock
}

// Ensure SQLiteRepository implements Repository
var _ Repository = (*SQLiteRepository)(nil)

// NewSQLiteRepository opens (or creates) the database at cfg.Path
func NewSQLiteRepository(ctx context.Context, cfg *SQLiteConfig) (*SQLiteRepository, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	if cfg.Path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, errors.Wrapf(err, "failed to create directory for %s", cfg.Path)
		}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database")
	}
	// an in-memory database lives and dies with its connection
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sessionTable); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "failed to create sessions table")
	}

	return &SQLiteRepository{
		db:    db,
		ttl:   cfg.TTL,
		clock: cfg.Clock,
	}, nil
}

// Close releases the database handle
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) Save(ctx context.Context, input SaveInput) (*SaveOutput, error) {
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

	now := r.clock.Now()
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO sessions (name, snapshot, saved_at, expires_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		 snapshot = excluded.snapshot,
		 saved_at = excluded.saved_at,
		 expires_at = excluded.expires_at`,
		input.Name, string(data), now.UnixMilli(), now.Add(r.ttl).UnixMilli(),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to store session in SQLite")
	}

	return &SaveOutput{}, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.Name == "" {
		return nil, errors.InvalidArgument(errNameEmpty)
	}

	var (
		data      string
		expiresAt int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT snapshot, expires_at FROM sessions WHERE name = ?`, input.Name,
	).Scan(&data, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundf("session %s not found", input.Name)
		}
		return nil, errors.Wrapf(err, "failed to get session from SQLite")
	}

	if r.clock.Now().UnixMilli() > expiresAt {
		_, _ = r.Delete(ctx, DeleteInput(input))
		return nil, errors.NotFoundf("session %s has expired", input.Name)
	}

	snap, err := decodeSnapshot([]byte(data))
	if err != nil {
		return nil, err
	}

	return &GetOutput{Snapshot: snap}, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.Name == "" {
		return nil, errors.InvalidArgument(errNameEmpty)
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE name = ?`, input.Name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to delete session from SQLite")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to count deleted sessions")
	}

	return &DeleteOutput{Deleted: n > 0}, nil
}

func (r *SQLiteRepository) Exists(ctx context.Context, input ExistsInput) (*ExistsOutput, error) {
	if input.Name == "" {
		return nil, errors.InvalidArgument(errNameEmpty)
	}

	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sessions WHERE name = ? AND expires_at >= ?`,
		input.Name, r.clock.Now().UnixMilli(),
	).Scan(&n)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check session in SQLite")
	}

	return &ExistsOutput{Exists: n > 0}, nil
}

func (r *SQLiteRepository) Purge(ctx context.Context, input PurgeInput) (*PurgeOutput, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, snapshot, expires_at FROM sessions ORDER BY name`)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to scan sessions")
	}

	out := &PurgeOutput{}
	now := r.clock.Now().UnixMilli()
	for rows.Next() {
		var (
			name      string
			data      string
			expiresAt int64
		)
		if err := rows.Scan(&name, &data, &expiresAt); err != nil {
			_ = rows.Close()
			return nil, errors.Wrapf(err, "failed to read session row")
		}
		out.Checked++

		if now > expiresAt || shouldPurge([]byte(data), input) {
			out.Removed = append(out.Removed, name)
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, errors.Wrapf(err, "failed to scan sessions")
	}
	_ = rows.Close()

	if !input.DryRun {
		for _, name := range out.Removed {
			if _, err := r.Delete(ctx, DeleteInput{Name: name}); err != nil {
				return nil, err
			}
		}
	}

	slog.Info("Purged session records",
		"checked", out.Checked,
		"removed", len(out.Removed),
		"dry_run", input.DryRun)

	return out, nil
}
