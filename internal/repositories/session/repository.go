// Package session provides durable storage for session snapshots
package session

import (
	"context"
	"time"

	"github.com/KirkDiggler/rpg-saga/internal/entities"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=sessionmock github.com/KirkDiggler/rpg-saga/internal/repositories/session Repository

const (
	// DefaultName is the record name used when none is configured
	DefaultName = "fantasy-quiz-session"

	// DefaultTTL is how long a saved snapshot stays loadable
	DefaultTTL = 24 * time.Hour
)

// SaveInput contains the snapshot to store under Name
type SaveInput struct {
	Name     string
	Snapshot *entities.SessionSnapshot
}

// SaveOutput is empty; Save either stores the whole record or nothing
type SaveOutput struct{}

// GetInput names the record to load
type GetInput struct {
	Name string
}

// GetOutput contains the stored snapshot
type GetOutput struct {
	Snapshot *entities.SessionSnapshot
}

// DeleteInput names the record to remove
type DeleteInput struct {
	Name string
}

// DeleteOutput reports whether a record existed
type DeleteOutput struct {
	Deleted bool
}

// ExistsInput names the record to check
type ExistsInput struct {
	Name string
}

// ExistsOutput reports whether the record exists
type ExistsOutput struct {
	Exists bool
}

// PurgeInput selects records to remove. Records that cannot be decoded are
// always selected; records older than MaxAge at Now are selected when
// MaxAge is set.
type PurgeInput struct {
	MaxAge time.Duration
	Now    time.Time
	DryRun bool
}

// PurgeOutput reports what the purge found
type PurgeOutput struct {
	Checked int
	Removed []string
}

// Repository defines the interface for session snapshot storage
type Repository interface {
	// Save replaces the record under input.Name
	Save(ctx context.Context, input SaveInput) (*SaveOutput, error)

	// Get returns NotFound when no record exists, and DataLoss when the
	// stored record cannot be decoded
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Delete removes a record; deleting a missing record is not an error
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)

	// Exists reports whether a record is stored under input.Name
	Exists(ctx context.Context, input ExistsInput) (*ExistsOutput, error)

	// Purge removes corrupted and stale records
	Purge(ctx context.Context, input PurgeInput) (*PurgeOutput, error)
}
