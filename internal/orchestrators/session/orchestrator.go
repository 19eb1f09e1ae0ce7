// Package session saves and restores the application stores through a
// session repository, with optional periodic autosave.
package session

//go:generate mockgen -destination=mock/mock_service.go -package=sessionmock github.com/KirkDiggler/rpg-saga/internal/orchestrators/session Service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/KirkDiggler/rpg-saga/internal/entities"
	"github.com/KirkDiggler/rpg-saga/internal/errors"
	"github.com/KirkDiggler/rpg-saga/internal/orchestrators/storesync"
	"github.com/KirkDiggler/rpg-saga/internal/pkg/clock"
	sessionrepo "github.com/KirkDiggler/rpg-saga/internal/repositories/session"
	"github.com/KirkDiggler/rpg-saga/internal/state"
)

const (
	// DefaultAutosaveInterval is the wait between autosaves
	DefaultAutosaveInterval = 10 * time.Second

	// DefaultMaxAge is how old a snapshot may be and still load
	DefaultMaxAge = 24 * time.Hour

	// autosaveTimeout bounds a single background save
	autosaveTimeout = 5 * time.Second
)

// Service defines session persistence operations
type Service interface {
	// Save writes a snapshot of every store
	Save(ctx context.Context) error

	// Load restores the stores from the saved snapshot. It reports false
	// when nothing usable was saved; expired and corrupted records are
	// cleared.
	Load(ctx context.Context) (bool, error)

	// Clear removes the saved snapshot
	Clear(ctx context.Context) error

	// HasSession reports whether a snapshot is saved
	HasSession(ctx context.Context) (bool, error)

	// StartAutosave saves on every interval until Stop
	StartAutosave()

	// Stop ends autosave and performs a final save
	Stop(ctx context.Context) error
}

// Config holds the dependencies for the session orchestrator
type Config struct {
	Repository sessionrepo.Repository
	Name       string

	Quiz       *state.QuizStore
	Player     *state.PlayerStore
	UI         *state.UIStore
	Generation *state.GenerationStore
	Sync       *storesync.Synchronizer

	Clock            clock.Clock
	AutosaveInterval time.Duration
	MaxAge           time.Duration
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Repository == nil {
		vb.RequiredField("Repository")
	}
	if c.Quiz == nil {
		vb.RequiredField("Quiz")
	}
	if c.Player == nil {
		vb.RequiredField("Player")
	}
	if c.UI == nil {
		vb.RequiredField("UI")
	}
	if c.Generation == nil {
		vb.RequiredField("Generation")
	}
	if c.AutosaveInterval < 0 {
		vb.InvalidField("AutosaveInterval", "must not be negative")
	}
	if c.MaxAge < 0 {
		vb.InvalidField("MaxAge", "must not be negative")
	}

	if c.Name == "" {
		c.Name = sessionrepo.DefaultName
	}
	if c.Clock == nil {
		c.Clock = clock.New()
	}
	if c.AutosaveInterval == 0 {
		c.AutosaveInterval = DefaultAutosaveInterval
	}
	if c.MaxAge == 0 {
		c.MaxAge = DefaultMaxAge
	}

	return vb.Build()
}

type orchestrator struct {
	repo       sessionrepo.Repository
	name       string
	quiz       *state.QuizStore
	player     *state.PlayerStore
	ui         *state.UIStore
	generation *state.GenerationStore
	sync       *storesync.Synchronizer
	clock      clock.Clock
	interval   time.Duration
	maxAge     time.Duration

	mu      sync.Mutex
	timer   clock.Timer
	running bool
}

// New creates a session orchestrator with the provided dependencies
func New(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &orchestrator{
		repo:       cfg.Repository,
		name:       cfg.Name,
		quiz:       cfg.Quiz,
		player:     cfg.Player,
		ui:         cfg.UI,
		generation: cfg.Generation,
		sync:       cfg.Sync,
		clock:      cfg.Clock,
		interval:   cfg.AutosaveInterval,
		maxAge:     cfg.MaxAge,
	}, nil
}

func (o *orchestrator) Save(ctx context.Context) error {
	snap := &entities.SessionSnapshot{
		Quiz:      o.quiz.Snapshot(),
		Player:    o.player.Snapshot(),
		UI:        o.ui.Snapshot(),
		Story:     o.generation.Snapshot(),
		Timestamp: o.clock.Now().UnixMilli(),
	}

	if _, err := o.repo.Save(ctx, sessionrepo.SaveInput{Name: o.name, Snapshot: snap}); err != nil {
		return errors.Wrap(err, "failed to save session")
	}
	return nil
}

func (o *orchestrator) Load(ctx context.Context) (bool, error) {
	out, err := o.repo.Get(ctx, sessionrepo.GetInput{Name: o.name})
	switch {
	case errors.IsNotFound(err):
		return false, nil
	case errors.IsDataLoss(err):
		slog.Warn("Discarding unreadable session", "name", o.name, "error", err)
		return false, o.Clear(ctx)
	case err != nil:
		return false, errors.Wrap(err, "failed to load session")
	}

	snap := out.Snapshot
	if snap.Expired(o.clock.Now(), o.maxAge) {
		slog.Info("Discarding expired session",
			"name", o.name,
			"captured_at", snap.CapturedAt())
		return false, o.Clear(ctx)
	}

	o.quiz.Restore(snap.Quiz)
	o.player.Restore(snap.Player)
	o.ui.Restore(snap.UI)
	o.generation.Restore(snap.Story)
	if o.sync != nil {
		o.sync.SyncNow()
	}

	slog.Info("Session restored",
		"name", o.name,
		"page", o.ui.CurrentPage(),
		"has_story", o.generation.HasNarrative())

	return true, nil
}

func (o *orchestrator) Clear(ctx context.Context) error {
	if _, err := o.repo.Delete(ctx, sessionrepo.DeleteInput{Name: o.name}); err != nil {
		return errors.Wrap(err, "failed to clear session")
	}
	return nil
}

func (o *orchestrator) HasSession(ctx context.Context) (bool, error) {
	out, err := o.repo.Exists(ctx, sessionrepo.ExistsInput{Name: o.name})
	if err != nil {
		return false, errors.Wrap(err, "failed to check session")
	}
	return out.Exists, nil
}

func (o *orchestrator) StartAutosave() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.running {
		return
	}
	o.running = true
	o.timer = o.clock.AfterFunc(o.interval, o.autosave)
}

func (o *orchestrator) Stop(ctx context.Context) error {
	o.mu.Lock()
	o.running = false
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	o.mu.Unlock()

	return o.Save(ctx)
}

func (o *orchestrator) autosave() {
	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return
	}
	o.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), autosaveTimeout)
	if err := o.Save(ctx); err != nil {
		slog.Warn("Autosave failed", "name", o.name, "error", err)
	}
	cancel()

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running {
		o.timer = o.clock.AfterFunc(o.interval, o.autosave)
	}
}
