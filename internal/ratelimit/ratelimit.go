// Package ratelimit provides fixed-window request limiting keyed by client
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/KirkDiggler/rpg-saga/internal/errors"
	"github.com/KirkDiggler/rpg-saga/internal/pkg/clock"
)

const (
	// DefaultLimit is the number of requests allowed per window
	DefaultLimit = 5

	// DefaultWindow is the length of a counting window
	DefaultWindow = time.Minute

	// pruneThreshold is the number of tracked clients before expired
	// windows are swept
	pruneThreshold = 1024
)

// Limiter decides whether a client may make another request
type Limiter interface {
	// Allow counts a request for key and reports whether it fits in the
	// current window
	Allow(ctx context.Context, key string) (bool, error)
}

// MemoryConfig configures the in-process limiter
type MemoryConfig struct {
	Limit  int
	Window time.Duration
	Clock  clock.Clock
}

// Validate applies defaults and rejects negative settings
func (c *MemoryConfig) Validate() error {
	vb := errors.NewValidationBuilder()

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
	if c.Clock == nil {
		c.Clock = clock.New()
	}

	return vb.Build()
}

type window struct {
	count   int
	resetAt time.Time
}

// Memory is a fixed-window limiter held in process memory. A window starts
// at a client's first request and resets lazily once it has passed.
type Memory struct {
	limit  int
	window time.Duration
	clock  clock.Clock

	mu      sync.Mutex
	clients map[string]*window
}

// Ensure Memory implements Limiter
var _ Limiter = (*Memory)(nil)

// NewMemory creates an in-memory limiter
func NewMemory(cfg *MemoryConfig) (*Memory, error) {
	if cfg == nil {
		cfg = &MemoryConfig{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &Memory{
		limit:   cfg.Limit,
		window:  cfg.Window,
		clock:   cfg.Clock,
		clients: make(map[string]*window),
	}, nil
}

// Allow never returns an error
func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.clients[key]
	if !ok || now.After(w.resetAt) {
		if !ok && len(m.clients) >= pruneThreshold {
			m.pruneLocked(now)
		}
		m.clients[key] = &window{count: 1, resetAt: now.Add(m.window)}
		return true, nil
	}

	if w.count >= m.limit {
		return false, nil
	}
	w.count++
	return true, nil
}

// Tracked returns the number of clients with a live or stale window
func (m *Memory) Tracked() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clients)
}

func (m *Memory) pruneLocked(now time.Time) {
	for key, w := range m.clients {
		if now.After(w.resetAt) {
			delete(m.clients, key)
		}
	}
}
