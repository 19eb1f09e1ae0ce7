package state

import (
	"sync"
	"time"

	"github.com/KirkDiggler/rpg-saga/internal/entities"
	"github.com/KirkDiggler/rpg-saga/internal/errors"
	"github.com/KirkDiggler/rpg-saga/internal/pkg/clock"
)

// DefaultFreshness is how long a narrative counts as fresh
const DefaultFreshness = 30 * time.Minute

// Phase is the generation lifecycle position
type Phase string

// Phase constants
const (
	PhaseIdle       Phase = "idle"
	PhaseGenerating Phase = "generating"
	PhaseSucceeded  Phase = "succeeded"
	PhaseFailed     Phase = "failed"
)

// ErrSuperseded is returned when a result arrives for a request that is no
// longer the one being tracked
var ErrSuperseded = errors.Aborted("generation request was superseded")

// GenerationState is a copy of the generation store
type GenerationState struct {
	Phase        Phase
	Narrative    *entities.Narrative
	ErrorMessage string
	LastRequest  *entities.GenerationRequest
	// Timestamp moves on start and on completion
	Timestamp *time.Time
	// Fallback marks a narrative produced by the template synthesizer
	Fallback bool
}

// IsGenerating reports whether a request is in flight
func (s GenerationState) IsGenerating() bool {
	return s.Phase == PhaseGenerating
}

// StoryMetadata summarizes the stored narrative
type StoryMetadata struct {
	HasStory      bool
	GeneratedAt   *time.Time
	CharacterName string
	WordCount     int
}

// GenerationStore tracks one generation request at a time. A new Start
// overwrites whatever was tracked before.
type GenerationStore struct {
	mu    sync.RWMutex
	clock clock.Clock
	state GenerationState

	subs listeners[GenerationState]
}

// NewGenerationStore returns an idle store. A nil clock uses wall time.
func NewGenerationStore(clk clock.Clock) *GenerationStore {
	if clk == nil {
		clk = clock.New()
	}
	return &GenerationStore{
		clock: clk,
		state: GenerationState{Phase: PhaseIdle},
	}
}

// Subscribe registers fn for every state change and returns its removal func
func (g *GenerationStore) Subscribe(fn func(GenerationState)) func() {
	return g.subs.add(fn)
}

// State returns a copy of the current state
func (g *GenerationStore) State() GenerationState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// Start records req as the tracked request, enters generating and clears the
// error. A stored narrative stays until the outcome is known.
func (g *GenerationStore) Start(req *entities.GenerationRequest) {
	g.update(func(s *GenerationState, now time.Time) {
		s.Phase = PhaseGenerating
		s.ErrorMessage = ""
		s.LastRequest = req
		s.Timestamp = &now
	})
}

// Complete stores the narrative for requestID. It fails with ErrSuperseded
// when requestID is not the request in flight.
func (g *GenerationStore) Complete(requestID string, n *entities.Narrative) error {
	return g.updateFor(requestID, func(s *GenerationState, now time.Time) {
		s.Phase = PhaseSucceeded
		s.Narrative = n
		s.ErrorMessage = ""
		s.Fallback = false
		s.Timestamp = &now
	})
}

// Fail records message for requestID and drops any narrative. It fails with
// ErrSuperseded when requestID is not the request in flight.
func (g *GenerationStore) Fail(requestID, message string) error {
	return g.updateFor(requestID, func(s *GenerationState, _ time.Time) {
		s.Phase = PhaseFailed
		s.Narrative = nil
		s.ErrorMessage = message
		s.Fallback = false
	})
}

// AcceptFallback stores a synthesized narrative. Any request in flight is
// detached and its eventual result will be reported as superseded.
func (g *GenerationStore) AcceptFallback(n *entities.Narrative) {
	g.update(func(s *GenerationState, now time.Time) {
		s.Phase = PhaseSucceeded
		s.Narrative = n
		s.ErrorMessage = ""
		s.Fallback = true
		s.Timestamp = &now
	})
}

// ClearError drops the failure message and leaves the phase alone
func (g *GenerationStore) ClearError() {
	g.update(func(s *GenerationState, _ time.Time) {
		s.ErrorMessage = ""
	})
}

// Reset returns the store to idle
func (g *GenerationStore) Reset() {
	g.update(func(s *GenerationState, _ time.Time) {
		*s = GenerationState{Phase: PhaseIdle}
	})
}

// IsGenerating reports whether a request is in flight
func (g *GenerationStore) IsGenerating() bool {
	return g.State().IsGenerating()
}

// HasNarrative reports whether a narrative is stored
func (g *GenerationStore) HasNarrative() bool {
	return g.State().Narrative != nil
}

// IsFresh reports whether the last timestamp is within maxAge. A zero
// maxAge uses DefaultFreshness.
func (g *GenerationStore) IsFresh(maxAge time.Duration) bool {
	if maxAge == 0 {
		maxAge = DefaultFreshness
	}
	s := g.State()
	if s.Timestamp == nil {
		return false
	}
	return g.clock.Now().Sub(*s.Timestamp) <= maxAge
}

// CanRegenerate reports whether a previous request exists and nothing is in flight
func (g *GenerationStore) CanRegenerate() bool {
	s := g.State()
	return !s.IsGenerating() && s.LastRequest != nil
}

// FormattedNarrative joins the stored sections. ok is false with no narrative.
func (g *GenerationStore) FormattedNarrative() (text string, ok bool) {
	s := g.State()
	if s.Narrative == nil {
		return "", false
	}
	return s.Narrative.Formatted(), true
}

// Metadata summarizes the stored narrative
func (g *GenerationStore) Metadata() StoryMetadata {
	s := g.State()

	md := StoryMetadata{
		HasStory:    s.Narrative != nil,
		GeneratedAt: s.Timestamp,
	}
	if s.LastRequest != nil {
		md.CharacterName = s.LastRequest.Profile.Name
	}
	if s.Narrative != nil {
		md.WordCount = s.Narrative.WordCount()
	}
	return md
}

// Snapshot returns the persisted fields
func (g *GenerationStore) Snapshot() *entities.StorySnapshot {
	s := g.State()

	snap := &entities.StorySnapshot{
		GeneratedStory:        s.Narrative,
		LastGenerationRequest: s.LastRequest,
	}
	if s.Timestamp != nil {
		ms := s.Timestamp.UnixMilli()
		snap.GenerationTimestamp = &ms
	}
	return snap
}

// Restore replaces the store with a persisted snapshot. A restored store is
// never generating.
func (g *GenerationStore) Restore(snap *entities.StorySnapshot) {
	if snap == nil {
		return
	}
	g.update(func(s *GenerationState, _ time.Time) {
		*s = GenerationState{
			Phase:       PhaseIdle,
			Narrative:   snap.GeneratedStory,
			LastRequest: snap.LastGenerationRequest,
		}
		if snap.GeneratedStory != nil {
			s.Phase = PhaseSucceeded
		}
		if snap.GenerationTimestamp != nil {
			ts := time.UnixMilli(*snap.GenerationTimestamp)
			s.Timestamp = &ts
		}
	})
}

func (g *GenerationStore) update(fn func(s *GenerationState, now time.Time)) {
	g.mu.Lock()
	fn(&g.state, g.clock.Now())
	out := g.state
	g.mu.Unlock()

	g.subs.notify(out)
}

func (g *GenerationStore) updateFor(requestID string, fn func(s *GenerationState, now time.Time)) error {
	g.mu.Lock()
	if g.state.Phase != PhaseGenerating || g.state.LastRequest == nil || g.state.LastRequest.ID != requestID {
		g.mu.Unlock()
		return ErrSuperseded
	}
	fn(&g.state, g.clock.Now())
	out := g.state
	g.mu.Unlock()

	g.subs.notify(out)
	return nil
}
