// Package storesync keeps the quiz, player, ui and generation stores
// consistent with each other.
package storesync

import (
	"log/slog"
	"sync"

	"github.com/KirkDiggler/rpg-saga/internal/entities"
	"github.com/KirkDiggler/rpg-saga/internal/errors"
	"github.com/KirkDiggler/rpg-saga/internal/state"
)

// Config holds the stores to keep in step
type Config struct {
	Quiz       *state.QuizStore
	Player     *state.PlayerStore
	UI         *state.UIStore
	Generation *state.GenerationStore
}

// Validate ensures all stores are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

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

	return vb.Build()
}

// Synchronizer applies the cross-store rules:
//   - quiz answers rebuild the player profile
//   - completing the quiz while on the quiz page moves to the story page
//   - resetting the quiz resets the generation store
type Synchronizer struct {
	quiz       *state.QuizStore
	player     *state.PlayerStore
	ui         *state.UIStore
	generation *state.GenerationStore

	mu     sync.Mutex
	cancel func()
}

// New creates a synchronizer. Call Start to begin listening.
func New(cfg *Config) (*Synchronizer, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &Synchronizer{
		quiz:       cfg.Quiz,
		player:     cfg.Player,
		ui:         cfg.UI,
		generation: cfg.Generation,
	}, nil
}

// Start subscribes to quiz events. Calling it twice is a no-op.
func (s *Synchronizer) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return
	}
	s.cancel = s.quiz.Subscribe(s.onQuizEvent)
}

// Stop unsubscribes from quiz events
func (s *Synchronizer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// SyncNow applies the answer and completion rules to the current state
func (s *Synchronizer) SyncNow() {
	st := s.quiz.State()
	s.syncQuizToPlayer(st)
	s.syncQuizToUI(st)
}

func (s *Synchronizer) onQuizEvent(e state.QuizEvent) {
	switch e.Kind {
	case state.QuizAnswered, state.QuizRestored:
		s.syncQuizToPlayer(e.State)
		s.syncQuizToUI(e.State)
	case state.QuizCompleted:
		s.syncQuizToUI(e.State)
	case state.QuizReset:
		slog.Debug("Quiz reset, clearing story")
		s.generation.Reset()
	}
}

func (s *Synchronizer) syncQuizToPlayer(st state.QuizState) {
	if len(st.Answers) == 0 {
		return
	}
	s.player.BuildFromAnswers(st.Answers)
}

func (s *Synchronizer) syncQuizToUI(st state.QuizState) {
	if st.IsComplete && s.ui.CurrentPage() == entities.PageQuiz {
		s.ui.NavigateTo(entities.PageStory)
	}
}
