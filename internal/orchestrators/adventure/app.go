// Package adventure is the application facade. It owns store lifecycle,
// session resume and the user-level actions a client drives.
package adventure

import (
	"context"
	"log/slog"
	"sync"

	"github.com/KirkDiggler/rpg-saga/internal/entities"
	"github.com/KirkDiggler/rpg-saga/internal/errors"
	"github.com/KirkDiggler/rpg-saga/internal/orchestrators/session"
	"github.com/KirkDiggler/rpg-saga/internal/orchestrators/storesync"
	"github.com/KirkDiggler/rpg-saga/internal/orchestrators/storygen"
	"github.com/KirkDiggler/rpg-saga/internal/services/story"
	"github.com/KirkDiggler/rpg-saga/internal/state"
)

// IncompleteProfileMessage is shown when generation is requested too early
const IncompleteProfileMessage = "Profile is incomplete. Please answer all required questions."

// Config holds the stores and services the facade drives. Session is
// optional; without it nothing is persisted.
type Config struct {
	Quiz       *state.QuizStore
	Player     *state.PlayerStore
	UI         *state.UIStore
	Generation *state.GenerationStore
	Sync       *storesync.Synchronizer
	Generator  storygen.Service
	Session    session.Service
}

// Validate ensures all required dependencies are provided
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
	if c.Sync == nil {
		vb.RequiredField("Sync")
	}
	if c.Generator == nil {
		vb.RequiredField("Generator")
	}

	return vb.Build()
}

// State is the computed view a client renders from
type State struct {
	CurrentPage entities.Page
	IsLoading   bool
	HasErrors   bool
	Errors      []string

	QuizProgress    int
	IsQuizComplete  bool
	CurrentQuestion *entities.Question
	CanProceed      bool
	CanGoBack       bool

	ProfileCompletion int
	IsProfileComplete bool
	MissingFields     []string

	HasStory          bool
	IsGeneratingStory bool
	StoryError        string
	StoryMetadata     state.StoryMetadata

	HasSession       bool
	CanResumeSession bool
}

// App wires the stores together and exposes the user-level actions
type App struct {
	quiz       *state.QuizStore
	player     *state.PlayerStore
	ui         *state.UIStore
	generation *state.GenerationStore
	sync       *storesync.Synchronizer
	generator  storygen.Service
	session    session.Service

	mu          sync.Mutex
	unsubscribe func()
	opened      bool
}

// New creates the facade. Call Open before use and Close when done.
func New(cfg *Config) (*App, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &App{
		quiz:       cfg.Quiz,
		player:     cfg.Player,
		ui:         cfg.UI,
		generation: cfg.Generation,
		sync:       cfg.Sync,
		generator:  cfg.Generator,
		session:    cfg.Session,
	}, nil
}

// Open starts store synchronization, resumes a saved session when one is
// usable and starts autosave. It reports whether a session was resumed.
func (a *App) Open(ctx context.Context) (bool, error) {
	a.mu.Lock()
	if a.opened {
		a.mu.Unlock()
		return false, nil
	}
	a.opened = true
	a.unsubscribe = a.generation.Subscribe(a.reflectGeneration)
	a.mu.Unlock()

	a.sync.Start()

	if a.session == nil {
		return false, nil
	}

	resumed, err := a.session.Load(ctx)
	if err != nil {
		// a broken store should not keep the adventure from starting
		slog.Warn("Failed to resume session", "error", err)
		resumed = false
	}
	a.session.StartAutosave()

	return resumed, nil
}

// Close stops pending retries, synchronization and autosave, then saves
func (a *App) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.opened {
		a.mu.Unlock()
		return nil
	}
	a.opened = false
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
	a.mu.Unlock()

	a.generator.Close()
	a.sync.Stop()

	if a.session == nil {
		return nil
	}
	return a.session.Stop(ctx)
}

// StartNewAdventure resets every store, returns to the landing page and
// clears the saved session
func (a *App) StartNewAdventure(ctx context.Context) error {
	a.generator.Reset()
	a.quiz.Reset()
	a.player.Reset()
	a.ui.Reset()

	if a.session == nil {
		return nil
	}
	return a.session.Clear(ctx)
}

// StartQuiz moves to the quiz page with errors cleared
func (a *App) StartQuiz() {
	a.ui.NavigateTo(entities.PageQuiz)
	a.ui.ClearAllErrors()
}

// NavigateTo moves to page
func (a *App) NavigateTo(page entities.Page) {
	a.ui.NavigateTo(page)
}

// SetAnswer records an answer. A rejected answer is also shown as the
// profile validation error.
func (a *App) SetAnswer(questionID, answer string) error {
	if err := a.quiz.SetAnswer(questionID, answer); err != nil {
		a.ui.SetError(state.OpProfileValidation, errors.GetMessage(err))
		return err
	}
	a.ui.SetError(state.OpProfileValidation, "")
	return nil
}

// NextQuestion advances the quiz
func (a *App) NextQuestion() {
	a.quiz.Next()
}

// PreviousQuestion steps the quiz back
func (a *App) PreviousQuestion() {
	a.quiz.Previous()
}

// CompleteQuiz finishes the quiz and, when the derived profile is complete,
// generates the story. It reports whether generation was started.
func (a *App) CompleteQuiz(ctx context.Context) (bool, error) {
	a.quiz.Complete()
	a.sync.SyncNow()

	if !a.player.IsProfileComplete() {
		return false, nil
	}
	return true, a.GenerateStory(ctx)
}

// GenerateStory submits the current profile for generation
func (a *App) GenerateStory(ctx context.Context) error {
	profile, err := a.player.ProfileForGeneration()
	if err != nil {
		a.ui.SetGlobalError(IncompleteProfileMessage)
		return errors.Wrap(err, IncompleteProfileMessage)
	}

	return a.generator.Generate(ctx, *profile)
}

// RetryStory re-submits the last request
func (a *App) RetryStory(ctx context.Context) error {
	return a.generator.Retry(ctx)
}

// UseFallbackStory records a locally synthesized narrative for the current
// profile as the result and detaches any request in flight
func (a *App) UseFallbackStory() (*entities.Narrative, error) {
	profile, err := a.player.ProfileForGeneration()
	if err != nil {
		a.ui.SetGlobalError(IncompleteProfileMessage)
		return nil, errors.Wrap(err, IncompleteProfileMessage)
	}

	a.generator.ClearError()
	n := story.FallbackNarrative(*profile)
	a.generation.AcceptFallback(n)
	a.ui.NavigateTo(entities.PageStory)

	slog.Info("Using fallback story", "character", profile.Name)
	return n, nil
}

// ClearErrors drops every error shown to the user
func (a *App) ClearErrors() {
	a.ui.ClearAllErrors()
	a.generator.ClearError()
}

// Save writes the session now
func (a *App) Save(ctx context.Context) error {
	if a.session == nil {
		return nil
	}
	return a.session.Save(ctx)
}

// State computes the current view
func (a *App) State(ctx context.Context) State {
	quiz := a.quiz.State()
	profile := a.player.Profile()
	gen := a.generation.State()

	st := State{
		CurrentPage: a.ui.CurrentPage(),
		IsLoading:   a.ui.HasAnyLoading() || a.generator.IsGenerating(),
		HasErrors:   a.ui.HasAnyError(),
		Errors:      a.ui.ActiveErrors(),

		QuizProgress:   quiz.Progress,
		IsQuizComplete: quiz.IsComplete,
		CanProceed:     a.quiz.CanProceedToNext(),
		CanGoBack:      a.quiz.CanGoToPrevious(),

		ProfileCompletion: profile.CompletionPercentage(),
		IsProfileComplete: a.player.IsProfileComplete(),
		MissingFields:     profile.MissingFields(),

		HasStory:          a.generation.HasNarrative(),
		IsGeneratingStory: a.generator.IsGenerating(),
		StoryError:        gen.ErrorMessage,
		StoryMetadata:     a.generation.Metadata(),
	}

	if q, ok := a.quiz.CurrentQuestion(); ok {
		st.CurrentQuestion = &q
	}

	if a.session != nil {
		has, err := a.session.HasSession(ctx)
		if err != nil {
			slog.Warn("Failed to check session", "error", err)
		}
		st.HasSession = has
		st.CanResumeSession = has && !quiz.IsComplete
	}

	return st
}

// reflectGeneration mirrors generation progress into the ui store
func (a *App) reflectGeneration(st state.GenerationState) {
	a.ui.SetLoading(state.OpStoryGeneration, st.IsGenerating())
	a.ui.SetError(state.OpStoryGeneration, st.ErrorMessage)
}
