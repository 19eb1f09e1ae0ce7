// Package storygen binds story generation to the generation store and adds
// caller-side automatic retry.
package storygen

//go:generate mockgen -destination=mock/mock_service.go -package=storygenmock github.com/KirkDiggler/rpg-saga/internal/orchestrators/storygen Service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/KirkDiggler/rpg-saga/internal/entities"
	"github.com/KirkDiggler/rpg-saga/internal/errors"
	"github.com/KirkDiggler/rpg-saga/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-saga/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-saga/internal/services/story"
	"github.com/KirkDiggler/rpg-saga/internal/state"
)

const (
	// DefaultMaxRetries is the number of automatic retries after the first attempt
	DefaultMaxRetries = 2

	// DefaultRetryDelay is the fixed wait before an automatic retry
	DefaultRetryDelay = 2 * time.Second

	// UnexpectedErrorMessage is recorded for errors without a classification
	UnexpectedErrorMessage = "An unexpected error occurred while generating your story"
)

// ErrNoPreviousRequest is returned by Retry when nothing was ever submitted
var ErrNoPreviousRequest = errors.InvalidArgument("No previous generation request to retry")

// Service drives generation requests through the story service and records
// every transition in the generation store
type Service interface {
	// Generate submits a new request for profile. It returns nil when the
	// request succeeded or an automatic retry was scheduled.
	Generate(ctx context.Context, profile entities.Profile) error

	// Retry re-submits the last request's profile under a new request ID
	// and resets the automatic retry counter
	Retry(ctx context.Context) error

	// CanRetry reports whether a previous request exists and nothing is in flight
	CanRetry() bool

	// IsGenerating is true while a request is in flight or a retry is waiting
	IsGenerating() bool

	// ClearError drops the recorded failure and any pending retry
	ClearError()

	// Reset cancels any pending retry and returns the store to idle
	Reset()

	// Close cancels any pending retry. Timers firing afterwards do nothing.
	Close()
}

// Config holds the dependencies for the generation binding
type Config struct {
	StoryService story.Service
	Store        *state.GenerationStore
	IDGenerator  idgen.Generator
	Clock        clock.Clock

	AutoRetry  bool
	MaxRetries int
	RetryDelay time.Duration

	OnSuccess func(*entities.Narrative)
	OnError   func(message string)
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.StoryService == nil {
		vb.RequiredField("StoryService")
	}
	if c.Store == nil {
		vb.RequiredField("Store")
	}
	if c.MaxRetries < 0 {
		vb.InvalidField("MaxRetries", "must not be negative")
	}
	if c.RetryDelay < 0 {
		vb.InvalidField("RetryDelay", "must not be negative")
	}

	if c.IDGenerator == nil {
		c.IDGenerator = idgen.NewUUID("req")
	}
	if c.Clock == nil {
		c.Clock = clock.New()
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = DefaultRetryDelay
	}

	return vb.Build()
}

type orchestrator struct {
	storyService story.Service
	store        *state.GenerationStore
	idGen        idgen.Generator
	clock        clock.Clock

	autoRetry  bool
	maxRetries int
	retryDelay time.Duration
	onSuccess  func(*entities.Narrative)
	onError    func(string)

	// retries fire on this context since the caller's may be gone
	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	attempts   int
	pending    clock.Timer
	pendingReq *entities.GenerationRequest
	closed     bool
	// submission counts Generate and Retry calls; a run only starts while it
	// still holds the latest one
	submission uint64

	// serializes the submission check with store.Start
	startMu sync.Mutex
}

// New creates a generation binding with the provided dependencies
func New(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &orchestrator{
		storyService: cfg.StoryService,
		store:        cfg.Store,
		idGen:        cfg.IDGenerator,
		clock:        cfg.Clock,
		autoRetry:    cfg.AutoRetry,
		maxRetries:   cfg.MaxRetries,
		retryDelay:   cfg.RetryDelay,
		onSuccess:    cfg.OnSuccess,
		onError:      cfg.OnError,
		ctx:          ctx,
		cancel:       cancel,
	}, nil
}

func (o *orchestrator) Generate(ctx context.Context, profile entities.Profile) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return errors.Aborted("generator is closed")
	}
	o.stopPendingLocked()
	o.attempts = 0
	o.submission++
	sub := o.submission
	o.mu.Unlock()

	req := entities.NewGenerationRequest(o.idGen.Generate(), profile, o.clock.Now())
	return o.run(ctx, req, sub)
}

func (o *orchestrator) Retry(ctx context.Context) error {
	last := o.store.State().LastRequest
	if last == nil {
		return ErrNoPreviousRequest
	}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return errors.Aborted("generator is closed")
	}
	o.stopPendingLocked()
	o.attempts = 0
	o.submission++
	sub := o.submission
	o.mu.Unlock()

	req := entities.NewGenerationRequest(o.idGen.Generate(), last.Profile, o.clock.Now())
	return o.run(ctx, req, sub)
}

func (o *orchestrator) CanRetry() bool {
	return o.store.CanRegenerate() && !o.IsGenerating()
}

func (o *orchestrator) IsGenerating() bool {
	o.mu.Lock()
	waiting := o.pending != nil
	o.mu.Unlock()

	return waiting || o.store.IsGenerating()
}

func (o *orchestrator) ClearError() {
	o.mu.Lock()
	o.stopPendingLocked()
	o.attempts = 0
	o.mu.Unlock()

	o.store.ClearError()
}

func (o *orchestrator) Reset() {
	o.mu.Lock()
	o.stopPendingLocked()
	o.attempts = 0
	o.mu.Unlock()

	o.store.Reset()
}

func (o *orchestrator) Close() {
	o.mu.Lock()
	o.closed = true
	o.stopPendingLocked()
	o.mu.Unlock()

	o.cancel()
}

// run submits req and records the outcome. A failure that qualifies for an
// automatic retry schedules one and returns nil. A run whose submission was
// replaced before it started returns state.ErrSuperseded without touching
// the store.
func (o *orchestrator) run(ctx context.Context, req *entities.GenerationRequest, sub uint64) error {
	if err := o.start(req, sub); err != nil {
		slog.Info("Skipping superseded story request", "request_id", req.ID)
		return err
	}

	slog.Info("Generating story",
		"request_id", req.ID,
		"character", req.Profile.Name)

	profile := req.Profile
	out, err := o.storyService.GenerateStory(ctx, &story.GenerateStoryInput{Profile: &profile})
	if err == nil {
		if cerr := o.store.Complete(req.ID, out.Narrative); cerr != nil {
			slog.Info("Discarding superseded story result", "request_id", req.ID)
			return cerr
		}

		o.mu.Lock()
		o.attempts = 0
		o.mu.Unlock()

		slog.Info("Story generated",
			"request_id", req.ID,
			"path", out.Path,
			"words", out.Narrative.WordCount())

		if o.onSuccess != nil {
			o.onSuccess(out.Narrative)
		}
		return nil
	}

	message := failureMessage(err)
	if ferr := o.store.Fail(req.ID, message); ferr != nil {
		slog.Info("Discarding superseded story failure", "request_id", req.ID)
		return ferr
	}

	o.mu.Lock()
	if o.autoRetry && !o.closed && o.attempts < o.maxRetries && errors.IsRetryable(err) {
		o.attempts++
		attempt := o.attempts
		o.pendingReq = req
		o.pending = o.clock.AfterFunc(o.retryDelay, func() { o.fireRetry(req, sub) })
		o.mu.Unlock()

		slog.Warn("Story generation failed, retry scheduled",
			"request_id", req.ID,
			"attempt", attempt,
			"delay", o.retryDelay,
			"error", err)
		return nil
	}
	o.attempts = 0
	o.mu.Unlock()

	slog.Error("Story generation failed",
		"request_id", req.ID,
		"code", errors.GetCode(err),
		"error", err)

	if o.onError != nil {
		o.onError(message)
	}
	return err
}

func (o *orchestrator) start(req *entities.GenerationRequest, sub uint64) error {
	o.startMu.Lock()
	defer o.startMu.Unlock()

	o.mu.Lock()
	stale := o.closed || o.submission != sub
	o.mu.Unlock()
	if stale {
		return state.ErrSuperseded
	}

	o.store.Start(req)
	return nil
}

func (o *orchestrator) fireRetry(req *entities.GenerationRequest, sub uint64) {
	o.mu.Lock()
	if o.closed || o.pendingReq != req {
		o.mu.Unlock()
		return
	}
	o.pending = nil
	o.pendingReq = nil
	o.mu.Unlock()

	// the outcome is recorded in the store and reported through the callbacks
	_ = o.run(o.ctx, req, sub)
}

func (o *orchestrator) stopPendingLocked() {
	if o.pending != nil {
		o.pending.Stop()
	}
	o.pending = nil
	o.pendingReq = nil
}

func failureMessage(err error) string {
	var e *errors.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return UnexpectedErrorMessage
}
