// Package narrative generates five-section stories from a character profile
// through a generative text provider.
package narrative

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/KirkDiggler/rpg-saga/internal/entities"
	"github.com/KirkDiggler/rpg-saga/internal/errors"
	"github.com/KirkDiggler/rpg-saga/internal/pkg/clock"
)

//go:generate mockgen -destination=mock/mock_client.go -package=narrativemock github.com/KirkDiggler/rpg-saga/internal/clients/narrative Client,ContentGenerator

const (
	// DefaultModel is used when Config.Model is empty
	DefaultModel = "gemini-1.5-flash"
	// DefaultTimeout bounds a single provider attempt
	DefaultTimeout = 30 * time.Second
	// DefaultRetryDelay is the base of the exponential backoff
	DefaultRetryDelay = time.Second
)

// NoResponseMessage describes a provider answer without any candidate
const NoResponseMessage = "No response received from API"

// NewNoResponseError builds the error for a provider answer without any candidate
func NewNoResponseError() *errors.Error {
	return errors.API(NoResponseMessage, true)
}

// Client generates narratives from profiles
type Client interface {
	// Generate returns a validated narrative. Every error is an *errors.Error.
	Generate(ctx context.Context, profile *entities.Profile) (*entities.Narrative, error)

	// TestConnection sends a canary prompt and reports whether the provider
	// answered {"test": "success"}. It never returns an error.
	TestConnection(ctx context.Context) bool
}

// ContentGenerator is the raw text transport to the provider
type ContentGenerator interface {
	GenerateText(ctx context.Context, model, prompt string) (string, error)
}

// Config holds configuration for the narrative client
type Config struct {
	Generator  ContentGenerator
	Model      string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration

	// Limiter paces outbound calls when set
	Limiter *rate.Limiter
	Clock   clock.Clock
}

// Validate checks the config and fills in defaults
func (cfg *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if cfg.Generator == nil {
		vb.RequiredField("Generator")
	}
	if cfg.MaxRetries < 0 {
		vb.Field("MaxRetries", "must not be negative")
	}
	if cfg.Timeout < 0 {
		vb.Field("Timeout", "must not be negative")
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}

	return vb.Build()
}

type client struct {
	generator  ContentGenerator
	model      string
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
	limiter    *rate.Limiter
	clock      clock.Clock
}

var _ Client = (*client)(nil)

// NewClient creates a new narrative client
func NewClient(cfg *Config) (Client, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &client{
		generator:  cfg.Generator,
		model:      cfg.Model,
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		limiter:    cfg.Limiter,
		clock:      cfg.Clock,
	}, nil
}

func (c *client) Generate(ctx context.Context, profile *entities.Profile) (*entities.Narrative, error) {
	if profile == nil {
		return nil, errors.Validation("player profile is required")
	}

	prompt := BuildPrompt(*profile)

	var narrative *entities.Narrative
	err := c.withRetry(ctx, func() error {
		text, err := c.send(ctx, prompt)
		if err != nil {
			return err
		}
		narrative, err = ParseNarrative(text)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Generated narrative", "character", profile.Name, "words", narrative.WordCount())
	return narrative, nil
}

func (c *client) TestConnection(ctx context.Context) bool {
	text, err := c.send(ctx, ConnectionTestPrompt)
	if err != nil {
		slog.Warn("Provider connection test failed", "error", err)
		return false
	}

	var reply struct {
		Test string `json:"test"`
	}
	if err := json.Unmarshal([]byte(StripFences(text)), &reply); err != nil {
		slog.Warn("Provider connection test returned unexpected text", "error", err)
		return false
	}
	return reply.Test == "success"
}

// send performs one bounded provider call and classifies any failure
func (c *client) send(ctx context.Context, prompt string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(attemptCtx); err != nil {
			return "", contextError(ctx, attemptCtx)
		}
	}

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := c.generator.GenerateText(attemptCtx, c.model, prompt)
		done <- result{text: text, err: err}
	}()

	select {
	case <-attemptCtx.Done():
		return "", contextError(ctx, attemptCtx)
	case r := <-done:
		if r.err != nil {
			if attemptCtx.Err() != nil {
				return "", contextError(ctx, attemptCtx)
			}
			return "", Classify(r.err)
		}
		if strings.TrimSpace(r.text) == "" {
			return "", errors.API("Empty response from API", true)
		}
		return r.text, nil
	}
}

// contextError distinguishes the attempt deadline from caller cancellation
func contextError(parent, attempt context.Context) *errors.Error {
	if parent.Err() != nil && !errors.Is(parent.Err(), context.DeadlineExceeded) {
		return errors.Aborted("generation cancelled").WithCause(parent.Err())
	}
	return errors.Timeout("Request timeout").WithCause(attempt.Err())
}
