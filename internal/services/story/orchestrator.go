package story

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/KirkDiggler/rpg-saga/internal/clients/narrative"
	"github.com/KirkDiggler/rpg-saga/internal/entities"
	"github.com/KirkDiggler/rpg-saga/internal/errors"
)

const (
	// DefaultRelayTimeout bounds a relay POST
	DefaultRelayTimeout = 30 * time.Second
	// ProbeTimeout bounds the relay HEAD probe
	ProbeTimeout = 5 * time.Second
)

// Config holds the dependencies for the story service
type Config struct {
	// RelayURL is the full URL of the generate-story endpoint
	RelayURL   string
	HTTPClient *http.Client
	Timeout    time.Duration

	// NarrativeClient is the direct path. It may be nil when no provider
	// credentials are available; direct generation then fails with a
	// configuration error.
	NarrativeClient narrative.Client

	DisableRelay    bool
	DisableFallback bool
}

// Validate validates the configuration and fills in defaults
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if !c.DisableRelay && c.RelayURL == "" {
		vb.RequiredField("RelayURL")
	}
	if c.DisableRelay && c.DisableFallback {
		vb.Field("DisableFallback", "at least one generation path must be enabled")
	}

	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{}
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultRelayTimeout
	}

	return vb.Build()
}

type orchestrator struct {
	relay     *relayClient
	direct    narrative.Client
	useRelay  bool
	useDirect bool
}

var _ Service = (*orchestrator)(nil)

// New creates a new story service
func New(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &orchestrator{
		relay: &relayClient{
			url:        cfg.RelayURL,
			httpClient: cfg.HTTPClient,
			timeout:    cfg.Timeout,
		},
		direct:    cfg.NarrativeClient,
		useRelay:  !cfg.DisableRelay,
		useDirect: !cfg.DisableFallback,
	}, nil
}

func (o *orchestrator) GenerateStory(ctx context.Context, input *GenerateStoryInput) (*GenerateStoryOutput, error) {
	if input == nil || input.Profile == nil {
		return nil, errors.Validation("player profile is required")
	}

	if o.useRelay {
		n, err := o.relay.generate(ctx, input.Profile)
		if err == nil {
			return &GenerateStoryOutput{Narrative: n, Path: PathRelay}, nil
		}

		slog.WarnContext(ctx, "Relay generation failed",
			"code", errors.GetCode(err),
			"retryable", errors.IsRetryable(err),
			"error", err)

		if !o.useDirect {
			return nil, err
		}
		slog.InfoContext(ctx, "Falling back to direct generation")
	}

	n, err := o.generateDirect(ctx, input)
	if err != nil {
		return nil, err
	}
	return &GenerateStoryOutput{Narrative: n, Path: PathDirect}, nil
}

func (o *orchestrator) generateDirect(ctx context.Context, input *GenerateStoryInput) (*entities.Narrative, error) {
	if o.direct == nil {
		return nil, errors.Configuration("GEMINI_API_KEY environment variable is required")
	}

	n, err := o.direct.Generate(ctx, input.Profile)
	if err != nil {
		var classified *errors.Error
		if errors.As(err, &classified) {
			return nil, err
		}
		return nil, errors.ClientError("Client-side generation failed").WithCause(err)
	}
	return n, nil
}

func (o *orchestrator) TestService(ctx context.Context) *TestServiceOutput {
	out := &TestServiceOutput{}

	g, gctx := errgroup.WithContext(ctx)

	if o.useRelay {
		g.Go(func() error {
			out.RelayReachable = o.relay.probe(gctx)
			return nil
		})
	}
	if o.direct != nil {
		g.Go(func() error {
			out.ProviderReachable = o.direct.TestConnection(gctx)
			return nil
		})
	}

	// probes never return errors
	_ = g.Wait()

	slog.InfoContext(ctx, "Story service diagnostics",
		"relay", out.RelayReachable,
		"provider", out.ProviderReachable)

	return out
}
