package story

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/KirkDiggler/rpg-saga/internal/entities"
	"github.com/KirkDiggler/rpg-saga/internal/errors"
)

// maxRelayBody caps how much of a relay response is read
const maxRelayBody = 1 << 20

type relayClient struct {
	url        string
	httpClient *http.Client
	timeout    time.Duration
}

// generate POSTs the profile to the relay and maps every failure onto the
// relay taxonomy
func (r *relayClient) generate(ctx context.Context, profile *entities.Profile) (*entities.Narrative, error) {
	body, err := json.Marshal(entities.GenerateStoryRequest{PlayerProfile: profile})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode relay request")
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeConfiguration, "invalid relay url")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Timeout("Request timed out. Please try again.").WithCause(err)
		}
		return nil, errors.NetworkError("Network error occurred").WithCause(err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			slog.Warn("Failed to close relay response body", "error", cerr)
		}
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxRelayBody))
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Timeout("Request timed out. Please try again.").WithCause(err)
		}
		return nil, errors.NetworkError("Network error occurred").WithCause(err)
	}

	// error bodies are best effort
	var payload entities.GenerateStoryResponse
	decodeErr := json.Unmarshal(raw, &payload)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, &payload)
	}

	if decodeErr != nil {
		return nil, errors.Validationf("Invalid story response format: %v", decodeErr)
	}
	if !payload.Success {
		return nil, errors.NewRetryable(errors.CodeGenerationError,
			orDefault(payload.Error, "Story generation failed"),
			boolOr(payload.Retryable, false))
	}
	if payload.Data == nil {
		return nil, errors.Validation("Invalid story response format: missing data")
	}
	if err := payload.Data.Validate(); err != nil {
		return nil, errors.Wrap(err, "Invalid story response format")
	}

	return payload.Data, nil
}

func statusError(status int, payload *entities.GenerateStoryResponse) *errors.Error {
	switch {
	case status == http.StatusTooManyRequests:
		return errors.RateLimited("Too many requests. Please wait a moment before trying again.").
			WithMeta("status", status)
	case status >= 500:
		return errors.NewRetryable(errors.CodeServerError,
			orDefault(payload.Error, "Server error occurred"),
			boolOr(payload.Retryable, true)).
			WithMeta("status", status)
	default:
		return errors.New(errors.CodeRequestError, orDefault(payload.Error, "Request failed")).
			WithMeta("status", status)
	}
}

// probe sends a HEAD request and reports whether the relay answered 2xx
func (r *relayClient) probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, r.url, nil)
	if err != nil {
		slog.Warn("Relay probe failed", "error", err)
		return false
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		slog.Warn("Relay probe failed", "error", err)
		return false
	}
	_ = resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode <= 299
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
