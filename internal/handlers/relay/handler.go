// Package relay serves the story generation endpoint that keeps the provider
// key on the server
package relay

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/KirkDiggler/rpg-saga/internal/clients/narrative"
	"github.com/KirkDiggler/rpg-saga/internal/entities"
	"github.com/KirkDiggler/rpg-saga/internal/errors"
	"github.com/KirkDiggler/rpg-saga/internal/ratelimit"
)

const (
	// GenerateStoryPath is the single relay route
	GenerateStoryPath = "/api/generate-story"

	// MaxBodyBytes caps the request body
	MaxBodyBytes = 1 << 20

	// UnknownClient is the limiter key when no forwarding header is present
	UnknownClient = "unknown"
)

// Response messages
const (
	MsgRateLimited      = "Rate limit exceeded. Please try again later."
	MsgInvalidProfile   = "Invalid player profile data"
	MsgNotConfigured    = "Story generation service is not configured"
	MsgUnexpected       = "An unexpected error occurred while generating your story"
	MsgMethodNotAllowed = "Method not allowed"
)

// HandlerConfig holds dependencies for the relay handler
type HandlerConfig struct {
	// Client generates the narrative. Nil means no provider key was set.
	Client  narrative.Client
	Limiter ratelimit.Limiter
}

// Validate ensures all required dependencies are present
func (c *HandlerConfig) Validate() error {
	if c.Limiter == nil {
		return errors.InvalidArgument("limiter is required")
	}
	return nil
}

// Handler serves POST /api/generate-story
type Handler struct {
	client  narrative.Client
	limiter ratelimit.Limiter
}

// NewHandler creates a new relay handler with the given configuration
func NewHandler(cfg *HandlerConfig) (*Handler, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Handler{
		client:  cfg.Client,
		limiter: cfg.Limiter,
	}, nil
}

// Routes returns the router with request logging and panic recovery
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post(GenerateStoryPath, h.GenerateStory)
	r.Head(GenerateStoryPath, h.Probe)
	r.Get(GenerateStoryPath, h.methodNotAllowed)
	r.MethodNotAllowed(h.methodNotAllowed)

	return r
}

// GenerateStory validates the profile and relays it to the provider
func (h *Handler) GenerateStory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	clientID := ClientID(r)

	allowed, err := h.limiter.Allow(ctx, clientID)
	if err != nil {
		// counting is best effort, the request proceeds
		slog.Warn("Rate limiter unavailable", "client", clientID, "error", err)
		allowed = true
	}
	if !allowed {
		slog.Info("Rate limit exceeded", "client", clientID)
		writeError(w, http.StatusTooManyRequests, MsgRateLimited, entities.BoolPtr(true))
		return
	}

	var req entities.GenerateStoryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, MsgInvalidProfile, nil)
		return
	}
	if req.PlayerProfile == nil || req.PlayerProfile.Validate() != nil {
		writeError(w, http.StatusBadRequest, MsgInvalidProfile, nil)
		return
	}

	if h.client == nil {
		slog.Error("Story generation requested without a provider key")
		writeError(w, http.StatusInternalServerError, MsgNotConfigured, nil)
		return
	}

	n, err := h.client.Generate(ctx, req.PlayerProfile)
	if err != nil {
		status, msg, retryable := mapError(err)
		slog.Error("Story generation failed",
			"client", clientID,
			"code", errors.GetCode(err),
			"status", status,
			"error", err)
		writeError(w, status, msg, retryable)
		return
	}

	slog.Info("Story generated",
		"client", clientID,
		"character", req.PlayerProfile.Name,
		"words", n.WordCount())

	writeJSON(w, http.StatusOK, entities.GenerateStoryResponse{
		Success: true,
		Data:    n,
	})
}

// Probe answers reachability checks
func (h *Handler) Probe(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, MsgMethodNotAllowed, nil)
}

// ClientID returns the first X-Forwarded-For hop, then X-Real-IP, then
// UnknownClient
func ClientID(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if id := strings.TrimSpace(first); id != "" {
			return id
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	return UnknownClient
}

// mapError picks the status for a provider failure. Errors outside the
// taxonomy are reported with a generic message.
func mapError(err error) (int, string, *bool) {
	var e *errors.Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError, MsgUnexpected, nil
	}

	retryable := entities.BoolPtr(e.Retryable)
	switch {
	case e.Code == errors.CodeConfiguration:
		return http.StatusInternalServerError, e.Message, retryable
	case e.Code == errors.CodeValidation:
		return http.StatusBadRequest, e.Message, retryable
	case e.Retryable:
		return http.StatusServiceUnavailable, e.Message, retryable
	default:
		return http.StatusInternalServerError, e.Message, retryable
	}
}

func writeError(w http.ResponseWriter, status int, msg string, retryable *bool) {
	writeJSON(w, status, entities.GenerateStoryResponse{
		Success:   false,
		Error:     msg,
		Retryable: retryable,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("Failed to write response", "error", err)
	}
}
