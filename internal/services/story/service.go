// Package story provides the generation service that turns a profile into a
// narrative through the relay endpoint or the provider client.
package story

import (
	"context"

	"github.com/KirkDiggler/rpg-saga/internal/entities"
)

//go:generate mockgen -destination=mock/mock_service.go -package=storymock github.com/KirkDiggler/rpg-saga/internal/services/story Service

// Path names which invocation produced a narrative
type Path string

const (
	PathRelay  Path = "relay"
	PathDirect Path = "direct"
)

// Service defines the story generation interface
type Service interface {
	// GenerateStory tries the relay first, then the direct client. It never
	// retries; every error is an *errors.Error carrying a retryable flag.
	GenerateStory(ctx context.Context, input *GenerateStoryInput) (*GenerateStoryOutput, error)

	// TestService probes both paths concurrently and never fails
	TestService(ctx context.Context) *TestServiceOutput
}

// =============================================================================
// Service Input/Output Types
// =============================================================================

// GenerateStoryInput contains the profile to generate for
type GenerateStoryInput struct {
	Profile *entities.Profile
}

// GenerateStoryOutput contains the generated narrative
type GenerateStoryOutput struct {
	Narrative *entities.Narrative
	Path      Path
}

// TestServiceOutput reports reachability of each path
type TestServiceOutput struct {
	RelayReachable    bool `json:"serverAPI"`
	ProviderReachable bool `json:"clientService"`
}
