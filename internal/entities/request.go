package entities

import "time"

// GenerationRequest is a Profile submitted for narrative generation. It is
// never mutated after submission; a retry is a new request with a new ID.
type GenerationRequest struct {
	ID          string    `json:"id"`
	Profile     Profile   `json:"profile"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// NewGenerationRequest snapshots profile into a request
func NewGenerationRequest(id string, profile Profile, at time.Time) *GenerationRequest {
	return &GenerationRequest{
		ID:          id,
		Profile:     profile.Clone(),
		SubmittedAt: at,
	}
}
