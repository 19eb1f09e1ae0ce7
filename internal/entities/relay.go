package entities

// GenerateStoryRequest is the relay request body
type GenerateStoryRequest struct {
	PlayerProfile *Profile `json:"playerProfile"`
}

// GenerateStoryResponse is the relay response body for every status
type GenerateStoryResponse struct {
	Success   bool       `json:"success"`
	Data      *Narrative `json:"data,omitempty"`
	Error     string     `json:"error,omitempty"`
	Retryable *bool      `json:"retryable,omitempty"`
}
