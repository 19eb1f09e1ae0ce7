package narrative

import (
	"context"

	"google.golang.org/genai"

	"github.com/KirkDiggler/rpg-saga/internal/errors"
)

// GenAIGenerator sends prompts to Gemini through the genai SDK
type GenAIGenerator struct {
	client *genai.Client
}

var _ ContentGenerator = (*GenAIGenerator)(nil)

// NewGenAIGenerator creates a generator authenticated with apiKey
func NewGenAIGenerator(ctx context.Context, apiKey string) (*GenAIGenerator, error) {
	if apiKey == "" {
		return nil, errors.Configuration("API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeConfiguration, "failed to create genai client")
	}

	return &GenAIGenerator{client: client}, nil
}

// GenerateText returns the text of the first candidate. Vendor errors are
// returned untouched so Classify can inspect them.
func (g *GenAIGenerator) GenerateText(ctx context.Context, model, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", NewNoResponseError()
	}

	return resp.Text(), nil
}
