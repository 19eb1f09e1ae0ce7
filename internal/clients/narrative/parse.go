package narrative

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/KirkDiggler/rpg-saga/internal/entities"
	"github.com/KirkDiggler/rpg-saga/internal/errors"
)

// StripFences removes a surrounding ```json or ``` markdown block
func StripFences(text string) string {
	clean := strings.TrimSpace(text)

	switch {
	case strings.HasPrefix(clean, "```json"):
		clean = strings.TrimPrefix(clean, "```json")
	case strings.HasPrefix(clean, "```"):
		clean = strings.TrimPrefix(clean, "```")
	default:
		return clean
	}

	clean = strings.TrimSpace(clean)
	clean = strings.TrimSuffix(clean, "```")
	return strings.TrimSpace(clean)
}

// ParseNarrative decodes provider output into a Narrative. Syntax errors and
// shape mismatches both surface as validation errors.
func ParseNarrative(text string) (*entities.Narrative, error) {
	clean := StripFences(text)

	if !json.Valid([]byte(clean)) {
		var probe any
		err := json.Unmarshal([]byte(clean), &probe)
		return nil, errors.Validationf("Failed to parse API response as JSON: %v", err)
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(clean)))
	dec.DisallowUnknownFields()

	var n entities.Narrative
	if err := dec.Decode(&n); err != nil {
		return nil, errors.Validationf("Invalid story response format: %v", err)
	}

	if err := n.Validate(); err != nil {
		return nil, errors.Wrap(err, "Invalid story response format")
	}

	return &n, nil
}
