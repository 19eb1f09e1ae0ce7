package narrative

import (
	"strings"

	"github.com/KirkDiggler/rpg-saga/internal/errors"
)

// Classify maps a raw provider failure onto the error taxonomy. It is the
// only place vendor error text is inspected. Errors that already carry a
// code are returned as they are.
func Classify(err error) *errors.Error {
	if err == nil {
		return nil
	}

	var classified *errors.Error
	if errors.As(err, &classified) {
		return classified
	}

	message := err.Error()
	upper := strings.ToUpper(message)

	switch {
	case containsAny(upper, "API_KEY", "API KEY"):
		return errors.Configuration("Invalid API key").WithCause(err)
	case strings.Contains(upper, "QUOTA"):
		return errors.API("API quota exceeded", false).WithCause(err)
	case containsAny(upper, "RATE_LIMIT", "RATE LIMIT", "RESOURCE_EXHAUSTED", "TOO MANY REQUESTS"):
		return errors.API("Rate limit exceeded", true).WithCause(err)
	default:
		return errors.APIf(true, "API error: %s", message).WithCause(err)
	}
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
