// Package errors provides the structured error type shared by every layer of
// rpg-saga.
//
// An Error carries a machine-readable Code, a message that is safe to show to
// a player, an optional Cause, metadata, and a Retryable flag. The flag is
// what the story generation pipeline uses to decide whether "Try Again" is
// offered and whether an automatic retry may be scheduled.
//
// # Basic Usage
//
// Creating errors:
//
//	err := errors.Validation("invalid story response format")
//	err := errors.APIf(true, "API error: %s", msg)
//
// Adding metadata:
//
//	err := errors.NotFound("session not found").
//	    WithMeta("session_key", key)
//
// Wrapping errors:
//
//	if err := repo.Save(ctx, input); err != nil {
//	    return errors.Wrap(err, "failed to save session")
//	}
//
// # Error Checking
//
//	if errors.IsRetryable(err) {
//	    // schedule another attempt
//	}
//	code := errors.GetCode(err)
//	message := errors.GetMessage(err)
//
// # Validation Errors
//
//	vb := errors.NewValidationBuilder()
//	errors.ValidateRequired("name", profile.Name, vb)
//	errors.ValidateMaxLength("name", profile.Name, 50, vb)
//	if err := vb.Build(); err != nil {
//	    return err
//	}
//
// # Generation Taxonomy
//
// Errors produced while generating a narrative always use one of:
//   - CONFIGURATION_ERROR: missing or invalid provider credentials, never retried
//   - VALIDATION_ERROR: malformed provider reply or profile, never retried
//   - API_ERROR: provider failure, retryable unless quota is exhausted
//   - TIMEOUT: the call did not finish in time, retryable
//   - RATE_LIMITED: the relay refused the request, retryable
//   - SERVER_ERROR: the relay failed, retryable unless it says otherwise
//   - REQUEST_ERROR: the relay rejected the request, never retried
//   - NETWORK_ERROR: the relay could not be reached, retryable
//   - GENERATION_ERROR: the relay answered success=false
//   - CLIENT_ERROR: catch-all for unclassified direct-path failures
package errors
