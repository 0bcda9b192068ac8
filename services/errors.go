package services

import "errors"

// AI client failure kinds. Callers branch on these with errors.Is; the
// session machine maps them to turn-preserving recoveries and the HTTP layer
// to status codes.
var (
	// ErrServiceUnavailable: no credential is configured, so no call was made.
	ErrServiceUnavailable = errors.New("ai service not configured")

	// ErrInvalidCredential: the upstream rejected the credential. The client
	// treats itself as unconfigured until a new credential is supplied.
	ErrInvalidCredential = errors.New("ai credential rejected")

	// ErrRateLimited: upstream quota exhausted; retryable after backoff.
	ErrRateLimited = errors.New("ai quota exceeded")

	// ErrTransport: network-level failure; retryable by the user.
	ErrTransport = errors.New("ai transport failure")

	// ErrEmptyResponse: the model returned blank text.
	ErrEmptyResponse = errors.New("ai returned empty response")

	// ErrMalformedResponse: structured output could not be parsed even after
	// stripping surrounding prose and code fences. Never papered over with a
	// fabricated score.
	ErrMalformedResponse = errors.New("ai returned malformed response")
)
