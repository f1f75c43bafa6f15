package port

import "errors"

// Sentinel errors used across ports. Handlers map these to HTTP statuses.
var (
	// ErrValidation marks size/count/format violations. Caller's fault, no retry.
	ErrValidation = errors.New("validation failed")

	// ErrRateLimited is returned once a client's request budget is exhausted.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrContextNotFound means the context expired, was evicted, or never
	// existed. The caller must re-ingest the page.
	ErrContextNotFound = errors.New("context not found")

	// ErrIndexingFailed means no usable index could be built at ingest.
	ErrIndexingFailed = errors.New("indexing failed")

	// ErrGenerationFailed means the language model timed out or errored after
	// the bounded retry.
	ErrGenerationFailed = errors.New("generation failed")
)
