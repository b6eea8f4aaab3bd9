package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrExtractionFailed indicates the language model failed to
	// produce a usable API summary. Unlike other per-item failures,
	// this aborts indexing of the affected document.
	ErrExtractionFailed = errors.New("API information extraction failed")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// The extraction-based indexing path is disabled without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrSearchUnavailable indicates the search service is not
	// configured. Indexing stages cannot run without it.
	ErrSearchUnavailable = errors.New("search service unavailable")

	// ErrAuthRequired indicates no usable credential source is
	// configured for the management service.
	ErrAuthRequired = errors.New("authentication required")
)
