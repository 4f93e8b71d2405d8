package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a chunk id collision on insert.
	// The store never silently overwrites an existing chunk.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Nothing can be ingested or queried without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the completion service is not configured.
	// Retrieval still works; analysis is disabled.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrNoSources indicates analysis was requested with no retrieved chunks
	// and no input document to fall back to.
	ErrNoSources = errors.New("no content available for analysis")

	// ErrMalformedAnalysis indicates the completion service returned text
	// that could not be parsed into a structured analysis.
	ErrMalformedAnalysis = errors.New("malformed analysis response")
)
