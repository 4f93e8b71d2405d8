package driving

import (
	"context"

	"github.com/impactdesk/insight-cli/internal/core/domain"
)

// RetrievalService is the store-and-query surface of the pipeline.
type RetrievalService interface {
	// StoreDocuments ingests documents: sanitise, chunk, embed, persist.
	// A document that yields zero chunks is skipped, not an error. Any
	// embedding or storage failure aborts the whole call (fail-fast);
	// chunks already written for earlier documents are not rolled back.
	StoreDocuments(ctx context.Context, docs []domain.Document) error

	// Query resolves a natural-language query to ranked relevant chunks,
	// relaxing the similarity threshold once before reporting an empty
	// result. An empty result is a normal terminal outcome.
	Query(ctx context.Context, query string) ([]domain.RetrievedChunk, error)
}
