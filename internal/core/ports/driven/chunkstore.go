package driven

import (
	"context"

	"github.com/impactdesk/insight-cli/internal/core/domain"
)

// ChunkStore persists chunks and answers similarity queries against their
// embeddings. Backed by SQLite; safe for concurrent reads and inserts.
//
// The store is additive-only: there is no update or delete. Document edits
// are handled upstream by re-ingesting as new chunks.
type ChunkStore interface {
	// Put bulk-inserts chunks. Each chunk id must be unique store-wide; a
	// collision fails the insert with domain.ErrAlreadyExists rather than
	// silently overwriting.
	Put(ctx context.Context, chunks []domain.Chunk) error

	// SimilaritySearch returns chunks whose cosine similarity to the query
	// vector is >= threshold, sorted descending, capped at limit.
	// An empty result is a normal outcome, not an error.
	SimilaritySearch(ctx context.Context, query []float32, threshold float64, limit int) ([]domain.RetrievedChunk, error)

	// Close releases resources.
	Close() error
}
