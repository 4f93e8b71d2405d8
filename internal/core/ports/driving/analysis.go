package driving

import (
	"context"

	"github.com/impactdesk/insight-cli/internal/core/domain"
)

// AnalysisService turns a query plus input documents into a structured
// analysis grounded on retrieved chunks.
type AnalysisService interface {
	// Analyze stores the documents, retrieves chunks for the query, and
	// drives a single completion call over them. When retrieval comes back
	// empty it falls back to analysing the first document's full content,
	// recorded as a source with similarity 1.0.
	Analyze(ctx context.Context, query string, docs []domain.Document) (*domain.Analysis, error)
}
