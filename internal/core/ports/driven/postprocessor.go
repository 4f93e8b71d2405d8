package driven

import (
	"context"

	"github.com/impactdesk/insight-cli/internal/core/domain"
)

// PostProcessor transforms a document's content into (or over) chunks.
// Processors run in a pipeline: the first receives nil chunks and creates
// them, later ones receive and may modify them.
type PostProcessor interface {
	// Name returns the processor name for error reporting.
	Name() string

	// Process produces the next chunk set for the document.
	Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)
}
