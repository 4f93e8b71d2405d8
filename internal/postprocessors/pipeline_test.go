package postprocessors

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/impactdesk/insight-cli/internal/core/domain"
	"github.com/impactdesk/insight-cli/internal/postprocessors/chunker"
)

// upperProcessor uppercases chunk content, for ordering tests.
type upperProcessor struct{}

func (upperProcessor) Name() string { return "upper" }

func (upperProcessor) Process(_ context.Context, _ *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	for i := range chunks {
		chunks[i].Content = "X:" + chunks[i].Content
	}
	return chunks, nil
}

// failingProcessor always errors.
type failingProcessor struct{}

func (failingProcessor) Name() string { return "failing" }

func (failingProcessor) Process(context.Context, *domain.Document, []domain.Chunk) ([]domain.Chunk, error) {
	return nil, errors.New("boom")
}

func TestPipeline_Process(t *testing.T) {
	doc := domain.Document{Title: "Doc.txt", Content: "One sentence only."}

	t.Run("nil document is rejected", func(t *testing.T) {
		p := NewPipeline(chunker.New())
		_, err := p.Process(context.Background(), nil)
		assert.Error(t, err)
	})

	t.Run("processors run in order", func(t *testing.T) {
		p := NewPipeline(chunker.New(), upperProcessor{})
		chunks, err := p.Process(context.Background(), &doc)
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, "X:One sentence only.", chunks[0].Content)
	})

	t.Run("processor errors carry the processor name", func(t *testing.T) {
		p := NewPipeline(chunker.New(), failingProcessor{})
		_, err := p.Process(context.Background(), &doc)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failing")
	})

	t.Run("add and len", func(t *testing.T) {
		p := NewPipeline()
		assert.Equal(t, 0, p.Len())
		p.Add(chunker.New())
		assert.Equal(t, 1, p.Len())
	})
}
