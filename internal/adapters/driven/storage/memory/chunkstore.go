// Package memory provides an in-memory chunk store used by tests and by
// ephemeral --memory runs.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/impactdesk/insight-cli/internal/core/domain"
	"github.com/impactdesk/insight-cli/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore is an in-memory implementation of driven.ChunkStore using
// brute-force cosine similarity. Safe for concurrent use.
type ChunkStore struct {
	mu     sync.RWMutex
	chunks map[string]domain.Chunk
	order  []string
}

// NewChunkStore creates a new in-memory chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		chunks: make(map[string]domain.Chunk),
	}
}

// Put bulk-inserts chunks. A duplicate id fails the whole batch with
// domain.ErrAlreadyExists; nothing from the batch is kept.
func (s *ChunkStore) Put(_ context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, chunk := range chunks {
		if chunk.Content == "" {
			return fmt.Errorf("chunk %s: %w: empty content", chunk.ID, domain.ErrInvalidInput)
		}
		if len(chunk.Embedding) == 0 {
			return fmt.Errorf("chunk %s: %w: missing embedding", chunk.ID, domain.ErrInvalidInput)
		}
		if _, exists := s.chunks[chunk.ID]; exists {
			return fmt.Errorf("chunk %s: %w", chunk.ID, domain.ErrAlreadyExists)
		}
	}
	seen := make(map[string]struct{}, len(chunks))
	for _, chunk := range chunks {
		if _, dup := seen[chunk.ID]; dup {
			return fmt.Errorf("chunk %s: %w", chunk.ID, domain.ErrAlreadyExists)
		}
		seen[chunk.ID] = struct{}{}
	}

	for _, chunk := range chunks {
		s.chunks[chunk.ID] = chunk
		s.order = append(s.order, chunk.ID)
	}
	return nil
}

// SimilaritySearch returns chunks whose cosine similarity to the query is at
// least threshold, sorted descending, capped at limit.
func (s *ChunkStore) SimilaritySearch(_ context.Context, query []float32, threshold float64, limit int) ([]domain.RetrievedChunk, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []domain.RetrievedChunk
	for _, id := range s.order {
		chunk := s.chunks[id]
		similarity := cosineSimilarity(query, chunk.Embedding)
		if similarity < threshold {
			continue
		}
		results = append(results, domain.RetrievedChunk{
			Content:    chunk.Content,
			Metadata:   chunk.Metadata,
			Similarity: similarity,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Len returns the number of stored chunks.
func (s *ChunkStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// Count returns the number of stored chunks. It mirrors the SQLite store's
// signature so callers can report stats against either backend.
func (s *ChunkStore) Count(_ context.Context) (int, error) {
	return s.Len(), nil
}

// Close releases resources.
func (s *ChunkStore) Close() error {
	return nil
}

// cosineSimilarity computes the cosine similarity between two vectors.
// Mismatched or zero-norm vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
