// Package services contains the core application services that orchestrate
// the driven ports.
package services

import (
	"context"
	"fmt"

	"github.com/impactdesk/insight-cli/internal/core/domain"
	"github.com/impactdesk/insight-cli/internal/core/ports/driven"
	"github.com/impactdesk/insight-cli/internal/core/ports/driving"
	"github.com/impactdesk/insight-cli/internal/logger"
	"github.com/impactdesk/insight-cli/internal/postprocessors"
	"github.com/impactdesk/insight-cli/internal/sanitize"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// Default retrieval parameters. The primary threshold keeps results tight;
// the fallback threshold is tried once when the primary pass comes back empty.
const (
	DefaultPrimaryThreshold  = 0.5
	DefaultFallbackThreshold = 0.3
	DefaultResultLimit       = 5
)

// RetrievalConfig holds retrieval tuning parameters.
type RetrievalConfig struct {
	// PrimaryThreshold is the minimum cosine similarity for the first pass.
	PrimaryThreshold float64

	// FallbackThreshold is the relaxed minimum used when the primary pass
	// returns nothing. Set equal to PrimaryThreshold to disable the retry.
	FallbackThreshold float64

	// Limit caps the number of chunks returned per query.
	Limit int
}

// RetrievalService ingests documents into the chunk store and answers
// similarity queries over it.
type RetrievalService struct {
	embedder driven.EmbeddingService
	store    driven.ChunkStore
	pipeline *postprocessors.Pipeline
	cfg      RetrievalConfig
}

// NewRetrievalService creates a retrieval service. Zero-valued config fields
// are filled with defaults.
func NewRetrievalService(embedder driven.EmbeddingService, store driven.ChunkStore, pipeline *postprocessors.Pipeline, cfg RetrievalConfig) *RetrievalService {
	if cfg.PrimaryThreshold <= 0 {
		cfg.PrimaryThreshold = DefaultPrimaryThreshold
	}
	if cfg.FallbackThreshold <= 0 {
		cfg.FallbackThreshold = DefaultFallbackThreshold
	}
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultResultLimit
	}
	return &RetrievalService{
		embedder: embedder,
		store:    store,
		pipeline: pipeline,
		cfg:      cfg,
	}
}

// StoreDocuments runs each document through sanitise, chunk, embed and
// persist. Documents that sanitise or chunk down to nothing are skipped.
// The first embedding or storage failure aborts the call; chunks persisted
// for earlier documents stay in place.
func (s *RetrievalService) StoreDocuments(ctx context.Context, docs []domain.Document) error {
	if s.embedder == nil {
		return domain.ErrEmbeddingUnavailable
	}

	logger.Section("Ingest")
	for _, doc := range docs {
		doc.Content = sanitize.Clean(doc.Content)

		chunks, err := s.pipeline.Process(ctx, &doc)
		if err != nil {
			return fmt.Errorf("processing document %q: %w", doc.Title, err)
		}
		if len(chunks) == 0 {
			logger.Info("document %q produced no chunks, skipping", doc.Title)
			continue
		}

		texts := make([]string, len(chunks))
		for i, chunk := range chunks {
			texts[i] = chunk.Content
		}

		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding document %q: %w", doc.Title, err)
		}
		if len(vectors) != len(chunks) {
			return fmt.Errorf("embedding document %q: got %d vectors for %d chunks", doc.Title, len(vectors), len(chunks))
		}
		for i := range chunks {
			chunks[i].Embedding = vectors[i]
		}

		if err := s.store.Put(ctx, chunks); err != nil {
			return fmt.Errorf("storing document %q: %w", doc.Title, err)
		}
		logger.Debug("stored %d chunks for %q", len(chunks), doc.Title)
	}
	return nil
}

// Query embeds the query text and searches the store, relaxing the similarity
// threshold once if the first pass returns nothing. An empty result is
// returned without error. A query that sanitises to nothing matches nothing.
func (s *RetrievalService) Query(ctx context.Context, query string) ([]domain.RetrievedChunk, error) {
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	cleaned := sanitize.Clean(query)
	if cleaned == "" {
		logger.Debug("query is empty after sanitising")
		return nil, nil
	}

	logger.Section("Query")
	vector, err := s.embedder.Embed(ctx, cleaned)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	results, err := s.store.SimilaritySearch(ctx, vector, s.cfg.PrimaryThreshold, s.cfg.Limit)
	if err != nil {
		return nil, fmt.Errorf("searching chunks: %w", err)
	}
	if len(results) > 0 || s.cfg.FallbackThreshold >= s.cfg.PrimaryThreshold {
		return results, nil
	}

	logger.Info("no chunks above %.2f, retrying at %.2f", s.cfg.PrimaryThreshold, s.cfg.FallbackThreshold)
	results, err = s.store.SimilaritySearch(ctx, vector, s.cfg.FallbackThreshold, s.cfg.Limit)
	if err != nil {
		return nil, fmt.Errorf("searching chunks at fallback threshold: %w", err)
	}
	return results, nil
}
