package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/impactdesk/insight-cli/internal/core/domain"
	"github.com/impactdesk/insight-cli/internal/core/ports/driven"
	"github.com/impactdesk/insight-cli/internal/core/ports/driving"
	"github.com/impactdesk/insight-cli/internal/logger"
	"github.com/impactdesk/insight-cli/internal/sanitize"
)

// Ensure AnalysisService implements the interface.
var _ driving.AnalysisService = (*AnalysisService)(nil)

// Generation parameters for the analysis completion. Low temperature keeps
// the JSON output stable.
const (
	analysisMaxTokens   = 1024
	analysisTemperature = 0.2
)

// AnalysisService produces a structured analysis of a query over a set of
// input documents, grounded on chunks retrieved for the query.
type AnalysisService struct {
	retrieval driving.RetrievalService
	llm       driven.LLMService
}

// NewAnalysisService creates an analysis service on top of retrieval and a
// completion backend.
func NewAnalysisService(retrieval driving.RetrievalService, llm driven.LLMService) *AnalysisService {
	return &AnalysisService{
		retrieval: retrieval,
		llm:       llm,
	}
}

// Analyze stores the documents, retrieves chunks for the query and drives a
// single completion call over them. When retrieval comes back empty the
// first document's full sanitised content is analysed instead, recorded as a
// source with similarity 1.0. Ingestion failures abort the call; an empty
// retrieval does not.
func (s *AnalysisService) Analyze(ctx context.Context, query string, docs []domain.Document) (*domain.Analysis, error) {
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	if err := s.retrieval.StoreDocuments(ctx, docs); err != nil {
		return nil, fmt.Errorf("ingesting documents: %w", err)
	}

	chunks, err := s.retrieval.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("retrieving chunks: %w", err)
	}

	var (
		contexts []string
		sources  []domain.AnalysisSource
	)
	if len(chunks) > 0 {
		for _, chunk := range chunks {
			contexts = append(contexts, chunk.Content)
			sources = append(sources, domain.AnalysisSource{
				Title:      chunk.Metadata.Title,
				Similarity: chunk.Similarity,
			})
		}
	} else {
		logger.Info("no chunks retrieved, falling back to full document")
		fallback, ok := fullDocumentFallback(docs)
		if !ok {
			return nil, domain.ErrNoSources
		}
		contexts = append(contexts, fallback.Content)
		sources = append(sources, domain.AnalysisSource{
			Title:      fallback.Title,
			Similarity: 1.0,
		})
	}

	prompt := buildAnalysisPrompt(query, contexts)
	logger.Debug("analysis prompt is %d characters over %d sources", len(prompt), len(sources))

	completion, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   analysisMaxTokens,
		Temperature: analysisTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generating analysis: %w", err)
	}

	analysis, err := parseAnalysis(completion)
	if err != nil {
		return nil, err
	}
	analysis.Sources = sources
	return analysis, nil
}

// fullDocumentFallback picks the first document with non-empty sanitised
// content to stand in for retrieval.
func fullDocumentFallback(docs []domain.Document) (domain.Document, bool) {
	for _, doc := range docs {
		doc.Content = sanitize.Clean(doc.Content)
		if doc.Content != "" {
			return doc, true
		}
	}
	return domain.Document{}, false
}

// buildAnalysisPrompt assembles the completion prompt from the query and the
// context passages.
func buildAnalysisPrompt(query string, contexts []string) string {
	var b strings.Builder
	b.WriteString("You are an analyst. Answer the question using only the context passages below.\n\n")
	for i, text := range contexts {
		fmt.Fprintf(&b, "Context %d:\n%s\n\n", i+1, text)
	}
	fmt.Fprintf(&b, "Question: %s\n\n", query)
	b.WriteString("Respond with a JSON object and nothing else, in this shape:\n")
	b.WriteString(`{"summary": "one-paragraph answer", "findings": ["supporting observation"], "confidence": 0.0}` + "\n")
	b.WriteString("confidence is your confidence in the answer between 0 and 1.\n")
	return b.String()
}

// parseAnalysis decodes the completion output into an Analysis. Code fences
// around the JSON are tolerated; anything else unparseable is
// ErrMalformedAnalysis.
func parseAnalysis(completion string) (*domain.Analysis, error) {
	text := strings.TrimSpace(completion)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var analysis domain.Analysis
	if err := json.Unmarshal([]byte(text), &analysis); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedAnalysis, err)
	}
	if analysis.Summary == "" {
		return nil, fmt.Errorf("%w: missing summary", domain.ErrMalformedAnalysis)
	}
	if analysis.Confidence < 0 {
		analysis.Confidence = 0
	}
	if analysis.Confidence > 1 {
		analysis.Confidence = 1
	}
	return &analysis, nil
}
