package cli

import (
	"bytes"
	"context"

	"github.com/impactdesk/insight-cli/internal/adapters/driven/storage/memory"
	"github.com/impactdesk/insight-cli/internal/core/domain"
)

// stubRetrieval returns canned chunks and records stored documents.
type stubRetrieval struct {
	stored  []domain.Document
	results []domain.RetrievedChunk
	err     error
}

func (s *stubRetrieval) StoreDocuments(_ context.Context, docs []domain.Document) error {
	s.stored = append(s.stored, docs...)
	return s.err
}

func (s *stubRetrieval) Query(_ context.Context, _ string) ([]domain.RetrievedChunk, error) {
	return s.results, s.err
}

// stubAnalysis returns a canned analysis.
type stubAnalysis struct {
	analysis *domain.Analysis
	err      error
}

func (s *stubAnalysis) Analyze(_ context.Context, _ string, _ []domain.Document) (*domain.Analysis, error) {
	return s.analysis, s.err
}

// setupTestServices injects stub services and returns a cleanup function
// restoring the previous wiring.
func setupTestServices(retrieval *stubRetrieval, analysis *stubAnalysis) func() {
	prevRetrieval := retrievalService
	prevAnalysis := analysisService
	prevStore := chunkStore

	retrievalService = retrieval
	analysisService = analysis
	chunkStore = memory.NewChunkStore()

	return func() {
		retrievalService = prevRetrieval
		analysisService = prevAnalysis
		chunkStore = prevStore
	}
}

// executeCommand runs the root command with args and captures output.
func executeCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
