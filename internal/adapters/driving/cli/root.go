// Package cli implements the insight command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/impactdesk/insight-cli/internal/adapters/driven/embedding/openai"
	llmopenai "github.com/impactdesk/insight-cli/internal/adapters/driven/llm/openai"
	"github.com/impactdesk/insight-cli/internal/adapters/driven/storage/memory"
	"github.com/impactdesk/insight-cli/internal/adapters/driven/storage/sqlite"
	"github.com/impactdesk/insight-cli/internal/config"
	"github.com/impactdesk/insight-cli/internal/core/ports/driven"
	"github.com/impactdesk/insight-cli/internal/core/ports/driving"
	"github.com/impactdesk/insight-cli/internal/core/services"
	"github.com/impactdesk/insight-cli/internal/logger"
	"github.com/impactdesk/insight-cli/internal/postprocessors"
	"github.com/impactdesk/insight-cli/internal/ratelimit"
)

const version = "0.1.0"

var (
	verboseFlag bool
	memoryFlag  bool
)

// Services used by the commands. Wired lazily by ensureServices, or injected
// directly by tests.
var (
	appConfig        *config.Config
	retrievalService driving.RetrievalService
	analysisService  driving.AnalysisService
	embeddingService driven.EmbeddingService
	llmService       driven.LLMService
	chunkStore       driven.ChunkStore
)

var rootCmd = &cobra.Command{
	Use:   "insight",
	Short: "Semantic document retrieval and analysis",
	Long: `insight ingests text documents into a local vector store and answers
natural-language questions over them, optionally producing a structured
analysis via an LLM.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// A missing .env is fine; explicit environment always wins.
		_ = godotenv.Load()
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&memoryFlag, "memory", false, "use an in-memory store instead of SQLite")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// ensureServices wires the service graph from configuration. Safe to call
// from multiple commands; wiring happens once per process.
func ensureServices() error {
	if retrievalService != nil {
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	appConfig = cfg

	if memoryFlag {
		chunkStore = memory.NewChunkStore()
	} else {
		store, err := sqlite.NewStore(cfg.Storage.DataDir)
		if err != nil {
			return fmt.Errorf("opening chunk store: %w", err)
		}
		chunkStore = store
	}

	if cfg.HasAPIKey() {
		embedder, err := openai.NewEmbeddingService(openai.Config{
			APIKey:         cfg.OpenAI.APIKey,
			BaseURL:        cfg.OpenAI.BaseURL,
			Model:          cfg.OpenAI.EmbeddingModel,
			Limiter:        ratelimit.NewInterval(cfg.MinInterval()),
			MaxAttempts:    cfg.Retry.MaxAttempts,
			InitialBackoff: cfg.InitialBackoff(),
		})
		if err != nil {
			return fmt.Errorf("configuring embedding service: %w", err)
		}
		embeddingService = embedder

		llm, err := llmopenai.NewLLMService(llmopenai.Config{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.CompletionModel,
		})
		if err != nil {
			return fmt.Errorf("configuring LLM service: %w", err)
		}
		llmService = llm
	}

	pipeline := postprocessors.NewDefaultPipeline(cfg.Retrieval.ChunkSize)
	retrievalService = services.NewRetrievalService(embeddingService, chunkStore, pipeline, services.RetrievalConfig{
		PrimaryThreshold:  cfg.Retrieval.PrimaryThreshold,
		FallbackThreshold: cfg.Retrieval.FallbackThreshold,
		Limit:             cfg.Retrieval.Limit,
	})
	analysisService = services.NewAnalysisService(retrievalService, llmService)
	return nil
}
