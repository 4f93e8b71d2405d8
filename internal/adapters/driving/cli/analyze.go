package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/impactdesk/insight-cli/internal/core/domain"
)

var analyzeJSON bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze [query] [files...]",
	Short: "Analyze documents against a question",
	Long: `Ingests the given files, retrieves the chunks most relevant to the query
and asks the configured LLM for a structured analysis grounded on them.
When retrieval finds nothing, the first document is analysed in full.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output the analysis as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	query := args[0]
	docs := make([]domain.Document, 0, len(args)-1)
	for _, path := range args[1:] {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		docs = append(docs, domain.NewDocument(
			filepath.Base(path),
			docTypeFromPath(path),
			string(content),
		))
	}

	analysis, err := analysisService.Analyze(context.Background(), query, docs)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if analyzeJSON {
		data, err := json.MarshalIndent(analysis, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal analysis: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println("Summary")
	cmd.Println("=======")
	cmd.Println(analysis.Summary)
	cmd.Println()

	if len(analysis.Findings) > 0 {
		cmd.Println("Findings")
		cmd.Println("========")
		for _, finding := range analysis.Findings {
			cmd.Printf("  - %s\n", finding)
		}
		cmd.Println()
	}

	cmd.Printf("Confidence: %.2f\n", analysis.Confidence)
	cmd.Println()
	cmd.Println("Sources")
	cmd.Println("=======")
	for _, source := range analysis.Sources {
		cmd.Printf("  %s (%.2f)\n", source.Title, source.Similarity)
	}
	return nil
}
