package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/impactdesk/insight-cli/internal/core/domain"
)

var queryJSON bool

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Retrieve chunks relevant to a query",
	Long: `Embeds the query and returns the stored chunks most similar to it.
If nothing clears the primary similarity threshold, the search is retried
once at a relaxed threshold before reporting no results.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	results, err := retrievalService.Query(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		return outputQueryJSON(cmd, results)
	}
	return outputQueryTable(cmd, results)
}

func outputQueryJSON(cmd *cobra.Command, results []domain.RetrievedChunk) error {
	if results == nil {
		results = []domain.RetrievedChunk{}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputQueryTable(cmd *cobra.Command, results []domain.RetrievedChunk) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, result := range results {
		cmd.Printf("[%d] %s (%.2f)\n", i+1, result.Metadata.Title, result.Similarity)
		cmd.Printf("    %s\n", snippet(result.Content, 160))
	}
	return nil
}

// snippet truncates text to at most n runes for table output.
func snippet(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n-3]) + "..."
}
