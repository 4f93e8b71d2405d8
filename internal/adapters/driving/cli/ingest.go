package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/impactdesk/insight-cli/internal/core/domain"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [files...]",
	Short: "Ingest text documents into the chunk store",
	Long: `Reads the given text files, splits them into sentence-respecting chunks,
embeds each chunk and stores the result. Files that contain no usable text
are skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	ctx := context.Background()

	docs := make([]domain.Document, 0, len(args))
	for _, path := range args {
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

	before := storedChunkCount(ctx)

	if err := retrievalService.StoreDocuments(ctx, docs); err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	after := storedChunkCount(ctx)
	if before >= 0 && after >= 0 {
		cmd.Printf("Ingested %d document(s), %d chunk(s) stored.\n", len(docs), after-before)
	} else {
		cmd.Printf("Ingested %d document(s).\n", len(docs))
	}
	return nil
}

// storedChunkCount returns the store's chunk count, or -1 when the backend
// does not report one.
func storedChunkCount(ctx context.Context) int {
	counter, ok := chunkStore.(interface {
		Count(ctx context.Context) (int, error)
	})
	if !ok {
		return -1
	}
	n, err := counter.Count(ctx)
	if err != nil {
		return -1
	}
	return n
}

// docTypeFromPath derives the document type tag from the file extension.
func docTypeFromPath(path string) string {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "txt"
	}
	return strings.ToLower(ext)
}
