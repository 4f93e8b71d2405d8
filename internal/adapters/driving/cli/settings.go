package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/impactdesk/insight-cli/internal/config"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the OpenAI credentials, storage location and
retrieval parameters. Settings live in ~/.insight/config.toml.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetKeyCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Set the OpenAI API key",
	Long:  `Prompts for the OpenAI API key without echoing and saves it to the config file.`,
	RunE:  runSettingsSetKey,
}

var settingsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check connectivity to the configured services",
	RunE:  runSettingsCheck,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetKeyCmd)
	settingsCmd.AddCommand(settingsCheckCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[OpenAI]")
	if cfg.HasAPIKey() {
		cmd.Printf("  API Key: %s\n", maskAPIKey(cfg.OpenAI.APIKey))
	} else {
		cmd.Printf("  API Key: (not set)\n")
	}
	cmd.Printf("  Embedding Model: %s\n", cfg.OpenAI.EmbeddingModel)
	cmd.Printf("  Completion Model: %s\n", cfg.OpenAI.CompletionModel)
	cmd.Println()

	cmd.Println("[Storage]")
	dataDir := cfg.Storage.DataDir
	if dataDir == "" {
		dataDir = "~/.insight/data"
	}
	cmd.Printf("  Data Dir: %s\n", dataDir)
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Primary Threshold: %.2f\n", cfg.Retrieval.PrimaryThreshold)
	cmd.Printf("  Fallback Threshold: %.2f\n", cfg.Retrieval.FallbackThreshold)
	cmd.Printf("  Result Limit: %d\n", cfg.Retrieval.Limit)
	cmd.Printf("  Chunk Size: %d\n", cfg.Retrieval.ChunkSize)
	return nil
}

func runSettingsSetKey(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	key, err := readSecret(cmd, "OpenAI API key: ")
	if err != nil {
		return err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("no key entered")
	}

	cfg.OpenAI.APIKey = key
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	cmd.Println("API key saved.")
	return nil
}

func runSettingsCheck(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if embeddingService == nil {
		return fmt.Errorf("no API key configured; run 'insight settings set-key'")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	cmd.Printf("Embedding service (%s): ", embeddingService.ModelName())
	if err := embeddingService.Ping(ctx); err != nil {
		cmd.Println("FAIL")
		return err
	}
	cmd.Println("OK")

	if llmService != nil {
		cmd.Printf("LLM service (%s): ", llmService.ModelName())
		if err := llmService.Ping(ctx); err != nil {
			cmd.Println("FAIL")
			return err
		}
		cmd.Println("OK")
	}
	return nil
}

// readSecret prompts for a value without echoing when stdin is a terminal,
// falling back to a plain line read otherwise (pipes, tests).
func readSecret(cmd *cobra.Command, prompt string) (string, error) {
	cmd.Print(prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		secret, err := term.ReadPassword(fd)
		cmd.Println()
		if err != nil {
			return "", fmt.Errorf("reading input: %w", err)
		}
		return string(secret), nil
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// maskAPIKey shows only the first and last few characters of a key.
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
