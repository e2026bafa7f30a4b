// Package cmd implements the origin command line interface.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aurami/origin/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "origin",
	Short: "Origin - family history agent backend",
	Long: `Origin is the backend for a conversational family-history agent.
It serves a chat API backed by an LLM tool loop over the family archive:
people, relationships, events, photos and stories, with semantic search
over pgvector.

Run "origin serve" to start the HTTP API, "origin mcp" to expose the tool
catalog over the Model Context Protocol, or "origin migrate" to apply
database migrations.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	initLogger()
	return rootCmd.Execute()
}

// checkRequiredEnv verifies environment variables the model provider needs.
func checkRequiredEnv() error {
	if os.Getenv("GEMINI_API_KEY") == "" {
		fmt.Fprintln(os.Stderr, "Error: GEMINI_API_KEY environment variable not set")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Origin requires a Gemini API key to function.")
		fmt.Fprintln(os.Stderr, "  export GEMINI_API_KEY=your-api-key")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Get your API key at: https://ai.google.dev/")
		return fmt.Errorf("GEMINI_API_KEY not set")
	}
	return nil
}

// initLogger installs the default logger. Logs go to stderr; in MCP mode
// stdout is reserved for JSON-RPC.
func initLogger() {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	logger := log.NewWithWriter(os.Stderr, log.Config{Level: level})
	slog.SetDefault(logger)
}
