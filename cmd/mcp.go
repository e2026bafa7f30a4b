package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	mcpSdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/aurami/origin/internal/app"
	"github.com/aurami/origin/internal/config"
	"github.com/aurami/origin/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server on stdio",
	Long: `Start a Model Context Protocol server exposing the family tool
catalog over stdio, for use with MCP clients such as desktop assistants.

The serving household and user are fixed by configuration
(mcp_household_id and mcp_user_id, or the ORIGIN_MCP_HOUSEHOLD_ID and
ORIGIN_MCP_USER_ID environment variables).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCP()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := checkRequiredEnv(); err != nil {
		return err
	}

	householdID, err := uuid.Parse(cfg.MCPHouseholdID)
	if err != nil {
		return fmt.Errorf("mcp_household_id must be a valid UUID: %w", err)
	}
	userID, err := uuid.Parse(cfg.MCPUserID)
	if err != nil {
		return fmt.Errorf("mcp_user_id must be a valid UUID: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := slog.Default()
	logger.Info("starting MCP server", "version", AppVersion)

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	server, err := mcp.NewServer(mcp.Config{
		Name:        "origin",
		Version:     AppVersion,
		HouseholdID: householdID,
		UserID:      userID,
	}, a.Dispatcher, logger)
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	logger.Info("MCP server ready", "transport", "stdio")
	if err := server.Run(ctx, &mcpSdk.StdioTransport{}); err != nil {
		return fmt.Errorf("MCP server: %w", err)
	}
	logger.Info("MCP server shut down gracefully")
	return nil
}
