// Package mcp exposes the family tool catalog over the Model Context
// Protocol, so external MCP clients (editors, desktop assistants) can work
// with the same tools the conversational agent uses.
//
// An MCP server instance is single-tenant: it is started for one household
// and one user, fixed at construction. Tool failures surface as IsError
// results with the same structured payload the agent sees; transport and
// schema failures are the only hard errors.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/google/uuid"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/aurami/origin/internal/tools"
)

// Config holds MCP server configuration.
type Config struct {
	Name        string
	Version     string
	HouseholdID uuid.UUID
	UserID      uuid.UUID
}

// Server wraps the MCP SDK server around the tool dispatcher.
type Server struct {
	mcpServer   *sdk.Server
	dispatcher  *tools.Dispatcher
	householdID uuid.UUID
	userID      uuid.UUID
	logger      *slog.Logger
}

// NewServer creates an MCP server with the full tool catalog registered.
func NewServer(cfg Config, d *tools.Dispatcher, logger *slog.Logger) (*Server, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("mcp: server name is required")
	}
	if cfg.Version == "" {
		return nil, fmt.Errorf("mcp: server version is required")
	}
	if cfg.HouseholdID == uuid.Nil {
		return nil, fmt.Errorf("mcp: household id is required")
	}
	if d == nil {
		return nil, fmt.Errorf("mcp: dispatcher is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		mcpServer: sdk.NewServer(&sdk.Implementation{
			Name:    cfg.Name,
			Version: cfg.Version,
		}, nil),
		dispatcher:  d,
		householdID: cfg.HouseholdID,
		userID:      cfg.UserID,
		logger:      logger,
	}

	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("mcp: register tools: %w", err)
	}
	return s, nil
}

// Run serves the MCP protocol on the given transport until the context is
// cancelled. Blocking.
func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	s.logger.Info("starting MCP server", "household_id", s.householdID)
	return s.mcpServer.Run(ctx, transport)
}

func (s *Server) registerTools() error {
	if err := addTool[tools.SearchFamilyInput](s, tools.ToolSearchFamily); err != nil {
		return err
	}
	if err := addTool[tools.GetPersonInput](s, tools.ToolGetPerson); err != nil {
		return err
	}
	if err := addTool[tools.AddPersonInput](s, tools.ToolAddPerson); err != nil {
		return err
	}
	if err := addTool[tools.UpdatePersonInput](s, tools.ToolUpdatePerson); err != nil {
		return err
	}
	if err := addTool[tools.AddRelationshipInput](s, tools.ToolAddRelationship); err != nil {
		return err
	}
	if err := addTool[tools.GetFamilyTreeInput](s, tools.ToolGetFamilyTree); err != nil {
		return err
	}
	if err := addTool[tools.AddEventInput](s, tools.ToolAddEvent); err != nil {
		return err
	}
	if err := addTool[tools.GetEventsInput](s, tools.ToolGetEvents); err != nil {
		return err
	}
	if err := addTool[tools.GetTimelineInput](s, tools.ToolGetTimeline); err != nil {
		return err
	}
	if err := addTool[tools.SearchPhotosInput](s, tools.ToolSearchPhotos); err != nil {
		return err
	}
	if err := addTool[tools.AddStoryInput](s, tools.ToolAddStory); err != nil {
		return err
	}
	if err := addTool[tools.SearchStoriesInput](s, tools.ToolSearchStories); err != nil {
		return err
	}
	if err := addTool[tools.GetTodayHistoryInput](s, tools.ToolGetTodayHistory); err != nil {
		return err
	}
	return addTool[tools.GenerateBioInput](s, tools.ToolGenerateBio)
}

// addTool registers one catalog tool; In fixes the JSON schema the client
// receives.
func addTool[In any](s *Server, name string) error {
	inputSchema, err := jsonschema.For[In](nil)
	if err != nil {
		return fmt.Errorf("schema for %s: %w", name, err)
	}

	sdk.AddTool(s.mcpServer, &sdk.Tool{
		Name:        name,
		Description: tools.Description(name),
		InputSchema: inputSchema,
	}, func(ctx context.Context, _ *sdk.CallToolRequest, in In) (*sdk.CallToolResult, any, error) {
		raw, err := json.Marshal(in)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal input for %s: %w", name, err)
		}
		result := s.dispatcher.Execute(ctx, name, raw, s.householdID, s.userID)
		return resultToMCP(result), nil, nil
	})
	return nil
}

// resultToMCP converts a dispatcher Result into an MCP tool result. Error
// results become IsError text so clients show them without aborting the
// conversation.
func resultToMCP(res tools.Result) *sdk.CallToolResult {
	if res.IsErr() {
		text := fmt.Sprintf("Error [%s]: %s", res.Kind, res.Error)
		if res.Suggestion != "" {
			text += "\n" + res.Suggestion
		}
		return &sdk.CallToolResult{
			Content: []sdk.Content{&sdk.TextContent{Text: text}},
			IsError: true,
		}
	}

	data, err := json.Marshal(res.Data)
	if err != nil {
		return &sdk.CallToolResult{
			Content: []sdk.Content{&sdk.TextContent{Text: fmt.Sprintf("Error [internal]: encode result: %s", err)}},
			IsError: true,
		}
	}
	return &sdk.CallToolResult{
		Content: []sdk.Content{&sdk.TextContent{Text: string(data)}},
	}
}
