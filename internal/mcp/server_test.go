package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/aurami/origin/internal/log"
	"github.com/aurami/origin/internal/tools"
)

type stubResolver struct{}

func (stubResolver) ScopeIDs(_ context.Context, householdID uuid.UUID) ([]uuid.UUID, error) {
	return []uuid.UUID{householdID}, nil
}

func testDispatcher() *tools.Dispatcher {
	logger := log.NewNop()
	return tools.NewDispatcher(stubResolver{}, tools.NewHandler(nil, nil, nil, nil, logger), logger)
}

func TestNewServerValidation(t *testing.T) {
	valid := Config{
		Name:        "origin",
		Version:     "1.0.0",
		HouseholdID: uuid.New(),
		UserID:      uuid.New(),
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		nilDisp bool
		wantErr bool
	}{
		{"valid", func(*Config) {}, false, false},
		{"missing name", func(c *Config) { c.Name = "" }, false, true},
		{"missing version", func(c *Config) { c.Version = "" }, false, true},
		{"missing household", func(c *Config) { c.HouseholdID = uuid.Nil }, false, true},
		{"nil dispatcher", func(*Config) {}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			d := testDispatcher()
			if tt.nilDisp {
				d = nil
			}
			_, err := NewServer(cfg, d, log.NewNop())
			if (err != nil) != tt.wantErr {
				t.Errorf("NewServer() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestResultToMCPSuccess(t *testing.T) {
	res := resultToMCP(tools.Ok(map[string]any{"count": 3}))
	if res.IsError {
		t.Fatal("success result marked as error")
	}
	if len(res.Content) != 1 {
		t.Fatalf("content parts = %d, want 1", len(res.Content))
	}
	text, ok := res.Content[0].(*sdk.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want TextContent", res.Content[0])
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(text.Text), &data); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if data["count"] != float64(3) {
		t.Errorf("payload = %v", data)
	}
}

func TestResultToMCPError(t *testing.T) {
	res := resultToMCP(tools.Soft(tools.KindNotFound, "person %q not found", "Alice"))
	if !res.IsError {
		t.Fatal("error result not marked as error")
	}
	text := res.Content[0].(*sdk.TextContent).Text
	if !strings.Contains(text, "Error [not_found]") {
		t.Errorf("text missing kind: %q", text)
	}
	if !strings.Contains(text, tools.DefaultSuggestion) {
		t.Errorf("text missing suggestion: %q", text)
	}
}
