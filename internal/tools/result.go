// Package tools implements the 14-tool catalog the model calls, the typed
// inputs for each tool, and the Dispatcher that routes and sandboxes tool
// execution.
package tools

import (
	"encoding/json"
	"fmt"
)

// Error kinds carried by failed results. The orchestrator and tests match on
// these instead of sniffing message strings.
const (
	KindUnknownTool  = "unknown_tool"
	KindInvalidInput = "invalid_input"
	KindNotFound     = "not_found"
	KindUpstream     = "upstream"
	KindPersistence  = "persistence"
	KindInternal     = "internal"
)

// DefaultSuggestion is appended to handler failures so the model can recover
// within the conversation.
const DefaultSuggestion = "Try rephrasing your request or check if the data exists."

// Result is the envelope every tool execution produces. Exactly one of Data
// or Error is set. Errors are soft: they are serialized back to the model as
// tool output, never raised to the caller.
type Result struct {
	Data       any    `json:"data,omitempty"`
	Error      string `json:"error,omitempty"`
	Kind       string `json:"kind,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Ok wraps a successful payload.
func Ok(data any) Result {
	return Result{Data: data}
}

// Err builds a failed result without a recovery suggestion.
func Err(kind, format string, args ...any) Result {
	return Result{Kind: kind, Error: fmt.Sprintf(format, args...)}
}

// Soft builds a failed result carrying the standard recovery suggestion.
func Soft(kind, format string, args ...any) Result {
	r := Err(kind, format, args...)
	r.Suggestion = DefaultSuggestion
	return r
}

// IsErr reports whether the result is a failure.
func (r Result) IsErr() bool {
	return r.Error != ""
}

// JSON renders the result for the model. Marshal errors collapse to a plain
// error payload rather than failing the turn.
func (r Result) JSON() string {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to serialize tool result: %s"}`, err)
	}
	return string(b)
}
