package tools

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"runtime/debug"

	"github.com/google/uuid"

	"github.com/aurami/origin/internal/family"
)

// ScopeResolver expands a household into its full query scope.
// *family.Store satisfies it.
type ScopeResolver interface {
	ScopeIDs(ctx context.Context, householdID uuid.UUID) ([]uuid.UUID, error)
}

// toolFunc executes one tool against an already-resolved scope.
type toolFunc func(ctx context.Context, sc *Scope, raw json.RawMessage) Result

// Dispatcher routes tool calls by name. Whatever goes wrong inside a handler
// (bad input, missing data, even a panic) comes back as a soft Result so the
// conversation can continue; Execute itself never fails.
type Dispatcher struct {
	resolver ScopeResolver
	handlers map[string]toolFunc
	logger   *slog.Logger
}

// NewDispatcher builds a Dispatcher with the full catalog wired to h.
func NewDispatcher(resolver ScopeResolver, h *Handler, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		resolver: resolver,
		handlers: make(map[string]toolFunc, len(toolNames)),
		logger:   logger,
	}
	d.register(ToolSearchFamily, adapt(h.SearchFamily))
	d.register(ToolGetPerson, adapt(h.GetPerson))
	d.register(ToolAddPerson, adapt(h.AddPerson))
	d.register(ToolUpdatePerson, adapt(h.UpdatePerson))
	d.register(ToolAddRelationship, adapt(h.AddRelationship))
	d.register(ToolGetFamilyTree, adapt(h.GetFamilyTree))
	d.register(ToolAddEvent, adapt(h.AddEvent))
	d.register(ToolGetEvents, adapt(h.GetEvents))
	d.register(ToolGetTimeline, adapt(h.GetTimeline))
	d.register(ToolSearchPhotos, adapt(h.SearchPhotos))
	d.register(ToolAddStory, adapt(h.AddStory))
	d.register(ToolSearchStories, adapt(h.SearchStories))
	d.register(ToolGetTodayHistory, adapt(h.GetTodayHistory))
	d.register(ToolGenerateBio, adapt(h.GenerateBio))
	return d
}

func (d *Dispatcher) register(name string, fn toolFunc) {
	d.handlers[name] = fn
}

// adapt decodes raw JSON into the handler's typed input.
func adapt[In any](fn func(ctx context.Context, sc *Scope, in In) Result) toolFunc {
	return func(ctx context.Context, sc *Scope, raw json.RawMessage) Result {
		var in In
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &in); err != nil {
				return Soft(KindInvalidInput, "invalid tool input: %s", err)
			}
		}
		return fn(ctx, sc, in)
	}
}

// Execute runs one named tool call for the given caller. Unknown names and
// handler failures produce error Results, not errors; the only hard failure
// mode is a cancelled context, which surfaces inside the Result as well.
func (d *Dispatcher) Execute(ctx context.Context, name string, raw json.RawMessage, householdID, userID uuid.UUID) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("tool handler panicked",
				"tool", name, "panic", r, "stack", string(debug.Stack()))
			res = Soft(KindInternal, "tool %s failed unexpectedly", name)
		}
	}()

	fn, ok := d.handlers[name]
	if !ok {
		return Err(KindUnknownTool, "Unknown tool: %s", name)
	}

	ids, err := d.resolver.ScopeIDs(ctx, householdID)
	if err != nil {
		if errors.Is(err, family.ErrHouseholdNotFound) {
			return Soft(KindNotFound, "household %s not found", householdID)
		}
		d.logger.Error("resolve household scope", "household_id", householdID, "error", err)
		return Soft(KindPersistence, "could not resolve household scope")
	}

	sc := &Scope{HouseholdID: householdID, UserID: userID, IDs: ids}
	res = fn(ctx, sc, raw)
	if res.IsErr() {
		d.logger.Debug("tool returned error result",
			"tool", name, "kind", res.Kind, "error", res.Error)
	}
	return res
}
