package tools

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aurami/origin/internal/family"
	"github.com/aurami/origin/internal/index"
	"github.com/aurami/origin/internal/search"
)

// TextGenerator produces free-form narrative text. Implemented by the agent
// package on top of the model; generate_bio is the only tool that needs it.
type TextGenerator interface {
	GenerateText(ctx context.Context, system, prompt string) (string, error)
}

// Scope is the tenancy context every tool call executes under. IDs holds the
// caller's household plus its linked households, resolved once per dispatch.
type Scope struct {
	HouseholdID uuid.UUID
	UserID      uuid.UUID
	IDs         []uuid.UUID
}

// Handler implements the 14 tool operations against the family store, the
// search engine and the indexing pipeline.
type Handler struct {
	store   *family.Store
	engine  *search.Engine
	indexer *index.Indexer
	writer  TextGenerator
	logger  *slog.Logger
}

// NewHandler creates a Handler. writer may be nil; generate_bio then reports
// an upstream failure instead of calling a model.
func NewHandler(store *family.Store, engine *search.Engine, indexer *index.Indexer, writer TextGenerator, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:   store,
		engine:  engine,
		indexer: indexer,
		writer:  writer,
		logger:  logger,
	}
}

// SetWriter installs the narrative text generator. The orchestrator is built
// on top of the dispatcher, so the writer arrives after construction.
func (h *Handler) SetWriter(writer TextGenerator) {
	h.writer = writer
}

// parseUUID validates a model-supplied ID string.
func parseUUID(field, raw string) (uuid.UUID, Result) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, Soft(KindInvalidInput, "invalid %s: %q", field, raw)
	}
	return id, Result{}
}

// parseUUIDs validates a list of model-supplied ID strings.
func parseUUIDs(field string, raw []string) ([]uuid.UUID, Result) {
	out := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, errRes := parseUUID(field, r)
		if errRes.IsErr() {
			return nil, errRes
		}
		out = append(out, id)
	}
	return out, Result{}
}

// parseDate parses a model-supplied YYYY-MM-DD date.
func parseDate(field, raw string) (*time.Time, Result) {
	if raw == "" {
		return nil, Result{}
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, Soft(KindInvalidInput, "invalid %s: %q (want YYYY-MM-DD)", field, raw)
	}
	return &t, Result{}
}
