// Package search answers free-text questions about the family knowledge
// base: semantic retrieval over document chunks first, deterministic name
// matching as the fallback.
package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/aurami/origin/internal/family"
)

// Similarity thresholds and limits. Below the threshold a chunk is noise,
// not a result.
const (
	ThresholdGeneral = 0.65
	ThresholdStories = 0.60
	DefaultLimit     = 10
	MaxLimit         = 50
)

// Source identifies which phase produced a result set.
type Source string

const (
	SourceSemantic Source = "semantic_search"
	SourceText     Source = "text_search"
	SourceNone     Source = "none"
)

// Chunk is one semantic match joined back to its owning document.
type Chunk struct {
	DocumentID  uuid.UUID      `json:"documentId"`
	SourceTable string         `json:"sourceTable"`
	SourceID    uuid.UUID      `json:"sourceId"`
	DocType     string         `json:"docType"`
	Title       string         `json:"title"`
	Content     string         `json:"content"`
	Similarity  float64        `json:"similarity"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Result is the envelope for one search. Chunks is set for semantic hits,
// Persons for text fallback hits; Source tells the caller which happened.
type Result struct {
	Source  Source          `json:"source"`
	Chunks  []Chunk         `json:"chunks,omitempty"`
	Persons []family.Person `json:"persons,omitempty"`
}

// Options tune a single search. Zero values select the defaults.
type Options struct {
	Limit     int
	Threshold float64
	DocType   string // restrict to one document type, empty = all
}

func (o Options) normalized() Options {
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.Limit > MaxLimit {
		o.Limit = MaxLimit
	}
	if o.Threshold <= 0 {
		o.Threshold = ThresholdGeneral
	}
	return o
}

// Engine runs two-phase retrieval. Semantic phase: embed the query and rank
// chunks by cosine similarity across the household and its linked
// households. Fallback phase: case-insensitive substring match over person
// names in the caller's own household only.
type Engine struct {
	pool     *pgxpool.Pool
	embedder ai.Embedder
	store    *family.Store
	logger   *slog.Logger
}

// NewEngine creates an Engine.
func NewEngine(pool *pgxpool.Pool, embedder ai.Embedder, store *family.Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{pool: pool, embedder: embedder, store: store, logger: logger}
}

// Search runs both phases. A failed or empty semantic phase degrades to the
// fallback instead of failing the whole search; only a fallback failure is
// returned as an error.
func (e *Engine) Search(ctx context.Context, householdID uuid.UUID, query string, opts Options) (*Result, error) {
	opts = opts.normalized()

	chunks, err := e.semantic(ctx, householdID, query, opts)
	if err != nil {
		e.logger.Warn("semantic search failed, falling back to text search",
			"household_id", householdID, "error", err)
	}
	if len(chunks) > 0 {
		return &Result{Source: SourceSemantic, Chunks: chunks}, nil
	}

	persons, err := e.store.SearchPersonsFallback(ctx, householdID, query, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("fallback search: %w", err)
	}
	if len(persons) == 0 {
		return &Result{Source: SourceNone}, nil
	}
	return &Result{Source: SourceText, Persons: persons}, nil
}

func (e *Engine) semantic(ctx context.Context, householdID uuid.UUID, query string, opts Options) ([]Chunk, error) {
	vec, err := e.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	args := []any{householdID, vec, opts.Threshold, opts.Limit}
	docTypeFilter := ""
	if opts.DocType != "" {
		args = append(args, opts.DocType)
		docTypeFilter = fmt.Sprintf("AND d.doc_type = $%d", len(args))
	}

	rows, err := e.pool.Query(ctx, fmt.Sprintf(`
		WITH scope AS (
			SELECT id FROM households WHERE id = $1
			UNION
			SELECT linked_household_id FROM household_links WHERE household_id = $1
		)
		SELECT d.id, d.source_table, d.source_id, d.doc_type, d.title,
			dc.content, dc.metadata,
			1 - (dc.embedding <=> $2) AS similarity
		FROM document_chunks dc
		JOIN documents d ON d.id = dc.document_id
		WHERE dc.household_id IN (SELECT id FROM scope)
		  AND dc.embedding IS NOT NULL
		  AND 1 - (dc.embedding <=> $2) >= $3
		  %s
		ORDER BY similarity DESC
		LIMIT $4`, docTypeFilter), args...)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	var out []Chunk
	for rows.Next() {
		var c Chunk
		if err := rows.Scan(&c.DocumentID, &c.SourceTable, &c.SourceID, &c.DocType,
			&c.Title, &c.Content, &c.Metadata, &c.Similarity); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (e *Engine) embedQuery(ctx context.Context, query string) (pgvector.Vector, error) {
	resp, err := e.embedder.Embed(ctx, &ai.EmbedRequest{
		Input: []*ai.Document{{Content: []*ai.Part{ai.NewTextPart(query)}}},
	})
	if err != nil {
		return pgvector.Vector{}, fmt.Errorf("embed query: %w", err)
	}
	if len(resp.Embeddings) == 0 {
		return pgvector.Vector{}, fmt.Errorf("embed query: empty response")
	}
	return pgvector.NewVector(resp.Embeddings[0].Embedding), nil
}
