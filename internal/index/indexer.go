package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/aurami/origin/internal/family"
)

// ErrNoEmbedding means the embedder returned an empty response.
var ErrNoEmbedding = errors.New("index: embedder returned no embedding")

// Indexer writes the derived search index. Each entity owns exactly one
// document row, keyed by (source_table, source_id), and that document owns
// exactly one chunk at index 0. Reindexing overwrites both in place within a
// single transaction together with the entity's own embedding column, so the
// index can never hold two generations of the same entity.
type Indexer struct {
	pool     *pgxpool.Pool
	embedder ai.Embedder
	logger   *slog.Logger
}

// NewIndexer creates an Indexer.
func NewIndexer(pool *pgxpool.Pool, embedder ai.Embedder, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{pool: pool, embedder: embedder, logger: logger}
}

// IndexPerson reindexes one person.
func (ix *Indexer) IndexPerson(ctx context.Context, p *family.Person) error {
	return ix.index(ctx, indexTarget{
		householdID: p.HouseholdID,
		sourceTable: "persons",
		sourceID:    p.ID,
		docType:     DocTypePerson,
		title:       p.FullName(),
		text:        PersonText(p),
		metadata:    map[string]any{"person_id": p.ID.String(), "type": DocTypePerson},
	})
}

// IndexStory reindexes one story.
func (ix *Indexer) IndexStory(ctx context.Context, st *family.Story) error {
	return ix.index(ctx, indexTarget{
		householdID: st.HouseholdID,
		sourceTable: "stories",
		sourceID:    st.ID,
		docType:     DocTypeStory,
		title:       st.Title,
		text:        StoryText(st),
		metadata:    map[string]any{"story_id": st.ID.String(), "type": DocTypeStory},
	})
}

// IndexEvent reindexes one event.
func (ix *Indexer) IndexEvent(ctx context.Context, e *family.Event) error {
	return ix.index(ctx, indexTarget{
		householdID: e.HouseholdID,
		sourceTable: "events",
		sourceID:    e.ID,
		docType:     DocTypeEvent,
		title:       e.Title,
		text:        EventText(e),
		metadata:    map[string]any{"event_id": e.ID.String(), "type": DocTypeEvent},
	})
}

type indexTarget struct {
	householdID uuid.UUID
	sourceTable string
	sourceID    uuid.UUID
	docType     string
	title       string
	text        string
	metadata    map[string]any
}

func (ix *Indexer) index(ctx context.Context, t indexTarget) error {
	vec, err := ix.Embed(ctx, t.text)
	if err != nil {
		return err
	}

	meta, err := json.Marshal(t.metadata)
	if err != nil {
		return fmt.Errorf("marshal chunk metadata: %w", err)
	}

	tx, err := ix.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin index: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// The entity's own embedding column and the chunk must always agree.
	if _, err := tx.Exec(ctx,
		fmt.Sprintf(`UPDATE %s SET embedding = $1 WHERE id = $2`, t.sourceTable),
		vec, t.sourceID); err != nil {
		return fmt.Errorf("update %s embedding: %w", t.sourceTable, err)
	}

	var docID uuid.UUID
	err = tx.QueryRow(ctx, `
		INSERT INTO documents (household_id, title, doc_type, source_table, source_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (source_table, source_id)
		DO UPDATE SET title = EXCLUDED.title, updated_at = now()
		RETURNING id`,
		t.householdID, t.title, t.docType, t.sourceTable, t.sourceID).Scan(&docID)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO document_chunks (household_id, document_id, chunk_index,
			content, token_count, metadata, embedding)
		VALUES ($1, $2, 0, $3, $4, $5, $6)
		ON CONFLICT (document_id, chunk_index)
		DO UPDATE SET content = EXCLUDED.content, token_count = EXCLUDED.token_count,
			metadata = EXCLUDED.metadata, embedding = EXCLUDED.embedding,
			updated_at = now()`,
		t.householdID, docID, t.text, TokenCount(t.text), meta, vec); err != nil {
		return fmt.Errorf("upsert document chunk: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit index: %w", err)
	}
	ix.logger.Debug("entity indexed",
		"source_table", t.sourceTable, "source_id", t.sourceID, "document_id", docID)
	return nil
}

// Embed returns the embedding vector for a single text.
func (ix *Indexer) Embed(ctx context.Context, text string) (pgvector.Vector, error) {
	resp, err := ix.embedder.Embed(ctx, &ai.EmbedRequest{
		Input: []*ai.Document{{Content: []*ai.Part{ai.NewTextPart(text)}}},
	})
	if err != nil {
		return pgvector.Vector{}, fmt.Errorf("embed text: %w", err)
	}
	if len(resp.Embeddings) == 0 {
		return pgvector.Vector{}, ErrNoEmbedding
	}
	return pgvector.NewVector(resp.Embeddings[0].Embedding), nil
}
