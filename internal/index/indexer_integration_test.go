package index

import (
	"context"
	"testing"

	"github.com/firebase/genkit/go/genkit"
	"github.com/google/uuid"

	"github.com/aurami/origin/internal/family"
	"github.com/aurami/origin/internal/log"
	"github.com/aurami/origin/internal/testutil"
)

func TestIndexerIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in -short mode")
	}
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	g := genkit.Init(ctx)
	embedder := testutil.NewMockEmbedder(768).Register(g)

	logger := log.NewNop()
	store := family.NewStore(db.Pool, logger)
	indexer := NewIndexer(db.Pool, embedder, logger)

	var household uuid.UUID
	if err := db.Pool.QueryRow(ctx,
		`INSERT INTO households (name) VALUES ('Chen') RETURNING id`).Scan(&household); err != nil {
		t.Fatalf("create household: %v", err)
	}

	year := 1932
	person, err := store.CreatePerson(ctx, household, family.PersonInput{
		FirstName: "Mei",
		LastName:  "Chen",
		BirthYear: &year,
		BirthCity: "Tainan",
	})
	if err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}

	if err := indexer.IndexPerson(ctx, person); err != nil {
		t.Fatalf("IndexPerson: %v", err)
	}

	t.Run("document and chunk written", func(t *testing.T) {
		var docID uuid.UUID
		var title, docType string
		err := db.Pool.QueryRow(ctx,
			`SELECT id, title, doc_type FROM documents WHERE source_table = 'persons' AND source_id = $1`,
			person.ID).Scan(&docID, &title, &docType)
		if err != nil {
			t.Fatalf("document row: %v", err)
		}
		if title != "Mei Chen" || docType != DocTypePerson {
			t.Errorf("document = %q %q", title, docType)
		}

		var content string
		var tokenCount int
		err = db.Pool.QueryRow(ctx,
			`SELECT content, token_count FROM document_chunks WHERE document_id = $1 AND chunk_index = 0`,
			docID).Scan(&content, &tokenCount)
		if err != nil {
			t.Fatalf("chunk row: %v", err)
		}
		want := PersonText(person)
		if content != want {
			t.Errorf("content = %q, want %q", content, want)
		}
		if tokenCount != TokenCount(want) {
			t.Errorf("tokenCount = %d, want %d", tokenCount, TokenCount(want))
		}
	})

	t.Run("source embedding column set", func(t *testing.T) {
		var hasEmbedding bool
		err := db.Pool.QueryRow(ctx,
			`SELECT embedding IS NOT NULL FROM persons WHERE id = $1`, person.ID).Scan(&hasEmbedding)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if !hasEmbedding {
			t.Error("persons.embedding not set")
		}
	})

	t.Run("reindex replaces rather than duplicates", func(t *testing.T) {
		notes := "Loved gardening."
		updated, err := store.UpdatePerson(ctx, household, person.ID, family.PersonUpdate{Notes: &notes})
		if err != nil {
			t.Fatalf("UpdatePerson: %v", err)
		}
		if err := indexer.IndexPerson(ctx, updated); err != nil {
			t.Fatalf("IndexPerson reindex: %v", err)
		}

		var docCount, chunkCount int
		if err := db.Pool.QueryRow(ctx,
			`SELECT count(*) FROM documents WHERE source_table = 'persons' AND source_id = $1`,
			person.ID).Scan(&docCount); err != nil {
			t.Fatalf("count documents: %v", err)
		}
		if err := db.Pool.QueryRow(ctx,
			`SELECT count(*) FROM document_chunks dc
			 JOIN documents d ON d.id = dc.document_id
			 WHERE d.source_id = $1`, person.ID).Scan(&chunkCount); err != nil {
			t.Fatalf("count chunks: %v", err)
		}
		if docCount != 1 || chunkCount != 1 {
			t.Errorf("docs = %d, chunks = %d, want 1 and 1", docCount, chunkCount)
		}

		var content string
		err = db.Pool.QueryRow(ctx,
			`SELECT dc.content FROM document_chunks dc
			 JOIN documents d ON d.id = dc.document_id
			 WHERE d.source_id = $1`, person.ID).Scan(&content)
		if err != nil {
			t.Fatalf("chunk content: %v", err)
		}
		if content != PersonText(updated) {
			t.Errorf("content not refreshed: %q", content)
		}
	})

	t.Run("story indexing", func(t *testing.T) {
		st, err := store.CreateStory(ctx, household, family.StoryInput{
			Title:   "The Garden",
			Content: "Every summer the garden overflowed with tomatoes.",
		})
		if err != nil {
			t.Fatalf("CreateStory: %v", err)
		}
		if err := indexer.IndexStory(ctx, st); err != nil {
			t.Fatalf("IndexStory: %v", err)
		}

		var docType string
		err = db.Pool.QueryRow(ctx,
			`SELECT doc_type FROM documents WHERE source_table = 'stories' AND source_id = $1`,
			st.ID).Scan(&docType)
		if err != nil {
			t.Fatalf("document row: %v", err)
		}
		if docType != DocTypeStory {
			t.Errorf("docType = %q", docType)
		}
	})
}
