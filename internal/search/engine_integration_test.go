package search

import (
	"context"
	"testing"

	"github.com/firebase/genkit/go/genkit"
	"github.com/google/uuid"

	"github.com/aurami/origin/internal/family"
	"github.com/aurami/origin/internal/index"
	"github.com/aurami/origin/internal/log"
	"github.com/aurami/origin/internal/testutil"
)

// unitVector returns a 768-dim unit vector with a single hot dimension,
// giving exact cosine similarity control between query and content.
func unitVector(dim int) []float32 {
	v := make([]float32, 768)
	v[dim] = 1
	return v
}

func TestEngineIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in -short mode")
	}
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	g := genkit.Init(ctx)
	mock := testutil.NewMockEmbedder(768)
	embedder := mock.Register(g)

	logger := log.NewNop()
	store := family.NewStore(db.Pool, logger)
	indexer := index.NewIndexer(db.Pool, embedder, logger)
	engine := NewEngine(db.Pool, embedder, store, logger)

	var household uuid.UUID
	if err := db.Pool.QueryRow(ctx,
		`INSERT INTO households (name) VALUES ('Chen') RETURNING id`).Scan(&household); err != nil {
		t.Fatalf("create household: %v", err)
	}

	year := 1932
	grandma, err := store.CreatePerson(ctx, household, family.PersonInput{
		FirstName: "Mei",
		LastName:  "Chen",
		BirthYear: &year,
		BirthCity: "Tainan",
	})
	if err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}

	// Pin vectors: the grandma question embeds identically to her canonical
	// text, the unrelated question orthogonally.
	mock.SetVector(index.PersonText(grandma), unitVector(0))
	mock.SetVector("who is the grandmother", unitVector(0))
	mock.SetVector("quantum chromodynamics", unitVector(1))
	mock.SetVector("mei", unitVector(2))

	if err := indexer.IndexPerson(ctx, grandma); err != nil {
		t.Fatalf("IndexPerson: %v", err)
	}

	t.Run("semantic hit above threshold", func(t *testing.T) {
		res, err := engine.Search(ctx, household, "who is the grandmother", Options{})
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if res.Source != SourceSemantic {
			t.Fatalf("source = %s, want %s", res.Source, SourceSemantic)
		}
		if len(res.Chunks) != 1 {
			t.Fatalf("chunks = %d, want 1", len(res.Chunks))
		}
		c := res.Chunks[0]
		if c.SourceTable != "persons" || c.SourceID != grandma.ID {
			t.Errorf("chunk source = %s/%s", c.SourceTable, c.SourceID)
		}
		if c.Similarity < 0.99 {
			t.Errorf("similarity = %f, want ~1", c.Similarity)
		}
	})

	t.Run("orthogonal query falls back to name search", func(t *testing.T) {
		// "mei" is orthogonal to every indexed vector, but matches the
		// first name by substring.
		res, err := engine.Search(ctx, household, "mei", Options{})
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if res.Source != SourceText {
			t.Fatalf("source = %s, want %s", res.Source, SourceText)
		}
		if len(res.Persons) != 1 || res.Persons[0].ID != grandma.ID {
			t.Errorf("persons = %v", res.Persons)
		}
	})

	t.Run("no match anywhere", func(t *testing.T) {
		res, err := engine.Search(ctx, household, "quantum chromodynamics", Options{})
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if res.Source != SourceNone {
			t.Errorf("source = %s, want %s", res.Source, SourceNone)
		}
	})

	t.Run("doc type filter", func(t *testing.T) {
		res, err := engine.Search(ctx, household, "who is the grandmother", Options{DocType: index.DocTypeStory})
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if res.Source == SourceSemantic {
			t.Errorf("person chunk returned despite story-only filter")
		}
	})

	t.Run("linked household in scope", func(t *testing.T) {
		var other uuid.UUID
		if err := db.Pool.QueryRow(ctx,
			`INSERT INTO households (name) VALUES ('Lin') RETURNING id`).Scan(&other); err != nil {
			t.Fatalf("create household: %v", err)
		}
		if _, err := db.Pool.Exec(ctx,
			`INSERT INTO household_links (household_id, linked_household_id) VALUES ($1, $2)`,
			other, household); err != nil {
			t.Fatalf("link households: %v", err)
		}

		res, err := engine.Search(ctx, other, "who is the grandmother", Options{})
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if res.Source != SourceSemantic {
			t.Errorf("source = %s, want semantic hit through link", res.Source)
		}
	})
}
