package family

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aurami/origin/internal/log"
	"github.com/aurami/origin/internal/testutil"
)

func newHousehold(t *testing.T, pool *pgxpool.Pool, name string) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	err := pool.QueryRow(context.Background(),
		`INSERT INTO households (name) VALUES ($1) RETURNING id`, name).Scan(&id)
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	return id
}

func linkHouseholds(t *testing.T, pool *pgxpool.Pool, a, b uuid.UUID) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO household_links (household_id, linked_household_id) VALUES ($1, $2)`, a, b)
	if err != nil {
		t.Fatalf("link households: %v", err)
	}
}

func TestStoreIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in -short mode")
	}
	db := testutil.SetupTestDB(t)
	store := NewStore(db.Pool, log.NewNop())
	ctx := context.Background()

	household := newHousehold(t, db.Pool, "Chen")
	other := newHousehold(t, db.Pool, "Lin")
	linkHouseholds(t, db.Pool, household, other)

	t.Run("scope includes linked households", func(t *testing.T) {
		scope, err := store.ScopeIDs(ctx, household)
		if err != nil {
			t.Fatalf("ScopeIDs: %v", err)
		}
		if len(scope) != 2 {
			t.Fatalf("scope size = %d, want 2", len(scope))
		}
	})

	t.Run("scope of unknown household", func(t *testing.T) {
		_, err := store.ScopeIDs(ctx, uuid.New())
		if !errors.Is(err, ErrHouseholdNotFound) {
			t.Errorf("error = %v, want ErrHouseholdNotFound", err)
		}
	})

	t.Run("household name", func(t *testing.T) {
		name, err := store.HouseholdName(ctx, household)
		if err != nil {
			t.Fatalf("HouseholdName: %v", err)
		}
		if name != "Chen" {
			t.Errorf("name = %q, want Chen", name)
		}
	})

	birthYear := 1932
	grandma, err := store.CreatePerson(ctx, household, PersonInput{
		FirstName: "Mei",
		LastName:  "Chen",
		Nickname:  "Ama",
		BirthYear: &birthYear,
		BirthCity: "Tainan",
		Notes:     "Loved gardening.",
	})
	if err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}

	scope, err := store.ScopeIDs(ctx, household)
	if err != nil {
		t.Fatalf("ScopeIDs: %v", err)
	}

	t.Run("get person", func(t *testing.T) {
		got, err := store.GetPerson(ctx, scope, grandma.ID)
		if err != nil {
			t.Fatalf("GetPerson: %v", err)
		}
		if got.FirstName != "Mei" || got.Nickname != "Ama" {
			t.Errorf("person = %+v", got)
		}
		if got.BirthYear == nil || *got.BirthYear != 1932 {
			t.Errorf("birthYear = %v, want 1932", got.BirthYear)
		}
	})

	t.Run("get person outside scope", func(t *testing.T) {
		foreign := newHousehold(t, db.Pool, "Wang")
		p, err := store.CreatePerson(ctx, foreign, PersonInput{FirstName: "Wei", LastName: "Wang"})
		if err != nil {
			t.Fatalf("CreatePerson: %v", err)
		}
		if _, err := store.GetPerson(ctx, scope, p.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("find by name matches nickname", func(t *testing.T) {
		found, err := store.FindPersonsByName(ctx, scope, "ama")
		if err != nil {
			t.Fatalf("FindPersonsByName: %v", err)
		}
		if len(found) != 1 || found[0].ID != grandma.ID {
			t.Errorf("found = %v", found)
		}
	})

	t.Run("fallback search is substring match", func(t *testing.T) {
		found, err := store.SearchPersonsFallback(ctx, household, "che", 10)
		if err != nil {
			t.Fatalf("SearchPersonsFallback: %v", err)
		}
		if len(found) != 1 {
			t.Errorf("found %d persons, want 1", len(found))
		}
	})

	t.Run("update person typed fields", func(t *testing.T) {
		notes := "Loved gardening and cooking."
		updated, err := store.UpdatePerson(ctx, household, grandma.ID, PersonUpdate{Notes: &notes})
		if err != nil {
			t.Fatalf("UpdatePerson: %v", err)
		}
		if updated.Notes != notes {
			t.Errorf("notes = %q", updated.Notes)
		}
		if updated.FirstName != "Mei" {
			t.Errorf("firstName changed: %q", updated.FirstName)
		}
	})

	t.Run("empty update rejected", func(t *testing.T) {
		_, err := store.UpdatePerson(ctx, household, grandma.ID, PersonUpdate{})
		if !errors.Is(err, ErrEmptyUpdate) {
			t.Errorf("error = %v, want ErrEmptyUpdate", err)
		}
	})

	mother, err := store.CreatePerson(ctx, household, PersonInput{FirstName: "Hui", LastName: "Chen"})
	if err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}

	t.Run("child relationship normalized to parent edge", func(t *testing.T) {
		// "grandma is the child's parent" expressed from the child's side.
		rel, err := store.CreateRelationship(ctx, household, scope, RelationshipInput{
			FromPersonID: mother.ID,
			ToPersonID:   grandma.ID,
			RelationType: RelationChild,
		})
		if err != nil {
			t.Fatalf("CreateRelationship: %v", err)
		}
		if rel.RelationType != RelationParent {
			t.Errorf("relationType = %q, want parent", rel.RelationType)
		}
		if rel.FromPersonID != grandma.ID || rel.ToPersonID != mother.ID {
			t.Errorf("edge = %s -> %s, want %s -> %s",
				rel.FromPersonID, rel.ToPersonID, grandma.ID, mother.ID)
		}
	})

	t.Run("tree snapshot", func(t *testing.T) {
		persons, edges, err := store.TreeSnapshot(ctx, scope)
		if err != nil {
			t.Fatalf("TreeSnapshot: %v", err)
		}
		if len(persons) < 2 {
			t.Errorf("persons = %d, want >= 2", len(persons))
		}
		if len(edges) != 1 {
			t.Fatalf("edges = %d, want 1", len(edges))
		}
		if edges[0].ParentID != grandma.ID || edges[0].ChildID != mother.ID {
			t.Errorf("edge = %+v", edges[0])
		}
	})

	t.Run("events with links and filters", func(t *testing.T) {
		year := 1954
		_, err := store.CreateEvent(ctx, household, EventInput{
			Title:     "Moved to Taipei",
			EventType: "migration",
			EventYear: &year,
			Location:  "Taipei",
			PersonIDs: []uuid.UUID{grandma.ID},
			Roles:     []string{"migrant"},
		})
		if err != nil {
			t.Fatalf("CreateEvent: %v", err)
		}

		events, err := store.ListEvents(ctx, scope, EventFilter{PersonID: &grandma.ID})
		if err != nil {
			t.Fatalf("ListEvents: %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("events = %d, want 1", len(events))
		}
		if events[0].Title != "Moved to Taipei" {
			t.Errorf("title = %q", events[0].Title)
		}
		if len(events[0].PersonIDs) != 1 || events[0].PersonIDs[0] != grandma.ID {
			t.Errorf("personIDs = %v", events[0].PersonIDs)
		}

		none, err := store.ListEvents(ctx, scope, EventFilter{Keyword: "wedding"})
		if err != nil {
			t.Fatalf("ListEvents keyword: %v", err)
		}
		if len(none) != 0 {
			t.Errorf("keyword filter matched %d events, want 0", len(none))
		}
	})

	t.Run("stories with mentions and filters", func(t *testing.T) {
		st, err := store.CreateStory(ctx, household, StoryInput{
			Title:     "The Garden",
			Content:   "Every summer the garden overflowed with tomatoes.",
			Era:       "1960s",
			Tags:      []string{"garden", "summer"},
			PersonIDs: []uuid.UUID{grandma.ID},
		})
		if err != nil {
			t.Fatalf("CreateStory: %v", err)
		}

		byTag, err := store.FilterStories(ctx, scope, StoryFilter{Tag: "garden"})
		if err != nil {
			t.Fatalf("FilterStories: %v", err)
		}
		if len(byTag) != 1 || byTag[0].ID != st.ID {
			t.Errorf("byTag = %v", byTag)
		}

		mentions, err := store.StoryMentionsPerson(ctx, st.ID, grandma.ID)
		if err != nil {
			t.Fatalf("StoryMentionsPerson: %v", err)
		}
		if !mentions {
			t.Error("story should mention grandma")
		}
	})

	t.Run("timeline includes births and events", func(t *testing.T) {
		entries, err := store.Timeline(ctx, scope, nil, nil, 0)
		if err != nil {
			t.Fatalf("Timeline: %v", err)
		}
		// Grandma's birth (1932) and the migration (1954), in order.
		if len(entries) < 2 {
			t.Fatalf("entries = %d, want >= 2", len(entries))
		}
		if entries[0].Year == nil || *entries[0].Year != 1932 {
			t.Errorf("first entry year = %v, want 1932", entries[0].Year)
		}
	})

	t.Run("on this day", func(t *testing.T) {
		month, day := 3, 15
		_, err := store.CreatePerson(ctx, household, PersonInput{
			FirstName:  "Li",
			LastName:   "Chen",
			BirthMonth: &month,
			BirthDay:   &day,
		})
		if err != nil {
			t.Fatalf("CreatePerson: %v", err)
		}
		died := time.Date(1998, 3, 15, 0, 0, 0, 0, time.UTC)
		_, err = store.CreatePerson(ctx, household, PersonInput{
			FirstName: "Jun",
			LastName:  "Chen",
			DeathDate: &died,
		})
		if err != nil {
			t.Fatalf("CreatePerson: %v", err)
		}

		entries, err := store.OnThisDay(ctx, scope, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
		if err != nil {
			t.Fatalf("OnThisDay: %v", err)
		}
		kinds := map[string]OnThisDayEntry{}
		for _, e := range entries {
			kinds[e.Kind] = e
		}
		if _, ok := kinds["birthday"]; !ok {
			t.Errorf("no birthday entry in %v", entries)
		}
		memorial, ok := kinds["memorial"]
		if !ok {
			t.Fatalf("no memorial entry in %v", entries)
		}
		if memorial.Year == nil || *memorial.Year != 1998 {
			t.Errorf("memorial year = %v, want 1998", memorial.Year)
		}
		if memorial.Title != "Remembering Jun Chen" {
			t.Errorf("memorial title = %q", memorial.Title)
		}
	})
}
