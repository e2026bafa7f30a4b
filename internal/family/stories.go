package family

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateStory inserts a story together with its person mentions in one
// transaction.
func (s *Store) CreateStory(ctx context.Context, householdID uuid.UUID, in StoryInput) (*Story, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create story: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var st Story
	err = tx.QueryRow(ctx, `
		INSERT INTO stories (household_id, title, content, narrator_id, era, location, tags, created_by)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8)
		RETURNING id, household_id, title, content, narrator_id,
			COALESCE(era, ''), COALESCE(location, ''), COALESCE(tags, '{}'), created_at`,
		householdID, in.Title, in.Content, in.NarratorID, in.Era, in.Location,
		in.Tags, uuidOrNil(in.CreatedBy)).
		Scan(&st.ID, &st.HouseholdID, &st.Title, &st.Content, &st.NarratorID,
			&st.Era, &st.Location, &st.Tags, &st.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert story: %w", err)
	}

	for _, pid := range in.PersonIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO story_persons (story_id, person_id) VALUES ($1, $2)`,
			st.ID, pid); err != nil {
			return nil, fmt.Errorf("link story to person %s: %w", pid, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create story: %w", err)
	}
	st.PersonIDs = in.PersonIDs
	s.logger.Debug("story created", "story_id", st.ID, "mentions", len(in.PersonIDs))
	return &st, nil
}

const storyColumns = `
	s.id, s.household_id, s.title, s.content, s.narrator_id,
	COALESCE(s.era, ''), COALESCE(s.location, ''), COALESCE(s.tags, '{}'), s.created_at`

func collectStories(rows pgx.Rows) ([]Story, error) {
	defer rows.Close()
	var out []Story
	for rows.Next() {
		var st Story
		if err := rows.Scan(&st.ID, &st.HouseholdID, &st.Title, &st.Content, &st.NarratorID,
			&st.Era, &st.Location, &st.Tags, &st.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan story: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// StoryByID fetches a single story in scope.
func (s *Store) StoryByID(ctx context.Context, scope []uuid.UUID, id uuid.UUID) (*Story, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+storyColumns+` FROM stories s WHERE s.id = $1 AND s.household_id = ANY($2)`,
		id, scope)
	if err != nil {
		return nil, fmt.Errorf("query story: %w", err)
	}
	stories, err := collectStories(rows)
	if err != nil {
		return nil, err
	}
	if len(stories) == 0 {
		return nil, ErrNotFound
	}
	return &stories[0], nil
}

// StoriesByIDs returns stories in scope for the given IDs, keyed by ID.
func (s *Store) StoriesByIDs(ctx context.Context, scope []uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*Story, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]*Story{}, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+storyColumns+` FROM stories s WHERE s.id = ANY($1) AND s.household_id = ANY($2)`,
		ids, scope)
	if err != nil {
		return nil, fmt.Errorf("query stories by ids: %w", err)
	}
	stories, err := collectStories(rows)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]*Story, len(stories))
	for i := range stories {
		out[stories[i].ID] = &stories[i]
	}
	return out, nil
}

// StoriesMentioning returns stories in scope that mention the given person,
// newest first.
func (s *Store) StoriesMentioning(ctx context.Context, scope []uuid.UUID, personID uuid.UUID, limit int) ([]Story, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+storyColumns+`
		FROM stories s
		JOIN story_persons sp ON sp.story_id = s.id
		WHERE sp.person_id = $1 AND s.household_id = ANY($2)
		ORDER BY s.created_at DESC
		LIMIT $3`,
		personID, scope, limit)
	if err != nil {
		return nil, fmt.Errorf("query stories mentioning person: %w", err)
	}
	return collectStories(rows)
}

// FilterStories lists stories in scope matching the filter, newest first.
// Used when a story search has no free-text query to embed.
func (s *Store) FilterStories(ctx context.Context, scope []uuid.UUID, f StoryFilter) ([]Story, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}

	where := []string{"s.household_id = ANY($1)"}
	args := []any{scope}
	if f.PersonID != nil {
		args = append(args, *f.PersonID)
		where = append(where, fmt.Sprintf(`(s.narrator_id = $%d OR EXISTS (
			SELECT 1 FROM story_persons sp WHERE sp.story_id = s.id AND sp.person_id = $%d
		))`, len(args), len(args)))
	}
	if f.Era != "" {
		args = append(args, f.Era)
		where = append(where, fmt.Sprintf("s.era = $%d", len(args)))
	}
	if f.Tag != "" {
		args = append(args, f.Tag)
		where = append(where, fmt.Sprintf("$%d = ANY(s.tags)", len(args)))
	}
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM stories s
		WHERE %s
		ORDER BY s.created_at DESC
		LIMIT $%d`,
		storyColumns, strings.Join(where, " AND "), len(args)), args...)
	if err != nil {
		return nil, fmt.Errorf("filter stories: %w", err)
	}
	return collectStories(rows)
}

// StoryMentionsPerson reports whether the story mentions the person, either
// through an explicit mention link or as narrator.
func (s *Store) StoryMentionsPerson(ctx context.Context, storyID, personID uuid.UUID) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM story_persons WHERE story_id = $1 AND person_id = $2
			UNION ALL
			SELECT 1 FROM stories WHERE id = $1 AND narrator_id = $2
		)`, storyID, personID).Scan(&ok)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("check story mention: %w", err)
	}
	return ok, nil
}
