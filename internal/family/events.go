package family

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateEvent inserts an event together with its person links in one
// transaction. Either the whole event lands, links included, or nothing does.
func (s *Store) CreateEvent(ctx context.Context, householdID uuid.UUID, in EventInput) (*Event, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create event: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var e Event
	err = tx.QueryRow(ctx, `
		INSERT INTO events (household_id, title, event_type, event_date, event_year,
			location, description, created_by)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8)
		RETURNING id, household_id, title, COALESCE(event_type, ''), event_date,
			event_year, COALESCE(location, ''), COALESCE(description, ''), created_at`,
		householdID, in.Title, in.EventType, in.EventDate, in.EventYear,
		in.Location, in.Description, uuidOrNil(in.CreatedBy)).
		Scan(&e.ID, &e.HouseholdID, &e.Title, &e.EventType, &e.EventDate,
			&e.EventYear, &e.Location, &e.Description, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}

	for i, pid := range in.PersonIDs {
		var role any
		if i < len(in.Roles) && in.Roles[i] != "" {
			role = in.Roles[i]
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO event_links (household_id, event_id, person_id, role)
			VALUES ($1, $2, $3, $4)`,
			householdID, e.ID, pid, role); err != nil {
			return nil, fmt.Errorf("link event to person %s: %w", pid, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create event: %w", err)
	}
	e.PersonIDs = in.PersonIDs
	s.logger.Debug("event created", "event_id", e.ID, "links", len(in.PersonIDs))
	return &e, nil
}

// ListEvents returns events in scope matching the filter, most recent first.
func (s *Store) ListEvents(ctx context.Context, scope []uuid.UUID, f EventFilter) ([]Event, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}

	where := []string{"e.household_id = ANY($1)"}
	args := []any{scope}
	if f.PersonID != nil {
		args = append(args, *f.PersonID)
		where = append(where, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM event_links el WHERE el.event_id = e.id AND el.person_id = $%d)", len(args)))
	}
	if f.EventType != "" {
		args = append(args, f.EventType)
		where = append(where, fmt.Sprintf("e.event_type = $%d", len(args)))
	}
	if f.YearFrom != nil {
		args = append(args, *f.YearFrom)
		where = append(where, fmt.Sprintf("e.event_year >= $%d", len(args)))
	}
	if f.YearTo != nil {
		args = append(args, *f.YearTo)
		where = append(where, fmt.Sprintf("e.event_year <= $%d", len(args)))
	}
	if f.Keyword != "" {
		args = append(args, "%"+strings.TrimSpace(f.Keyword)+"%")
		where = append(where, fmt.Sprintf(
			"(e.title ILIKE $%d OR e.description ILIKE $%d)", len(args), len(args)))
	}
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT e.id, e.household_id, e.title, COALESCE(e.event_type, ''), e.event_date,
			e.event_year, COALESCE(e.location, ''), COALESCE(e.description, ''), e.created_at,
			COALESCE(array_agg(el.person_id) FILTER (WHERE el.person_id IS NOT NULL), '{}')
		FROM events e
		LEFT JOIN event_links el ON el.event_id = e.id
		WHERE %s
		GROUP BY e.id
		ORDER BY e.event_year DESC NULLS LAST, e.event_date DESC NULLS LAST
		LIMIT $%d`,
		strings.Join(where, " AND "), len(args)), args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.HouseholdID, &e.Title, &e.EventType, &e.EventDate,
			&e.EventYear, &e.Location, &e.Description, &e.CreatedAt, &e.PersonIDs); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// EventByID fetches a single event in scope.
func (s *Store) EventByID(ctx context.Context, scope []uuid.UUID, id uuid.UUID) (*Event, error) {
	var e Event
	err := s.pool.QueryRow(ctx, `
		SELECT e.id, e.household_id, e.title, COALESCE(e.event_type, ''), e.event_date,
			e.event_year, COALESCE(e.location, ''), COALESCE(e.description, ''), e.created_at,
			COALESCE(array_agg(el.person_id) FILTER (WHERE el.person_id IS NOT NULL), '{}')
		FROM events e
		LEFT JOIN event_links el ON el.event_id = e.id
		WHERE e.id = $1 AND e.household_id = ANY($2)
		GROUP BY e.id`,
		id, scope).
		Scan(&e.ID, &e.HouseholdID, &e.Title, &e.EventType, &e.EventDate,
			&e.EventYear, &e.Location, &e.Description, &e.CreatedAt, &e.PersonIDs)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query event: %w", err)
	}
	return &e, nil
}
