package family

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Timeline returns the chronological family timeline, oldest first.
// Year bounds are inclusive; zero pointers mean unbounded.
func (s *Store) Timeline(ctx context.Context, scope []uuid.UUID, yearFrom, yearTo *int, limit int) ([]TimelineEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	where := []string{"household_id = ANY($1)"}
	args := []any{scope}
	if yearFrom != nil {
		args = append(args, *yearFrom)
		where = append(where, fmt.Sprintf("event_year >= $%d", len(args)))
	}
	if yearTo != nil {
		args = append(args, *yearTo)
		where = append(where, fmt.Sprintf("event_year <= $%d", len(args)))
	}
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT event_year, sort_date, title, COALESCE(event_type, ''),
			COALESCE(location, ''), COALESCE(description, ''), people_involved
		FROM family_timeline
		WHERE %s
		ORDER BY sort_date
		LIMIT $%d`,
		strings.Join(where, " AND "), len(args)), args...)
	if err != nil {
		return nil, fmt.Errorf("query timeline: %w", err)
	}
	defer rows.Close()

	var out []TimelineEntry
	for rows.Next() {
		var e TimelineEntry
		var people []string
		if err := rows.Scan(&e.Year, &e.Date, &e.Title, &e.EventType,
			&e.Location, &e.Description, &people); err != nil {
			return nil, fmt.Errorf("scan timeline entry: %w", err)
		}
		e.PeopleInvolved = people
		out = append(out, e)
	}
	return out, rows.Err()
}

// OnThisDay returns birthdays, death anniversaries and event anniversaries
// in scope that fall on the given calendar day.
func (s *Store) OnThisDay(ctx context.Context, scope []uuid.UUID, day time.Time) ([]OnThisDayEntry, error) {
	month, dom := int(day.Month()), day.Day()

	rows, err := s.pool.Query(ctx, `
		SELECT 'birthday', 'Birthday of ' || first_name || ' ' || last_name, birth_year, id
		FROM persons
		WHERE household_id = ANY($1)
		  AND ((birth_month = $2 AND birth_day = $3)
		       OR (birth_date IS NOT NULL
		           AND EXTRACT(MONTH FROM birth_date) = $2
		           AND EXTRACT(DAY FROM birth_date) = $3))
		UNION ALL
		SELECT 'memorial', 'Remembering ' || first_name || ' ' || last_name,
			EXTRACT(YEAR FROM death_date)::int, id
		FROM persons
		WHERE household_id = ANY($1)
		  AND death_date IS NOT NULL
		  AND EXTRACT(MONTH FROM death_date) = $2
		  AND EXTRACT(DAY FROM death_date) = $3
		UNION ALL
		SELECT 'event', title, event_year, NULL
		FROM events
		WHERE household_id = ANY($1)
		  AND event_date IS NOT NULL
		  AND EXTRACT(MONTH FROM event_date) = $2
		  AND EXTRACT(DAY FROM event_date) = $3`,
		scope, month, dom)
	if err != nil {
		return nil, fmt.Errorf("query on-this-day: %w", err)
	}
	defer rows.Close()

	var out []OnThisDayEntry
	for rows.Next() {
		var e OnThisDayEntry
		if err := rows.Scan(&e.Kind, &e.Title, &e.Year, &e.PersonID); err != nil {
			return nil, fmt.Errorf("scan on-this-day entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
