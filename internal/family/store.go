package family

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Sentinel errors returned by Store lookups.
var (
	ErrNotFound          = errors.New("family: not found")
	ErrEmptyUpdate       = errors.New("family: update contains no fields")
	ErrInvalidRelation   = errors.New("family: invalid relation type")
	ErrPersonOutOfScope  = errors.New("family: person not in household scope")
	ErrHouseholdNotFound = errors.New("family: household not found")
)

// Store persists the family domain in PostgreSQL. All reads are scoped to a
// household plus the households it is explicitly linked to; all writes go to
// the caller's own household.
//
// Store is safe for concurrent use.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewStore creates a Store backed by the given pool.
func NewStore(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, logger: logger}
}

// ScopeIDs returns the household itself plus every household linked to it.
func (s *Store) ScopeIDs(ctx context.Context, householdID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id FROM households WHERE id = $1
		UNION
		SELECT linked_household_id FROM household_links WHERE household_id = $1`,
		householdID)
	if err != nil {
		return nil, fmt.Errorf("query household scope: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("collect household scope: %w", err)
	}
	if len(ids) == 0 {
		return nil, ErrHouseholdNotFound
	}
	return ids, nil
}

// HouseholdName returns the display name of a household.
func (s *Store) HouseholdName(ctx context.Context, householdID uuid.UUID) (string, error) {
	var name string
	err := s.pool.QueryRow(ctx,
		`SELECT name FROM households WHERE id = $1`, householdID).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrHouseholdNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query household name: %w", err)
	}
	return name, nil
}

const personColumns = `
	id, household_id, first_name, last_name,
	COALESCE(middle_name, ''), COALESCE(nickname, ''), COALESCE(sex, ''),
	birth_year, birth_month, birth_day, birth_date,
	COALESCE(birth_city, ''), COALESCE(birth_place, ''),
	death_date, COALESCE(notes, ''), created_at, updated_at`

func scanPerson(row pgx.Row) (*Person, error) {
	var p Person
	err := row.Scan(
		&p.ID, &p.HouseholdID, &p.FirstName, &p.LastName,
		&p.MiddleName, &p.Nickname, &p.Sex,
		&p.BirthYear, &p.BirthMonth, &p.BirthDay, &p.BirthDate,
		&p.BirthCity, &p.BirthPlace,
		&p.DeathDate, &p.Notes, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectPersons(rows pgx.Rows) ([]Person, error) {
	defer rows.Close()
	var out []Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// CreatePerson inserts a new person into the household.
func (s *Store) CreatePerson(ctx context.Context, householdID uuid.UUID, in PersonInput) (*Person, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO persons (
			household_id, first_name, last_name, middle_name, nickname, sex,
			birth_year, birth_month, birth_day, birth_date, birth_city,
			birth_place, birth_country_id, death_date, notes, created_by
		) VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''),
			$7, $8, $9, $10, NULLIF($11, ''), NULLIF($12, ''), $13, $14,
			NULLIF($15, ''), $16)
		RETURNING `+personColumns,
		householdID, in.FirstName, in.LastName, in.MiddleName, in.Nickname, in.Sex,
		in.BirthYear, in.BirthMonth, in.BirthDay, in.BirthDate, in.BirthCity,
		in.BirthPlace, in.BirthCountryID, in.DeathDate,
		in.Notes, uuidOrNil(in.CreatedBy))
	p, err := scanPerson(row)
	if err != nil {
		return nil, fmt.Errorf("insert person: %w", err)
	}
	s.logger.Debug("person created", "person_id", p.ID, "household_id", householdID)
	return p, nil
}

// GetPerson fetches a person by ID within the household scope.
func (s *Store) GetPerson(ctx context.Context, scope []uuid.UUID, id uuid.UUID) (*Person, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+personColumns+` FROM persons WHERE id = $1 AND household_id = ANY($2)`,
		id, scope)
	p, err := scanPerson(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query person: %w", err)
	}
	return p, nil
}

// FindPersonsByName matches persons whose first name, last name, nickname or
// full name matches the given name, case-insensitively. Used for lookups by
// name where several relatives may share it; callers surface all matches.
func (s *Store) FindPersonsByName(ctx context.Context, scope []uuid.UUID, name string) ([]Person, error) {
	name = strings.TrimSpace(name)
	rows, err := s.pool.Query(ctx, `
		SELECT `+personColumns+`
		FROM persons
		WHERE household_id = ANY($1)
		  AND (first_name ILIKE $2 OR last_name ILIKE $2 OR nickname ILIKE $2
		       OR first_name || ' ' || last_name ILIKE $2)
		ORDER BY last_name, first_name`,
		scope, name)
	if err != nil {
		return nil, fmt.Errorf("query persons by name: %w", err)
	}
	return collectPersons(rows)
}

// SearchPersonsFallback is the deterministic substring search used when no
// semantic index is available. It only covers the caller's own household.
func (s *Store) SearchPersonsFallback(ctx context.Context, householdID uuid.UUID, term string, limit int) ([]Person, error) {
	if limit <= 0 {
		limit = 10
	}
	pattern := "%" + strings.TrimSpace(term) + "%"
	rows, err := s.pool.Query(ctx, `
		SELECT `+personColumns+`
		FROM persons
		WHERE household_id = $1
		  AND (first_name ILIKE $2 OR last_name ILIKE $2 OR nickname ILIKE $2)
		ORDER BY last_name, first_name
		LIMIT $3`,
		householdID, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("fallback person search: %w", err)
	}
	return collectPersons(rows)
}

// PersonsByIDs returns the persons in scope for the given IDs, keyed by ID.
func (s *Store) PersonsByIDs(ctx context.Context, scope []uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*Person, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]*Person{}, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+personColumns+` FROM persons WHERE id = ANY($1) AND household_id = ANY($2)`,
		ids, scope)
	if err != nil {
		return nil, fmt.Errorf("query persons by ids: %w", err)
	}
	persons, err := collectPersons(rows)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]*Person, len(persons))
	for i := range persons {
		out[persons[i].ID] = &persons[i]
	}
	return out, nil
}

// UpdatePerson applies a typed field update under a row lock and returns the
// updated person. Only the person's own household may update it.
func (s *Store) UpdatePerson(ctx context.Context, householdID, id uuid.UUID, upd PersonUpdate) (*Person, error) {
	if upd.IsZero() {
		return nil, ErrEmptyUpdate
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin update: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var locked uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT id FROM persons WHERE id = $1 AND household_id = $2 FOR UPDATE`,
		id, householdID).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock person: %w", err)
	}

	set := make([]string, 0, 12)
	args := make([]any, 0, 13)
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if upd.FirstName != nil {
		add("first_name", *upd.FirstName)
	}
	if upd.LastName != nil {
		add("last_name", *upd.LastName)
	}
	if upd.MiddleName != nil {
		add("middle_name", nilIfEmpty(*upd.MiddleName))
	}
	if upd.Nickname != nil {
		add("nickname", nilIfEmpty(*upd.Nickname))
	}
	if upd.Sex != nil {
		add("sex", nilIfEmpty(*upd.Sex))
	}
	if upd.BirthYear != nil {
		add("birth_year", *upd.BirthYear)
	}
	if upd.BirthMonth != nil {
		add("birth_month", *upd.BirthMonth)
	}
	if upd.BirthDay != nil {
		add("birth_day", *upd.BirthDay)
	}
	if upd.BirthDate != nil {
		add("birth_date", *upd.BirthDate)
	}
	if upd.BirthCity != nil {
		add("birth_city", nilIfEmpty(*upd.BirthCity))
	}
	if upd.BirthPlace != nil {
		add("birth_place", nilIfEmpty(*upd.BirthPlace))
	}
	if upd.BirthCountryID != nil {
		add("birth_country_id", *upd.BirthCountryID)
	}
	if upd.DeathDate != nil {
		add("death_date", *upd.DeathDate)
	}
	if upd.Notes != nil {
		add("notes", nilIfEmpty(*upd.Notes))
	}
	set = append(set, "updated_at = now()")

	args = append(args, id)
	query := fmt.Sprintf("UPDATE persons SET %s WHERE id = $%d RETURNING %s",
		strings.Join(set, ", "), len(args), personColumns)

	p, err := scanPerson(tx.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("update person: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}
	s.logger.Debug("person updated", "person_id", id)
	return p, nil
}

// nilIfEmpty maps "" to SQL NULL for nullable text columns.
func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// CountryIDByCode resolves an ISO country code to its row ID,
// case-insensitively.
func (s *Store) CountryIDByCode(ctx context.Context, code string) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.pool.QueryRow(ctx,
		`SELECT id FROM countries WHERE upper(code) = upper($1)`,
		strings.TrimSpace(code)).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, ErrNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("query country code: %w", err)
	}
	return id, nil
}

// uuidOrNil maps the zero UUID to SQL NULL.
func uuidOrNil(id uuid.UUID) any {
	if id == uuid.Nil {
		return nil
	}
	return id
}
