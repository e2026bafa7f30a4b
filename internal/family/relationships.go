package family

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

var relationTypes = []string{RelationParent, RelationChild, RelationSpouse, RelationSibling}

// RelationshipInput carries the writable fields for creating a relationship.
type RelationshipInput struct {
	FromPersonID  uuid.UUID
	ToPersonID    uuid.UUID
	RelationType  string
	RelationLabel string
	StartDate     *time.Time
}

// CreateRelationship inserts a directed edge between two persons. Both ends
// must exist within the household scope; a "child" edge is stored as the
// inverse "parent" edge so traversal only ever follows one edge kind.
func (s *Store) CreateRelationship(ctx context.Context, householdID uuid.UUID, scope []uuid.UUID, in RelationshipInput) (*Relationship, error) {
	fromID, toID, relType := in.FromPersonID, in.ToPersonID, in.RelationType
	if !slices.Contains(relationTypes, relType) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRelation, relType)
	}

	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM persons WHERE id = ANY($1) AND household_id = ANY($2)`,
		[]uuid.UUID{fromID, toID}, scope).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("verify relationship ends: %w", err)
	}
	if count != 2 {
		return nil, ErrPersonOutOfScope
	}

	// Normalize: "A is child of B" becomes "B is parent of A".
	if relType == RelationChild {
		fromID, toID = toID, fromID
		relType = RelationParent
	}

	var r Relationship
	err = s.pool.QueryRow(ctx, `
		INSERT INTO relationships (household_id, from_person_id, to_person_id,
			relation_type, relation_label, start_date)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
		RETURNING id, household_id, from_person_id, to_person_id, relation_type,
			COALESCE(relation_label, ''), created_at`,
		householdID, fromID, toID, relType, in.RelationLabel, in.StartDate).
		Scan(&r.ID, &r.HouseholdID, &r.FromPersonID, &r.ToPersonID,
			&r.RelationType, &r.RelationLabel, &r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert relationship: %w", err)
	}
	s.logger.Debug("relationship created",
		"relationship_id", r.ID, "type", r.RelationType)
	return &r, nil
}

// RelationshipsOf returns every edge touching the given person, in either
// direction, within scope.
func (s *Store) RelationshipsOf(ctx context.Context, scope []uuid.UUID, personID uuid.UUID) ([]Relationship, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, household_id, from_person_id, to_person_id, relation_type,
			COALESCE(relation_label, ''), created_at
		FROM relationships
		WHERE (from_person_id = $1 OR to_person_id = $1) AND household_id = ANY($2)
		ORDER BY created_at`,
		personID, scope)
	if err != nil {
		return nil, fmt.Errorf("query relationships: %w", err)
	}
	defer rows.Close()

	var out []Relationship
	for rows.Next() {
		var r Relationship
		if err := rows.Scan(&r.ID, &r.HouseholdID, &r.FromPersonID, &r.ToPersonID,
			&r.RelationType, &r.RelationLabel, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan relationship: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ParentEdges loads every parent edge in scope. The from side is the parent,
// the to side the child.
func (s *Store) ParentEdges(ctx context.Context, scope []uuid.UUID) ([]ParentEdge, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT from_person_id, to_person_id
		FROM relationships
		WHERE relation_type = $1 AND household_id = ANY($2)`,
		RelationParent, scope)
	if err != nil {
		return nil, fmt.Errorf("query parent edges: %w", err)
	}
	defer rows.Close()

	var out []ParentEdge
	for rows.Next() {
		var e ParentEdge
		if err := rows.Scan(&e.ParentID, &e.ChildID); err != nil {
			return nil, fmt.Errorf("scan parent edge: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// TreeSnapshot loads every person and parent edge in scope so BuildTree can
// run without further I/O.
func (s *Store) TreeSnapshot(ctx context.Context, scope []uuid.UUID) (map[uuid.UUID]*Person, []ParentEdge, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+personColumns+` FROM persons WHERE household_id = ANY($1)`, scope)
	if err != nil {
		return nil, nil, fmt.Errorf("query scope persons: %w", err)
	}
	persons, err := collectPersons(rows)
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[uuid.UUID]*Person, len(persons))
	for i := range persons {
		byID[persons[i].ID] = &persons[i]
	}

	edges, err := s.ParentEdges(ctx, scope)
	if err != nil {
		return nil, nil, err
	}
	return byID, edges, nil
}
