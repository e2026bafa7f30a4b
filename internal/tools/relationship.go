package tools

import (
	"context"
	"errors"

	"github.com/aurami/origin/internal/family"
)

// AddRelationship links two persons with a typed edge.
func (h *Handler) AddRelationship(ctx context.Context, sc *Scope, in AddRelationshipInput) Result {
	if in.FromPersonID == "" || in.ToPersonID == "" || in.RelationType == "" {
		return Soft(KindInvalidInput, "from_person_id, to_person_id and relation_type are required")
	}
	fromID, errRes := parseUUID("from_person_id", in.FromPersonID)
	if errRes.IsErr() {
		return errRes
	}
	toID, errRes := parseUUID("to_person_id", in.ToPersonID)
	if errRes.IsErr() {
		return errRes
	}
	if fromID == toID {
		return Soft(KindInvalidInput, "cannot relate a person to themselves")
	}
	startDate, errRes := parseDate("start_date", in.StartDate)
	if errRes.IsErr() {
		return errRes
	}

	rel, err := h.store.CreateRelationship(ctx, sc.HouseholdID, sc.IDs, family.RelationshipInput{
		FromPersonID:  fromID,
		ToPersonID:    toID,
		RelationType:  in.RelationType,
		RelationLabel: in.RelationLabel,
		StartDate:     startDate,
	})
	switch {
	case errors.Is(err, family.ErrInvalidRelation):
		return Soft(KindInvalidInput, "invalid relation_type %q", in.RelationType)
	case errors.Is(err, family.ErrPersonOutOfScope):
		return Soft(KindNotFound, "one or both persons not found in this household")
	case err != nil:
		h.logger.Error("create relationship", "error", err)
		return Soft(KindPersistence, "could not create relationship")
	}
	return Ok(rel)
}

// GetFamilyTree builds a bounded tree around a person. The whole graph in
// scope is loaded once; traversal itself never touches the database.
func (h *Handler) GetFamilyTree(ctx context.Context, sc *Scope, in GetFamilyTreeInput) Result {
	if in.PersonID == "" {
		return Soft(KindInvalidInput, "person_id is required")
	}
	id, errRes := parseUUID("person_id", in.PersonID)
	if errRes.IsErr() {
		return errRes
	}

	direction := in.Direction
	if direction == "" {
		direction = family.DirectionBoth
	}

	persons, edges, err := h.store.TreeSnapshot(ctx, sc.IDs)
	if err != nil {
		h.logger.Error("load tree snapshot", "error", err)
		return Soft(KindPersistence, "could not load the family graph")
	}

	root, err := family.BuildTree(id, persons, edges, direction, in.Depth)
	switch {
	case errors.Is(err, family.ErrRootNotFound):
		return Soft(KindNotFound, "person %s not found", id)
	case err != nil:
		return Soft(KindInvalidInput, "%s", err)
	}

	return Ok(map[string]any{
		"tree":      root,
		"direction": direction,
		"persons":   family.CountNodes(root),
	})
}
