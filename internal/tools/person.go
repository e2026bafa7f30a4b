package tools

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/aurami/origin/internal/family"
)

// RelationSummary is one edge of a person as seen from that person.
type RelationSummary struct {
	RelationType  string `json:"relationType"`
	RelationLabel string `json:"relationLabel,omitempty"`
	PersonID      string `json:"personId"`
	PersonName    string `json:"personName"`
}

// PersonDetail is the full get_person view.
type PersonDetail struct {
	Person        *family.Person    `json:"person"`
	Relationships []RelationSummary `json:"relationships"`
	Events        []family.Event    `json:"events"`
	Stories       []family.Story    `json:"stories"`
	Photos        []family.Asset    `json:"photos"`
}

// GetPerson looks a person up by ID or by name. A name that matches several
// relatives returns all of them instead of picking one arbitrarily.
func (h *Handler) GetPerson(ctx context.Context, sc *Scope, in GetPersonInput) Result {
	switch {
	case in.PersonID != "":
		id, errRes := parseUUID("person_id", in.PersonID)
		if errRes.IsErr() {
			return errRes
		}
		return h.personDetail(ctx, sc, id)

	case in.Name != "":
		matches, err := h.store.FindPersonsByName(ctx, sc.IDs, in.Name)
		if err != nil {
			h.logger.Error("find persons by name", "error", err)
			return Soft(KindPersistence, "could not look up %q", in.Name)
		}
		switch len(matches) {
		case 0:
			return Soft(KindNotFound, "no person found matching %q", in.Name)
		case 1:
			return h.personDetail(ctx, sc, matches[0].ID)
		default:
			return Ok(map[string]any{"multiple": true, "matches": matches})
		}

	default:
		return Soft(KindInvalidInput, "either person_id or name is required")
	}
}

func (h *Handler) personDetail(ctx context.Context, sc *Scope, id uuid.UUID) Result {
	person, err := h.store.GetPerson(ctx, sc.IDs, id)
	if errors.Is(err, family.ErrNotFound) {
		return Soft(KindNotFound, "person %s not found", id)
	}
	if err != nil {
		h.logger.Error("get person", "person_id", id, "error", err)
		return Soft(KindPersistence, "could not load person %s", id)
	}

	detail := PersonDetail{Person: person}
	var rels []family.Relationship

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rels, err = h.store.RelationshipsOf(gctx, sc.IDs, id)
		return err
	})
	g.Go(func() error {
		var err error
		detail.Events, err = h.store.ListEvents(gctx, sc.IDs, family.EventFilter{PersonID: &id})
		return err
	})
	g.Go(func() error {
		var err error
		detail.Stories, err = h.store.StoriesMentioning(gctx, sc.IDs, id, 10)
		return err
	})
	g.Go(func() error {
		var err error
		detail.Photos, err = h.store.SearchAssets(gctx, sc.IDs, family.AssetFilter{PersonID: &id})
		return err
	})
	if err := g.Wait(); err != nil {
		h.logger.Error("load person detail", "person_id", id, "error", err)
		return Soft(KindPersistence, "could not load details for person %s", id)
	}

	summaries, err := h.relationSummaries(ctx, sc, id, rels)
	if err != nil {
		h.logger.Error("summarize relationships", "person_id", id, "error", err)
		return Soft(KindPersistence, "could not load relationships for person %s", id)
	}
	detail.Relationships = summaries
	return Ok(detail)
}

// relationSummaries resolves the far end of each edge to a name and states
// the relation from the subject's point of view.
func (h *Handler) relationSummaries(ctx context.Context, sc *Scope, subject uuid.UUID, rels []family.Relationship) ([]RelationSummary, error) {
	otherIDs := make([]uuid.UUID, 0, len(rels))
	for _, r := range rels {
		if r.FromPersonID == subject {
			otherIDs = append(otherIDs, r.ToPersonID)
		} else {
			otherIDs = append(otherIDs, r.FromPersonID)
		}
	}
	others, err := h.store.PersonsByIDs(ctx, sc.IDs, otherIDs)
	if err != nil {
		return nil, err
	}

	out := make([]RelationSummary, 0, len(rels))
	for _, r := range rels {
		// RelationType states what the other person is to the subject.
		// A stored parent edge runs parent->child, so from the parent's
		// side the other person is a child, from the child's side a parent.
		otherID := r.ToPersonID
		relType := r.RelationType
		if r.FromPersonID == subject {
			if relType == family.RelationParent {
				relType = family.RelationChild
			}
		} else {
			otherID = r.FromPersonID
		}
		other, ok := others[otherID]
		if !ok {
			continue
		}
		out = append(out, RelationSummary{
			RelationType:  relType,
			RelationLabel: r.RelationLabel,
			PersonID:      otherID.String(),
			PersonName:    other.FullName(),
		})
	}
	return out, nil
}

// AddPerson creates a person and indexes them for retrieval.
func (h *Handler) AddPerson(ctx context.Context, sc *Scope, in AddPersonInput) Result {
	if in.FirstName == "" || in.LastName == "" {
		return Soft(KindInvalidInput, "first_name and last_name are required")
	}

	birthDate, errRes := parseDate("birth_date", in.BirthDate)
	if errRes.IsErr() {
		return errRes
	}
	deathDate, errRes := parseDate("death_date", in.DeathDate)
	if errRes.IsErr() {
		return errRes
	}

	input := family.PersonInput{
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		MiddleName: in.MiddleName,
		Nickname:   in.Nickname,
		Sex:        in.Sex,
		BirthYear:  in.BirthYear,
		BirthMonth: in.BirthMonth,
		BirthDay:   in.BirthDay,
		BirthDate:  birthDate,
		BirthCity:  in.BirthCity,
		BirthPlace: in.BirthPlace,
		DeathDate:  deathDate,
		Notes:      in.Notes,
		CreatedBy:  sc.UserID,
	}
	if in.BirthCountryCode != "" {
		countryID, err := h.store.CountryIDByCode(ctx, in.BirthCountryCode)
		if err == nil {
			input.BirthCountryID = &countryID
		} else if !errors.Is(err, family.ErrNotFound) {
			h.logger.Error("resolve country code", "code", in.BirthCountryCode, "error", err)
		}
	}

	person, err := h.store.CreatePerson(ctx, sc.HouseholdID, input)
	if err != nil {
		h.logger.Error("create person", "error", err)
		return Soft(KindPersistence, "could not create person")
	}

	if err := h.indexer.IndexPerson(ctx, person); err != nil {
		// The person exists; name fallback still finds them while the
		// semantic index catches up on the next update.
		h.logger.Warn("index new person", "person_id", person.ID, "error", err)
	}
	return Ok(person)
}

// UpdatePerson applies a partial update and reindexes the person.
func (h *Handler) UpdatePerson(ctx context.Context, sc *Scope, in UpdatePersonInput) Result {
	if in.PersonID == "" {
		return Soft(KindInvalidInput, "person_id is required")
	}
	id, errRes := parseUUID("person_id", in.PersonID)
	if errRes.IsErr() {
		return errRes
	}

	upd := family.PersonUpdate{
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		MiddleName: in.MiddleName,
		Nickname:   in.Nickname,
		Sex:        in.Sex,
		BirthYear:  in.BirthYear,
		BirthMonth: in.BirthMonth,
		BirthDay:   in.BirthDay,
		BirthCity:  in.BirthCity,
		BirthPlace: in.BirthPlace,
		Notes:      in.Notes,
	}
	if in.BirthDate != nil {
		d, errRes := parseDate("birth_date", *in.BirthDate)
		if errRes.IsErr() {
			return errRes
		}
		upd.BirthDate = d
	}
	if in.DeathDate != nil {
		d, errRes := parseDate("death_date", *in.DeathDate)
		if errRes.IsErr() {
			return errRes
		}
		upd.DeathDate = d
	}
	if in.BirthCountryCode != nil {
		countryID, err := h.store.CountryIDByCode(ctx, *in.BirthCountryCode)
		if err != nil {
			if errors.Is(err, family.ErrNotFound) {
				return Soft(KindInvalidInput, "unknown country code %q", *in.BirthCountryCode)
			}
			h.logger.Error("resolve country code", "code", *in.BirthCountryCode, "error", err)
			return Soft(KindPersistence, "could not resolve country code")
		}
		upd.BirthCountryID = &countryID
	}

	person, err := h.store.UpdatePerson(ctx, sc.HouseholdID, id, upd)
	switch {
	case errors.Is(err, family.ErrEmptyUpdate):
		return Soft(KindInvalidInput, "no updatable fields provided")
	case errors.Is(err, family.ErrNotFound):
		return Soft(KindNotFound, "person %s not found", id)
	case err != nil:
		h.logger.Error("update person", "person_id", id, "error", err)
		return Soft(KindPersistence, "could not update person %s", id)
	}

	if err := h.indexer.IndexPerson(ctx, person); err != nil {
		h.logger.Warn("reindex updated person", "person_id", person.ID, "error", err)
	}
	return Ok(person)
}
