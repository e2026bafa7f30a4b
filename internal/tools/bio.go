package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/aurami/origin/internal/family"
)

const bioSystemPrompt = "You are a skilled biographer writing warm, factual " +
	"family biographies. Write in flowing prose, stay strictly within the " +
	"facts provided, and say so plainly when little is known."

// GenerateBio gathers everything known about a person and asks the model to
// write a narrative biography from it.
func (h *Handler) GenerateBio(ctx context.Context, sc *Scope, in GenerateBioInput) Result {
	if in.PersonID == "" {
		return Soft(KindInvalidInput, "person_id is required")
	}
	id, errRes := parseUUID("person_id", in.PersonID)
	if errRes.IsErr() {
		return errRes
	}
	if h.writer == nil {
		return Soft(KindUpstream, "biography generation is not available")
	}

	person, err := h.store.GetPerson(ctx, sc.IDs, id)
	if errors.Is(err, family.ErrNotFound) {
		return Soft(KindNotFound, "person %s not found", id)
	}
	if err != nil {
		h.logger.Error("get person for bio", "person_id", id, "error", err)
		return Soft(KindPersistence, "could not load person %s", id)
	}

	var (
		rels    []family.Relationship
		events  []family.Event
		stories []family.Story
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rels, err = h.store.RelationshipsOf(gctx, sc.IDs, id)
		return err
	})
	g.Go(func() error {
		var err error
		events, err = h.store.ListEvents(gctx, sc.IDs, family.EventFilter{PersonID: &id, Limit: 50})
		return err
	})
	g.Go(func() error {
		var err error
		stories, err = h.store.StoriesMentioning(gctx, sc.IDs, id, 20)
		return err
	})
	if err := g.Wait(); err != nil {
		h.logger.Error("gather bio material", "person_id", id, "error", err)
		return Soft(KindPersistence, "could not gather material for the biography")
	}

	summaries, err := h.relationSummaries(ctx, sc, id, rels)
	if err != nil {
		h.logger.Error("summarize relationships for bio", "person_id", id, "error", err)
		return Soft(KindPersistence, "could not gather material for the biography")
	}

	prompt := bioPrompt(person, summaries, events, stories)
	bio, err := h.writer.GenerateText(ctx, bioSystemPrompt, prompt)
	if err != nil {
		h.logger.Error("generate bio text", "person_id", id, "error", err)
		return Soft(KindUpstream, "the biography could not be generated right now")
	}

	return Ok(map[string]any{
		"person_id": person.ID,
		"name":      person.FullName(),
		"biography": bio,
	})
}

// bioPrompt flattens everything known about the person into the model prompt.
func bioPrompt(p *family.Person, rels []RelationSummary, events []family.Event, stories []family.Story) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a narrative biography (around 300 words) of %s.\n\n", p.FullName())

	b.WriteString("Facts:\n")
	if p.Nickname != "" {
		fmt.Fprintf(&b, "- Known as %s\n", p.Nickname)
	}
	if p.BirthYear != nil {
		fmt.Fprintf(&b, "- Born %d", *p.BirthYear)
		if place := p.BirthCity; place != "" {
			fmt.Fprintf(&b, " in %s", place)
		} else if p.BirthPlace != "" {
			fmt.Fprintf(&b, " in %s", p.BirthPlace)
		}
		b.WriteString("\n")
	}
	if p.DeathDate != nil {
		fmt.Fprintf(&b, "- Died %s\n", p.DeathDate.Format("2006-01-02"))
	}
	if p.Notes != "" {
		fmt.Fprintf(&b, "- Notes: %s\n", p.Notes)
	}

	if len(rels) > 0 {
		b.WriteString("\nFamily:\n")
		for _, r := range rels {
			label := r.RelationType
			if r.RelationLabel != "" {
				label = fmt.Sprintf("%s (%s)", r.RelationType, r.RelationLabel)
			}
			fmt.Fprintf(&b, "- %s: %s\n", label, r.PersonName)
		}
	}

	if len(events) > 0 {
		b.WriteString("\nLife events:\n")
		for _, e := range events {
			fmt.Fprintf(&b, "- %s", e.Title)
			if e.EventYear != nil {
				fmt.Fprintf(&b, " (%d)", *e.EventYear)
			}
			if e.Location != "" {
				fmt.Fprintf(&b, ", %s", e.Location)
			}
			b.WriteString("\n")
		}
	}

	if len(stories) > 0 {
		b.WriteString("\nStories told about them:\n")
		for _, st := range stories {
			fmt.Fprintf(&b, "- %s: %s\n", st.Title, st.Content)
		}
	}

	return b.String()
}
