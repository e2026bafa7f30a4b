package tools

import (
	"context"

	"github.com/google/uuid"

	"github.com/aurami/origin/internal/family"
	"github.com/aurami/origin/internal/index"
	"github.com/aurami/origin/internal/search"
)

// SearchFamily searches the whole knowledge base: semantic phase over the
// derived chunks, deterministic name fallback when that comes up empty.
func (h *Handler) SearchFamily(ctx context.Context, sc *Scope, in SearchFamilyInput) Result {
	if in.Query == "" {
		return Soft(KindInvalidInput, "query is required")
	}

	res, err := h.engine.Search(ctx, sc.HouseholdID, in.Query, search.Options{
		Limit:     in.Limit,
		Threshold: search.ThresholdGeneral,
	})
	if err != nil {
		h.logger.Error("search family", "error", err)
		return Soft(KindPersistence, "search failed")
	}
	return Ok(res)
}

// SearchStories finds stories semantically when a query is given, otherwise
// lists them by the deterministic filters. Person, era and tag filters apply
// in both modes.
func (h *Handler) SearchStories(ctx context.Context, sc *Scope, in SearchStoriesInput) Result {
	var personID *uuid.UUID
	if in.PersonID != "" {
		id, errRes := parseUUID("person_id", in.PersonID)
		if errRes.IsErr() {
			return errRes
		}
		personID = &id
	}
	limit := in.Limit
	if limit <= 0 {
		limit = 10
	}

	if in.Query == "" {
		return h.filteredStories(ctx, sc, personID, in.Era, in.Tag, limit)
	}

	res, err := h.engine.Search(ctx, sc.HouseholdID, in.Query, search.Options{
		Limit:     limit,
		Threshold: search.ThresholdStories,
		DocType:   index.DocTypeStory,
	})
	if err != nil {
		h.logger.Error("search stories", "error", err)
		return Soft(KindPersistence, "story search failed")
	}
	if len(res.Chunks) == 0 {
		// Nothing cleared the similarity bar; the filtered list is still a
		// useful answer.
		return h.filteredStories(ctx, sc, personID, in.Era, in.Tag, limit)
	}

	storyIDs := make([]uuid.UUID, 0, len(res.Chunks))
	similarity := make(map[uuid.UUID]float64, len(res.Chunks))
	for _, c := range res.Chunks {
		storyIDs = append(storyIDs, c.SourceID)
		similarity[c.SourceID] = c.Similarity
	}
	byID, err := h.store.StoriesByIDs(ctx, sc.IDs, storyIDs)
	if err != nil {
		h.logger.Error("load matched stories", "error", err)
		return Soft(KindPersistence, "could not load matched stories")
	}

	type scoredStory struct {
		*family.Story
		Similarity float64 `json:"similarity"`
	}
	matches := make([]scoredStory, 0, len(storyIDs))
	for _, id := range storyIDs {
		st, ok := byID[id]
		if !ok {
			continue
		}
		if !h.storyMatchesFilters(ctx, st, personID, in.Era, in.Tag) {
			continue
		}
		matches = append(matches, scoredStory{Story: st, Similarity: similarity[id]})
	}
	return Ok(map[string]any{"stories": matches, "count": len(matches), "source": res.Source})
}

// filteredStories lists stories by the deterministic filters alone. It is
// both the no-query path and the fallback when semantic search comes up
// empty.
func (h *Handler) filteredStories(ctx context.Context, sc *Scope, personID *uuid.UUID, era, tag string, limit int) Result {
	stories, err := h.store.FilterStories(ctx, sc.IDs, family.StoryFilter{
		PersonID: personID,
		Era:      era,
		Tag:      tag,
		Limit:    limit,
	})
	if err != nil {
		h.logger.Error("filter stories", "error", err)
		return Soft(KindPersistence, "could not list stories")
	}
	return Ok(map[string]any{"stories": stories, "count": len(stories)})
}

func (h *Handler) storyMatchesFilters(ctx context.Context, st *family.Story, personID *uuid.UUID, era, tag string) bool {
	if era != "" && st.Era != era {
		return false
	}
	if tag != "" {
		found := false
		for _, t := range st.Tags {
			if t == tag {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if personID != nil {
		ok, err := h.store.StoryMentionsPerson(ctx, st.ID, *personID)
		if err != nil {
			h.logger.Warn("check story mention", "story_id", st.ID, "error", err)
			return false
		}
		return ok
	}
	return true
}
