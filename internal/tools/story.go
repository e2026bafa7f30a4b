package tools

import (
	"context"

	"github.com/aurami/origin/internal/family"
)

// AddStory records a story and its person mentions, then indexes it.
func (h *Handler) AddStory(ctx context.Context, sc *Scope, in AddStoryInput) Result {
	if in.Title == "" || in.Content == "" {
		return Soft(KindInvalidInput, "title and content are required")
	}
	personIDs, errRes := parseUUIDs("person_ids", in.PersonIDs)
	if errRes.IsErr() {
		return errRes
	}

	input := family.StoryInput{
		Title:     in.Title,
		Content:   in.Content,
		Era:       in.Era,
		Location:  in.Location,
		Tags:      in.Tags,
		PersonIDs: personIDs,
		CreatedBy: sc.UserID,
	}
	if in.NarratorID != "" {
		narratorID, errRes := parseUUID("narrator_id", in.NarratorID)
		if errRes.IsErr() {
			return errRes
		}
		input.NarratorID = &narratorID
	}

	story, err := h.store.CreateStory(ctx, sc.HouseholdID, input)
	if err != nil {
		h.logger.Error("create story", "error", err)
		return Soft(KindPersistence, "could not create story")
	}

	if err := h.indexer.IndexStory(ctx, story); err != nil {
		h.logger.Warn("index new story", "story_id", story.ID, "error", err)
	}
	return Ok(story)
}
