package tools

import (
	"context"

	"github.com/aurami/origin/internal/family"
)

// SearchPhotos queries photo metadata by person, event, tag, year or keyword.
func (h *Handler) SearchPhotos(ctx context.Context, sc *Scope, in SearchPhotosInput) Result {
	filter := family.AssetFilter{
		Tag:     in.Tag,
		Year:    in.Year,
		Keyword: in.Keyword,
		Limit:   in.Limit,
	}
	if in.PersonID != "" {
		id, errRes := parseUUID("person_id", in.PersonID)
		if errRes.IsErr() {
			return errRes
		}
		filter.PersonID = &id
	}
	if in.EventID != "" {
		id, errRes := parseUUID("event_id", in.EventID)
		if errRes.IsErr() {
			return errRes
		}
		filter.EventID = &id
	}

	photos, err := h.store.SearchAssets(ctx, sc.IDs, filter)
	if err != nil {
		h.logger.Error("search photos", "error", err)
		return Soft(KindPersistence, "could not search photos")
	}
	return Ok(map[string]any{"photos": photos, "count": len(photos)})
}
