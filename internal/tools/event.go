package tools

import (
	"context"
	"time"

	"github.com/aurami/origin/internal/family"
)

// AddEvent records an event and its person links, then indexes it.
func (h *Handler) AddEvent(ctx context.Context, sc *Scope, in AddEventInput) Result {
	if in.Title == "" {
		return Soft(KindInvalidInput, "title is required")
	}
	eventDate, errRes := parseDate("event_date", in.EventDate)
	if errRes.IsErr() {
		return errRes
	}
	personIDs, errRes := parseUUIDs("person_ids", in.PersonIDs)
	if errRes.IsErr() {
		return errRes
	}
	if len(in.Roles) > len(personIDs) {
		return Soft(KindInvalidInput, "more roles than person_ids")
	}

	year := in.EventYear
	if year == nil && eventDate != nil {
		y := eventDate.Year()
		year = &y
	}

	event, err := h.store.CreateEvent(ctx, sc.HouseholdID, family.EventInput{
		Title:       in.Title,
		EventType:   in.EventType,
		EventDate:   eventDate,
		EventYear:   year,
		Location:    in.Location,
		Description: in.Description,
		PersonIDs:   personIDs,
		Roles:       in.Roles,
		CreatedBy:   sc.UserID,
	})
	if err != nil {
		h.logger.Error("create event", "error", err)
		return Soft(KindPersistence, "could not create event")
	}

	if err := h.indexer.IndexEvent(ctx, event); err != nil {
		h.logger.Warn("index new event", "event_id", event.ID, "error", err)
	}
	return Ok(event)
}

// GetEvents lists events matching the given filters.
func (h *Handler) GetEvents(ctx context.Context, sc *Scope, in GetEventsInput) Result {
	filter := family.EventFilter{
		EventType: in.EventType,
		YearFrom:  in.YearFrom,
		YearTo:    in.YearTo,
		Keyword:   in.Keyword,
		Limit:     in.Limit,
	}
	if in.PersonID != "" {
		id, errRes := parseUUID("person_id", in.PersonID)
		if errRes.IsErr() {
			return errRes
		}
		filter.PersonID = &id
	}

	events, err := h.store.ListEvents(ctx, sc.IDs, filter)
	if err != nil {
		h.logger.Error("list events", "error", err)
		return Soft(KindPersistence, "could not list events")
	}
	return Ok(map[string]any{"events": events, "count": len(events)})
}

// GetTimeline returns the chronological family timeline.
func (h *Handler) GetTimeline(ctx context.Context, sc *Scope, in GetTimelineInput) Result {
	entries, err := h.store.Timeline(ctx, sc.IDs, in.YearFrom, in.YearTo, 0)
	if err != nil {
		h.logger.Error("load timeline", "error", err)
		return Soft(KindPersistence, "could not load the timeline")
	}
	return Ok(map[string]any{"timeline": entries, "count": len(entries)})
}

// GetTodayHistory returns anniversaries falling on today's date.
func (h *Handler) GetTodayHistory(ctx context.Context, sc *Scope, _ GetTodayHistoryInput) Result {
	now := time.Now()
	entries, err := h.store.OnThisDay(ctx, sc.IDs, now)
	if err != nil {
		h.logger.Error("load on-this-day entries", "error", err)
		return Soft(KindPersistence, "could not look up today in history")
	}
	return Ok(map[string]any{
		"date":    now.Format("January 2"),
		"entries": entries,
		"count":   len(entries),
	})
}
