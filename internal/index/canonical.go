// Package index keeps the derived document store in sync with the family
// entities it is built from. Every write to a person, story or event is
// followed by a reindex of that entity.
package index

import (
	"fmt"
	"strings"

	"github.com/aurami/origin/internal/family"
)

// Document types stored on the documents table.
const (
	DocTypePerson = "person"
	DocTypeStory  = "story"
	DocTypeEvent  = "event"
)

// PersonText renders the canonical embedding text for a person. The output
// is a pure function of the person's fields: identical input always produces
// identical text, which is what makes reindexing idempotent.
func PersonText(p *family.Person) string {
	parts := make([]string, 0, 5)
	parts = append(parts, p.FullName())
	if p.Nickname != "" {
		parts = append(parts, "also known as "+p.Nickname)
	}
	if p.BirthYear != nil {
		parts = append(parts, fmt.Sprintf("born %d", *p.BirthYear))
	}
	if p.BirthCity != "" {
		parts = append(parts, p.BirthCity)
	} else if p.BirthPlace != "" {
		parts = append(parts, p.BirthPlace)
	}
	if p.Notes != "" {
		parts = append(parts, p.Notes)
	}
	return strings.Join(parts, ". ")
}

// StoryText renders the canonical embedding text for a story.
func StoryText(st *family.Story) string {
	return st.Title + ". " + st.Content
}

// EventText renders the canonical embedding text for an event.
func EventText(e *family.Event) string {
	parts := make([]string, 0, 4)
	parts = append(parts, e.Title)
	if e.EventYear != nil {
		parts = append(parts, fmt.Sprintf("%d", *e.EventYear))
	}
	if e.Location != "" {
		parts = append(parts, e.Location)
	}
	if e.Description != "" {
		parts = append(parts, e.Description)
	}
	return strings.Join(parts, ". ")
}

// TokenCount is the rough chunk-size estimate stored alongside content:
// one token per four characters, rounded up.
func TokenCount(text string) int {
	return (len(text) + 3) / 4
}
