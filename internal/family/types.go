// Package family holds the genealogy domain: people, relationships, events,
// stories and photo metadata, all scoped to a household.
package family

import (
	"time"

	"github.com/google/uuid"
)

// Relationship types stored on the directed edge table.
const (
	RelationParent  = "parent"
	RelationChild   = "child"
	RelationSpouse  = "spouse"
	RelationSibling = "sibling"
)

// Person is one individual in a household's tree.
type Person struct {
	ID          uuid.UUID  `json:"id"`
	HouseholdID uuid.UUID  `json:"householdId"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	MiddleName  string     `json:"middleName,omitempty"`
	Nickname    string     `json:"nickname,omitempty"`
	Sex         string     `json:"sex,omitempty"`
	BirthYear   *int       `json:"birthYear,omitempty"`
	BirthMonth  *int       `json:"birthMonth,omitempty"`
	BirthDay    *int       `json:"birthDay,omitempty"`
	BirthDate   *time.Time `json:"birthDate,omitempty"`
	BirthCity   string     `json:"birthCity,omitempty"`
	BirthPlace  string     `json:"birthPlace,omitempty"`
	DeathDate   *time.Time `json:"deathDate,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// FullName returns "First Last".
func (p *Person) FullName() string {
	return p.FirstName + " " + p.LastName
}

// PersonInput carries the writable fields for creating a person.
type PersonInput struct {
	FirstName      string
	LastName       string
	MiddleName     string
	Nickname       string
	Sex            string
	BirthYear      *int
	BirthMonth     *int
	BirthDay       *int
	BirthDate      *time.Time
	BirthCity      string
	BirthPlace     string
	BirthCountryID *uuid.UUID
	DeathDate      *time.Time
	Notes          string
	CreatedBy      uuid.UUID
}

// PersonUpdate is the closed set of fields update_person may touch.
// Nil pointers leave the column unchanged; a pointer to the zero value
// clears it. Anything outside this struct cannot reach the row.
type PersonUpdate struct {
	FirstName      *string
	LastName       *string
	MiddleName     *string
	Nickname       *string
	Sex            *string
	BirthYear      *int
	BirthMonth     *int
	BirthDay       *int
	BirthDate      *time.Time
	BirthCity      *string
	BirthPlace     *string
	BirthCountryID *uuid.UUID
	DeathDate      *time.Time
	Notes          *string
}

// IsZero reports whether the update would change nothing.
func (u PersonUpdate) IsZero() bool {
	return u.FirstName == nil && u.LastName == nil && u.MiddleName == nil &&
		u.Nickname == nil && u.Sex == nil && u.BirthYear == nil &&
		u.BirthMonth == nil && u.BirthDay == nil && u.BirthDate == nil &&
		u.BirthCity == nil && u.BirthPlace == nil && u.BirthCountryID == nil &&
		u.DeathDate == nil && u.Notes == nil
}

// Relationship is a directed, typed edge between two persons.
type Relationship struct {
	ID            uuid.UUID `json:"id"`
	HouseholdID   uuid.UUID `json:"householdId"`
	FromPersonID  uuid.UUID `json:"fromPersonId"`
	ToPersonID    uuid.UUID `json:"toPersonId"`
	RelationType  string    `json:"relationType"`
	RelationLabel string    `json:"relationLabel,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Event is a dated family event, linked to zero or more persons.
type Event struct {
	ID          uuid.UUID  `json:"id"`
	HouseholdID uuid.UUID  `json:"householdId"`
	Title       string     `json:"title"`
	EventType   string     `json:"eventType,omitempty"`
	EventDate   *time.Time `json:"eventDate,omitempty"`
	EventYear   *int       `json:"eventYear,omitempty"`
	Location    string     `json:"location,omitempty"`
	Description string     `json:"description,omitempty"`
	PersonIDs   []uuid.UUID `json:"personIds,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// EventInput carries the writable fields for creating an event together
// with the person links written in the same transaction.
type EventInput struct {
	Title       string
	EventType   string
	EventDate   *time.Time
	EventYear   *int
	Location    string
	Description string
	PersonIDs   []uuid.UUID
	Roles       []string // aligned by index with PersonIDs, may be shorter
	CreatedBy   uuid.UUID
}

// Story is a narrated family memory.
type Story struct {
	ID          uuid.UUID   `json:"id"`
	HouseholdID uuid.UUID   `json:"householdId"`
	Title       string      `json:"title"`
	Content     string      `json:"content"`
	NarratorID  *uuid.UUID  `json:"narratorId,omitempty"`
	Era         string      `json:"era,omitempty"`
	Location    string      `json:"location,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
	PersonIDs   []uuid.UUID `json:"personIds,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// StoryInput carries the writable fields for creating a story together
// with the person mentions written in the same transaction.
type StoryInput struct {
	Title     string
	Content   string
	NarratorID *uuid.UUID
	Era       string
	Location  string
	Tags      []string
	PersonIDs []uuid.UUID
	CreatedBy uuid.UUID
}

// StoryFilter narrows a story listing. Zero values mean no constraint.
type StoryFilter struct {
	PersonID *uuid.UUID
	Era      string
	Tag      string
	Limit    int
}

// Asset is metadata for an externally stored photo, video or document.
type Asset struct {
	ID          uuid.UUID  `json:"id"`
	HouseholdID uuid.UUID  `json:"householdId"`
	AssetType   string     `json:"assetType"`
	StoragePath string     `json:"storagePath"`
	Description string     `json:"description,omitempty"`
	CapturedAt  *time.Time `json:"capturedAt,omitempty"`
	Year        *int       `json:"year,omitempty"`
	People      []string   `json:"people,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// AssetFilter narrows a photo search. Zero values mean no constraint.
type AssetFilter struct {
	PersonID *uuid.UUID
	EventID  *uuid.UUID
	Tag      string
	Year     *int
	Keyword  string
	Limit    int
}

// EventFilter narrows an event listing. Zero values mean no constraint.
type EventFilter struct {
	PersonID  *uuid.UUID
	EventType string
	YearFrom  *int
	YearTo    *int
	Keyword   string
	Limit     int
}

// TimelineEntry is one row of the chronological family timeline.
type TimelineEntry struct {
	Year           *int       `json:"year,omitempty"`
	Date           *time.Time `json:"date,omitempty"`
	Title          string     `json:"title"`
	EventType      string     `json:"eventType,omitempty"`
	Location       string     `json:"location,omitempty"`
	Description    string     `json:"description,omitempty"`
	PeopleInvolved []string   `json:"peopleInvolved"`
}

// Household is the tenancy root.
type Household struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// OnThisDayEntry is an anniversary match for a given month and day.
type OnThisDayEntry struct {
	Kind     string     `json:"kind"` // "birthday", "memorial" or "event"
	Title    string     `json:"title"`
	Year     *int       `json:"year,omitempty"`
	PersonID *uuid.UUID `json:"personId,omitempty"`
}
