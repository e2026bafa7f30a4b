package tools

// Input types for the tool catalog. Field names and optionality are part of
// the model-facing contract; the model is prompted against these exact
// parameter specs.

// SearchFamilyInput is the input for search_family.
type SearchFamilyInput struct {
	Query string `json:"query" jsonschema_description:"Search query text"`
	Limit int    `json:"limit,omitempty" jsonschema_description:"Max results to return (default 10)"`
}

// GetPersonInput is the input for get_person. Either PersonID or Name must
// be given.
type GetPersonInput struct {
	PersonID string `json:"person_id,omitempty" jsonschema_description:"UUID of the person"`
	Name     string `json:"name,omitempty" jsonschema_description:"Name to search for (if person_id not known)"`
}

// AddPersonInput is the input for add_person.
type AddPersonInput struct {
	FirstName        string `json:"first_name" jsonschema_description:"First name"`
	LastName         string `json:"last_name" jsonschema_description:"Last name / surname"`
	MiddleName       string `json:"middle_name,omitempty" jsonschema_description:"Middle name"`
	Nickname         string `json:"nickname,omitempty" jsonschema_description:"Nickname or alias"`
	Sex              string `json:"sex,omitempty" jsonschema_description:"Sex: male, female or other"`
	BirthYear        *int   `json:"birth_year,omitempty" jsonschema_description:"Year of birth"`
	BirthMonth       *int   `json:"birth_month,omitempty" jsonschema_description:"Month of birth (1-12)"`
	BirthDay         *int   `json:"birth_day,omitempty" jsonschema_description:"Day of birth (1-31)"`
	BirthDate        string `json:"birth_date,omitempty" jsonschema_description:"Full birth date (YYYY-MM-DD)"`
	BirthCity        string `json:"birth_city,omitempty" jsonschema_description:"City of birth"`
	BirthPlace       string `json:"birth_place,omitempty" jsonschema_description:"Free-text birth location"`
	BirthCountryCode string `json:"birth_country_code,omitempty" jsonschema_description:"ISO country code (e.g., IN, US)"`
	DeathDate        string `json:"death_date,omitempty" jsonschema_description:"Date of death (YYYY-MM-DD)"`
	Notes            string `json:"notes,omitempty" jsonschema_description:"Biography or notes"`
}

// UpdatePersonInput is the input for update_person. Only non-nil fields are
// applied; the set of updatable fields is fixed at compile time.
type UpdatePersonInput struct {
	PersonID         string  `json:"person_id" jsonschema_description:"UUID of the person to update"`
	FirstName        *string `json:"first_name,omitempty"`
	LastName         *string `json:"last_name,omitempty"`
	MiddleName       *string `json:"middle_name,omitempty"`
	Nickname         *string `json:"nickname,omitempty"`
	Sex              *string `json:"sex,omitempty"`
	BirthYear        *int    `json:"birth_year,omitempty"`
	BirthMonth       *int    `json:"birth_month,omitempty"`
	BirthDay         *int    `json:"birth_day,omitempty"`
	BirthDate        *string `json:"birth_date,omitempty"`
	BirthCity        *string `json:"birth_city,omitempty"`
	BirthPlace       *string `json:"birth_place,omitempty"`
	BirthCountryCode *string `json:"birth_country_code,omitempty"`
	DeathDate        *string `json:"death_date,omitempty"`
	Notes            *string `json:"notes,omitempty"`
}

// AddRelationshipInput is the input for add_relationship.
type AddRelationshipInput struct {
	FromPersonID  string `json:"from_person_id" jsonschema_description:"UUID of the subject person"`
	ToPersonID    string `json:"to_person_id" jsonschema_description:"UUID of the related person"`
	RelationType  string `json:"relation_type" jsonschema_description:"Type of relationship: parent, child, spouse or sibling"`
	RelationLabel string `json:"relation_label,omitempty" jsonschema_description:"Cultural label (e.g., Dadi, Chacha, elder brother)"`
	StartDate     string `json:"start_date,omitempty" jsonschema_description:"Relationship start date (e.g., marriage date)"`
}

// GetFamilyTreeInput is the input for get_family_tree.
type GetFamilyTreeInput struct {
	PersonID  string `json:"person_id" jsonschema_description:"UUID of the starting person"`
	Direction string `json:"direction,omitempty" jsonschema_description:"Direction to traverse: ancestors, descendants or both (default: both)"`
	Depth     int    `json:"depth,omitempty" jsonschema_description:"Max depth to traverse (default: 3)"`
}

// AddEventInput is the input for add_event.
type AddEventInput struct {
	Title       string   `json:"title" jsonschema_description:"Event title"`
	EventType   string   `json:"event_type,omitempty" jsonschema_description:"Type of event: birth, death, marriage, migration, achievement or custom"`
	EventDate   string   `json:"event_date,omitempty" jsonschema_description:"Full date (YYYY-MM-DD)"`
	EventYear   *int     `json:"event_year,omitempty" jsonschema_description:"Year only (for approximate dates)"`
	Location    string   `json:"location,omitempty" jsonschema_description:"Where it happened"`
	Description string   `json:"description,omitempty" jsonschema_description:"Detailed description"`
	PersonIDs   []string `json:"person_ids,omitempty" jsonschema_description:"UUIDs of persons involved"`
	Roles       []string `json:"roles,omitempty" jsonschema_description:"Roles matching person_ids (bride, groom, attendee, etc.)"`
}

// GetEventsInput is the input for get_events.
type GetEventsInput struct {
	PersonID  string `json:"person_id,omitempty" jsonschema_description:"Filter by person UUID"`
	EventType string `json:"event_type,omitempty" jsonschema_description:"Filter by event type"`
	YearFrom  *int   `json:"year_from,omitempty" jsonschema_description:"Start year"`
	YearTo    *int   `json:"year_to,omitempty" jsonschema_description:"End year"`
	Keyword   string `json:"keyword,omitempty" jsonschema_description:"Search keyword"`
	Limit     int    `json:"limit,omitempty" jsonschema_description:"Max results (default 20)"`
}

// GetTimelineInput is the input for get_timeline.
type GetTimelineInput struct {
	YearFrom *int `json:"year_from,omitempty" jsonschema_description:"Start year filter"`
	YearTo   *int `json:"year_to,omitempty" jsonschema_description:"End year filter"`
}

// SearchPhotosInput is the input for search_photos.
type SearchPhotosInput struct {
	PersonID string `json:"person_id,omitempty" jsonschema_description:"Filter by person UUID"`
	EventID  string `json:"event_id,omitempty" jsonschema_description:"Filter by event UUID"`
	Tag      string `json:"tag,omitempty" jsonschema_description:"Filter by tag"`
	Year     *int   `json:"year,omitempty" jsonschema_description:"Filter by year"`
	Keyword  string `json:"keyword,omitempty" jsonschema_description:"Search keyword"`
	Limit    int    `json:"limit,omitempty" jsonschema_description:"Max results (default 20)"`
}

// AddStoryInput is the input for add_story.
type AddStoryInput struct {
	Title      string   `json:"title" jsonschema_description:"Story title"`
	Content    string   `json:"content" jsonschema_description:"Full story content"`
	NarratorID string   `json:"narrator_id,omitempty" jsonschema_description:"UUID of who told the story"`
	Era        string   `json:"era,omitempty" jsonschema_description:"Time period (e.g., 1940s, Pre-Independence)"`
	Location   string   `json:"location,omitempty" jsonschema_description:"Where the story took place"`
	Tags       []string `json:"tags,omitempty" jsonschema_description:"Tags for the story"`
	PersonIDs  []string `json:"person_ids,omitempty" jsonschema_description:"UUIDs of persons mentioned"`
}

// SearchStoriesInput is the input for search_stories.
type SearchStoriesInput struct {
	Query    string `json:"query,omitempty" jsonschema_description:"Search query"`
	PersonID string `json:"person_id,omitempty" jsonschema_description:"Filter by person UUID"`
	Era      string `json:"era,omitempty" jsonschema_description:"Filter by era"`
	Tag      string `json:"tag,omitempty" jsonschema_description:"Filter by tag"`
	Limit    int    `json:"limit,omitempty" jsonschema_description:"Max results (default 10)"`
}

// GetTodayHistoryInput is the input for get_today_history.
type GetTodayHistoryInput struct{}

// GenerateBioInput is the input for generate_bio.
type GenerateBioInput struct {
	PersonID string `json:"person_id" jsonschema_description:"UUID of the person to generate a bio for"`
}
