package tools

// Tool names. The model is prompted against these exact names; changing one
// silently breaks tool calling.
const (
	ToolSearchFamily    = "search_family"
	ToolGetPerson       = "get_person"
	ToolAddPerson       = "add_person"
	ToolUpdatePerson    = "update_person"
	ToolAddRelationship = "add_relationship"
	ToolGetFamilyTree   = "get_family_tree"
	ToolAddEvent        = "add_event"
	ToolGetEvents       = "get_events"
	ToolGetTimeline     = "get_timeline"
	ToolSearchPhotos    = "search_photos"
	ToolAddStory        = "add_story"
	ToolSearchStories   = "search_stories"
	ToolGetTodayHistory = "get_today_history"
	ToolGenerateBio     = "generate_bio"
)

// toolNames is the single source of truth for the catalog order.
var toolNames = []string{
	ToolSearchFamily,
	ToolGetPerson,
	ToolAddPerson,
	ToolUpdatePerson,
	ToolAddRelationship,
	ToolGetFamilyTree,
	ToolAddEvent,
	ToolGetEvents,
	ToolGetTimeline,
	ToolSearchPhotos,
	ToolAddStory,
	ToolSearchStories,
	ToolGetTodayHistory,
	ToolGenerateBio,
}

// ToolNames returns the names of every tool in the catalog.
func ToolNames() []string {
	out := make([]string, len(toolNames))
	copy(out, toolNames)
	return out
}

// descriptions are the model-facing natural-language tool descriptions.
var descriptions = map[string]string{
	ToolSearchFamily:    "Semantic and text search across all family data - persons, events, stories, photos. Use when the user asks questions about family history.",
	ToolGetPerson:       "Get full details of a specific person including relationships, events, stories, and photos.",
	ToolAddPerson:       "Add a new person to the family tree.",
	ToolUpdatePerson:    "Update an existing person's details. Only provided fields will be updated.",
	ToolAddRelationship: "Create a relationship between two persons in the family tree.",
	ToolGetFamilyTree:   "Get tree structure from a starting person - ancestors and/or descendants.",
	ToolAddEvent:        "Record a family event or milestone.",
	ToolGetEvents:       "List events filtered by person, type, date range, or keyword.",
	ToolGetTimeline:     "Get a chronological family timeline.",
	ToolSearchPhotos:    "Search family photos and media assets.",
	ToolAddStory:        "Add a family story or narrative.",
	ToolSearchStories:   "Search family stories by query, person, era, or tag.",
	ToolGetTodayHistory: "Get events and births that occurred on today's date in history.",
	ToolGenerateBio:     "Generate a narrative biography for a person using all available data.",
}

// Description returns the model-facing description of a tool.
func Description(name string) string {
	return descriptions[name]
}
