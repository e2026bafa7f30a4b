package tools

import (
	"encoding/json"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

// RegisterTools defines the full catalog with genkit so the model receives
// each tool's name, description and parameter schema. Execution normally
// flows through the Dispatcher (the orchestrator intercepts tool requests);
// the closures here cover the direct-execution path and require the caller
// to be attached to the context via WithCaller.
func RegisterTools(g *genkit.Genkit, d *Dispatcher) {
	defineTool[SearchFamilyInput](g, d, ToolSearchFamily)
	defineTool[GetPersonInput](g, d, ToolGetPerson)
	defineTool[AddPersonInput](g, d, ToolAddPerson)
	defineTool[UpdatePersonInput](g, d, ToolUpdatePerson)
	defineTool[AddRelationshipInput](g, d, ToolAddRelationship)
	defineTool[GetFamilyTreeInput](g, d, ToolGetFamilyTree)
	defineTool[AddEventInput](g, d, ToolAddEvent)
	defineTool[GetEventsInput](g, d, ToolGetEvents)
	defineTool[GetTimelineInput](g, d, ToolGetTimeline)
	defineTool[SearchPhotosInput](g, d, ToolSearchPhotos)
	defineTool[AddStoryInput](g, d, ToolAddStory)
	defineTool[SearchStoriesInput](g, d, ToolSearchStories)
	defineTool[GetTodayHistoryInput](g, d, ToolGetTodayHistory)
	defineTool[GenerateBioInput](g, d, ToolGenerateBio)
}

// defineTool registers one catalog entry; In fixes the parameter schema
// genkit derives for the model.
func defineTool[In any](g *genkit.Genkit, d *Dispatcher, name string) {
	genkit.DefineTool(g, name, Description(name),
		func(tctx *ai.ToolContext, in In) (Result, error) {
			raw, err := json.Marshal(in)
			if err != nil {
				return Soft(KindInvalidInput, "invalid tool input: %s", err), nil
			}
			householdID, userID, ok := CallerFromContext(tctx.Context)
			if !ok {
				return Soft(KindInternal, "no caller attached to tool execution"), nil
			}
			return d.Execute(tctx.Context, name, raw, householdID, userID), nil
		})
}

// Refs returns ToolRef handles for every registered catalog tool, for
// passing to a generate call.
func Refs(g *genkit.Genkit) []ai.ToolRef {
	refs := make([]ai.ToolRef, 0, len(toolNames))
	for _, name := range toolNames {
		if t := genkit.LookupTool(g, name); t != nil {
			refs = append(refs, t)
		}
	}
	return refs
}
