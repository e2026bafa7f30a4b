package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
)

// GoogleAISetup holds the resources for tests that hit the real Gemini API.
type GoogleAISetup struct {
	Genkit   *genkit.Genkit
	Embedder ai.Embedder
}

// SetupGoogleAI initializes Genkit with the Google AI plugin for
// integration tests. Skips the test unless GEMINI_API_KEY is set.
func SetupGoogleAI(t *testing.T) *GoogleAISetup {
	t.Helper()

	if os.Getenv("GEMINI_API_KEY") == "" {
		t.Skip("GEMINI_API_KEY not set; skipping Google AI integration test")
	}

	ctx := context.Background()
	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))

	embedder := googlegenai.GoogleAIEmbedder(g, "text-embedding-004")
	if embedder == nil {
		t.Fatal("google ai embedder not available")
	}

	return &GoogleAISetup{Genkit: g, Embedder: embedder}
}
