package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/google/uuid"

	"github.com/aurami/origin/internal/log"
	"github.com/aurami/origin/internal/testutil"
	"github.com/aurami/origin/internal/tools"
)

type stubResolver struct{}

func (stubResolver) ScopeIDs(_ context.Context, householdID uuid.UUID) ([]uuid.UUID, error) {
	return []uuid.UUID{householdID}, nil
}

// newTestOrchestrator wires a mock model behind a real dispatcher. The tool
// handlers have no database, so tool calls come back as error Results; the
// loop must still route them and terminate.
func newTestOrchestrator(t *testing.T) (*Orchestrator, *testutil.MockLLM) {
	t.Helper()

	ctx := context.Background()
	g := genkit.Init(ctx)

	mock := testutil.NewMockLLM("fallback answer")
	mock.Register(g)

	logger := log.NewNop()
	h := tools.NewHandler(nil, nil, nil, nil, logger)
	d := tools.NewDispatcher(stubResolver{}, h, logger)
	tools.RegisterTools(g, d)

	o := New(g, d, nil, nil, Config{ModelName: "mock/test-model"}, logger)
	return o, mock
}

func userMessages(text string) []*ai.Message {
	return []*ai.Message{ai.NewUserMessage(ai.NewTextPart(text))}
}

func TestLoopTextAnswerFirstRound(t *testing.T) {
	o, mock := newTestOrchestrator(t)
	mock.Script(testutil.MockTurn{Text: "Your grandmother was born in 1932."})

	reply, rounds, err := o.loop(context.Background(), "system", userMessages("when was grandma born"), uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("loop: %v", err)
	}
	if rounds != 1 {
		t.Errorf("rounds = %d, want 1", rounds)
	}
	if reply != "Your grandmother was born in 1932." {
		t.Errorf("reply = %q", reply)
	}
}

func TestLoopExecutesToolsThenAnswers(t *testing.T) {
	o, mock := newTestOrchestrator(t)
	mock.Script(
		testutil.MockTurn{Tools: []*ai.ToolRequest{{
			Name:  tools.ToolGetTodayHistory,
			Ref:   "call-1",
			Input: map[string]any{},
		}}},
		testutil.MockTurn{Text: "Nothing happened on this day."},
	)

	reply, rounds, err := o.loop(context.Background(), "system", userMessages("anything today?"), uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("loop: %v", err)
	}
	if rounds != 2 {
		t.Errorf("rounds = %d, want 2", rounds)
	}
	if reply != "Nothing happened on this day." {
		t.Errorf("reply = %q", reply)
	}

	calls := mock.Calls()
	if len(calls) != 2 {
		t.Fatalf("model calls = %d, want 2", len(calls))
	}
	// The second call must carry the tool result back to the model.
	if calls[1].ToolResults != 1 {
		t.Errorf("second call tool results = %d, want 1", calls[1].ToolResults)
	}
}

func TestLoopRoundCap(t *testing.T) {
	o, mock := newTestOrchestrator(t)
	o.maxRounds = 3
	// Rule, not script: fires on every round, simulating a model that
	// never stops requesting tools.
	mock.AddToolResponse("keep going", &ai.ToolRequest{
		Name:  tools.ToolGetTodayHistory,
		Ref:   "call-1",
		Input: map[string]any{},
	})

	reply, rounds, err := o.loop(context.Background(), "system", userMessages("keep going"), uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("loop: %v", err)
	}
	if rounds != 3 {
		t.Errorf("rounds = %d, want 3", rounds)
	}
	if reply != fallbackResponseMessage {
		t.Errorf("reply = %q, want fallback", reply)
	}
	if got := len(mock.Calls()); got != 3 {
		t.Errorf("model calls = %d, want 3", got)
	}
}

func TestLoopEmptyResponseFallsBack(t *testing.T) {
	o, mock := newTestOrchestrator(t)
	mock.Script(testutil.MockTurn{Text: ""})

	reply, _, err := o.loop(context.Background(), "system", userMessages("hello"), uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("loop: %v", err)
	}
	if reply != fallbackResponseMessage {
		t.Errorf("reply = %q, want fallback", reply)
	}
}

func TestLoopUnknownToolFedBack(t *testing.T) {
	o, mock := newTestOrchestrator(t)
	mock.Script(
		testutil.MockTurn{Tools: []*ai.ToolRequest{{
			Name:  "summon_dragon",
			Ref:   "call-1",
			Input: map[string]any{},
		}}},
		testutil.MockTurn{Text: "I cannot do that."},
	)

	reply, rounds, err := o.loop(context.Background(), "system", userMessages("do magic"), uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("loop: %v", err)
	}
	if rounds != 2 {
		t.Errorf("rounds = %d, want 2", rounds)
	}
	if reply != "I cannot do that." {
		t.Errorf("reply = %q", reply)
	}
}

func TestGenerateText(t *testing.T) {
	o, mock := newTestOrchestrator(t)
	mock.Script(testutil.MockTurn{Text: "  A life well lived.  "})

	text, err := o.GenerateText(context.Background(), "system", "write a bio")
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if text != "A life well lived." {
		t.Errorf("text = %q", text)
	}
}

func TestGenerateTextEmpty(t *testing.T) {
	o, mock := newTestOrchestrator(t)
	mock.Script(testutil.MockTurn{Text: ""})

	if _, err := o.GenerateText(context.Background(), "system", "write a bio"); err == nil {
		t.Fatal("expected error for empty completion")
	}
}

func TestSessionTitle(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"short", "Tell me about grandpa", "Tell me about grandpa"},
		{"whitespace collapsed", "Tell  me\nabout   grandpa", "Tell me about grandpa"},
		{
			"long truncated",
			strings.Repeat("family history ", 10),
			func() string {
				full := strings.TrimSpace(strings.Repeat("family history ", 10))
				return string([]rune(full)[:sessionTitleMax-1]) + "…"
			}(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sessionTitle(tt.message); got != tt.want {
				t.Errorf("sessionTitle(%q) = %q, want %q", tt.message, got, tt.want)
			}
		})
	}
}

func TestRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limit", errors.New("googleai: rate limit exceeded"), true},
		{"http 429", errors.New("unexpected status 429"), true},
		{"server error", errors.New("503 service unavailable"), true},
		{"connection reset", errors.New("read tcp: connection reset by peer"), true},
		{"bad request", errors.New("invalid argument: unknown model"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := retryableError(tt.err); got != tt.want {
				t.Errorf("retryableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestSystemPrompt(t *testing.T) {
	got := systemPrompt("Chen")
	if !strings.Contains(got, "Chen family") {
		t.Errorf("prompt missing family name: %q", got)
	}
	if !strings.Contains(systemPrompt(""), "your family") {
		t.Error("empty family name should fall back to a generic prompt")
	}
}
