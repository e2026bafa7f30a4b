// Package agent runs the conversational loop: it feeds user messages and
// session history to the model, executes the tool calls the model requests,
// and persists the resulting turns.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/aurami/origin/internal/family"
	"github.com/aurami/origin/internal/session"
	"github.com/aurami/origin/internal/tools"
)

// DefaultMaxRounds caps how many model/tool round trips one user turn may
// take before the loop gives up with a fallback answer.
const DefaultMaxRounds = 8

const sessionTitleMax = 60

// Config configures an Orchestrator.
type Config struct {
	ModelName    string
	MaxRounds    int
	HistoryLimit int
	Retry        RetryConfig
	// RateLimit and RateBurst bound outgoing model calls. Zero values
	// select the defaults (10 req/s, burst 30).
	RateLimit float64
	RateBurst int
}

// Orchestrator drives conversations for one deployment. Safe for
// concurrent use.
type Orchestrator struct {
	g          *genkit.Genkit
	dispatcher *tools.Dispatcher
	sessions   *session.Store
	store      *family.Store
	modelName  string
	maxRounds  int
	histLimit  int
	limiter    *rate.Limiter
	retry      RetryConfig
	logger     *slog.Logger
}

// New creates an Orchestrator.
func New(g *genkit.Genkit, d *tools.Dispatcher, sessions *session.Store, store *family.Store, cfg Config, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = DefaultMaxRounds
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = session.DefaultHistoryLimit
	}
	if cfg.Retry == (RetryConfig{}) {
		cfg.Retry = DefaultRetryConfig()
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 10
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 30
	}
	return &Orchestrator{
		g:          g,
		dispatcher: d,
		sessions:   sessions,
		store:      store,
		modelName:  cfg.ModelName,
		maxRounds:  cfg.MaxRounds,
		histLimit:  cfg.HistoryLimit,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		retry:      cfg.Retry,
		logger:     logger,
	}
}

// RunInput is one user turn. A nil SessionID starts a new session.
type RunInput struct {
	HouseholdID uuid.UUID
	UserID      uuid.UUID
	SessionID   *uuid.UUID
	Message     string
}

// RunOutput is the assistant's reply for one turn.
type RunOutput struct {
	SessionID uuid.UUID `json:"sessionId"`
	Message   string    `json:"message"`
	Rounds    int       `json:"rounds"`
}

// Run executes one conversation turn: load or create the session, replay
// history, loop through model and tool calls, persist both sides of the
// exchange. Tool failures never abort the turn; they flow back to the model
// as structured results so it can recover or explain.
func (o *Orchestrator) Run(ctx context.Context, in RunInput) (*RunOutput, error) {
	if strings.TrimSpace(in.Message) == "" {
		return nil, fmt.Errorf("agent: empty message")
	}

	sess, err := o.resolveSession(ctx, in)
	if err != nil {
		return nil, err
	}

	history, err := o.sessions.Recent(ctx, sess.ID, o.histLimit)
	if err != nil {
		return nil, fmt.Errorf("agent: load history: %w", err)
	}

	msgs := make([]*ai.Message, 0, len(history)+1)
	for _, m := range history {
		switch m.Role {
		case session.RoleUser:
			msgs = append(msgs, ai.NewUserMessage(ai.NewTextPart(m.Content)))
		case session.RoleAssistant:
			msgs = append(msgs, ai.NewModelMessage(ai.NewTextPart(m.Content)))
		}
	}
	msgs = append(msgs, ai.NewUserMessage(ai.NewTextPart(in.Message)))

	familyName, err := o.store.HouseholdName(ctx, in.HouseholdID)
	if err != nil {
		o.logger.Warn("household name lookup failed", "error", err)
	}

	// The user's words go down before the first model call; an upstream
	// failure mid-turn must not lose them.
	err = o.sessions.Append(ctx, in.HouseholdID, sess.ID,
		session.Message{Role: session.RoleUser, Content: in.Message})
	if err != nil {
		return nil, fmt.Errorf("agent: persist user message: %w", err)
	}

	reply, rounds, err := o.loop(ctx, systemPrompt(familyName), msgs, in.HouseholdID, in.UserID)
	if err != nil {
		return nil, err
	}

	err = o.sessions.Append(ctx, in.HouseholdID, sess.ID,
		session.Message{Role: session.RoleAssistant, Content: reply})
	if err != nil {
		return nil, fmt.Errorf("agent: persist assistant reply: %w", err)
	}

	return &RunOutput{SessionID: sess.ID, Message: reply, Rounds: rounds}, nil
}

// loop runs the model/tool exchange until the model answers in text or the
// round cap is hit.
func (o *Orchestrator) loop(ctx context.Context, system string, msgs []*ai.Message, householdID, userID uuid.UUID) (string, int, error) {
	for round := 1; round <= o.maxRounds; round++ {
		resp, err := o.generateWithRetry(ctx,
			ai.WithModelName(o.modelName),
			ai.WithSystem(system),
			ai.WithMessages(msgs...),
			ai.WithTools(tools.Refs(o.g)...),
			ai.WithReturnToolRequests(true),
		)
		if err != nil {
			return "", round, fmt.Errorf("agent: model call: %w", err)
		}

		requests := resp.ToolRequests()
		if len(requests) == 0 {
			text := strings.TrimSpace(resp.Text())
			if text == "" {
				o.logger.Warn("model returned empty response", "round", round)
				text = fallbackResponseMessage
			}
			return text, round, nil
		}

		o.logger.Debug("executing tool requests",
			"round", round, "count", len(requests))

		if resp.Message != nil {
			msgs = append(msgs, resp.Message)
		}

		parts := make([]*ai.Part, 0, len(requests))
		for _, req := range requests {
			raw, err := json.Marshal(req.Input)
			if err != nil {
				raw = []byte("{}")
			}
			result := o.dispatcher.Execute(ctx, req.Name, raw, householdID, userID)
			parts = append(parts, ai.NewToolResponsePart(&ai.ToolResponse{
				Name:   req.Name,
				Ref:    req.Ref,
				Output: result,
			}))
		}
		msgs = append(msgs, &ai.Message{Role: ai.RoleTool, Content: parts})
	}

	o.logger.Warn("tool loop hit round cap", "maxRounds", o.maxRounds)
	return fallbackResponseMessage, o.maxRounds, nil
}

// GenerateText runs a single tool-free completion. The tools package uses
// it to draft biographies.
func (o *Orchestrator) GenerateText(ctx context.Context, system, prompt string) (string, error) {
	resp, err := o.generateWithRetry(ctx,
		ai.WithModelName(o.modelName),
		ai.WithSystem(system),
		ai.WithMessages(ai.NewUserMessage(ai.NewTextPart(prompt))),
	)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("agent: empty completion")
	}
	return text, nil
}

func (o *Orchestrator) resolveSession(ctx context.Context, in RunInput) (*session.Session, error) {
	if in.SessionID != nil {
		sess, err := o.sessions.Get(ctx, in.HouseholdID, *in.SessionID)
		if err != nil {
			return nil, fmt.Errorf("agent: load session: %w", err)
		}
		return sess, nil
	}

	sess, err := o.sessions.Create(ctx, in.HouseholdID, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("agent: create session: %w", err)
	}
	if err := o.sessions.SetTitle(ctx, sess.ID, sessionTitle(in.Message)); err != nil {
		o.logger.Warn("session title update failed", "error", err)
	}
	return sess, nil
}

// sessionTitle derives a short title from the first user message.
func sessionTitle(message string) string {
	title := strings.Join(strings.Fields(message), " ")
	if utf8.RuneCountInString(title) <= sessionTitleMax {
		return title
	}
	runes := []rune(title)
	return string(runes[:sessionTitleMax-1]) + "…"
}
