package tools

import (
	"context"

	"github.com/google/uuid"
)

type callerKey struct{}

type caller struct {
	householdID uuid.UUID
	userID      uuid.UUID
}

// WithCaller attaches the calling household and user to a context. Genkit
// tool closures recover it when the framework executes a tool directly
// instead of going through the Dispatcher.
func WithCaller(ctx context.Context, householdID, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, callerKey{}, caller{householdID, userID})
}

// CallerFromContext returns the calling household and user, if attached.
func CallerFromContext(ctx context.Context) (householdID, userID uuid.UUID, ok bool) {
	c, ok := ctx.Value(callerKey{}).(caller)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return c.householdID, c.userID, true
}
