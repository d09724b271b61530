package context

import (
	"context"

	"github.com/google/uuid"
)

type userIDKey struct{}

type requestStateKey struct{}

// requestState is shared by the outer middleware chain so that access logs
// can see the user resolved further down.
type requestState struct {
	userID uuid.UUID
}

// Manager stores the authenticated user ID in a request context.
type Manager struct{}

// NewManager creates a new request context manager.
func NewManager() *Manager {
	return &Manager{}
}

// WithRequestState returns a context that later SetUserIDToContext calls report back to.
func (m *Manager) WithRequestState(ctx context.Context) context.Context {
	return context.WithValue(ctx, requestStateKey{}, &requestState{})
}

// SetUserIDToContext returns a new context carrying userID.
// The ID is also written to the request state, if one is present.
//
// Parameters:
//   - ctx: Request context
//   - userID: Authenticated user ID
//
// Returns the derived context.
func (m *Manager) SetUserIDToContext(ctx context.Context, userID uuid.UUID) context.Context {
	if state, ok := ctx.Value(requestStateKey{}).(*requestState); ok {
		state.userID = userID
	}
	return context.WithValue(ctx, userIDKey{}, userID)
}

// GetUserIDFromContext reads the authenticated user from ctx.
//
// Parameters:
//   - ctx: Request context
//
// Returns the user ID and true, or uuid.Nil and false when no user was set.
func (m *Manager) GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	if userID, ok := ctx.Value(userIDKey{}).(uuid.UUID); ok && userID != uuid.Nil {
		return userID, true
	}
	if state, ok := ctx.Value(requestStateKey{}).(*requestState); ok && state.userID != uuid.Nil {
		return state.userID, true
	}
	return uuid.Nil, false
}
