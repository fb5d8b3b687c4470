package auth

import (
	"context"

	apperrors "fintrack-backend/pkg/errors"
)

// UserContext is the authenticated principal attached to each request.
type UserContext struct {
	UserID string
	Email  string
	Roles  []string
}

type contextKey string

const userContextKey contextKey = "fintrack.user"

// SetUserInContext stores the authenticated user on the context.
func SetUserInContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// GetUserFromContext retrieves the authenticated user, or an unauthorized
// error if the auth middleware did not run.
func GetUserFromContext(ctx context.Context) (*UserContext, error) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	if !ok || user == nil {
		return nil, apperrors.NewUnauthorizedError("no authenticated user in context")
	}
	return user, nil
}
