package identity

import (
	"context"
	"strings"
)

type contextKey string

const userKey = contextKey("identity.user")

// Provider exposes the identifier of the authenticated user, if any.
type Provider interface {
	CurrentUser(ctx context.Context) (string, bool)
}

// ContextProvider reads the user that the auth middleware stored in the context.
type ContextProvider struct{}

// NewContextProvider creates a new ContextProvider.
func NewContextProvider() *ContextProvider {
	return &ContextProvider{}
}

// CurrentUser returns the authenticated user stored in ctx.
func (p *ContextProvider) CurrentUser(ctx context.Context) (string, bool) {
	return UserFromContext(ctx)
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the user stored by WithUser.
func UserFromContext(ctx context.Context) (string, bool) {
	user, ok := ctx.Value(userKey).(string)
	if !ok || strings.TrimSpace(user) == "" {
		return "", false
	}
	return user, true
}

// NormalizeEmail lower-cases and trims an email so it can be used as an identifier.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
