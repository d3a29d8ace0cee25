// Package auth carries the identity of the requesting user through a
// request context.
package auth

import "context"

type contextKey struct{}

// Identity is the user a request acts for. Every document and preference
// read or written by the request is scoped to UserID.
type Identity struct {
	UserID string
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

// UserID returns the user of ctx, or "" when there is none.
func UserID(ctx context.Context) string {
	id, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return id.UserID
}
