package controller

import "context"

type ctxKey struct{}

// WithUserID stores the authenticated user's ID on ctx.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// UserIDFrom returns the authenticated user's ID, or "".
func UserIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
