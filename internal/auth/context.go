// Package auth carries the authenticated caller through a request context.
package auth

import "context"

type contextKey struct{}

type AuthContext struct {
	UserID    int64
	SessionID int64
	Email     string
	Token     string
}

func WithAuth(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

func FromContext(ctx context.Context) (AuthContext, bool) {
	ac, ok := ctx.Value(contextKey{}).(AuthContext)
	return ac, ok
}

func UserID(ctx context.Context) int64 {
	ac, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return ac.UserID
}

// Token returns the session token the request authenticated with, or "".
func Token(ctx context.Context) string {
	ac, _ := FromContext(ctx)
	return ac.Token
}

func IsAuthenticated(ctx context.Context) bool {
	return UserID(ctx) != 0
}
