package domain

import "context"

type CtxKey string

const (
	KeySession CtxKey = "Session"
	KeyEmail   CtxKey = "Email"
)

// WithSession stores s on a standard context. Gin handlers get the same
// lookup through c.Set(string(KeySession), s).
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, KeySession, s)
}

// SessionFromContext works with both Gin context (c.Set) and context.WithValue.
func SessionFromContext(ctx context.Context) *Session {
	if ctx == nil {
		return nil
	}
	if s, ok := ctx.Value(string(KeySession)).(*Session); ok && s != nil {
		return s
	}
	if s, ok := ctx.Value(KeySession).(*Session); ok && s != nil {
		return s
	}
	return nil
}

// PrincipalFromContext returns the authenticated principal of the current
// session, or false when the caller never completed authentication.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	s := SessionFromContext(ctx)
	if s == nil || !s.IsAuthenticated() {
		return "", false
	}
	return s.Principal, true
}
