package session

import (
	"context"
	"tecrank_admin/internal/platform/backend"
)

type ctxKey struct{}

// WithSession puts s in ctx and installs it as the backend client's token source and
// 401 handler, so expiry is handled in one place for every resource call.
func WithSession(ctx context.Context, s *Session) context.Context {
	ctx = context.WithValue(ctx, ctxKey{}, s)
	return backend.WithSession(ctx, s.Token, func(ctx context.Context) { s.Expire(ctx) })
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}
