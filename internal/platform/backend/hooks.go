package backend

import "context"

type hooksKey struct{}

type hooks struct {
	token        func(context.Context) string
	unauthorized func(context.Context)
}

// WithSession binds the request-stage token lookup and the response-stage 401 handler
// to ctx. Either function may be nil.
func WithSession(ctx context.Context, token func(context.Context) string, unauthorized func(context.Context)) context.Context {
	return context.WithValue(ctx, hooksKey{}, &hooks{token: token, unauthorized: unauthorized})
}

func hooksFrom(ctx context.Context) *hooks {
	h, _ := ctx.Value(hooksKey{}).(*hooks)
	return h
}

// WithoutSession detaches any session hooks, for calls like login where a 401 means
// "wrong credentials" rather than "session expired".
func WithoutSession(ctx context.Context) context.Context {
	return context.WithValue(ctx, hooksKey{}, (*hooks)(nil))
}
