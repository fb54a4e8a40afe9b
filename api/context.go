package api

import "context"

type idempotencyKey struct{}

// WithIdempotencyKey attaches a key that transports send with mutating
// requests so a retried call is applied once.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	if key == "" {
		return ctx
	}
	return context.WithValue(ctx, idempotencyKey{}, key)
}

// IdempotencyKey returns the key attached to ctx, if any.
func IdempotencyKey(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	key, _ := ctx.Value(idempotencyKey{}).(string)
	return key
}
