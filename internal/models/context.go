package models

import "context"

type requestIdContextKey struct{}

// WithRequestId attaches the correlation id of the inbound request to a context
// so storage and chain logs can be joined with the access log.
func WithRequestId(ctx context.Context, requestId string) context.Context {
	return context.WithValue(ctx, requestIdContextKey{}, requestId)
}

// RequestIdFromContext returns the request id, or "" if absent.
func RequestIdFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIdContextKey{}).(string)
	return id
}
