// Package ctxkeys holds typed context keys shared across the module.
package ctxkeys

import "context"

type runIDKey struct{}

// WithRunID returns a context carrying the research run ID.
func WithRunID(ctx context.Context, runID string) context.Context {
	if runID == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunID extracts the research run ID from ctx, or "" when absent.
func RunID(ctx context.Context) string {
	v, _ := ctx.Value(runIDKey{}).(string)
	return v
}
