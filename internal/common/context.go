package common

import (
	"context"
	"time"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRunID   contextKey = "run_id"
	ContextKeyProfile contextKey = "profile"
)

// WithRunID adds a recognition run ID to the context
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, ContextKeyRunID, runID)
}

// RunIDFromContext extracts the recognition run ID from context
func RunIDFromContext(ctx context.Context) string {
	if runID, ok := ctx.Value(ContextKeyRunID).(string); ok {
		return runID
	}
	return ""
}

// WithProfile adds the active processing profile to the context
func WithProfile(ctx context.Context, profile string) context.Context {
	return context.WithValue(ctx, ContextKeyProfile, profile)
}

// ProfileFromContext extracts the active processing profile from context
func ProfileFromContext(ctx context.Context) string {
	if profile, ok := ctx.Value(ContextKeyProfile).(string); ok {
		return profile
	}
	return ""
}

// WithTimeout creates a context with the specified timeout
func WithTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}
