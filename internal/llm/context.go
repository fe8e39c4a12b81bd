package llm

import "context"

type contextKey string

const (
	purposeKey contextKey = "llm_purpose"
	userKey    contextKey = "llm_user"
)

// WithPurpose attaches a purpose label to the context for event logging
// and cache fingerprinting.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom extracts the purpose label from the context.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return "unknown"
}

// WithUser attaches the requesting user's id to the context. The rate
// limiter uses it to scope call budgets per user.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey, userID)
}

// UserFrom extracts the user id from the context, or "" if absent.
func UserFrom(ctx context.Context) string {
	if v, ok := ctx.Value(userKey).(string); ok {
		return v
	}
	return ""
}
