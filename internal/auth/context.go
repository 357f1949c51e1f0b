package auth

import "context"

// Requirement states whether an endpoint needs a resolved identity.
type Requirement int

const (
	// Optional endpoints serve anonymous callers; a bad token degrades to anonymous.
	Optional Requirement = iota
	// Mandatory endpoints reject requests without a valid identity.
	Mandatory
)

func (r Requirement) String() string {
	switch r {
	case Optional:
		return "optional"
	case Mandatory:
		return "mandatory"
	default:
		return "unknown"
	}
}

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const userIDContextKey contextKey = "user_id"

// ContextWithUserID stores the resolved user ID in the context.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// UserIDFromContext returns the resolved user ID.
// Returns empty string for anonymous requests.
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDContextKey).(string)
	return id
}
