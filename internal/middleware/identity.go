package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/glycoguard/glycoguard/internal/auth"
	"github.com/glycoguard/glycoguard/internal/service"
)

// IdentityResolver maps a bearer token to a user ID.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, token string, req auth.Requirement) (string, error)
}

// IdentityConfig holds configuration for the identity middleware.
type IdentityConfig struct {
	Logger      *slog.Logger
	Resolver    IdentityResolver
	Requirement auth.Requirement
}

// Identity resolves the caller from "Authorization: Bearer <token>" and
// stores the user ID in the request context.
//
// Optional routes always proceed, anonymously when the token is absent or
// unusable. Mandatory routes answer 401 instead.
func Identity(cfg IdentityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)

			userID, err := cfg.Resolver.ResolveIdentity(r.Context(), token, cfg.Requirement)
			if err != nil {
				if errors.Is(err, service.ErrUnauthenticated) {
					cfg.Logger.Warn("authentication failed",
						slog.String("reason", failureReason(token)),
						slog.String("endpoint", r.Method+" "+r.URL.Path),
						slog.String("request_id", GetRequestID(r.Context())),
					)
					w.Header().Set("WWW-Authenticate", `Bearer realm="glycoguard"`)
					writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid token")
					return
				}

				cfg.Logger.Error("identity resolution failed",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
				return
			}

			if userID == "" {
				next.ServeHTTP(w, r)
				return
			}

			noteUser(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(auth.ContextWithUserID(r.Context(), userID)))
		})
	}
}

// bearerToken extracts the token from the Authorization header.
// The scheme is matched case-insensitively.
func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func failureReason(token string) string {
	if token == "" {
		return "missing_token"
	}
	return "invalid_token"
}
