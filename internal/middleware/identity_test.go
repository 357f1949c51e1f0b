package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glycoguard/glycoguard/internal/auth"
	"github.com/glycoguard/glycoguard/internal/service"
)

// requirementResolver accepts only "good" and honours the requirement the
// same way the auth service does.
type requirementResolver struct{}

func (requirementResolver) ResolveIdentity(_ context.Context, token string, req auth.Requirement) (string, error) {
	if token == "good" {
		return "user-1", nil
	}
	if req == auth.Mandatory {
		return "", service.ErrUnauthenticated
	}
	return "", nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, auth.UserIDFromContext(r.Context()))
	})
}

func TestIdentity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		req        auth.Requirement
		header     string
		wantStatus int
		wantUser   string
	}{
		{"optional valid", auth.Optional, "Bearer good", http.StatusOK, "user-1"},
		{"optional lowercase scheme", auth.Optional, "bearer good", http.StatusOK, "user-1"},
		{"optional missing", auth.Optional, "", http.StatusOK, ""},
		{"optional invalid", auth.Optional, "Bearer bad", http.StatusOK, ""},
		{"optional wrong scheme", auth.Optional, "Basic good", http.StatusOK, ""},
		{"mandatory valid", auth.Mandatory, "Bearer good", http.StatusOK, "user-1"},
		{"mandatory missing", auth.Mandatory, "", http.StatusUnauthorized, ""},
		{"mandatory invalid", auth.Mandatory, "Bearer bad", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := Identity(IdentityConfig{
				Logger:      discardLogger(),
				Resolver:    requirementResolver{},
				Requirement: tt.req,
			})(echoUser())

			req := httptest.NewRequest(http.MethodGet, "/history", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if rec.Code == http.StatusOK && rec.Body.String() != tt.wantUser {
				t.Errorf("user = %q, want %q", rec.Body.String(), tt.wantUser)
			}
			if rec.Code == http.StatusUnauthorized {
				var body errorBody
				if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
					t.Fatalf("decode error body: %v", err)
				}
				if body.Error.Code != "UNAUTHORIZED" {
					t.Errorf("code = %q", body.Error.Code)
				}
				if rec.Header().Get("WWW-Authenticate") == "" {
					t.Error("401 should carry WWW-Authenticate")
				}
			}
		})
	}
}

func TestIdentity_ResolverFailure(t *testing.T) {
	t.Parallel()

	handler := Identity(IdentityConfig{
		Logger:      discardLogger(),
		Resolver:    fakeResolver{err: errors.New("database down")},
		Requirement: auth.Mandatory,
	})(echoUser())

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	req.Header.Set("Authorization", "Bearer good")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}
