package config

import (
	"errors"
	"strings"
	"testing"
)

func TestRedactURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"postgres://app:hunter2@db:5432/glycoguard", "postgres://app@db:5432/glycoguard"},
		{"redis://:hunter2@cache:6379/0", "redis://redacted@cache:6379/0"},
		{"redis://cache:6379", "redis://cache:6379"},
	}

	for _, tt := range tests {
		if got := RedactURL(tt.in); got != tt.want {
			t.Errorf("RedactURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeError(t *testing.T) {
	t.Parallel()

	secret := "postgres://app:hunter2@db:5432/glycoguard"
	err := errors.New("connect " + secret + ": password=hunter2 rejected")

	got := SanitizeError(err, secret)
	if strings.Contains(got, "hunter2") {
		t.Errorf("password leaked: %s", got)
	}
	if !strings.Contains(got, "password=redacted") {
		t.Errorf("expected password=redacted in %s", got)
	}
	if got := SanitizeError(nil); got != "" {
		t.Errorf("expected empty string for nil error, got %q", got)
	}
}
