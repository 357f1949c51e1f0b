package cache

import (
	"testing"
	"time"
)

func TestHashIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ip   string
	}{
		{"IPv4", "192.168.1.1"},
		{"IPv6 localhost", "::1"},
		{"IPv6 full", "2001:0db8:85a3:0000:0000:8a2e:0370:7334"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hash := hashIP(tt.ip)
			if len(hash) != 16 {
				t.Errorf("hashIP(%q) length = %d, want 16", tt.ip, len(hash))
			}
			if hash != hashIP(tt.ip) {
				t.Errorf("hashIP(%q) is not deterministic", tt.ip)
			}
		})
	}

	if hashIP("10.0.0.1") == hashIP("10.0.0.2") {
		t.Error("different IPs should produce different hashes")
	}
}

func TestIdentityKey(t *testing.T) {
	t.Parallel()

	if got := identityKey("01HZX"); got != "identity:user:01HZX" {
		t.Errorf("identityKey = %q", got)
	}
}

func TestParseBucketResult(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)

	allowed, err := parseBucketResult([]int64{1, 0, 7}, 10, now)
	if err != nil {
		t.Fatalf("parseBucketResult: %v", err)
	}
	if !allowed.Allowed || allowed.Remaining != 7 || allowed.RetryAfter != 0 {
		t.Errorf("unexpected allowed result: %+v", allowed)
	}
	if !allowed.ResetAt.Equal(now.Add(100 * time.Millisecond)) {
		t.Errorf("ResetAt = %v", allowed.ResetAt)
	}

	denied, err := parseBucketResult([]int64{0, 2, 0}, 1, now)
	if err != nil {
		t.Fatalf("parseBucketResult: %v", err)
	}
	if denied.Allowed || denied.RetryAfter != 2*time.Second {
		t.Errorf("unexpected denied result: %+v", denied)
	}

	if _, err := parseBucketResult([]int64{1}, 1, now); err == nil {
		t.Error("short reply should be an error")
	}
}

func TestCheckIPRateLimit_InvalidConfig(t *testing.T) {
	t.Parallel()

	c := &Cache{}
	if _, err := c.CheckIPRateLimit(t.Context(), "auth", "1.2.3.4", 0, 5); err == nil {
		t.Error("zero rate should be rejected before touching Redis")
	}
}
