// Package testutil holds helpers shared by integration tests.
package testutil

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/glycoguard/glycoguard/internal/model"
	"github.com/glycoguard/glycoguard/internal/risk"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420421

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// Migrator is the subset of the repository used to rebuild the schema.
type Migrator interface {
	MigrateReset(ctx context.Context) error
	Migrate(ctx context.Context) error
}

// ResetSchema rolls every migration back and applies them again.
func ResetSchema(ctx context.Context, m Migrator) error {
	if err := m.MigrateReset(ctx); err != nil {
		return err
	}
	return m.Migrate(ctx)
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a user with a unique username. The digest is not a
// real argon2 string; tests that log in should hash a password instead.
func NewTestUser(t testing.TB) *model.User {
	t.Helper()
	return &model.User{
		ID:             NewID(),
		Username:       UniqueID("user"),
		PasswordDigest: "$argon2id$v=19$m=65536,t=3,p=4$dGVzdHNhbHQ$dGVzdGhhc2g",
		CreatedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}
}

// NewTestPrediction creates a history record for userID at the given time.
func NewTestPrediction(t testing.TB, userID string, tier risk.Tier, probability float64, at time.Time) *model.Prediction {
	t.Helper()
	return &model.Prediction{
		ID:             NewID(),
		UserID:         userID,
		Label:          tier.Label(),
		Glucose:        120,
		BloodPressure:  70,
		RiskPercentage: model.RiskPercentage(probability),
		AdvisoryText:   tier.Advice(),
		Sex:            "Female",
		CreatedAt:      at.UTC().Truncate(time.Microsecond),
	}
}

// NewID returns a fresh ULID string.
func NewID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
