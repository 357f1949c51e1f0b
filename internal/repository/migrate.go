package repository

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

// goose keeps its FS and dialect in package globals.
var gooseMu sync.Mutex

func withGoose(fn func() error) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return fn()
}

// sqlDB exposes the pool through database/sql for goose.
func (r *Repository) sqlDB() *sql.DB {
	return stdlib.OpenDBFromPool(r.pool)
}

// Migrate applies all pending migrations.
func (r *Repository) Migrate(ctx context.Context) error {
	db := r.sqlDB()
	defer db.Close()

	return withGoose(func() error {
		if err := goose.UpContext(ctx, db, migrationsDir); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		return nil
	})
}

// MigrateDown rolls back the most recent migration.
func (r *Repository) MigrateDown(ctx context.Context) error {
	db := r.sqlDB()
	defer db.Close()

	return withGoose(func() error {
		if err := goose.DownContext(ctx, db, migrationsDir); err != nil {
			return fmt.Errorf("roll back migration: %w", err)
		}
		return nil
	})
}

// MigrateReset rolls back every migration. Used by tests to rebuild the schema.
func (r *Repository) MigrateReset(ctx context.Context) error {
	db := r.sqlDB()
	defer db.Close()

	return withGoose(func() error {
		if err := goose.ResetContext(ctx, db, migrationsDir); err != nil {
			return fmt.Errorf("reset migrations: %w", err)
		}
		return nil
	})
}

// MigrationStatus logs the applied state of every migration through goose's logger.
func (r *Repository) MigrationStatus(ctx context.Context) error {
	db := r.sqlDB()
	defer db.Close()

	return withGoose(func() error {
		return goose.StatusContext(ctx, db, migrationsDir)
	})
}

// SchemaVersion returns the current migration version.
func (r *Repository) SchemaVersion(ctx context.Context) (int64, error) {
	db := r.sqlDB()
	defer db.Close()

	var version int64
	err := withGoose(func() error {
		v, err := goose.GetDBVersionContext(ctx, db)
		version = v
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}
