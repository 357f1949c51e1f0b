// Package main applies or inspects the database schema.
//
// Usage:
//
//	migrate [up|down|status|reset|version]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/glycoguard/glycoguard/internal/config"
	"github.com/glycoguard/glycoguard/internal/repository"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [up|down|status|reset|version]\n", os.Args[0])
	}
	flag.Parse()

	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := run(command, logger); err != nil {
		logger.Error("migration failed", "command", command, "error", err)
		os.Exit(1)
	}
}

func run(command string, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadDatabase()
	if err != nil {
		return err
	}

	repo, err := repository.New(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database %s: %s",
			config.RedactURL(cfg.DatabaseURL), config.SanitizeError(err, cfg.DatabaseURL))
	}
	defer repo.Close()

	switch command {
	case "up":
		err = repo.Migrate(ctx)
	case "down":
		err = repo.MigrateDown(ctx)
	case "reset":
		err = repo.MigrateReset(ctx)
	case "status":
		err = repo.MigrationStatus(ctx)
	case "version":
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
	if err != nil {
		return errors.New(config.SanitizeError(err, cfg.DatabaseURL))
	}

	version, err := repo.SchemaVersion(ctx)
	if err != nil {
		return errors.New(config.SanitizeError(err, cfg.DatabaseURL))
	}
	logger.Info("schema version", "command", command, "version", version)
	return nil
}
