package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/desertthunder/chalet/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase initializes the database and runs migrations.
//
// A missing config file is created from the embedded template first.
// With --rollback the most recent migration is reverted instead.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config := r.setupConfig(cmd.String("config"))
	path := shared.ExpandPath(config.Database.Path)

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.ConnectDatabase(config.Database)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer db.Close()

	if cmd.Bool("rollback") {
		m, err := shared.RollbackMigration(db, r.logger)
		if errors.Is(err, shared.ErrNoMigrations) {
			return r.writePlain("Nothing to roll back in %s\n", path)
		}
		if err != nil {
			return fmt.Errorf("failed to roll back database: %w", err)
		}
		return r.writePlain("✓ Rolled back %s in %s\n", m, path)
	}

	applied, err := shared.Migrate(db, r.logger)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	for _, m := range applied {
		if err := r.writePlain("  + %s\n", m); err != nil {
			return err
		}
	}

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return r.writePlain("✓ Database ready: %s (%d migrations applied)\n", path, len(applied))
}

// setupConfig loads the config at configPath, creating it from the template when missing.
// Any failure falls back to the defaults.
func (r *Runner) setupConfig(configPath string) *shared.Config {
	if _, err := os.Stat(configPath); err == nil {
		config, err := shared.LoadConfig(configPath)
		if err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			return shared.DefaultConfig()
		}
		return config
	}

	r.logger.Info("config file not found, creating from template", "path", configPath)
	if err := shared.CreateConfigFile(configPath); err != nil {
		r.logger.Warn("failed to create config file, using defaults", "error", err)
		return shared.DefaultConfig()
	}

	r.logger.Info("config file created", "path", configPath)
	config, err := shared.LoadConfig(configPath)
	if err != nil {
		r.logger.Warn("failed to load created config, using defaults", "error", err)
		return shared.DefaultConfig()
	}
	return config
}
