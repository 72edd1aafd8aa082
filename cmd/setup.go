package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunesync/internal/shared"
	"github.com/urfave/cli/v3"
)

// Configure loads the dotenv file and the configuration before any command runs.
//
// A missing config file falls back to the defaults with environment overrides applied.
func (r *Runner) Configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if err := shared.LoadEnvFile(cmd.String("env-file")); err != nil {
		return ctx, err
	}

	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	configPath := cmd.String("config")
	config, err := shared.LoadConfig(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		r.logger.Debug("config file not found, using defaults", "path", configPath)
		config = shared.DefaultConfig()
		if err := config.ApplyEnv(); err != nil {
			return ctx, err
		}
	case err != nil:
		return ctx, err
	}

	if err := config.Validate(); err != nil {
		return ctx, err
	}

	r.config = config
	r.configPath = configPath
	return ctx, nil
}

// Shutdown closes the database and token store connections.
func (r *Runner) Shutdown(ctx context.Context, cmd *cli.Command) error {
	return r.Close()
}

// SetupDatabase initializes the database and runs migrations.
//
// A config file is created from the template when none exists.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	if r.configPath != "" {
		if _, err := os.Stat(r.configPath); errors.Is(err, fs.ErrNotExist) {
			r.logger.Info("config file not found, creating from template", "path", r.configPath)
			if err := shared.CreateConfigFile(r.configPath); err != nil {
				r.logger.Warn("failed to create config file, using defaults", "error", err)
			}
		}
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)
	if err := r.openDatabase(); err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return r.SetupStatus(ctx, cmd)
}

// SetupConfig writes the default config file.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	if r.configPath == "" {
		return fmt.Errorf("%w: --config", shared.ErrMissingArgument)
	}
	if err := shared.CreateConfigFile(r.configPath); err != nil {
		return err
	}

	r.writePlain("✓ Config written to %s\n", r.configPath)
	r.writePlainln("Next steps:")
	r.writePlain("1. Add your Spotify and YouTube client credentials under [credentials]\n")
	r.writePlain("2. Run 'tunesync setup database'\n")
	r.writePlain("3. Run 'tunesync auth login spotify' (and youtube, or 'auth token deezer')\n")
	return nil
}

// SetupShow prints the effective configuration as TOML.
func (r *Runner) SetupShow(ctx context.Context, cmd *cli.Command) error {
	return r.config.Encode(r.output)
}

// SetupStatus lists migrations with their applied state.
func (r *Runner) SetupStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.openDatabase(); err != nil {
		return err
	}

	states, err := shared.MigrationStatus(r.db)
	if err != nil {
		return err
	}

	r.writePlainHeader("Migrations")
	for _, s := range states {
		if s.Applied {
			r.writePlain("✓ %04d %s (applied %s)\n", s.Version, s.Name, s.AppliedAt.Format("2006-01-02 15:04:05"))
		} else {
			r.writePlain("✗ %04d %s (pending)\n", s.Version, s.Name)
		}
	}
	return nil
}

// SetupRollback rolls back the most recent migration.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	if r.db == nil {
		db, err := shared.NewDatabase(r.config.Database.Path)
		if err != nil {
			return err
		}
		r.closers = append(r.closers, db)
		r.useDatabase(db)
	}

	if err := shared.RollbackMigration(r.db); err != nil {
		return err
	}
	r.logger.Info("rolled back latest migration", "path", r.config.Database.Path)
	return r.SetupStatus(ctx, cmd)
}
