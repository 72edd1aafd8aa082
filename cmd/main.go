package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/tunesync/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	if err := newApp(runner).Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrTokenNotFound) || errors.Is(err, shared.ErrNotAuthenticated) {
			logger.Error("not connected", "hint", "run 'tunesync auth login <platform>'")
		}
		logger.Fatalf("application error: %v", err)
	}
}

// newApp builds the root command. Configuration is loaded in Before, so flags and
// environment are read before any subcommand touches the runner.
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tunesync",
		Usage:   "Keep liked songs and playlists in sync across Spotify, YouTube & Deezer",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
				Sources: cli.EnvVars("TUNESYNC_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Dotenv file loaded before the configuration",
				Value: ".env",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Before:   r.Configure,
		After:    r.Shutdown,
		Commands: r.register(),
	}
}
