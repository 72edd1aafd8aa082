// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// reportFlags are shared by the analysis commands.
func reportFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "apply",
			Usage: "Execute the proposed actions instead of only reporting them",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Report format (text, markdown, csv or json)",
			Value:   "text",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON (same as --format json)",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write the report to a file instead of stdout",
		},
	}
}

// setupCommand handles setup operations for the database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "config",
				Usage:  "Write a config file with default settings",
				Action: r.SetupConfig,
			},
			{
				Name:   "show",
				Usage:  "Print the effective configuration (file, defaults and environment)",
				Action: r.SetupShow,
			},
			{
				Name:   "status",
				Usage:  "Show applied and pending database migrations",
				Action: r.SetupStatus,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent database migration",
				Action: r.SetupRollback,
			},
		},
	}
}

// authCommand handles platform authentication
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage platform connections",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Connect Spotify or YouTube through the OAuth2 browser flow",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "platform"},
				},
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for the browser authorization",
						Value: defaultLoginTimeout,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "token",
				Usage: "Store an access token issued outside the browser flow (e.g. Deezer)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "platform"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "token",
						Usage:    "Access token",
						Sources:  cli.EnvVars("TUNESYNC_ACCESS_TOKEN"),
						Required: true,
					},
					&cli.StringFlag{
						Name:  "refresh-token",
						Usage: "Refresh token for OAuth platforms",
					},
				},
				Action: r.AuthToken,
			},
			{
				Name:  "logout",
				Usage: "Forget the stored token of a platform",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "platform"},
				},
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "List connected platforms and token expiry",
				Action: r.AuthStatus,
			},
		},
	}
}

// listFlags are shared by the list subcommands.
func listFlags(extra ...cli.Flag) []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:     "platform",
			Aliases:  []string{"p"},
			Usage:    "Platform to read (spotify, youtube or deezer)",
			Required: true,
		},
		&cli.IntFlag{
			Name:    "limit",
			Aliases: []string{"l"},
			Usage:   "Maximum number of entries to show (0 shows all)",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
		},
	}
	return append(flags, extra...)
}

// listCommand reads liked songs, playlists and playlist tracks from one platform
func listCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "Show liked songs and playlists of one platform",
		Commands: []*cli.Command{
			{
				Name:   "liked",
				Usage:  "List liked songs",
				Flags:  listFlags(),
				Action: r.ListLiked,
			},
			{
				Name:   "playlists",
				Usage:  "List playlists",
				Flags:  listFlags(),
				Action: r.ListPlaylists,
			},
			{
				Name:  "tracks",
				Usage: "List the tracks of a playlist",
				Flags: listFlags(&cli.StringFlag{
					Name:  "id",
					Usage: "Playlist ID",
				}),
				Action: r.ListTracks,
			},
		},
	}
}

// syncCommand handles liked song and playlist reconciliation
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Reconcile liked songs and playlists across platforms",
		Commands: []*cli.Command{
			{
				Name:   "liked",
				Usage:  "Propose likes for songs liked on another platform",
				Flags:  reportFlags(),
				Action: r.SyncLiked,
			},
			{
				Name:   "playlists",
				Usage:  "Propose missing playlists and tracks",
				Flags:  reportFlags(),
				Action: r.SyncPlaylists,
			},
			{
				Name:  "find",
				Usage: "Look up the native id of a song on one platform",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "platform",
						Aliases:  []string{"p"},
						Usage:    "Platform to search (spotify, youtube or deezer)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "isrc",
						Usage: "ISRC code, tried first",
					},
					&cli.StringFlag{
						Name:  "title",
						Usage: "Track title",
					},
					&cli.StringFlag{
						Name:  "artist",
						Usage: "Track artist",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.SyncFind,
			},
		},
	}
}

// historyCommand lists recorded sync runs
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recorded sync runs",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of runs to show",
				Value:   20,
			},
			&cli.StringFlag{
				Name:  "kind",
				Usage: "Only show liked or playlists runs",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (text, csv or json)",
				Value:   "text",
			},
		},
		Action: r.History,
	}
}

// tuiCommand returns the top-level TUI command for interactive review.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Review and apply proposed actions interactively",
		Action:  r.TUI,
	}
}
