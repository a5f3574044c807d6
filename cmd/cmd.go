// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func jsonFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "Output raw JSON",
	}
}

// filterFlags are shared by the listing and export commands.
func filterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "query",
			Aliases: []string{"q"},
			Usage:   "Match name, location, or description",
		},
		&cli.StringFlag{
			Name:  "location",
			Usage: "Match location only",
		},
		&cli.IntFlag{
			Name:  "min-bedrooms",
			Usage: "Minimum number of bedrooms",
		},
		&cli.IntFlag{
			Name:  "min-guests",
			Usage: "Minimum guest capacity",
		},
		&cli.FloatFlag{
			Name:  "max-price",
			Usage: "Maximum nightly price",
		},
	}
}

// setupCommand handles setup operations for the local database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Revert the most recently applied migration",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the marketplace session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in with email and password",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Account email",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "password",
						Aliases: []string{"p"},
						Usage:   "Account password (prompted when omitted)",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "google",
				Usage: "Sign in with Google in the browser",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for the browser callback",
					},
				},
				Action: r.AuthGoogle,
			},
			{
				Name:   "logout",
				Usage:  "End the session",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show the current session",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.AuthStatus,
			},
		},
	}
}

// chaletsCommand handles catalog operations
func chaletsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "chalets",
		Aliases: []string{"c"},
		Usage:   "Browse and export the chalet catalog",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List chalets, one page at a time",
				Flags: append(filterFlags(),
					&cli.IntFlag{
						Name:  "page",
						Usage: "Page number",
						Value: 1,
					},
					&cli.IntFlag{
						Name:  "per-page",
						Usage: "Chalets per page (default: ui.page_size)",
					},
					jsonFlag(),
				),
				Action: r.ChaletsList,
			},
			{
				Name:  "show",
				Usage: "Show one chalet",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					jsonFlag(),
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open the cover image in the browser",
					},
				},
				Action: r.ChaletsShow,
			},
			{
				Name:  "export",
				Usage: "Export chalets to json, csv, markdown, or txt",
				Flags: append(filterFlags(),
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: json, csv, markdown, txt",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: chalet_export_{timestamp})",
					},
					&cli.StringFlag{
						Name:  "title",
						Usage: "Markdown index title",
						Value: "Chalets",
					},
					&cli.StringSliceFlag{
						Name:  "id",
						Usage: "Export only these chalet ids (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "detailed",
						Usage: "Fetch full details for every chalet",
					},
					&cli.BoolFlag{
						Name:  "covers",
						Usage: "Markdown only: download cover images",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent detail fetches (max 10)",
						Value: 4,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Detail fetches per second",
						Value: 5,
					},
				),
				Action: r.ChaletsExport,
			},
		},
	}
}

// favoritesCommand handles favorite operations
func favoritesCommand(r *Runner) *cli.Command {
	idArg := func() []cli.Argument {
		return []cli.Argument{&cli.StringArg{Name: "id"}}
	}

	return &cli.Command{
		Name:    "favorites",
		Aliases: []string{"fav"},
		Usage:   "Manage liked chalets",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List liked chalets",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "remote",
						Usage: "List the backend's favorites instead of this device's",
					},
					jsonFlag(),
				},
				Action: r.FavoritesList,
			},
			{
				Name:      "like",
				Usage:     "Like a chalet",
				Arguments: idArg(),
				Action:    r.FavoritesLike,
			},
			{
				Name:      "unlike",
				Usage:     "Remove a chalet from favorites",
				Arguments: idArg(),
				Action:    r.FavoritesUnlike,
			},
			{
				Name:   "sync",
				Usage:  "Replace this device's favorites with the backend's",
				Action: r.FavoritesSync,
			},
			{
				Name:   "watch",
				Usage:  "Print favorite changes made by other processes",
				Action: r.FavoritesWatch,
			},
		},
	}
}

// contactCommand handles inquiries
func contactCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "contact",
		Usage: "Contact the marketplace",
		Commands: []*cli.Command{
			{
				Name:  "send",
				Usage: "Send an inquiry, optionally about a chalet",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Your name",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "email",
						Usage:    "Reply address",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "phone",
						Usage: "Phone number",
					},
					&cli.StringFlag{
						Name:     "message",
						Aliases:  []string{"m"},
						Usage:    "Message (at least 10 characters)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "chalet",
						Usage: "Chalet id the inquiry is about",
					},
				},
				Action: r.ContactSend,
			},
		},
	}
}

// dashboardCommand shows the admin or user dashboard
func dashboardCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "dashboard",
		Usage:  "Show the dashboard for the signed-in account",
		Flags:  []cli.Flag{jsonFlag()},
		Action: r.Dashboard,
	}
}

// tuiCommand returns the top-level TUI command for interactive browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive catalog browser",
		Action:  r.TUI,
	}
}
