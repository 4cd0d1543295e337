package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/hszk-dev/vidvault/internal/config"
	"github.com/hszk-dev/vidvault/internal/infrastructure/postgres/migrations"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	migrations.SetLogger(logger)

	app := &cli.Command{
		Name:  "migrate",
		Usage: "Manage the vidvault database schema",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dsn",
				Usage:   "PostgreSQL connection URL; defaults to one built from POSTGRES_* variables",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("verbose") {
				logger.SetLevel(log.DebugLevel)
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Apply all pending migrations",
				Action: withDB(logger, func(ctx context.Context, db *sql.DB) error {
					if err := migrations.Up(ctx, db); err != nil {
						return err
					}
					logger.Info("schema is up to date")
					return nil
				}),
			},
			{
				Name:  "down",
				Usage: "Roll back the most recent migration",
				Action: withDB(logger, func(ctx context.Context, db *sql.DB) error {
					if err := migrations.Down(ctx, db); err != nil {
						return err
					}
					logger.Info("rolled back one migration")
					return nil
				}),
			},
			{
				Name:   "status",
				Usage:  "Show the state of every migration",
				Action: withDB(logger, migrations.Status),
			},
			{
				Name:  "version",
				Usage: "Print the current schema version",
				Action: withDB(logger, func(ctx context.Context, db *sql.DB) error {
					v, err := migrations.Version(ctx, db)
					if err != nil {
						return err
					}
					fmt.Println(v)
					return nil
				}),
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatal("migration failed", "error", err)
	}
}

// withDB opens the database for the duration of one subcommand.
func withDB(logger *log.Logger, fn func(ctx context.Context, db *sql.DB) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		dsn := cmd.String("dsn")
		if dsn == "" {
			dbCfg, err := config.LoadDatabase()
			if err != nil {
				return err
			}
			dsn = dbCfg.DSN()
		}

		db, err := migrations.Open(dsn)
		if err != nil {
			return err
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Warn("failed to close database", "error", err)
			}
		}()

		logger.Debug("running migration command", "command", cmd.Name)
		return fn(ctx, db)
	}
}
