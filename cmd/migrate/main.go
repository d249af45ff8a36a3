// Package main is the entry point for the schema migration CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"sales_visits_backend/platform/config"
	"sales_visits_backend/platform/db"

	"github.com/spf13/cobra"
)

// migrationFunc applies one goose operation against the configured database.
type migrationFunc func(ctx context.Context, cfg config.DatabaseConfig) error

type migrator struct {
	up     migrationFunc
	down   migrationFunc
	status migrationFunc
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := migrator{up: db.RunMigrations, down: db.RollbackMigration, status: db.MigrationStatus}
	if err := newRootCmd(m, loadConfig).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func loadConfig() (config.DatabaseConfig, error) {
	return config.Load()
}

// newRootCmd creates the migrate command tree.
func newRootCmd(m migrator, load func() (config.DatabaseConfig, error)) *cobra.Command {
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the database schema",
		Long:          "Applies, reverts and reports the embedded goose migrations against DATABASE_URL.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newMigrationCmd("up", "Apply all pending migrations", "migrations applied", m.up, load),
		newMigrationCmd("down", "Revert the most recent migration", "last migration reverted", m.down, load),
		newMigrationCmd("status", "Show applied and pending migrations", "", m.status, load),
	)

	return root
}

func newMigrationCmd(use, short, done string, run migrationFunc, load func() (config.DatabaseConfig, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if err := run(cmd.Context(), cfg); err != nil {
				return fmt.Errorf("migrate %s: %w", use, err)
			}
			if done != "" {
				fmt.Fprintln(cmd.OutOrStdout(), done)
			}
			return nil
		},
	}
}
