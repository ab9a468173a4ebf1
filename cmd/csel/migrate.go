package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/pthm/csel/internal/cli"
	"github.com/pthm/csel/pkg/migrator"
)

var (
	migrateDB     string
	migrateTable  string
	migrateDryRun bool
	migrateForce  bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the search table",
	Long:  `Create the component search table and its full-text indexes in PostgreSQL.`,
	Example: `  # Create the search table
  csel migrate --db postgres://localhost/mydb

  # Preview migration without applying
  csel migrate --db postgres://localhost/mydb --dry-run

  # Force re-apply even if the DDL is unchanged
  csel migrate --db postgres://localhost/mydb --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		table := resolveString(migrateTable, cfg.Table())
		dryRun := resolveBool(migrateDryRun, cfg.Migrate.DryRun)
		force := resolveBool(migrateForce, cfg.Migrate.Force)

		if dryRun {
			// Dry-run needs no connection.
			return runMigrate(cmd.Context(), nil, table, true, force)
		}

		dsn, err := resolveDSN(migrateDB)
		if err != nil {
			return err
		}
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			return cli.DBConnectError("connecting to database", err)
		}
		defer func() { _ = db.Close() }()

		return runMigrate(cmd.Context(), db, table, false, force)
	},
}

func init() {
	f := migrateCmd.Flags()
	f.StringVar(&migrateDB, "db", "", "database URL")
	f.StringVar(&migrateTable, "table", "", "search table (default from config)")
	f.BoolVar(&migrateDryRun, "dry-run", false, "output migration SQL without applying")
	f.BoolVar(&migrateForce, "force", false, "force migration even if the DDL is unchanged")
}

func runMigrate(ctx context.Context, db *sql.DB, table string, dryRun, force bool) error {
	var exec migrator.Execer
	if db != nil {
		exec = db
	}
	m := migrator.NewMigrator(exec, table)

	opts := migrator.Options{Force: force}
	if dryRun {
		opts.DryRun = os.Stdout
		if !quiet {
			fmt.Fprintln(os.Stderr, "-- Dry-run mode: SQL will be output but not applied")
			fmt.Fprintln(os.Stderr, "")
		}
	} else if !quiet {
		fmt.Printf("Migrating search table %s...\n", m.Table())
	}

	skipped, err := m.Migrate(ctx, opts)
	if err != nil {
		return cli.GeneralError("migration failed", err)
	}

	if dryRun || quiet {
		return nil
	}
	if skipped {
		fmt.Println("Search table unchanged, migration skipped.")
		fmt.Println("Use --force to re-apply.")
	} else {
		fmt.Println("Search table migrated successfully.")
	}
	return nil
}
