package main

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/pthm/csel/internal/cli"
	"github.com/pthm/csel/internal/doctor"
)

var (
	doctorDB    string
	doctorTable string
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run health checks",
	Long: `Run health checks on search infrastructure: configuration, migration state,
the search table and its columns, and a probe query.`,
	Example: `  # Run health checks
  csel doctor --db postgres://localhost/mydb

  # Run with detailed output
  csel doctor --db postgres://localhost/mydb -v`,
	RunE: func(cmd *cobra.Command, args []string) error {
		table := resolveString(doctorTable, cfg.Table())
		details := verbose > 0 || cfg.Doctor.Verbose

		opts, err := cfg.CompilerOptions()
		if err != nil {
			return cli.ConfigError("compiler configuration", err)
		}

		dsn, err := resolveDSN(doctorDB)
		if err != nil {
			return err
		}

		db, err := sql.Open("postgres", dsn)
		if err != nil {
			return cli.DBConnectError("connecting to database", err)
		}
		defer func() { _ = db.Close() }()

		if err := db.PingContext(cmd.Context()); err != nil {
			return cli.DBConnectError("connecting to database", err)
		}

		w := cmd.OutOrStdout()
		if !quiet {
			_, _ = fmt.Fprintln(w, newStyles(w).heading.Render("csel doctor - Health Check"))
		}

		report, err := doctor.New(db, table, opts).Run(cmd.Context())
		if err != nil {
			return cli.GeneralError("running doctor", err)
		}

		report.Print(w, details)

		if report.HasErrors() {
			return cli.GeneralError("health checks failed", nil)
		}
		return nil
	},
}

func init() {
	f := doctorCmd.Flags()
	f.StringVar(&doctorDB, "db", "", "database URL")
	f.StringVar(&doctorTable, "table", "", "search table (default from config)")
}
