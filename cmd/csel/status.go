package main

import (
	"database/sql"
	"fmt"
	"io"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/pthm/csel/internal/cli"
	"github.com/pthm/csel/pkg/migrator"
)

var (
	statusDB    string
	statusTable string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show search table status",
	Long:  `Show whether the search table exists, how many rows it holds and its last migration.`,
	Example: `  # Check status
  csel status --db postgres://localhost/mydb`,
	RunE: func(cmd *cobra.Command, args []string) error {
		table := resolveString(statusTable, cfg.Table())

		dsn, err := resolveDSN(statusDB)
		if err != nil {
			return err
		}

		db, err := sql.Open("postgres", dsn)
		if err != nil {
			return cli.DBConnectError("connecting to database", err)
		}
		defer func() { _ = db.Close() }()

		m := migrator.NewMigrator(db, table)
		s, err := m.GetStatus(cmd.Context())
		if err != nil {
			return cli.GeneralError("getting status", err)
		}

		renderStatus(cmd.OutOrStdout(), m.Table(), s)
		return nil
	},
}

func init() {
	f := statusCmd.Flags()
	f.StringVar(&statusDB, "db", "", "database URL")
	f.StringVar(&statusTable, "table", "", "search table (default from config)")
}

func renderStatus(w io.Writer, table string, s *migrator.Status) {
	if !s.TableExists {
		_, _ = fmt.Fprintf(w, "Search table:    %s (missing)\n", table)
		_, _ = fmt.Fprintln(w, "\nRun csel migrate to create it.")
		return
	}

	_, _ = fmt.Fprintf(w, "Search table:    %s (present)\n", table)
	_, _ = fmt.Fprintf(w, "Rows:            %d\n", s.Rows)
	if s.LastMigration == nil {
		_, _ = fmt.Fprintln(w, "Last migration:  none recorded")
		return
	}
	checksum := s.LastMigration.DDLChecksum
	if len(checksum) > 12 {
		checksum = checksum[:12]
	}
	_, _ = fmt.Fprintf(w, "Last migration:  checksum %s, DDL version %s\n", checksum, s.LastMigration.DDLVersion)
}
