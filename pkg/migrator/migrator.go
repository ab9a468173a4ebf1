package migrator

import (
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"text/template"

	"github.com/lib/pq"

	embedded "github.com/pthm/csel/sql"
)

// DefaultTable is the search table name used when none is configured.
const DefaultTable = "component_search"

// DDLVersion is incremented when the embedded search table template changes.
// This ensures migrations re-run even if the rendered checksum matches.
const DDLVersion = "1"

// TSVColumns are the generated full-text columns of the search table.
var TSVColumns = []string{"tsv_format", "tsv_namespace", "tsv_name", "tsv_version"}

var searchTemplate = template.Must(template.New("search").
	Funcs(template.FuncMap{"indexName": func(string) string { return "" }}).
	Parse(embedded.SearchTableTemplate))

// Options controls migration behavior.
type Options struct {
	// DryRun outputs SQL to the provided writer without applying changes to the database.
	DryRun io.Writer

	// Force re-applies the DDL even if it is unchanged since the last migration.
	Force bool
}

// MigrationRecord represents a row in the csel_migrations table.
type MigrationRecord struct {
	TableName   string
	DDLChecksum string
	DDLVersion  string
}

// Migrator creates the component search table in PostgreSQL.
// The migrator is idempotent - safe to run on every application startup.
//
//	m := migrator.NewMigrator(db, "component_search")
//	skipped, err := m.Migrate(ctx, migrator.Options{})
type Migrator struct {
	db     Execer
	table  string
	logger *slog.Logger
}

// NewMigrator creates a migrator for table. An empty table uses DefaultTable.
// The Execer is typically *sql.DB but can be *sql.Tx for testing.
func NewMigrator(db Execer, table string) *Migrator {
	if table == "" {
		table = DefaultTable
	}
	return &Migrator{db: db, table: table, logger: slog.Default()}
}

// WithLogger sets the logger used for migration progress. nil restores slog.Default().
func (m *Migrator) WithLogger(logger *slog.Logger) *Migrator {
	if logger == nil {
		logger = slog.Default()
	}
	m.logger = logger
	return m
}

// Table returns the unquoted search table name.
func (m *Migrator) Table() string {
	return m.table
}

// DDL renders the search table DDL for the configured table.
func (m *Migrator) DDL() (string, error) {
	return RenderDDL(m.table)
}

// RenderDDL renders the search table DDL for table. The table and index names
// are quoted as identifiers.
func RenderDDL(table string) (string, error) {
	tpl, err := searchTemplate.Clone()
	if err != nil {
		return "", fmt.Errorf("cloning search template: %w", err)
	}
	tpl.Funcs(template.FuncMap{
		"indexName": func(suffix string) string {
			return pq.QuoteIdentifier(table + "_" + suffix + "_idx")
		},
	})

	data := struct {
		Table      string
		TSVColumns []string
	}{
		Table:      pq.QuoteIdentifier(table),
		TSVColumns: TSVColumns,
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering search table DDL: %w", err)
	}
	return buf.String(), nil
}

// ComputeChecksum returns a SHA256 hash of rendered DDL.
func ComputeChecksum(ddl string) string {
	h := sha256.Sum256([]byte(ddl))
	return hex.EncodeToString(h[:])
}

// Migrate creates the search table and records the migration.
//
// Returns skipped=true when the DDL is unchanged since the last recorded
// migration of this table (only when Force is false and DryRun is nil).
// Uses a transaction if the db supports it (*sql.DB).
func (m *Migrator) Migrate(ctx context.Context, opts Options) (skipped bool, err error) {
	ddl, err := m.DDL()
	if err != nil {
		return false, err
	}
	checksum := ComputeChecksum(ddl)

	if opts.DryRun != nil {
		m.outputDryRun(opts.DryRun, checksum, ddl)
		return false, nil
	}

	if !opts.Force {
		last, err := m.getLastMigration(ctx, m.db)
		if err != nil {
			return false, fmt.Errorf("checking last migration: %w", err)
		}
		if shouldSkipMigration(last, checksum) {
			m.logger.Debug("search table unchanged, skipping migration", "table", m.table)
			return true, nil
		}
	}

	err = withTx(ctx, m.db, func(db Execer) error {
		return m.apply(ctx, db, ddl, checksum)
	})
	if err != nil {
		return false, err
	}

	m.logger.Info("search table migrated", "table", m.table, "checksum", checksum[:12])
	return false, nil
}

// withTx runs fn in a transaction when db can begin one (*sql.DB), and
// directly against db otherwise (*sql.Tx, *sql.Conn).
func withTx(ctx context.Context, db Execer, fn func(Execer) error) error {
	txer, ok := db.(txBeginner)
	if !ok {
		return fn(db)
	}

	tx, err := txer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

func (m *Migrator) apply(ctx context.Context, db Execer, ddl, checksum string) error {
	if _, err := db.ExecContext(ctx, embedded.MigrationsSQL); err != nil {
		return fmt.Errorf("applying migrations DDL: %w", err)
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("applying search table DDL: %w", err)
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO csel_migrations (table_name, ddl_checksum, ddl_version)
		VALUES ($1, $2, $3)
	`, m.table, checksum, DDLVersion)
	if err != nil {
		return fmt.Errorf("inserting migration record: %w", err)
	}
	return nil
}

// GetLastMigration returns the most recent migration record for the table,
// or nil if none exists.
func (m *Migrator) GetLastMigration(ctx context.Context) (*MigrationRecord, error) {
	return m.getLastMigration(ctx, m.db)
}

func (m *Migrator) getLastMigration(ctx context.Context, db Execer) (*MigrationRecord, error) {
	exists, err := relationExists(ctx, db, "csel_migrations")
	if err != nil {
		return nil, fmt.Errorf("checking csel_migrations table: %w", err)
	}
	if !exists {
		return nil, nil
	}

	rec := MigrationRecord{TableName: m.table}
	err = db.QueryRowContext(ctx, `
		SELECT ddl_checksum, ddl_version
		FROM csel_migrations
		WHERE table_name = $1
		ORDER BY id DESC
		LIMIT 1
	`, m.table).Scan(&rec.DDLChecksum, &rec.DDLVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying last migration: %w", err)
	}
	return &rec, nil
}

// shouldSkipMigration returns true if the DDL and its template version are unchanged.
func shouldSkipMigration(last *MigrationRecord, checksum string) bool {
	if last == nil {
		return false
	}
	return last.DDLChecksum == checksum && last.DDLVersion == DDLVersion
}

// Status represents the current migration state.
type Status struct {
	// TableExists indicates if the search table exists (table, view, or materialized view).
	TableExists bool

	// Rows is the number of rows in the search table, or zero if it does not exist.
	Rows int64

	// LastMigration is the most recent migration of the table, or nil.
	LastMigration *MigrationRecord
}

// GetStatus returns the current migration status.
// Useful for health checks or migration diagnostics.
func (m *Migrator) GetStatus(ctx context.Context) (*Status, error) {
	exists, err := relationExists(ctx, m.db, m.table)
	if err != nil {
		return nil, fmt.Errorf("checking %s: %w", m.table, err)
	}
	status := &Status{TableExists: exists}
	if !exists {
		return status, nil
	}

	err = m.db.QueryRowContext(ctx, "SELECT count(*) FROM "+pq.QuoteIdentifier(m.table)).Scan(&status.Rows)
	if err != nil {
		return nil, fmt.Errorf("counting rows in %s: %w", m.table, err)
	}

	status.LastMigration, err = m.getLastMigration(ctx, m.db)
	if err != nil {
		return nil, err
	}
	return status, nil
}

// relationExists reports whether a table, view or materialized view named
// name exists in the current schema.
func relationExists(ctx context.Context, db Execer, name string) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM pg_class c
			JOIN pg_namespace n ON n.oid = c.relnamespace
			WHERE c.relname = $1
			AND n.nspname = current_schema()
			AND c.relkind IN ('r', 'v', 'm', 'p')
		)
	`, name).Scan(&exists)
	return exists, err
}

// outputDryRun writes the migration SQL to the provided writer.
func (m *Migrator) outputDryRun(w io.Writer, checksum, ddl string) {
	_, _ = fmt.Fprintf(w, "-- csel migration (dry-run)\n")
	_, _ = fmt.Fprintf(w, "-- Table: %s\n", m.table)
	_, _ = fmt.Fprintf(w, "-- DDL checksum: %s\n", checksum)
	_, _ = fmt.Fprintf(w, "-- DDL version: %s\n", DDLVersion)
	_, _ = fmt.Fprintf(w, "\n")

	_, _ = fmt.Fprintf(w, "-- ============================================================\n")
	_, _ = fmt.Fprintf(w, "-- DDL: Migration Tracking Table\n")
	_, _ = fmt.Fprintf(w, "-- ============================================================\n\n")
	_, _ = fmt.Fprintf(w, "%s\n", embedded.MigrationsSQL)

	_, _ = fmt.Fprintf(w, "-- ============================================================\n")
	_, _ = fmt.Fprintf(w, "-- DDL: Search Table\n")
	_, _ = fmt.Fprintf(w, "-- ============================================================\n\n")
	_, _ = fmt.Fprintf(w, "%s\n", ddl)

	_, _ = fmt.Fprintf(w, "-- ============================================================\n")
	_, _ = fmt.Fprintf(w, "-- Migration Record\n")
	_, _ = fmt.Fprintf(w, "-- ============================================================\n\n")
	_, _ = fmt.Fprintf(w, "INSERT INTO csel_migrations (table_name, ddl_checksum, ddl_version)\n")
	_, _ = fmt.Fprintf(w, "VALUES (%s, '%s', '%s');\n", pq.QuoteLiteral(m.table), checksum, DDLVersion)
}
