// Package doctor provides health checks for csel search infrastructure.
//
// The doctor command validates that compiled filters can run by checking the
// compiler configuration, migration state, the search table and its columns,
// and finally a probe query built by the compiler.
//
// Example usage:
//
//	d := doctor.New(db, "component_search", opts)
//	report, err := d.Run(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	report.Print(os.Stdout, true) // verbose=true
package doctor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"

	"github.com/lib/pq"

	"github.com/pthm/csel/pkg/compiler"
	"github.com/pthm/csel/pkg/migrator"
	"github.com/pthm/csel/pkg/selector"
)

// Status represents the result of a health check.
type Status int

const (
	// StatusPass indicates the check passed.
	StatusPass Status = iota
	// StatusWarn indicates a non-critical issue.
	StatusWarn
	// StatusFail indicates a critical issue that will cause failures.
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// Symbol returns a status indicator symbol for terminal output.
func (s Status) Symbol() string {
	switch s {
	case StatusPass:
		return "✓"
	case StatusWarn:
		return "⚠"
	case StatusFail:
		return "✗"
	default:
		return "?"
	}
}

// CheckResult represents the outcome of a single health check.
type CheckResult struct {
	// Category groups related checks (e.g., "Configuration", "Search Table").
	Category string

	// Name is a short identifier for the check.
	Name string

	// Status is the check outcome.
	Status Status

	// Message is a human-readable description of the result.
	Message string

	// Details provides additional information for verbose output.
	Details string

	// FixHint suggests how to resolve issues.
	FixHint string
}

// Report contains all health check results.
type Report struct {
	Checks []CheckResult

	// Summary counts.
	Passed   int
	Warnings int
	Errors   int
}

// AddCheck adds a check result and updates summary counts.
func (r *Report) AddCheck(check CheckResult) {
	r.Checks = append(r.Checks, check)
	switch check.Status {
	case StatusPass:
		r.Passed++
	case StatusWarn:
		r.Warnings++
	case StatusFail:
		r.Errors++
	}
}

// Print writes the report to the given writer.
func (r *Report) Print(w io.Writer, verbose bool) {
	categories := make(map[string][]CheckResult)
	var categoryOrder []string
	for _, check := range r.Checks {
		if _, exists := categories[check.Category]; !exists {
			categoryOrder = append(categoryOrder, check.Category)
		}
		categories[check.Category] = append(categories[check.Category], check)
	}

	for _, cat := range categoryOrder {
		_, _ = fmt.Fprintf(w, "\n%s\n", cat)
		for _, check := range categories[cat] {
			_, _ = fmt.Fprintf(w, "  %s %s\n", check.Status.Symbol(), check.Message)
			if verbose && check.Details != "" {
				for _, line := range strings.Split(check.Details, "\n") {
					_, _ = fmt.Fprintf(w, "      %s\n", line)
				}
			}
			if check.Status != StatusPass && check.FixHint != "" {
				_, _ = fmt.Fprintf(w, "      Fix: %s\n", check.FixHint)
			}
		}
	}

	_, _ = fmt.Fprintf(w, "\nSummary: %d passed, %d warnings, %d errors\n",
		r.Passed, r.Warnings, r.Errors)
}

// HasErrors returns true if any check failed.
func (r *Report) HasErrors() bool {
	return r.Errors > 0
}

// Doctor performs health checks on the csel search infrastructure.
type Doctor struct {
	db    *sql.DB
	table string
	opts  compiler.Options

	// Cached data from checks (populated during Run)
	tableInfo *TableInfo
}

// TableInfo contains information about the search table.
type TableInfo struct {
	Exists     bool
	RelKind    string // 'r' = table, 'v' = view, 'm' = materialized view, 'p' = partitioned table
	RelKindStr string // human-readable

	// Columns maps column name to its type name (pg_type.typname).
	Columns map[string]string
}

// New creates a new Doctor instance.
func New(db *sql.DB, table string, opts compiler.Options) *Doctor {
	if table == "" {
		table = migrator.DefaultTable
	}
	return &Doctor{
		db:    db,
		table: table,
		opts:  opts,
	}
}

// Run executes all health checks and returns a report.
func (d *Doctor) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	d.checkConfiguration(report)
	if err := d.checkMigrationState(ctx, report); err != nil {
		return nil, fmt.Errorf("checking migration state: %w", err)
	}
	if err := d.checkSearchTable(ctx, report); err != nil {
		return nil, fmt.Errorf("checking search table: %w", err)
	}
	d.checkColumns(report)
	d.checkProbeQuery(ctx, report)

	return report, nil
}

// CheckConfiguration runs only the checks that need no database.
func (d *Doctor) CheckConfiguration() *Report {
	report := &Report{}
	d.checkConfiguration(report)
	return report
}

// checkConfiguration validates aliases and prefixes.
func (d *Doctor) checkConfiguration(report *Report) {
	const category = "Configuration"

	if d.opts.ParameterPrefix == "" || d.opts.ParameterNamePrefix == "" {
		report.AddCheck(CheckResult{
			Category: category,
			Name:     "parameters",
			Status:   StatusFail,
			Message:  "Parameter prefix and parameter name prefix must both be set",
			Details:  fmt.Sprintf("parameter_prefix=%q parameter_name_prefix=%q", d.opts.ParameterPrefix, d.opts.ParameterNamePrefix),
			FixHint:  "Set compiler.parameter_prefix (e.g. \":\") and compiler.parameter_name_prefix (e.g. \"param_\")",
		})
	} else {
		report.AddCheck(CheckResult{
			Category: category,
			Name:     "parameters",
			Status:   StatusPass,
			Message:  fmt.Sprintf("Parameters render as %s%s0", d.opts.ParameterPrefix, d.opts.ParameterNamePrefix),
		})
	}

	if _, ok := d.opts.Aliases[compiler.PathProperty]; !ok {
		report.AddCheck(CheckResult{
			Category: category,
			Name:     "path_alias",
			Status:   StatusWarn,
			Message:  "No alias configured for the path property",
			Details:  fmt.Sprintf("Regex comparisons will match against %q", d.opts.PropertyPrefix+compiler.PathProperty),
			FixHint:  "Add a compiler.aliases entry for property \"path\"",
		})
	} else {
		report.AddCheck(CheckResult{
			Category: category,
			Name:     "path_alias",
			Status:   StatusPass,
			Message:  fmt.Sprintf("Regex comparisons match %s", d.opts.Aliases[compiler.PathProperty]),
		})
	}

	report.AddCheck(CheckResult{
		Category: category,
		Name:     "aliases",
		Status:   StatusPass,
		Message:  fmt.Sprintf("%d property aliases configured", len(d.opts.Aliases)),
		Details:  formatAliases(d.opts.Aliases),
	})
}

// checkMigrationState validates the migration tracking table and state.
func (d *Doctor) checkMigrationState(ctx context.Context, report *Report) error {
	const category = "Migration State"
	m := migrator.NewMigrator(d.db, d.table)

	lastMigration, err := m.GetLastMigration(ctx)
	if err != nil {
		return fmt.Errorf("getting last migration: %w", err)
	}

	if lastMigration == nil {
		report.AddCheck(CheckResult{
			Category: category,
			Name:     "migrated",
			Status:   StatusWarn,
			Message:  fmt.Sprintf("No migration records found for %s", d.table),
			Details:  "The table may have been created outside csel",
			FixHint:  "Run 'csel migrate' to create and track the search table",
		})
		return nil
	}

	report.AddCheck(CheckResult{
		Category: category,
		Name:     "migrated",
		Status:   StatusPass,
		Message:  fmt.Sprintf("%s migrated (DDL version %s)", d.table, lastMigration.DDLVersion),
	})

	ddl, err := m.DDL()
	if err != nil {
		return err
	}
	currentChecksum := migrator.ComputeChecksum(ddl)

	switch {
	case lastMigration.DDLVersion != migrator.DDLVersion:
		report.AddCheck(CheckResult{
			Category: category,
			Name:     "ddl_sync",
			Status:   StatusWarn,
			Message:  "DDL version has changed",
			Details:  fmt.Sprintf("Current: %s, DB: %s", migrator.DDLVersion, lastMigration.DDLVersion),
			FixHint:  "Run 'csel migrate' to apply the new DDL",
		})
	case currentChecksum != lastMigration.DDLChecksum:
		report.AddCheck(CheckResult{
			Category: category,
			Name:     "ddl_sync",
			Status:   StatusWarn,
			Message:  "Search table DDL has changed since last migration",
			Details:  fmt.Sprintf("Current checksum: %s...\nDB checksum:      %s...", currentChecksum[:16], shortChecksum(lastMigration.DDLChecksum)),
			FixHint:  "Run 'csel migrate' to apply changes",
		})
	default:
		report.AddCheck(CheckResult{
			Category: category,
			Name:     "ddl_sync",
			Status:   StatusPass,
			Message:  "Search table DDL is in sync with database",
		})
	}

	return nil
}

// checkSearchTable validates the search table exists and has data.
func (d *Doctor) checkSearchTable(ctx context.Context, report *Report) error {
	const category = "Search Table"

	info, err := d.getTableInfo(ctx)
	if err != nil {
		return fmt.Errorf("getting table info: %w", err)
	}
	d.tableInfo = info

	if !info.Exists {
		report.AddCheck(CheckResult{
			Category: category,
			Name:     "exists",
			Status:   StatusFail,
			Message:  fmt.Sprintf("%s does not exist", d.table),
			FixHint:  "Run 'csel migrate' or set search.table to an existing table",
		})
		return nil
	}

	report.AddCheck(CheckResult{
		Category: category,
		Name:     "exists",
		Status:   StatusPass,
		Message:  fmt.Sprintf("%s exists (%s)", d.table, info.RelKindStr),
	})

	var count int64
	err = d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+pq.QuoteIdentifier(d.table)).Scan(&count)
	if err != nil {
		report.AddCheck(CheckResult{
			Category: category,
			Name:     "data",
			Status:   StatusWarn,
			Message:  fmt.Sprintf("Could not query %s", d.table),
			Details:  describePgError(err),
		})
		return nil
	}

	if count == 0 {
		report.AddCheck(CheckResult{
			Category: category,
			Name:     "data",
			Status:   StatusWarn,
			Message:  fmt.Sprintf("%s is empty", d.table),
			Details:  "Every search will return no components",
		})
	} else {
		report.AddCheck(CheckResult{
			Category: category,
			Name:     "data",
			Status:   StatusPass,
			Message:  fmt.Sprintf("%s contains %d components", d.table, count),
		})
	}

	if info.RelKind == "m" {
		report.AddCheck(CheckResult{
			Category: category,
			Name:     "refresh",
			Status:   StatusWarn,
			Message:  fmt.Sprintf("%s is a materialized view", d.table),
			Details:  "Materialized views require manual refresh to see data changes",
			FixHint:  "Ensure you have a refresh strategy (e.g., REFRESH MATERIALIZED VIEW CONCURRENTLY)",
		})
	}

	return nil
}

// checkColumns validates every alias target exists with a usable type.
func (d *Doctor) checkColumns(report *Report) {
	const category = "Columns"

	if d.tableInfo == nil || !d.tableInfo.Exists {
		return // Already reported in table check
	}

	problems := ColumnProblems(d.opts.Aliases, d.tableInfo.Columns)
	if len(problems) > 0 {
		report.AddCheck(CheckResult{
			Category: category,
			Name:     "aliases",
			Status:   StatusFail,
			Message:  fmt.Sprintf("%d alias columns are missing or mistyped", len(problems)),
			Details:  strings.Join(problems, "\n"),
			FixHint:  "Fix compiler.aliases or run 'csel migrate' against a fresh table",
		})
		return
	}

	report.AddCheck(CheckResult{
		Category: category,
		Name:     "aliases",
		Status:   StatusPass,
		Message:  "All alias columns present with expected types",
	})
}

// textTypes are the column types accepted for regex and repository matching.
var textTypes = []string{"text", "varchar", "bpchar"}

// ColumnProblems returns one line per alias whose column is missing from
// columns or has the wrong type. The path and repository columns must be
// text; every other alias must be a tsvector.
func ColumnProblems(aliases map[string]string, columns map[string]string) []string {
	var problems []string
	for _, property := range sortedKeys(aliases) {
		column := aliases[property]
		typ, ok := columns[column]
		if !ok {
			problems = append(problems, fmt.Sprintf("%s: column %s does not exist", property, column))
			continue
		}

		switch property {
		case compiler.PathProperty, compiler.RepositoryProperty:
			if !slices.Contains(textTypes, typ) {
				problems = append(problems, fmt.Sprintf("%s: column %s is %s, want text", property, column, typ))
			}
		default:
			if typ != "tsvector" {
				problems = append(problems, fmt.Sprintf("%s: column %s is %s, want tsvector", property, column, typ))
			}
		}
	}
	return problems
}

// checkProbeQuery plans a compiled filter touching every operator.
func (d *Doctor) checkProbeQuery(ctx context.Context, report *Report) {
	const category = "Probe Query"

	if d.tableInfo == nil || !d.tableInfo.Exists {
		return
	}

	probe := selector.And(
		selector.Or(selector.Eq("format", "probe"), selector.Prefix("name", "probe")),
		selector.Or(selector.Neq("version", "probe"), selector.Regex(compiler.PathProperty, "^/probe")),
	)
	frag, err := compiler.GenerateFilter(probe, d.opts)
	if err != nil {
		report.AddCheck(CheckResult{
			Category: category,
			Name:     "compile",
			Status:   StatusFail,
			Message:  "Probe expression failed to compile",
			Details:  err.Error(),
		})
		return
	}

	text, args := frag.Positional(compiler.Dollar)
	query := "EXPLAIN SELECT 1 FROM " + pq.QuoteIdentifier(d.table) + " WHERE " + text
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		report.AddCheck(CheckResult{
			Category: category,
			Name:     "plan",
			Status:   StatusFail,
			Message:  "PostgreSQL rejected the compiled filter",
			Details:  describePgError(err) + "\n" + text,
			FixHint:  "Check compiler.aliases and compiler.property_prefix against the table columns",
		})
		return
	}
	_ = rows.Close()

	report.AddCheck(CheckResult{
		Category: category,
		Name:     "plan",
		Status:   StatusPass,
		Message:  "Compiled filters are accepted by PostgreSQL",
		Details:  text,
	})
}

// getTableInfo retrieves information about the search table.
func (d *Doctor) getTableInfo(ctx context.Context) (*TableInfo, error) {
	info := &TableInfo{Columns: map[string]string{}}

	var relKind string
	err := d.db.QueryRowContext(ctx, `
		SELECT c.relkind
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE c.relname = $1
		AND n.nspname = current_schema()
		AND c.relkind IN ('r', 'v', 'm', 'p')
	`, d.table).Scan(&relKind)

	if errors.Is(err, sql.ErrNoRows) {
		return info, nil
	}
	if err != nil {
		return nil, err
	}

	info.Exists = true
	info.RelKind = relKind
	switch relKind {
	case "r":
		info.RelKindStr = "table"
	case "v":
		info.RelKindStr = "view"
	case "m":
		info.RelKindStr = "materialized view"
	case "p":
		info.RelKindStr = "partitioned table"
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT a.attname, t.typname
		FROM pg_attribute a
		JOIN pg_class c ON a.attrelid = c.oid
		JOIN pg_namespace n ON c.relnamespace = n.oid
		JOIN pg_type t ON a.atttypid = t.oid
		WHERE c.relname = $1
		AND n.nspname = current_schema()
		AND a.attnum > 0
		AND NOT a.attisdropped
		ORDER BY a.attnum
	`, d.table)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var col, typ string
		if err := rows.Scan(&col, &typ); err != nil {
			return nil, err
		}
		info.Columns[col] = typ
	}

	return info, rows.Err()
}

// describePgError renders err with its SQLSTATE when it came from PostgreSQL.
func describePgError(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Sprintf("%s (SQLSTATE %s %s)", pqErr.Message, pqErr.Code, pqErr.Code.Name())
	}
	return err.Error()
}

func formatAliases(aliases map[string]string) string {
	lines := make([]string, 0, len(aliases))
	for _, k := range sortedKeys(aliases) {
		lines = append(lines, fmt.Sprintf("%s -> %s", k, aliases[k]))
	}
	return strings.Join(lines, "\n")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func shortChecksum(s string) string {
	if len(s) > 16 {
		return s[:16]
	}
	return s
}
