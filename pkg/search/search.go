// Package search runs compiled CSEL filters against the component search table.
//
// Filters are compiled by pkg/compiler, rendered with positional placeholders
// and wrapped in a SELECT built with squirrel. Bound values only ever reach
// PostgreSQL as query arguments.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pthm/csel"
	"github.com/pthm/csel/pkg/compiler"
	"github.com/pthm/csel/pkg/migrator"
	"github.com/pthm/csel/pkg/selector"
)

// Querier is the subset of pgx used for searching.
// Implemented by *pgxpool.Pool, *pgx.Conn, and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DefaultAliases maps logical selector properties to search table columns.
func DefaultAliases() map[string]string {
	return map[string]string{
		"format":                "tsv_format",
		"namespace":             "tsv_namespace",
		"name":                  "tsv_name",
		"version":               "tsv_version",
		"coordinate.groupId":    "tsv_namespace",
		"coordinate.artifactId": "tsv_name",
		"coordinate.version":    "tsv_version",

		compiler.RepositoryProperty: "repository_name",
		compiler.PathProperty:       "paths",
	}
}

// DefaultOptions returns compiler options for the search table schema.
func DefaultOptions() compiler.Options {
	opts := compiler.DefaultOptions()
	opts.Aliases = DefaultAliases()
	return opts
}

// Config configures a Searcher.
type Config struct {
	// Table is the search table name. Defaults to migrator.DefaultTable.
	Table string

	// Options configures compilation. A zero value uses DefaultOptions.
	Options compiler.Options

	// Logger receives debug output. Defaults to slog.Default().
	Logger *slog.Logger
}

// Component is one row of the search table.
type Component struct {
	ID         int64   `db:"component_id"`
	Repository string  `db:"repository_name"`
	Format     string  `db:"format"`
	Namespace  *string `db:"namespace"`
	Name       string  `db:"name"`
	Version    *string `db:"version"`
	Paths      string  `db:"paths"`
}

var componentColumns = []string{
	"component_id", "repository_name", "format", "namespace", "name", "version", "paths",
}

// Request selects components.
type Request struct {
	// Filter is matched against every component. nil matches all.
	Filter selector.Node

	// Selectors restrict results to components some selector allows in its
	// repositories. nil applies no restriction; a non-nil slice with no
	// applicable selector fails with csel.ErrNoSelectors.
	Selectors []compiler.SelectorScope

	Limit  uint64
	Offset uint64
}

// Searcher executes requests against the search table.
type Searcher struct {
	db     Querier
	table  string
	opts   compiler.Options
	logger *slog.Logger
}

// New creates a Searcher.
func New(db Querier, cfg Config) *Searcher {
	s := &Searcher{
		db:     db,
		table:  cfg.Table,
		opts:   cfg.Options,
		logger: cfg.Logger,
	}
	if s.table == "" {
		s.table = migrator.DefaultTable
	}
	if isZero(s.opts) {
		s.opts = DefaultOptions()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Search returns the components matching req, ordered by component id.
func (s *Searcher) Search(ctx context.Context, req Request) ([]Component, error) {
	query, args, err := s.SelectSQL(req)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, s.queryError(err)
	}
	components, err := pgx.CollectRows(rows, pgx.RowToStructByName[Component])
	if err != nil {
		return nil, s.queryError(err)
	}
	return components, nil
}

// Count returns the number of components matching req. Limit and Offset are ignored.
func (s *Searcher) Count(ctx context.Context, req Request) (int64, error) {
	query, args, err := s.CountSQL(req)
	if err != nil {
		return 0, err
	}

	var n int64
	if err := s.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, s.queryError(err)
	}
	return n, nil
}

// SelectSQL returns the statement Search runs for req.
func (s *Searcher) SelectSQL(req Request) (string, []any, error) {
	b := sq.Select(componentColumns...).
		From(s.tableIdent()).
		OrderBy("component_id").
		PlaceholderFormat(sq.Dollar)

	where, err := s.where(req)
	if err != nil {
		return "", nil, err
	}
	if where != nil {
		b = b.Where(where)
	}
	if req.Limit > 0 {
		b = b.Limit(req.Limit)
	}
	if req.Offset > 0 {
		b = b.Offset(req.Offset)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("building search query: %w", err)
	}
	s.logger.Debug("search query", "sql", query, "params", len(args))
	return query, args, nil
}

// CountSQL returns the statement Count runs for req.
func (s *Searcher) CountSQL(req Request) (string, []any, error) {
	b := sq.Select("count(*)").
		From(s.tableIdent()).
		PlaceholderFormat(sq.Dollar)

	where, err := s.where(req)
	if err != nil {
		return "", nil, err
	}
	if where != nil {
		b = b.Where(where)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("building count query: %w", err)
	}
	s.logger.Debug("count query", "sql", query, "params", len(args))
	return query, args, nil
}

// where compiles the filter and selectors of req. It returns nil when
// neither is set.
func (s *Searcher) where(req Request) (sq.Sqlizer, error) {
	var conds sq.And

	if req.Filter != nil {
		frag, err := compiler.GenerateFilter(req.Filter, s.opts)
		if err != nil {
			return nil, fmt.Errorf("compiling filter: %w", err)
		}
		conds = append(conds, parenthesized(frag))
	}
	if req.Selectors != nil {
		frag, err := compiler.GenerateSelectorFilter(req.Selectors, s.opts)
		if err != nil {
			return nil, fmt.Errorf("compiling selectors: %w", err)
		}
		conds = append(conds, parenthesized(frag))
	}

	switch len(conds) {
	case 0:
		return nil, nil
	case 1:
		return conds[0], nil
	default:
		return conds, nil
	}
}

// parenthesized renders frag with "?" placeholders for squirrel, which
// renumbers them when the statement is built.
func parenthesized(frag compiler.Fragment) sq.Sqlizer {
	text, args := frag.Positional(compiler.Question)
	return sq.Expr("("+text+")", args...)
}

func isZero(o compiler.Options) bool {
	return o.Aliases == nil && o.PropertyPrefix == "" && o.ParameterPrefix == "" && o.ParameterNamePrefix == ""
}

func (s *Searcher) tableIdent() string {
	return pgx.Identifier{s.table}.Sanitize()
}

func (s *Searcher) queryError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case csel.PgUndefinedTable:
			return fmt.Errorf("%w: %s", csel.ErrMissingTable, s.table)
		case csel.PgUndefinedColumn:
			return fmt.Errorf("%w: %s", csel.ErrMissingColumn, pgErr.Message)
		}
	}
	return fmt.Errorf("querying %s: %w", s.table, err)
}
