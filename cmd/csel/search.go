package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/pthm/csel"
	"github.com/pthm/csel/internal/cli"
	"github.com/pthm/csel/pkg/compiler"
	"github.com/pthm/csel/pkg/search"
	"github.com/pthm/csel/pkg/selector"
)

var (
	searchDB           string
	searchTable        string
	searchRepositories []string
	searchLimit        uint64
	searchOffset       uint64
	searchCount        bool
)

var searchCmd = &cobra.Command{
	Use:   "search <expression>",
	Short: "Find components matching an expression",
	Long: `Run an expression against the component search table.

With --repository the expression is applied as a content selector scoped to
those repositories instead of as a plain filter.`,
	Example: `  # List maven components under org/apache
  csel search --db postgres://localhost/mydb 'format == "maven2" && path =~ "^/org/apache/.*"'

  # Count matches in two repositories
  csel search --count --repository central --repository releases 'name =^ "commons"'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn, err := resolveDSN(searchDB)
		if err != nil {
			return err
		}
		opts, err := cfg.CompilerOptions()
		if err != nil {
			return cli.ConfigError("compiler configuration", err)
		}

		node, err := selector.Parse(args[0])
		if err != nil {
			return cli.ExpressionError("parsing expression", err)
		}
		req := buildSearchRequest(node, searchRepositories)
		req.Limit = searchLimit
		req.Offset = searchOffset

		return runSearch(cmd.Context(), cmd.OutOrStdout(), dsn, resolveString(searchTable, cfg.Table()), opts, req)
	},
}

func init() {
	f := searchCmd.Flags()
	f.StringVar(&searchDB, "db", "", "database URL")
	f.StringVar(&searchTable, "table", "", "search table (default from config)")
	f.StringArrayVar(&searchRepositories, "repository", nil, "scope the expression to a repository (repeatable)")
	f.Uint64Var(&searchLimit, "limit", 50, "maximum number of rows (0 for no limit)")
	f.Uint64Var(&searchOffset, "offset", 0, "number of rows to skip")
	f.BoolVar(&searchCount, "count", false, "print the number of matches only")
}

// buildSearchRequest applies node as a filter, or as a selector when
// repositories are given.
func buildSearchRequest(node selector.Node, repositories []string) search.Request {
	if len(repositories) == 0 {
		return search.Request{Filter: node}
	}
	return search.Request{
		Selectors: []compiler.SelectorScope{{
			Name:         "cli",
			Expression:   node,
			Repositories: repositories,
		}},
	}
}

func runSearch(ctx context.Context, w io.Writer, dsn, table string, opts compiler.Options, req search.Request) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return cli.DBConnectError("connecting to database", err)
	}
	defer pool.Close()

	s := search.New(pool, search.Config{Table: table, Options: opts, Logger: slog.Default()})

	if searchCount {
		n, err := s.Count(ctx, req)
		if err != nil {
			return searchError(err)
		}
		_, _ = fmt.Fprintln(w, n)
		return nil
	}

	components, err := s.Search(ctx, req)
	if err != nil {
		return searchError(err)
	}
	renderComponents(w, components)
	return nil
}

func searchError(err error) error {
	switch {
	case csel.IsMissingTableErr(err):
		return cli.GeneralError("search table not found (run csel migrate)", err)
	case csel.IsMissingColumnErr(err):
		return cli.ConfigError("alias names a missing column", err)
	case csel.IsUnsupportedErr(err), csel.IsNoSelectorsErr(err):
		return cli.ExpressionError("compiling expression", err)
	default:
		return cli.GeneralError("search failed", err)
	}
}

func renderComponents(w io.Writer, components []search.Component) {
	st := newStyles(w)
	if len(components) == 0 {
		_, _ = fmt.Fprintln(w, st.muted.Render("No matching components."))
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "REPOSITORY", "FORMAT", "NAMESPACE", "NAME", "VERSION", "PATHS")
	for _, c := range components {
		t.Row(
			strconv.FormatInt(c.ID, 10),
			c.Repository,
			c.Format,
			deref(c.Namespace),
			c.Name,
			deref(c.Version),
			strings.TrimSpace(c.Paths),
		)
	}
	_, _ = fmt.Fprintln(w, t.String())
	_, _ = fmt.Fprintln(w, st.muted.Render(fmt.Sprintf("%d component(s)", len(components))))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
