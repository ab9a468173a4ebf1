package search

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/csel"
	"github.com/pthm/csel/pkg/compiler"
	"github.com/pthm/csel/pkg/selector"
)

func TestSelectSQL(t *testing.T) {
	s := New(nil, Config{})

	query, args, err := s.SelectSQL(Request{
		Filter: selector.MustParse(`format == "maven2"`),
		Limit:  10,
		Offset: 5,
	})
	require.NoError(t, err)

	assert.Equal(t,
		`SELECT component_id, repository_name, format, namespace, name, version, paths FROM "component_search" `+
			`WHERE (tsv_format @@ TO_TSQUERY('simple', $1)) ORDER BY component_id LIMIT 10 OFFSET 5`,
		query)
	assert.Equal(t, []any{"maven2"}, args)
}

func TestSelectSQL_NoFilter(t *testing.T) {
	s := New(nil, Config{Table: "components"})

	query, args, err := s.SelectSQL(Request{})
	require.NoError(t, err)

	assert.Equal(t,
		`SELECT component_id, repository_name, format, namespace, name, version, paths FROM "components" ORDER BY component_id`,
		query)
	assert.Empty(t, args)
}

func TestSelectSQL_FilterAndSelectors(t *testing.T) {
	s := New(nil, Config{})

	query, args, err := s.SelectSQL(Request{
		Filter: selector.MustParse(`name =^ "commons" || path =~ "/org/.*"`),
		Selectors: []compiler.SelectorScope{
			{Name: "maven", Expression: selector.Eq("format", "maven2"), Repositories: []string{"central"}},
		},
	})
	require.NoError(t, err)

	assert.Contains(t, query,
		`WHERE ((tsv_name @@ TO_TSQUERY('simple', $1) or paths ~ $2) AND `+
			`((repository_name = ANY($3) and (tsv_format @@ TO_TSQUERY('simple', $4)))))`)
	assert.Equal(t, []any{"commons:*", "(^|{)(/org/.*)(}|$)", []string{"central"}, "maven2"}, args)
}

func TestCountSQL(t *testing.T) {
	s := New(nil, Config{})

	query, args, err := s.CountSQL(Request{Filter: selector.Neq("version", "1.0"), Limit: 3})
	require.NoError(t, err)

	assert.Equal(t,
		`SELECT count(*) FROM "component_search" WHERE ((tsv_version is null or tsv_version @@ !! TO_TSQUERY('simple', $1)))`,
		query)
	assert.Equal(t, []any{"1.0"}, args)
}

func TestSelectSQL_CustomOptions(t *testing.T) {
	opts := compiler.DefaultOptions().WithAlias("format", "fmt_col")
	s := New(nil, Config{Options: opts})

	query, _, err := s.SelectSQL(Request{Filter: selector.Eq("format", "npm")})
	require.NoError(t, err)
	assert.Contains(t, query, "WHERE (fmt_col @@ TO_TSQUERY('simple', $1))")
}

func TestSelectSQL_Errors(t *testing.T) {
	s := New(nil, Config{})

	_, _, err := s.SelectSQL(Request{Filter: &selector.Literal{Value: "x"}})
	assert.True(t, csel.IsUnsupportedErr(err))

	_, _, err = s.SelectSQL(Request{Selectors: []compiler.SelectorScope{}})
	assert.True(t, csel.IsNoSelectorsErr(err))

	_, _, err = s.CountSQL(Request{Selectors: []compiler.SelectorScope{{Name: "x", Expression: selector.Eq("format", "npm")}}})
	assert.True(t, csel.IsNoSelectorsErr(err))
}

func TestQueryError(t *testing.T) {
	s := New(nil, Config{})

	err := s.queryError(&pgconn.PgError{Code: csel.PgUndefinedTable})
	assert.True(t, csel.IsMissingTableErr(err))
	assert.Contains(t, err.Error(), "component_search")

	other := errors.New("connection reset")
	err = s.queryError(other)
	assert.ErrorIs(t, err, other)
	assert.False(t, csel.IsMissingTableErr(err))
}

func TestDefaultAliases(t *testing.T) {
	aliases := DefaultAliases()
	assert.Equal(t, "paths", aliases[compiler.PathProperty])
	assert.Equal(t, "repository_name", aliases[compiler.RepositoryProperty])
	assert.Equal(t, aliases["namespace"], aliases["coordinate.groupId"])
	assert.Equal(t, aliases["name"], aliases["coordinate.artifactId"])
	assert.Equal(t, aliases["version"], aliases["coordinate.version"])
}
