package sqlgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/csel/pkg/selector"
)

func TestGenerateSelectorFilter(t *testing.T) {
	scopes := []SelectorScope{
		{
			Name:         "maven-only",
			Expression:   selector.Eq("format", "maven2"),
			Repositories: []string{"maven-central", "maven-releases"},
		},
		{
			Name:         "empty",
			Expression:   selector.Eq("format", "npm"),
			Repositories: nil,
		},
		{
			Name:         "docs",
			Expression:   selector.Or(selector.Regex("path", "^/docs/.*"), selector.Neq("format", "raw")),
			Repositories: []string{"raw-hosted"},
		},
	}

	frag, err := GenerateSelectorFilter(scopes, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t,
		"(repository_name = ANY(:param_0) and (format @@ TO_TSQUERY('simple', :param_1)))"+
			" or (repository_name = ANY(:param_2) and (path ~ :param_3 or "+
			"(format is null or format @@ !! TO_TSQUERY('simple', :param_4))))",
		frag.SQL)
	assert.Equal(t, []any{
		[]string{"maven-central", "maven-releases"},
		"maven2",
		[]string{"raw-hosted"},
		"(^|{)/docs/.*",
		"raw",
	}, frag.Params.Values())
}

func TestGenerateSelectorFilter_UsesAliases(t *testing.T) {
	opts := DefaultOptions().WithAlias(RepositoryProperty, "repo").WithAlias("format", "tsv_format")
	frag, err := GenerateSelectorFilter([]SelectorScope{
		{Name: "s", Expression: selector.Eq("format", "npm"), Repositories: []string{"npm-proxy"}},
	}, opts)
	require.NoError(t, err)

	assert.Equal(t,
		"(repo = ANY(:param_0) and (tsv_format @@ TO_TSQUERY('simple', :param_1)))",
		frag.SQL)
}

func TestGenerateSelectorFilter_RepositoryListIsCopied(t *testing.T) {
	repos := []string{"a"}
	frag, err := GenerateSelectorFilter([]SelectorScope{
		{Name: "s", Expression: selector.Eq("format", "npm"), Repositories: repos},
	}, DefaultOptions())
	require.NoError(t, err)

	repos[0] = "b"
	assert.Equal(t, []string{"a"}, frag.Params[0].Value)
}

func TestGenerateSelectorFilter_Errors(t *testing.T) {
	_, err := GenerateSelectorFilter(nil, DefaultOptions())
	assert.ErrorIs(t, err, ErrNoSelectors)

	_, err = GenerateSelectorFilter([]SelectorScope{
		{Name: "unused", Expression: selector.Eq("format", "npm")},
	}, DefaultOptions())
	assert.ErrorIs(t, err, ErrNoSelectors)

	_, err = GenerateSelectorFilter([]SelectorScope{
		{Name: "broken", Repositories: []string{"r"}},
	}, DefaultOptions())
	assert.ErrorIs(t, err, ErrUnsupportedNode)

	_, err = GenerateSelectorFilter([]SelectorScope{
		{Name: "bad-op", Expression: &selector.Comparison{Op: selector.CompareOp(7)}, Repositories: []string{"r"}},
	}, DefaultOptions())
	assert.ErrorIs(t, err, ErrUnsupportedOperator)
	assert.Contains(t, err.Error(), `selector "bad-op"`)
}
