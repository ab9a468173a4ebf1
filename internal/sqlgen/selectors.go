package sqlgen

import (
	"fmt"
	"slices"

	"github.com/pthm/csel/internal/sqlgen/sqldsl"
	"github.com/pthm/csel/pkg/selector"
)

// SelectorScope is a content selector expression applied to a set of repositories.
type SelectorScope struct {
	// Name identifies the selector in error messages.
	Name string

	Expression   selector.Node
	Repositories []string
}

// GenerateSelectorFilter compiles scopes into a fresh context configured by opts.
func GenerateSelectorFilter(scopes []SelectorScope, opts Options) (Fragment, error) {
	ctx := NewContext(opts)
	if err := CompileSelectors(scopes, ctx); err != nil {
		return Fragment{}, err
	}
	return ctx.Fragment(), nil
}

// CompileSelectors appends the disjunction of scopes to ctx:
//
//	(repository_name = ANY(:param_0) and (<selector>)) or (...)
//
// The repository list of each scope is bound as a single array parameter
// ahead of the selector's own parameters. Scopes without repositories are
// skipped; if none remain, ErrNoSelectors is returned.
func CompileSelectors(scopes []SelectorScope, ctx *Context) error {
	emitted := 0
	for _, scope := range scopes {
		if len(scope.Repositories) == 0 {
			continue
		}
		if scope.Expression == nil {
			return fmt.Errorf("%w: selector %q has no expression", ErrUnsupportedNode, scope.Name)
		}

		if emitted > 0 {
			ctx.Append(sqldsl.KwOr)
		}
		repos := ctx.Bind(slices.Clone(scope.Repositories))
		ctx.Append(
			sqldsl.KwLParen,
			sqldsl.AnyOf{Expr: ctx.ResolveAlias(RepositoryProperty), Array: repos},
			sqldsl.KwAnd,
			sqldsl.KwLParen,
		)
		if err := Compile(scope.Expression, ctx); err != nil {
			return fmt.Errorf("selector %q: %w", scope.Name, err)
		}
		ctx.Append(sqldsl.KwRParen, sqldsl.KwRParen)
		emitted++
	}

	if emitted == 0 {
		return ErrNoSelectors
	}
	return nil
}
