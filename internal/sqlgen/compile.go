package sqlgen

import (
	"fmt"

	"github.com/pthm/csel/internal/sqlgen/sqldsl"
	"github.com/pthm/csel/pkg/selector"
)

// prefixWildcard turns a tsquery lexeme into a prefix match.
const prefixWildcard = ":*"

// GenerateFilter compiles node into a fresh context configured by opts.
func GenerateFilter(node selector.Node, opts Options) (Fragment, error) {
	ctx := NewContext(opts)
	if err := Compile(node, ctx); err != nil {
		return Fragment{}, err
	}
	return ctx.Fragment(), nil
}

// Compile appends the SQL for node to ctx, depth-first and left to right.
//
// On error the context holds partial output and must be cleared before reuse.
func Compile(node selector.Node, ctx *Context) error {
	switch n := node.(type) {
	case *selector.Comparison:
		return compileComparison(n, ctx)
	case *selector.BinaryOp:
		return compileBinary(n, ctx)
	case *selector.Group:
		ctx.Append(sqldsl.KwLParen)
		if err := Compile(n.Child, ctx); err != nil {
			return err
		}
		ctx.Append(sqldsl.KwRParen)
		return nil
	case nil:
		return fmt.Errorf("%w: nil node", ErrUnsupportedNode)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedNode, node)
	}
}

func compileBinary(n *selector.BinaryOp, ctx *Context) error {
	var sep sqldsl.Keyword
	switch n.Op {
	case selector.OpAnd:
		sep = sqldsl.KwAnd
	case selector.OpOr:
		sep = sqldsl.KwOr
	default:
		return fmt.Errorf("%w: logical %s", ErrUnsupportedOperator, n.Op)
	}

	if err := Compile(n.Left, ctx); err != nil {
		return err
	}
	ctx.Append(sep)
	return Compile(n.Right, ctx)
}

func compileComparison(c *selector.Comparison, ctx *Context) error {
	value := c.Literal.Value

	switch c.Op {
	case selector.OpEq:
		col := ctx.ResolveAlias(c.Property.Name)
		ctx.Append(sqldsl.Match{Left: col, Right: tsQuery(ctx.Bind(value))})

	case selector.OpPrefix:
		col := ctx.ResolveAlias(c.Property.Name)
		ctx.Append(sqldsl.Match{Left: col, Right: tsQuery(ctx.Bind(value + prefixWildcard))})

	case selector.OpNeq:
		col := ctx.ResolveAlias(c.Property.Name)
		ctx.Append(sqldsl.Paren{Expr: sqldsl.Or(
			sqldsl.IsNull{Expr: col},
			sqldsl.NotMatch{Left: col, Right: tsQuery(ctx.Bind(value))},
		)})

	case selector.OpRegex:
		// Regex always targets the path tokens regardless of the property named.
		col := ctx.ResolveAlias(PathProperty)
		ctx.Append(sqldsl.RegexMatch{Left: col, Right: ctx.Bind(RewritePathRegex(value))})

	default:
		return fmt.Errorf("%w: comparison %s on %q", ErrUnsupportedOperator, c.Op, c.Property.Name)
	}
	return nil
}

func tsQuery(ph sqldsl.Placeholder) sqldsl.ToTSQuery {
	return sqldsl.ToTSQuery{Config: sqldsl.Simple, Query: ph}
}
