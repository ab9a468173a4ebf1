// Package sqldsl provides typed building blocks for PostgreSQL filter fragments.
//
// # Overview
//
// Rather than assembling SQL through string concatenation, the compiler
// composes small typed values that each render one piece of PostgreSQL
// syntax. The set of types is deliberately narrow: there is no type that
// quotes an arbitrary string into SQL text. User supplied values can only
// reach a fragment as a Placeholder, which is minted by the compilation
// context when the value is bound as a parameter.
//
// # Expression Types
//
// Leaves:
//
//	Keyword(" and ")                   // static SQL text
//	Column("tsv_format")               // configured column or alias
//	Placeholder(":param_0")            // bound parameter reference
//
// Full-text and regex operators:
//
//	ToTSQuery{Config: Simple, Query: ph}        // TO_TSQUERY('simple', :param_0)
//	Match{Left: col, Right: q}                  // col @@ q
//	NotMatch{Left: col, Right: q}               // col @@ !! q
//	RegexMatch{Left: col, Right: ph}            // col ~ :param_0
//	AnyOf{Expr: col, Array: ph}                 // col = ANY(:param_0)
//
// Grouping:
//
//	IsNull{Expr: col}                  // col is null
//	Paren{Expr: e}                     // (e)
//	Or(a, b)                           // a or b
//	And(a, b)                          // a and b
//
// Keywords and operators render in lower case to match the fragments
// downstream callers already assert on.
package sqldsl
