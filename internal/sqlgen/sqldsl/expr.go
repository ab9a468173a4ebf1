package sqldsl

import "strings"

// Expr is the interface that all SQL fragment types implement.
type Expr interface {
	SQL() string
}

// Keyword is static SQL text: operators, keywords and punctuation.
//
// Untyped string constants convert to Keyword implicitly; a string variable
// needs an explicit conversion, which keeps user input out of the text.
type Keyword string

// SQL renders the keyword as-is.
func (k Keyword) SQL() string { return string(k) }

// Common keywords.
const (
	KwAnd    Keyword = " and "
	KwOr     Keyword = " or "
	KwLParen Keyword = "("
	KwRParen Keyword = ")"
)

// Column is a physical column or alias taken from configuration.
type Column string

// SQL renders the column reference.
func (c Column) SQL() string { return string(c) }

// Placeholder references a bound parameter, e.g. ":param_0".
type Placeholder string

// SQL renders the placeholder.
func (p Placeholder) SQL() string { return string(p) }

// TSConfig names a PostgreSQL text search configuration.
type TSConfig string

// Simple is the text search configuration used for all selector matching.
const Simple TSConfig = "simple"

// ToTSQuery renders TO_TSQUERY('config', query).
type ToTSQuery struct {
	Config TSConfig
	Query  Expr
}

// SQL renders the function call.
func (t ToTSQuery) SQL() string {
	return "TO_TSQUERY('" + string(t.Config) + "', " + t.Query.SQL() + ")"
}

// Paren wraps an expression in parentheses.
type Paren struct {
	Expr Expr
}

// SQL renders the parenthesized expression.
func (p Paren) SQL() string {
	return "(" + p.Expr.SQL() + ")"
}

// IsNull renders "expr is null".
type IsNull struct {
	Expr Expr
}

// SQL renders the null check.
func (i IsNull) SQL() string {
	return i.Expr.SQL() + " is null"
}

// JoinExpr renders expressions separated by a keyword, without parentheses.
type JoinExpr struct {
	Sep   Keyword
	Exprs []Expr
}

// SQL renders the joined expressions.
func (j JoinExpr) SQL() string {
	parts := make([]string, len(j.Exprs))
	for i, e := range j.Exprs {
		parts[i] = e.SQL()
	}
	return strings.Join(parts, string(j.Sep))
}

// Or joins expressions with " or ".
func Or(exprs ...Expr) JoinExpr {
	return JoinExpr{Sep: KwOr, Exprs: exprs}
}
