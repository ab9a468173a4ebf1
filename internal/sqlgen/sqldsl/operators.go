package sqldsl

// Match represents a full-text match (@@).
type Match struct {
	Left  Expr
	Right Expr
}

func (m Match) SQL() string { return m.Left.SQL() + " @@ " + m.Right.SQL() }

// NotMatch represents a negated full-text match (@@ !!).
type NotMatch struct {
	Left  Expr
	Right Expr
}

func (n NotMatch) SQL() string { return n.Left.SQL() + " @@ !! " + n.Right.SQL() }

// RegexMatch represents a case-sensitive POSIX regex match (~).
type RegexMatch struct {
	Left  Expr
	Right Expr
}

func (r RegexMatch) SQL() string { return r.Left.SQL() + " ~ " + r.Right.SQL() }

// AnyOf represents membership in an array parameter (= ANY(...)).
type AnyOf struct {
	Expr  Expr
	Array Expr
}

func (a AnyOf) SQL() string { return a.Expr.SQL() + " = ANY(" + a.Array.SQL() + ")" }
