// Package selector models Content Selector Expression Language (CSEL) filters.
//
// A CSEL expression is a small boolean language over component properties:
//
//	format == "maven2" && (path =~ "^/org/apache/.*" || coordinate.version =^ "1.")
//
// Parse turns text into a tree of Node values. The tree is immutable and
// closed: only the node types declared in this package implement Node, so a
// type switch over them is exhaustive.
package selector

import "strconv"

// Node is a node in a CSEL expression tree.
type Node interface {
	node()
}

// Literal is a string operand.
type Literal struct {
	Value string
}

func (*Literal) node() {}

// PropertyRef names a component property such as "format" or "coordinate.groupId".
type PropertyRef struct {
	Name string
}

func (*PropertyRef) node() {}

// CompareOp is the operator of a Comparison.
type CompareOp int

const (
	OpEq     CompareOp = iota // ==
	OpNeq                     // !=
	OpPrefix                  // =^
	OpRegex                   // =~
)

// String returns the CSEL spelling of the operator.
func (op CompareOp) String() string {
	switch op {
	case OpEq:
		return "=="
	case OpNeq:
		return "!="
	case OpPrefix:
		return "=^"
	case OpRegex:
		return "=~"
	default:
		return "CompareOp(" + strconv.Itoa(int(op)) + ")"
	}
}

// Comparison compares a property with a literal, e.g. `format == "npm"`.
type Comparison struct {
	Op       CompareOp
	Property PropertyRef
	Literal  Literal
}

func (*Comparison) node() {}

// LogicalOp is the operator of a BinaryOp.
type LogicalOp int

const (
	OpAnd LogicalOp = iota // &&
	OpOr                   // ||
)

// String returns the CSEL spelling of the operator.
func (op LogicalOp) String() string {
	switch op {
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	default:
		return "LogicalOp(" + strconv.Itoa(int(op)) + ")"
	}
}

// BinaryOp joins two expressions with a logical operator.
type BinaryOp struct {
	Op    LogicalOp
	Left  Node
	Right Node
}

func (*BinaryOp) node() {}

// Group is an explicitly parenthesized expression.
type Group struct {
	Child Node
}

func (*Group) node() {}

// Eq builds `property == value`.
func Eq(property, value string) *Comparison {
	return compare(OpEq, property, value)
}

// Neq builds `property != value`.
func Neq(property, value string) *Comparison {
	return compare(OpNeq, property, value)
}

// Prefix builds `property =^ value`.
func Prefix(property, value string) *Comparison {
	return compare(OpPrefix, property, value)
}

// Regex builds `property =~ pattern`.
func Regex(property, pattern string) *Comparison {
	return compare(OpRegex, property, pattern)
}

// And builds `left && right`.
func And(left, right Node) *BinaryOp {
	return &BinaryOp{Op: OpAnd, Left: left, Right: right}
}

// Or builds `left || right`.
func Or(left, right Node) *BinaryOp {
	return &BinaryOp{Op: OpOr, Left: left, Right: right}
}

// Paren builds `(child)`.
func Paren(child Node) *Group {
	return &Group{Child: child}
}

func compare(op CompareOp, property, value string) *Comparison {
	return &Comparison{
		Op:       op,
		Property: PropertyRef{Name: property},
		Literal:  Literal{Value: value},
	}
}
