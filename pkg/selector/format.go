package selector

import (
	"strings"
)

// Format renders an expression tree as canonical CSEL text.
// For trees produced by Parse, Parse(Format(n)) yields an equal tree.
func Format(n Node) string {
	var b strings.Builder
	format(&b, n)
	return b.String()
}

func format(b *strings.Builder, n Node) {
	switch n := n.(type) {
	case *Literal:
		quote(b, n.Value)
	case *PropertyRef:
		b.WriteString(n.Name)
	case *Comparison:
		b.WriteString(n.Property.Name)
		b.WriteByte(' ')
		b.WriteString(n.Op.String())
		b.WriteByte(' ')
		quote(b, n.Literal.Value)
	case *BinaryOp:
		format(b, n.Left)
		b.WriteByte(' ')
		b.WriteString(n.Op.String())
		b.WriteByte(' ')
		format(b, n.Right)
	case *Group:
		b.WriteByte('(')
		format(b, n.Child)
		b.WriteByte(')')
	default:
		b.WriteString("<invalid>")
	}
}

// quote writes s as a double-quoted literal. A backslash is doubled only when
// the lexer would otherwise read it as an escape: before a quote, another
// backslash or the closing quote.
func quote(b *strings.Builder, s string) {
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			if i+1 == len(s) || s[i+1] == '"' || s[i+1] == '\\' {
				b.WriteByte('\\')
			}
			b.WriteByte('\\')
		default:
			b.WriteByte(s[i])
		}
	}
	b.WriteByte('"')
}

// Walk visits n and its descendants depth-first, left to right. If fn returns
// false the children of that node are skipped.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch n := n.(type) {
	case *Comparison:
		Walk(&n.Property, fn)
		Walk(&n.Literal, fn)
	case *BinaryOp:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *Group:
		Walk(n.Child, fn)
	}
}

// Properties returns the property names referenced by n in document order,
// without duplicates.
func Properties(n Node) []string {
	var names []string
	seen := make(map[string]bool)
	Walk(n, func(n Node) bool {
		if ref, ok := n.(*PropertyRef); ok && !seen[ref.Name] {
			seen[ref.Name] = true
			names = append(names, ref.Name)
		}
		return true
	})
	return names
}
