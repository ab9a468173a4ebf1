package selector

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSyntax is returned when CSEL text cannot be parsed.
	ErrSyntax = errors.New("csel: syntax error")

	// ErrUnknownProperty is returned when an expression references a property
	// outside the allowed set.
	ErrUnknownProperty = errors.New("csel: property not allowed")
)

// Parse parses CSEL text into an expression tree.
//
// `&&` binds tighter than `||` and both associate to the left. Parenthesized
// sub-expressions are kept as Group nodes so the tree records exactly what the
// author wrote.
func Parse(input string) (Node, error) {
	if strings.TrimSpace(input) == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrSyntax)
	}

	tokens, err := lex(input)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	if t := p.peek(); t.typ != tokenEOF {
		return nil, fmt.Errorf("%w: unexpected %q at position %d", ErrSyntax, t.val, t.pos)
	}
	return expr, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level selector constants.
func MustParse(input string) Node {
	n, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return n
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) advance() token {
	t := p.tokens[p.pos]
	if t.typ != tokenEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(typ tokenType) (token, error) {
	t := p.advance()
	if t.typ != typ {
		return t, fmt.Errorf("%w: expected %s, got %s at position %d", ErrSyntax, typ, describe(t), t.pos)
	}
	return t, nil
}

// or = and ("||" and)*
func (p *parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().typ == tokenOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = Or(left, right)
	}
	return left, nil
}

// and = primary ("&&" primary)*
func (p *parser) parseAnd() (Node, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.peek().typ == tokenAnd {
		p.advance()
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		left = And(left, right)
	}
	return left, nil
}

// primary = "(" or ")" | comparison
func (p *parser) parsePrimary() (Node, error) {
	if p.peek().typ == tokenLParen {
		p.advance()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenRParen); err != nil {
			return nil, err
		}
		return Paren(inner), nil
	}
	return p.parseComparison()
}

// comparison = IDENT op STRING
func (p *parser) parseComparison() (Node, error) {
	prop, err := p.expect(tokenIdent)
	if err != nil {
		return nil, err
	}

	var op CompareOp
	switch t := p.advance(); t.typ {
	case tokenEq:
		op = OpEq
	case tokenNeq:
		op = OpNeq
	case tokenPrefix:
		op = OpPrefix
	case tokenRegex:
		op = OpRegex
	default:
		return nil, fmt.Errorf("%w: expected operator (==, !=, =^, =~) after %q, got %s at position %d",
			ErrSyntax, prop.val, describe(t), t.pos)
	}

	lit, err := p.expect(tokenString)
	if err != nil {
		return nil, err
	}

	return compare(op, prop.val, lit.val), nil
}

func describe(t token) string {
	if t.typ == tokenEOF {
		return t.typ.String()
	}
	return fmt.Sprintf("%q", t.val)
}
