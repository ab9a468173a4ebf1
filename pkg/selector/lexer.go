package selector

import (
	"fmt"
	"strings"
)

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenString
	tokenIdent
	tokenAnd
	tokenOr
	tokenEq
	tokenNeq
	tokenPrefix
	tokenRegex
	tokenLParen
	tokenRParen
)

func (t tokenType) String() string {
	switch t {
	case tokenEOF:
		return "end of input"
	case tokenString:
		return "string"
	case tokenIdent:
		return "property"
	case tokenAnd:
		return "&&"
	case tokenOr:
		return "||"
	case tokenEq:
		return "=="
	case tokenNeq:
		return "!="
	case tokenPrefix:
		return "=^"
	case tokenRegex:
		return "=~"
	case tokenLParen:
		return "("
	case tokenRParen:
		return ")"
	default:
		return "unknown"
	}
}

type token struct {
	typ tokenType
	val string
	pos int
}

type lexer struct {
	input  string
	pos    int
	tokens []token
}

func lex(input string) ([]token, error) {
	l := &lexer{input: input}
	if err := l.run(); err != nil {
		return nil, err
	}
	return l.tokens, nil
}

func (l *lexer) emit(typ tokenType, val string, width int) {
	l.tokens = append(l.tokens, token{typ: typ, val: val, pos: l.pos})
	l.pos += width
}

func (l *lexer) next() byte {
	if l.pos+1 < len(l.input) {
		return l.input[l.pos+1]
	}
	return 0
}

func (l *lexer) run() error {
	for l.pos < len(l.input) {
		ch := l.input[l.pos]

		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			l.pos++

		case ch == '"' || ch == '\'':
			tok, err := l.readString(ch)
			if err != nil {
				return err
			}
			l.tokens = append(l.tokens, tok)

		case ch == '(':
			l.emit(tokenLParen, "(", 1)

		case ch == ')':
			l.emit(tokenRParen, ")", 1)

		case ch == '=' && l.next() == '=':
			l.emit(tokenEq, "==", 2)

		case ch == '=' && l.next() == '^':
			l.emit(tokenPrefix, "=^", 2)

		case ch == '=' && l.next() == '~':
			l.emit(tokenRegex, "=~", 2)

		case ch == '!' && l.next() == '=':
			l.emit(tokenNeq, "!=", 2)

		case ch == '&' && l.next() == '&':
			l.emit(tokenAnd, "&&", 2)

		case ch == '|' && l.next() == '|':
			l.emit(tokenOr, "||", 2)

		case isIdentStart(ch):
			tok := l.readIdent()
			switch tok.val {
			case "and":
				tok.typ = tokenAnd
			case "or":
				tok.typ = tokenOr
			}
			l.tokens = append(l.tokens, tok)

		default:
			return fmt.Errorf("%w: unexpected character %q at position %d", ErrSyntax, ch, l.pos)
		}
	}
	l.tokens = append(l.tokens, token{typ: tokenEOF, pos: l.pos})
	return nil
}

func (l *lexer) readString(quote byte) (token, error) {
	start := l.pos
	l.pos++ // opening quote
	var b strings.Builder
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		// Only the active quote and the backslash itself are unescaped; any
		// other escape is kept verbatim so regex escapes like \. survive.
		if ch == '\\' && l.pos+1 < len(l.input) {
			next := l.input[l.pos+1]
			if next != quote && next != '\\' {
				b.WriteByte(ch)
			}
			b.WriteByte(next)
			l.pos += 2
			continue
		}
		if ch == quote {
			l.pos++
			return token{typ: tokenString, val: b.String(), pos: start}, nil
		}
		b.WriteByte(ch)
		l.pos++
	}
	return token{}, fmt.Errorf("%w: unterminated string starting at position %d", ErrSyntax, start)
}

func (l *lexer) readIdent() token {
	start := l.pos
	for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
		l.pos++
	}
	return token{typ: tokenIdent, val: l.input[start:l.pos], pos: start}
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9') || ch == '.'
}
