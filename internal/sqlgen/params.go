package sqlgen

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Param is a named bound value.
type Param struct {
	Name  string
	Value any
}

// Params is an insertion-ordered set of bound parameters.
type Params []Param

// Get returns the value bound under name.
func (p Params) Get(name string) (any, bool) {
	for _, param := range p {
		if param.Name == name {
			return param.Value, true
		}
	}
	return nil, false
}

// Names returns the parameter names in emission order.
func (p Params) Names() []string {
	names := make([]string, len(p))
	for i, param := range p {
		names[i] = param.Name
	}
	return names
}

// Values returns the parameter values in emission order.
func (p Params) Values() []any {
	values := make([]any, len(p))
	for i, param := range p {
		values[i] = param.Value
	}
	return values
}

// Map returns the parameters as an unordered map.
func (p Params) Map() map[string]any {
	m := make(map[string]any, len(p))
	for _, param := range p {
		m[param.Name] = param.Value
	}
	return m
}

// Clone returns a copy that shares no backing array with p.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	return slices.Clone(p)
}

// Fragment is a compiled filter: SQL text plus the parameters it references.
type Fragment struct {
	SQL    string
	Params Params

	// ParameterPrefix is the token placed before each parameter name in SQL.
	ParameterPrefix string
}

// NamedArgs returns the parameters as pgx named arguments. The SQL text must
// have been compiled with ParameterPrefix "@" for pgx to bind them.
func (f Fragment) NamedArgs() pgx.NamedArgs {
	return pgx.NamedArgs(f.Params.Map())
}

// PlaceholderFormat selects how Positional renders parameters.
type PlaceholderFormat int

const (
	// Question renders every parameter as "?".
	Question PlaceholderFormat = iota
	// Dollar renders parameters as "$1", "$2", ... in emission order.
	Dollar
)

// Positional rewrites the named placeholders in the fragment to positional
// ones and returns the matching argument list.
//
// Placeholders are located by their exact text, so the parameter prefix and
// name prefix must not otherwise occur in the SQL.
func (f Fragment) Positional(format PlaceholderFormat) (string, []any) {
	if len(f.Params) == 0 {
		return f.SQL, nil
	}

	type placeholder struct {
		text  string
		index int
	}
	placeholders := make([]placeholder, len(f.Params))
	for i, p := range f.Params {
		placeholders[i] = placeholder{text: f.ParameterPrefix + p.Name, index: i}
	}
	// Longest first so ":param_10" is not consumed as ":param_1" + "0".
	slices.SortStableFunc(placeholders, func(a, b placeholder) int {
		return cmp.Compare(len(b.text), len(a.text))
	})

	if format == Dollar {
		pairs := make([]string, 0, 2*len(placeholders))
		for _, p := range placeholders {
			pairs = append(pairs, p.text, "$"+strconv.Itoa(p.index+1))
		}
		return strings.NewReplacer(pairs...).Replace(f.SQL), f.Params.Values()
	}

	// "?" carries no index, so arguments follow the order placeholders
	// appear in the text.
	var args []any
	var b strings.Builder
	rest := f.SQL
	for len(rest) > 0 {
		matched := false
		for _, p := range placeholders {
			if strings.HasPrefix(rest, p.text) {
				b.WriteByte('?')
				args = append(args, f.Params[p.index].Value)
				rest = rest[len(p.text):]
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(rest[0])
			rest = rest[1:]
		}
	}
	return b.String(), args
}
