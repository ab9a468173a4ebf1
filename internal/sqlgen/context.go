package sqlgen

import (
	"maps"
	"strconv"
	"strings"

	"github.com/pthm/csel/internal/sqlgen/sqldsl"
)

// Reserved logical property names.
const (
	// PathProperty is the alias every regex comparison matches against,
	// whatever property the comparison names.
	PathProperty = "path"

	// RepositoryProperty is the alias used to scope content selectors to
	// repositories.
	RepositoryProperty = "repository_name"
)

// Options configures a compilation.
type Options struct {
	// Aliases maps logical property names to physical columns.
	Aliases map[string]string

	// PropertyPrefix qualifies properties that have no alias.
	PropertyPrefix string

	// ParameterPrefix is prepended to a parameter name when it is embedded in
	// the query text, e.g. ":" or "@".
	ParameterPrefix string

	// ParameterNamePrefix is prepended to the counter to form parameter names.
	ParameterNamePrefix string
}

// DefaultOptions returns options using ":param_N" placeholders and no aliases.
func DefaultOptions() Options {
	return Options{
		Aliases:             map[string]string{},
		ParameterPrefix:     ":",
		ParameterNamePrefix: "param_",
	}
}

// WithAlias returns a copy of o with logical mapped to physical.
func (o Options) WithAlias(logical, physical string) Options {
	aliases := make(map[string]string, len(o.Aliases)+1)
	maps.Copy(aliases, o.Aliases)
	aliases[logical] = physical
	o.Aliases = aliases
	return o
}

// Context accumulates the query text and bound parameters of one compilation.
type Context struct {
	aliases             map[string]string
	propertyPrefix      string
	parameterPrefix     string
	parameterNamePrefix string

	query   strings.Builder
	params  Params
	counter int
}

// NewContext creates a context configured with opts. The alias map is copied;
// later changes to opts do not affect the context.
func NewContext(opts Options) *Context {
	aliases := make(map[string]string, len(opts.Aliases))
	maps.Copy(aliases, opts.Aliases)
	return &Context{
		aliases:             aliases,
		propertyPrefix:      opts.PropertyPrefix,
		parameterPrefix:     opts.ParameterPrefix,
		parameterNamePrefix: opts.ParameterNamePrefix,
	}
}

// PropertyAlias maps a logical property name to a physical column.
// The last registration for a name wins.
func (c *Context) PropertyAlias(logical, physical string) {
	c.aliases[logical] = physical
}

// SetPropertyPrefix sets the qualifier used for properties without an alias.
func (c *Context) SetPropertyPrefix(prefix string) {
	c.propertyPrefix = prefix
}

// SetParameterPrefix sets the token placed before parameter names in the query text.
func (c *Context) SetParameterPrefix(prefix string) {
	c.parameterPrefix = prefix
}

// SetParameterNamePrefix sets the prefix of generated parameter names.
func (c *Context) SetParameterNamePrefix(prefix string) {
	c.parameterNamePrefix = prefix
}

// Options returns a copy of the context configuration.
func (c *Context) Options() Options {
	return Options{
		Aliases:             maps.Clone(c.aliases),
		PropertyPrefix:      c.propertyPrefix,
		ParameterPrefix:     c.parameterPrefix,
		ParameterNamePrefix: c.parameterNamePrefix,
	}
}

// ResolveAlias returns the column registered for logical, or PropertyPrefix+logical.
func (c *Context) ResolveAlias(logical string) sqldsl.Column {
	if physical, ok := c.aliases[logical]; ok {
		return sqldsl.Column(physical)
	}
	return sqldsl.Column(c.propertyPrefix + logical)
}

// Bind records value under the next generated parameter name and returns the
// placeholder to embed in the query text.
func (c *Context) Bind(value any) sqldsl.Placeholder {
	name := c.parameterNamePrefix + strconv.Itoa(c.counter)
	c.counter++
	c.params = append(c.params, Param{Name: name, Value: value})
	return sqldsl.Placeholder(c.parameterPrefix + name)
}

// Append renders fragments onto the end of the query text.
func (c *Context) Append(exprs ...sqldsl.Expr) {
	for _, e := range exprs {
		c.query.WriteString(e.SQL())
	}
}

// QueryString returns the query text built so far.
func (c *Context) QueryString() string {
	return c.query.String()
}

// QueryParameters returns the bound parameters in emission order.
func (c *Context) QueryParameters() Params {
	return c.params.Clone()
}

// Fragment returns the query text and parameters as a Fragment.
func (c *Context) Fragment() Fragment {
	return Fragment{
		SQL:             c.QueryString(),
		Params:          c.QueryParameters(),
		ParameterPrefix: c.parameterPrefix,
	}
}

// Clear resets the query text, parameters and numbering. Configuration is kept.
func (c *Context) Clear() {
	c.query.Reset()
	c.params = nil
	c.counter = 0
}
