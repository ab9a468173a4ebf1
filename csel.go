// Package csel compiles CSEL content selector expressions into parameterized
// PostgreSQL filter fragments.
//
// A selector such as
//
//	format == "maven2" && path =~ "^/org/apache/.*"
//
// becomes a WHERE-clause fragment over full-text and path columns of a
// search table, with every literal bound as a named parameter:
//
//	tsv_format @@ TO_TSQUERY('simple', :param_0) and paths ~ :param_1
//
// # Packages
//
//   - pkg/selector: expression tree, parser, formatter and property validation.
//   - pkg/compiler: compilation context, compiler and regex rewriting.
//   - pkg/search: runs compiled filters against the search table with pgx.
//   - pkg/migrator: creates the search table.
//
// # Basic Usage
//
//	opts := compiler.DefaultOptions().WithAlias("format", "tsv_format")
//	frag, err := csel.CompileString(`format == "npm"`, opts)
//	rows, err := pool.Query(ctx, "SELECT * FROM component_search WHERE "+frag.SQL, frag.NamedArgs())
//
// NamedArgs requires the "@" parameter prefix; with the default ":" prefix use
// Fragment.Positional.
//
// # Security
//
// Literal values never appear in the SQL text. Only aliases and prefixes from
// configuration are written verbatim, so those must come from trusted sources.
package csel

import (
	"github.com/pthm/csel/pkg/compiler"
	"github.com/pthm/csel/pkg/selector"
)

// CompileString parses text and compiles it with opts.
//
// Parse failures wrap ErrSyntax. Properties are not validated; use
// CompileValidated to restrict them.
func CompileString(text string, opts compiler.Options) (compiler.Fragment, error) {
	node, err := selector.Parse(text)
	if err != nil {
		return compiler.Fragment{}, err
	}
	return compiler.GenerateFilter(node, opts)
}

// CompileValidated is CompileString with every property checked against
// allowed. A nil allow-list uses selector.DefaultAllowedProperties.
func CompileValidated(text string, opts compiler.Options, allowed []string) (compiler.Fragment, error) {
	node, err := selector.Parse(text)
	if err != nil {
		return compiler.Fragment{}, err
	}
	if allowed == nil {
		allowed = selector.DefaultAllowedProperties
	}
	if err := selector.ValidateProperties(node, allowed); err != nil {
		return compiler.Fragment{}, err
	}
	return compiler.GenerateFilter(node, opts)
}
