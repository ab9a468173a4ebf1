// Package compiler provides public APIs for compiling CSEL expressions to
// PostgreSQL filter fragments.
//
// This is a thin wrapper around internal/sqlgen that exposes only the public
// types and functions needed by external consumers. For parsing expressions,
// use pkg/selector; for creating the search table, use pkg/migrator.
package compiler

import (
	"github.com/pthm/csel/internal/sqlgen"
)

// Context accumulates the SQL text and parameters of one compilation.
type Context = sqlgen.Context

// Options configures aliases and prefixes for a compilation.
type Options = sqlgen.Options

// Fragment is compiled SQL text plus its bound parameters.
type Fragment = sqlgen.Fragment

// Param is a single named parameter.
type Param = sqlgen.Param

// Params is an ordered parameter list.
type Params = sqlgen.Params

// PlaceholderFormat selects how Fragment.Positional renders parameters.
type PlaceholderFormat = sqlgen.PlaceholderFormat

// SelectorScope binds a selector expression to the repositories it applies to.
type SelectorScope = sqlgen.SelectorScope

// Placeholder formats.
const (
	Question = sqlgen.Question
	Dollar   = sqlgen.Dollar
)

// Reserved property names.
const (
	PathProperty       = sqlgen.PathProperty
	RepositoryProperty = sqlgen.RepositoryProperty
)

// Errors returned by compilation.
var (
	ErrUnsupportedNode     = sqlgen.ErrUnsupportedNode
	ErrUnsupportedOperator = sqlgen.ErrUnsupportedOperator
	ErrNoSelectors         = sqlgen.ErrNoSelectors
)

// NewContext creates a compilation context.
var NewContext = sqlgen.NewContext

// DefaultOptions returns ":param_N" placeholders and no aliases.
var DefaultOptions = sqlgen.DefaultOptions

// Compile appends the SQL for an expression tree to a context.
var Compile = sqlgen.Compile

// GenerateFilter compiles an expression tree into a fresh fragment.
var GenerateFilter = sqlgen.GenerateFilter

// CompileSelectors appends a repository-scoped selector disjunction to a context.
var CompileSelectors = sqlgen.CompileSelectors

// GenerateSelectorFilter compiles selector scopes into a fresh fragment.
var GenerateSelectorFilter = sqlgen.GenerateSelectorFilter

// RewritePathRegex anchors a regex pattern to brace-delimited path tokens.
var RewritePathRegex = sqlgen.RewritePathRegex
