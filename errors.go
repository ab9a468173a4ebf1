package csel

import (
	"errors"

	"github.com/pthm/csel/pkg/compiler"
	"github.com/pthm/csel/pkg/selector"
)

// Sentinel errors for the ways an expression can fail to become SQL, plus the
// database conditions callers are expected to handle.
//
// Use the Is*Err helper functions to check for specific errors.
var (
	// ErrSyntax is returned when expression text cannot be parsed.
	ErrSyntax = selector.ErrSyntax

	// ErrUnknownProperty is returned when an expression names a property
	// outside the allow-list.
	ErrUnknownProperty = selector.ErrUnknownProperty

	// ErrUnsupportedNode is returned when the compiler meets a node kind it
	// cannot translate, including nil and bare literals.
	ErrUnsupportedNode = compiler.ErrUnsupportedNode

	// ErrUnsupportedOperator is returned for comparison or logical operators
	// the compiler does not know.
	ErrUnsupportedOperator = compiler.ErrUnsupportedOperator

	// ErrNoSelectors is returned when no content selector applies to any
	// repository.
	ErrNoSelectors = compiler.ErrNoSelectors

	// ErrMissingTable is returned when the search table doesn't exist.
	// Run `csel migrate` to create it.
	ErrMissingTable = errors.New("csel: search table not found")

	// ErrMissingColumn is returned when an alias resolves to a column the
	// search table doesn't have.
	ErrMissingColumn = errors.New("csel: search column not found")
)

// IsSyntaxErr returns true if err is or wraps ErrSyntax.
func IsSyntaxErr(err error) bool {
	return errors.Is(err, ErrSyntax)
}

// IsUnknownPropertyErr returns true if err is or wraps ErrUnknownProperty.
func IsUnknownPropertyErr(err error) bool {
	return errors.Is(err, ErrUnknownProperty)
}

// IsUnsupportedErr returns true if err wraps ErrUnsupportedNode or
// ErrUnsupportedOperator.
func IsUnsupportedErr(err error) bool {
	return errors.Is(err, ErrUnsupportedNode) || errors.Is(err, ErrUnsupportedOperator)
}

// IsNoSelectorsErr returns true if err is or wraps ErrNoSelectors.
func IsNoSelectorsErr(err error) bool {
	return errors.Is(err, ErrNoSelectors)
}

// IsMissingTableErr returns true if err is or wraps ErrMissingTable.
func IsMissingTableErr(err error) bool {
	return errors.Is(err, ErrMissingTable)
}

// IsMissingColumnErr returns true if err is or wraps ErrMissingColumn.
func IsMissingColumnErr(err error) bool {
	return errors.Is(err, ErrMissingColumn)
}

// PostgreSQL error codes mapped to sentinel errors.
const (
	PgUndefinedTable  = "42P01" // undefined_table
	PgUndefinedColumn = "42703" // undefined_column
)
