package sqlgen

import "errors"

var (
	// ErrUnsupportedNode is returned when the compiler meets a node kind it
	// has no template for, such as a bare Literal or PropertyRef.
	ErrUnsupportedNode = errors.New("csel: unsupported expression node")

	// ErrUnsupportedOperator is returned for comparison or logical operators
	// outside the known set.
	ErrUnsupportedOperator = errors.New("csel: unsupported operator")

	// ErrNoSelectors is returned when a selector filter has nothing to match.
	ErrNoSelectors = errors.New("csel: no applicable content selectors")
)
