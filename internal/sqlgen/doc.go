// Package sqlgen compiles CSEL expression trees into parameterized PostgreSQL
// filter fragments for the component search table.
//
// # Overview
//
// Compilation is a single depth-first, left-to-right walk over a
// selector.Node tree. Each comparison binds exactly one parameter and appends
// a fixed template to the query text:
//
//	a == "woof"   a_alias @@ TO_TSQUERY('simple', :param_0)
//	a =^ "woof"   a_alias @@ TO_TSQUERY('simple', :param_0)       bound to "woof:*"
//	a != "woof"   (a_alias is null or a_alias @@ !! TO_TSQUERY('simple', :param_0))
//	a =~ "woof"   path_alias ~ :param_0                           bound to "(^|{)(woof)(}|$)"
//
// Logical operators emit " and " / " or " between their operands and groups
// emit literal parentheses. Operands are never reordered: parameter numbering
// follows document order and callers may rely on it.
//
// # Compilation Context
//
// A Context accumulates query text and parameters for one compilation. It is
// not safe for concurrent use. Callers either create one per compilation or
// call Clear between sequential compilations; Clear keeps the configuration
// (aliases and prefixes) and resets text, parameters and numbering together.
// Compiling into a context that already holds output appends to it; that is
// a caller error and is not detected.
//
// # Security
//
// Query text only accepts sqldsl fragments. Literal values enter the query as
// placeholders returned by Context.Bind, so no user supplied string is ever
// part of the SQL text.
package sqlgen
