// Package main provides a CLI for compiling CSEL content selector expressions
// and managing the component search table.
//
// The CLI supports:
//   - compile: Compile an expression to a SQL fragment and parameters
//   - rewrite: Show how a regex is anchored to path tokens
//   - validate: Parse an expression and check its properties
//   - search: Run an expression against the search table
//   - migrate: Create the search table
//   - status: Show search table state
//   - doctor: Run health checks on search infrastructure
//
// Usage:
//
//	csel [flags] <command>
//
// Commands that touch the database (search, migrate, status, doctor) need --db
// or database settings in csel.yaml. The others work offline.
package main

func main() {
	Execute()
}
