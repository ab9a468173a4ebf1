// Package sql provides embedded SQL files for the component search table.
package sql

import (
	_ "embed"
)

// Embedded SQL files applied idempotently by the migrator.

// SearchTableTemplate is a text/template for the search table, its generated
// tsvector columns and indexes. It expects a .Table field holding the quoted
// table name, a .TSVColumns list and an "indexName" function that returns a quoted
// index name.
//
//go:embed search.tpl.sql
var SearchTableTemplate string

// MigrationsSQL contains the csel_migrations tracking table.
//
//go:embed migrations.sql
var MigrationsSQL string
