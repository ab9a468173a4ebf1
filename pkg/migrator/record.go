package migrator

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Record is one component row of the search table.
type Record struct {
	Repository string
	Format     string
	Namespace  string
	Name       string
	Version    string

	// Paths are the asset paths of the component, e.g. "/org/foo/1.0/foo-1.0.jar".
	Paths []string
}

// PathTokens joins paths into the brace-delimited form stored in the paths
// column: "{/a/b.jar} {/c/d.pom}".
func PathTokens(paths []string) string {
	tokens := make([]string, len(paths))
	for i, p := range paths {
		tokens[i] = "{" + p + "}"
	}
	return strings.Join(tokens, " ")
}

// Insert stores records in the search table and returns their component ids.
// Empty namespace and version are stored as NULL.
func (m *Migrator) Insert(ctx context.Context, records ...Record) ([]int64, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (repository_name, format, namespace, name, version, paths)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING component_id
	`, pq.QuoteIdentifier(m.table))

	ids := make([]int64, 0, len(records))
	err := withTx(ctx, m.db, func(db Execer) error {
		for _, r := range records {
			var id int64
			err := db.QueryRowContext(ctx, query,
				r.Repository, r.Format, nullable(r.Namespace), r.Name, nullable(r.Version), PathTokens(r.Paths),
			).Scan(&id)
			if err != nil {
				return fmt.Errorf("inserting %s/%s: %w", r.Repository, r.Name, err)
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Debug("inserted components", "table", m.table, "count", len(ids))
	return ids, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
