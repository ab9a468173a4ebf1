package testutil

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pthm/csel/pkg/migrator"
)

// componentColumns are the writable columns of the search table.
var componentColumns = []string{"repository_name", "format", "namespace", "name", "version", "paths"}

// LoadComponents bulk loads records into table with COPY FROM and returns the
// number of rows copied. Use migrator.Insert when the ids are needed.
func LoadComponents(ctx context.Context, pool *pgxpool.Pool, table string, records []migrator.Record) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	n, err := pool.CopyFrom(ctx, pgx.Identifier{table}, componentColumns,
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			r := records[i]
			return []any{
				r.Repository,
				r.Format,
				optional(r.Namespace),
				r.Name,
				optional(r.Version),
				migrator.PathTokens(r.Paths),
			}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("COPY FROM %s: %w", table, err)
	}
	return n, nil
}

// GenerateComponents returns n maven2 records spread across repos, each with
// a jar and a pom path.
func GenerateComponents(n int, repos ...string) []migrator.Record {
	if len(repos) == 0 {
		repos = []string{"central"}
	}
	records := make([]migrator.Record, n)
	for i := range records {
		name := fmt.Sprintf("bench%d", i)
		version := fmt.Sprintf("1.%d", i%10)
		dir := fmt.Sprintf("/org/bench/%s/%s", name, version)
		records[i] = migrator.Record{
			Repository: repos[i%len(repos)],
			Format:     "maven2",
			Namespace:  "org.bench",
			Name:       name,
			Version:    version,
			Paths: []string{
				dir + "/" + name + "-" + version + ".jar",
				dir + "/" + name + "-" + version + ".pom",
			},
		}
	}
	return records
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
