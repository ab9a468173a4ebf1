// Package testutil provides shared test utilities for csel integration tests.
package testutil

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pthm/csel/pkg/migrator"
)

// DatabaseURLEnv points the tests at an existing PostgreSQL server instead of
// a container. The role must be allowed to create databases.
const DatabaseURLEnv = "CSEL_TEST_DATABASE_URL"

// Singleton container state
var (
	singletonOnce sync.Once
	singletonDSN  string
	singletonErr  error

	templateOnce sync.Once
	templateName string
	templateErr  error
)

// Database is an isolated test database reachable through both database/sql
// (pgx stdlib driver) and a pgx pool.
type Database struct {
	DSN  string
	SQL  *sql.DB
	Pool *pgxpool.Pool
}

// ensureSingleton lazily starts the shared PostgreSQL server.
// Safe for concurrent access via sync.Once.
func ensureSingleton() (string, error) {
	singletonOnce.Do(func() {
		if dsn := os.Getenv(DatabaseURLEnv); dsn != "" {
			singletonDSN = dsn
			return
		}

		ctx := context.Background()
		container, err := postgres.Run(ctx,
			"postgres:18-alpine",
			postgres.WithDatabase("postgres"),
			postgres.WithUsername("test"),
			postgres.WithPassword("test"),
			testcontainers.WithEnv(map[string]string{
				"POSTGRES_INITDB_ARGS": "--auth-host=trust",
			}),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second),
			),
		)
		if err != nil {
			singletonErr = fmt.Errorf("failed to start PostgreSQL container: %w", err)
			return
		}

		dsn, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			_ = container.Terminate(ctx)
			singletonErr = fmt.Errorf("failed to get PostgreSQL connection string: %w", err)
			return
		}

		singletonDSN = dsn
		// Container is not stored - ryuk will handle cleanup automatically
	})

	return singletonDSN, singletonErr
}

// ensureTemplate creates the template database with the default search table
// migrated. Safe for concurrent access via sync.Once.
func ensureTemplate(adminDSN string) (string, error) {
	templateOnce.Do(func() {
		templateName = "csel_template"

		if err := createDatabase(adminDSN, templateName, ""); err != nil {
			templateErr = fmt.Errorf("failed to create template database: %w", err)
			return
		}

		if err := applyMigrations(replaceDBName(adminDSN, templateName)); err != nil {
			templateErr = fmt.Errorf("failed to apply csel migrations: %w", err)
			return
		}

		// Non-fatal if this fails: copying still works without template flag
		_ = markAsTemplate(adminDSN, templateName)
	})

	return templateName, templateErr
}

// DB returns a database with the default search table migrated and empty.
// Each call creates a new isolated database copied from the template; it is
// dropped when the test completes. Skips the test under -short or when no
// PostgreSQL server can be started.
func DB(tb testing.TB) *Database {
	tb.Helper()
	adminDSN := admin(tb)

	tmpl, err := ensureTemplate(adminDSN)
	require.NoError(tb, err, "failed to create template database")

	return open(tb, adminDSN, uniqueDBName("test"), tmpl)
}

// EmptyDB returns an empty database. Each call creates a new isolated
// database that is dropped when the test completes.
func EmptyDB(tb testing.TB) *Database {
	tb.Helper()
	return open(tb, admin(tb), uniqueDBName("empty"), "")
}

func admin(tb testing.TB) string {
	tb.Helper()
	if testing.Short() {
		tb.Skip("skipping integration test in short mode")
	}
	adminDSN, err := ensureSingleton()
	if err != nil {
		tb.Skipf("PostgreSQL unavailable: %v", err)
	}
	return adminDSN
}

func open(tb testing.TB, adminDSN, name, template string) *Database {
	tb.Helper()

	err := createDatabase(adminDSN, name, template)
	require.NoError(tb, err, "failed to create test database")

	dsn := replaceDBName(adminDSN, name)
	db, err := sql.Open("pgx", dsn)
	require.NoError(tb, err, "failed to connect to test database")
	require.NoError(tb, db.Ping(), "failed to ping test database")

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(tb, err, "failed to create pgx pool")

	tb.Cleanup(func() {
		pool.Close()
		_ = db.Close()

		// Drop database in background
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = dropDatabase(ctx, adminDSN, name)
		}()
	})

	return &Database{DSN: dsn, SQL: db, Pool: pool}
}

// uniqueDBName generates a unique database name with the given prefix.
func uniqueDBName(prefix string) string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return fmt.Sprintf("%s_%s", prefix, hex.EncodeToString(b))
}

// createDatabase creates a database, copied from template when one is given.
func createDatabase(adminDSN, name, template string) error {
	db, err := sql.Open("pgx", adminDSN)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	stmt := "CREATE DATABASE " + pgx.Identifier{name}.Sanitize()
	if template != "" {
		// The template must have no other connections.
		terminateBackends(context.Background(), db, template)
		stmt += " WITH TEMPLATE " + pgx.Identifier{template}.Sanitize()
	}
	_, err = db.Exec(stmt)
	return err
}

// markAsTemplate marks a database as a template for faster copying.
func markAsTemplate(adminDSN, name string) error {
	db, err := sql.Open("pgx", adminDSN)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	terminateBackends(context.Background(), db, name)
	_, err = db.Exec("ALTER DATABASE " + pgx.Identifier{name}.Sanitize() + " WITH is_template = true")
	return err
}

// dropDatabase drops a database.
func dropDatabase(ctx context.Context, adminDSN, name string) error {
	db, err := sql.Open("pgx", adminDSN)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	terminateBackends(ctx, db, name)
	_, err = db.ExecContext(ctx, "DROP DATABASE IF EXISTS "+pgx.Identifier{name}.Sanitize())
	return err
}

func terminateBackends(ctx context.Context, db *sql.DB, name string) {
	_, _ = db.ExecContext(ctx, `
		SELECT pg_terminate_backend(pid)
		FROM pg_stat_activity
		WHERE datname = $1 AND pid <> pg_backend_pid()
	`, name)
}

// applyMigrations creates the default search table.
func applyMigrations(dsn string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := migrator.NewMigrator(db, migrator.DefaultTable).Migrate(ctx, migrator.Options{}); err != nil {
		return fmt.Errorf("migrate search table: %w", err)
	}
	return nil
}

// replaceDBName replaces the database name in a postgres:// URL.
func replaceDBName(dsn, newDB string) string {
	query := ""
	if i := strings.IndexByte(dsn, '?'); i >= 0 {
		dsn, query = dsn[:i], dsn[i:]
	}
	if i := strings.LastIndexByte(dsn, '/'); i >= 0 {
		return dsn[:i+1] + newDB + query
	}
	return dsn + query
}
