// Package testutil provides shared testing infrastructure: mock model and
// embedder implementations, and a disposable PostgreSQL container with the
// schema applied.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aurami/origin/db"
	"github.com/aurami/origin/internal/database"
)

// TestDB wraps a PostgreSQL test container with a ready connection pool.
// The container runs pgvector/pgvector:pg16 with the full schema migrated.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB starts a PostgreSQL container with the pgvector extension,
// runs all migrations, and returns a connection pool with vector types
// registered. Cleanup is registered on t.
//
// Set ORIGIN_SKIP_DOCKER_TESTS=1 to skip tests that need Docker.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	if os.Getenv("ORIGIN_SKIP_DOCKER_TESTS") != "" {
		t.Skip("ORIGIN_SKIP_DOCKER_TESTS set; skipping container test")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"pgvector/pgvector:pg16",
		postgres.WithDatabase("origin_test"),
		postgres.WithUsername("origin_test"),
		postgres.WithPassword("test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		_ = pgContainer.Terminate(context.Background())
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("container connection string: %v", err)
	}

	if err := db.Migrate(connStr); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	pool, err := database.New(ctx, connStr)
	if err != nil {
		t.Fatalf("create connection pool: %v", err)
	}
	t.Cleanup(pool.Close)

	return &TestDB{
		Container: pgContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}
