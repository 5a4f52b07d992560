// Package testutil provides database plumbing for postgres adapter tests.
// Tests skip unless TEST_DATABASE_URL points at a disposable database.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SV-Eichenlaub/club-roster-api/internal/adapters/postgres"
)

const envDatabaseURL = "TEST_DATABASE_URL"

// OpenMigratedPool connects to the test database, applies the schema and
// truncates all data tables so each test starts clean. The pool is closed
// via t.Cleanup.
func OpenMigratedPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv(envDatabaseURL)
	if dsn == "" {
		t.Skipf("%s not set; skipping postgres tests", envDatabaseURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolOptions{MaxConns: 4})
	if err != nil {
		t.Fatalf("open pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := postgres.ApplySchema(ctx, pool); err != nil {
		t.Fatalf("apply schema: %v", err)
	}

	// Departments are seed data and stay; everything else is per-test.
	_, err = pool.Exec(ctx, `TRUNCATE members, member_departments, addresses, member_addresses, attendances RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return pool
}
