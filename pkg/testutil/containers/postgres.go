//go:build integration

// Package containers starts throwaway Postgres and Redis instances for
// integration tests. Containers are shared per test binary; Ryuk reaps them
// when the run ends.
package containers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"eventhub/internal/platform/postgres"
)

// PostgresContainer wraps a migrated testcontainers Postgres instance.
type PostgresContainer struct {
	URL string
	DB  *sql.DB
}

var (
	pgOnce sync.Once
	pgInst *PostgresContainer
	pgErr  error
)

// GetPostgres returns the shared migrated Postgres container, starting it on
// first use.
func GetPostgres(t *testing.T) *PostgresContainer {
	t.Helper()

	pgOnce.Do(func() {
		pgInst, pgErr = startPostgres()
	})
	if pgErr != nil {
		t.Fatalf("failed to start postgres container: %v", pgErr)
	}
	return pgInst
}

func startPostgres() (*PostgresContainer, error) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("eventhub_test"),
		tcpostgres.WithUsername("eventhub"),
		tcpostgres.WithPassword("eventhub"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, fmt.Errorf("run container: %w", err)
	}

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, fmt.Errorf("connection string: %w", err)
	}

	if err := postgres.Migrate(url); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	openCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	db, err := postgres.Open(openCtx, url)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	return &PostgresContainer{URL: url, DB: db}, nil
}

// TruncateTables empties the given tables and resets their sequences. Use
// between tests for isolation.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	_, err := p.DB.ExecContext(ctx,
		"TRUNCATE "+strings.Join(tables, ", ")+" RESTART IDENTITY CASCADE")
	return err
}
