package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureQueryLogSchema creates the studio query log table when missing.
func EnsureQueryLogSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS studio_queries (
			id UUID PRIMARY KEY,
			endpoint TEXT NOT NULL,
			query TEXT NOT NULL,
			result_count INT NOT NULL DEFAULT 0,
			provider TEXT,
			model TEXT,
			error_message TEXT,
			duration_ms BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		"CREATE INDEX IF NOT EXISTS idx_studio_queries_created ON studio_queries(created_at)",
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("execute schema statement: %w", err)
		}
	}

	return nil
}
