package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QueryRecord is one handled studio query.
type QueryRecord struct {
	ID           uuid.UUID
	Endpoint     string
	Query        string
	ResultCount  int
	Provider     string
	Model        string
	ErrorMessage string
	Duration     time.Duration
	CreatedAt    time.Time
}

// QueryLog stores handled queries for later review.
type QueryLog interface {
	Record(ctx context.Context, rec QueryRecord) error
}

type PostgresQueryLog struct {
	pool *pgxpool.Pool
}

func NewPostgresQueryLog(pool *pgxpool.Pool) *PostgresQueryLog {
	return &PostgresQueryLog{pool: pool}
}

func (s *PostgresQueryLog) Record(ctx context.Context, rec QueryRecord) error {
	if s.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	if _, err := s.pool.Exec(ctx, `
		INSERT INTO studio_queries (id, endpoint, query, result_count, provider, model, error_message, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8, $9)
	`, rec.ID, rec.Endpoint, rec.Query, rec.ResultCount, rec.Provider, rec.Model, rec.ErrorMessage, rec.Duration.Milliseconds(), rec.CreatedAt); err != nil {
		return fmt.Errorf("insert studio query: %w", err)
	}
	return nil
}

// NopQueryLog drops every record.
type NopQueryLog struct{}

func (NopQueryLog) Record(context.Context, QueryRecord) error {
	return nil
}

var (
	_ QueryLog = (*PostgresQueryLog)(nil)
	_ QueryLog = NopQueryLog{}
)
