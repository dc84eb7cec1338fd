package config

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ConnectPostgres creates a pgx connection pool and verifies connectivity.
func ConnectPostgres(cfg *Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// InitSchema enables the pgvector extension and creates the tables and
// indexes the application needs. Statements are idempotent so both the API
// server and the worker can run this safely at startup.
func InitSchema(ctx context.Context, pool *pgxpool.Pool, vectorDim int) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunks (
			id BIGSERIAL PRIMARY KEY,
			source_name TEXT NOT NULL,
			content TEXT NOT NULL CHECK (content <> ''),
			embedding VECTOR(%d) NOT NULL,
			sequence_index INT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, vectorDim),

		`CREATE INDEX IF NOT EXISTS chunks_source_name_idx ON chunks (source_name)`,

		// L2 index matching the <-> operator used by similarity search.
		`CREATE INDEX IF NOT EXISTS chunks_embedding_idx
			ON chunks USING ivfflat (embedding vector_l2_ops) WITH (lists = 100)`,

		`CREATE TABLE IF NOT EXISTS conversation_turns (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			message TEXT NOT NULL,
			response TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE INDEX IF NOT EXISTS conversation_turns_user_created_idx
			ON conversation_turns (user_id, created_at)`,

		`CREATE TABLE IF NOT EXISTS ingest_jobs (
			id UUID PRIMARY KEY,
			source_name TEXT NOT NULL,
			file_path TEXT NOT NULL,
			sectioned BOOLEAN NOT NULL DEFAULT false,
			status TEXT NOT NULL DEFAULT 'pending',
			chunk_count INT NOT NULL DEFAULT 0,
			error TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			finished_at TIMESTAMPTZ
		)`,

		`CREATE INDEX IF NOT EXISTS ingest_jobs_status_idx ON ingest_jobs (status, updated_at)`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema init failed: %w", err)
		}
	}
	return nil
}
