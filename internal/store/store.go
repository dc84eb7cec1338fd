package store

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store exposes Postgres-backed persistence for chunks, conversation
// history and ingestion jobs. All methods are safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}
