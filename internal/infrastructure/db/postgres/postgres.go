package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultTimeout = 5 * time.Second

// Config captures the settings for establishing a PostgreSQL pool.
type Config struct {
	URL      string
	MaxConns int32
	Timeout  time.Duration
}

// Connect builds a pgxpool and validates connectivity by acquiring a
// connection. A default timeout is applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("postgres config: %w", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return pool, nil
}

// Schema is the DDL of the session ledger. The partial unique index backs the
// one-usable-token-per-principal rule at the storage level.
const Schema = `
CREATE TABLE IF NOT EXISTS session_tokens (
	id           UUID        PRIMARY KEY,
	token        TEXT        NOT NULL UNIQUE,
	token_type   TEXT        NOT NULL,
	logged_out   BOOLEAN     NOT NULL DEFAULT FALSE,
	revoked      BOOLEAN     NOT NULL DEFAULT FALSE,
	principal_id TEXT        NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS session_tokens_one_usable_idx
	ON session_tokens (principal_id)
	WHERE NOT logged_out AND NOT revoked;
`

// EnsureSchema applies Schema. Every statement is idempotent.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply ledger schema: %w", err)
	}
	return nil
}
