// Package postgres implements the session ledger on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sessionguard/auth-api/internal/core/domain"
)

var errEmptyToken = errors.New("ledger: token and principal id are required")

// Ledger implements ports.SessionLedger on the session_tokens table.
type Ledger struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewLedger creates a Postgres-backed session ledger.
func NewLedger(pool *pgxpool.Pool) *Ledger {
	return &Ledger{pool: pool, now: func() time.Time { return time.Now().UTC() }}
}

// Issue inserts a usable record for principalID.
func (l *Ledger) Issue(ctx context.Context, token, principalID string) (*domain.TokenRecord, error) {
	if token == "" || principalID == "" {
		return nil, errEmptyToken
	}
	rec, err := insertTx(ctx, l.pool, l.now(), token, principalID)
	if err != nil {
		return nil, fmt.Errorf("insert token: %w", err)
	}
	return rec, nil
}

// FindUsable looks up a token that is neither revoked nor logged out.
func (l *Ledger) FindUsable(ctx context.Context, token string) (*domain.TokenRecord, bool, error) {
	rec, ok, err := findUsable(ctx, l.pool, token)
	if err != nil {
		return nil, false, fmt.Errorf("find token: %w", err)
	}
	return rec, ok, nil
}

// RevokeAllUsable revokes every usable token of principalID.
func (l *Ledger) RevokeAllUsable(ctx context.Context, principalID string) (int, error) {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin revoke: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := lockPrincipalTx(ctx, tx, principalID); err != nil {
		return 0, fmt.Errorf("lock principal: %w", err)
	}
	n, err := revokeAllTx(ctx, tx, l.now(), principalID)
	if err != nil {
		return 0, fmt.Errorf("revoke tokens: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit revoke: %w", err)
	}
	return n, nil
}

// IssueExclusive revokes the principal's usable tokens and records the new one
// in a single transaction. The advisory lock serialises concurrent logins of
// the same principal; readers see either the old or the new token, never both.
func (l *Ledger) IssueExclusive(ctx context.Context, token, principalID string) (*domain.TokenRecord, error) {
	if token == "" || principalID == "" {
		return nil, errEmptyToken
	}

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin login: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := lockPrincipalTx(ctx, tx, principalID); err != nil {
		return nil, fmt.Errorf("lock principal: %w", err)
	}

	now := l.now()
	if _, err := revokeAllTx(ctx, tx, now, principalID); err != nil {
		return nil, fmt.Errorf("revoke tokens: %w", err)
	}
	rec, err := insertTx(ctx, tx, now, token, principalID)
	if err != nil {
		return nil, fmt.Errorf("insert token: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit login: %w", err)
	}
	return rec, nil
}

// MarkLoggedOut flags token as logged out. Unknown tokens are ignored.
func (l *Ledger) MarkLoggedOut(ctx context.Context, token string) error {
	_, err := l.pool.Exec(ctx, `
		UPDATE session_tokens
		SET logged_out = TRUE, updated_at = $2
		WHERE token = $1 AND NOT logged_out
	`, token, l.now())
	if err != nil {
		return fmt.Errorf("logout token: %w", err)
	}
	return nil
}
