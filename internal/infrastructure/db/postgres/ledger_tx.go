package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sessionguard/auth-api/internal/core/domain"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// lockPrincipalTx serialises ledger writers for one principal until the
// surrounding transaction ends.
func lockPrincipalTx(ctx context.Context, tx pgx.Tx, principalID string) error {
	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, principalID)
	return err
}

func insertTx(ctx context.Context, q querier, now time.Time, token, principalID string) (*domain.TokenRecord, error) {
	rec := &domain.TokenRecord{
		ID:          uuid.NewString(),
		Token:       token,
		Type:        domain.TokenTypeBearer,
		PrincipalID: principalID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := q.Exec(ctx, `
		INSERT INTO session_tokens (
			id, token, token_type, logged_out, revoked, principal_id, created_at, updated_at
		) VALUES (
			$1, $2, $3, FALSE, FALSE, $4, $5, $5
		)
	`, rec.ID, rec.Token, string(rec.Type), rec.PrincipalID, now)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func revokeAllTx(ctx context.Context, q querier, now time.Time, principalID string) (int, error) {
	tag, err := q.Exec(ctx, `
		UPDATE session_tokens
		SET revoked = TRUE, updated_at = $2
		WHERE principal_id = $1 AND NOT revoked AND NOT logged_out
	`, principalID, now)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func findUsable(ctx context.Context, q querier, token string) (*domain.TokenRecord, bool, error) {
	var (
		rec       domain.TokenRecord
		tokenType string
	)
	err := q.QueryRow(ctx, `
		SELECT id, token, token_type, logged_out, revoked, principal_id, created_at, updated_at
		FROM session_tokens
		WHERE token = $1 AND NOT revoked AND NOT logged_out
	`, token).Scan(
		&rec.ID,
		&rec.Token,
		&tokenType,
		&rec.LoggedOut,
		&rec.Revoked,
		&rec.PrincipalID,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	rec.Type = domain.TokenType(tokenType)
	return &rec, true, nil
}
