package ports

import (
	"context"

	"github.com/sessionguard/auth-api/internal/core/domain"
)

// SessionLedger is the authoritative record of issued tokens.
type SessionLedger interface {
	// Issue records a new usable token for principalID.
	Issue(ctx context.Context, token, principalID string) (*domain.TokenRecord, error)
	// FindUsable returns ok=false, without error, when the token is unknown,
	// revoked or logged out.
	FindUsable(ctx context.Context, token string) (rec *domain.TokenRecord, ok bool, err error)
	// RevokeAllUsable revokes every usable record of principalID and returns
	// how many were flipped.
	RevokeAllUsable(ctx context.Context, principalID string) (int, error)
	// IssueExclusive runs RevokeAllUsable followed by Issue as one atomic unit.
	IssueExclusive(ctx context.Context, token, principalID string) (*domain.TokenRecord, error)
	// MarkLoggedOut is idempotent and a no-op for unknown tokens.
	MarkLoggedOut(ctx context.Context, token string) error
}
