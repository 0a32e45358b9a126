package ports

import (
	"time"

	"github.com/sessionguard/auth-api/internal/core/domain"
)

// TokenCodec signs and parses bearer tokens. Implementations do no I/O.
type TokenCodec interface {
	Issue(principalID, subject string, extra map[string]any, now time.Time) (string, error)
	// Decode fails with domain.ErrTokenMalformed, domain.ErrTokenExpired or
	// domain.ErrTokenBadSignature.
	Decode(token string) (*domain.Claims, error)
	SubjectOf(token string) (string, error)
	IsExpired(token string) bool
}
