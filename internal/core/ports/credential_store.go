package ports

import (
	"context"

	"github.com/sessionguard/auth-api/internal/core/domain"
)

// CredentialStore persists principals. Status transitions are updates; Purge is
// the only operation that physically removes a record.
type CredentialStore interface {
	// FindActiveByEmail returns domain.ErrPrincipalNotFound when no active
	// principal has this exact email.
	FindActiveByEmail(ctx context.Context, email string) (*domain.Principal, error)
	// Save inserts the principal when it has no ID and updates it otherwise.
	Save(ctx context.Context, p *domain.Principal) (*domain.Principal, error)
	SoftDelete(ctx context.Context, id string) error
	Purge(ctx context.Context, id string) error
}
