package ports

import (
	"context"

	"github.com/sessionguard/auth-api/internal/core/domain"
)

// AuthService drives the register, login and logout use cases.
type AuthService interface {
	Register(ctx context.Context, email, password string) (*domain.Principal, error)
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, token string)
}
