package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/sessionguard/auth-api/internal/core/domain"
)

// RequireRoles admits requests whose identity holds one of allowed. With no
// roles given any authenticated identity is admitted. Anonymous requests fail
// with domain.ErrUnauthenticated, others with domain.ErrInsufficientRole.
func RequireRoles(allowed ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := domain.IdentityFrom(c.Request().Context())
			if !ok {
				return domain.ErrUnauthenticated
			}
			if len(allowed) > 0 && !id.HasAnyRole(allowed...) {
				return domain.ErrInsufficientRole
			}
			return next(c)
		}
	}
}
