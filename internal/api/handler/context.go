package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/sessionguard/auth-api/internal/core/domain"
)

// ctxIdentity returns the identity attached by the auth middleware. Routes
// behind the role guard always have one; anything else is unauthenticated.
func ctxIdentity(c echo.Context) (domain.AuthenticatedIdentity, error) {
	id, ok := domain.IdentityFrom(c.Request().Context())
	if !ok {
		return domain.AuthenticatedIdentity{}, domain.ErrUnauthenticated
	}
	return id, nil
}

// ctxLocale returns the locale negotiated for this request.
func ctxLocale(c echo.Context) string {
	return domain.LocaleFrom(c.Request().Context())
}
