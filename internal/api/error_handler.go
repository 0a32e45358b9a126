package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sessionguard/auth-api/internal/api/handler"
	"github.com/sessionguard/auth-api/internal/core/domain"
	"github.com/sessionguard/auth-api/internal/core/ports"
)

// Error codes reported in the response envelope.
const (
	CodeUnexpected        = 9000
	CodeBadRequest        = 9002
	CodeValidationFailed  = 1001
	CodePrincipalNotFound = 2001
	CodeBadCredentials    = 2002
	CodeInsufficientRole  = 2003
	CodeUnauthenticated   = 2004
	CodeTokenInvalid      = 2005
	CodePrincipalExists   = 3001
)

type errorKind struct {
	err     error
	code    int
	status  int
	message string
}

// classified is the closed failure taxonomy. Anything else is unexpected.
var classified = []errorKind{
	{domain.ErrValidationFailed, CodeValidationFailed, http.StatusBadRequest, domain.MsgValidation},
	{domain.ErrPrincipalNotFound, CodePrincipalNotFound, http.StatusBadRequest, domain.MsgPrincipalNotFound},
	{domain.ErrBadCredentials, CodeBadCredentials, http.StatusBadRequest, domain.MsgBadCredentials},
	{domain.ErrInsufficientRole, CodeInsufficientRole, http.StatusForbidden, domain.MsgInsufficientRole},
	{domain.ErrUnauthenticated, CodeUnauthenticated, http.StatusUnauthorized, domain.MsgUnauthenticated},
	{domain.ErrTokenInvalid, CodeTokenInvalid, http.StatusBadRequest, domain.MsgTokenInvalid},
	{domain.ErrPrincipalExists, CodePrincipalExists, http.StatusBadRequest, domain.MsgPrincipalExists},
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps the failure taxonomy to its code, status and localized message.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders every failure in the standard response envelope.
func NewHTTPErrorHandler(catalog ports.MessageCatalog, log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := resolveError(err, catalog, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = handler.RespondError(c, status, body)
	}
}

func resolveError(err error, catalog ports.MessageCatalog, log zerolog.Logger, c echo.Context) (int, handler.ErrorBody) {
	locale := domain.LocaleFrom(c.Request().Context())

	for _, k := range classified {
		if !errors.Is(err, k.err) {
			continue
		}
		log.Warn().
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Int("code", k.code).
			Msg(err.Error())
		return k.status, handler.ErrorBody{
			Code:    k.code,
			Message: catalog.Lookup(k.message, locale),
			Detail:  detailOf(err),
		}
	}

	// Echo's own client errors (unknown route, wrong method, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code < http.StatusInternalServerError {
		log.Warn().
			Str("method", c.Request().Method).
			Str("path", c.Request().URL.Path).
			Int("status", he.Code).
			Msg(fmt.Sprintf("%v", he.Message))
		return he.Code, handler.ErrorBody{
			Code:    CodeBadRequest,
			Message: catalog.Lookup(domain.MsgBadRequest, locale),
			Detail:  fmt.Sprintf("%v", he.Message),
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError, handler.ErrorBody{
		Code:    CodeUnexpected,
		Message: catalog.Lookup(domain.MsgUnexpected, locale),
	}
}

func detailOf(err error) string {
	var f *domain.Failure
	if errors.As(err, &f) && f.Detail != "" {
		return f.Detail
	}
	return err.Error()
}
