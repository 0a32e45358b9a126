package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/sessionguard/auth-api/internal/core/domain"
	"github.com/sessionguard/auth-api/internal/core/ports"
	"github.com/sessionguard/auth-api/pkg/metrics"
)

const bearerPrefix = "Bearer "

// BearerToken returns the token of an "Authorization: Bearer <token>" header.
func BearerToken(header string) (string, bool) {
	token, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// AuthOption configures Auth.
type AuthOption func(*authConfig)

type authConfig struct {
	skipper echomiddleware.Skipper
}

// WithSkipper makes Auth pass matching requests through untouched. Routes that
// must tolerate any bearer value, such as logout, are skipped this way.
func WithSkipper(skipper echomiddleware.Skipper) AuthOption {
	return func(cfg *authConfig) { cfg.skipper = skipper }
}

// Auth attaches an AuthenticatedIdentity to requests whose bearer token both
// decodes and is usable in the session ledger. A token that fails to decode
// stops the request with a domain.ErrTokenInvalid error. Every other outcome
// leaves the request anonymous and lets the role guard decide.
func Auth(codec ports.TokenCodec, store ports.CredentialStore, ledger ports.SessionLedger, log zerolog.Logger, opts ...AuthOption) echo.MiddlewareFunc {
	cfg := authConfig{skipper: echomiddleware.DefaultSkipper}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.skipper(c) {
				return next(c)
			}

			token, ok := BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				metrics.AuthDecisionsTotal.WithLabelValues("anonymous").Inc()
				return next(c)
			}

			claims, err := codec.Decode(token)
			if err != nil {
				metrics.AuthDecisionsTotal.WithLabelValues("invalid_token").Inc()
				return err
			}

			ctx := c.Request().Context()
			if _, done := domain.IdentityFrom(ctx); done {
				return next(c)
			}

			principal, err := store.FindActiveByEmail(ctx, claims.Subject)
			if err != nil {
				if !errors.Is(err, domain.ErrPrincipalNotFound) {
					log.Warn().Err(err).Msg("auth: principal lookup failed")
				}
				metrics.AuthDecisionsTotal.WithLabelValues("unknown_principal").Inc()
				return next(c)
			}

			rec, usable, err := ledger.FindUsable(ctx, token)
			if err != nil {
				log.Warn().Err(err).Str("principal_id", principal.ID).Msg("auth: ledger lookup failed")
			}
			if err != nil || !usable || rec.PrincipalID != principal.ID {
				metrics.AuthDecisionsTotal.WithLabelValues("not_usable").Inc()
				return next(c)
			}

			metrics.AuthDecisionsTotal.WithLabelValues("authenticated").Inc()
			c.SetRequest(c.Request().WithContext(domain.WithIdentity(ctx, principal.Identity())))
			return next(c)
		}
	}
}

// Locale negotiates the response locale from Accept-Language and stores it on
// the request context.
func Locale(catalog ports.MessageCatalog) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			locale := catalog.Negotiate(req.Header.Get("Accept-Language"))
			c.SetRequest(req.WithContext(domain.WithLocale(req.Context(), locale)))
			return next(c)
		}
	}
}
