package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sessionguard/auth-api/internal/core/domain"
	"github.com/sessionguard/auth-api/internal/core/ports"
	"github.com/sessionguard/auth-api/pkg/metrics"
)

// AuthService drives registration, login and logout. A principal holds at most
// one usable token at a time; every login revokes the previous one.
type AuthService struct {
	store   ports.CredentialStore
	ledger  ports.SessionLedger
	codec   ports.TokenCodec
	hasher  ports.PasswordHasher
	catalog ports.MessageCatalog
	events  ports.SessionEventSink
	log     zerolog.Logger
	now     func() time.Time
}

// Option customises an AuthService.
type Option func(*AuthService)

// WithClock overrides the time source used for token issue and audit events.
func WithClock(now func() time.Time) Option {
	return func(s *AuthService) { s.now = now }
}

// WithEventSink sets the sink that receives session audit events.
func WithEventSink(sink ports.SessionEventSink) Option {
	return func(s *AuthService) { s.events = sink }
}

func NewAuthService(
	store ports.CredentialStore,
	ledger ports.SessionLedger,
	codec ports.TokenCodec,
	hasher ports.PasswordHasher,
	catalog ports.MessageCatalog,
	log zerolog.Logger,
	opts ...Option,
) *AuthService {
	s := &AuthService{
		store:   store,
		ledger:  ledger,
		codec:   codec,
		hasher:  hasher,
		catalog: catalog,
		events:  discardSink{},
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a principal with the default role. It never mints a token.
func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.Principal, error) {
	_, err := s.store.FindActiveByEmail(ctx, email)
	switch {
	case err == nil:
		metrics.RegistrationsTotal.WithLabelValues("exists").Inc()
		return nil, s.fail(ctx, domain.ErrPrincipalExists, domain.MsgPrincipalExists)
	case !errors.Is(err, domain.ErrPrincipalNotFound):
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("register: %w", err)
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := s.now()
	created, err := s.store.Save(ctx, &domain.Principal{
		Email:        email,
		PasswordHash: digest,
		Roles:        []domain.Role{domain.DefaultRole},
		Status:       domain.PrincipalActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		if errors.Is(err, domain.ErrPrincipalExists) {
			// lost a race with a concurrent registration
			return nil, s.fail(ctx, domain.ErrPrincipalExists, domain.MsgPrincipalExists)
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("principal_id", created.ID).Msg("principal registered")
	s.emit(domain.EventRegistered, created)
	return created, nil
}

// Login verifies the credentials and issues a fresh token, revoking every
// token the principal held before.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	principal, err := s.store.FindActiveByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrPrincipalNotFound) {
			metrics.LoginsTotal.WithLabelValues("not_found").Inc()
			return "", s.fail(ctx, domain.ErrPrincipalNotFound, domain.MsgPrincipalNotFound)
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Verify(password, principal.PasswordHash) {
		metrics.LoginsTotal.WithLabelValues("bad_credentials").Inc()
		return "", s.fail(ctx, domain.ErrBadCredentials, domain.MsgBadCredentials)
	}

	token, err := s.codec.Issue(principal.ID, principal.Email, nil, s.now())
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("login: issue token: %w", err)
	}

	if _, err := s.ledger.IssueExclusive(ctx, token, principal.ID); err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("login: record token: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("principal_id", principal.ID).Msg("login succeeded")
	s.emit(domain.EventLogin, principal)
	return token, nil
}

// Logout marks token as logged out. It always succeeds from the caller's point
// of view; unknown tokens and ledger failures are only logged.
func (s *AuthService) Logout(ctx context.Context, token string) {
	metrics.LogoutsTotal.Inc()
	if token == "" {
		return
	}

	if err := s.ledger.MarkLoggedOut(ctx, token); err != nil {
		s.log.Warn().Err(err).Msg("logout: mark logged out failed")
		return
	}

	// the owner is only known for tokens that still decode
	claims, err := s.codec.Decode(token)
	if err != nil {
		return
	}
	s.log.Info().Str("principal_id", claims.PrincipalID).Msg("logout")
	s.events.Publish(domain.SessionEvent{
		Kind:        domain.EventLogout,
		PrincipalID: claims.PrincipalID,
		Email:       claims.Subject,
		At:          s.now(),
	})
}

func (s *AuthService) fail(ctx context.Context, kind error, code string) error {
	return domain.Fail(kind, s.catalog.Lookup(code, domain.LocaleFrom(ctx)))
}

func (s *AuthService) emit(kind domain.SessionEventKind, p *domain.Principal) {
	s.events.Publish(domain.SessionEvent{
		Kind:        kind,
		PrincipalID: p.ID,
		Email:       p.Email,
		At:          s.now(),
	})
}

type discardSink struct{}

func (discardSink) Publish(domain.SessionEvent) {}
