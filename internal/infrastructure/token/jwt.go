// Package token implements the bearer token codec on top of HS256 JWTs.
package token

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sessionguard/auth-api/internal/core/domain"
)

// DefaultTTL is the lifetime of every issued token.
const DefaultTTL = 5 * 24 * time.Hour

// minKeyBytes is the smallest HS256 key accepted (256 bits).
const minKeyBytes = 32

const claimPrincipalID = "pid"

var registeredClaims = map[string]struct{}{
	"iss": {}, "sub": {}, "aud": {}, "exp": {}, "nbf": {}, "iat": {}, "jti": {},
	claimPrincipalID: {},
}

// Codec signs and parses tokens with a single symmetric key. It is safe for
// concurrent use.
type Codec struct {
	key    []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// Option customises a Codec.
type Option func(*Codec)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *Codec) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock sets the clock used to judge expiry at decode time.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCodec builds a Codec from a base64 encoded secret. A secret that cannot be
// decoded, or is shorter than 256 bits, is a configuration error.
func NewCodec(secret string, opts ...Option) (*Codec, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return nil, err
	}

	c := &Codec{key: key, ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return c.now() }),
	)
	return c, nil
}

func decodeSecret(secret string) ([]byte, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("token: signing secret is empty")
	}
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("token: signing secret is not valid base64: %w", err)
	}
	if len(key) < minKeyBytes {
		return nil, fmt.Errorf("token: signing secret must be at least %d bytes, got %d", minKeyBytes, len(key))
	}
	return key, nil
}

// TTL returns the lifetime applied to issued tokens.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Issue signs a token for subject. Registered claim names in extra are ignored.
func (c *Codec) Issue(principalID, subject string, extra map[string]any, now time.Time) (string, error) {
	claims := jwt.MapClaims{}
	for k, v := range extra {
		if _, reserved := registeredClaims[k]; reserved {
			continue
		}
		claims[k] = v
	}
	claims["sub"] = subject
	claims["iat"] = jwt.NewNumericDate(now)
	claims["exp"] = jwt.NewNumericDate(now.Add(c.ttl))
	claims["jti"] = uuid.NewString()
	if principalID != "" {
		claims[claimPrincipalID] = principalID
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature and expiry of raw and returns its claims.
func (c *Codec) Decode(raw string) (*domain.Claims, error) {
	mc := jwt.MapClaims{}
	_, err := c.parser.ParseWithClaims(raw, mc, func(*jwt.Token) (any, error) {
		return c.key, nil
	})
	if err != nil {
		return nil, classify(err)
	}

	sub, err := mc.GetSubject()
	if err != nil || sub == "" {
		return nil, domain.ErrTokenMalformed
	}
	exp, _ := mc.GetExpirationTime()
	iat, _ := mc.GetIssuedAt()

	out := &domain.Claims{Subject: sub, Extra: map[string]any{}}
	if exp != nil {
		out.ExpiresAt = exp.Time
	}
	if iat != nil {
		out.IssuedAt = iat.Time
	}
	out.ID, _ = mc["jti"].(string)
	out.PrincipalID, _ = mc[claimPrincipalID].(string)
	for k, v := range mc {
		if _, reserved := registeredClaims[k]; !reserved {
			out.Extra[k] = v
		}
	}
	return out, nil
}

// SubjectOf returns the subject of a valid token.
func (c *Codec) SubjectOf(raw string) (string, error) {
	claims, err := c.Decode(raw)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// IsExpired reports whether raw is correctly signed but past its expiry.
func (c *Codec) IsExpired(raw string) bool {
	_, err := c.Decode(raw)
	return errors.Is(err, domain.ErrTokenExpired)
}

// classify maps jwt parse errors onto the codec failure kinds. The parser
// verifies the signature before claims, so an expired token with a bad
// signature reports a bad signature.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return domain.ErrTokenBadSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.ErrTokenExpired
	default:
		return domain.ErrTokenMalformed
	}
}
