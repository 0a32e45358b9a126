package domain

import "errors"

// Failure taxonomy. Anything that does not match one of these is reported
// externally as an unexpected error.
var (
	ErrTokenInvalid      = errors.New("authentication token is invalid")
	ErrPrincipalNotFound = errors.New("principal not found")
	ErrBadCredentials    = errors.New("bad credentials")
	ErrPrincipalExists   = errors.New("principal already exists")
	ErrUnauthenticated   = errors.New("authentication required")
	ErrInsufficientRole  = errors.New("insufficient role")
	ErrValidationFailed  = errors.New("validation failed")
)

// Token codec failures. All of them collapse to ErrTokenInvalid under errors.Is.
var (
	ErrTokenMalformed    = &tokenError{reason: "malformed"}
	ErrTokenExpired      = &tokenError{reason: "expired"}
	ErrTokenBadSignature = &tokenError{reason: "bad signature"}
)

type tokenError struct {
	reason string
}

func (e *tokenError) Error() string { return ErrTokenInvalid.Error() + ": " + e.reason }

func (e *tokenError) Unwrap() error { return ErrTokenInvalid }

// Failure attaches a human readable detail to one of the taxonomy errors.
// errors.Is sees through it to Kind.
type Failure struct {
	Kind   error
	Detail string
}

func (f *Failure) Error() string {
	if f.Detail == "" {
		return f.Kind.Error()
	}
	return f.Kind.Error() + ": " + f.Detail
}

func (f *Failure) Unwrap() error { return f.Kind }

// Fail returns kind decorated with detail.
func Fail(kind error, detail string) error {
	return &Failure{Kind: kind, Detail: detail}
}
