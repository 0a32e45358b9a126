package domain

import (
	"slices"
	"time"
)

// Role is an authorization role granted to a principal.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleUser    Role = "USER"
)

// DefaultRole is granted to every newly registered principal.
const DefaultRole = RoleUser

// PrincipalStatus is the lifecycle state of a principal record.
type PrincipalStatus string

const (
	PrincipalActive  PrincipalStatus = "active"
	PrincipalDeleted PrincipalStatus = "deleted"
)

// Principal is the persisted account record owned by the credential store.
// It is never used as the per-request identity; see AuthenticatedIdentity.
type Principal struct {
	ID           string          `json:"id"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"-"`
	Roles        []Role          `json:"roles"`
	Status       PrincipalStatus `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// IsActive reports whether the principal may authenticate.
func (p *Principal) IsActive() bool {
	return p != nil && p.Status == PrincipalActive
}

// Identity builds the request-scoped identity for this principal.
func (p *Principal) Identity() AuthenticatedIdentity {
	return AuthenticatedIdentity{
		PrincipalID: p.ID,
		Email:       p.Email,
		Roles:       slices.Clone(p.Roles),
	}
}

// AuthenticatedIdentity is attached to a request once its bearer token has been
// accepted by both the token codec and the session ledger. It is never persisted.
type AuthenticatedIdentity struct {
	PrincipalID string `json:"principal_id"`
	Email       string `json:"email"`
	Roles       []Role `json:"roles"`
}

// HasAnyRole reports whether the identity holds at least one of roles.
func (i AuthenticatedIdentity) HasAnyRole(roles ...Role) bool {
	for _, r := range roles {
		if slices.Contains(i.Roles, r) {
			return true
		}
	}
	return false
}
