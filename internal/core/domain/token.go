package domain

import "time"

// TokenType tags the kind of credential a TokenRecord tracks.
type TokenType string

const TokenTypeBearer TokenType = "BEARER"

// TokenRecord is the ledger entry for one issued token. Records are only ever
// flipped to revoked or logged out; they are kept as an audit trail.
type TokenRecord struct {
	ID          string    `json:"id"`
	Token       string    `json:"token"`
	Type        TokenType `json:"type"`
	LoggedOut   bool      `json:"logged_out"`
	Revoked     bool      `json:"revoked"`
	PrincipalID string    `json:"principal_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Usable reports whether the ledger still honours this record.
func (r *TokenRecord) Usable() bool {
	return r != nil && !r.LoggedOut && !r.Revoked
}

// Claims is the decoded payload of a bearer token.
type Claims struct {
	ID          string
	Subject     string
	PrincipalID string
	IssuedAt    time.Time
	ExpiresAt   time.Time
	Extra       map[string]any
}
