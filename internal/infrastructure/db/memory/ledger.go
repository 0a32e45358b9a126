// Package memory holds process-local implementations of the persistence ports.
// They are used for development and tests when no database is configured.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sessionguard/auth-api/internal/core/domain"
)

var (
	errEmptyToken     = errors.New("ledger: token and principal id are required")
	errDuplicateToken = errors.New("ledger: token already recorded")
)

// Ledger is an in-memory session ledger. A single mutex serialises writers,
// which makes IssueExclusive atomic with respect to FindUsable and to other
// logins.
type Ledger struct {
	mu          sync.RWMutex
	byToken     map[string]*domain.TokenRecord
	byPrincipal map[string][]*domain.TokenRecord
	now         func() time.Time
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		byToken:     make(map[string]*domain.TokenRecord),
		byPrincipal: make(map[string][]*domain.TokenRecord),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (l *Ledger) Issue(ctx context.Context, token, principalID string) (*domain.TokenRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.issueLocked(token, principalID)
}

func (l *Ledger) FindUsable(ctx context.Context, token string) (*domain.TokenRecord, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	rec, ok := l.byToken[token]
	if !ok || !rec.Usable() {
		return nil, false, nil
	}
	clone := *rec
	return &clone, true, nil
}

func (l *Ledger) RevokeAllUsable(ctx context.Context, principalID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.revokeLocked(principalID), nil
}

func (l *Ledger) IssueExclusive(ctx context.Context, token, principalID string) (*domain.TokenRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	// fail before revoking so a rejected login leaves the ledger untouched
	if err := l.checkNewLocked(token, principalID); err != nil {
		return nil, err
	}
	l.revokeLocked(principalID)
	return l.issueLocked(token, principalID)
}

func (l *Ledger) MarkLoggedOut(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.byToken[token]
	if !ok || rec.LoggedOut {
		return nil
	}
	rec.LoggedOut = true
	rec.UpdatedAt = l.now()
	return nil
}

// Records returns a copy of every record owned by principalID, oldest first.
func (l *Ledger) Records(principalID string) []domain.TokenRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.TokenRecord, 0, len(l.byPrincipal[principalID]))
	for _, rec := range l.byPrincipal[principalID] {
		out = append(out, *rec)
	}
	return out
}

func (l *Ledger) checkNewLocked(token, principalID string) error {
	if token == "" || principalID == "" {
		return errEmptyToken
	}
	if _, dup := l.byToken[token]; dup {
		return errDuplicateToken
	}
	return nil
}

func (l *Ledger) issueLocked(token, principalID string) (*domain.TokenRecord, error) {
	if err := l.checkNewLocked(token, principalID); err != nil {
		return nil, err
	}

	now := l.now()
	rec := &domain.TokenRecord{
		ID:          uuid.NewString(),
		Token:       token,
		Type:        domain.TokenTypeBearer,
		PrincipalID: principalID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	l.byToken[token] = rec
	l.byPrincipal[principalID] = append(l.byPrincipal[principalID], rec)

	clone := *rec
	return &clone, nil
}

func (l *Ledger) revokeLocked(principalID string) int {
	now := l.now()
	n := 0
	for _, rec := range l.byPrincipal[principalID] {
		if rec.Usable() {
			rec.Revoked = true
			rec.UpdatedAt = now
			n++
		}
	}
	return n
}
