package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sessionguard/auth-api/internal/core/domain"
)

// CredentialStore is an in-memory principal store. Only one active principal
// may hold a given email; deleted principals keep their record.
type CredentialStore struct {
	mu    sync.RWMutex
	byID  map[string]*domain.Principal
	saves int
}

// NewCredentialStore returns an empty store.
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{byID: make(map[string]*domain.Principal)}
}

func (s *CredentialStore) FindActiveByEmail(ctx context.Context, email string) (*domain.Principal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p := s.activeByEmailLocked(email); p != nil {
		return clonePrincipal(p), nil
	}
	return nil, domain.ErrPrincipalNotFound
}

func (s *CredentialStore) Save(ctx context.Context, p *domain.Principal) (*domain.Principal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.IsActive() {
		if other := s.activeByEmailLocked(p.Email); other != nil && other.ID != p.ID {
			return nil, domain.ErrPrincipalExists
		}
	}

	stored := clonePrincipal(p)
	now := time.Now().UTC()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
		if stored.CreatedAt.IsZero() {
			stored.CreatedAt = now
		}
	}
	stored.UpdatedAt = now
	s.byID[stored.ID] = stored
	s.saves++
	return clonePrincipal(stored), nil
}

func (s *CredentialStore) SoftDelete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[id]
	if !ok {
		return domain.ErrPrincipalNotFound
	}
	p.Status = domain.PrincipalDeleted
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *CredentialStore) Purge(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return domain.ErrPrincipalNotFound
	}
	delete(s.byID, id)
	return nil
}

// Saves reports how many successful Save calls the store has seen.
func (s *CredentialStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

func (s *CredentialStore) activeByEmailLocked(email string) *domain.Principal {
	for _, p := range s.byID {
		if p.Email == email && p.IsActive() {
			return p
		}
	}
	return nil
}

func clonePrincipal(p *domain.Principal) *domain.Principal {
	c := *p
	c.Roles = slices.Clone(p.Roles)
	return &c
}
