package ports

import (
	"context"

	"github.com/sessionguard/auth-api/internal/core/domain"
)

// PasswordHasher produces and checks password digests.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

// MessageCatalog resolves message codes to human readable text. It is never
// consulted for control flow.
type MessageCatalog interface {
	Lookup(code, locale string) string
	// Negotiate picks the best supported locale for an Accept-Language value.
	Negotiate(acceptLanguage string) string
}

// SessionEventSink receives session audit events. Publish must not block the
// caller for longer than it takes to enqueue.
type SessionEventSink interface {
	Publish(event domain.SessionEvent)
}

// SessionEventRepository persists session audit events.
type SessionEventRepository interface {
	InsertSessionEvent(ctx context.Context, event domain.SessionEvent) error
}
