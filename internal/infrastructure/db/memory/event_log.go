package memory

import (
	"context"
	"sync"

	"github.com/sessionguard/auth-api/internal/core/domain"
)

// EventLog keeps session audit events in memory.
type EventLog struct {
	mu     sync.Mutex
	events []domain.SessionEvent
}

func NewEventLog() *EventLog {
	return &EventLog{}
}

func (l *EventLog) InsertSessionEvent(_ context.Context, event domain.SessionEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
	return nil
}

// Events returns a snapshot of the recorded events.
func (l *EventLog) Events() []domain.SessionEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.SessionEvent, len(l.events))
	copy(out, l.events)
	return out
}
