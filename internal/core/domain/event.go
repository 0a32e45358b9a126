package domain

import "time"

// SessionEventKind names a session lifecycle transition.
type SessionEventKind string

const (
	EventRegistered SessionEventKind = "registered"
	EventLogin      SessionEventKind = "login"
	EventLogout     SessionEventKind = "logout"
)

// SessionEvent is one entry of the session audit trail.
type SessionEvent struct {
	Kind        SessionEventKind
	PrincipalID string
	Email       string
	At          time.Time
}
