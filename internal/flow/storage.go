package flow

import (
	"context"
	"errors"
)

var (
	// ErrSessionNotFound indicates that no session exists for the given id.
	ErrSessionNotFound = errors.New("flow session not found")
	// ErrInvalidTransition indicates a step transition rejected by the
	// journey's transition table.
	ErrInvalidTransition = errors.New("invalid step transition")
	// ErrInvalidAction indicates an action submitted from a step that does
	// not accept it.
	ErrInvalidAction = errors.New("action not available in current step")
	// ErrAuthRequired indicates an action reserved for authenticated users.
	ErrAuthRequired = errors.New("authentication required")
)

// Storage persists session snapshots so operators can inspect in-flight
// journeys. The in-memory controller state stays authoritative: snapshots
// exclude the live progress pipeline and are written best-effort.
type Storage interface {
	// GetSession returns the stored snapshot for the given session id.
	GetSession(ctx context.Context, id string) (*Session, error)
	// SetSession saves the provided snapshot.
	SetSession(ctx context.Context, sess *Session) error
	// ClearSession removes the snapshot for the given session id.
	ClearSession(ctx context.Context, id string) error
	// ListSessions returns every stored snapshot.
	ListSessions(ctx context.Context) ([]*Session, error)
}
