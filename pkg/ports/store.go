package ports

import (
	"context"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// EntryStore persists the browser history entries of console sessions.
type EntryStore interface {
	// Save persists the entries for a given session ID.
	Save(ctx context.Context, sessionID string, entries *domain.Entries) error

	// Load retrieves the entries for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Entries, error)

	// Delete removes the entries for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of every stored session.
	List(ctx context.Context) ([]string, error)
}
