package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrNoHistory is returned when a history move goes past either end.
var ErrNoHistory = errors.New("no history entry in that direction")
