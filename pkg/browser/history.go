package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/wayfinder/internal/logging"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/ports"
)

// History implements ports.BrowserHistory for one console session.
// Safe for concurrent use within a process; cross-process access must be
// serialized by the caller (see session.Manager).
type History struct {
	store     ports.EntryStore
	sessionID string
	initial   string
	logger    *slog.Logger
	now       func() time.Time

	mu    sync.Mutex
	onPop func(ctx context.Context)
}

// Option configures a History.
type Option func(*History)

// WithInitialLocation sets the location reported before anything is pushed.
func WithInitialLocation(href string) Option {
	return func(h *History) {
		h.initial = href
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *History) {
		h.logger = logger
	}
}

// WithClock overrides the time source used to stamp entries.
func WithClock(now func() time.Time) Option {
	return func(h *History) {
		h.now = now
	}
}

// New creates the history of sessionID backed by store.
func New(store ports.EntryStore, sessionID string, opts ...Option) *History {
	h := &History{
		store:     store,
		sessionID: sessionID,
		logger:    logging.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SessionID returns the session the history belongs to.
func (h *History) SessionID() string {
	return h.sessionID
}

// Location returns the href of the current entry.
func (h *History) Location(ctx context.Context) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	entries, err := h.load(ctx)
	if err != nil {
		return "", err
	}
	if current, ok := entries.Current(); ok {
		return current.Href, nil
	}
	return h.initial, nil
}

// PushState drops the entries after the cursor and appends href.
func (h *History) PushState(ctx context.Context, href string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	entries, err := h.load(ctx)
	if err != nil {
		return err
	}
	entries.Items = append(entries.Items[:entries.Cursor+1], domain.Entry{Href: href, Time: h.now()})
	entries.Cursor = len(entries.Items) - 1
	return h.save(ctx, entries)
}

// ReplaceState overwrites the current entry, or pushes when there is none.
func (h *History) ReplaceState(ctx context.Context, href string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	entries, err := h.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := entries.Current(); !ok {
		entries.Items = append(entries.Items[:0], domain.Entry{Href: href, Time: h.now()})
		entries.Cursor = 0
		return h.save(ctx, entries)
	}
	entries.Items[entries.Cursor] = domain.Entry{Href: href, Time: h.now()}
	return h.save(ctx, entries)
}

// OnPopState registers the callback fired by Back, Forward and Go.
func (h *History) OnPopState(fn func(ctx context.Context)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onPop = fn
}

// Back moves one entry back. It returns domain.ErrNoHistory at the start.
func (h *History) Back(ctx context.Context) error {
	return h.Go(ctx, -1)
}

// Forward moves one entry forward. It returns domain.ErrNoHistory at the end.
func (h *History) Forward(ctx context.Context) error {
	return h.Go(ctx, 1)
}

// Go moves the cursor by delta entries and fires the pop-state callback.
func (h *History) Go(ctx context.Context, delta int) error {
	h.mu.Lock()
	entries, err := h.load(ctx)
	if err != nil {
		h.mu.Unlock()
		return err
	}
	target := entries.Cursor + delta
	if delta == 0 || target < 0 || target >= len(entries.Items) {
		h.mu.Unlock()
		return domain.ErrNoHistory
	}
	entries.Cursor = target
	if err := h.save(ctx, entries); err != nil {
		h.mu.Unlock()
		return err
	}
	onPop := h.onPop
	h.mu.Unlock()

	h.logger.Debug("history moved", "session_id", h.sessionID, "cursor", target)
	if onPop != nil {
		onPop(ctx)
	}
	return nil
}

// Entries returns a copy of the stored entries.
func (h *History) Entries(ctx context.Context) (*domain.Entries, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.load(ctx)
}

// Clear deletes the stored entries.
func (h *History) Clear(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.store.Delete(ctx, h.sessionID); err != nil {
		return fmt.Errorf("failed to clear history of session %s: %w", h.sessionID, err)
	}
	return nil
}

func (h *History) load(ctx context.Context) (*domain.Entries, error) {
	entries, err := h.store.Load(ctx, h.sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return domain.NewEntries(h.sessionID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load history of session %s: %w", h.sessionID, err)
	}
	return entries, nil
}

func (h *History) save(ctx context.Context, entries *domain.Entries) error {
	if err := h.store.Save(ctx, h.sessionID, entries); err != nil {
		return fmt.Errorf("failed to save history of session %s: %w", h.sessionID, err)
	}
	return nil
}
