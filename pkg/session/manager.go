package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/wayfinder"
	"github.com/aretw0/wayfinder/internal/logging"
	"github.com/aretw0/wayfinder/pkg/browser"
	"github.com/aretw0/wayfinder/pkg/dispatch"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed session lock is held.
const DefaultLockTTL = 30 * time.Second

// ErrSessionExists is returned by Create when the id is already in use.
var ErrSessionExists = errors.New("session already exists")

// Session is a live console session.
type Session struct {
	ID      string
	Router  *wayfinder.Router
	History *browser.History
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	cfg   wayfinder.Config
	store ports.EntryStore

	mu       sync.Mutex // guards locks and sessions
	locks    map[string]*lockEntry
	sessions map[string]*Session

	locker     ports.DistributedLocker
	lockTTL    time.Duration
	logger     *slog.Logger
	routerOpts func(sessionID string) []wayfinder.Option
	setup      []func(*Session)
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithRouterOptions adds router options per session, e.g. hooks that need
// to know the session id. The browser history option is always set by the
// Manager.
func WithRouterOptions(fn func(sessionID string) []wayfinder.Option) Option {
	return func(m *Manager) {
		m.routerOpts = fn
	}
}

// WithSetup runs fn on every session before its first dispatch. It is the
// place to register handlers.
func WithSetup(fn func(*Session)) Option {
	return func(m *Manager) {
		m.setup = append(m.setup, fn)
	}
}

// NewManager creates a Manager building routers from cfg and keeping
// histories in store.
func NewManager(cfg wayfinder.Config, store ports.EntryStore, opts ...Option) *Manager {
	m := &Manager{
		cfg:      cfg,
		store:    store,
		locks:    make(map[string]*lockEntry),
		sessions: make(map[string]*Session),
		lockTTL:  DefaultLockTTL,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Create starts a session at href, or at the base URL when href is empty,
// and dispatches its initial state. A parse error discards the session.
func (m *Manager) Create(ctx context.Context, sessionID, href string) (*Session, error) {
	var s *Session
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		if m.cached(sessionID) != nil {
			return fmt.Errorf("%w: %s", ErrSessionExists, sessionID)
		}
		_, err := m.store.Load(ctx, sessionID)
		if err == nil {
			return fmt.Errorf("%w: %s", ErrSessionExists, sessionID)
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("failed to check session existence: %w", err)
		}

		if href == "" {
			href = m.cfg.BaseURL
		}
		s, err = m.build(sessionID)
		if err != nil {
			return err
		}
		// Persist immediately to reserve the id.
		if err := s.History.ReplaceState(ctx, href); err != nil {
			return fmt.Errorf("failed to initialize session: %w", err)
		}
		if _, err := s.Router.Bootstrap(ctx); err != nil {
			if clearErr := s.History.Clear(ctx); clearErr != nil {
				m.logger.Warn("failed to discard session", "session_id", sessionID, "err", clearErr)
			}
			return err
		}
		m.keep(s)
		return nil
	})
	return s, err
}

// Get returns a live session, rehydrating it from the store when this
// Manager has not seen it yet.
func (m *Manager) Get(ctx context.Context, sessionID string) (*Session, error) {
	var s *Session
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		s, err = m.get(ctx, sessionID)
		return err
	})
	return s, err
}

func (m *Manager) get(ctx context.Context, sessionID string) (*Session, error) {
	if s := m.cached(sessionID); s != nil {
		return s, nil
	}
	if _, err := m.store.Load(ctx, sessionID); err != nil {
		return nil, err
	}
	s, err := m.build(sessionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Router.Bootstrap(ctx); err != nil {
		m.logger.Warn("rehydrated session has an invalid location", "session_id", sessionID, "err", err)
	}
	m.keep(s)
	m.logger.Debug("session rehydrated", "session_id", sessionID)
	return s, nil
}

// ChangeState applies delta to the session state.
func (m *Manager) ChangeState(ctx context.Context, sessionID string, delta domain.Tree) (dispatch.Report, error) {
	var report dispatch.Report
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		s, err := m.get(ctx, sessionID)
		if err != nil {
			return err
		}
		report, err = s.Router.ChangeState(ctx, delta)
		return err
	})
	return report, err
}

// Back navigates the session one entry back.
func (m *Manager) Back(ctx context.Context, sessionID string) (*Session, error) {
	return m.move(ctx, sessionID, -1)
}

// Forward navigates the session one entry forward.
func (m *Manager) Forward(ctx context.Context, sessionID string) (*Session, error) {
	return m.move(ctx, sessionID, 1)
}

func (m *Manager) move(ctx context.Context, sessionID string, delta int) (*Session, error) {
	var s *Session
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		s, err = m.get(ctx, sessionID)
		if err != nil {
			return err
		}
		return s.History.Go(ctx, delta)
	})
	return s, err
}

// Delete drops the session and its stored history.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		m.mu.Lock()
		delete(m.sessions, sessionID)
		m.mu.Unlock()
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Config returns the configuration routers are built from.
func (m *Manager) Config() wayfinder.Config {
	return m.cfg
}

// Store returns the underlying entry store.
func (m *Manager) Store() ports.EntryStore {
	return m.store
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

func (m *Manager) build(sessionID string) (*Session, error) {
	h := browser.New(m.store, sessionID,
		browser.WithInitialLocation(m.cfg.BaseURL),
		browser.WithLogger(m.logger),
	)
	var opts []wayfinder.Option
	if m.routerOpts != nil {
		opts = append(opts, m.routerOpts(sessionID)...)
	}
	opts = append(opts, wayfinder.WithBrowserHistory(h))

	router, err := wayfinder.New(m.cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create router for session %s: %w", sessionID, err)
	}
	s := &Session{ID: sessionID, Router: router, History: h}
	for _, fn := range m.setup {
		fn(s)
	}
	return s, nil
}

func (m *Manager) cached(sessionID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[sessionID]
}

func (m *Manager) keep(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
}
