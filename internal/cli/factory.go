// Package cli wires configuration, storage and adapters together for the
// wayfinder command.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/wayfinder"
	"github.com/aretw0/wayfinder/internal/config"
	"github.com/aretw0/wayfinder/internal/logging"
	"github.com/aretw0/wayfinder/pkg/adapters/file"
	"github.com/aretw0/wayfinder/pkg/adapters/memory"
	"github.com/aretw0/wayfinder/pkg/adapters/redis"
	"github.com/aretw0/wayfinder/pkg/handlers"
	"github.com/aretw0/wayfinder/pkg/persistence/middleware"
	"github.com/aretw0/wayfinder/pkg/ports"
	"github.com/aretw0/wayfinder/pkg/session"
)

// NewLogger builds the logger described by cfg, writing to w.
func NewLogger(cfg config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if cfg.LogFormat == "json" {
		return logging.NewJSON(w, level), nil
	}
	return logging.New(level), nil
}

// Backend is the persistence selected by the configuration.
type Backend struct {
	Store  ports.EntryStore
	Locker ports.DistributedLocker
	close  func() error
}

// Close releases the backend connections.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// OpenBackend creates the configured entry store, wrapped with the
// configured redaction and encryption, and the session locker when the
// store is shared between replicas.
func OpenBackend(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Backend, error) {
	b := &Backend{}
	switch cfg.Store {
	case config.StoreFile:
		b.Store = file.New(cfg.File.Dir)
	case config.StoreRedis:
		opts := []redis.Option{redis.WithPrefix(cfg.Redis.Prefix)}
		if cfg.Redis.TTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.Redis.TTL))
		}
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		if err := store.Client().Ping(ctx).Err(); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		b.Store = store
		b.Locker = redis.NewLocker(store.Client(), store.Prefix())
		b.close = store.Close
	default:
		b.Store = memory.NewStore()
	}

	var mws []middleware.Middleware
	if len(cfg.Persistence.Redact) > 0 {
		mws = append(mws, middleware.NewRedactMiddleware(cfg.Persistence.Redact))
	}
	active, fallback, err := cfg.EncryptionKeys()
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	if active != nil {
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallback,
		}))
	}
	b.Store = middleware.Chain(b.Store, mws...)

	logger.Debug("persistence ready", "store", cfg.Store, "middlewares", len(mws), "locking", b.Locker != nil)
	return b, nil
}

// RegisterConsole registers the handlers of a console without a control
// plane: the standard keys and a model handler over a LogConnector.
func RegisterConsole(r *wayfinder.Router, logger *slog.Logger) *handlers.ModelHandler {
	model := handlers.NewModelHandler(handlers.LogConnector{Logger: logger}, handlers.WithModelLogger(logger))
	r.Register(handlers.Standard()...)
	r.Register(model.Entry())
	return model
}

// NewRouter creates a standalone router with the console handlers.
func NewRouter(cfg config.Config, logger *slog.Logger, opts ...wayfinder.Option) (*wayfinder.Router, error) {
	opts = append([]wayfinder.Option{wayfinder.WithLogger(logger)}, opts...)
	r, err := wayfinder.New(cfg.Config, opts...)
	if err != nil {
		return nil, err
	}
	RegisterConsole(r, logger)
	return r, nil
}

// NewSessionManager creates the session manager over backend. routerOpts
// are applied to every session router.
func NewSessionManager(cfg config.Config, backend *Backend, logger *slog.Logger, routerOpts ...func(string) []wayfinder.Option) *session.Manager {
	opts := []session.Option{
		session.WithLogger(logger),
		session.WithRouterOptions(func(id string) []wayfinder.Option {
			out := []wayfinder.Option{wayfinder.WithLogger(logger.With("session_id", id))}
			for _, fn := range routerOpts {
				out = append(out, fn(id)...)
			}
			return out
		}),
		session.WithSetup(func(s *session.Session) {
			RegisterConsole(s.Router, logger.With("session_id", s.ID))
		}),
	}
	if backend.Locker != nil {
		opts = append(opts, session.WithLocker(backend.Locker))
		if cfg.Redis.LockTTL > 0 {
			opts = append(opts, session.WithLockTTL(cfg.Redis.LockTTL))
		}
	}
	return session.NewManager(cfg.Config, backend.Store, opts...)
}
