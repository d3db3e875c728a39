package handlers

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aretw0/wayfinder/internal/logging"
	"github.com/aretw0/wayfinder/pkg/dispatch"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/ports"
)

// ModelHandler connects to the model named by model.uuid and holds the rest
// of the "model" handler chain until the connection is ready.
type ModelHandler struct {
	connector ports.ModelConnector
	logger    *slog.Logger

	mu     sync.Mutex
	uuid   string
	status domain.ConnectionStatus
	// pending is the continuation of the latest dispatch waiting on the
	// connection in progress.
	pending dispatch.Next
}

// ModelOption configures a ModelHandler.
type ModelOption func(*ModelHandler)

// WithModelLogger sets the logger of the handler.
func WithModelLogger(logger *slog.Logger) ModelOption {
	return func(h *ModelHandler) {
		h.logger = logger
	}
}

// NewModelHandler creates a handler over connector.
func NewModelHandler(connector ports.ModelConnector, opts ...ModelOption) *ModelHandler {
	h := &ModelHandler{
		connector: connector,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Entry returns the registration of the handler under the "model" key.
func (h *ModelHandler) Entry() dispatch.Entry {
	return dispatch.Entry{
		Key:     domain.KeyModel,
		Create:  h.Create,
		Cleanup: h.Cleanup,
	}
}

// Status returns the current connection status.
func (h *ModelHandler) Status() domain.ConnectionStatus {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

// SetStatus assigns the connection status. It panics when status is not one
// of the enumerated values.
func (h *ModelHandler) SetStatus(status string) {
	s := domain.MustConnectionStatus(status)
	h.mu.Lock()
	h.status = s
	h.mu.Unlock()
}

// ActiveModel returns the uuid of the connected or connecting model.
func (h *ModelHandler) ActiveModel() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.uuid
}

// Create connects to the model of the state. When the model is already
// connected next runs immediately. A dispatch arriving while the same model
// is still connecting parks its next in place of the earlier one, so the
// connection resumes the latest pass.
func (h *ModelHandler) Create(ctx context.Context, state domain.Tree, next dispatch.Next) {
	uuid := state.StringAt(domain.KeyModel + domain.PathSeparator + domain.KeyModelUUID)

	h.mu.Lock()
	if h.uuid == uuid {
		switch h.status {
		case domain.ConnectionReady:
			h.mu.Unlock()
			next()
			return
		case domain.ConnectionConnecting:
			h.pending = next
			h.mu.Unlock()
			h.logger.Debug("model connection already in progress", "uuid", uuid)
			return
		}
	}
	if uuid == "" {
		h.uuid = ""
		h.status = domain.ConnectionNone
		h.pending = nil
		h.mu.Unlock()
		h.disconnect(ctx)
		next()
		return
	}
	h.uuid = uuid
	h.status = domain.ConnectionConnecting
	h.pending = next
	h.mu.Unlock()

	h.logger.Info("switching to model", "uuid", uuid)
	h.connector.Connect(ctx, uuid, func(err error) {
		h.mu.Lock()
		if h.uuid != uuid {
			h.mu.Unlock()
			return
		}
		resume := h.pending
		h.pending = nil
		if err != nil {
			h.status = domain.ConnectionNone
			h.mu.Unlock()
			h.logger.Error("cannot connect to model", "uuid", uuid, "err", err)
			return
		}
		h.status = domain.ConnectionReady
		h.mu.Unlock()
		if resume != nil {
			resume()
		}
	})
}

// Cleanup disconnects from the active model.
func (h *ModelHandler) Cleanup(ctx context.Context, _ domain.Tree, next dispatch.Next) {
	h.mu.Lock()
	h.uuid = ""
	h.status = domain.ConnectionNone
	h.pending = nil
	h.mu.Unlock()
	h.disconnect(ctx)
	next()
}

func (h *ModelHandler) disconnect(ctx context.Context) {
	if err := h.connector.Disconnect(ctx); err != nil {
		h.logger.Warn("failed to disconnect from model", "err", err)
	}
}
