package handlers

import (
	"context"
	"log/slog"
)

// LogConnector is a ports.ModelConnector for routers that run without a
// control plane. It logs the requests and reports every connection ready.
type LogConnector struct {
	Logger *slog.Logger
}

// Connect logs the request and calls done with no error.
func (c LogConnector) Connect(ctx context.Context, uuid string, done func(error)) {
	if c.Logger != nil {
		c.Logger.InfoContext(ctx, "model connection requested", "uuid", uuid)
	}
	done(nil)
}

// Disconnect logs the request.
func (c LogConnector) Disconnect(ctx context.Context) error {
	if c.Logger != nil {
		c.Logger.InfoContext(ctx, "model disconnection requested")
	}
	return nil
}
