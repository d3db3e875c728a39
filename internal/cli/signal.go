package cli

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// SignalContext is a context cancelled by an operating system signal. Unlike
// signal.NotifyContext it remembers which signal stopped the server, so serve
// and mcp can report it on shutdown.
type SignalContext struct {
	context.Context
	Cancel context.CancelFunc

	caught atomic.Pointer[os.Signal]
}

// NewSignalContext returns a context cancelled on the first of sigs, or on
// SIGINT and SIGTERM when sigs is empty. Notification stops once the context
// is done.
func NewSignalContext(parent context.Context, sigs ...os.Signal) *SignalContext {
	if len(sigs) == 0 {
		sigs = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{Context: ctx, Cancel: cancel}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)
	go func() {
		defer signal.Stop(ch)
		select {
		case sig := <-ch:
			sc.caught.Store(&sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	return sc
}

// Signal returns the signal that cancelled the context, or nil.
func (sc *SignalContext) Signal() os.Signal {
	if sig := sc.caught.Load(); sig != nil {
		return *sig
	}
	return nil
}
