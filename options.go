package wayfinder

import (
	"log/slog"

	"github.com/aretw0/wayfinder/pkg/dispatch"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/ports"
)

// Hooks are the observability callbacks of a Router.
type Hooks = domain.LifecycleHooks

// Option defines a functional option for configuring the Router.
type Option func(*Router)

// WithLogger sets a custom structured logger for the router.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// WithBrowserHistory injects the browser history the router reads the
// location from and pushes URLs to. By default an in-memory history is used.
func WithBrowserHistory(history ports.BrowserHistory) Option {
	return func(r *Router) {
		r.history = history
	}
}

// WithLifecycleHooks registers observability hooks. Hooks given by
// several options all run, in option order.
func WithLifecycleHooks(hooks Hooks) Option {
	return func(r *Router) {
		r.hooks = domain.MergeHooks(r.hooks, hooks)
	}
}

// WithReportHook registers a hook called after every executed dispatch pass.
func WithReportHook(hook dispatch.ReportHook) Option {
	return func(r *Router) {
		r.dispatchOpts = append(r.dispatchOpts, dispatch.WithReportHook(hook))
	}
}

// WithStaleContinuations lets dispatch passes interleave, as they would with
// plain nested callbacks. See dispatch.WithStaleContinuations.
func WithStaleContinuations() Option {
	return func(r *Router) {
		r.dispatchOpts = append(r.dispatchOpts, dispatch.WithStaleContinuations())
	}
}
