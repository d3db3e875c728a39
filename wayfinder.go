package wayfinder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/wayfinder/internal/logging"
	"github.com/aretw0/wayfinder/pkg/adapters/memory"
	"github.com/aretw0/wayfinder/pkg/browser"
	"github.com/aretw0/wayfinder/pkg/codec"
	"github.com/aretw0/wayfinder/pkg/dispatch"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/grammar"
	"github.com/aretw0/wayfinder/pkg/history"
	"github.com/aretw0/wayfinder/pkg/ports"
)

var (
	// ErrBaseURLRequired is returned by New when no base URL is configured.
	ErrBaseURLRequired = codec.ErrBaseURLRequired

	// ErrSeriesRequired is returned by New when the series list is empty.
	ErrSeriesRequired = errors.New("series list must be provided")
)

// Config holds the construction parameters of a Router.
type Config struct {
	// BaseURL is the full URL the console is served from.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Series lists the distro series tokens used to tell store references
	// apart from user names. "bundle" is always added.
	Series []string `yaml:"series" mapstructure:"series"`

	// Grammar overrides the path vocabulary. Its Series field is replaced by
	// Series.
	Grammar *grammar.Grammar `yaml:"grammar,omitempty" mapstructure:"grammar"`
}

// DispatchOptions selects how Dispatch obtains the state to dispatch.
type DispatchOptions struct {
	// UpdateHistory pushes the dispatched state onto the history.
	UpdateHistory bool
	// BackNavigation computes the cleanup keys by diffing the previous
	// snapshot against the dispatched state.
	BackNavigation bool
	// FromURL parses the browser location instead of using the current state.
	FromURL bool
}

// Router owns the state history of one console and dispatches its changes.
// Safe for concurrent use.
type Router struct {
	codec      *codec.Codec
	registry   *dispatch.Registry
	dispatcher *dispatch.Dispatcher
	timeline   *history.Timeline
	history    ports.BrowserHistory
	hooks      Hooks
	logger     *slog.Logger

	dispatchOpts []dispatch.Option

	// mu serializes the history updates that precede a dispatch pass.
	// It is never held while handlers run.
	mu sync.Mutex
}

// New creates a Router.
func New(cfg Config, opts ...Option) (*Router, error) {
	if cfg.BaseURL == "" {
		return nil, ErrBaseURLRequired
	}
	if len(cfg.Series) == 0 {
		return nil, ErrSeriesRequired
	}

	g := grammar.Default(cfg.Series...)
	if cfg.Grammar != nil {
		g = *cfg.Grammar
		g.Series = grammar.WithBundle(cfg.Series)
	}
	c, err := codec.New(cfg.BaseURL, g)
	if err != nil {
		return nil, fmt.Errorf("failed to configure url codec: %w", err)
	}

	r := &Router{
		codec:    c,
		registry: dispatch.NewRegistry(),
		timeline: history.New(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.history == nil {
		r.history = browser.New(memory.NewStore(), "default", browser.WithInitialLocation(c.BaseURL()))
	}

	dispatchOpts := append([]dispatch.Option{
		dispatch.WithLogger(r.logger),
		dispatch.WithReportHook(r.observe),
	}, r.dispatchOpts...)
	r.dispatcher = dispatch.NewDispatcher(r.registry, dispatchOpts...)

	r.history.OnPopState(r.onPopState)
	return r, nil
}

// Register adds handler pairs to the dispatch table.
func (r *Router) Register(entries ...dispatch.Entry) {
	r.registry.Register(entries...)
}

// Registry returns the dispatch table.
func (r *Router) Registry() *dispatch.Registry {
	return r.registry
}

// Grammar returns the path vocabulary in use.
func (r *Router) Grammar() grammar.Grammar {
	return r.codec.Grammar()
}

// BaseURL returns the normalized base URL.
func (r *Router) BaseURL() string {
	return r.codec.BaseURL()
}

// BrowserHistory returns the browser history the router is bound to.
func (r *Router) BrowserHistory() ports.BrowserHistory {
	return r.history
}

// Current returns a copy of the latest state, or an empty tree.
func (r *Router) Current() domain.Tree {
	return r.timeline.Current()
}

// Previous returns a copy of the state before the latest, or an empty tree.
func (r *Router) Previous() domain.Tree {
	return r.timeline.Previous()
}

// History returns copies of every state snapshot, oldest first.
func (r *Router) History() []domain.Tree {
	return r.timeline.All()
}

// IsSet reports whether the dotted key holds a value in the current state.
// Empty strings count as set; false does not.
func (r *Router) IsSet(key string) bool {
	return r.timeline.Current().IsSet(key)
}

// GeneratePath returns the canonical URL of the current state.
func (r *Router) GeneratePath() string {
	return r.codec.Generate(r.timeline.Current())
}

// GeneratePathFor returns the canonical URL of state.
func (r *Router) GeneratePathFor(state domain.Tree) string {
	return r.codec.Generate(state)
}

// GenerateState parses href. With allowModifications, a deploy-target query
// is consumed: the browser entry is replaced by the canonical URL so the
// one-shot parameter is never dispatched twice.
func (r *Router) GenerateState(ctx context.Context, href string, allowModifications bool) (domain.Tree, error) {
	state, err := r.generateState(ctx, href, allowModifications)
	if err != nil {
		r.emitParseError(ctx, href, err)
	}
	return state, err
}

func (r *Router) generateState(ctx context.Context, href string, allowModifications bool) (domain.Tree, error) {
	state, err := r.codec.Parse(href)
	if err != nil {
		return state, err
	}
	if allowModifications && state.IsSet(domain.KeySpecial+domain.PathSeparator+domain.KeyDeployTarget) {
		if err := r.history.ReplaceState(ctx, r.codec.Generate(state)); err != nil {
			r.logger.Warn("failed to strip deploy target from location", "href", href, "error", err)
		}
	}
	return state, nil
}

// ChangeState merges delta into the current state, pushes the new URL and
// dispatches. Nil values in delta delete keys and run their cleanup handlers
// when the key existed.
func (r *Router) ChangeState(ctx context.Context, delta domain.Tree) (dispatch.Report, error) {
	r.mu.Lock()
	state, nullKeys := r.timeline.Apply(delta)
	prev := r.timeline.Previous()
	href := r.codec.Generate(state)
	pushErr := r.history.PushState(ctx, href)
	r.mu.Unlock()

	if pushErr != nil {
		pushErr = fmt.Errorf("failed to push browser state: %w", pushErr)
		r.logger.Error("state change not recorded in browser history", "href", href, "error", pushErr)
	}
	r.emitStateChange(ctx, href, prev, state, nullKeys)

	report, err := r.Dispatch(ctx, nullKeys, DispatchOptions{})
	return report, errors.Join(pushErr, err)
}

// Reset deletes every top-level key of the current state.
func (r *Router) Reset(ctx context.Context) (dispatch.Report, error) {
	delta := domain.Tree{}
	for key := range r.timeline.Current() {
		delta[key] = nil
	}
	return r.ChangeState(ctx, delta)
}

// Bootstrap dispatches the state encoded by the browser location. It is
// meant to be called once at startup.
func (r *Router) Bootstrap(ctx context.Context) (dispatch.Report, error) {
	return r.Dispatch(ctx, nil, DispatchOptions{UpdateHistory: true, FromURL: true})
}

// Dispatch runs the handlers for a state.
//
// The state is parsed from the browser location when opts.FromURL is set or
// the history is empty, and is the current state otherwise. A parse error
// aborts the call before any handler runs.
func (r *Router) Dispatch(ctx context.Context, nullKeys []string, opts DispatchOptions) (dispatch.Report, error) {
	r.mu.Lock()
	var state domain.Tree
	if opts.FromURL || r.timeline.Len() == 0 {
		href, err := r.history.Location(ctx)
		if err != nil {
			r.mu.Unlock()
			return dispatch.Report{}, fmt.Errorf("failed to read browser location: %w", err)
		}
		state, err = r.generateState(ctx, href, true)
		if err != nil {
			r.mu.Unlock()
			r.emitParseError(ctx, href, err)
			return dispatch.Report{State: state}, fmt.Errorf("unable to generate state: %w", err)
		}
	} else {
		state = r.timeline.Current()
	}

	if opts.UpdateHistory {
		r.timeline.Push(state)
	}
	prev := r.timeline.Previous()
	if opts.BackNavigation {
		nullKeys = domain.Removed(prev, state)
	}
	r.mu.Unlock()

	if opts.UpdateHistory {
		r.emitStateChange(ctx, r.codec.Generate(state), prev, state, nullKeys)
	}
	report := r.dispatcher.Dispatch(ctx, state, nullKeys)
	report.State = state
	return report, nil
}

func (r *Router) onPopState(ctx context.Context) {
	_, err := r.Dispatch(ctx, nil, DispatchOptions{UpdateHistory: true, BackNavigation: true, FromURL: true})
	if err != nil {
		r.logger.Error("back navigation failed", "error", err)
	}
}

func (r *Router) emitParseError(ctx context.Context, href string, err error) {
	r.logger.Warn("failed to parse location", "href", href, "error", err)
	if r.hooks.OnParseError != nil {
		r.hooks.OnParseError(ctx, href, err)
	}
}

func (r *Router) emitStateChange(ctx context.Context, href string, prev, state domain.Tree, nullKeys []string) {
	if r.hooks.OnStateChange == nil {
		return
	}
	r.hooks.OnStateChange(ctx, &domain.StateEvent{
		EventBase: domain.NewEventBase(domain.EventStateChange),
		Href:      href,
		State:     state,
		NullKeys:  nullKeys,
		Diff:      domain.Diff("", prev, state),
	})
}

// observe turns a dispatch report into lifecycle events.
func (r *Router) observe(ctx context.Context, report dispatch.Report, _ time.Duration) {
	if r.hooks.OnDispatch == nil {
		return
	}
	for _, inv := range report.Invocations {
		typ := domain.EventCreate
		if inv.Mode == dispatch.ModeCleanup {
			typ = domain.EventCleanup
		}
		r.hooks.OnDispatch(ctx, &domain.DispatchEvent{
			EventBase: domain.NewEventBase(typ),
			Key:       inv.Key,
			Resolved:  inv.Resolved,
		})
	}
	for _, key := range report.Unmatched {
		r.hooks.OnDispatch(ctx, &domain.DispatchEvent{
			EventBase: domain.NewEventBase(domain.EventUnmatched),
			Key:       key,
		})
	}
}
