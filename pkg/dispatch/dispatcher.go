package dispatch

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/wayfinder/internal/logging"
	"github.com/aretw0/wayfinder/pkg/domain"
)

// Invocation records one resolved key that fired during a pass.
type Invocation struct {
	Key      string `json:"key"`
	Resolved string `json:"resolved"`
	Mode     Mode   `json:"mode"`
}

// Report describes a dispatch pass.
type Report struct {
	// Generation is the sequence number of the pass, zero when Queued.
	Generation  uint64       `json:"generation"`
	Invocations []Invocation `json:"invocations,omitempty"`
	Unmatched   []string     `json:"unmatched,omitempty"`
	// Queued is set when the pass was deferred behind a running one.
	Queued bool `json:"queued,omitempty"`
	// Interrupted is set when the context was cancelled mid-pass.
	Interrupted bool `json:"interrupted,omitempty"`
	// State is the tree the pass was asked to dispatch. When the location
	// cannot be parsed it holds the partial state and no handler runs.
	State domain.Tree `json:"state,omitempty"`
}

// ReportHook observes every executed pass.
type ReportHook func(ctx context.Context, report Report, elapsed time.Duration)

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithStaleContinuations lets passes interleave: a pass requested while
// another one runs starts immediately, and continuations of superseded
// passes still run.
func WithStaleContinuations() Option {
	return func(d *Dispatcher) {
		d.allowStale = true
	}
}

// WithReportHook registers a hook called after every executed pass.
func WithReportHook(hook ReportHook) Option {
	return func(d *Dispatcher) {
		d.hooks = append(d.hooks, hook)
	}
}

// Dispatcher runs the handlers of a Registry for state changes.
type Dispatcher struct {
	registry   *Registry
	logger     *slog.Logger
	allowStale bool
	hooks      []ReportHook

	mu      sync.Mutex
	running bool
	queue   []pass

	latest atomic.Uint64
}

type pass struct {
	ctx      context.Context
	state    domain.Tree
	nullKeys []string
}

// NewDispatcher creates a dispatcher over registry.
func NewDispatcher(registry *Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Registry returns the registry the dispatcher reads from.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Generation returns the sequence number of the latest started pass.
func (d *Dispatcher) Generation() uint64 {
	return d.latest.Load()
}

// Dispatch runs cleanup handlers for nullKeys, then the wildcard, then create
// handlers for every path of state.
//
// When another pass is running the request is queued and a Report with
// Queued set is returned; the running caller executes it afterwards.
func (d *Dispatcher) Dispatch(ctx context.Context, state domain.Tree, nullKeys []string) Report {
	p := pass{
		ctx:      ctx,
		state:    state.Clone(),
		nullKeys: append([]string(nil), nullKeys...),
	}
	if d.allowStale {
		return d.run(p)
	}

	d.mu.Lock()
	if d.running {
		d.queue = append(d.queue, p)
		d.mu.Unlock()
		d.logger.Debug("dispatch queued behind running pass", "pending", len(d.queue))
		return Report{Queued: true}
	}
	d.running = true
	d.mu.Unlock()

	report := d.run(p)
	for {
		d.mu.Lock()
		if len(d.queue) == 0 {
			d.running = false
			d.mu.Unlock()
			return report
		}
		queued := d.queue[0]
		d.queue = d.queue[1:]
		d.mu.Unlock()
		d.run(queued)
	}
}

func (d *Dispatcher) run(p pass) Report {
	start := time.Now()
	gen := d.latest.Add(1)
	report := Report{Generation: gen}
	ctx := p.ctx

	cleaned := make(map[string]struct{})
	for _, key := range p.nullKeys {
		if ctx.Err() != nil {
			report.Interrupted = true
			break
		}
		d.fire(ctx, gen, p.state, key, ModeCleanup, cleaned, &report)
	}

	created := map[string]struct{}{domain.Wildcard: {}}
	if !report.Interrupted {
		if d.registry.Len(domain.Wildcard) > 0 {
			report.Invocations = append(report.Invocations, Invocation{
				Key: domain.Wildcard, Resolved: domain.Wildcard, Mode: ModeCreate,
			})
			d.chain(ctx, gen, p.state, d.registry.handlers(domain.Wildcard, ModeCreate))
		}
		for _, key := range p.state.Flatten() {
			if ctx.Err() != nil {
				report.Interrupted = true
				break
			}
			d.fire(ctx, gen, p.state, key, ModeCreate, created, &report)
		}
	}

	elapsed := time.Since(start)
	for _, hook := range d.hooks {
		hook(ctx, report, elapsed)
	}
	return report
}

func (d *Dispatcher) fire(ctx context.Context, gen uint64, state domain.Tree, key string, mode Mode, seen map[string]struct{}, report *Report) {
	resolved, ok := d.registry.Resolve(key)
	if !ok {
		d.logger.Warn("no dispatcher found for key", "key", key, "mode", mode)
		report.Unmatched = append(report.Unmatched, key)
		return
	}
	if _, done := seen[resolved]; done {
		return
	}
	seen[resolved] = struct{}{}
	report.Invocations = append(report.Invocations, Invocation{Key: key, Resolved: resolved, Mode: mode})
	d.chain(ctx, gen, state, d.registry.handlers(resolved, mode))
}

// chain runs handlers one after the other, each step started by the previous
// handler's next. Nil handlers are skipped.
func (d *Dispatcher) chain(ctx context.Context, gen uint64, state domain.Tree, handlers []Handler) {
	var step func(i int)
	step = func(i int) {
		for i < len(handlers) && handlers[i] == nil {
			i++
		}
		if i >= len(handlers) {
			return
		}
		var once sync.Once
		handlers[i](ctx, state, func() {
			once.Do(func() {
				if !d.allowStale && d.latest.Load() != gen {
					d.logger.Debug("dropping continuation of superseded pass", "generation", gen)
					return
				}
				step(i + 1)
			})
		})
	}
	step(0)
}
