package dispatch

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// Next continues the handler chain of the current key. Calling it more than
// once has no effect.
type Next func()

// Handler reacts to a state key appearing (create) or disappearing (cleanup).
// It must call next, synchronously or later, for the remaining handlers of
// the same key to run. The state must be treated as read-only.
type Handler func(ctx context.Context, state domain.Tree, next Next)

// Entry binds a handler pair to a key path. Cleanup is optional.
type Entry struct {
	Key     string
	Create  Handler
	Cleanup Handler
}

// Mode selects which handler of a pair runs.
type Mode string

const (
	ModeCreate  Mode = "create"
	ModeCleanup Mode = "cleanup"
)

type pair struct {
	create  Handler
	cleanup Handler
}

// Registry holds the handler pairs by key path.
// Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	pairs map[string][]pair
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		pairs: make(map[string][]pair),
	}
}

// Register appends the entries in order. Several entries may share a key;
// they run in registration order.
func (r *Registry) Register(entries ...Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range entries {
		r.pairs[e.Key] = append(r.pairs[e.Key], pair{create: e.Create, cleanup: e.Cleanup})
	}
}

// Resolve returns the most specific registered key for key, dropping the
// last dotted segment until a registration is found.
func (r *Registry) Resolve(key string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolveLocked(key)
}

func (r *Registry) resolveLocked(key string) (string, bool) {
	for key != "" {
		if _, ok := r.pairs[key]; ok {
			return key, true
		}
		idx := strings.LastIndex(key, domain.PathSeparator)
		if idx < 0 {
			break
		}
		key = key[:idx]
	}
	return "", false
}

// Keys returns the registered key paths, sorted.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.pairs))
	for k := range r.pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of handler pairs registered under key.
func (r *Registry) Len(key string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pairs[key])
}

// handlers returns a copy of the handlers of the given mode for key.
func (r *Registry) handlers(key string, mode Mode) []Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pairs := r.pairs[key]
	out := make([]Handler, len(pairs))
	for i, p := range pairs {
		if mode == ModeCleanup {
			out[i] = p.cleanup
		} else {
			out[i] = p.create
		}
	}
	return out
}
