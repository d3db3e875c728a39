package history

import (
	"sync"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// Timeline is an append-only list of materialized state snapshots.
// Safe for concurrent use.
type Timeline struct {
	mu        sync.RWMutex
	snapshots []domain.Tree
}

// New creates an empty timeline.
func New() *Timeline {
	return &Timeline{}
}

// Apply merges delta into the latest snapshot and pushes the result.
//
// It returns a copy of the new snapshot and the dotted paths removed by
// tombstones. A tombstone is only reported when its path existed in the
// previous snapshot, either as a leaf or as an ancestor of one.
func (t *Timeline) Apply(delta domain.Tree) (domain.Tree, []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev := t.currentLocked()
	next := prev.Clone()
	nullKeys := filterExisting(next.Merge(delta), prev.Flatten())
	next.Prune()

	t.snapshots = append(t.snapshots, next)
	return next.Clone(), nullKeys
}

// Push appends a copy of state as a new snapshot.
func (t *Timeline) Push(state domain.Tree) {
	snapshot := state.Clone().Prune()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.snapshots = append(t.snapshots, snapshot)
}

// Current returns a copy of the latest snapshot, or an empty tree.
func (t *Timeline) Current() domain.Tree {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.currentLocked().Clone()
}

// Previous returns a copy of the snapshot before the latest, or an empty tree.
func (t *Timeline) Previous() domain.Tree {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.snapshots) < 2 {
		return domain.Tree{}
	}
	return t.snapshots[len(t.snapshots)-2].Clone()
}

// All returns copies of every snapshot, oldest first.
func (t *Timeline) All() []domain.Tree {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]domain.Tree, len(t.snapshots))
	for i, s := range t.snapshots {
		out[i] = s.Clone()
	}
	return out
}

// Len returns the number of snapshots.
func (t *Timeline) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.snapshots)
}

func (t *Timeline) currentLocked() domain.Tree {
	if len(t.snapshots) == 0 {
		return domain.Tree{}
	}
	return t.snapshots[len(t.snapshots)-1]
}

func filterExisting(nullKeys, existing []string) []string {
	var out []string
	for _, key := range nullKeys {
		for _, leaf := range existing {
			if domain.HasPathPrefix(leaf, key) {
				out = append(out, key)
				break
			}
		}
	}
	return out
}
