package domain

import (
	"reflect"
)

// StateDiff represents the changes between two state trees.
// It is designed to be serialized to JSON for partial updates on the client.
type StateDiff struct {
	// SessionID identifies the target session. Routers leave it empty and
	// session-aware adapters fill it in.
	SessionID string `json:"session_id"`

	// Href is the canonical location of the new state, if known.
	Href string `json:"href,omitempty"`

	// Changed maps each added or modified leaf path to its new value.
	Changed map[string]any `json:"changed,omitempty"`

	// Removed lists the leaf paths that no longer exist.
	Removed []string `json:"removed,omitempty"`
}

// Diff calculates the difference between prev and next.
// If prev is nil, it returns a diff representing the entire next tree (initial load).
// It returns nil when nothing changed.
func Diff(sessionID string, prev, next Tree) *StateDiff {
	if next == nil {
		return nil
	}

	diff := &StateDiff{
		SessionID: sessionID,
		Changed:   make(map[string]any),
		Removed:   Removed(prev, next),
	}

	for _, key := range next.Flatten() {
		newVal, _ := next.Lookup(key)
		oldVal, exists := prev.Lookup(key)
		if prev == nil || !exists || !reflect.DeepEqual(oldVal, newVal) {
			diff.Changed[key] = newVal
		}
	}

	if diff.IsEmpty() {
		return nil
	}
	if len(diff.Changed) == 0 {
		diff.Changed = nil
	}
	return diff
}

// Removed returns the flattened paths of prev that are absent from next.
func Removed(prev, next Tree) []string {
	current := make(map[string]struct{})
	for _, k := range next.Flatten() {
		current[k] = struct{}{}
	}
	var removed []string
	for _, k := range prev.Flatten() {
		if _, ok := current[k]; !ok {
			removed = append(removed, k)
		}
	}
	return removed
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return len(d.Changed) == 0 && len(d.Removed) == 0
}
