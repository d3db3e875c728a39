package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStateChange EventType = "state_change"
	EventCreate      EventType = "create"
	EventCleanup     EventType = "cleanup"
	EventUnmatched   EventType = "unmatched"
	EventParseError  EventType = "parse_error"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// StateEvent is emitted when a new snapshot is pushed onto the history.
type StateEvent struct {
	EventBase
	Href     string     `json:"href"`
	State    Tree       `json:"state"`
	NullKeys []string   `json:"null_keys,omitempty"`
	Diff     *StateDiff `json:"diff,omitempty"`
}

// DispatchEvent is emitted for every key a dispatch pass visits.
// Resolved is empty when no dispatcher matched Key.
type DispatchEvent struct {
	EventBase
	Key      string `json:"key"`
	Resolved string `json:"resolved,omitempty"`
}

// LifecycleHooks defines callbacks for router observability.
type LifecycleHooks struct {
	OnStateChange func(context.Context, *StateEvent)
	OnDispatch    func(context.Context, *DispatchEvent)
	OnParseError  func(context.Context, string, error)
}

// NewEventBase stamps an event of the given type.
func NewEventBase(t EventType) EventBase {
	return EventBase{Timestamp: time.Now(), Type: t}
}

// MergeHooks returns hooks that call every non-nil callback of hs in order.
func MergeHooks(hs ...LifecycleHooks) LifecycleHooks {
	var out LifecycleHooks
	for _, h := range hs {
		if h.OnStateChange != nil {
			prev, fn := out.OnStateChange, h.OnStateChange
			out.OnStateChange = func(ctx context.Context, e *StateEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				fn(ctx, e)
			}
		}
		if h.OnDispatch != nil {
			prev, fn := out.OnDispatch, h.OnDispatch
			out.OnDispatch = func(ctx context.Context, e *DispatchEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				fn(ctx, e)
			}
		}
		if h.OnParseError != nil {
			prev, fn := out.OnParseError, h.OnParseError
			out.OnParseError = func(ctx context.Context, href string, err error) {
				if prev != nil {
					prev(ctx, href, err)
				}
				fn(ctx, href, err)
			}
		}
	}
	return out
}
