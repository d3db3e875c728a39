package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/wayfinder"
	"github.com/aretw0/wayfinder/internal/logging"
	"github.com/aretw0/wayfinder/pkg/domain"
)

// Message is one event delivered to a stream subscriber.
type Message struct {
	Type domain.EventType
	Data string
}

// StreamManager handles active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- Message]struct{} // SessionID -> Set of Channels
	logger      *slog.Logger
}

// NewStreamManager creates a StreamManager with no subscribers.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan<- Message]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a channel for the events of sessionID. The returned
// function unsubscribes and closes the channel.
func (sm *StreamManager) Subscribe(sessionID string) (<-chan Message, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan Message, 32)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan<- Message]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.subscribers[sessionID]; ok {
				delete(subs, ch)
				close(ch)
				if len(subs) == 0 {
					delete(sm.subscribers, sessionID)
				}
			}
		})
	}
}

// Subscribers returns the number of subscribers of sessionID.
func (sm *StreamManager) Subscribers(sessionID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[sessionID])
}

// Broadcast sends msg to every subscriber of sessionID. Slow subscribers
// lose the message.
func (sm *StreamManager) Broadcast(sessionID string, msg Message) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[sessionID] {
		select {
		case ch <- msg:
		default:
			sm.logger.Warn("SSE: Client buffer full, dropping message", "session_id", sessionID, "type", msg.Type)
		}
	}
}

// RouterOptions returns the hooks that publish the events of a session
// router. Pass it to session.WithRouterOptions.
func (sm *StreamManager) RouterOptions(sessionID string) []wayfinder.Option {
	return []wayfinder.Option{wayfinder.WithLifecycleHooks(wayfinder.Hooks{
		OnStateChange: func(_ context.Context, e *domain.StateEvent) {
			ev := *e
			if ev.Diff != nil {
				diff := *ev.Diff
				diff.SessionID = sessionID
				ev.Diff = &diff
			}
			sm.publish(sessionID, ev.Type, &ev)
		},
		OnDispatch: func(_ context.Context, e *domain.DispatchEvent) {
			sm.publish(sessionID, e.Type, e)
		},
		OnParseError: func(_ context.Context, href string, err error) {
			sm.publish(sessionID, domain.EventParseError, map[string]string{"href": href, "error": err.Error()})
		},
	})}
}

func (sm *StreamManager) publish(sessionID string, typ domain.EventType, v any) {
	if sm.Subscribers(sessionID) == 0 {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		sm.logger.Error("failed to encode event", "session_id", sessionID, "type", typ, "err", err)
		return
	}
	sm.Broadcast(sessionID, Message{Type: typ, Data: string(data)})
}
