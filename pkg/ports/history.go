package ports

import "context"

// BrowserHistory abstracts the browser location and its session history.
type BrowserHistory interface {
	// Location returns the URL currently shown by the browser.
	Location(ctx context.Context) (string, error)

	// PushState appends a new history entry and makes it current.
	PushState(ctx context.Context, href string) error

	// ReplaceState overwrites the current history entry.
	ReplaceState(ctx context.Context, href string) error

	// OnPopState registers a callback run after the user moves back or forward.
	// Only the last registered callback is kept.
	OnPopState(fn func(ctx context.Context))
}
