/*
Package wayfinder is the application state router of a browser-based management
console.

It turns URLs into nested state trees and back, keeps an append-only history of
state snapshots, and notifies registered handlers whenever a part of the state
appears or disappears.

# Concept

The console's location is a tree such as

	{"user": "hatch/staging", "gui": {"inspector": {"id": "mysql"}}}

which maps to the canonical URL <base>/u/hatch/staging/i/inspector/mysql.
Collaborators never touch the URL: they call ChangeState with a delta (nil
values delete keys) and register handlers for the key paths they care about.
The router merges the delta, pushes the new URL to the browser history and
dispatches: cleanup handlers for removed paths, then the "*" wildcard, then
create handlers for every path of the new state, each resolved to the most
specific registered ancestor.

# Key Features

  - No globals: a Router is constructed and passed to whoever needs it.
  - Pluggable browser history (ports.BrowserHistory), with a server-side
    emulation in pkg/browser over any ports.EntryStore.
  - Serialized dispatch passes: a ChangeState issued by a handler is queued
    and continuations of superseded passes are dropped, unless
    WithStaleContinuations is set.

# Usage

	router, err := wayfinder.New(wayfinder.Config{
		BaseURL: "https://console.example.com/",
		Series:  []string{"trusty", "xenial"},
	})
	if err != nil {
		log.Fatal(err)
	}

	router.Register(dispatch.Entry{
		Key: "gui.inspector",
		Create: func(ctx context.Context, state domain.Tree, next dispatch.Next) {
			log.Println("show inspector", state.StringAt("gui.inspector.id"))
			next()
		},
		Cleanup: func(ctx context.Context, state domain.Tree, next dispatch.Next) {
			log.Println("hide inspector")
			next()
		},
	})

	ctx := context.Background()
	if _, err := router.Bootstrap(ctx); err != nil {
		log.Println(err)
	}
	_, _ = router.ChangeState(ctx, domain.Tree{"gui": domain.Tree{"inspector": domain.Tree{"id": "mysql"}}})
*/
package wayfinder
