// Package dispatch maps state key paths to (create, cleanup) handler pairs and
// runs them when the state changes.
//
// Keys are dot-joined paths such as "gui.inspector". A flattened state key is
// resolved to the most specific registered ancestor: "gui.inspector.id" falls
// back to "gui.inspector", then "gui". Every pass runs cleanup handlers for
// removed paths first, then the wildcard "*", then create handlers for every
// path of the new state. A resolved key fires at most once per mode in a pass.
//
// Handlers are chained through an explicit continuation:
//
//	registry.Register(dispatch.Entry{
//		Key: "gui.inspector",
//		Create: func(ctx context.Context, state domain.Tree, next dispatch.Next) {
//			showInspector(state.Sub("gui").Sub("inspector"))
//			next()
//		},
//	})
//
// Passes are serialized: a pass requested while another one is running is
// queued and run by the same caller once the current pass has returned.
package dispatch
