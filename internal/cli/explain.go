package cli

import (
	"context"

	"github.com/aretw0/wayfinder"
	"github.com/aretw0/wayfinder/internal/presentation/graph"
	"github.com/aretw0/wayfinder/internal/presentation/tui"
	"github.com/aretw0/wayfinder/pkg/domain"
)

// Explain parses href with r and describes the resulting state: which
// dispatcher every key resolves to, the decoded inspector and, when
// withGraph is set, a mermaid diagram of the tree. Parse errors are
// reported in the explanation, never returned.
func Explain(ctx context.Context, r *wayfinder.Router, href string, withGraph bool) (tui.Explanation, error) {
	state, parseErr := r.GenerateState(ctx, href, false)
	e := tui.Explanation{
		URL:   href,
		State: state,
		Err:   parseErr,
		Path:  r.GeneratePathFor(state),
	}

	registry := r.Registry()
	for _, key := range state.Flatten() {
		value, _ := state.Lookup(key)
		resolved, ok := registry.Resolve(key)
		e.Keys = append(e.Keys, tui.KeyInfo{Key: key, Value: value, Resolved: resolved, Matched: ok})
	}

	inspector, ok, err := domain.DecodeInspector(state)
	if err != nil {
		return e, err
	}
	if ok {
		e.Inspector = &inspector
		e.InspectorPath = r.GeneratePathFor(domain.Tree{
			domain.KeyGUI: domain.Tree{domain.KeyInspector: inspector.Tree()},
		})
	}

	if withGraph {
		e.Mermaid = graph.GenerateMermaid(state, &graph.Overlay{Resolve: registry.Resolve})
	}
	return e, nil
}
