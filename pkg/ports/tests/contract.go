package tests

import (
	"context"
	"testing"

	"github.com/aretw0/wayfinder/pkg/ports"
)

// BrowserHistoryContractTest is a reusable test suite that verifies if an
// adapter complies with ports.BrowserHistory. The history must start empty
// or positioned at start.
func BrowserHistoryContractTest(t *testing.T, history ports.BrowserHistory, start string) {
	t.Helper()
	ctx := context.Background()

	// 1. Test Location (Initial)
	t.Run("Location_Initial", func(t *testing.T) {
		href, err := history.Location(ctx)
		if err != nil {
			t.Fatalf("unexpected error reading location: %v", err)
		}
		if href != start {
			t.Errorf("initial location mismatch. got %q, want %q", href, start)
		}
	})

	// 2. Test PushState
	t.Run("PushState", func(t *testing.T) {
		if err := history.PushState(ctx, start+"u/ant"); err != nil {
			t.Fatalf("unexpected error pushing state: %v", err)
		}
		href, err := history.Location(ctx)
		if err != nil {
			t.Fatalf("unexpected error reading location: %v", err)
		}
		if href != start+"u/ant" {
			t.Errorf("location after push mismatch. got %q, want %q", href, start+"u/ant")
		}
	})

	// 3. Test ReplaceState
	t.Run("ReplaceState", func(t *testing.T) {
		if err := history.ReplaceState(ctx, start+"store"); err != nil {
			t.Fatalf("unexpected error replacing state: %v", err)
		}
		href, err := history.Location(ctx)
		if err != nil {
			t.Fatalf("unexpected error reading location: %v", err)
		}
		if href != start+"store" {
			t.Errorf("location after replace mismatch. got %q, want %q", href, start+"store")
		}
	})

	// 4. Test OnPopState (registration only)
	t.Run("OnPopState", func(t *testing.T) {
		history.OnPopState(func(context.Context) {})
	})
}
