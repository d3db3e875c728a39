package history_test

import (
	"sync"
	"testing"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeline_Empty(t *testing.T) {
	tl := history.New()
	assert.Equal(t, domain.Tree{}, tl.Current())
	assert.Equal(t, domain.Tree{}, tl.Previous())
	assert.Empty(t, tl.All())
	assert.Equal(t, 0, tl.Len())
}

func TestTimeline_TombstonePropagation(t *testing.T) {
	tl := history.New()
	tl.Push(domain.Tree{"a": domain.Tree{"b": 1, "c": 2}})

	current, nullKeys := tl.Apply(domain.Tree{"a": domain.Tree{"b": nil}})

	assert.Equal(t, domain.Tree{"a": domain.Tree{"c": 2}}, current)
	assert.Equal(t, []string{"a.b"}, nullKeys)
	assert.Equal(t, domain.Tree{"a": domain.Tree{"b": 1, "c": 2}}, tl.Previous())
}

func TestTimeline_PruningIdempotence(t *testing.T) {
	tl := history.New()
	tl.Apply(domain.Tree{"gui": domain.Tree{"machines": ""}, "store": "haproxy"})
	before := tl.Current()

	current, nullKeys := tl.Apply(domain.Tree{})

	assert.Equal(t, before, current)
	assert.Empty(t, nullKeys)
	assert.Equal(t, 2, tl.Len(), "a no-op change still appends")
}

func TestTimeline_PrunesEmptyBranches(t *testing.T) {
	tl := history.New()
	tl.Apply(domain.Tree{"gui": domain.Tree{"inspector": domain.Tree{"id": "mysql"}}})

	current, nullKeys := tl.Apply(domain.Tree{"gui": domain.Tree{"inspector": domain.Tree{"id": nil}}})

	assert.Equal(t, domain.Tree{}, current)
	assert.Equal(t, []string{"gui.inspector.id"}, nullKeys)
}

func TestTimeline_FiltersUnknownNullKeys(t *testing.T) {
	tl := history.New()
	tl.Apply(domain.Tree{"gui": domain.Tree{"inspector": domain.Tree{"id": "mysql"}}, "store": "haproxy"})

	_, nullKeys := tl.Apply(domain.Tree{
		"gui":     nil,
		"profile": nil,
		"search":  domain.Tree{"text": nil},
	})

	assert.Equal(t, []string{"gui"}, nullKeys)
	assert.Equal(t, domain.Tree{"store": "haproxy"}, tl.Current())
}

func TestTimeline_SnapshotsAreIsolated(t *testing.T) {
	tl := history.New()
	delta := domain.Tree{"gui": domain.Tree{"machines": "0"}}
	current, _ := tl.Apply(delta)

	delta.Sub("gui")["machines"] = "1"
	current.Sub("gui")["machines"] = "2"

	assert.Equal(t, "0", tl.Current().StringAt("gui.machines"))

	all := tl.All()
	require.Len(t, all, 1)
	all[0]["store"] = "x"
	assert.False(t, tl.Current().IsSet("store"))
}

func TestTimeline_ConcurrentApply(t *testing.T) {
	tl := history.New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tl.Apply(domain.Tree{"gui": domain.Tree{"machines": ""}})
			_ = tl.Current()
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, tl.Len())
}
