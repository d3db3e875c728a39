package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTree_Merge(t *testing.T) {
	tests := []struct {
		name     string
		base     Tree
		delta    Tree
		want     Tree
		wantNull []string
	}{
		{
			name:     "Tombstone removes leaf",
			base:     Tree{"a": Tree{"b": 1, "c": 2}},
			delta:    Tree{"a": Tree{"b": nil}},
			want:     Tree{"a": Tree{"c": 2}},
			wantNull: []string{"a.b"},
		},
		{
			name:  "Nested merge keeps siblings",
			base:  Tree{"gui": Tree{"machines": ""}},
			delta: Tree{"gui": map[string]any{"inspector": map[string]any{"id": "mysql"}}},
			want:  Tree{"gui": Tree{"machines": "", "inspector": Tree{"id": "mysql"}}},
		},
		{
			name:  "Scalar replaced by mapping",
			base:  Tree{"gui": Tree{"inspector": "ghost"}},
			delta: Tree{"gui": Tree{"inspector": Tree{"id": "ghost"}}},
			want:  Tree{"gui": Tree{"inspector": Tree{"id": "ghost"}}},
		},
		{
			name:     "Tombstone on missing key is still reported",
			base:     Tree{"root": "new"},
			delta:    Tree{"gui": nil},
			want:     Tree{"root": "new"},
			wantNull: []string{"gui"},
		},
		{
			name:  "Lists overwrite",
			base:  Tree{"search": Tree{"tags": []string{"a"}}},
			delta: Tree{"search": Tree{"tags": []string{"b", "c"}}},
			want:  Tree{"search": Tree{"tags": []string{"b", "c"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.base.Clone()
			nullKeys := got.Merge(tt.delta)
			assert.Equal(t, tt.want, got.Prune())
			assert.Equal(t, tt.wantNull, nullKeys)
		})
	}
}

func TestTree_MergeDoesNotAliasDelta(t *testing.T) {
	delta := Tree{"search": Tree{"tags": []string{"a"}}}
	target := Tree{}
	target.Merge(delta)

	delta.Sub("search")["tags"].([]string)[0] = "mutated"
	assert.Equal(t, []string{"a"}, target.Sub("search")["tags"])
}

func TestTree_Prune(t *testing.T) {
	tree := Tree{
		"a": nil,
		"b": Tree{"c": Tree{"d": nil}},
		"e": Tree{"f": ""},
		"g": map[string]any{},
	}
	assert.Equal(t, Tree{"e": Tree{"f": ""}}, tree.Prune())
}

func TestTree_PruneIsIdempotent(t *testing.T) {
	tree := Tree{"gui": Tree{"inspector": Tree{"id": "x"}}, "store": ""}
	once := tree.Clone().Prune()
	twice := once.Clone().Prune()
	assert.Equal(t, once, twice)
}

func TestTree_Flatten(t *testing.T) {
	tree := Tree{
		"gui":   Tree{"inspector": Tree{"id": "x", "activeComponent": "units"}},
		"store": "haproxy",
		"search": map[string]any{
			"tags": []any{"a", "b"},
		},
	}
	assert.Equal(t, []string{
		"gui.inspector.activeComponent",
		"gui.inspector.id",
		"search.tags",
		"store",
	}, tree.Flatten())
	assert.Empty(t, Tree{}.Flatten())
}

func TestTree_IsSet(t *testing.T) {
	tree := Tree{
		"store":   "",
		"gui":     Tree{"inspector": Tree{"id": "x", "config": true, "hidden": false}},
		"profile": nil,
	}
	assert.True(t, tree.IsSet("store"))
	assert.True(t, tree.IsSet("gui.inspector"))
	assert.True(t, tree.IsSet("gui.inspector.config"))
	assert.False(t, tree.IsSet("gui.inspector.hidden"))
	assert.False(t, tree.IsSet("profile"))
	assert.False(t, tree.IsSet("gui.machines"))
	assert.False(t, tree.IsSet("store.deep"))
}

func TestTree_Clone(t *testing.T) {
	orig := Tree{"gui": map[string]any{"inspector": map[string]any{"id": "x"}}}
	clone := orig.Clone()
	clone.Sub("gui").Sub("inspector")["id"] = "y"

	v, ok := orig.Lookup("gui.inspector.id")
	require.True(t, ok)
	assert.Equal(t, "x", v)
	assert.Equal(t, "y", clone.StringAt("gui.inspector.id"))
}

func TestHasPathPrefix(t *testing.T) {
	assert.True(t, HasPathPrefix("gui.inspector.id", "gui"))
	assert.True(t, HasPathPrefix("gui", "gui"))
	assert.False(t, HasPathPrefix("guide", "gui"))
}

func TestMustConnectionStatus(t *testing.T) {
	assert.Equal(t, ConnectionReady, MustConnectionStatus("ready"))
	assert.Equal(t, ConnectionNone, MustConnectionStatus(""))
	assert.PanicsWithValue(t,
		`invalid connection status "bogus", valid values are ["", "ready", "connecting"]`,
		func() { MustConnectionStatus("bogus") })
}

func TestDecodeInspector(t *testing.T) {
	tree := Tree{"gui": Tree{"inspector": Tree{
		"id":              "apache2",
		"activeComponent": "units",
		"units":           "error",
	}}}
	insp, ok, err := DecodeInspector(tree)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "apache2", insp.ID)
	assert.Equal(t, "units", insp.ActiveComponent)
	assert.Equal(t, "error", insp.ActiveValue())
	assert.Equal(t, tree.Sub("gui").Sub("inspector"), insp.Tree())

	_, ok, err = DecodeInspector(Tree{"gui": Tree{"inspector": ""}})
	require.NoError(t, err)
	assert.False(t, ok)
}
