package tui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/wayfinder/pkg/domain"
)

func TestStateYAML(t *testing.T) {
	got, err := StateYAML(domain.Tree{
		"store": "haproxy",
		"gui":   domain.Tree{"machines": ""},
	})
	require.NoError(t, err)
	assert.Equal(t, "gui:\n    machines: \"\"\nstore: haproxy\n", got)
}

func TestExplanation_Markdown(t *testing.T) {
	e := Explanation{
		URL:   "http://abc.com:123/i/inspector/ghost/config",
		Path:  "http://abc.com:123/i/inspector/ghost/config",
		State: domain.Tree{"gui": domain.Tree{"inspector": domain.Tree{"id": "ghost", "activeComponent": "config", "config": true}}},
		Keys: []KeyInfo{
			{Key: "gui.inspector.activeComponent", Value: "config", Resolved: "gui", Matched: true},
			{Key: "gui.inspector.config", Value: true, Resolved: "gui", Matched: true},
			{Key: "gui.inspector.id", Value: "ghost", Resolved: "gui", Matched: true},
		},
		Inspector: &domain.Inspector{ID: "ghost", ActiveComponent: "config", Rest: map[string]any{"config": true}},
	}

	md, err := e.Markdown()
	require.NoError(t, err)
	assert.Contains(t, md, "# http://abc.com:123/i/inspector/ghost/config\n")
	assert.Contains(t, md, "```yaml\ngui:\n")
	assert.Contains(t, md, "| `gui.inspector.id` | ghost | `gui` |")
	assert.Contains(t, md, "| `gui.inspector.config` | true | `gui` |")
	assert.Contains(t, md, "- **component:** config (true)")
	assert.NotContains(t, md, "Parse error")
	assert.NotContains(t, md, "```mermaid")
}

func TestExplanation_MarkdownError(t *testing.T) {
	e := Explanation{
		URL:  "http://abc.com:123/u",
		Path: "http://abc.com:123/",
		Err:  errors.New("cannot parse the User path: invalid user path."),
		Keys: []KeyInfo{{Key: "profile", Value: "a|b"}},
	}
	md, err := e.Markdown()
	require.NoError(t, err)
	assert.Contains(t, md, "**Parse error:** cannot parse the User path")
	assert.Contains(t, md, "_empty_")
	assert.Contains(t, md, "| `profile` | a\\|b | _none_ |")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "0.1.0\n")
	out := buf.String()
	assert.Contains(t, out, "v0.1.0")
	assert.Equal(t, 8, strings.Count(out, "\n"))
}
