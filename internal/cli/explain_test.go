package cli

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/wayfinder"
	"github.com/aretw0/wayfinder/internal/config"
	"github.com/aretw0/wayfinder/internal/logging"
	"github.com/aretw0/wayfinder/internal/presentation/tui"
	"github.com/aretw0/wayfinder/pkg/codec"
)

func newExplainRouter(t *testing.T) (*wayfinder.Router, string) {
	t.Helper()
	cfg := config.Default()
	r, err := NewRouter(cfg, logging.NewNop())
	require.NoError(t, err)
	return r, strings.TrimSuffix(cfg.BaseURL, "/")
}

func keyInfo(keys []tui.KeyInfo, key string) (tui.KeyInfo, bool) {
	for _, k := range keys {
		if k.Key == key {
			return k, true
		}
	}
	return tui.KeyInfo{}, false
}

func TestExplain(t *testing.T) {
	r, base := newExplainRouter(t)
	href := base + "/u/hatch/staging/i/inspector/haproxy/config"

	e, err := Explain(context.Background(), r, href, true)
	require.NoError(t, err)
	require.NoError(t, e.Err)

	assert.Equal(t, "hatch/staging", e.State.StringAt("user"))
	assert.True(t, strings.HasSuffix(e.Path, "/u/hatch/staging/i/inspector/haproxy/config"), e.Path)

	id, ok := keyInfo(e.Keys, "gui.inspector.id")
	require.True(t, ok)
	assert.True(t, id.Matched)
	assert.Equal(t, "gui", id.Resolved)
	assert.Equal(t, "haproxy", id.Value)

	user, ok := keyInfo(e.Keys, "user")
	require.True(t, ok)
	assert.False(t, user.Matched)

	require.NotNil(t, e.Inspector)
	assert.Equal(t, "haproxy", e.Inspector.ID)
	assert.Equal(t, "config", e.Inspector.ActiveComponent)
	assert.True(t, strings.HasSuffix(e.InspectorPath, "/i/inspector/haproxy/config"), e.InspectorPath)
	assert.NotContains(t, e.InspectorPath, "/u/hatch")

	assert.True(t, strings.HasPrefix(e.Mermaid, "graph TD\n"))

	md, err := e.Markdown()
	require.NoError(t, err)
	assert.Contains(t, md, "## Dispatch")
	assert.Contains(t, md, "## Inspector")
	assert.Contains(t, md, "- **path:** `"+e.InspectorPath+"`")
}

func TestExplain_ParseError(t *testing.T) {
	r, base := newExplainRouter(t)

	e, err := Explain(context.Background(), r, base+"/about/wat", false)
	require.NoError(t, err)
	require.Error(t, e.Err)
	assert.True(t, errors.Is(e.Err, codec.ErrInvalidPath))
	assert.Equal(t, "about", e.State.StringAt("root"))
	assert.Nil(t, e.Inspector)
	assert.Empty(t, e.InspectorPath)
	assert.Empty(t, e.Mermaid)

	md, err := e.Markdown()
	require.NoError(t, err)
	assert.Contains(t, md, "Parse error")
}
