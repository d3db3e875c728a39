package grammar_test

import (
	"testing"

	"github.com/aretw0/wayfinder/pkg/grammar"
	"github.com/stretchr/testify/assert"
)

func TestDefault_AppendsBundle(t *testing.T) {
	g := grammar.Default("trusty")
	assert.Equal(t, []string{"trusty", "bundle"}, g.Series)

	g = grammar.Default("bundle", "xenial")
	assert.Equal(t, []string{"bundle", "xenial"}, g.Series)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, grammar.Default("trusty").Validate())

	g := grammar.Default("trusty")
	g.Delimiters.GUI = "u"
	assert.ErrorIs(t, g.Validate(), grammar.ErrInvalidGrammar)

	g = grammar.Default("trusty")
	g.GrandfatheredRoot = "nope"
	assert.ErrorIs(t, g.Validate(), grammar.ErrInvalidGrammar)

	g = grammar.Default("trusty")
	g.GUISections = nil
	assert.ErrorIs(t, g.Validate(), grammar.ErrInvalidGrammar)

	g = grammar.Default("trusty")
	g.Roots = append(g.Roots, "q")
	assert.ErrorIs(t, g.Validate(), grammar.ErrInvalidGrammar)

	g = grammar.Default("trusty")
	g.GrandfatheredRoot = ""
	assert.NoError(t, g.Validate())
}

func TestLookups(t *testing.T) {
	g := grammar.Default("xenial")
	assert.True(t, g.IsRoot("login"))
	assert.False(t, g.IsRoot("store"))
	assert.True(t, g.IsProfileSection("charms"))
	assert.True(t, g.IsSeries("bundle"))
	assert.Equal(t, 3, g.GUIOrder("inspector"))
	assert.Equal(t, -1, g.GUIOrder("nope"))
}
