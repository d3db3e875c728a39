package grammar

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidGrammar is returned by Validate when the vocabulary is unusable.
var ErrInvalidGrammar = errors.New("invalid grammar")

// SeriesBundle sits in the series position of bundle store paths and is
// always part of the series list.
const SeriesBundle = "bundle"

// Delimiters are the positional path words that open a section.
type Delimiters struct {
	Search string `yaml:"search" mapstructure:"search"`
	User   string `yaml:"user" mapstructure:"user"`
	GUI    string `yaml:"gui" mapstructure:"gui"`
}

// Grammar is the closed vocabulary the codec understands.
type Grammar struct {
	// Roots are reserved first segments that take over the whole path.
	Roots []string `yaml:"roots" mapstructure:"roots"`

	// GrandfatheredRoot is the one root word that tolerates trailing segments,
	// which are then parsed as a regular path. Empty disables the exception.
	GrandfatheredRoot string `yaml:"grandfathered_root" mapstructure:"grandfathered_root"`

	// ProfileSections are second tokens that turn a user block into a profile.
	ProfileSections []string `yaml:"profile_sections" mapstructure:"profile_sections"`

	// GUISections are the section markers allowed after the gui delimiter.
	GUISections []string `yaml:"gui_sections" mapstructure:"gui_sections"`

	Delimiters Delimiters `yaml:"delimiters" mapstructure:"delimiters"`

	// Series lists the tokens that identify a store reference inside a user block.
	Series []string `yaml:"series" mapstructure:"series"`

	// StoreRoot is the single segment that addresses the empty store.
	StoreRoot string `yaml:"store_root" mapstructure:"store_root"`
}

// Default returns the console vocabulary with the given series list.
func Default(series ...string) Grammar {
	return Grammar{
		Roots: []string{
			"about",
			"bigdata",
			"docs",
			"juju",
			"login",
			"logout",
			"new",
			"account",
		},
		GrandfatheredRoot: "new",
		ProfileSections:   []string{"charms", "issues", "revenue", "settings"},
		GUISections: []string{
			"account",
			"applications",
			"deploy",
			"inspector",
			"isv",
			"machines",
			"status",
		},
		Delimiters: Delimiters{
			Search: "q",
			User:   "u",
			GUI:    "i",
		},
		Series:    WithBundle(series),
		StoreRoot: "store",
	}
}

// WithBundle returns a copy of series that contains SeriesBundle.
func WithBundle(series []string) []string {
	out := append([]string(nil), series...)
	if !slices.Contains(out, SeriesBundle) {
		out = append(out, SeriesBundle)
	}
	return out
}

// Validate checks that the vocabulary can be used by the codec.
func (g Grammar) Validate() error {
	if g.Delimiters.Search == "" || g.Delimiters.User == "" || g.Delimiters.GUI == "" {
		return fmt.Errorf("%w: all path delimiters must be set", ErrInvalidGrammar)
	}
	d := []string{g.Delimiters.Search, g.Delimiters.User, g.Delimiters.GUI}
	if d[0] == d[1] || d[0] == d[2] || d[1] == d[2] {
		return fmt.Errorf("%w: path delimiters must be distinct", ErrInvalidGrammar)
	}
	if len(g.GUISections) == 0 {
		return fmt.Errorf("%w: at least one gui section is required", ErrInvalidGrammar)
	}
	if g.GrandfatheredRoot != "" && !g.IsRoot(g.GrandfatheredRoot) {
		return fmt.Errorf("%w: grandfathered root %q is not a reserved root", ErrInvalidGrammar, g.GrandfatheredRoot)
	}
	for _, root := range g.Roots {
		if slices.Contains(d, root) {
			return fmt.Errorf("%w: root %q collides with a path delimiter", ErrInvalidGrammar, root)
		}
	}
	return nil
}

// IsRoot reports whether word is a reserved root.
func (g Grammar) IsRoot(word string) bool {
	return slices.Contains(g.Roots, word)
}

// IsProfileSection reports whether word is a reserved profile section.
func (g Grammar) IsProfileSection(word string) bool {
	return slices.Contains(g.ProfileSections, word)
}

// IsSeries reports whether word is a known series.
func (g Grammar) IsSeries(word string) bool {
	return slices.Contains(g.Series, word)
}

// GUIOrder returns the position of a gui section, or -1.
func (g Grammar) GUIOrder(section string) int {
	return slices.Index(g.GUISections, section)
}
