package codec

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aretw0/wayfinder/pkg/grammar"
)

// ErrBaseURLRequired is returned when no base URL is configured.
var ErrBaseURLRequired = errors.New("base URL must be provided")

// Codec converts between URLs and state trees for a given base URL.
// It is safe for concurrent use.
type Codec struct {
	baseURL  string
	basePath string
	grammar  grammar.Grammar
}

// New creates a codec. A trailing separator is appended to baseURL if missing.
func New(baseURL string, g grammar.Grammar) (*Codec, error) {
	if baseURL == "" {
		return nil, ErrBaseURLRequired
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &Codec{
		baseURL:  baseURL,
		basePath: parsed.Path,
		grammar:  g,
	}, nil
}

// BaseURL returns the normalized base URL.
func (c *Codec) BaseURL() string {
	return c.baseURL
}

// Grammar returns the vocabulary used by the codec.
func (c *Codec) Grammar() grammar.Grammar {
	return c.grammar
}

// splitURL is the result of breaking a URL down before interpretation.
type splitURL struct {
	parts []string
	query map[string]string
	keys  []string // query keys in URL order
	hash  string
}

// cleanPath removes the base URL and the surrounding separators.
func (c *Codec) cleanPath(href string) string {
	rest := href
	switch {
	case strings.HasPrefix(href, c.baseURL):
		rest = strings.TrimPrefix(href, c.baseURL)
	case href+"/" == c.baseURL:
		rest = ""
	case c.basePath != "" && strings.HasPrefix(href, c.basePath):
		rest = strings.TrimPrefix(href, c.basePath)
	}
	return strings.Trim(rest, "/")
}

func (c *Codec) split(href string) splitURL {
	var out splitURL
	rest, hash, _ := strings.Cut(c.cleanPath(href), "#")
	out.hash = hash
	path, query, hasQuery := strings.Cut(rest, "?")
	if path = strings.Trim(path, "/"); path != "" {
		out.parts = strings.Split(path, "/")
	}
	if hasQuery && query != "" {
		out.query = make(map[string]string)
		for _, section := range strings.Split(query, "&") {
			key, value, _ := strings.Cut(section, "=")
			if _, seen := out.query[key]; !seen {
				out.keys = append(out.keys, key)
			}
			out.query[key] = value
		}
	}
	return out
}
