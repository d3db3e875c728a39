package middleware

import (
	"context"
	"regexp"
	"strings"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/ports"
)

// Mask replaces redacted query values.
const Mask = "***"

type redactMiddleware struct {
	next     ports.EntryStore
	patterns []*regexp.Regexp
}

// NewRedactMiddleware creates a middleware that masks the values of query
// parameters whose names match any of the patterns before entries are saved.
// The router's in-memory state is left untouched.
func NewRedactMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.EntryStore) ports.EntryStore {
		return &redactMiddleware{next: next, patterns: patterns}
	}
}

func (m *redactMiddleware) Save(ctx context.Context, sessionID string, entries *domain.Entries) error {
	cloned := entries.Snapshot()
	for i, entry := range cloned.Items {
		cloned.Items[i].Href = m.redact(entry.Href)
	}
	return m.next.Save(ctx, sessionID, cloned)
}

func (m *redactMiddleware) Load(ctx context.Context, sessionID string) (*domain.Entries, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *redactMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *redactMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// redact rewrites the query of href. The query is edited as text so the rest
// of the URL keeps its exact spelling.
func (m *redactMiddleware) redact(href string) string {
	rest, hash, hasHash := strings.Cut(href, "#")
	path, query, hasQuery := strings.Cut(rest, "?")
	if !hasQuery || query == "" {
		return href
	}

	sections := strings.Split(query, "&")
	for i, section := range sections {
		key, _, hasValue := strings.Cut(section, "=")
		if hasValue && m.matches(key) {
			sections[i] = key + "=" + Mask
		}
	}

	out := path + "?" + strings.Join(sections, "&")
	if hasHash {
		out += "#" + hash
	}
	return out
}

func (m *redactMiddleware) matches(key string) bool {
	for _, p := range m.patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}
