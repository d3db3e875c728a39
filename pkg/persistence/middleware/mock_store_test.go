package middleware_test

import (
	"context"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/ports"
)

// MockStore is a simple map-based store for testing middleware.
type MockStore struct {
	data map[string]*domain.Entries
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]*domain.Entries),
	}
}

func (s *MockStore) Save(ctx context.Context, sessionID string, entries *domain.Entries) error {
	s.data[sessionID] = entries
	return nil
}

func (s *MockStore) Load(ctx context.Context, sessionID string) (*domain.Entries, error) {
	entries, ok := s.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return entries, nil
}

func (s *MockStore) Delete(ctx context.Context, sessionID string) error {
	delete(s.data, sessionID)
	return nil
}

func (s *MockStore) List(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}

var _ ports.EntryStore = (*MockStore)(nil)

func sampleEntries(sessionID string, hrefs ...string) *domain.Entries {
	entries := domain.NewEntries(sessionID)
	for _, href := range hrefs {
		entries.Items = append(entries.Items, domain.Entry{Href: href})
	}
	entries.Cursor = len(entries.Items) - 1
	return entries
}
