package ports_test

import (
	"context"
	"sort"
	"testing"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/ports"
)

// MockStore is a minimal EntryStore used to check the contract suite itself.
type MockStore struct {
	data map[string]*domain.Entries
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]*domain.Entries),
	}
}

func (m *MockStore) Save(ctx context.Context, sessionID string, entries *domain.Entries) error {
	m.data[sessionID] = entries.Snapshot()
	return nil
}

func (m *MockStore) Load(ctx context.Context, sessionID string) (*domain.Entries, error) {
	entries, ok := m.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return entries.Snapshot(), nil
}

func (m *MockStore) Delete(ctx context.Context, sessionID string) error {
	delete(m.data, sessionID)
	return nil
}

func (m *MockStore) List(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(m.data))
	for id := range m.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func TestEntryStore_Contract(t *testing.T) {
	ports.RunEntryStoreContract(t, NewMockStore())
}
