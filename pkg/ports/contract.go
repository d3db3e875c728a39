package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunEntryStoreContract runs a suite of tests to verify that an EntryStore
// implementation adheres to the defined interface contract.
func RunEntryStoreContract(t *testing.T, store EntryStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		entries := domain.NewEntries(sessionID)
		entries.Items = append(entries.Items,
			domain.Entry{Href: "http://abc.com/", Time: time.Now().UTC().Truncate(time.Second)},
			domain.Entry{Href: "http://abc.com/u/ant", Title: "ant", Time: time.Now().UTC().Truncate(time.Second)},
		)
		entries.Cursor = 1

		err := store.Save(ctx, sessionID, entries)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, sessionID, loaded.SessionID)
		assert.Equal(t, 1, loaded.Cursor)
		require.Len(t, loaded.Items, 2)
		assert.Equal(t, "http://abc.com/u/ant", loaded.Items[1].Href)
		assert.Equal(t, "ant", loaded.Items[1].Title)
		assert.True(t, entries.Items[1].Time.Equal(loaded.Items[1].Time))
	})

	t.Run("Load is isolated from later writes", func(t *testing.T) {
		entries := domain.NewEntries(sessionID)
		entries.Items = append(entries.Items, domain.Entry{Href: "http://abc.com/store"})
		entries.Cursor = 0
		require.NoError(t, store.Save(ctx, sessionID, entries))

		entries.Items[0].Href = "mutated"
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "http://abc.com/store", loaded.Items[0].Href)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewEntries(sessionID))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewEntries(id1))
		_ = store.Save(ctx, id2, domain.NewEntries(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
