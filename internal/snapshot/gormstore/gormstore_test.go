package gormstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/scentcart/internal/domain/cart"
	"github.com/xenking/scentcart/internal/snapshot"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "cart.db"))
	require.NoError(t, err)
	return store
}

func testSnapshot() *snapshot.Snapshot {
	return &snapshot.Snapshot{
		SavedAt: time.Now().UTC().Truncate(time.Second),
		Kinds:   cart.KindMemory{"srv-1": cart.KindGiftBox},
		Items: []cart.Item{
			{
				LocalID:     "local-1",
				ServerID:    "srv-1",
				Kind:        cart.KindGiftBox,
				DisplayName: "Gift Box",
				UnitPrice:   decimal.NewFromInt(250),
			},
		},
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "session-a", testSnapshot()))

	got, err := store.Load(ctx, "session-a")
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "local-1", got.Items[0].LocalID)
	assert.Equal(t, cart.KindGiftBox, got.Kinds["srv-1"])
}

func TestStore_SaveOverwrites(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "session-a", testSnapshot()))

	updated := testSnapshot()
	updated.Items = nil
	updated.Kinds = cart.KindMemory{}
	require.NoError(t, store.Save(ctx, "session-a", updated))

	got, err := store.Load(ctx, "session-a")
	require.NoError(t, err)
	assert.Empty(t, got.Items)
}

func TestStore_LoadMissingSession(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, snapshot.ErrNoSnapshot)
}

func TestStore_SessionsAreIsolated(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "session-a", testSnapshot()))

	_, err := store.Load(ctx, "session-b")
	assert.ErrorIs(t, err, snapshot.ErrNoSnapshot)
}

func TestStore_Delete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "session-a", testSnapshot()))
	require.NoError(t, store.Delete(ctx, "session-a"))

	_, err := store.Load(ctx, "session-a")
	assert.ErrorIs(t, err, snapshot.ErrNoSnapshot)

	// Deleting again is a no-op.
	assert.NoError(t, store.Delete(ctx, "session-a"))
}
