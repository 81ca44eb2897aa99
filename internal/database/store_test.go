package database

import (
	"context"
	"testing"
	"time"

	"lista-zakupow/internal/models"

	"github.com/jaevor/go-nanoid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

const testTTL = 90 * 24 * time.Hour

var sampleItems = []models.ShoppingItem{
	{ID: "i1", RecipeID: "olivier", RecipeName: "Оливье", IngredientName: "Картофель", Amount: "4 шт"},
	{ID: "i2", RecipeID: "olivier", RecipeName: "Оливье", IngredientName: "Горошек", Amount: "1 банка"},
	{ID: "i3", RecipeID: "herring", RecipeName: "Сельдь под шубой", IngredientName: "Сельдь", Amount: "1 шт"},
}

// Każdy test korzysta z unikalnego identyfikatora, bo baza jest współdzielona.
func uniqueID(t *testing.T) string {
	gen, err := nanoid.Standard(21)
	require.NoError(t, err)
	return gen()
}

// Wspólny zestaw scenariuszy dla obu implementacji ListStore.
func runListStoreSuite(t *testing.T, newStore func(t *testing.T, clock clockwork.Clock) ListStore) {
	ctx := context.Background()

	t.Run("owned list lifecycle", func(t *testing.T) {
		clock := newTestClock()
		store := newStore(t, clock)
		id := uniqueID(t)

		created, err := store.CreateList(ctx, id, sampleItems)
		require.NoError(t, err)
		require.Equal(t, id, created.ID)
		require.Equal(t, sampleItems, created.Items)
		require.Equal(t, created.CreatedAt, created.UpdatedAt)

		exists, err := store.ListExists(ctx, id)
		require.NoError(t, err)
		require.True(t, exists)

		clock.Advance(time.Minute)
		toggled := models.CloneItems(sampleItems)
		toggled[0].Checked = true
		updated, err := store.UpdateList(ctx, id, toggled)
		require.NoError(t, err)
		require.Equal(t, created.CreatedAt, updated.CreatedAt)
		require.Greater(t, updated.UpdatedAt, created.UpdatedAt)
		require.True(t, updated.Items[0].Checked)

		fetched, err := store.GetList(ctx, id)
		require.NoError(t, err)
		require.Equal(t, updated, fetched)
	})

	t.Run("missing owned list", func(t *testing.T) {
		store := newStore(t, newTestClock())
		id := uniqueID(t)

		list, err := store.GetList(ctx, id)
		require.NoError(t, err)
		require.Nil(t, list)

		_, err = store.UpdateList(ctx, id, sampleItems)
		require.ErrorIs(t, err, ErrListNotFound)
	})

	t.Run("share views and updates", func(t *testing.T) {
		clock := newTestClock()
		store := newStore(t, clock)
		id := uniqueID(t)

		created, err := store.CreateShare(ctx, id, sampleItems, nil)
		require.NoError(t, err)
		require.Equal(t, []string{"olivier", "herring"}, created.Recipes)
		require.Zero(t, created.ViewsCount)

		viewed, err := store.GetShare(ctx, id, true)
		require.NoError(t, err)
		require.Equal(t, int64(1), viewed.ViewsCount)

		polled, err := store.GetShare(ctx, id, false)
		require.NoError(t, err)
		require.Equal(t, int64(1), polled.ViewsCount)

		updated, err := store.UpdateShare(ctx, id, sampleItems[:1])
		require.NoError(t, err)
		require.Len(t, updated.Items, 1)
		require.Equal(t, []string{"olivier"}, updated.Recipes)
		require.Equal(t, created.Metadata.CreatedAt, updated.Metadata.CreatedAt)
		require.Equal(t, int64(1), updated.ViewsCount)

		// Dwa zapisy w tej samej milisekundzie nadal dają rosnące wersje.
		again, err := store.UpdateShare(ctx, id, sampleItems)
		require.NoError(t, err)
		require.Greater(t, again.Metadata.UpdatedAt, updated.Metadata.UpdatedAt)
	})

	t.Run("share expires after ttl without updates", func(t *testing.T) {
		clock := newTestClock()
		store := newStore(t, clock)
		id := uniqueID(t)

		_, err := store.CreateShare(ctx, id, sampleItems, nil)
		require.NoError(t, err)

		clock.Advance(testTTL)
		shared, err := store.GetShare(ctx, id, false)
		require.NoError(t, err)
		require.NotNil(t, shared, "share is still alive exactly at the ttl")

		clock.Advance(time.Millisecond)
		shared, err = store.GetShare(ctx, id, true)
		require.NoError(t, err)
		require.Nil(t, shared)

		_, err = store.UpdateShare(ctx, id, sampleItems)
		require.ErrorIs(t, err, ErrListNotFound)
	})

	t.Run("update refreshes share ttl", func(t *testing.T) {
		clock := newTestClock()
		store := newStore(t, clock)
		id := uniqueID(t)

		_, err := store.CreateShare(ctx, id, sampleItems, nil)
		require.NoError(t, err)

		clock.Advance(60 * 24 * time.Hour)
		_, err = store.UpdateShare(ctx, id, sampleItems)
		require.NoError(t, err)

		clock.Advance(60 * 24 * time.Hour)
		shared, err := store.GetShare(ctx, id, false)
		require.NoError(t, err)
		require.NotNil(t, shared)
	})

	t.Run("missing share", func(t *testing.T) {
		store := newStore(t, newTestClock())
		id := uniqueID(t)

		shared, err := store.GetShare(ctx, id, true)
		require.NoError(t, err)
		require.Nil(t, shared)

		exists, err := store.ShareExists(ctx, id)
		require.NoError(t, err)
		require.False(t, exists)
	})
}

func TestMemoryStore(t *testing.T) {
	runListStoreSuite(t, func(t *testing.T, clock clockwork.Clock) ListStore {
		return NewMemoryStore(0, testTTL, clock)
	})
}

func TestMemoryStore_PurgeExpired(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	store := NewMemoryStore(0, testTTL, clock)

	_, err := store.CreateShare(ctx, "old", sampleItems, nil)
	require.NoError(t, err)
	clock.Advance(testTTL + time.Hour)
	_, err = store.CreateShare(ctx, "fresh", sampleItems, nil)
	require.NoError(t, err)

	purged, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), purged)

	exists, err := store.ShareExists(ctx, "fresh")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestPostgresStore(t *testing.T) {
	runListStoreSuite(t, func(t *testing.T, clock clockwork.Clock) ListStore {
		return newTestPostgresStore(t, clock)
	})
}

func TestPostgresStore_PurgeExpired(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	store := newTestPostgresStore(t, clock)

	oldID, freshID := uniqueID(t), uniqueID(t)
	_, err := store.CreateShare(ctx, oldID, sampleItems, nil)
	require.NoError(t, err)

	clock.Advance(testTTL + time.Hour)
	_, err = store.CreateShare(ctx, freshID, sampleItems, nil)
	require.NoError(t, err)

	purged, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, purged, int64(1))

	exists, err := store.ShareExists(ctx, oldID)
	require.NoError(t, err)
	require.False(t, exists)

	exists, err = store.ShareExists(ctx, freshID)
	require.NoError(t, err)
	require.True(t, exists)
}

func TestMigrate_Idempotent(t *testing.T) {
	store := newTestPostgresStore(t, clockwork.NewRealClock())
	require.NoError(t, Migrate(store.GetPool()))
}
