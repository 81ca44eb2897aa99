package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lista-zakupow/internal/models"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

type stubCache struct {
	list *models.ShoppingList
}

func (s stubCache) LoadOwned() (*models.ShoppingList, error) {
	return s.list, nil
}

var testItems = []models.ShoppingItem{{ID: "i1", RecipeID: "r1", RecipeName: "Оливье", IngredientName: "Картофель", Amount: "4 шт"}}

func newFakeClock() *clockwork.FakeClock {
	return clockwork.NewFakeClockAt(time.Date(2025, 12, 28, 12, 0, 0, 0, time.UTC))
}

func TestCreate_Online(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/lists", r.URL.Path)
		var req itemsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.ShoppingList{ID: "srv-1", Items: req.Items, CreatedAt: 5, UpdatedAt: 5})
	}))
	defer srv.Close()

	c, err := New(srv.URL, nil)
	require.NoError(t, err)

	list := c.Create(context.Background(), testItems)
	require.Equal(t, "srv-1", list.ID)
	require.Equal(t, testItems, list.Items)
	require.Equal(t, int64(5), list.CreatedAt)
}

func TestCreate_OfflineFallback(t *testing.T) {
	clock := newFakeClock()
	for _, baseURL := range []string{"", "http://127.0.0.1:1"} {
		c, err := New(baseURL, nil, WithClock(clock))
		require.NoError(t, err)

		list := c.Create(context.Background(), testItems)
		require.True(t, strings.HasPrefix(list.ID, "local-"), list.ID)
		require.Equal(t, testItems, list.Items)
		require.Equal(t, clock.Now().UnixMilli(), list.CreatedAt)
		require.Equal(t, list.CreatedAt, list.UpdatedAt)
	}
}

func TestCreate_ServerErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := New(srv.URL, nil)
	require.NoError(t, err)

	list := c.Create(context.Background(), nil)
	require.True(t, strings.HasPrefix(list.ID, "local-"))
	require.NotNil(t, list.Items)
	require.Empty(t, list.Items)
}

func TestGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/lists/known" {
			json.NewEncoder(w).Encode(models.ShoppingList{ID: "known", Items: testItems, CreatedAt: 1, UpdatedAt: 2})
			return
		}
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c, err := New(srv.URL, nil)
	require.NoError(t, err)

	list, ok := c.Get(context.Background(), "known")
	require.True(t, ok)
	require.Equal(t, "known", list.ID)

	list, ok = c.Get(context.Background(), "missing")
	require.False(t, ok)
	require.Nil(t, list)

	offline, err := New("", nil)
	require.NoError(t, err)
	_, ok = offline.Get(context.Background(), "known")
	require.False(t, ok)
}

func TestUpdate_OfflineKeepsCachedCreatedAt(t *testing.T) {
	clock := newFakeClock()
	cache := stubCache{list: &models.ShoppingList{ID: "list-1", CreatedAt: 1000, UpdatedAt: 2000}}

	c, err := New("", cache, WithClock(clock))
	require.NoError(t, err)

	list := c.Update(context.Background(), "list-1", testItems)
	require.Equal(t, "list-1", list.ID)
	require.Equal(t, testItems, list.Items)
	require.Equal(t, int64(1000), list.CreatedAt)
	require.Equal(t, clock.Now().UnixMilli(), list.UpdatedAt)

	// Nieznane id w cache traktujemy jak brak listy
	other := c.Update(context.Background(), "list-2", nil)
	require.Equal(t, "list-2", other.ID)
	require.Equal(t, clock.Now().UnixMilli(), other.CreatedAt)
	require.NotNil(t, other.Items)
}

func TestShares_Online(t *testing.T) {
	var sawSince string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/lists/share":
			json.NewEncoder(w).Encode(models.ShareMetadata{ShareID: "abcd1234", URL: "http://x/s/abcd1234", ExpiresAt: 99})
		case r.Method == http.MethodGet && r.URL.Path == "/api/lists/share/abcd1234":
			sawSince = r.URL.Query().Get("since")
			if sawSince == "50" {
				w.WriteHeader(http.StatusNotModified)
				return
			}
			json.NewEncoder(w).Encode(models.SharedList{Items: testItems, Metadata: models.SharedListMetadata{CreatedAt: 10, UpdatedAt: 50}})
		case r.Method == http.MethodPatch && r.URL.Path == "/api/lists/share/abcd1234":
			json.NewEncoder(w).Encode(models.SharedList{Items: testItems, Metadata: models.SharedListMetadata{CreatedAt: 10, UpdatedAt: 60}})
		default:
			http.Error(w, "Список не найден", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c, err := New(srv.URL, nil)
	require.NoError(t, err)
	ctx := context.Background()

	meta, err := c.CreateShare(ctx, testItems, nil)
	require.NoError(t, err)
	require.Equal(t, "abcd1234", meta.ShareID)

	shared, err := c.GetShare(ctx, "abcd1234", 0)
	require.NoError(t, err)
	require.Equal(t, int64(50), shared.Metadata.UpdatedAt)
	require.Empty(t, sawSince)

	_, err = c.GetShare(ctx, "abcd1234", 50)
	require.ErrorIs(t, err, ErrNotModified)
	require.Equal(t, "50", sawSince)

	_, err = c.GetShare(ctx, "zzzz0000", 0)
	require.ErrorIs(t, err, ErrNotFound)

	updated, err := c.UpdateShare(ctx, "abcd1234", testItems)
	require.NoError(t, err)
	require.Equal(t, int64(60), updated.Metadata.UpdatedAt)

	_, err = c.UpdateShare(ctx, "zzzz0000", testItems)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestShares_Offline(t *testing.T) {
	c, err := New("", nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.CreateShare(ctx, testItems, nil)
	require.ErrorIs(t, err, ErrUnavailable)
	_, err = c.GetShare(ctx, "abcd1234", 0)
	require.ErrorIs(t, err, ErrUnavailable)
	_, err = c.UpdateShare(ctx, "abcd1234", testItems)
	require.ErrorIs(t, err, ErrUnavailable)
}
