package shoppinglist

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"lista-zakupow/internal/models"
	"lista-zakupow/internal/persistence"
	"lista-zakupow/internal/remote"
	"lista-zakupow/internal/storage"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

// fakeRemote is an in-process list server that counts calls.
type fakeRemote struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	offline bool
	nextID  int

	lists  map[string]models.ShoppingList
	shares map[string]*models.SharedList

	creates      int
	updates      int
	shareCreates int
	shareUpdates int
	lastPushed   []models.ShoppingItem
}

func newFakeRemote(clock clockwork.Clock) *fakeRemote {
	return &fakeRemote{
		clock:  clock,
		lists:  make(map[string]models.ShoppingList),
		shares: make(map[string]*models.SharedList),
	}
}

func (f *fakeRemote) now() int64 {
	return models.Millis(f.clock.Now())
}

func (f *fakeRemote) setOffline(offline bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offline = offline
}

func (f *fakeRemote) counts() (creates, updates, shareCreates, shareUpdates int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creates, f.updates, f.shareCreates, f.shareUpdates
}

func (f *fakeRemote) pushed() []models.ShoppingItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	return models.CloneItems(f.lastPushed)
}

func (f *fakeRemote) Create(_ context.Context, items []models.ShoppingItem) models.ShoppingList {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	now := f.now()
	if f.offline {
		return models.ShoppingList{ID: "local-offline", Items: models.CloneItems(items), CreatedAt: now, UpdatedAt: now}
	}
	f.nextID++
	list := models.ShoppingList{ID: fmt.Sprintf("srv-%d", f.nextID), Items: models.CloneItems(items), CreatedAt: now, UpdatedAt: now}
	f.lists[list.ID] = list
	return list
}

func (f *fakeRemote) Update(_ context.Context, id string, items []models.ShoppingItem) models.ShoppingList {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	now := f.now()
	list := models.ShoppingList{ID: id, Items: models.CloneItems(items), CreatedAt: now, UpdatedAt: now}
	if existing, ok := f.lists[id]; ok {
		list.CreatedAt = existing.CreatedAt
	}
	if !f.offline {
		f.lists[id] = list
	}
	return list
}

func (f *fakeRemote) CreateShare(_ context.Context, items []models.ShoppingItem, recipes []string) (models.ShareMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return models.ShareMetadata{}, remote.ErrUnavailable
	}
	f.shareCreates++
	f.nextID++
	id := fmt.Sprintf("share%03d", f.nextID)
	now := f.now()
	f.shares[id] = &models.SharedList{
		Items:    models.CloneItems(items),
		Recipes:  recipes,
		Metadata: models.SharedListMetadata{CreatedAt: now, UpdatedAt: now},
	}
	return models.ShareMetadata{ShareID: id, URL: "https://lista.example/s/" + id, ExpiresAt: models.ExpiresAt(now)}, nil
}

func (f *fakeRemote) GetShare(_ context.Context, shareID string, since int64) (*models.SharedList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return nil, remote.ErrUnavailable
	}
	shared, ok := f.shares[shareID]
	if !ok {
		return nil, remote.ErrNotFound
	}
	if since > 0 && shared.Metadata.UpdatedAt <= since {
		return nil, remote.ErrNotModified
	}
	c := *shared
	c.Items = models.CloneItems(shared.Items)
	return &c, nil
}

func (f *fakeRemote) UpdateShare(_ context.Context, shareID string, items []models.ShoppingItem) (*models.SharedList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return nil, remote.ErrUnavailable
	}
	shared, ok := f.shares[shareID]
	if !ok {
		return nil, remote.ErrNotFound
	}
	f.shareUpdates++
	f.lastPushed = models.CloneItems(items)
	shared.Items = models.CloneItems(items)
	shared.Metadata.UpdatedAt = max(f.now(), shared.Metadata.UpdatedAt+1)
	c := *shared
	c.Items = models.CloneItems(shared.Items)
	return &c, nil
}

// editShare simulates another device writing to a share.
func (f *fakeRemote) editShare(t *testing.T, shareID string, edit func([]models.ShoppingItem) []models.ShoppingItem) int64 {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	shared, ok := f.shares[shareID]
	require.True(t, ok)
	shared.Items = edit(models.CloneItems(shared.Items))
	shared.Metadata.UpdatedAt = max(f.now(), shared.Metadata.UpdatedAt+1)
	return shared.Metadata.UpdatedAt
}

var testStart = time.Date(2025, 12, 28, 12, 0, 0, 0, time.UTC)

var olivier = models.Recipe{
	ID:          "olivier",
	Name:        "Оливье",
	Ingredients: []string{"Картофель - 4 шт", "Горошек - 1 банка", "Майонез по вкусу"},
}

var herring = models.Recipe{
	ID:          "herring",
	Name:        "Сельдь под шубой",
	Ingredients: []string{"Сельдь - 1 шт", "Свекла - 2 шт"},
}

type testEnv struct {
	clock  *clockwork.FakeClock
	remote *fakeRemote
	kv     *storage.MemoryStorage
	local  *persistence.Store
}

func newTestEnv() *testEnv {
	clock := clockwork.NewFakeClockAt(testStart)
	kv := storage.NewMemoryStorage()
	return &testEnv{
		clock:  clock,
		remote: newFakeRemote(clock),
		kv:     kv,
		local:  persistence.New(kv, persistence.WithClock(clock)),
	}
}

func (e *testEnv) machine(t *testing.T, opts ...Option) *Machine {
	t.Helper()
	opts = append([]Option{WithClock(e.clock), WithAppURL("https://lista.example")}, opts...)
	m, err := New(e.remote, e.local, opts...)
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

func itemIDs(m *Machine) []string {
	var ids []string
	for _, item := range m.Snapshot().List.Items {
		ids = append(ids, item.ID)
	}
	return ids
}
