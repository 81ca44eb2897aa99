package database

import (
	"context"
	"slices"
	"sync"
	"time"

	"lista-zakupow/internal/models"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/jonboulle/clockwork"
)

type sharedEntry struct {
	items     []models.ShoppingItem
	recipes   []string
	createdAt int64
	updatedAt int64
	views     int64
}

func (e *sharedEntry) toModel() *models.SharedList {
	return &models.SharedList{
		Items:      models.CloneItems(e.items),
		Recipes:    slices.Clone(e.recipes),
		Metadata:   models.SharedListMetadata{CreatedAt: e.createdAt, UpdatedAt: e.updatedAt},
		ViewsCount: e.views,
	}
}

// MemoryStore keeps everything in process. Every write re-adds the entry, so
// the cache TTL counts from the last update.
type MemoryStore struct {
	mu     sync.Mutex
	lists  *expirable.LRU[string, *models.ShoppingList]
	shares *expirable.LRU[string, *sharedEntry]
	clock  clockwork.Clock
	ttl    time.Duration
}

// NewMemoryStore keeps at most size entries of each kind; 0 means unbounded.
func NewMemoryStore(size int, ttl time.Duration, clock clockwork.Clock) *MemoryStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryStore{
		lists:  expirable.NewLRU[string, *models.ShoppingList](size, nil, ttl),
		shares: expirable.NewLRU[string, *sharedEntry](size, nil, ttl),
		clock:  clock,
		ttl:    ttl,
	}
}

func (s *MemoryStore) CreateList(_ context.Context, id string, items []models.ShoppingItem) (*models.ShoppingList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := models.Millis(s.clock.Now())
	list := &models.ShoppingList{ID: id, Items: nonNilItems(items), CreatedAt: now, UpdatedAt: now}
	s.lists.Add(id, list)
	return list.Clone(), nil
}

func (s *MemoryStore) GetList(_ context.Context, id string) (*models.ShoppingList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, ok := s.lists.Get(id)
	if !ok {
		return nil, nil
	}
	return list.Clone(), nil
}

func (s *MemoryStore) UpdateList(_ context.Context, id string, items []models.ShoppingItem) (*models.ShoppingList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, ok := s.lists.Get(id)
	if !ok {
		return nil, ErrListNotFound
	}
	updated := &models.ShoppingList{
		ID:        id,
		Items:     nonNilItems(items),
		CreatedAt: list.CreatedAt,
		UpdatedAt: nextUpdatedAt(s.clock.Now(), list.UpdatedAt),
	}
	s.lists.Add(id, updated)
	return updated.Clone(), nil
}

func (s *MemoryStore) ListExists(_ context.Context, id string) (bool, error) {
	return s.lists.Contains(id), nil
}

func (s *MemoryStore) CreateShare(_ context.Context, id string, items []models.ShoppingItem, recipes []string) (*models.SharedList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if recipes == nil {
		recipes = models.RecipeIDs(items)
	}
	now := models.Millis(s.clock.Now())
	entry := &sharedEntry{
		items:     nonNilItems(items),
		recipes:   slices.Clone(recipes),
		createdAt: now,
		updatedAt: now,
	}
	s.shares.Add(id, entry)
	return entry.toModel(), nil
}

// live returns the share unless it is missing or past its TTL on the store
// clock.
func (s *MemoryStore) live(id string) (*sharedEntry, bool) {
	entry, ok := s.shares.Get(id)
	if !ok {
		return nil, false
	}
	if models.Millis(s.clock.Now())-entry.updatedAt > s.ttl.Milliseconds() {
		s.shares.Remove(id)
		return nil, false
	}
	return entry, true
}

func (s *MemoryStore) GetShare(_ context.Context, id string, countView bool) (*models.SharedList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.live(id)
	if !ok {
		return nil, nil
	}
	if countView {
		// Mutated in place so a view does not extend the TTL.
		entry.views++
	}
	return entry.toModel(), nil
}

func (s *MemoryStore) UpdateShare(_ context.Context, id string, items []models.ShoppingItem) (*models.SharedList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.live(id)
	if !ok {
		return nil, ErrListNotFound
	}
	updated := &sharedEntry{
		items:     nonNilItems(items),
		recipes:   models.RecipeIDs(items),
		createdAt: entry.createdAt,
		updatedAt: nextUpdatedAt(s.clock.Now(), entry.updatedAt),
		views:     entry.views,
	}
	s.shares.Add(id, updated)
	return updated.toModel(), nil
}

func (s *MemoryStore) ShareExists(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.live(id)
	return ok, nil
}

func (s *MemoryStore) PurgeExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var purged int64
	for _, id := range s.shares.Keys() {
		if _, ok := s.live(id); !ok {
			purged++
		}
	}
	return purged, nil
}
