// Package persistence maps shopping-list state onto client-side key/value
// storage: the owned list, per-share snapshots with owner flags, and the
// timeline task flags.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"lista-zakupow/internal/models"

	"github.com/jonboulle/clockwork"
)

const (
	ownedItemsKey    = "shopping-list"
	ownedIDKey       = "shopping-list-id"
	ownedMetaKey     = "shopping-list-meta"
	sharedPrefix     = "shared-list-"
	sharedOwnerInfix = "owner-"
	tasksKey         = "new-year-timeline-tasks"
)

// KeyValue is satisfied by storage.LocalStorage and storage.MemoryStorage.
type KeyValue interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

type Store struct {
	kv    KeyValue
	clock clockwork.Clock
	log   *slog.Logger
}

type Option func(*Store)

func WithClock(c clockwork.Clock) Option {
	return func(s *Store) { s.clock = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

func New(kv KeyValue, opts ...Option) *Store {
	s := &Store{kv: kv, clock: clockwork.NewRealClock(), log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type ownedMeta struct {
	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`
}

func (s *Store) SaveOwned(list *models.ShoppingList) error {
	if list == nil {
		return nil
	}
	items := list.Items
	if items == nil {
		items = []models.ShoppingItem{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal shopping list items: %w", err)
	}
	metaJSON, err := json.Marshal(ownedMeta{CreatedAt: list.CreatedAt, UpdatedAt: list.UpdatedAt})
	if err != nil {
		return fmt.Errorf("failed to marshal shopping list meta: %w", err)
	}

	if err := s.kv.Set(ownedItemsKey, string(itemsJSON)); err != nil {
		return fmt.Errorf("failed to save shopping list items: %w", err)
	}
	if err := s.kv.Set(ownedIDKey, list.ID); err != nil {
		return fmt.Errorf("failed to save shopping list id: %w", err)
	}
	if err := s.kv.Set(ownedMetaKey, string(metaJSON)); err != nil {
		return fmt.Errorf("failed to save shopping list meta: %w", err)
	}
	return nil
}

// LoadOwned returns nil when nothing usable is stored. Corrupt items are
// treated as absent; missing timestamps default to now.
func (s *Store) LoadOwned() (*models.ShoppingList, error) {
	itemsJSON, ok, err := s.kv.Get(ownedItemsKey)
	if err != nil || !ok {
		return nil, err
	}
	id, ok, err := s.kv.Get(ownedIDKey)
	if err != nil || !ok || id == "" {
		return nil, err
	}

	var items []models.ShoppingItem
	if err := json.Unmarshal([]byte(itemsJSON), &items); err != nil {
		s.log.Warn("Ignoring corrupt stored shopping list", "error", err)
		return nil, nil
	}
	if items == nil {
		items = []models.ShoppingItem{}
	}

	now := models.Millis(s.clock.Now())
	list := &models.ShoppingList{ID: id, Items: items, CreatedAt: now, UpdatedAt: now}

	if metaJSON, ok, err := s.kv.Get(ownedMetaKey); err == nil && ok {
		var meta ownedMeta
		if err := json.Unmarshal([]byte(metaJSON), &meta); err == nil && meta.CreatedAt > 0 {
			list.CreatedAt = meta.CreatedAt
			list.UpdatedAt = max(meta.UpdatedAt, meta.CreatedAt)
		}
	}
	return list, nil
}

func (s *Store) ClearOwned() error {
	for _, key := range []string{ownedItemsKey, ownedIDKey, ownedMetaKey} {
		if err := s.kv.Remove(key); err != nil {
			return fmt.Errorf("failed to clear %s: %w", key, err)
		}
	}
	return nil
}

func sharedKey(shareID string) string {
	return sharedPrefix + shareID
}

func ownerKey(shareID string) string {
	return sharedPrefix + sharedOwnerInfix + shareID
}

func (s *Store) SaveShared(shareID string, payload models.SharedPayload) error {
	if payload.Items == nil {
		payload.Items = []models.ShoppingItem{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal shared list: %w", err)
	}
	if err := s.kv.Set(sharedKey(shareID), string(raw)); err != nil {
		return fmt.Errorf("failed to save shared list %s: %w", shareID, err)
	}
	return nil
}

// LoadShared returns nil on a cache miss, including a corrupt snapshot.
func (s *Store) LoadShared(shareID string) (*models.SharedPayload, error) {
	raw, ok, err := s.kv.Get(sharedKey(shareID))
	if err != nil || !ok {
		return nil, err
	}
	var payload models.SharedPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil || payload.Items == nil {
		s.log.Warn("Ignoring corrupt shared list snapshot", "share_id", shareID, "error", err)
		return nil, nil
	}
	return &payload, nil
}

func (s *Store) SetOwner(shareID string, owner bool) error {
	if !owner {
		return s.kv.Remove(ownerKey(shareID))
	}
	return s.kv.Set(ownerKey(shareID), "true")
}

func (s *Store) IsOwner(shareID string) bool {
	v, ok, err := s.kv.Get(ownerKey(shareID))
	if err != nil {
		s.log.Warn("Failed to read owner flag", "share_id", shareID, "error", err)
		return false
	}
	return ok && v == "true"
}
