package database

import (
	"context"
	"errors"
	"time"

	"lista-zakupow/internal/models"
)

var ErrListNotFound = errors.New("list not found")

// ListStore keeps owned lists and shared lists on the server. Getters return
// nil, nil when the record does not exist; updates return ErrListNotFound.
type ListStore interface {
	CreateList(ctx context.Context, id string, items []models.ShoppingItem) (*models.ShoppingList, error)
	GetList(ctx context.Context, id string) (*models.ShoppingList, error)
	UpdateList(ctx context.Context, id string, items []models.ShoppingItem) (*models.ShoppingList, error)
	ListExists(ctx context.Context, id string) (bool, error)

	CreateShare(ctx context.Context, id string, items []models.ShoppingItem, recipes []string) (*models.SharedList, error)
	// GetShare bumps the view counter when countView is set.
	GetShare(ctx context.Context, id string, countView bool) (*models.SharedList, error)
	UpdateShare(ctx context.Context, id string, items []models.ShoppingItem) (*models.SharedList, error)
	ShareExists(ctx context.Context, id string) (bool, error)

	// PurgeExpired removes shares not updated within the store TTL.
	PurgeExpired(ctx context.Context) (int64, error)
}

// nextUpdatedAt keeps server versions strictly increasing even when two
// writes land in the same millisecond.
func nextUpdatedAt(now time.Time, prev int64) int64 {
	return max(models.Millis(now), prev+1)
}

func nonNilItems(items []models.ShoppingItem) []models.ShoppingItem {
	if items == nil {
		return []models.ShoppingItem{}
	}
	return models.CloneItems(items)
}
