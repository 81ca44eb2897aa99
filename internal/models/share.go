package models

import "time"

// ShareTTL is the soft lifetime of a shared list.
const ShareTTL = 90 * 24 * time.Hour

type ShareMetadata struct {
	ShareID   string `json:"shareId"`
	URL       string `json:"url"`
	ExpiresAt int64  `json:"expiresAt"`
}

type SharedListMetadata struct {
	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`
}

// SharedList is the server projection of a shared list.
type SharedList struct {
	Items      []ShoppingItem     `json:"items"`
	Recipes    []string           `json:"recipes"`
	Metadata   SharedListMetadata `json:"metadata"`
	ViewsCount int64              `json:"viewsCount"`
}

// SharedPayload is what travels in a share URL and what clients cache per share id.
type SharedPayload struct {
	Items     []ShoppingItem `json:"items"`
	CreatedAt int64          `json:"createdAt"`
	UpdatedAt int64          `json:"updatedAt"`
}

func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

func ExpiresAt(createdAt int64) int64 {
	return createdAt + ShareTTL.Milliseconds()
}
