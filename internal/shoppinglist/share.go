package shoppinglist

import (
	"context"
	"errors"
	"fmt"

	"lista-zakupow/internal/models"
	"lista-zakupow/internal/remote"
	"lista-zakupow/internal/sharecodec"
)

// CreateShareLink shares the current list. The server mints the share id when
// it is reachable; otherwise the id is minted here and the list content rides
// in the link itself. Calling it again returns the existing share.
func (m *Machine) CreateShareLink(ctx context.Context) (models.ShareMetadata, error) {
	m.mu.Lock()
	if m.isShared {
		meta := m.shareMeta
		m.mu.Unlock()
		return meta, nil
	}
	if m.list == nil || len(m.list.Items) == 0 {
		m.mu.Unlock()
		return models.ShareMetadata{}, ErrEmptyList
	}
	items := models.CloneItems(m.list.Items)
	rev := m.rev
	m.loading++
	m.mu.Unlock()

	meta, sharedAt, err := m.mintShare(ctx, items)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading--
	if err != nil {
		return models.ShareMetadata{}, err
	}
	if m.isShared {
		// A concurrent call or a loaded link won the race.
		return m.shareMeta, nil
	}

	m.shareMeta = meta
	m.isShared = true
	m.isOwner = true
	m.lastSync = sharedAt
	if m.list != nil {
		m.list.UpdatedAt = max(m.list.UpdatedAt, sharedAt)
	}
	if err := m.local.SetOwner(meta.ShareID, true); err != nil {
		m.log.Error("Failed to save share ownership", "share_id", meta.ShareID, "error", err)
	}
	m.persistLocked()
	if m.rev != rev {
		m.schedulePushLocked()
	}
	m.log.Info("Shopping list shared", "share_id", meta.ShareID, "items", len(items))
	return meta, nil
}

func (m *Machine) mintShare(ctx context.Context, items []models.ShoppingItem) (models.ShareMetadata, int64, error) {
	meta, err := m.remote.CreateShare(ctx, items, models.RecipeIDs(items))
	if err == nil {
		return meta, meta.ExpiresAt - models.ShareTTL.Milliseconds(), nil
	}
	m.log.Warn("List server not available, sharing through the link", "error", err)

	now := m.nowMillis()
	shareID := m.newShareID()
	token, encErr := sharecodec.Encode(models.SharedPayload{Items: items, CreatedAt: now, UpdatedAt: now})
	if encErr != nil {
		return models.ShareMetadata{}, 0, fmt.Errorf("failed to encode share payload: %w", encErr)
	}
	return models.ShareMetadata{
		ShareID:   shareID,
		URL:       sharecodec.ShareURL(m.appURL, shareID, token),
		ExpiresAt: models.ExpiresAt(now),
	}, now, nil
}

// LoadSharedList opens the shared list shareID. Content comes from the
// server, or else from the link payload and the local snapshot, whichever is
// newer. payload may be empty.
func (m *Machine) LoadSharedList(ctx context.Context, shareID, payload string) error {
	if shareID == "" {
		return ErrNotFound
	}

	m.mu.Lock()
	m.loading++
	m.mu.Unlock()

	content := m.resolveShared(ctx, shareID, payload)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading--

	if content == nil {
		return ErrNotFound
	}
	if m.nowMillis()-content.UpdatedAt > models.ShareTTL.Milliseconds() {
		return ErrExpired
	}

	m.cancelPushLocked()
	m.list = &models.ShoppingList{
		ID:        shareID,
		Items:     models.CloneItems(content.Items),
		CreatedAt: content.CreatedAt,
		UpdatedAt: content.UpdatedAt,
	}
	m.rev++
	m.isShared = true
	m.isOwner = m.local.IsOwner(shareID)
	m.shareMeta = models.ShareMetadata{
		ShareID:   shareID,
		URL:       sharecodec.ShareURL(m.appURL, shareID, ""),
		ExpiresAt: models.ExpiresAt(content.CreatedAt),
	}
	m.lastSync = content.UpdatedAt
	m.persistLocked()
	m.log.Info("Shared list opened", "share_id", shareID, "owner", m.isOwner)
	return nil
}

func (m *Machine) resolveShared(ctx context.Context, shareID, payload string) *models.SharedPayload {
	shared, err := m.remote.GetShare(ctx, shareID, 0)
	if err == nil {
		return payloadFromShared(shared)
	}
	if !errors.Is(err, remote.ErrNotFound) && !errors.Is(err, remote.ErrUnavailable) {
		m.log.Warn("Unexpected error fetching shared list", "share_id", shareID, "error", err)
	}

	var fromLink *models.SharedPayload
	if payload != "" {
		decoded, err := sharecodec.Decode(payload)
		if err != nil {
			m.log.Warn("Ignoring malformed share payload", "share_id", shareID, "error", err)
		} else {
			fromLink = &decoded
		}
	}

	cached, err := m.local.LoadShared(shareID)
	if err != nil {
		m.log.Warn("Failed to read cached shared list", "share_id", shareID, "error", err)
	}
	return mergeSources(fromLink, cached)
}

// mergeSources picks between the link payload and the local snapshot: the
// newer updatedAt wins and ties go to the link.
func mergeSources(fromLink, cached *models.SharedPayload) *models.SharedPayload {
	switch {
	case fromLink == nil:
		return cached
	case cached == nil:
		return fromLink
	case cached.UpdatedAt > fromLink.UpdatedAt:
		return cached
	default:
		return fromLink
	}
}
