package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"lista-zakupow/internal/models"
)

type createShareRequest struct {
	Items   []models.ShoppingItem `json:"items"`
	Recipes []string              `json:"recipes,omitempty"`
}

// Share calls, unlike owned-list calls, surface ErrUnavailable so the caller
// can pick the client-side share path.

func (c *Client) CreateShare(ctx context.Context, items []models.ShoppingItem, recipes []string) (models.ShareMetadata, error) {
	var meta models.ShareMetadata
	status, err := c.do(ctx, http.MethodPost, "/api/lists/share", createShareRequest{Items: nonNil(items), Recipes: recipes}, &meta)
	if err != nil {
		return models.ShareMetadata{}, err
	}
	if (status != http.StatusOK && status != http.StatusCreated) || meta.ShareID == "" {
		return models.ShareMetadata{}, fmt.Errorf("%w: create share returned status %d", ErrUnavailable, status)
	}
	return meta, nil
}

// GetShare fetches a shared list. With since > 0 the server answers
// ErrNotModified when nothing changed after that timestamp and does not count
// the request as a view.
func (c *Client) GetShare(ctx context.Context, shareID string, since int64) (*models.SharedList, error) {
	path := "/api/lists/share/" + url.PathEscape(shareID)
	if since > 0 {
		path += "?since=" + strconv.FormatInt(since, 10)
	}

	var list models.SharedList
	status, err := c.do(ctx, http.MethodGet, path, nil, &list)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
		return &list, nil
	case http.StatusNotModified:
		return nil, ErrNotModified
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("%w: get share returned status %d", ErrUnavailable, status)
	}
}

func (c *Client) UpdateShare(ctx context.Context, shareID string, items []models.ShoppingItem) (*models.SharedList, error) {
	var list models.SharedList
	status, err := c.do(ctx, http.MethodPatch, "/api/lists/share/"+url.PathEscape(shareID), itemsRequest{Items: nonNil(items)}, &list)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
		return &list, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("%w: update share returned status %d", ErrUnavailable, status)
	}
}
