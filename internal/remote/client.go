// Package remote talks to the optional list server. Calls on owned lists never
// fail: when the server cannot be reached they degrade to locally synthesized
// results of the same shape.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"lista-zakupow/internal/models"

	"github.com/jaevor/go-nanoid"
	"github.com/jonboulle/clockwork"
)

var (
	ErrUnavailable = errors.New("list server unavailable")
	ErrNotFound    = errors.New("list not found")
	ErrNotModified = errors.New("list not modified")
)

// Cache supplies the locally stored owned list for offline updates.
type Cache interface {
	LoadOwned() (*models.ShoppingList, error)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      Cache
	clock      clockwork.Clock
	newID      func() string
	log        *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithClock(clock clockwork.Clock) Option {
	return func(c *Client) { c.clock = clock }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New returns a client for the server at baseURL. An empty baseURL selects
// pure client mode where every call takes the fallback path.
func New(baseURL string, cache Cache, opts ...Option) (*Client, error) {
	generateID, err := nanoid.Standard(21)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize nanoid generator: %w", err)
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		cache:      cache,
		clock:      clockwork.NewRealClock(),
		newID:      generateID,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL is empty in pure client mode.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type itemsRequest struct {
	Items []models.ShoppingItem `json:"items"`
}

func nonNil(items []models.ShoppingItem) []models.ShoppingItem {
	if items == nil {
		return []models.ShoppingItem{}
	}
	return items
}

func (c *Client) Create(ctx context.Context, items []models.ShoppingItem) models.ShoppingList {
	var list models.ShoppingList
	status, err := c.do(ctx, http.MethodPost, "/lists", itemsRequest{Items: nonNil(items)}, &list)
	if err == nil && (status == http.StatusCreated || status == http.StatusOK) {
		return list
	}
	c.log.Warn("List server not available, creating list locally", "status", status, "error", err)

	now := models.Millis(c.clock.Now())
	return models.ShoppingList{
		ID:        "local-" + c.newID(),
		Items:     models.CloneItems(nonNil(items)),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Get reports false both for a missing list and for an unreachable server.
func (c *Client) Get(ctx context.Context, id string) (*models.ShoppingList, bool) {
	var list models.ShoppingList
	status, err := c.do(ctx, http.MethodGet, "/lists/"+id, nil, &list)
	if err != nil {
		c.log.Warn("List server not available", "list_id", id, "error", err)
		return nil, false
	}
	if status != http.StatusOK {
		return nil, false
	}
	return &list, true
}

func (c *Client) Update(ctx context.Context, id string, items []models.ShoppingItem) models.ShoppingList {
	var list models.ShoppingList
	status, err := c.do(ctx, http.MethodPatch, "/lists/"+id, itemsRequest{Items: nonNil(items)}, &list)
	if err == nil && status == http.StatusOK {
		return list
	}
	c.log.Warn("List server not available, updating list locally", "list_id", id, "status", status, "error", err)

	now := models.Millis(c.clock.Now())
	createdAt := now
	if c.cache != nil {
		if existing, cacheErr := c.cache.LoadOwned(); cacheErr == nil && existing != nil && existing.ID == id {
			createdAt = existing.CreatedAt
		}
	}
	return models.ShoppingList{
		ID:        id,
		Items:     models.CloneItems(nonNil(items)),
		CreatedAt: createdAt,
		UpdatedAt: max(now, createdAt),
	}
}

// do returns a wrapped ErrUnavailable for transport and decoding failures.
// Non-2xx statuses are returned with a nil error and out left untouched.
func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	if c.baseURL == "" {
		return 0, ErrUnavailable
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("%w: failed to decode response: %v", ErrUnavailable, err)
		}
	}
	return resp.StatusCode, nil
}
