// Package shoppinglist owns the client-side shopping list: it applies edits
// optimistically, mirrors them to local storage, reconciles with the list
// server and, once the list is shared, keeps it in sync by debounced pushes
// and periodic polling. Conflicts resolve as last-write-wins by updatedAt.
package shoppinglist

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"lista-zakupow/internal/models"

	"github.com/jaevor/go-nanoid"
	"github.com/jonboulle/clockwork"
)

const (
	DefaultDebounceWindow = time.Second
	DefaultPollInterval   = 5 * time.Second

	itemIDLength  = 21
	shareIDLength = 8
)

// RemoteStore is implemented by remote.Client.
type RemoteStore interface {
	Create(ctx context.Context, items []models.ShoppingItem) models.ShoppingList
	Update(ctx context.Context, id string, items []models.ShoppingItem) models.ShoppingList
	CreateShare(ctx context.Context, items []models.ShoppingItem, recipes []string) (models.ShareMetadata, error)
	GetShare(ctx context.Context, shareID string, since int64) (*models.SharedList, error)
	UpdateShare(ctx context.Context, shareID string, items []models.ShoppingItem) (*models.SharedList, error)
}

// LocalStore is implemented by persistence.Store.
type LocalStore interface {
	SaveOwned(list *models.ShoppingList) error
	LoadOwned() (*models.ShoppingList, error)
	SaveShared(shareID string, payload models.SharedPayload) error
	LoadShared(shareID string) (*models.SharedPayload, error)
	SetOwner(shareID string, owner bool) error
	IsOwner(shareID string) bool
}

// State is a point-in-time copy of the machine state.
type State struct {
	List              *models.ShoppingList
	IsLoading         bool
	ShareID           string
	IsShared          bool
	IsOwner           bool
	LastSyncTimestamp int64
}

type Machine struct {
	remote RemoteStore
	local  LocalStore
	clock  clockwork.Clock
	log    *slog.Logger

	appURL       string
	debounce     time.Duration
	pollInterval time.Duration

	newItemID  func() string
	newShareID func() string

	mu        sync.Mutex
	list      *models.ShoppingList
	loading   int
	rev       uint64
	shareMeta models.ShareMetadata
	isShared  bool
	isOwner   bool
	lastSync  int64
	closed    bool

	pushTimer   clockwork.Timer
	pushGen     uint64
	pushPending bool

	pollStop   chan struct{}
	pollDone   chan struct{}
	pollCancel context.CancelFunc
}

type Option func(*Machine)

func WithClock(c clockwork.Clock) Option {
	return func(m *Machine) { m.clock = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) { m.log = l }
}

// WithAppURL sets the public address share links point to.
func WithAppURL(u string) Option {
	return func(m *Machine) { m.appURL = u }
}

func WithDebounceWindow(d time.Duration) Option {
	return func(m *Machine) { m.debounce = d }
}

func WithPollInterval(d time.Duration) Option {
	return func(m *Machine) { m.pollInterval = d }
}

// New builds a machine and restores the owned list kept in local storage.
func New(remote RemoteStore, local LocalStore, opts ...Option) (*Machine, error) {
	itemID, err := nanoid.Standard(itemIDLength)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize nanoid generator: %w", err)
	}
	shareID, err := nanoid.Standard(shareIDLength)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize nanoid generator: %w", err)
	}

	m := &Machine{
		remote:       remote,
		local:        local,
		clock:        clockwork.NewRealClock(),
		log:          slog.Default(),
		appURL:       "http://localhost:5173",
		debounce:     DefaultDebounceWindow,
		pollInterval: DefaultPollInterval,
		newItemID:    itemID,
		newShareID:   shareID,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.restore()
	return m, nil
}

func (m *Machine) restore() {
	stored, err := m.local.LoadOwned()
	if err != nil {
		m.log.Warn("Failed to restore shopping list", "error", err)
		return
	}
	if stored != nil {
		m.list = stored
	}
}

func (m *Machine) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return State{
		List:              m.list.Clone(),
		IsLoading:         m.loading > 0,
		ShareID:           m.shareMeta.ShareID,
		IsShared:          m.isShared,
		IsOwner:           m.isOwner,
		LastSyncTimestamp: m.lastSync,
	}
}

// Close stops synchronisation for good. Pending pushes are dropped; call
// Flush first to send them.
func (m *Machine) Close() {
	m.StopSync()
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
}

func (m *Machine) nowMillis() int64 {
	return models.Millis(m.clock.Now())
}

func (m *Machine) persistLocked() {
	if m.list == nil {
		return
	}
	if m.isShared {
		payload := models.SharedPayload{
			Items:     models.CloneItems(m.list.Items),
			CreatedAt: m.list.CreatedAt,
			UpdatedAt: m.list.UpdatedAt,
		}
		if err := m.local.SaveShared(m.shareMeta.ShareID, payload); err != nil {
			m.log.Error("Failed to save shared list locally", "share_id", m.shareMeta.ShareID, "error", err)
		}
		// A shared list opened from a link never replaces the owned list.
		if !m.isOwner || m.list.ID == m.shareMeta.ShareID {
			return
		}
	}
	if err := m.local.SaveOwned(m.list); err != nil {
		m.log.Error("Failed to save shopping list locally", "list_id", m.list.ID, "error", err)
	}
}
