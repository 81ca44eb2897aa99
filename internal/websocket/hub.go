package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const EventListUpdated = "list_updated"

// Event is what viewers of a shared list receive.
type Event struct {
	Type      string `json:"type"`
	ShareID   string `json:"shareId"`
	UpdatedAt int64  `json:"updatedAt"`
}

// Hub fans out share events to the viewers of each share.
type Hub struct {
	clients    map[string]map[*Client]bool
	mu         sync.RWMutex
	Register   chan *Client
	Unregister chan *Client
	done       chan struct{}
	log        *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run serves registrations until ctx ends, then closes every viewer.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.Register:
			h.registerClient(client)
		case client := <-h.Unregister:
			h.unregisterClient(client)
		}
	}
}

// Join registers client; it reports false once the hub has stopped.
func (h *Hub) Join(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client.ShareID]; !ok {
		h.clients[client.ShareID] = make(map[*Client]bool)
	}
	h.clients[client.ShareID][client] = true
	h.log.Debug("Viewer registered", "share_id", client.ShareID)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if viewers, ok := h.clients[client.ShareID]; ok {
		if _, ok := viewers[client]; ok {
			delete(viewers, client)
			close(client.send)
			if len(viewers) == 0 {
				delete(h.clients, client.ShareID)
			}
			h.log.Debug("Viewer unregistered", "share_id", client.ShareID)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for shareID, viewers := range h.clients {
		for client := range viewers {
			close(client.send)
		}
		delete(h.clients, shareID)
	}
}

// Viewers reports how many clients watch shareID.
func (h *Hub) Viewers(shareID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[shareID])
}

// PublishEvent never blocks: a viewer with a full buffer misses the event
// and catches up on its next poll.
func (h *Hub) PublishEvent(shareID string, eventData []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if viewers, ok := h.clients[shareID]; ok {
		for client := range viewers {
			select {
			case client.send <- eventData:
			default:
				h.log.Warn("Viewer send buffer is full, dropping message", "share_id", shareID)
			}
		}
	}
}

// PublishListUpdated tells the viewers of shareID that a new version exists.
func (h *Hub) PublishListUpdated(shareID string, updatedAt int64) {
	data, err := json.Marshal(Event{Type: EventListUpdated, ShareID: shareID, UpdatedAt: updatedAt})
	if err != nil {
		h.log.Error("Failed to marshal list event", "share_id", shareID, "error", err)
		return
	}
	h.PublishEvent(shareID, data)
}
