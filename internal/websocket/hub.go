package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dukerupert/shoplist/internal/model"
)

const watcherBufferSize = 16

// Message is the change notification written to every connected client.
type Message struct {
	Type   string `json:"type"`
	Entity string `json:"entity"`
	Action string `json:"action"`
	ID     int64  `json:"id,omitempty"`
}

// NewMessage derives the Type field from the change's entity and action.
func NewMessage(c model.Change) Message {
	return Message{
		Type:   fmt.Sprintf("%s_%s", c.Entity, c.Action),
		Entity: c.Entity,
		Action: c.Action,
		ID:     c.ID,
	}
}

// Hub fans change events out to websocket clients and to in-process
// watchers. Delivery never blocks the publisher: a full buffer drops the event.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*Client]struct{}
	watchers map[chan model.Change]struct{}
	logger   *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:  make(map[*Client]struct{}),
		watchers: make(map[chan model.Change]struct{}),
		logger:   logger,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Publish broadcasts the change to clients and hands it to every watcher.
func (h *Hub) Publish(c model.Change) {
	h.Broadcast(NewMessage(c))

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.watchers {
		select {
		case ch <- c:
		default:
		}
	}
}

// Subscribe registers an in-process watcher. The returned func unsubscribes
// and closes the channel; calling it more than once is safe.
func (h *Hub) Subscribe() (<-chan model.Change, func()) {
	ch := make(chan model.Change, watcherBufferSize)
	h.mu.Lock()
	h.watchers[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.watchers, ch)
			close(ch)
			h.mu.Unlock()
		})
	}
}

func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// buffer full, drop
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) WatcherCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.watchers)
}
