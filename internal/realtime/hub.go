// Package realtime fans order events out to websocket subscribers. Delivery
// is best-effort: a slow or disconnected client never blocks or fails the
// mutation that produced the event.
package realtime

import (
	"encoding/json"
	"log"
	"sync"
)

const (
	// AdminRoom receives every order event.
	AdminRoom = "admin-room"
	// SellerRoom is reserved; no operation publishes to it yet.
	SellerRoom = "seller-room"
)

// UserChannel is the per-user delivery target.
func UserChannel(userID string) string {
	return "user-" + userID
}

// Publisher is the single indirection mutation paths depend on.
type Publisher interface {
	Publish(event string, payload any, channels []string)
}

type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Hub is the process-wide registry of channel subscriptions. It is built in
// the server wiring and injected, never held as package state.
type Hub struct {
	mu       sync.RWMutex
	channels map[string]map[*Client]struct{}
	byClient map[*Client][]string
}

func NewHub() *Hub {
	return &Hub{
		channels: make(map[string]map[*Client]struct{}),
		byClient: make(map[*Client][]string),
	}
}

// Subscribe registers the client on the given channels.
func (h *Hub) Subscribe(c *Client, channels ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range channels {
		if h.channels[ch] == nil {
			h.channels[ch] = make(map[*Client]struct{})
		}
		h.channels[ch][c] = struct{}{}
	}
	h.byClient[c] = append(h.byClient[c], channels...)
}

// Unsubscribe removes the client from every channel and closes its send
// queue. Safe to call more than once.
func (h *Hub) Unsubscribe(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.byClient[c] {
		delete(h.channels[ch], c)
		if len(h.channels[ch]) == 0 {
			delete(h.channels, ch)
		}
	}
	if _, ok := h.byClient[c]; ok {
		delete(h.byClient, c)
		close(c.send)
	}
}

// Publish sends the event to every client subscribed to any of the channels.
// A client subscribed to several of them still receives the event once per
// channel, matching room semantics. Clients with a full send queue are
// skipped.
func (h *Hub) Publish(event string, payload any, channels []string) {
	msg, err := json.Marshal(envelope{Event: event, Data: payload})
	if err != nil {
		log.Printf("realtime: marshal %s: %v", event, err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range channels {
		for c := range h.channels[ch] {
			select {
			case c.send <- msg:
			default:
				// slow consumer, drop
			}
		}
	}
}
