// Package sse implements a Server-Sent Events broker for item change events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Event types sent to clients.
const (
	TypeItemCreated    = "item.created"
	TypeItemDeleted    = "item.deleted"
	TypeItemsChanged   = "items.changed"
	TypeServerShutdown = "server.shutdown"
)

// clientBuffer is how many messages a slow client may lag before drops.
const clientBuffer = 64

// Event is one SSE message.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Broker fans events out to connected clients. Sends never block: a client
// whose buffer is full misses the message.
type Broker struct {
	throttle time.Duration

	mu          sync.Mutex
	clients     map[chan []byte]struct{}
	lastChanged time.Time
	closed      bool
}

// NewBroker creates a broker. After an item event, items.changed is sent at
// most once per throttle interval.
func NewBroker(throttle time.Duration) *Broker {
	if throttle <= 0 {
		throttle = 2 * time.Second
	}
	return &Broker{
		throttle: throttle,
		clients:  make(map[chan []byte]struct{}),
	}
}

// encode renders an event in text/event-stream framing.
func encode(e Event) ([]byte, error) {
	payload, err := json.Marshal(e.Data)
	if err != nil {
		return nil, err
	}
	return fmt.Appendf(nil, "event: %s\ndata: %s\n\n", e.Type, payload), nil
}

// sendLocked must be called with b.mu held.
func (b *Broker) sendLocked(e Event) {
	msg, err := encode(e)
	if err != nil {
		return
	}
	for ch := range b.clients {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Subscribe registers a client. The returned channel is closed when the
// client is unsubscribed or the broker closes.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.clients[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clients[ch]; ok {
		delete(b.clients, ch)
		close(ch)
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

// Publish sends e to every client.
func (b *Broker) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.sendLocked(e)
	}
}

// PublishItemEvent reports an item change. kind is "created" or "deleted";
// anything else is dropped. It matches watch.Callback.
func (b *Broker) PublishItemEvent(kind, item string) {
	var typ string
	switch kind {
	case "created":
		typ = TypeItemCreated
	case "deleted":
		typ = TypeItemDeleted
	default:
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.sendLocked(Event{Type: typ, Data: map[string]string{"item": item}})
	if now := time.Now(); now.Sub(b.lastChanged) >= b.throttle {
		b.lastChanged = now
		b.sendLocked(Event{Type: TypeItemsChanged, Data: map[string]string{}})
	}
}

// Close disconnects every client. Later calls are no-ops.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.clients {
		close(ch)
	}
	clear(b.clients)
}

// ServeHTTP streams events to one client until it disconnects or the broker
// closes.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
