// Package sse streams library change notifications to browsers as
// Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Event names on the wire.
const (
	EventConverted      = "component.converted"
	EventRemoved        = "component.removed"
	EventCatalogUpdated = "catalog.updated"
)

const (
	clientBuffer = 64
	keepAlive    = 15 * time.Second
)

// Converted is the payload of component.converted.
type Converted struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Symbol       bool     `json:"symbol"`
	Footprint    bool     `json:"footprint"`
	ModelFormats []string `json:"model_formats,omitempty"`
}

// Removed is the payload of component.removed.
type Removed struct {
	ID         string `json:"id"`
	Symbols    int    `json:"symbols"`
	Footprints int    `json:"footprints"`
	Models     int    `json:"models"`
}

// CatalogUpdated is the payload of catalog.updated. Changes counts the
// component events folded into it.
type CatalogUpdated struct {
	Changes int `json:"changes"`
}

// Broker fans component events out to connected clients. Each component
// event is followed by a catalog.updated summary, at most one per throttle
// interval; changes inside the interval are folded into a trailing one.
type Broker struct {
	throttle time.Duration

	mu          sync.Mutex
	clients     map[chan []byte]struct{}
	closed      bool
	seq         uint64
	pending     int
	lastCatalog time.Time
	flush       *time.Timer
}

// NewBroker creates a broker with the given catalog throttle.
func NewBroker(catalogThrottle time.Duration) *Broker {
	if catalogThrottle <= 0 {
		catalogThrottle = 2 * time.Second
	}
	return &Broker{
		throttle: catalogThrottle,
		clients:  make(map[chan []byte]struct{}),
	}
}

// ComponentConverted announces a finished conversion.
func (b *Broker) ComponentConverted(ev Converted) { b.component(EventConverted, ev) }

// ComponentRemoved announces that a component's artifacts were deleted.
func (b *Broker) ComponentRemoved(ev Removed) { b.component(EventRemoved, ev) }

func (b *Broker) component(name string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.sendLocked(name, payload)
	b.pending++

	if wait := b.throttle - time.Since(b.lastCatalog); wait > 0 {
		if b.flush == nil {
			b.flush = time.AfterFunc(wait, b.flushCatalog)
		}
		return
	}
	b.announceLocked()
}

func (b *Broker) flushCatalog() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flush = nil
	if b.closed || b.pending == 0 {
		return
	}
	b.announceLocked()
}

func (b *Broker) announceLocked() {
	b.sendLocked(EventCatalogUpdated, CatalogUpdated{Changes: b.pending})
	b.pending = 0
	b.lastCatalog = time.Now()
}

// sendLocked frames one event and offers it to every client. Clients whose
// buffer is full miss the event.
func (b *Broker) sendLocked(name string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	b.seq++
	frame := fmt.Appendf(nil, "id: %d\nevent: %s\ndata: %s\n\n", b.seq, name, data)
	for ch := range b.clients {
		select {
		case ch <- frame:
		default:
		}
	}
}

// Subscribe registers a client. The channel is closed by Unsubscribe or
// Close.
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

// Close disconnects every client and drops later events. It is safe to call
// more than once.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	if b.flush != nil {
		b.flush.Stop()
		b.flush = nil
	}
	for ch := range b.clients {
		close(ch)
	}
	clear(b.clients)
}

// ServeHTTP streams events to one client (GET /api/events). A comment line
// is sent every keepAlive so idle proxies keep the connection open.
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

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := w.Write([]byte(": keep-alive\n\n")); err != nil {
				return
			}
			flusher.Flush()
		case frame, ok := <-ch:
			if !ok {
				return
			}
			if _, err := w.Write(frame); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
