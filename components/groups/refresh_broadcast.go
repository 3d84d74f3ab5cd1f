package groups

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	subscriberBuffer = 8
	keepAlive        = 25 * time.Second
)

// BroadcastHook fans refresh events out to live page connections. A full
// subscriber buffer drops the event for that subscriber and counts it.
type BroadcastHook struct {
	mu      sync.RWMutex
	subs    map[*subscriber]struct{}
	dropped atomic.Uint64
}

type subscriber struct {
	userID string
	events chan RefreshEvent
	once   sync.Once
}

// wants reports whether the subscriber should see event. Dataset-wide events
// carry no user id and reach everyone.
func (s *subscriber) wants(event RefreshEvent) bool {
	return s.userID == "" || event.UserID == "" || event.UserID == s.userID
}

// NewBroadcastHook creates a broadcast hook with no subscribers.
func NewBroadcastHook() *BroadcastHook {
	return &BroadcastHook{subs: make(map[*subscriber]struct{})}
}

// GroupsUpdated satisfies RefreshHook. It never blocks.
func (h *BroadcastHook) GroupsUpdated(_ context.Context, event RefreshEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		if !sub.wants(event) {
			continue
		}
		select {
		case sub.events <- event:
		default:
			h.dropped.Add(1)
		}
	}
	return nil
}

// Subscribe receives every event.
func (h *BroadcastHook) Subscribe() (<-chan RefreshEvent, func()) {
	return h.SubscribeViewer("")
}

// SubscribeViewer receives dataset-wide events plus the ones caused by
// userID. The returned cancel func closes the channel and is idempotent.
func (h *BroadcastHook) SubscribeViewer(userID string) (<-chan RefreshEvent, func()) {
	sub := &subscriber{userID: userID, events: make(chan RefreshEvent, subscriberBuffer)}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		sub.once.Do(func() {
			h.mu.Lock()
			delete(h.subs, sub)
			h.mu.Unlock()
			close(sub.events)
		})
	}
	return sub.events, cancel
}

// Subscribers returns the number of live subscriptions.
func (h *BroadcastHook) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Dropped returns how many deliveries were skipped because a subscriber lagged.
func (h *BroadcastHook) Dropped() uint64 {
	return h.dropped.Load()
}

// subscriberID scopes a connection to one viewer via ?user= or X-User-ID.
func subscriberID(r *http.Request) string {
	if user := strings.TrimSpace(r.URL.Query().Get("user")); user != "" {
		return user
	}
	return strings.TrimSpace(r.Header.Get("X-User-ID"))
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// ServeWebSocket upgrades the request and writes each refresh event as JSON.
// Client frames are discarded; a read error ends the stream.
func (h *BroadcastHook) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	events, cancel := h.SubscribeViewer(subscriberID(r))
	defer cancel()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(keepAlive)
	defer ping.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-closed:
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second)); err != nil {
				return
			}
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
	}
}

// ServeSSE streams refresh events as Server-Sent Events named "refresh",
// with a comment line as keep-alive.
func (h *BroadcastHook) ServeSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "groups: streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events, cancel := h.SubscribeViewer(subscriberID(r))
	defer cancel()
	flusher.Flush()

	ping := time.NewTicker(keepAlive)
	defer ping.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ping.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
		case event, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				return
			}
			if _, err := fmt.Fprintf(w, "event: refresh\ndata: %s\n\n", payload); err != nil {
				return
			}
		}
		flusher.Flush()
	}
}
