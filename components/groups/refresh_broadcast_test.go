package groups

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestBroadcastHookSubscribe(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe()
	defer cancel()
	event := RefreshEvent{Reason: EventExpand, UserID: "user-1", GroupID: 3}
	if err := hook.GroupsUpdated(context.Background(), event); err != nil {
		t.Fatalf("GroupsUpdated returned error: %v", err)
	}
	select {
	case e := <-ch:
		if e != event {
			t.Fatalf("expected %+v, got %+v", event, e)
		}
	default:
		t.Fatalf("expected event to be delivered")
	}
}

func TestBroadcastHookCancelAndSlowSubscriber(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe()
	for i := 0; i < 20; i++ {
		if err := hook.GroupsUpdated(context.Background(), RefreshEvent{Reason: "reload"}); err != nil {
			t.Fatalf("GroupsUpdated blocked or failed: %v", err)
		}
	}
	if hook.Subscribers() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", hook.Subscribers())
	}
	cancel()
	cancel()
	if hook.Subscribers() != 0 {
		t.Fatalf("expected subscriber to be removed")
	}
	n := 0
	for range ch {
		n++
	}
	if n != 8 {
		t.Fatalf("expected buffered events to drain before close, got %d", n)
	}
	if hook.Dropped() != 12 {
		t.Fatalf("expected 12 dropped deliveries, got %d", hook.Dropped())
	}
}

func TestBroadcastHookScopesViewerEvents(t *testing.T) {
	hook := NewBroadcastHook()
	mine, cancelMine := hook.SubscribeViewer("user-1")
	defer cancelMine()
	all, cancelAll := hook.Subscribe()
	defer cancelAll()

	ctx := context.Background()
	_ = hook.GroupsUpdated(ctx, RefreshEvent{Reason: EventExpand, UserID: "user-2", GroupID: 5})
	_ = hook.GroupsUpdated(ctx, RefreshEvent{Reason: EventExpand, UserID: "user-1", GroupID: 3})
	_ = hook.GroupsUpdated(ctx, RefreshEvent{Reason: "reload"})

	if got := len(mine); got != 2 {
		t.Fatalf("expected viewer subscriber to get 2 events, got %d", got)
	}
	if e := <-mine; e.GroupID != 3 {
		t.Fatalf("expected the viewer's own event first, got %+v", e)
	}
	if got := len(all); got != 3 {
		t.Fatalf("expected unscoped subscriber to get 3 events, got %d", got)
	}
}

func waitForSubscribers(t *testing.T, hook *BroadcastHook, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hook.Subscribers() < want {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d subscribers", want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBroadcastHookServeWebSocket(t *testing.T) {
	hook := NewBroadcastHook()
	server := httptest.NewServer(http.HandlerFunc(hook.ServeWebSocket))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	waitForSubscribers(t, hook, 1)

	if err := hook.GroupsUpdated(context.Background(), RefreshEvent{Reason: EventCollapseAll, UserID: "user-1"}); err != nil {
		t.Fatalf("GroupsUpdated: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got RefreshEvent
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Reason != EventCollapseAll || got.UserID != "user-1" {
		t.Fatalf("unexpected event %+v", got)
	}
}

func TestBroadcastHookServeSSE(t *testing.T) {
	hook := NewBroadcastHook()
	server := httptest.NewServer(http.HandlerFunc(hook.ServeSSE))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}
	waitForSubscribers(t, hook, 1)

	if err := hook.GroupsUpdated(ctx, RefreshEvent{Reason: "reload"}); err != nil {
		t.Fatalf("GroupsUpdated: %v", err)
	}
	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("read event line: %v", err)
	}
	if line != "event: refresh\n" {
		t.Fatalf("unexpected event line %q", line)
	}
	data, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("read data line: %v", err)
	}
	var got RefreshEvent
	if err := json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(data), "data: ")), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Reason != "reload" {
		t.Fatalf("unexpected event %+v", got)
	}
}
