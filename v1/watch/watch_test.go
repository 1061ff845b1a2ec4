package watch

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mirkobrombin/go-latch/v1/notify"
)

func TestSSEHandlerStreamsEvents(t *testing.T) {
	bus := notify.NewInMemoryBus()
	srv := httptest.NewServer(SSEHandler(bus))
	defer srv.Close()

	lines := make(chan string, 1)
	go func() {
		resp, err := http.Get(srv.URL + "?name=foo")
		if err != nil {
			t.Errorf("get: %v", err)
			return
		}
		defer resp.Body.Close()
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			if line := scanner.Text(); strings.HasPrefix(line, "data: ") {
				lines <- strings.TrimPrefix(line, "data: ")
				return
			}
		}
	}()

	// Publish until the handler's subscription is in place.
	deadline := time.After(2 * time.Second)
	for {
		_ = bus.Publish(context.Background(), notify.NewEvent("foo", notify.KindAcquired, "owner-1"))
		select {
		case payload := <-lines:
			if !strings.Contains(payload, `"kind":"acquired"`) {
				t.Fatalf("unexpected payload %s", payload)
			}
			return
		case <-deadline:
			t.Fatal("timeout waiting for SSE event")
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestSSEHandlerRequiresName(t *testing.T) {
	bus := notify.NewInMemoryBus()
	srv := httptest.NewServer(SSEHandler(bus))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestWebSocketHandlerStreamsEvents(t *testing.T) {
	bus := notify.NewInMemoryBus()
	srv := httptest.NewServer(WebSocketHandler(bus))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?name=foo"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	events := make(chan notify.Event, 1)
	go func() {
		var ev notify.Event
		if err := conn.ReadJSON(&ev); err != nil {
			return
		}
		events <- ev
	}()

	deadline := time.After(2 * time.Second)
	for {
		_ = bus.Publish(context.Background(), notify.NewEvent("foo", notify.KindReleased, "owner-1"))
		select {
		case ev := <-events:
			if ev.Kind != notify.KindReleased || ev.Name != "foo" {
				t.Fatalf("unexpected event %+v", ev)
			}
			return
		case <-deadline:
			t.Fatal("timeout waiting for websocket event")
		case <-time.After(20 * time.Millisecond):
		}
	}
}
