package bridge

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nhooyr.io/websocket"
)

func newTestWSServer(t *testing.T, recv chan<- Event) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				return
			}
			var ev Event
			if err := json.Unmarshal(data, &ev); err != nil {
				continue
			}
			select {
			case recv <- ev:
			default:
			}
		}
	}))
	return srv
}

func wsURL(httpURL string) string {
	return "ws" + httpURL[len("http"):]
}

func TestBridgeSendsStdoutEvent(t *testing.T) {
	recv := make(chan Event, 8)
	srv := newTestWSServer(t, recv)
	defer srv.Close()

	b := New(wsURL(srv.URL), "")
	defer b.Close()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatalf("bridge never connected")
		default:
		}
		b.connMu.Lock()
		connected := b.conn != nil
		b.connMu.Unlock()
		if connected {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	b.OnStdout([]byte("hello"))

	select {
	case ev := <-recv:
		if ev.Kind != "stdout" || string(ev.Data) != "hello" {
			t.Fatalf("unexpected event: %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("event never arrived")
	}
}

func TestBridgeClientLifecycleEvents(t *testing.T) {
	recv := make(chan Event, 8)
	srv := newTestWSServer(t, recv)
	defer srv.Close()

	b := New(wsURL(srv.URL), "")
	defer b.Close()

	for i := 0; i < 200; i++ {
		b.connMu.Lock()
		connected := b.conn != nil
		b.connMu.Unlock()
		if connected {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	b.OnClientRegistered(42)
	b.OnClientTerminated(42)

	got := map[string]uint32{}
	for i := 0; i < 2; i++ {
		select {
		case ev := <-recv:
			got[ev.Kind] = ev.Pgrp
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for events, got %v", got)
		}
	}
	if got["client_registered"] != 42 || got["client_terminated"] != 42 {
		t.Fatalf("unexpected events: %v", got)
	}
}

func TestBridgeCloseStopsBackgroundLoop(t *testing.T) {
	recv := make(chan Event, 8)
	srv := newTestWSServer(t, recv)
	defer srv.Close()

	b := New(wsURL(srv.URL), "")
	done := make(chan struct{})
	go func() {
		b.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Close did not return")
	}
}
