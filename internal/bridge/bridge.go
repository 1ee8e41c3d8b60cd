// Package bridge mirrors master-side session activity — stdout bytes and
// client lifecycle events — to an optional remote dashboard over a
// WebSocket, entirely independent of the PTY relay path itself (§4.10,
// the Go-native expansion of the base spec). It is adapted from the
// teacher's WSClient (websocket.go): same reconnect-with-backoff read
// loop and the same one-connection-at-a-time Send/Close contract, but
// one-directional (observe only, never injects) since a dashboard has no
// business feeding keystrokes back into someone else's terminal session.
package bridge

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"nhooyr.io/websocket"
)

// Event is one activity record mirrored to the dashboard.
type Event struct {
	Kind string `json:"kind"` // "stdout", "client_registered", "client_terminated"
	Data []byte `json:"data,omitempty"`
	Pgrp uint32 `json:"pgrp,omitempty"`
}

// Bridge is a master.Observer backed by a single reconnecting WebSocket
// client.
type Bridge struct {
	url   string
	token string

	done chan struct{}
	wg   sync.WaitGroup

	connMu sync.Mutex
	conn   *websocket.Conn
}

// New creates a Bridge and starts its connect loop in the background.
func New(url, token string) *Bridge {
	b := &Bridge{url: url, token: token, done: make(chan struct{})}
	b.wg.Add(1)
	go b.run()
	return b
}

func (b *Bridge) run() {
	defer b.wg.Done()
	var attempt int
	for {
		select {
		case <-b.done:
			return
		default:
		}

		err := b.connect()
		if err == nil {
			return
		}

		delay := backoff(attempt)
		log.Printf("bridge: disconnected (%v), reconnecting in %v", err, delay)
		attempt++

		select {
		case <-time.After(delay):
		case <-b.done:
			return
		}
	}
}

func (b *Bridge) connect() error {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-b.done:
			cancel()
		case <-ctx.Done():
		}
	}()
	defer cancel()

	opts := &websocket.DialOptions{}
	if b.token != "" {
		opts.HTTPHeader = http.Header{"Authorization": []string{"Bearer " + b.token}}
	}

	dialCtx, dialCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dialCancel()

	conn, _, err := websocket.Dial(dialCtx, b.url, opts)
	if err != nil {
		return err
	}
	defer func() {
		b.setConn(nil)
		conn.CloseNow()
	}()

	b.setConn(conn)
	log.Printf("bridge: connected to %s", b.url)

	readCtx := conn.CloseRead(ctx)
	select {
	case <-b.done:
		conn.Close(websocket.StatusNormalClosure, "shutting down")
		return nil
	case <-readCtx.Done():
		return errors.New("bridge: connection closed by peer")
	}
}

func (b *Bridge) setConn(conn *websocket.Conn) {
	b.connMu.Lock()
	b.conn = conn
	b.connMu.Unlock()
}

// send writes one JSON-ish event as a binary frame, dropping it silently
// if not currently connected — activity mirroring is best-effort and
// must never block or fail the real session.
func (b *Bridge) send(ev Event) {
	b.connMu.Lock()
	conn := b.conn
	b.connMu.Unlock()
	if conn == nil {
		return
	}

	data, err := encodeEvent(ev)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = conn.Write(ctx, websocket.MessageBinary, data)
}

// OnStdout implements master.Observer.
func (b *Bridge) OnStdout(data []byte) {
	b.send(Event{Kind: "stdout", Data: data})
}

// OnClientRegistered implements master.Observer.
func (b *Bridge) OnClientRegistered(pgrp uint32) {
	b.send(Event{Kind: "client_registered", Pgrp: pgrp})
}

// OnClientTerminated implements master.Observer.
func (b *Bridge) OnClientTerminated(pgrp uint32) {
	b.send(Event{Kind: "client_terminated", Pgrp: pgrp})
}

// Close stops the bridge and waits for its goroutine to exit.
func (b *Bridge) Close() {
	select {
	case <-b.done:
		return
	default:
		close(b.done)
	}
	b.wg.Wait()
}

func backoff(attempt int) time.Duration {
	if attempt > 5 {
		attempt = 5 // 1<<5s already exceeds maxDelay; larger shifts overflow
	}
	base :=time.Second * time.Duration(uint(1)<<uint(attempt))
	const maxDelay = 30 * time.Second
	if base > maxDelay {
		base = maxDelay
	}
	jitter := time.Duration(float64(base) * (0.5*rand.Float64() - 0.25))
	return base + jitter
}
