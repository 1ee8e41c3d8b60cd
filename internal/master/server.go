// Package master implements the server loop (C7), PTY call handlers (C8),
// and connection acceptor (C9) that run on the host holding the real
// terminal. It is a single-threaded event dispatcher fed by parallel
// producer goroutines, ported from remote-pty-master/src/server/mod.rs's
// Server::work loop: all client registration, PTY calls, stdin, and
// signals funnel through one channel and are handled one at a time, so
// foreground-pgrp bookkeeping never needs its own lock.
package master

import (
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"

	"github.com/getgreenlight/remote-pty/internal/proto"
	"github.com/getgreenlight/remote-pty/internal/pty"
	"github.com/getgreenlight/remote-pty/internal/rchannel"
)

// EventHandleResult is the outcome of processing one event, mirroring
// EventHandleResult in the original: a call can fail without anything
// else happening (ErrorIgnore), fail badly enough to drop just that
// client (ErrorTerminateClient), or fail badly enough to bring the whole
// server down (ErrorTerminateServer).
type EventHandleResult int

const (
	Success EventHandleResult = iota
	ErrorIgnore
	ErrorTerminateClient
	ErrorTerminateServer
)

type clientEventType int

const (
	evtRegistered clientEventType = iota
	evtCall
	evtTerminated
)

type clientEvent struct {
	clientID uint32
	typ      clientEventType
	conv     proto.Conversation
	call     proto.PtySlaveCall
}

type eventKind int

const (
	eventStdin eventKind = iota
	eventSignal
	eventClient
	eventTerminate
)

type event struct {
	kind   eventKind
	stdin  []byte
	signal proto.Signal
	client clientEvent
}

// Observer receives a read-only mirror of session activity (§4.10's
// dashboard-mirroring expansion). Implementations must not block — the
// dispatch loop calls these synchronously from work().
type Observer interface {
	OnStdout(data []byte)
	OnClientRegistered(pgrp uint32)
	OnClientTerminated(pgrp uint32)
}

// Server is the single event-dispatching PTY server (§4.7).
type Server struct {
	ptyPair *pty.Pair
	term    *terminalState

	mu           sync.Mutex
	clients      map[uint32]*Client
	nextID       uint32
	pendingCalls []pendingCall

	observer Observer

	events chan event
	done   chan struct{}

	terminated int32
}

// SetObserver installs a session-activity observer. Not safe to call once
// Serve has started accepting connections.
func (s *Server) SetObserver(o Observer) {
	s.observer = o
}

// NewServer creates a server driving the real PTY pair pp.
func NewServer(pp *pty.Pair) *Server {
	return &Server{
		ptyPair: pp,
		term:    newTerminalState(),
		clients: make(map[uint32]*Client),
		events:  make(chan event, 64),
		done:    make(chan struct{}),
	}
}

// Acceptor yields successive raw duplex connections from newly arriving
// slaves (§4.9, component C9).
type Acceptor interface {
	Accept() (io.ReadWriteCloser, error)
	Close() error
}

// Serve accepts connections from acc and runs the dispatch loop until
// Terminate is called or acc.Accept returns an error. It blocks.
func (s *Server) Serve(acc Acceptor) error {
	go s.acceptLoop(acc)
	return s.work()
}

// PushStdin feeds locally-read stdin bytes into the dispatcher; call this
// from the goroutine that reads the master's own controlling terminal.
func (s *Server) PushStdin(data []byte) {
	cp := append([]byte(nil), data...)
	s.enqueue(event{kind: eventStdin, stdin: cp})
}

// PushSignal feeds an observed job-control signal into the dispatcher.
func (s *Server) PushSignal(sig proto.Signal) {
	s.enqueue(event{kind: eventSignal, signal: sig})
}

// Terminate stops the dispatch loop.
func (s *Server) Terminate() {
	s.enqueue(event{kind: eventTerminate})
}

func (s *Server) enqueue(e event) {
	if atomic.LoadInt32(&s.terminated) != 0 {
		return
	}
	select {
	case s.events <- e:
	case <-s.done:
	}
}

func (s *Server) acceptLoop(acc Acceptor) {
	for {
		conn, err := acc.Accept()
		if err != nil {
			log.Printf("master: accept: %v", err)
			s.Terminate()
			return
		}
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn io.ReadWriteCloser) {
	ch := rchannel.New(conn)

	reqData, reply, err := ch.ReceiveRequest(proto.ConvPGRP)
	if err != nil {
		_ = ch.Close()
		return
	}
	var reg proto.RegisterCall
	if err := proto.Unmarshal(reqData, &reg); err != nil || reg.Type != proto.CallRegisterProcess {
		_ = ch.Close()
		return
	}

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	c := newClient(id, ch)
	c.Pgrp = reg.Pgrp
	s.clients[id] = c
	s.mu.Unlock()

	respData, _ := proto.Marshal(proto.RegisterResponse{Success: true})
	_ = reply(respData)

	s.enqueue(event{kind: eventClient, client: clientEvent{clientID: id, typ: evtRegistered}})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); s.pumpCalls(c, proto.ConvPTY) }()
	go func() { defer wg.Done(); s.pumpCalls(c, proto.ConvSTDOUT) }()
	wg.Wait()

	s.enqueue(event{kind: eventClient, client: clientEvent{clientID: id, typ: evtTerminated}})
}

// pumpCalls repeatedly receives PtySlaveCall requests from one client on
// one conversation and funnels each into the dispatch loop, blocking the
// reply until the loop has processed it. Running this per (client, conv)
// pair is what lets the channel-level multiplexing in internal/rchannel
// actually matter: many of these run concurrently against the same
// connection.
func (s *Server) pumpCalls(c *Client, conv proto.Conversation) {
	for {
		data, reply, err := c.ch.ReceiveRequest(conv)
		if err != nil {
			return
		}
		var call proto.PtySlaveCall
		if err := proto.Unmarshal(data, &call); err != nil {
			_ = reply(mustMarshalResp(proto.Error(proto.EINVAL)))
			continue
		}
		if conv == proto.ConvSTDOUT {
			call.Type = proto.CallWriteStdout
		}

		respCh := make(chan proto.PtySlaveResponse, 1)
		s.mu.Lock()
		s.pendingCalls = append(s.pendingCalls, pendingCall{clientID: c.ID, conv: conv, call: call, result: respCh})
		s.mu.Unlock()

		s.enqueue(event{kind: eventClient, client: clientEvent{
			clientID: c.ID, typ: evtCall, conv: conv, call: call,
		}})

		resp := <-respCh
		_ = reply(mustMarshalResp(resp))
	}
}

type pendingCall struct {
	clientID uint32
	conv     proto.Conversation
	call     proto.PtySlaveCall
	result   chan proto.PtySlaveResponse
}

func mustMarshalResp(r proto.PtySlaveResponse) []byte {
	data, err := proto.Marshal(r)
	if err != nil {
		// Marshal only fails on unsupported types; PtySlaveResponse is
		// always gob-encodable, so this is unreachable in practice.
		panic(fmt.Sprintf("master: marshal response: %v", err))
	}
	return data
}

// work is the single-goroutine dispatch loop (§4.7's Server::work).
func (s *Server) work() error {
	defer close(s.done)
	for e := range s.events {
		switch e.kind {
		case eventTerminate:
			atomic.StoreInt32(&s.terminated, 1)
			return nil
		case eventStdin:
			s.handleStdin(e.stdin)
		case eventSignal:
			s.handleSignal(e.signal)
		case eventClient:
			if s.handleClientEvent(e.client) == ErrorTerminateServer {
				atomic.StoreInt32(&s.terminated, 1)
				return nil
			}
		}
	}
	return nil
}

func (s *Server) activeClient() *Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.term.isSet() {
		return nil
	}
	for _, c := range s.clients {
		if c.Pgrp == s.term.fgPgrp {
			return c
		}
	}
	return nil
}

func (s *Server) handleStdin(data []byte) {
	c := s.activeClient()
	if c == nil {
		return
	}
	if err := c.writeStdin(data); err != nil {
		log.Printf("master: writeStdin to client %d: %v", c.ID, err)
	}
}

func (s *Server) handleSignal(sig proto.Signal) {
	if sig == proto.SIGWINCH {
		if err := pty.SyncWinsize(0, s.ptyPair.Master.Fd()); err != nil {
			log.Printf("master: syncWinsize: %v", err)
		}
	}
	c := s.activeClient()
	if c == nil {
		return
	}
	if err := c.sendSignal(sig, c.Pgrp); err != nil {
		log.Printf("master: sendSignal to client %d: %v", c.ID, err)
	}
}

func (s *Server) handleClientEvent(ce clientEvent) EventHandleResult {
	switch ce.typ {
	case evtRegistered:
		s.mu.Lock()
		c := s.clients[ce.clientID]
		if c != nil && !s.term.isSet() {
			s.term.set(c.Pgrp)
		}
		s.mu.Unlock()
		if c != nil && s.observer != nil {
			s.observer.OnClientRegistered(c.Pgrp)
		}
		return Success

	case evtTerminated:
		pgrp, had := s.removeClient(ce.clientID)
		if had && s.observer != nil {
			s.observer.OnClientTerminated(pgrp)
		}
		return Success

	case evtCall:
		return s.dispatchPendingCall(ce)
	}
	return Success
}

// dispatchPendingCall pairs a queued clientEvent with the pumpCalls
// goroutine waiting on its result channel, then runs the handler.
func (s *Server) dispatchPendingCall(ce clientEvent) EventHandleResult {
	s.mu.Lock()
	c := s.clients[ce.clientID]
	var result chan proto.PtySlaveResponse
	for i, p := range s.pendingCalls {
		if p.clientID == ce.clientID && p.conv == ce.conv {
			result = p.result
			s.pendingCalls = append(s.pendingCalls[:i], s.pendingCalls[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	if c == nil || result == nil {
		return ErrorIgnore
	}

	resp, hr := s.handlePtyCall(c, ce.call)
	result <- resp

	if ce.call.Type == proto.CallWriteStdout && s.observer != nil {
		s.observer.OnStdout(ce.call.Data)
	}
	return hr
}

// removeClient deletes the client and reports whether one was found,
// along with its pgrp for observer notification.
func (s *Server) removeClient(id uint32) (pgrp uint32, had bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[id]
	if !ok {
		return 0, false
	}
	delete(s.clients, id)
	if s.term.isForeground(c.Pgrp) {
		stillPresent := false
		for _, other := range s.clients {
			if other.Pgrp == c.Pgrp {
				stillPresent = true
				break
			}
		}
		if !stillPresent {
			s.term.clear()
		}
	}
	return c.Pgrp, true
}
