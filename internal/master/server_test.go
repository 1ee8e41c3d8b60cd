package master

import (
	"net"
	"testing"

	"github.com/getgreenlight/remote-pty/internal/proto"
	"github.com/getgreenlight/remote-pty/internal/pty"
	"github.com/getgreenlight/remote-pty/internal/rchannel"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	pp, err := pty.Open()
	if err != nil {
		t.Fatalf("pty.Open: %v", err)
	}
	t.Cleanup(func() { pp.Close() })
	return NewServer(pp)
}

// TestForegroundGetAttrAlwaysAllowed covers §4.8: read-only calls never
// require foreground membership.
func TestForegroundGetAttrAlwaysAllowed(t *testing.T) {
	s := newTestServer(t)
	c := &Client{ID: 1, Pgrp: 999}
	resp, result := s.handlePtyCall(c, proto.PtySlaveCall{Type: proto.CallGetAttr})
	if result != Success {
		t.Fatalf("got result %v, want Success", result)
	}
	if resp.Type != proto.RespAttr {
		t.Fatalf("got response type %v, want RespAttr", resp.Type)
	}
}

// TestBackgroundSetAttrDenied covers the EIO reply of §8 property 5 and
// §7: a background pgrp attempting a must-be-foreground call gets EIO and
// is NOT evicted (ErrorIgnore, not ErrorTerminateClient).
func TestBackgroundSetAttrDenied(t *testing.T) {
	s := newTestServer(t)
	s.term.set(100) // some other pgrp is foreground

	// The denial sends SIGTTOU over the client's channel, so the client
	// needs a far end that answers the SIGNAL request.
	local, far := net.Pipe()
	defer local.Close()
	defer far.Close()
	remote := rchannel.New(far)
	go func() {
		_, reply, err := remote.ReceiveRequest(proto.ConvSIGNAL)
		if err != nil {
			return
		}
		data, _ := proto.Marshal(proto.PtyMasterResponse{Type: proto.RespMasterSuccess})
		_ = reply(data)
	}()

	c := &Client{ID: 1, Pgrp: 200, ch: rchannel.New(local)}
	resp, result := s.handlePtyCall(c, proto.PtySlaveCall{Type: proto.CallSetAttr})
	if result != ErrorIgnore {
		t.Fatalf("got result %v, want ErrorIgnore (client must not be evicted)", result)
	}
	if resp.Type != proto.RespError || resp.Err != proto.EIO {
		t.Fatalf("got response %+v, want EIO error", resp)
	}
}

// TestForegroundSetAttrAllowed covers the positive case of the same
// invariant: the current foreground pgrp can perform mutating calls.
func TestForegroundSetAttrAllowed(t *testing.T) {
	s := newTestServer(t)
	c := &Client{ID: 1, Pgrp: 42}
	s.term.set(42)

	_, result := s.handlePtyCall(c, proto.PtySlaveCall{
		Type:            proto.CallSetAttr,
		OptionalActions: 0,
	})
	if result != Success {
		t.Fatalf("got result %v, want Success", result)
	}
}

// TestRemoveClientClearsForegroundWhenLastOfGroup covers §4.7's
// remove_client: relinquish the foreground slot only if no remaining
// client shares that pgrp.
func TestRemoveClientClearsForegroundWhenLastOfGroup(t *testing.T) {
	s := newTestServer(t)
	s.clients[1] = &Client{ID: 1, Pgrp: 7}
	s.term.set(7)

	s.removeClient(1)

	if s.term.isSet() {
		t.Fatalf("expected foreground cleared, got pgrp %d", s.term.fgPgrp)
	}
}

func TestRemoveClientKeepsForegroundWhenSiblingRemains(t *testing.T) {
	s := newTestServer(t)
	s.clients[1] = &Client{ID: 1, Pgrp: 7}
	s.clients[2] = &Client{ID: 2, Pgrp: 7}
	s.term.set(7)

	s.removeClient(1)

	if !s.term.isForeground(7) {
		t.Fatalf("expected pgrp 7 to remain foreground")
	}
}

func TestGetSetPgrpRoundTrip(t *testing.T) {
	s := newTestServer(t)
	c := &Client{ID: 1, Pgrp: 0}

	_, result := s.handlePtyCall(c, proto.PtySlaveCall{Type: proto.CallSetPgrp, Pgrp: 55})
	if result != Success {
		t.Fatalf("SetPgrp: got %v, want Success", result)
	}

	resp, result := s.handlePtyCall(c, proto.PtySlaveCall{Type: proto.CallGetPgrp})
	if result != Success {
		t.Fatalf("GetPgrp: got %v, want Success", result)
	}
	if resp.Pgrp != 55 {
		t.Fatalf("got pgrp %d, want 55", resp.Pgrp)
	}
}
