//go:build integration

// End-to-end scenarios S2, S4, S5 and S6, driving a real master.Server
// over a unix: transport against simulated wire clients built directly on
// internal/rchannel and internal/proto — standing in for an actual
// LD_PRELOAD-interposed target binary, which can't be driven portably
// inside go test (see DESIGN.md). S1, which needs a real isatty(3) call
// through the cgo shim, is not driven here; internal/slave/intercept's
// unit tests cover only its fd-identity check. S3 (SIGWINCH replay) has
// no test.
package remotepty

import (
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/getgreenlight/remote-pty/internal/master"
	"github.com/getgreenlight/remote-pty/internal/proto"
	"github.com/getgreenlight/remote-pty/internal/pty"
	"github.com/getgreenlight/remote-pty/internal/rchannel"
)

// wireClient simulates what internal/slave.Runner does on the wire: one
// registered connection servicing PGRP/PTY/STDOUT/STDIN/SIGNAL
// conversations, without an actual child process behind it.
type wireClient struct {
	ch   *rchannel.Channel
	pgrp uint32
}

func dialClient(t *testing.T, sockPath string, pid, pgrp uint32) *wireClient {
	t.Helper()
	conn, err := net.Dial("unix", sockPath)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	ch := rchannel.New(conn)
	req, _ := proto.Marshal(proto.RegisterCall{Type: proto.CallRegisterProcess, Pid: pid, Pgrp: pgrp})
	respData, err := ch.SendRequest(proto.ConvPGRP, req)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	var resp proto.RegisterResponse
	if err := proto.Unmarshal(respData, &resp); err != nil || !resp.Success {
		t.Fatalf("registration rejected: err=%v resp=%+v", err, resp)
	}
	return &wireClient{ch: ch, pgrp: pgrp}
}

func (w *wireClient) ptyCall(t *testing.T, call proto.PtySlaveCall) proto.PtySlaveResponse {
	t.Helper()
	data, _ := proto.Marshal(call)
	respData, err := w.ch.SendRequest(proto.ConvPTY, data)
	if err != nil {
		t.Fatalf("pty call: %v", err)
	}
	var resp proto.PtySlaveResponse
	if err := proto.Unmarshal(respData, &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	return resp
}

// writeStdout simulates Runner.pumpStdout forwarding one chunk of the
// wrapped process's combined stdout/stderr to master.
func (w *wireClient) writeStdout(t *testing.T, data []byte) {
	t.Helper()
	call := proto.PtySlaveCall{Type: proto.CallWriteStdout, Data: data}
	payload, _ := proto.Marshal(call)
	if _, err := w.ch.SendRequest(proto.ConvSTDOUT, payload); err != nil {
		t.Fatalf("writeStdout: %v", err)
	}
}

// serviceSignals runs in the background, replying to any Signal call sent
// to this client over ConvSIGNAL, recording each one received.
func (w *wireClient) serviceSignals(got chan<- proto.Signal) {
	for {
		payload, reply, err := w.ch.ReceiveRequest(proto.ConvSIGNAL)
		if err != nil {
			return
		}
		var call proto.PtyMasterCall
		if proto.Unmarshal(payload, &call) == nil && call.Type == proto.CallSignal {
			got <- call.Signal
		}
		data, _ := proto.Marshal(proto.PtyMasterResponse{Type: proto.RespMasterSuccess})
		if reply(data) != nil {
			return
		}
	}
}

func startTestMaster(t *testing.T) (sockPath string, srv *master.Server, slave *os.File) {
	t.Helper()
	pp, err := pty.Open()
	if err != nil {
		t.Fatalf("pty.Open: %v", err)
	}
	t.Cleanup(func() { pp.Close() })

	srv = master.NewServer(pp)

	dir := t.TempDir()
	sockPath = filepath.Join(dir, "rpty.sock")
	acc, err := master.Listen("unix:" + sockPath)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { acc.Close() })

	done := make(chan error, 1)
	go func() { done <- srv.Serve(acc) }()
	t.Cleanup(func() {
		srv.Terminate()
		<-done
	})

	return sockPath, srv, pp.Slave
}

// TestScenarioS2WriteStdoutOrderPreserved covers S2: bytes written to the
// slave's stdout arrive on master's stdout in order, without duplication.
func TestScenarioS2WriteStdoutOrderPreserved(t *testing.T) {
	sockPath, _, _ := startTestMaster(t)
	c := dialClient(t, sockPath, 500, 500)

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer r.Close()
	oldStdout := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = oldStdout }()

	c.writeStdout(t, []byte{72, 73, 10})
	w.Close()

	buf := make([]byte, 3)
	n, _ := r.Read(buf)
	if n != 3 || buf[0] != 72 || buf[1] != 73 || buf[2] != 10 {
		t.Fatalf("got %v, want [72 73 10]", buf[:n])
	}
}

// TestScenarioS4ForegroundDenialSendsSIGTTOU covers S4: a background
// client's SetAttr is denied with EIO and SIGTTOU is replayed to its
// pgrp, while the foreground pgrp is unchanged.
func TestScenarioS4ForegroundDenialSendsSIGTTOU(t *testing.T) {
	sockPath, _, _ := startTestMaster(t)

	fg := dialClient(t, sockPath, 100, 100)
	bg := dialClient(t, sockPath, 200, 200)

	// fg established first, so it is adopted as foreground on registration.
	time.Sleep(50 * time.Millisecond)

	sigCh := make(chan proto.Signal, 1)
	go bg.serviceSignals(sigCh)

	resp := bg.ptyCall(t, proto.PtySlaveCall{Type: proto.CallSetAttr})
	if resp.Type != proto.RespError || resp.Err != proto.EIO {
		t.Fatalf("got %+v, want EIO error", resp)
	}

	select {
	case sig := <-sigCh:
		if sig != proto.SIGTTOU {
			t.Fatalf("got signal %v, want SIGTTOU", sig)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no SIGTTOU delivered to background pgrp")
	}

	fgResp := fg.ptyCall(t, proto.PtySlaveCall{Type: proto.CallGetPgrp})
	if fgResp.Type != proto.RespPgrp || fgResp.Pgrp != 100 {
		t.Fatalf("got %+v, want foreground pgrp 100 unchanged", fgResp)
	}
}

// TestScenarioS5WinsizeRoundTrip covers S5: a winsize set on the master's
// real tty is reported back exactly on GetWinsize.
func TestScenarioS5WinsizeRoundTrip(t *testing.T) {
	sockPath, _, slave := startTestMaster(t)
	c := dialClient(t, sockPath, 300, 300)
	time.Sleep(50 * time.Millisecond)

	want := proto.WinSize{Row: 24, Col: 80, Xpixel: 0, Ypixel: 0}
	if err := pty.SetWinsize(slave.Fd(), want); err != nil {
		t.Fatalf("SetWinsize on slave: %v", err)
	}

	resp := c.ptyCall(t, proto.PtySlaveCall{Type: proto.CallGetWinsize})
	if resp.Type != proto.RespWinSize || resp.WinSize != want {
		t.Fatalf("got %+v, want WinSize %+v", resp, want)
	}
}

// TestScenarioS6DistinctPidsSameForegroundPgrp covers S6: two clients
// registering under the same pgrp (simulating a parent and its forked
// child) are both serviced, and the foreground pgrp is still 500 after
// the second registration.
func TestScenarioS6DistinctPidsSameForegroundPgrp(t *testing.T) {
	sockPath, _, _ := startTestMaster(t)

	parent := dialClient(t, sockPath, 500, 500)
	child := dialClient(t, sockPath, 501, 500)
	time.Sleep(50 * time.Millisecond)

	for _, c := range []*wireClient{parent, child} {
		resp := c.ptyCall(t, proto.PtySlaveCall{Type: proto.CallGetPgrp})
		if resp.Type != proto.RespPgrp || resp.Pgrp != 500 {
			t.Fatalf("client in pgrp %d: got %+v, want foreground pgrp 500", c.pgrp, resp)
		}
	}
}
