package slave

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/getgreenlight/remote-pty/internal/proto"
	"github.com/getgreenlight/remote-pty/internal/rchannel"
)

// Runner execs the wrapped command with the preload shim installed on its
// environment and relays its stdio and job-control signals to the master
// over one registered channel (§4.4, §4.6). The runner is the single
// master.Client for this subprocess; the PTY-conversation calls the shim
// makes are proxied through it rather than the shim dialing the master
// directly (see Config.LocalSock's doc comment for why).
type Runner struct {
	upstream *rchannel.Channel
	cmd      *exec.Cmd
	stdinW   io.WriteCloser
	stdoutR  io.ReadCloser

	localSockPath string
}

// NewRunner dials transport (a "network:address" spec, matching
// master.Listen) and prepares to run command under a local preload proxy.
func NewRunner(transport string, preloadLibPath string, command string, args []string) (*Runner, error) {
	network, address, err := splitTransportSpec(transport)
	if err != nil {
		return nil, err
	}
	conn, err := net.Dial(network, address)
	if err != nil {
		return nil, fmt.Errorf("slave: dial master %s: %w", transport, err)
	}
	upstream := rchannel.New(conn)

	sockPath := fmt.Sprintf("%s/rpty-%d.sock", os.TempDir(), os.Getpid())

	cmd := exec.Command(command, args...)
	cmd.Env = append(os.Environ(),
		"RPTY_LOCAL_SOCK="+sockPath,
		"LD_PRELOAD="+preloadLibPath,
	)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	return &Runner{upstream: upstream, cmd: cmd, localSockPath: sockPath}, nil
}

// Start registers this runner with the master, opens the local preload
// socket, and execs the command with its stdio connected to pipes this
// runner relays over the wire.
func (r *Runner) Start() error {
	req := proto.RegisterCall{Type: proto.CallRegisterProcess, Pid: uint32(os.Getpid()), Pgrp: uint32(os.Getpid())}
	data, err := proto.Marshal(req)
	if err != nil {
		return err
	}
	respData, err := r.upstream.SendRequest(proto.ConvPGRP, data)
	if err != nil {
		return fmt.Errorf("slave: register: %w", err)
	}
	var resp proto.RegisterResponse
	if err := proto.Unmarshal(respData, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("slave: registration rejected by master")
	}

	stdinR, stdinW, err := os.Pipe()
	if err != nil {
		return err
	}
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return err
	}
	r.stdinW = stdinW
	r.stdoutR = stdoutR

	r.cmd.Stdin = stdinR
	r.cmd.Stdout = stdoutW
	r.cmd.Stderr = stdoutW

	ln, err := net.Listen("unix", r.localSockPath)
	if err != nil {
		return fmt.Errorf("slave: listen local socket: %w", err)
	}

	if err := r.cmd.Start(); err != nil {
		ln.Close()
		return fmt.Errorf("slave: start command: %w", err)
	}
	stdinR.Close()
	stdoutW.Close()

	go r.acceptLocal(ln)
	go r.pumpStdin()
	go r.pumpStdout()
	go r.pumpSignals()

	return nil
}

// Wait blocks until the child exits.
func (r *Runner) Wait() error {
	return r.cmd.Wait()
}

func (r *Runner) acceptLocal(ln net.Listener) {
	defer os.Remove(r.localSockPath)
	conn, err := ln.Accept()
	ln.Close()
	if err != nil {
		log.Printf("slave: accept local shim connection: %v", err)
		return
	}
	local := rchannel.New(conn)
	for {
		payload, reply, err := local.ReceiveRequest(proto.ConvPTY)
		if err != nil {
			return
		}
		respData, err := r.upstream.SendRequest(proto.ConvPTY, payload)
		if err != nil {
			return
		}
		if err := reply(respData); err != nil {
			return
		}
	}
}

// pumpStdin services master-initiated WriteStdin calls by writing into
// the child's stdin pipe.
func (r *Runner) pumpStdin() {
	for {
		payload, reply, err := r.upstream.ReceiveRequest(proto.ConvSTDIN)
		if err != nil {
			return
		}
		var call proto.PtyMasterCall
		resp := proto.PtyMasterResponse{Type: proto.RespWriteSuccess}
		if err := proto.Unmarshal(payload, &call); err != nil {
			resp = proto.PtyMasterResponse{Type: proto.RespMasterError, ErrMsg: err.Error()}
		} else if _, err := r.stdinW.Write(call.Data); err != nil {
			resp = proto.PtyMasterResponse{Type: proto.RespMasterError, ErrMsg: err.Error()}
		} else {
			resp.IntVal = int32(len(call.Data))
		}
		data, _ := proto.Marshal(resp)
		if err := reply(data); err != nil {
			return
		}
	}
}

// pumpStdout reads the child's combined stdout/stderr pipe and forwards
// each chunk to the master as a WriteStdout call.
func (r *Runner) pumpStdout() {
	buf := make([]byte, 32*1024)
	for {
		n, err := r.stdoutR.Read(buf)
		if n > 0 {
			call := proto.PtySlaveCall{Type: proto.CallWriteStdout, Data: append([]byte(nil), buf[:n]...)}
			data, merr := proto.Marshal(call)
			if merr == nil {
				_, _ = r.upstream.SendRequest(proto.ConvSTDOUT, data)
			}
		}
		if err != nil {
			return
		}
	}
}

// pumpSignals services master-initiated Signal calls by replaying the
// signal to the child's process group.
func (r *Runner) pumpSignals() {
	for {
		payload, reply, err := r.upstream.ReceiveRequest(proto.ConvSIGNAL)
		if err != nil {
			return
		}
		var call proto.PtyMasterCall
		resp := proto.PtyMasterResponse{Type: proto.RespMasterSuccess}
		if err := proto.Unmarshal(payload, &call); err != nil {
			resp = proto.PtyMasterResponse{Type: proto.RespMasterError, ErrMsg: err.Error()}
		} else if r.cmd.Process != nil {
			sig := toOSSignal(call.Signal)
			_ = syscall.Kill(-r.cmd.Process.Pid, sig.(syscall.Signal))
		}
		data, _ := proto.Marshal(resp)
		if err := reply(data); err != nil {
			return
		}
	}
}

func toOSSignal(s proto.Signal) os.Signal {
	switch s {
	case proto.SIGWINCH:
		return syscall.SIGWINCH
	case proto.SIGINT:
		return syscall.SIGINT
	case proto.SIGTERM:
		return syscall.SIGTERM
	case proto.SIGCONT:
		return syscall.SIGCONT
	case proto.SIGTTOU:
		return syscall.SIGTTOU
	case proto.SIGTTIN:
		return syscall.SIGTTIN
	default:
		return syscall.SIGTERM
	}
}

// WatchLocalSignals forwards SIGINT/SIGTERM received by the runner
// process itself straight to the child. It exists for the degenerate
// single-host deployment where rpty-slave is run directly at a real
// terminal for testing; the normal remote path delivers signals to the
// child exclusively via pumpSignals, driven by master's own terminal
// watcher.
func (r *Runner) WatchLocalSignals(ctx context.Context) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(ch)
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-ch:
			if r.cmd.Process != nil {
				_ = r.cmd.Process.Signal(sig)
			}
		}
	}
}

func splitTransportSpec(spec string) (network, address string, err error) {
	for i := 0; i < len(spec); i++ {
		if spec[i] == ':' {
			return spec[:i], spec[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("slave: malformed transport spec %q (want network:address)", spec)
}
