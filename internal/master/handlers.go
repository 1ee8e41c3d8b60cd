package master

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/getgreenlight/remote-pty/internal/proto"
	"github.com/getgreenlight/remote-pty/internal/pty"
	"github.com/getgreenlight/remote-pty/internal/termios"
)

// handlePtyCall services one PtySlaveCall against the real PTY the server
// owns, and returns the response to send back plus how the server should
// treat the result (§4.7's EventHandleResult, §4.8 foreground discipline).
func (s *Server) handlePtyCall(c *Client, call proto.PtySlaveCall) (proto.PtySlaveResponse, EventHandleResult) {
	if call.Type.MustBeForeground() && s.term.isSet() && !s.term.isForeground(c.Pgrp) {
		_ = c.sendSignal(proto.SIGTTOU, c.Pgrp)
		return proto.Error(proto.EIO), ErrorIgnore
	}

	switch call.Type {
	case proto.CallGetAttr:
		return s.handleGetAttr()
	case proto.CallSetAttr:
		return s.handleSetAttr(call)
	case proto.CallDrain:
		return s.handleDrain()
	case proto.CallFlow:
		return s.handleFlow(call)
	case proto.CallFlush:
		return s.handleFlush(call)
	case proto.CallSendBreak:
		return s.handleSendBreak()
	case proto.CallIsatty:
		return proto.Success(1), Success
	case proto.CallGetSid:
		return s.handleGetSid()
	case proto.CallGetWinsize:
		return s.handleGetWinsize()
	case proto.CallSetWinsize:
		return s.handleSetWinsize(call)
	case proto.CallIoctl:
		return s.handleIoctl(call)
	case proto.CallGetPgrp:
		return s.handleGetPgrp()
	case proto.CallSetPgrp:
		return s.handleSetPgrp(c, call)
	case proto.CallWriteStdout:
		return s.handleWriteStdout(call)
	default:
		return proto.Error(proto.EINVAL), ErrorIgnore
	}
}

func (s *Server) fd() uintptr { return s.ptyPair.Master.Fd() }

func (s *Server) handleGetAttr() (proto.PtySlaveResponse, EventHandleResult) {
	w, err := termios.Get(int(s.fd()))
	if err != nil {
		return proto.Error(toErrCode(err)), ErrorIgnore
	}
	return proto.PtySlaveResponse{Type: proto.RespAttr, Attr: w}, Success
}

func (s *Server) handleSetAttr(call proto.PtySlaveCall) (proto.PtySlaveResponse, EventHandleResult) {
	if err := termios.Set(int(s.fd()), uint(call.OptionalActions), call.Attr); err != nil {
		return proto.Error(toErrCode(err)), ErrorIgnore
	}
	return proto.Success(0), Success
}

func (s *Server) handleDrain() (proto.PtySlaveResponse, EventHandleResult) {
	if err := unix.IoctlSetInt(int(s.fd()), unix.TCSBRK, 1); err != nil {
		return proto.Error(toErrCode(err)), ErrorIgnore
	}
	return proto.Success(0), Success
}

func (s *Server) handleFlow(call proto.PtySlaveCall) (proto.PtySlaveResponse, EventHandleResult) {
	if err := unix.IoctlSetInt(int(s.fd()), unix.TCXONC, int(call.FlowAction)); err != nil {
		return proto.Error(toErrCode(err)), ErrorIgnore
	}
	return proto.Success(0), Success
}

func (s *Server) handleFlush(call proto.PtySlaveCall) (proto.PtySlaveResponse, EventHandleResult) {
	if err := unix.IoctlSetInt(int(s.fd()), unix.TCFLSH, int(call.FlushSelector)); err != nil {
		return proto.Error(toErrCode(err)), ErrorIgnore
	}
	return proto.Success(0), Success
}

func (s *Server) handleSendBreak() (proto.PtySlaveResponse, EventHandleResult) {
	if err := unix.IoctlSetInt(int(s.fd()), unix.TCSBRKP, 0); err != nil {
		return proto.Error(toErrCode(err)), ErrorIgnore
	}
	return proto.Success(0), Success
}

func (s *Server) handleGetSid() (proto.PtySlaveResponse, EventHandleResult) {
	sid, err := unix.IoctlGetInt(int(s.fd()), unix.TIOCGSID)
	if err != nil {
		return proto.Error(toErrCode(err)), ErrorIgnore
	}
	return proto.Success(int32(sid)), Success
}

func (s *Server) handleGetWinsize() (proto.PtySlaveResponse, EventHandleResult) {
	ws, err := pty.GetWinsize(s.fd())
	if err != nil {
		return proto.Error(toErrCode(err)), ErrorIgnore
	}
	return proto.PtySlaveResponse{Type: proto.RespWinSize, WinSize: ws}, Success
}

func (s *Server) handleSetWinsize(call proto.PtySlaveCall) (proto.PtySlaveResponse, EventHandleResult) {
	if err := pty.SetWinsize(s.fd(), call.WinSize); err != nil {
		return proto.Error(toErrCode(err)), ErrorIgnore
	}
	return proto.Success(0), Success
}

// ioctl subcommands the slave may request directly rather than through a
// dedicated call type, per §4.6's intercept dispatch table and §3's
// selected-ioctls set (FIONREAD, TIOCOUTQ, TIOCGETD, TIOCSETD).
const (
	ioctlFIONREAD = 0x541B
	ioctlTIOCOUTQ = 0x5411
	ioctlTIOCGETD = 0x5424
	ioctlTIOCSETD = 0x5423
)

func (s *Server) handleIoctl(call proto.PtySlaveCall) (proto.PtySlaveResponse, EventHandleResult) {
	switch call.IoctlCmd {
	case ioctlFIONREAD, ioctlTIOCOUTQ, ioctlTIOCGETD:
		n, err := unix.IoctlGetInt(int(s.fd()), call.IoctlCmd)
		if err != nil {
			return proto.Error(toErrCode(err)), ErrorIgnore
		}
		return proto.Success(int32(n)), Success
	case ioctlTIOCSETD:
		if err := unix.IoctlSetInt(int(s.fd()), call.IoctlCmd, int(call.IoctlArg)); err != nil {
			return proto.Error(toErrCode(err)), ErrorIgnore
		}
		return proto.Success(0), Success
	default:
		return proto.Error(proto.ENOTTY), ErrorIgnore
	}
}

func (s *Server) handleGetPgrp() (proto.PtySlaveResponse, EventHandleResult) {
	return proto.PtySlaveResponse{Type: proto.RespPgrp, Pgrp: s.term.fgPgrp}, Success
}

// handleSetPgrp implements §4.8: it records the requested pgrp as the
// calling client's pgrp and places it in the single foreground slot. The
// slot is never cleared here, and no client is evicted.
func (s *Server) handleSetPgrp(c *Client, call proto.PtySlaveCall) (proto.PtySlaveResponse, EventHandleResult) {
	c.Pgrp = call.Pgrp
	if !s.term.isSet() {
		s.term.set(call.Pgrp)
	} else if s.term.fgPgrp == call.Pgrp || call.Pgrp == c.Pgrp {
		s.term.set(call.Pgrp)
	}
	return proto.Success(0), Success
}

func (s *Server) handleWriteStdout(call proto.PtySlaveCall) (proto.PtySlaveResponse, EventHandleResult) {
	n, err := os.Stdout.Write(call.Data)
	if err != nil {
		return proto.Error(toErrCode(err)), ErrorIgnore
	}
	return proto.Success(int32(n)), Success
}
