package intercept

import (
	"github.com/getgreenlight/remote-pty/internal/proto"
)

// Errno maps an ErrCode back onto the numeric errno value the exported C
// functions must set via *libc errno (cgo's C.errno is not writable
// directly from Go, so the shim itself performs the final translation;
// these are the canonical values it translates from).
func Errno(e proto.ErrCode) int {
	switch e {
	case proto.EINVAL:
		return 22
	case proto.EBADF:
		return 9
	case proto.ENOTTY:
		return 25
	case proto.EINTR:
		return 4
	case proto.EIO:
		return 5
	default:
		return 0
	}
}

// Result is the outcome of one intercepted call: Handled is false when
// the caller must fall back to the real libc function.
type Result struct {
	Handled bool
	RetVal  int32
	Errno   int
	Attr    proto.TermiosWire
	WinSize proto.WinSize
	Pgrp    uint32
}

func finish(resp proto.PtySlaveResponse, ok bool) Result {
	if !ok {
		return Result{Handled: false}
	}
	r := Result{Handled: true}
	switch resp.Type {
	case proto.RespError:
		r.RetVal = -1
		r.Errno = Errno(resp.Err)
	case proto.RespAttr:
		r.Attr = resp.Attr
	case proto.RespWinSize:
		r.WinSize = resp.WinSize
	case proto.RespPgrp:
		r.Pgrp = resp.Pgrp
	case proto.RespInt:
		r.RetVal = resp.IntVal
	}
	return r
}

func GetAttr(fd int) Result {
	resp, ok := Dispatch(fd, proto.PtySlaveCall{Type: proto.CallGetAttr})
	return finish(resp, ok)
}

func SetAttr(fd int, optionalActions int32, attr proto.TermiosWire) Result {
	resp, ok := Dispatch(fd, proto.PtySlaveCall{Type: proto.CallSetAttr, OptionalActions: optionalActions, Attr: attr})
	return finish(resp, ok)
}

func Drain(fd int) Result {
	resp, ok := Dispatch(fd, proto.PtySlaveCall{Type: proto.CallDrain})
	return finish(resp, ok)
}

func Flow(fd int, action int32) Result {
	resp, ok := Dispatch(fd, proto.PtySlaveCall{Type: proto.CallFlow, FlowAction: action})
	return finish(resp, ok)
}

func Flush(fd int, selector int32) Result {
	resp, ok := Dispatch(fd, proto.PtySlaveCall{Type: proto.CallFlush, FlushSelector: selector})
	return finish(resp, ok)
}

func SendBreak(fd int, duration int32) Result {
	resp, ok := Dispatch(fd, proto.PtySlaveCall{Type: proto.CallSendBreak, BreakDuration: duration})
	return finish(resp, ok)
}

func Isatty(fd int) Result {
	resp, ok := Dispatch(fd, proto.PtySlaveCall{Type: proto.CallIsatty})
	return finish(resp, ok)
}

func GetSid(fd int) Result {
	resp, ok := Dispatch(fd, proto.PtySlaveCall{Type: proto.CallGetSid})
	return finish(resp, ok)
}

func GetWinsize(fd int) Result {
	resp, ok := Dispatch(fd, proto.PtySlaveCall{Type: proto.CallGetWinsize})
	return finish(resp, ok)
}

func SetWinsize(fd int, ws proto.WinSize) Result {
	resp, ok := Dispatch(fd, proto.PtySlaveCall{Type: proto.CallSetWinsize, WinSize: ws})
	return finish(resp, ok)
}

func Ioctl(fd int, cmd uint32, arg int32) Result {
	resp, ok := Dispatch(fd, proto.PtySlaveCall{Type: proto.CallIoctl, IoctlCmd: cmd, IoctlArg: arg})
	return finish(resp, ok)
}

func GetPgrp(fd int) Result {
	resp, ok := Dispatch(fd, proto.PtySlaveCall{Type: proto.CallGetPgrp})
	return finish(resp, ok)
}

// SetPgrp intercepts tcsetpgrp, forwarding the requested foreground pgrp
// to the master without any local call. AfterSetpgid reuses it to notify
// the master once a real setpgid/setpgrp has already succeeded locally.
func SetPgrp(fd int, pgrp uint32) Result {
	resp, ok := Dispatch(fd, proto.PtySlaveCall{Type: proto.CallSetPgrp, Pgrp: pgrp})
	return finish(resp, ok)
}
