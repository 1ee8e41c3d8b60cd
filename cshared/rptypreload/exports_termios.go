package main

/*
#include <termios.h>
#include <errno.h>

static int call_isatty(isatty_fn f, int fd) { return f(fd); }
static int call_tcgetattr(tcgetattr_fn f, int fd, struct termios *t) { return f(fd, t); }
static int call_tcsetattr(tcsetattr_fn f, int fd, int act, const struct termios *t) { return f(fd, act, t); }
static int call_tcdrain(tcdrain_fn f, int fd) { return f(fd); }
static int call_tcflow(tcflow_fn f, int fd, int action) { return f(fd, action); }
static int call_tcflush(tcflush_fn f, int fd, int sel) { return f(fd, sel); }
static int call_tcsendbreak(tcsendbreak_fn f, int fd, int dur) { return f(fd, dur); }
static pid_t call_tcgetsid(tcgetsid_fn f, int fd) { return f(fd); }
*/
import "C"

import (
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/getgreenlight/remote-pty/internal/proto"
	"github.com/getgreenlight/remote-pty/internal/slave/intercept"
	"github.com/getgreenlight/remote-pty/internal/termios"
)

//export isatty
func isatty(fd C.int) C.int {
	r := intercept.Isatty(int(fd))
	if r.Handled {
		return C.int(r.RetVal)
	}
	return C.call_isatty(realIsatty, fd)
}

//export tcgetattr
func tcgetattr(fd C.int, t *C.struct_termios) C.int {
	r := intercept.GetAttr(int(fd))
	if r.Handled {
		if r.RetVal < 0 {
			setErrno(r.Errno)
			return -1
		}
		wireToCTermios(r.Attr, t)
		return 0
	}
	return C.call_tcgetattr(realTcgetattr, fd, t)
}

//export tcsetattr
func tcsetattr(fd, optionalActions C.int, t *C.struct_termios) C.int {
	w := cTermiosToWire(t)
	r := intercept.SetAttr(int(fd), int32(optionalActions), w)
	if r.Handled {
		if r.RetVal < 0 {
			setErrno(r.Errno)
			return -1
		}
		return 0
	}
	return C.call_tcsetattr(realTcsetattr, fd, optionalActions, t)
}

//export tcdrain
func tcdrain(fd C.int) C.int {
	r := intercept.Drain(int(fd))
	if r.Handled {
		if r.RetVal < 0 {
			setErrno(r.Errno)
			return -1
		}
		return 0
	}
	return C.call_tcdrain(realTcdrain, fd)
}

//export tcflow
func tcflow(fd, action C.int) C.int {
	r := intercept.Flow(int(fd), int32(action))
	if r.Handled {
		if r.RetVal < 0 {
			setErrno(r.Errno)
			return -1
		}
		return 0
	}
	return C.call_tcflow(realTcflow, fd, action)
}

//export tcflush
func tcflush(fd, sel C.int) C.int {
	r := intercept.Flush(int(fd), int32(sel))
	if r.Handled {
		if r.RetVal < 0 {
			setErrno(r.Errno)
			return -1
		}
		return 0
	}
	return C.call_tcflush(realTcflush, fd, sel)
}

//export tcsendbreak
func tcsendbreak(fd, dur C.int) C.int {
	r := intercept.SendBreak(int(fd), int32(dur))
	if r.Handled {
		if r.RetVal < 0 {
			setErrno(r.Errno)
			return -1
		}
		return 0
	}
	return C.call_tcsendbreak(realTcsendbreak, fd, dur)
}

//export tcgetsid
func tcgetsid(fd C.int) C.pid_t {
	r := intercept.GetSid(int(fd))
	if r.Handled {
		if r.RetVal < 0 {
			setErrno(r.Errno)
			return -1
		}
		return C.pid_t(r.RetVal)
	}
	return C.call_tcgetsid(realTcgetsid, fd)
}

func setErrno(n int) {
	if n == 0 {
		return
	}
	C.rpty_set_errno(C.int(n))
}

// cTermiosToWire and wireToCTermios convert between the platform's C
// struct termios and the wire representation by reinterpreting the C
// struct's memory as the equivalent golang.org/x/sys/unix.Termios: both
// are thin Go/C views of the identical kernel/libc ABI struct, so a
// pointer cast is exact rather than a field-by-field copy.
func cTermiosToWire(t *C.struct_termios) proto.TermiosWire {
	return termios.ToWire((*unix.Termios)(unsafe.Pointer(t)))
}

func wireToCTermios(w proto.TermiosWire, t *C.struct_termios) {
	conv := termios.FromWire(w)
	*(*unix.Termios)(unsafe.Pointer(t)) = conv
}

func init() {
	resolveRealSymbols()
}
