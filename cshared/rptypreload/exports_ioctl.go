package main

/*
#include <sys/ioctl.h>
#include <stdarg.h>

struct winsize;

static int call_ioctl_ptr(ioctl_fn f, int fd, unsigned long req, void *argp) {
	return f(fd, req, argp);
}
*/
import "C"

import (
	"unsafe"

	"github.com/getgreenlight/remote-pty/internal/proto"
	"github.com/getgreenlight/remote-pty/internal/slave/intercept"
)

// ioctl only exports the single-pointer-argument shape used by every
// request this module cares about (TIOCGWINSZ, TIOCSWINSZ, FIONREAD,
// TIOCOUTQ, TIOCGETD, TIOCSETD); libc's real variadic ioctl(3) still
// backs anything else via the dlsym-resolved symbol, called the same way.
// The int-valued commands route through intercept.RouteIoctl so the
// request-number-to-call-type mapping lives in one place.
//
//export ioctl
func ioctl(fd C.int, req C.ulong, argp unsafe.Pointer) C.int {
	switch uint32(req) {
	case tiocgwinsz:
		r := intercept.GetWinsize(int(fd))
		if r.Handled {
			writeCWinsize(r.WinSize, argp)
			return 0
		}
	case tiocswinsz:
		ws := readCWinsize(argp)
		r := intercept.SetWinsize(int(fd), ws)
		if r.Handled {
			if r.RetVal < 0 {
				setErrno(r.Errno)
				return -1
			}
			return 0
		}
	case fionread, tiocoutq, tiocgetd:
		r := intercept.RouteIoctl(int(fd), uint32(req), false, 0)
		if r.Handled {
			if r.RetVal < 0 {
				setErrno(r.Errno)
				return -1
			}
			*(*C.int)(argp) = C.int(r.RetVal)
			return 0
		}
	case tiocsetd:
		arg := *(*C.int)(argp)
		r := intercept.RouteIoctl(int(fd), uint32(req), true, int32(arg))
		if r.Handled {
			if r.RetVal < 0 {
				setErrno(r.Errno)
				return -1
			}
			return 0
		}
	}
	return C.call_ioctl_ptr(realIoctl, fd, req, argp)
}

const (
	tiocgwinsz = 0x5413
	tiocswinsz = 0x5414
	fionread   = 0x541B
	tiocoutq   = 0x5411
	tiocgetd   = 0x5424
	tiocsetd   = 0x5423
)

type cWinsize struct {
	Row, Col, Xpixel, Ypixel uint16
}

func readCWinsize(p unsafe.Pointer) proto.WinSize {
	w := (*cWinsize)(p)
	return proto.WinSize{Row: w.Row, Col: w.Col, Xpixel: w.Xpixel, Ypixel: w.Ypixel}
}

func writeCWinsize(ws proto.WinSize, p unsafe.Pointer) {
	w := (*cWinsize)(p)
	*w = cWinsize{Row: ws.Row, Col: ws.Col, Xpixel: ws.Xpixel, Ypixel: ws.Ypixel}
}
