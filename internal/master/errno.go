package master

import (
	"errors"

	"golang.org/x/sys/unix"

	"github.com/getgreenlight/remote-pty/internal/proto"
)

// toErrCode collapses a Go/unix error from a termios or ioctl syscall onto
// the five-value taxonomy in §3. Any error not recognized here becomes EIO,
// the catch-all per §7.
func toErrCode(err error) proto.ErrCode {
	if err == nil {
		return proto.ErrNone
	}
	var errno unix.Errno
	if !errors.As(err, &errno) {
		return proto.EIO
	}
	switch errno {
	case unix.EINVAL:
		return proto.EINVAL
	case unix.EBADF:
		return proto.EBADF
	case unix.ENOTTY:
		return proto.ENOTTY
	case unix.EINTR:
		return proto.EINTR
	default:
		return proto.EIO
	}
}
