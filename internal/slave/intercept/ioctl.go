package intercept

import "golang.org/x/sys/unix"

// RouteIoctl maps a raw ioctl request number to the typed call it should
// become, per §4.6's dispatch table: winsize get/set have their own call
// types (so the payload carries a structured proto.WinSize rather than an
// opaque int), while the rest fall through to the generic CallIoctl int
// get/set path.
func RouteIoctl(fd int, cmd uint32, argIsSet bool, intArg int32) Result {
	switch cmd {
	case uint32(unix.TIOCGWINSZ):
		return GetWinsize(fd)
	case uint32(unix.TIOCSWINSZ):
		return Result{Handled: false} // caller decodes the winsize struct itself and calls SetWinsize directly
	case fionread, tiocoutq, tiocgetd, tiocsetd:
		return Ioctl(fd, cmd, intArg)
	default:
		return Result{Handled: false}
	}
}

const (
	fionread = 0x541B
	tiocoutq = 0x5411
	tiocgetd = 0x5424
	tiocsetd = 0x5423
)
