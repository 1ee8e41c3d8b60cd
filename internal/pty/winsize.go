package pty

import (
	"golang.org/x/sys/unix"

	"github.com/getgreenlight/remote-pty/internal/proto"
)

// GetWinsize reads the terminal window size of fd.
func GetWinsize(fd uintptr) (proto.WinSize, error) {
	ws, err := unix.IoctlGetWinsize(int(fd), unix.TIOCGWINSZ)
	if err != nil {
		return proto.WinSize{}, err
	}
	return proto.WinSize{Row: ws.Row, Col: ws.Col, Xpixel: ws.Xpixel, Ypixel: ws.Ypixel}, nil
}

// SetWinsize applies ws to fd.
func SetWinsize(fd uintptr, ws proto.WinSize) error {
	return unix.IoctlSetWinsize(int(fd), unix.TIOCSWINSZ, &unix.Winsize{
		Row: ws.Row, Col: ws.Col, Xpixel: ws.Xpixel, Ypixel: ws.Ypixel,
	})
}

// SyncWinsize copies the window size of src onto dst, e.g. the master's
// controlling terminal onto the allocated PTY master at startup and again
// on every SIGWINCH.
func SyncWinsize(src, dst uintptr) error {
	ws, err := GetWinsize(src)
	if err != nil {
		return err
	}
	return SetWinsize(dst, ws)
}
