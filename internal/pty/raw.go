package pty

import (
	"golang.org/x/sys/unix"
)

// RawState holds a terminal's original termios so it can later be restored.
// This is the master-side analogue of the raw-mode dance the slave performs
// remotely via GetAttr/SetAttr calls: rpty-master itself needs its local
// controlling terminal (stdin) in raw mode so keystrokes pass through
// untouched to the remote PTY.
type RawState struct {
	fd   int
	orig unix.Termios
}

// SetRaw puts fd (normally os.Stdin.Fd()) into raw mode, returning a
// RawState that can restore it.
func SetRaw(fd int) (*RawState, error) {
	orig, err := unix.IoctlGetTermios(fd, getTermiosIoctl)
	if err != nil {
		return nil, err
	}
	raw := *orig
	raw.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP |
		unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	raw.Oflag &^= unix.OPOST
	raw.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	raw.Cflag &^= unix.CSIZE | unix.PARENB
	raw.Cflag |= unix.CS8
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, setTermiosIoctl, &raw); err != nil {
		return nil, err
	}
	return &RawState{fd: fd, orig: *orig}, nil
}

// Restore puts the terminal back into the mode captured by SetRaw.
func (s *RawState) Restore() error {
	return unix.IoctlSetTermios(s.fd, setTermiosIoctl, &s.orig)
}
