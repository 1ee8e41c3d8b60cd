package intercept

import (
	"golang.org/x/sys/unix"
)

// AfterSetpgid is called by the shim immediately after the real setpgid/
// setpgrp syscall returns successfully (§4.6's process-group interposer:
// local syscall first, remote notification second — the kernel's own
// state is authoritative, this only keeps master's bookkeeping in sync).
// Call sites that get a real syscall error must skip this entirely. It is
// sent as an ordinary SetPgrp PTY call on fd 1 (always the terminal fd by
// definition, per isTerminalFd) since the shim only has the PTY
// conversation proxied to it locally.
func AfterSetpgid(pid, pgid int) {
	resolved := pgid
	if resolved == 0 {
		resolved, _ = unix.Getpgid(pid)
	}
	SetPgrp(1, uint32(resolved))
}
