package main

/*
#include <unistd.h>
#include <sys/types.h>

static pid_t call_tcgetpgrp(tcgetpgrp_fn f, int fd) { return f(fd); }
static int call_tcsetpgrp(tcsetpgrp_fn f, int fd, pid_t pgrp) { return f(fd, pgrp); }
static int call_setpgid(setpgid_fn f, pid_t pid, pid_t pgid) { return f(pid, pgid); }
static pid_t call_setpgrp(setpgrp_fn f) { return f(); }
*/
import "C"

import (
	"github.com/getgreenlight/remote-pty/internal/slave/intercept"
)

//export tcgetpgrp
func tcgetpgrp(fd C.int) C.pid_t {
	r := intercept.GetPgrp(int(fd))
	if r.Handled {
		return C.pid_t(r.Pgrp)
	}
	return C.call_tcgetpgrp(realTcgetpgrp, fd)
}

//export tcsetpgrp
func tcsetpgrp(fd C.int, pgrp C.pid_t) C.int {
	r := intercept.SetPgrp(int(fd), uint32(pgrp))
	if r.Handled {
		if r.RetVal < 0 {
			setErrno(r.Errno)
			return -1
		}
		return 0
	}
	return C.call_tcsetpgrp(realTcsetpgrp, fd, pgrp)
}

// setpgid and setpgrp are never routed to the master directly: the kernel
// call happens for real first (a wrapped process's job control must
// actually work locally too), and only on success is master notified, via
// intercept.AfterSetpgid (§4.6).
//
//export setpgid
func setpgid(pid, pgid C.pid_t) C.int {
	ret := C.call_setpgid(realSetpgid, pid, pgid)
	if ret == 0 {
		intercept.AfterSetpgid(int(pid), int(pgid))
	}
	return ret
}

//export setpgrp
func setpgrp() C.pid_t {
	ret := C.call_setpgrp(realSetpgrp)
	if ret >= 0 {
		intercept.AfterSetpgid(0, 0)
	}
	return ret
}
