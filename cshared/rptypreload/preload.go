// Command rptypreload is the cgo c-shared library loaded into a wrapped
// process via LD_PRELOAD (§4.4–§4.6). It exports the libc terminal-control
// symbols that process's dynamic linker resolves here instead of in
// libc, each one either round-tripping to the master (via
// internal/slave/intercept's decision logic) or falling straight through
// to the real libc implementation resolved once at load time with
// dlsym(RTLD_NEXT, ...) — the same two-tier pattern as the original
// Rust cdylib's handle_intercept, translated into Go's "what does a
// *.so exporting C symbols and calling back into the real libc look
// like" idiom (-buildmode=c-shared plus cgo //export, since a plain
// os/exec-wrapped Go child — the one other approach this codebase
// otherwise reaches for in internal/pty — cannot interpose on libc calls
// made by a binary Go does not control).
package main

/*
#cgo LDFLAGS: -ldl
#include <dlfcn.h>
#include <stdlib.h>
#include <errno.h>
#include <sys/ioctl.h>
#include <termios.h>

typedef int (*isatty_fn)(int);
typedef int (*tcgetattr_fn)(int, struct termios *);
typedef int (*tcsetattr_fn)(int, int, const struct termios *);
typedef int (*tcdrain_fn)(int);
typedef int (*tcflow_fn)(int, int);
typedef int (*tcflush_fn)(int, int);
typedef int (*tcsendbreak_fn)(int, int);
typedef pid_t (*tcgetsid_fn)(int);
typedef pid_t (*tcgetpgrp_fn)(int);
typedef int (*tcsetpgrp_fn)(int, pid_t);
typedef int (*ioctl_fn)(int, unsigned long, void *);
typedef int (*setpgid_fn)(pid_t, pid_t);
typedef pid_t (*setpgrp_fn)(void);

static void *rpty_dlsym_next(const char *name) {
	return dlsym(RTLD_NEXT, name);
}

static void rpty_set_errno(int e) {
	errno = e;
}
*/
import "C"

import (
	"unsafe"
)

var (
	realIsatty      C.isatty_fn
	realTcgetattr   C.tcgetattr_fn
	realTcsetattr   C.tcsetattr_fn
	realTcdrain     C.tcdrain_fn
	realTcflow      C.tcflow_fn
	realTcflush     C.tcflush_fn
	realTcsendbreak C.tcsendbreak_fn
	realTcgetsid    C.tcgetsid_fn
	realTcgetpgrp   C.tcgetpgrp_fn
	realTcsetpgrp   C.tcsetpgrp_fn
	realIoctl       C.ioctl_fn
	realSetpgid     C.setpgid_fn
	realSetpgrp     C.setpgrp_fn
)

func resolveRealSymbols() {
	realIsatty = C.isatty_fn(lookup("isatty"))
	realTcgetattr = C.tcgetattr_fn(lookup("tcgetattr"))
	realTcsetattr = C.tcsetattr_fn(lookup("tcsetattr"))
	realTcdrain = C.tcdrain_fn(lookup("tcdrain"))
	realTcflow = C.tcflow_fn(lookup("tcflow"))
	realTcflush = C.tcflush_fn(lookup("tcflush"))
	realTcsendbreak = C.tcsendbreak_fn(lookup("tcsendbreak"))
	realTcgetsid = C.tcgetsid_fn(lookup("tcgetsid"))
	realTcgetpgrp = C.tcgetpgrp_fn(lookup("tcgetpgrp"))
	realTcsetpgrp = C.tcsetpgrp_fn(lookup("tcsetpgrp"))
	realIoctl = C.ioctl_fn(lookup("ioctl"))
	realSetpgid = C.setpgid_fn(lookup("setpgid"))
	realSetpgrp = C.setpgrp_fn(lookup("setpgrp"))
}

func lookup(name string) unsafe.Pointer {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	return C.rpty_dlsym_next(cname)
}

func main() {} // required by -buildmode=c-shared, never called
