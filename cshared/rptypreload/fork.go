package main

/*
#include <pthread.h>
#include <stdlib.h>

extern void rptyAfterFork();
extern void rptyAtExit();

static void rpty_install_fork_hook(void) {
	pthread_atfork(NULL, NULL, rptyAfterFork);
	atexit(rptyAtExit);
}
*/
import "C"

import (
	"github.com/getgreenlight/remote-pty/internal/slave"
)

//export rptyAfterFork
func rptyAfterFork() {
	// Runs in the child, immediately after fork(2), before any other
	// user code. Reinitializes the bootstrap state's local connection
	// rather than inheriting the parent's fd, mirroring §4.6's fork hook:
	// a forked grandchild gets its own independent call stream, or falls
	// back to the real libc functions if the runner can no longer accept
	// a second connection (see internal/slave.Reinit's doc comment).
	slave.Reinit()
}

//export rptyAtExit
func rptyAtExit() {
	st := slave.Current()
	if st != nil && !st.Disabled() {
		_ = st.Channel().Close()
	}
}

func init() {
	C.rpty_install_fork_hook()
	slave.Bootstrap()
}
