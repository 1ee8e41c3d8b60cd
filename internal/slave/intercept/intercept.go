// Package intercept holds the decision logic behind every libc function
// the preload shim exports: does this fd refer to the terminal the
// master actually manages, and if so, is interception even safe to
// attempt right now? This mirrors remote-pty-slave/src/intercept/tcgetpgrp.rs's
// handle_intercept: log, look up config, check the fd's inode against the
// known terminal inode, check we're still on the main thread, and only
// then round-trip to the master — falling back to the real libc function
// in every other case.
package intercept

import (
	"log"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/getgreenlight/remote-pty/internal/proto"
	"github.com/getgreenlight/remote-pty/internal/slave"
)

var (
	termInodeOnce sync.Once
	termDev       uint64
	termIno       uint64
	termInodeErr  error
)

// isTerminalFd reports whether fd refers to the same underlying file as
// fd 1 (stdout) was at process start — the process's notion of "its
// terminal" for every intercepted call, captured once so that a later
// dup2 onto fd 1 doesn't change which fd is considered intercepted mid-run.
func isTerminalFd(fd int) bool {
	termInodeOnce.Do(func() {
		var st unix.Stat_t
		termInodeErr = unix.Fstat(1, &st)
		termDev, termIno = uint64(st.Dev), uint64(st.Ino)
	})
	if termInodeErr != nil {
		return fd == 1
	}
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return false
	}
	return uint64(st.Dev) == termDev && uint64(st.Ino) == termIno
}

// onMainThread reports whether the calling OS thread is the process's
// initial thread. Interposing from a non-main thread is unsupported the
// same way the original restricts itself to it: the bootstrap channel is
// shared process-wide and round-tripping from arbitrary worker threads
// would need per-thread multiplexing the spec does not ask for.
func onMainThread() bool {
	return unix.Gettid() == syscall.Getpid()
}

// Dispatch is the common path behind every intercepted call: if
// interception isn't appropriate for this fd/thread, or the state is
// disabled, ok is false and the caller must invoke the real libc
// function instead.
func Dispatch(fd int, call proto.PtySlaveCall) (resp proto.PtySlaveResponse, ok bool) {
	st := slave.Current()
	if st.Disabled() {
		return proto.PtySlaveResponse{}, false
	}
	if !isTerminalFd(fd) {
		return proto.PtySlaveResponse{}, false
	}
	if !onMainThread() {
		return proto.PtySlaveResponse{}, false
	}

	if st.Config().Debug {
		log.Printf("rpty: intercept fd=%d call=%s", fd, call.Type)
	}

	data, err := proto.Marshal(call)
	if err != nil {
		return proto.PtySlaveResponse{}, false
	}
	respData, err := st.Channel().SendRequest(proto.ConvPTY, data)
	if err != nil {
		if st.Config().Debug {
			log.Printf("rpty: intercept fd=%d call=%s: %v; falling back to real libc", fd, call.Type, err)
		}
		return proto.PtySlaveResponse{}, false
	}
	var resp2 proto.PtySlaveResponse
	if err := proto.Unmarshal(respData, &resp2); err != nil {
		return proto.PtySlaveResponse{}, false
	}
	return resp2, true
}
