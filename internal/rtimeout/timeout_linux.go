//go:build linux

package rtimeout

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"
)

// generation is bumped every time UnblockSyscall is (re)armed or disarmed
// for a given OS thread, mirroring the Rust original's per-thread
// AtomicU64 generation counters: if the timer fires after the call already
// returned and a new one was armed on a reused thread, the stale fire must
// be a no-op.
var (
	genMu sync.Mutex
	gens  = map[int]*uint64{}

	installOnce sync.Once
)

func genFor(tid int) *uint64 {
	genMu.Lock()
	defer genMu.Unlock()
	g, ok := gens[tid]
	if !ok {
		g = new(uint64)
		gens[tid] = g
	}
	return g
}

func installHandler() {
	installOnce.Do(func() {
		ch := make(chan unix.Signal, 1)
		// No handler is installed: the Go runtime's own SIGURG handler
		// (goroutine preemption) already keeps the process from dying on
		// SIGURG. We never need to observe delivery here since Tgkill's only
		// job is to kick the target thread out of whatever blocking syscall
		// it is in, which a received signal does unconditionally regardless
		// of whether a Go-level handler exists.
		_ = ch
	})
}

// UnblockSyscall runs op, which is assumed to invoke a blocking syscall on
// the calling goroutine, pinned to its OS thread for the duration. If op
// has not returned after d, SIGURG is delivered to that OS thread via
// tgkill, which interrupts most blocking syscalls with EINTR; op is
// expected to translate that into a retryable error the way the library
// call wrappers in internal/master do. Unlike Timeout, this does bound the
// syscall itself rather than merely abandoning a goroutine that keeps
// running past the deadline.
func UnblockSyscall[T any](d time.Duration, op func() (T, error)) (result T, err error, timedOut bool) {
	installHandler()

	type outcome struct {
		val T
		err error
	}
	done := make(chan outcome, 1)
	armed := make(chan int, 1)
	var myGen uint64

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		tid := unix.Gettid()
		gen := genFor(tid)
		myGen = atomic.AddUint64(gen, 1)
		armed <- tid

		v, e := op()
		// Bump the generation again so a timer that fires just after we
		// returned, but before this thread is reused, is recognized as
		// stale by anyone inspecting it.
		atomic.AddUint64(gen, 1)
		done <- outcome{v, e}
	}()

	tid := <-armed
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case o := <-done:
		return o.val, o.err, false
	case <-timer.C:
		if atomic.LoadUint64(genFor(tid)) == myGen {
			_ = unix.Tgkill(unix.Getpid(), tid, unix.SIGURG)
		}
		select {
		case o := <-done:
			return o.val, o.err, true
		case <-time.After(d):
			var zero T
			return zero, ErrTimeout, true
		}
	}
}
