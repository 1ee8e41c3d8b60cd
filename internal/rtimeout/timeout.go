// Package rtimeout bounds a blocking call by a wall-clock deadline, without
// cancelling the underlying operation: the original remote-pty-common
// io/timeout.rs installs a process-wide SIGALRM handler and interrupts the
// calling thread with pthread_kill once a per-thread generation counter
// expires. The Go runtime does not expose anything resembling
// pthread_kill-into-a-blocking-syscall as a portable primitive, so Timeout
// here bounds ordinary (non-syscall) blocking Go code by racing the
// operation against a timer on a goroutine, which is the Go-idiomatic
// reading of the same contract: the caller gets back a result-or-timeout
// within the deadline, but — like the original, which only unblocks the
// *next* interruptible syscall rather than preempting uninterruptible
// work — a goroutine that never returns from op is leaked, not killed.
//
// On Linux, UnblockSyscall additionally offers the original's real
// mechanism for bounding a blocking syscall the calling goroutine itself is
// stuck in: deliver SIGURG to the OS thread. SIGURG is deliberately reused
// because the Go runtime already installs a SIGURG handler for
// asynchronous goroutine preemption and tolerates arbitrary extra
// deliveries of it, so this package installs no handler of its own and
// cannot break that mechanism the way replacing SIGALRM's sigaction would.
package rtimeout

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout is returned (wrapped) when the deadline elapses before op
// finishes.
var ErrTimeout = errors.New("rtimeout: deadline exceeded")

// Timeout runs op on its own goroutine and returns its result if it
// completes within d, or ErrTimeout otherwise. If op later completes after
// the deadline, its result is discarded.
func Timeout[T any](d time.Duration, op func() (T, error)) (result T, err error, timedOut bool) {
	type outcome struct {
		val T
		err error
	}
	done := make(chan outcome, 1)

	go func() {
		v, e := op()
		done <- outcome{v, e}
	}()

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case o := <-done:
		return o.val, o.err, false
	case <-timer.C:
		var zero T
		return zero, ErrTimeout, true
	}
}

// TimeoutCtx is like Timeout but lets op observe cancellation cooperatively
// via ctx, for operations that accept a context instead of being opaque
// closures.
func TimeoutCtx[T any](parent context.Context, d time.Duration, op func(ctx context.Context) (T, error)) (result T, err error, timedOut bool) {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()

	type outcome struct {
		val T
		err error
	}
	done := make(chan outcome, 1)

	go func() {
		v, e := op(ctx)
		done <- outcome{v, e}
	}()

	select {
	case o := <-done:
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && parent.Err() == nil {
			// op only returned because the deadline had already passed.
			var zero T
			return zero, ErrTimeout, true
		}
		return o.val, o.err, false
	case <-ctx.Done():
		var zero T
		return zero, ErrTimeout, true
	}
}
