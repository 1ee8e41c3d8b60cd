package slave

import (
	"log"
	"net"
	"sync/atomic"

	"github.com/getgreenlight/remote-pty/internal/rchannel"
)

// State is the process-wide bootstrap state the cgo shim consults on
// every intercepted libc call. There is exactly one per process, built
// once at load time (§4.4).
type State struct {
	cfg      Config
	ch       *rchannel.Channel
	disabled int32
}

var global *State

// Bootstrap runs once per process, from the cgo shim's constructor. If
// anything in the sequence fails — the local socket set up by the runner
// can't be dialed — interception is disabled for the remainder of the
// process's life and every intercepted call falls back to the real libc
// function (§4.4, "disable on failure").
func Bootstrap() *State {
	if global != nil {
		return global
	}
	global = &State{}

	cfg, err := ParseConfig()
	if err != nil {
		log.Printf("rpty: bootstrap: %v; interception disabled", err)
		atomic.StoreInt32(&global.disabled, 1)
		return global
	}
	global.cfg = cfg

	conn, err := net.Dial("unix", cfg.LocalSock)
	if err != nil {
		log.Printf("rpty: bootstrap: dial %s: %v; interception disabled", cfg.LocalSock, err)
		atomic.StoreInt32(&global.disabled, 1)
		return global
	}
	global.ch = rchannel.New(conn)
	return global
}

// Current returns the bootstrapped state, running Bootstrap if this is
// the first call.
func Current() *State {
	if global == nil {
		return Bootstrap()
	}
	return global
}

// Reinit reconnects the local proxy socket after a fork. The child's copy
// of the parent's connection fd is still open but now shared with a
// process the runner never registered (§4.6's fork hook): the old
// connection is closed and a fresh one dialed so the child gets its own
// independent request/response stream rather than racing the parent over
// one fd.
func Reinit() {
	if global == nil || global.Disabled() {
		return
	}
	if global.ch != nil {
		_ = global.ch.Close()
	}
	conn, err := net.Dial("unix", global.cfg.LocalSock)
	if err != nil {
		log.Printf("rpty: reinit after fork: dial %s: %v; interception disabled", global.cfg.LocalSock, err)
		atomic.StoreInt32(&global.disabled, 1)
		return
	}
	global.ch = rchannel.New(conn)
}

// Disabled reports whether interception should be bypassed in favor of
// the real libc function.
func (s *State) Disabled() bool {
	return s == nil || atomic.LoadInt32(&s.disabled) != 0
}

// Channel returns the local proxy channel to the runner, or nil if
// disabled. PTY-conversation calls sent here are forwarded 1:1 to the
// master by the runner (internal/slave/runner.go).
func (s *State) Channel() *rchannel.Channel { return s.ch }

// Config returns the parsed bootstrap configuration.
func (s *State) Config() Config { return s.cfg }
