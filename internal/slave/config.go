// Package slave holds the pure-Go decision logic for the bootstrap and
// interception layer (C4, C5, C6). The cgo-exported functions in
// cshared/rptypreload call straight into this package so that the only
// code living behind `-buildmode=c-shared` is the ABI shim itself.
package slave

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config is parsed once at load time from the RPTY_* environment
// variables a wrapped process inherits, mirroring how the teacher's
// runConnect resolves GREENLIGHT_* configuration (flag > env > config
// file), simplified here to env-only since there is no interactive flag
// parsing for a process that is launched transparently under LD_PRELOAD.
type Config struct {
	// LocalSock is the filesystem path of a local unix socket that
	// cmd/rpty-slave's runner listens on before exec'ing the target
	// command (§4.4, §4.6). The preloaded shim dials this rather than the
	// real network transport: the runner is the single registered master
	// client and proxies every PTY-conversation call through 1:1, which is
	// what lets one real terminal-data connection (owned by the runner,
	// which also holds the child's stdio pipes) serve both the byte-level
	// relay and the control-plane calls the intercepted libc functions
	// make, without the master needing to reconcile two separate clients
	// sharing one process group.
	LocalSock string

	// StdoutFds is the set of fd numbers this process should intercept as
	// "the" controlling terminal's stdout for WriteStdout purposes (§4.5);
	// almost always just {1}, but a process that duplicates fd 1 onto
	// another descriptor before forking needs both listed.
	StdoutFds map[int]bool

	// Debug enables verbose logging of every intercepted call, for
	// diagnosing a misbehaving wrapped process.
	Debug bool
}

// ParseConfig reads RPTY_LOCAL_SOCK (required), RPTY_STDOUT (optional,
// comma-separated fd list, default "1"), and RPTY_DEBUG (optional, any
// non-empty value) from the environment.
func ParseConfig() (Config, error) {
	localSock := os.Getenv("RPTY_LOCAL_SOCK")
	if localSock == "" {
		return Config{}, fmt.Errorf("slave: RPTY_LOCAL_SOCK not set")
	}

	stdoutFds := map[int]bool{1: true}
	if v := os.Getenv("RPTY_STDOUT"); v != "" {
		stdoutFds = map[int]bool{}
		for _, s := range strings.Split(v, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil {
				return Config{}, fmt.Errorf("slave: bad RPTY_STDOUT fd %q: %w", s, err)
			}
			stdoutFds[n] = true
		}
	}

	return Config{
		LocalSock: localSock,
		StdoutFds: stdoutFds,
		Debug:     os.Getenv("RPTY_DEBUG") != "",
	}, nil
}
