package intercept

import (
	"os"
	"testing"

	"github.com/getgreenlight/remote-pty/internal/proto"
)

// TestIsTerminalFdRejectsUnrelatedFile covers boundary property 7: a
// regular file descriptor that is not fd 1's underlying file is never
// treated as the intercepted terminal.
func TestIsTerminalFdRejectsUnrelatedFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "not-a-tty")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	defer f.Close()

	if isTerminalFd(int(f.Fd())) {
		t.Fatalf("regular file fd %d reported as the terminal fd", f.Fd())
	}
}

// TestIsTerminalFdAcceptsFd1 covers the positive case: fd 1 itself always
// matches, since the cached reference identity is captured from fd 1.
func TestIsTerminalFdAcceptsFd1(t *testing.T) {
	if !isTerminalFd(1) {
		t.Fatalf("fd 1 not reported as the terminal fd")
	}
}

// TestDispatchFallsBackWhenDisabled covers the "no RPTY_LOCAL_SOCK in the
// environment" bootstrap-failure path: Dispatch must report ok=false so
// every caller falls back to the real libc function rather than hanging
// or erroring the wrapped process.
func TestDispatchFallsBackWhenDisabled(t *testing.T) {
	t.Setenv("RPTY_LOCAL_SOCK", "")
	_, ok := Dispatch(1, proto.PtySlaveCall{Type: proto.CallGetAttr})
	if ok {
		t.Fatalf("Dispatch reported ok=true with no local socket configured")
	}
}
