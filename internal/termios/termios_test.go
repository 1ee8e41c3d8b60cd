package termios

import (
	"testing"

	"github.com/getgreenlight/remote-pty/internal/proto"
)

// TestRoundTripZero exercises testable property 2 from §8: from_os_termios
// (to_os_termios(t)) = t for the zero-value attribute set.
func TestRoundTripZero(t *testing.T) {
	w := proto.TermiosWire{CC: map[proto.ControlChar]byte{}}
	raw := FromWire(w)
	got := ToWire(&raw)

	if len(got.IMode) != 0 || len(got.OMode) != 0 || len(got.CMode) != 0 || len(got.LMode) != 0 {
		t.Fatalf("expected no mode bits set from zero wire value, got %+v", got)
	}
}

func TestRoundTripPopulated(t *testing.T) {
	w := proto.TermiosWire{
		IMode:  []proto.InputMode{proto.ICRNL, proto.IXON},
		OMode:  []proto.OutputMode{proto.OPOST},
		CMode:  []proto.ControlMode{proto.CS8, proto.CREAD, proto.B9600},
		LMode:  []proto.LocalMode{proto.ISIG, proto.ICANON, proto.ECHO},
		CC:     map[proto.ControlChar]byte{proto.VMIN: 1, proto.VTIME: 0, proto.VINTR: 3},
		Ispeed: 9600,
		Ospeed: 9600,
	}

	raw := FromWire(w)
	got := ToWire(&raw)

	assertSameSet(t, "IMode", got.IMode, w.IMode)
	assertSameSet(t, "OMode", got.OMode, w.OMode)
	assertSameSet(t, "CMode", got.CMode, w.CMode)
	assertSameSet(t, "LMode", got.LMode, w.LMode)

	for name, b := range w.CC {
		if got.CC[name] != b {
			t.Errorf("control char %v: got %d, want %d", name, got.CC[name], b)
		}
	}
	if got.Ispeed != w.Ispeed || got.Ospeed != w.Ospeed {
		t.Errorf("speed mismatch: got %d/%d want %d/%d", got.Ispeed, got.Ospeed, w.Ispeed, w.Ospeed)
	}
}

func assertSameSet[E comparable](t *testing.T, field string, got, want []E) {
	t.Helper()
	if len(got) != len(want) {
		t.Errorf("%s: got %v, want %v", field, got, want)
		return
	}
	seen := make(map[E]bool, len(got))
	for _, e := range got {
		seen[e] = true
	}
	for _, e := range want {
		if !seen[e] {
			t.Errorf("%s: missing %v in %v", field, e, got)
		}
	}
}
