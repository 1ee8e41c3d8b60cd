package pty

import (
	"testing"

	"github.com/getgreenlight/remote-pty/internal/proto"
)

func TestOpenAndWinsizeRoundTrip(t *testing.T) {
	p, err := Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	want := proto.WinSize{Row: 40, Col: 120, Xpixel: 0, Ypixel: 0}
	if err := SetWinsize(p.Slave.Fd(), want); err != nil {
		t.Fatalf("SetWinsize: %v", err)
	}
	got, err := GetWinsize(p.Slave.Fd())
	if err != nil {
		t.Fatalf("GetWinsize: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestSetRawRestore(t *testing.T) {
	p, err := Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	fd := int(p.Slave.Fd())
	state, err := SetRaw(fd)
	if err != nil {
		t.Fatalf("SetRaw: %v", err)
	}
	if err := state.Restore(); err != nil {
		t.Fatalf("Restore: %v", err)
	}
}
