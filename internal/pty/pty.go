// Package pty allocates and manages the master-side half of the PTY pair
// the rpty-master process drives locally on behalf of the remote slave
// (§4.9, component C9's "local echo" of the allocation logic the slave
// exercises against libc). Allocation itself is delegated to
// github.com/creack/pty, which already carries the grantpt/unlockpt/ptsname
// dance for every platform this module targets; the platform-specific files
// in this package cover the raw-mode and winsize ioctls that
// github.com/creack/pty does not wrap.
package pty

import (
	"fmt"
	"os"

	"github.com/creack/pty"
)

// Pair is an allocated PTY: Master is kept open by rpty-master; Slave
// stays open alongside it until Close.
type Pair struct {
	Master *os.File
	Slave  *os.File
}

// Open allocates a new PTY pair.
func Open() (*Pair, error) {
	m, s, err := pty.Open()
	if err != nil {
		return nil, fmt.Errorf("pty: open: %w", err)
	}
	return &Pair{Master: m, Slave: s}, nil
}

// Close closes both halves of the pair. Safe to call with either half
// already closed by the caller.
func (p *Pair) Close() error {
	var errs []error
	if p.Master != nil {
		if err := p.Master.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if p.Slave != nil {
		if err := p.Slave.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("pty: close: %v", errs)
	}
	return nil
}
