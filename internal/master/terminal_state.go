package master

import "math"

// unsetPgrp is the sentinel foreground process-group value meaning "no
// client currently holds the foreground slot" (§9 Open Question: the
// Rust sources disagree between a small placeholder and an unused-looking
// constant; this picks a value guaranteed to never collide with a real
// pid/pgrp, which on Linux is bounded well under 2^22 by default).
const unsetPgrp uint32 = math.MaxInt32

// terminalState tracks which process group currently owns the foreground
// slot of the single real PTY the master manages (§4.7, §4.8). There is
// exactly one real terminal regardless of how many clients are connected;
// at most one of them is foreground at a time.
type terminalState struct {
	fgPgrp uint32
}

func newTerminalState() *terminalState {
	return &terminalState{fgPgrp: unsetPgrp}
}

func (t *terminalState) isForeground(pgrp uint32) bool {
	return t.fgPgrp != unsetPgrp && t.fgPgrp == pgrp
}

func (t *terminalState) isSet() bool { return t.fgPgrp != unsetPgrp }

func (t *terminalState) set(pgrp uint32) { t.fgPgrp = pgrp }

func (t *terminalState) clear() { t.fgPgrp = unsetPgrp }
