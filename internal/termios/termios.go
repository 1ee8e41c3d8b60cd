// Package termios converts between the portable wire representation of
// terminal attributes (proto.TermiosWire) and the local OS's native termios
// structure, so the master and slave never need to agree on raw OS flag bit
// values (§3, §9 "Termios portability").
package termios

import "github.com/getgreenlight/remote-pty/internal/proto"

// bitTable pairs an abstract enumerator with its local OS bit value.
type bitTable[E comparable] struct {
	pairs []bitPair[E]
}

type bitPair[E comparable] struct {
	enum E
	bit  uint32
}

func (t bitTable[E]) toEnums(flags uint32) []E {
	var out []E
	for _, p := range t.pairs {
		if p.bit == 0 || flags&p.bit != p.bit {
			continue
		}
		// A multi-bit field value (CS8, B9600, TAB3, ...) also contains the
		// bits of smaller values of the same field; report only the widest.
		covered := false
		for _, q := range t.pairs {
			if q.bit != p.bit && q.bit&p.bit == p.bit && flags&q.bit == q.bit {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, p.enum)
		}
	}
	return out
}

func (t bitTable[E]) toBits(enums []E) uint32 {
	set := make(map[E]bool, len(enums))
	for _, e := range enums {
		set[e] = true
	}
	var flags uint32
	for _, p := range t.pairs {
		if set[p.enum] {
			flags |= p.bit
		}
	}
	return flags
}

// ToWire converts a local raw termios (decomposed into the four flag words
// and the control-char table) into the portable wire form.
func toWire(iflag, oflag, cflag, lflag uint32, cc map[proto.ControlChar]byte, ispeed, ospeed uint32) proto.TermiosWire {
	return proto.TermiosWire{
		IMode:  inputTable.toEnums(iflag),
		OMode:  outputTable.toEnums(oflag),
		CMode:  controlTable.toEnums(cflag),
		LMode:  localTable.toEnums(lflag),
		CC:     cc,
		Ispeed: ispeed,
		Ospeed: ospeed,
	}
}

// fromWire is the inverse of toWire, producing the four raw flag words.
func fromWire(w proto.TermiosWire) (iflag, oflag, cflag, lflag uint32) {
	iflag = inputTable.toBits(w.IMode)
	oflag = outputTable.toBits(w.OMode)
	cflag = controlTable.toBits(w.CMode)
	lflag = localTable.toBits(w.LMode)
	return
}
