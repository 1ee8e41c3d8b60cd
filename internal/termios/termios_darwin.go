//go:build darwin

package termios

import (
	"golang.org/x/sys/unix"

	"github.com/getgreenlight/remote-pty/internal/proto"
)

// BSD/Darwin has no equivalent of several Linux-only enumerators (IUCLC,
// IUTF8, XCASE, OLCUC, the decomposed output delay bits, a handful of
// termios-local flags). They are simply never produced by ToWire and
// silently ignored by FromWire on this platform — consistent with the wire
// format being a *set* of enumerators rather than a fixed-width bitfield.

var inputTable = bitTable[proto.InputMode]{pairs: []bitPair[proto.InputMode]{
	{proto.IGNBRK, unix.IGNBRK}, {proto.BRKINT, unix.BRKINT}, {proto.IGNPAR, unix.IGNPAR},
	{proto.PARMRK, unix.PARMRK}, {proto.INPCK, unix.INPCK}, {proto.ISTRIP, unix.ISTRIP},
	{proto.INLCR, unix.INLCR}, {proto.IGNCR, unix.IGNCR}, {proto.ICRNL, unix.ICRNL},
	{proto.IXON, unix.IXON}, {proto.IXANY, unix.IXANY}, {proto.IXOFF, unix.IXOFF},
	{proto.IMAXBEL, unix.IMAXBEL},
}}

var outputTable = bitTable[proto.OutputMode]{pairs: []bitPair[proto.OutputMode]{
	{proto.OPOST, unix.OPOST}, {proto.ONLCR, unix.ONLCR}, {proto.OCRNL, unix.OCRNL},
	{proto.ONOCR, unix.ONOCR}, {proto.ONLRET, unix.ONLRET},
}}

var controlTable = bitTable[proto.ControlMode]{pairs: []bitPair[proto.ControlMode]{
	{proto.CSTOPB, unix.CSTOPB}, {proto.CREAD, unix.CREAD}, {proto.PARENB, unix.PARENB},
	{proto.PARODD, unix.PARODD}, {proto.HUPCL, unix.HUPCL}, {proto.CLOCAL, unix.CLOCAL},
	{proto.CS5, unix.CS5}, {proto.CS6, unix.CS6}, {proto.CS7, unix.CS7}, {proto.CS8, unix.CS8},
	{proto.B0, unix.B0}, {proto.B50, unix.B50}, {proto.B75, unix.B75}, {proto.B110, unix.B110},
	{proto.B134, unix.B134}, {proto.B150, unix.B150}, {proto.B200, unix.B200}, {proto.B300, unix.B300},
	{proto.B600, unix.B600}, {proto.B1200, unix.B1200}, {proto.B1800, unix.B1800}, {proto.B2400, unix.B2400},
	{proto.B4800, unix.B4800}, {proto.B9600, unix.B9600}, {proto.B19200, unix.B19200}, {proto.B38400, unix.B38400},
	{proto.B57600, unix.B57600}, {proto.B115200, unix.B115200}, {proto.B230400, unix.B230400},
}}

var localTable = bitTable[proto.LocalMode]{pairs: []bitPair[proto.LocalMode]{
	{proto.ISIG, unix.ISIG}, {proto.ICANON, unix.ICANON}, {proto.ECHO, unix.ECHO},
	{proto.ECHOE, unix.ECHOE}, {proto.ECHOK, unix.ECHOK}, {proto.ECHONL, unix.ECHONL},
	{proto.ECHOCTL, unix.ECHOCTL}, {proto.ECHOPRT, unix.ECHOPRT}, {proto.ECHOKE, unix.ECHOKE},
	{proto.FLUSHO, unix.FLUSHO}, {proto.NOFLSH, unix.NOFLSH}, {proto.TOSTOP, unix.TOSTOP},
	{proto.PENDIN, unix.PENDIN}, {proto.IEXTEN, unix.IEXTEN},
}}

// ccIndex maps portable control-char names to BSD's c_cc indices. VDSUSP and
// VSTATUS exist only on BSD/Darwin, unlike on Linux.
var ccIndex = map[proto.ControlChar]int{
	proto.VDISCARD: unix.VDISCARD, proto.VDSUSP: unix.VDSUSP, proto.VEOF: unix.VEOF,
	proto.VEOL: unix.VEOL, proto.VEOL2: unix.VEOL2, proto.VERASE: unix.VERASE,
	proto.VINTR: unix.VINTR, proto.VKILL: unix.VKILL, proto.VLNEXT: unix.VLNEXT,
	proto.VMIN: unix.VMIN, proto.VQUIT: unix.VQUIT, proto.VREPRINT: unix.VREPRINT,
	proto.VSTART: unix.VSTART, proto.VSTATUS: unix.VSTATUS, proto.VSTOP: unix.VSTOP,
	proto.VSUSP: unix.VSUSP, proto.VTIME: unix.VTIME, proto.VWERASE: unix.VWERASE,
}

func ToWire(t *unix.Termios) proto.TermiosWire {
	cc := make(map[proto.ControlChar]byte, len(ccIndex))
	for name, idx := range ccIndex {
		cc[name] = t.Cc[idx]
	}
	return toWire(uint32(t.Iflag), uint32(t.Oflag), uint32(t.Cflag), uint32(t.Lflag), cc, uint32(t.Ispeed), uint32(t.Ospeed))
}

func FromWire(w proto.TermiosWire) unix.Termios {
	iflag, oflag, cflag, lflag := fromWire(w)
	var t unix.Termios
	t.Iflag = uint64(iflag)
	t.Oflag = uint64(oflag)
	t.Cflag = uint64(cflag)
	t.Lflag = uint64(lflag)
	t.Ispeed = uint64(w.Ispeed)
	t.Ospeed = uint64(w.Ospeed)
	for name, idx := range ccIndex {
		if b, ok := w.CC[name]; ok {
			t.Cc[idx] = b
		}
	}
	return t
}

// Get reads the current terminal attributes of fd.
func Get(fd int) (proto.TermiosWire, error) {
	t, err := unix.IoctlGetTermios(fd, unix.TIOCGETA)
	if err != nil {
		return proto.TermiosWire{}, err
	}
	return ToWire(t), nil
}

// Set applies w to fd using the given optional-actions ioctl request
// (TIOCSETA/TIOCSETAW/TIOCSETAF).
func Set(fd int, req uint, w proto.TermiosWire) error {
	t := FromWire(w)
	return unix.IoctlSetTermios(fd, req, &t)
}
