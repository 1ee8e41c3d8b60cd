//go:build linux

package termios

import (
	"golang.org/x/sys/unix"

	"github.com/getgreenlight/remote-pty/internal/proto"
)

var inputTable = bitTable[proto.InputMode]{pairs: []bitPair[proto.InputMode]{
	{proto.IGNBRK, unix.IGNBRK}, {proto.BRKINT, unix.BRKINT}, {proto.IGNPAR, unix.IGNPAR},
	{proto.PARMRK, unix.PARMRK}, {proto.INPCK, unix.INPCK}, {proto.ISTRIP, unix.ISTRIP},
	{proto.INLCR, unix.INLCR}, {proto.IGNCR, unix.IGNCR}, {proto.ICRNL, unix.ICRNL},
	{proto.IUCLC, unix.IUCLC}, {proto.IXON, unix.IXON}, {proto.IXANY, unix.IXANY},
	{proto.IXOFF, unix.IXOFF}, {proto.IMAXBEL, unix.IMAXBEL}, {proto.IUTF8, unix.IUTF8},
}}

var outputTable = bitTable[proto.OutputMode]{pairs: []bitPair[proto.OutputMode]{
	{proto.OPOST, unix.OPOST}, {proto.OLCUC, unix.OLCUC}, {proto.ONLCR, unix.ONLCR},
	{proto.OCRNL, unix.OCRNL}, {proto.ONOCR, unix.ONOCR}, {proto.ONLRET, unix.ONLRET},
	{proto.OFILL, unix.OFILL}, {proto.OFDEL, unix.OFDEL}, {proto.NLDLY, unix.NLDLY},
	{proto.CR0, unix.CR0}, {proto.CR1, unix.CR1}, {proto.CR2, unix.CR2}, {proto.CR3, unix.CR3},
	{proto.TAB0, unix.TAB0}, {proto.TAB1, unix.TAB1}, {proto.TAB2, unix.TAB2}, {proto.TAB3, unix.TAB3},
	{proto.BS0, unix.BS0}, {proto.BS1, unix.BS1}, {proto.VT0, unix.VT0}, {proto.VT1, unix.VT1},
	{proto.FF0, unix.FF0}, {proto.FF1, unix.FF1}, {proto.NL0, unix.NL0}, {proto.NL1, unix.NL1},
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
	{proto.B460800, unix.B460800}, {proto.B500000, unix.B500000}, {proto.B576000, unix.B576000},
	{proto.B921600, unix.B921600}, {proto.B1000000, unix.B1000000}, {proto.B1152000, unix.B1152000},
	{proto.B1500000, unix.B1500000}, {proto.B2000000, unix.B2000000}, {proto.B2500000, unix.B2500000},
	{proto.B3000000, unix.B3000000}, {proto.B3500000, unix.B3500000}, {proto.B4000000, unix.B4000000},
}}

var localTable = bitTable[proto.LocalMode]{pairs: []bitPair[proto.LocalMode]{
	{proto.ISIG, unix.ISIG}, {proto.ICANON, unix.ICANON}, {proto.XCASE, unix.XCASE},
	{proto.ECHO, unix.ECHO}, {proto.ECHOE, unix.ECHOE}, {proto.ECHOK, unix.ECHOK},
	{proto.ECHONL, unix.ECHONL}, {proto.ECHOCTL, unix.ECHOCTL}, {proto.ECHOPRT, unix.ECHOPRT},
	{proto.ECHOKE, unix.ECHOKE}, {proto.FLUSHO, unix.FLUSHO}, {proto.NOFLSH, unix.NOFLSH},
	{proto.TOSTOP, unix.TOSTOP}, {proto.PENDIN, unix.PENDIN}, {proto.IEXTEN, unix.IEXTEN},
}}

// ccIndex maps the portable control-char name to its index in the kernel's
// c_cc array. VDSUSP/VSTATUS have no Linux equivalent and are omitted.
var ccIndex = map[proto.ControlChar]int{
	proto.VDISCARD: unix.VDISCARD, proto.VEOF: unix.VEOF, proto.VEOL: unix.VEOL,
	proto.VEOL2: unix.VEOL2, proto.VERASE: unix.VERASE, proto.VINTR: unix.VINTR,
	proto.VKILL: unix.VKILL, proto.VLNEXT: unix.VLNEXT, proto.VMIN: unix.VMIN,
	proto.VQUIT: unix.VQUIT, proto.VREPRINT: unix.VREPRINT, proto.VSTART: unix.VSTART,
	proto.VSTOP: unix.VSTOP, proto.VSUSP: unix.VSUSP, proto.VSWTC: unix.VSWTC,
	proto.VTIME: unix.VTIME, proto.VWERASE: unix.VWERASE,
}

// ToWire converts a kernel termios structure into the portable wire form.
func ToWire(t *unix.Termios) proto.TermiosWire {
	cc := make(map[proto.ControlChar]byte, len(ccIndex))
	for name, idx := range ccIndex {
		cc[name] = t.Cc[idx]
	}
	w := toWire(uint32(t.Iflag), uint32(t.Oflag), uint32(t.Cflag), uint32(t.Lflag), cc, t.Ispeed, t.Ospeed)
	return w
}

// FromWire converts a portable wire attribute set into a kernel termios
// structure suitable for TCSETS.
func FromWire(w proto.TermiosWire) unix.Termios {
	iflag, oflag, cflag, lflag := fromWire(w)
	var t unix.Termios
	t.Iflag = uint32(iflag)
	t.Oflag = uint32(oflag)
	t.Cflag = uint32(cflag)
	t.Lflag = uint32(lflag)
	t.Ispeed = w.Ispeed
	t.Ospeed = w.Ospeed
	for name, idx := range ccIndex {
		if b, ok := w.CC[name]; ok {
			t.Cc[idx] = b
		}
	}
	return t
}

// Get reads the current terminal attributes of fd.
func Get(fd int) (proto.TermiosWire, error) {
	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return proto.TermiosWire{}, err
	}
	return ToWire(t), nil
}

// Set applies w to fd. req is the optional-actions value (TCSANOW,
// TCSADRAIN or TCSAFLUSH), issued as the matching TCSETS/TCSETSW/TCSETSF
// ioctl request.
func Set(fd int, req uint, w proto.TermiosWire) error {
	t := FromWire(w)
	ioctlReq := uint(unix.TCSETS)
	switch req {
	case unix.TCSADRAIN:
		ioctlReq = unix.TCSETSW
	case unix.TCSAFLUSH:
		ioctlReq = unix.TCSETSF
	}
	return unix.IoctlSetTermios(fd, ioctlReq, &t)
}
