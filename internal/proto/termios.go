package proto

// TermiosWire is the on-wire representation of terminal attributes. Per §3,
// the binary-compatible OS flag bits are deliberately never used on the
// wire — master and slave may be built against different C libraries whose
// flag bit values differ — so attributes travel as sets of abstract
// enumerators and a control-character name→byte map instead. Mirrors
// remote-pty-common/src/proto/structs.rs's Termios struct field for field.
type TermiosWire struct {
	IMode  []InputMode
	OMode  []OutputMode
	CMode  []ControlMode
	LMode  []LocalMode
	CC     map[ControlChar]byte
	Ispeed uint32
	Ospeed uint32
}

// InputMode enumerates c_iflag bits.
type InputMode uint8

const (
	IGNBRK InputMode = iota + 1
	BRKINT
	IGNPAR
	PARMRK
	INPCK
	ISTRIP
	INLCR
	IGNCR
	ICRNL
	IUCLC
	IXON
	IXANY
	IXOFF
	IMAXBEL
	IUTF8
)

// OutputMode enumerates c_oflag bits, including the decomposed delay
// variants (CRx/TABx/VTx/FFx/BSx) the original keeps distinct rather than as
// masked sub-ranges.
type OutputMode uint8

const (
	OPOST OutputMode = iota + 1
	OLCUC
	ONLCR
	OCRNL
	ONOCR
	ONLRET
	OFILL
	OFDEL
	NLDLY
	CR0
	CR1
	CR2
	CR3
	TAB0
	TAB1
	TAB2
	TAB3
	BS0
	BS1
	VT0
	VT1
	FF0
	FF1
	NL0
	NL1
)

// ControlMode enumerates c_cflag bits, including the full baud-rate
// enumeration (the original treats each rate as its own enumerator rather
// than an integer field, so master and slave need not agree on the numeric
// encoding of a given rate).
type ControlMode uint8

const (
	CSTOPB ControlMode = iota + 1
	CREAD
	PARENB
	PARODD
	HUPCL
	CLOCAL
	CS5
	CS6
	CS7
	CS8
	B0
	B50
	B75
	B110
	B134
	B150
	B200
	B300
	B600
	B1200
	B1800
	B2400
	B4800
	B9600
	B19200
	B38400
	B57600
	B115200
	B230400
	B460800
	B500000
	B576000
	B921600
	B1000000
	B1152000
	B1500000
	B2000000
	B2500000
	B3000000
	B3500000
	B4000000
)

// LocalMode enumerates c_lflag bits.
type LocalMode uint8

const (
	ISIG LocalMode = iota + 1
	ICANON
	XCASE
	ECHO
	ECHOE
	ECHOK
	ECHONL
	ECHOCTL
	ECHOPRT
	ECHOKE
	FLUSHO
	NOFLSH
	TOSTOP
	PENDIN
	IEXTEN
)

// ControlChar names an index into c_cc by abstract role rather than the
// platform-specific VXXXX integer, since the two endpoints' libc headers may
// disagree on those integers. VDSUSP/VSTATUS exist on BSD/Darwin only; the
// map simply omits them on platforms lacking the corresponding control char.
type ControlChar uint8

const (
	VDISCARD ControlChar = iota + 1
	VDSUSP
	VEOF
	VEOL
	VEOL2
	VERASE
	VINTR
	VKILL
	VLNEXT
	VMIN
	VQUIT
	VREPRINT
	VSTART
	VSTATUS
	VSTOP
	VSUSP
	VSWTC
	VTIME
	VWERASE
)

// WinSize mirrors the kernel's struct winsize on the wire.
type WinSize struct {
	Row    uint16
	Col    uint16
	Xpixel uint16
	Ypixel uint16
}
