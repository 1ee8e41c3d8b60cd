package proto

// PtySlaveCallType enumerates every terminal-control library call the slave
// can ask the master to service on the PTY conversation (WriteStdout is
// logically part of the same sum type per §3, but the channel routes it to
// the STDOUT conversation instead — see master.Server.pumpCalls).
type PtySlaveCallType uint8

const (
	CallGetAttr PtySlaveCallType = iota
	CallSetAttr
	CallDrain
	CallFlow
	CallFlush
	CallSendBreak
	CallIsatty
	CallGetSid
	CallGetWinsize
	CallSetWinsize
	CallIoctl
	CallGetPgrp
	CallSetPgrp
	CallWriteStdout
)

// MustBeForeground reports whether this call may only be serviced on behalf
// of the current foreground process group (§4.7, §4.8, §7). Calls that
// mutate terminal state, or that produce user-visible output, require
// foreground membership, and so does every CallIoctl, including the
// read-only FIONREAD/TIOCOUTQ/TIOCGETD subcommands; the other read-only
// calls do not.
func (t PtySlaveCallType) MustBeForeground() bool {
	switch t {
	case CallSetAttr, CallDrain, CallFlow, CallFlush, CallSendBreak,
		CallSetWinsize, CallSetPgrp, CallIoctl, CallWriteStdout:
		return true
	default:
		return false
	}
}

func (t PtySlaveCallType) String() string {
	switch t {
	case CallGetAttr:
		return "GetAttr"
	case CallSetAttr:
		return "SetAttr"
	case CallDrain:
		return "Drain"
	case CallFlow:
		return "Flow"
	case CallFlush:
		return "Flush"
	case CallSendBreak:
		return "SendBreak"
	case CallIsatty:
		return "Isatty"
	case CallGetSid:
		return "GetSid"
	case CallGetWinsize:
		return "GetWinsize"
	case CallSetWinsize:
		return "SetWinsize"
	case CallIoctl:
		return "Ioctl"
	case CallGetPgrp:
		return "GetPgrp"
	case CallSetPgrp:
		return "SetPgrp"
	case CallWriteStdout:
		return "WriteStdout"
	default:
		return "Unknown"
	}
}

// PtySlaveCall is the request payload for the PTY (and, for WriteStdout, the
// STDOUT) conversation. Only the fields relevant to Type are meaningful;
// this mirrors the tagged-union shape of PtySlaveCallType in the original
// while staying a single flat, gob-friendly struct.
type PtySlaveCall struct {
	Type PtySlaveCallType

	OptionalActions int32         // SetAttr: TCSANOW/TCSADRAIN/TCSAFLUSH
	Attr            TermiosWire   // SetAttr
	FlowAction      int32         // Flow: TCOOFF/TCOON/TCIOFF/TCION
	FlushSelector   int32         // Flush: TCIFLUSH/TCOFLUSH/TCIOFLUSH
	BreakDuration   int32         // SendBreak
	WinSize         WinSize       // SetWinsize
	IoctlCmd        uint32        // Ioctl
	IoctlArg        int32         // Ioctl (get/set-int subcommand value)
	Pgrp            uint32        // SetPgrp
	Data            []byte        // WriteStdout
}

// ErrCode is the five-value error taxonomy from §3 every failed terminal
// call collapses onto.
type ErrCode uint8

const (
	ErrNone ErrCode = iota
	EINVAL
	EBADF
	ENOTTY
	EINTR
	EIO
)

func (e ErrCode) String() string {
	switch e {
	case EINVAL:
		return "EINVAL"
	case EBADF:
		return "EBADF"
	case ENOTTY:
		return "ENOTTY"
	case EINTR:
		return "EINTR"
	case EIO:
		return "EIO"
	default:
		return "none"
	}
}

// PtySlaveResponseType tags which field of PtySlaveResponse is populated.
type PtySlaveResponseType uint8

const (
	RespSuccess PtySlaveResponseType = iota
	RespAttr
	RespWinSize
	RespInt
	RespPgrp
	RespError
)

// PtySlaveResponse is the response payload for a PtySlaveCall.
type PtySlaveResponse struct {
	Type    PtySlaveResponseType
	IntVal  int32
	Attr    TermiosWire
	WinSize WinSize
	Pgrp    uint32
	Err     ErrCode
}

// Success builds a RespInt response carrying the conventional
// integer return value of the underlying library call (usually 0).
func Success(n int32) PtySlaveResponse { return PtySlaveResponse{Type: RespInt, IntVal: n} }

// Error builds a RespError response.
func Error(e ErrCode) PtySlaveResponse { return PtySlaveResponse{Type: RespError, Err: e} }

// Signal is the set of job-control signals the master replays to the slave
// (§4.7 Signal watcher, §4.6 signal-replay thread).
type Signal uint8

const (
	SIGWINCH Signal = iota
	SIGINT
	SIGTERM
	SIGCONT
	SIGTTOU
	SIGTTIN
)

// PtyMasterCallType enumerates the master→slave requests (§4.7 event table).
type PtyMasterCallType uint8

const (
	CallWriteStdin PtyMasterCallType = iota
	CallSignal
)

// PtyMasterCall is the request payload for the STDIN and SIGNAL
// conversations (master is always the requester on these two).
type PtyMasterCall struct {
	Type   PtyMasterCallType
	Data   []byte // WriteStdin
	Signal Signal // Signal
	Pgrp   uint32 // Signal: target pgrp
}

// PtyMasterResponseType tags a PtyMasterCall reply.
type PtyMasterResponseType uint8

const (
	RespWriteSuccess PtyMasterResponseType = iota
	RespMasterSuccess
	RespMasterError
)

// PtyMasterResponse is the slave's reply to a PtyMasterCall.
type PtyMasterResponse struct {
	Type   PtyMasterResponseType
	IntVal int32
	ErrMsg string
}

// RegisterCallType enumerates the PGRP conversation's two request kinds.
type RegisterCallType uint8

const (
	CallRegisterProcess RegisterCallType = iota
	CallSetProcessGroup
)

// RegisterCall is the request payload for the PGRP conversation, sent by
// the slave at bootstrap (§4.4 step 3) and again whenever its process-group
// interposer succeeds locally (§4.6, "Process-group interposer").
type RegisterCall struct {
	Type RegisterCallType
	Pid  uint32
	Pgrp uint32
}

// RegisterResponse is the master's reply on the PGRP conversation.
type RegisterResponse struct {
	Success bool
	Err     ErrCode
}
