// Package proto implements the wire frame codec (C1) and the request/response
// payload types shared by the master and the slave.
package proto

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io"

	"code.hybscloud.com/framer"
)

// Conversation identifies one of the independent RPC streams multiplexed onto
// a single transport connection. Both endpoints must agree on these values.
type Conversation uint8

const (
	ConvPTY    Conversation = 0
	ConvSTDIN  Conversation = 1
	ConvSTDOUT Conversation = 2
	ConvSIGNAL Conversation = 3
	ConvPGRP   Conversation = 4
)

func (c Conversation) String() string {
	switch c {
	case ConvPTY:
		return "PTY"
	case ConvSTDIN:
		return "STDIN"
	case ConvSTDOUT:
		return "STDOUT"
	case ConvSIGNAL:
		return "SIGNAL"
	case ConvPGRP:
		return "PGRP"
	default:
		return fmt.Sprintf("Conversation(%d)", uint8(c))
	}
}

// Direction tags a frame as carrying a request or a response.
type Direction uint8

const (
	DirRequest  Direction = 0
	DirResponse Direction = 1
)

func (d Direction) String() string {
	if d == DirRequest {
		return "Request"
	}
	return "Response"
}

// Frame is the unit exchanged over the transport: a conversation id, a
// direction tag, and an opaque, conversation-defined payload.
type Frame struct {
	Conv    Conversation
	Dir     Direction
	Payload []byte
}

// ErrMalformed is returned by Decode when a frame's length prefix or header
// cannot be parsed. It is always a fatal, transport-ending error.
var ErrMalformed = errors.New("proto: malformed frame")

// maxFrameSize bounds a single decoded frame. Generous: the largest payload
// on this wire is a WriteStdout/WriteStdin chunk, itself capped well below this.
const maxFrameSize = 1 << 20

// Encode writes one frame to fw as a single self-delimiting message. fw must
// be a framer.Writer (or anything built on one) so that exactly one Write
// call corresponds to exactly one frame on the wire.
func Encode(fw io.Writer, f Frame) error {
	buf := make([]byte, 2+len(f.Payload))
	buf[0] = byte(f.Conv)
	buf[1] = byte(f.Dir)
	copy(buf[2:], f.Payload)
	n, err := fw.Write(buf)
	if err != nil {
		return err
	}
	if n != len(buf) {
		return fmt.Errorf("proto: short write encoding frame (%d of %d bytes)", n, len(buf))
	}
	return nil
}

// Decode reads exactly one frame from fr, which must be a framer.Reader (or
// anything built on one) so a single Read call yields one complete message.
func Decode(fr io.Reader) (Frame, error) {
	buf := make([]byte, maxFrameSize)
	n, err := fr.Read(buf)
	if err != nil {
		return Frame{}, err
	}
	if n < 2 {
		return Frame{}, ErrMalformed
	}
	payload := make([]byte, n-2)
	copy(payload, buf[2:n])
	return Frame{Conv: Conversation(buf[0]), Dir: Direction(buf[1]), Payload: payload}, nil
}

// NewFramedReader wraps a raw transport (e.g. a unix or tcp net.Conn) with
// the length-prefixed self-delimiting message framing that Encode/Decode
// depend on. See code.hybscloud.com/framer for the wire format: 0-253 single
// byte length, 254-65535 two-byte extended, up to 2^56-1 seven-byte extended.
func NewFramedReader(r io.Reader) io.Reader { return framer.NewReader(r) }

// NewFramedWriter is the writer half of NewFramedReader.
func NewFramedWriter(w io.Writer) io.Writer { return framer.NewWriter(w) }

// NewFramedPipe returns an in-memory framed reader/writer pair backed by a
// single buffer, for tests that don't need a real transport.
func NewFramedPipe() (io.Reader, io.Writer) {
	buf := new(bytes.Buffer)
	return framer.NewReader(buf), framer.NewWriter(buf)
}

// Marshal encodes a payload value using the stable binary encoding shared by
// both endpoints. A hand-rolled wire schema for every payload type would
// duplicate gob's job for no benefit here: there is no code-generation
// toolchain available to drive a schema-based codec (e.g. protobuf) without
// running `protoc`, and the wire format only needs to be stable within one
// build of this module, not across independently-versioned peers. gob is the
// standard library's self-describing binary codec and satisfies the
// self-describing-length requirement in §3 directly.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("proto: marshal: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a payload previously produced by Marshal.
func Unmarshal(data []byte, v any) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
		return fmt.Errorf("proto: unmarshal: %w", err)
	}
	return nil
}
