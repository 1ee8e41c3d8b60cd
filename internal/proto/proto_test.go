package proto

import (
	"testing"
)

// TestFrameRoundTrip exercises testable property 1 from §8: decode(encode(p)) = p,
// here at the frame level (conversation id, direction, raw payload bytes).
func TestFrameRoundTrip(t *testing.T) {
	pr, pw := NewFramedPipe()

	want := Frame{Conv: ConvPTY, Dir: DirRequest, Payload: []byte("hello")}
	if err := Encode(pw, want); err != nil {
		t.Fatalf("encode: %v", err)
	}

	got, err := Decode(pr)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Conv != want.Conv || got.Dir != want.Dir || string(got.Payload) != string(want.Payload) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestFrameRoundTripEmptyPayload(t *testing.T) {
	pr, pw := NewFramedPipe()

	want := Frame{Conv: ConvSIGNAL, Dir: DirResponse}
	if err := Encode(pw, want); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(pr)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Conv != want.Conv || got.Dir != want.Dir || len(got.Payload) != 0 {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestCallPayloadRoundTrip(t *testing.T) {
	call := PtySlaveCall{
		Type:            CallSetAttr,
		OptionalActions: 1,
		Attr: TermiosWire{
			IMode: []InputMode{ICRNL, IXON},
			CC:    map[ControlChar]byte{VMIN: 1},
		},
	}
	data, err := Marshal(call)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got PtySlaveCall
	if err := Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != call.Type || got.OptionalActions != call.OptionalActions {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, call)
	}
	if len(got.Attr.IMode) != len(call.Attr.IMode) {
		t.Fatalf("attr round trip mismatch: got %+v, want %+v", got.Attr, call.Attr)
	}
}
