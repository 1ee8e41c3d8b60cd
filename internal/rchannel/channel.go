// Package rchannel implements the multiplexed duplex RPC channel (C2): a
// single byte stream carrying interleaved request/response frames for five
// independent conversations, shared by many concurrent goroutines on each
// endpoint. This is, per §4.2, "the hardest invariant in the repo" — ported
// directly from remote-pty-common/src/channel/mod.rs's RemoteChannel.
package rchannel

import (
	"errors"
	"io"
	"sync"

	"github.com/getgreenlight/remote-pty/internal/proto"
)

// ErrClosed is returned to any caller blocked on the channel once a read or
// write error has torn it down.
var ErrClosed = errors.New("rchannel: channel closed")

// Channel is the shared handle described in §3's "Channel state". Frames
// read off the wire that do not belong to the calling goroutine are parked
// in a pending queue and every other waiter is woken to rescan it.
type Channel struct {
	fr io.Reader // framed reader half (proto.NewFramedReader wrapped)
	fw io.Writer // framed writer half (proto.NewFramedWriter wrapped)

	readerMu sync.Mutex
	writerMu sync.Mutex

	mu      sync.Mutex
	cond    *sync.Cond
	pending []proto.Frame
	closed  bool
	closeEr error

	closeOnce sync.Once
	closer    io.Closer
}

// New wraps a raw duplex transport (e.g. a net.Conn) in the framing and
// multiplexing machinery. If conn also implements io.Closer, Close will
// close it.
func New(conn io.ReadWriter) *Channel {
	c := &Channel{
		fr: proto.NewFramedReader(conn),
		fw: proto.NewFramedWriter(conn),
	}
	c.cond = sync.NewCond(&c.mu)
	if closer, ok := conn.(io.Closer); ok {
		c.closer = closer
	}
	return c
}

// Clone returns a handle sharing this channel's queue and locks. Because
// Channel is always used through a pointer and carries no per-owner state,
// cloning is simply sharing the pointer — the Rust original needs an
// explicit Arc-clone; Go's garbage-collected shared pointer already gives
// every caller the same view for free.
func (c *Channel) Clone() *Channel { return c }

// SendRequest writes a request frame on conv and blocks until the matching
// response frame arrives, per §4.2.
func (c *Channel) SendRequest(conv proto.Conversation, payload []byte) ([]byte, error) {
	if err := c.writeFrame(proto.Frame{Conv: conv, Dir: proto.DirRequest, Payload: payload}); err != nil {
		return nil, err
	}
	return c.waitFor(conv, proto.DirResponse)
}

// SendResponse writes a response frame on conv.
func (c *Channel) SendResponse(conv proto.Conversation, payload []byte) error {
	return c.writeFrame(proto.Frame{Conv: conv, Dir: proto.DirResponse, Payload: payload})
}

// Reply is returned by ReceiveRequest; calling it sends the response frame
// for the request that was received.
type Reply func(payload []byte) error

// ReceiveRequest blocks until a request frame arrives on conv, then returns
// its payload and a function to send the paired response. Reply writes
// through the same writer mutex as every other frame, but no lock is held
// between ReceiveRequest returning and Reply being called, so a concurrent
// SendResponse on conv from another goroutine is not excluded.
func (c *Channel) ReceiveRequest(conv proto.Conversation) ([]byte, Reply, error) {
	payload, err := c.waitFor(conv, proto.DirRequest)
	if err != nil {
		return nil, nil, err
	}
	reply := func(resp []byte) error {
		return c.SendResponse(conv, resp)
	}
	return payload, reply, nil
}

// waitFor blocks until a frame matching (conv, dir) is available, either
// because it is already in the pending queue or because this goroutine (or
// another) reads it off the wire. This is the concurrency contract from
// §4.2: at most one goroutine reads the transport at a time; any frame read
// that isn't the reader's own is enqueued and every waiter is woken to
// rescan.
func (c *Channel) waitFor(conv proto.Conversation, dir proto.Direction) ([]byte, error) {
	c.mu.Lock()
	for {
		if i, ok := c.findPending(conv, dir); ok {
			payload := c.pending[i].Payload
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			c.mu.Unlock()
			return payload, nil
		}

		if c.closed {
			err := c.closeEr
			c.mu.Unlock()
			return nil, err
		}

		if !c.readerMu.TryLock() {
			// Someone else is reading; park until woken by whoever finishes.
			c.cond.Wait()
			continue
		}

		// We now own the reader mutex; release the queue lock while we
		// perform the (possibly blocking) physical read.
		c.mu.Unlock()
		frame, err := proto.Decode(c.fr)
		c.readerMu.Unlock()

		c.mu.Lock()
		if err != nil {
			c.closed = true
			c.closeEr = closeErrOf(err)
			c.cond.Broadcast()
			c.mu.Unlock()
			return nil, c.closeEr
		}

		if frame.Conv == conv && frame.Dir == dir {
			// Wake parked waiters so one of them can take over as reader.
			c.cond.Broadcast()
			c.mu.Unlock()
			return frame.Payload, nil
		}

		c.pending = append(c.pending, frame)
		c.cond.Broadcast()
		// loop and rescan; still holding c.mu
	}
}

func (c *Channel) findPending(conv proto.Conversation, dir proto.Direction) (int, bool) {
	for i, f := range c.pending {
		if f.Conv == conv && f.Dir == dir {
			return i, true
		}
	}
	return -1, false
}

func (c *Channel) writeFrame(f proto.Frame) error {
	c.writerMu.Lock()
	defer c.writerMu.Unlock()

	c.mu.Lock()
	if c.closed {
		err := c.closeEr
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	if err := proto.Encode(c.fw, f); err != nil {
		c.mu.Lock()
		c.closed = true
		c.closeEr = closeErrOf(err)
		c.cond.Broadcast()
		c.mu.Unlock()
		return c.closeEr
	}
	return nil
}

func closeErrOf(err error) error {
	if errors.Is(err, io.EOF) {
		return ErrClosed
	}
	return err
}

// Close tears the channel down and wakes every blocked waiter with
// ErrClosed (or the underlying transport's own close error, if closing
// fails).
func (c *Channel) Close() error {
	var closeErr error
	c.closeOnce.Do(func() {
		if c.closer != nil {
			closeErr = c.closer.Close()
		}
		c.mu.Lock()
		c.closed = true
		if c.closeEr == nil {
			c.closeEr = ErrClosed
		}
		c.cond.Broadcast()
		c.mu.Unlock()
	})
	return closeErr
}
