// Package conn wires the frame codec (frame), stream state machine
// (streamcore), priority tree (prio), flow-control ledger (flowctl)
// and header-block assembler (assembler) together into one HTTP/2
// connection: a frame handler table for inbound frames, a writer API
// for outbound ones, and the blocking consumer API application code
// calls to drain headers and data.
package conn

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/h2core/stream2/assembler"
	"github.com/h2core/stream2/errcode"
	"github.com/h2core/stream2/flowctl"
	"github.com/h2core/stream2/frame"
	"github.com/h2core/stream2/hpack"
	"github.com/h2core/stream2/prio"
	"github.com/h2core/stream2/streamcore"
)

// Role distinguishes which side of the connection owns which parity
// of stream id (RFC 7540 §5.1.1): servers own even ids, clients odd.
type Role uint8

const (
	Server Role = iota
	Client
)

// Conn is one HTTP/2 connection. Exactly one Assembler, one priority
// Tree and one flow-control Ledger are shared across every stream the
// connection carries, since all three are connection-scoped
// collaborators (RFC 7540 §4.3, §5.3, §6.9).
type Conn struct {
	nc net.Conn
	br *bufio.Reader
	bw *bufio.Writer

	opts Options
	role Role
	codec hpack.Codec

	mu      sync.Mutex
	streams streamcore.Streams
	nextID  uint32

	tree   *prio.Tree
	ledger *flowctl.Ledger
	asm    *assembler.Assembler

	outFrames chan *frame.Header

	closeOnce sync.Once
	closed    chan struct{}
	lastErr   atomic.Value // error

	unackedPings int32
}

// New wraps nc as an HTTP/2 connection. Call Handshake before Serve.
func New(nc net.Conn, role Role, codec hpack.Codec, opts Options) *Conn {
	opts.defaults()

	firstID := uint32(2)
	if role == Client {
		firstID = 1
	}

	c := &Conn{
		nc:        nc,
		br:        bufio.NewReaderSize(nc, 4096),
		bw:        bufio.NewWriterSize(nc, int(opts.Limits.MaxFrameSize)),
		opts:      opts,
		role:      role,
		codec:     codec,
		nextID:    firstID,
		tree:      prio.New(),
		ledger:    flowctl.NewLedger(opts.Limits.InitialWindowSize, opts.Limits.InitialWindowSize),
		asm:       assembler.New(),
		outFrames: make(chan *frame.Header, 128),
		closed:    make(chan struct{}),
	}
	return c
}

// ErrConnClosed is returned by consumer-API calls made after the
// connection has finished shutting down.
var ErrConnClosed = errors.New("conn: connection closed")

func (c *Conn) logf(format string, args ...interface{}) {
	if c.opts.Debug {
		c.opts.Logger.Printf(format, args...)
	}
}

// Handshake writes the connection preface (client role only, per
// RFC 7540 §3.5) or reads and validates it (server role), then sends
// the initial SETTINGS frame.
func (c *Conn) Handshake() error {
	if c.role == Client {
		if _, err := c.bw.Write(clientPreface); err != nil {
			return err
		}
	} else {
		got := make([]byte, len(clientPreface))
		if _, err := io.ReadFull(c.br, got); err != nil {
			return err
		}
		if !bytes.Equal(got, clientPreface) {
			return connectionError(errcode.ProtocolError, "invalid connection preface")
		}
	}

	st := &frame.SettingsFrame{}
	st.Add(frame.SettingMaxConcurrentStreams, c.opts.Limits.MaxConcurrentStreams)
	st.Add(frame.SettingInitialWindowSize, c.opts.Limits.InitialWindowSize)
	st.Add(frame.SettingMaxFrameSize, c.opts.Limits.MaxFrameSize)
	st.Add(frame.SettingMaxHeaderListSize, c.opts.Limits.MaxHeaderListSize)

	h := frame.Acquire()
	h.SetBody(st)
	if _, err := h.WriteTo(c.bw); err != nil {
		frame.Release(h)
		return err
	}
	frame.Release(h)
	return c.bw.Flush()
}

var clientPreface = []byte("PRI * HTTP/2.0\r\n\r\nSM\r\n\r\n")

// Serve runs the connection's three cooperating goroutines — reader,
// writer, and pinger — supervised by an errgroup so that any one's
// failure tears down the other two. Serve blocks until the connection
// ends and returns the error that ended it; a GOAWAY from the peer
// ends it with the received *frame.GoAwayFrame as that error.
func (c *Conn) Serve(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	// readLoop blocks in a socket read and only checks ctx between
	// frames, so closing nc is what unblocks it once ctx is done.
	g.Go(func() error {
		<-ctx.Done()
		c.nc.Close()
		return nil
	})
	g.Go(func() error { return c.readLoop(ctx) })
	g.Go(func() error { return c.writeLoop(ctx) })
	if c.opts.PingInterval > 0 {
		g.Go(func() error { return c.pingLoop(ctx) })
	}

	err := g.Wait()
	c.shutdown(err)
	return err
}

func (c *Conn) shutdown(err error) {
	c.closeOnce.Do(func() {
		if err != nil {
			c.lastErr.Store(err)
		}
		close(c.closed)
		c.mu.Lock()
		c.streams.Each(func(s *streamcore.Stream) { s.CloseQueues() })
		c.mu.Unlock()
		c.nc.Close()
		if c.opts.OnDisconnect != nil {
			c.opts.OnDisconnect(c)
		}
	})
}

// Err returns the error that ended the connection, if any.
func (c *Conn) Err() error {
	if v := c.lastErr.Load(); v != nil {
		return v.(error)
	}
	return nil
}

// Done is closed once the connection has finished shutting down.
func (c *Conn) Done() <-chan struct{} { return c.closed }

// streamFor returns the existing Stream record for id, or creates one
// in the idle state if this is the first frame seen for it.
func (c *Conn) streamFor(id uint32) *streamcore.Stream {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.streams.Get(id)
	if s == nil {
		s = streamcore.NewStream(id)
		c.streams.Insert(s)
	}
	return s
}

// OpenStreamCount reports the number of live streams of either parity.
// Conn itself does not compare it against MaxConcurrentStreams.
func (c *Conn) OpenStreamCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.streams.Len()
}

// NextStreamID allocates and registers the next locally-initiated
// stream id (RFC 7540 §5.1.1: odd for clients, even for servers),
// returning the new Stream in the idle state.
func (c *Conn) NextStreamID() *streamcore.Stream {
	c.mu.Lock()
	id := c.nextID
	c.nextID += 2
	s := streamcore.NewStream(id)
	c.streams.Insert(s)
	c.mu.Unlock()
	return s
}

func (c *Conn) closeStream(s *streamcore.Stream) {
	c.mu.Lock()
	c.streams.Del(s.ID)
	c.mu.Unlock()
	c.tree.Remove(s.ID)
	c.ledger.Forget(s.ID)
	c.asm.Forget(s.ID)
}

// connectionError builds a GOAWAY-worthy failure.
func connectionError(code errcode.Code, msg string) error {
	return errcode.Connection(code, msg)
}

func streamError(code errcode.Code, msg string) error {
	return errcode.Stream(code, msg)
}
