package conn

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/valyala/fastrand"

	"github.com/h2core/stream2/errcode"
	"github.com/h2core/stream2/frame"
	"github.com/h2core/stream2/headerval"
	"github.com/h2core/stream2/streamcore"
)

// writeLoop is the connection's single outbound-frame goroutine;
// every Write* method below only ever enqueues onto outFrames, so
// serialization and flushing happen on this one goroutine.
func (c *Conn) writeLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case h, ok := <-c.outFrames:
			if !ok {
				return nil
			}
			_, err := h.WriteTo(c.bw)
			frame.Release(h)
			if err != nil {
				return err
			}
			if len(c.outFrames) == 0 {
				if err := c.bw.Flush(); err != nil {
					return err
				}
			}
		}
	}
}

func (c *Conn) pingLoop(ctx context.Context) error {
	t := time.NewTicker(c.opts.PingInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			var payload [8]byte
			binary.BigEndian.PutUint32(payload[:4], fastrand.Uint32())
			binary.BigEndian.PutUint32(payload[4:], fastrand.Uint32())
			c.WritePing(payload[:], false)
		}
	}
}

func (c *Conn) enqueue(h *frame.Header) {
	select {
	case c.outFrames <- h:
	case <-c.closed:
		frame.Release(h)
	}
}

func (c *Conn) enqueueGoAway(code errcode.Code, msg string) {
	c.WriteGoAway(0, code, []byte(msg))
}

func (c *Conn) enqueueRstStream(stream uint32, code errcode.Code) {
	c.WriteRstStream(stream, code)
}

func (c *Conn) enqueueSettingsAck() {
	h := frame.Acquire()
	sf := frame.New(frame.Settings).(*frame.SettingsFrame)
	sf.SetAck(true)
	h.SetBody(sf)
	c.enqueue(h)
}

func (c *Conn) enqueuePingAck(data []byte) {
	c.WritePing(data, true)
}

// WriteData sends a DATA frame. It blocks until both the stream's and
// the connection's send windows have enough credit, honoring
// RFC 7540 §6.9's charge-before-send rule.
//
// Charging happens against len(payload) before padding is added in
// Serialize; RFC 7540 §6.9.1 technically counts padding octets too,
// but since the pad length is chosen randomly at serialization time,
// charging the padding precisely would mean picking it here instead.
// The gap is at most 255 octets per padded frame and self-corrects on
// the next WINDOW_UPDATE, so it is left as an approximation rather
// than restructuring the frame layer around it.
func (c *Conn) WriteData(ctx context.Context, stream uint32, payload []byte, endStream bool, padded bool) error {
	select {
	case <-c.closed:
		return ErrConnClosed
	default:
	}

	send, _ := c.ledger.Stream(stream)
	connSend, _ := c.ledger.Conn()

	if !send.Charge(ctx, uint32(len(payload))) {
		return ctx.Err()
	}
	if !connSend.Charge(ctx, uint32(len(payload))) {
		return ctx.Err()
	}

	df := frame.New(frame.Data).(*frame.DataFrame)
	df.SetPayload(payload)
	df.SetEndStream(endStream)
	df.SetPadded(padded)

	h := frame.Acquire()
	h.SetStream(stream)
	h.SetBody(df)
	c.enqueue(h)

	if endStream {
		if s := c.streamFor(stream); s != nil {
			s.Apply(streamcore.SendDataEndStream)
		}
	}
	return nil
}

// WriteHeaders sends a HEADERS frame carrying an already HPACK-encoded
// block. endStream marks the request/response complete; the caller is
// responsible for splitting blocks larger than MaxFrameSize across
// CONTINUATION frames via WriteContinuation.
func (c *Conn) WriteHeaders(stream uint32, block []byte, endStream, endHeaders bool) {
	hf := frame.New(frame.Headers).(*frame.HeadersFrame)
	hf.SetHeaderBlock(block)
	hf.SetEndStream(endStream)
	hf.SetEndHeaders(endHeaders)

	h := frame.Acquire()
	h.SetStream(stream)
	h.SetBody(hf)
	c.enqueue(h)

	s := c.streamFor(stream)
	trigger := streamcore.SendHeaders
	if endStream {
		trigger = streamcore.SendHeadersEndStream
	}
	s.Apply(trigger)
}

// WriteContinuation sends a CONTINUATION fragment continuing the most
// recently opened HEADERS/PUSH_PROMISE block on stream.
func (c *Conn) WriteContinuation(stream uint32, block []byte, endHeaders bool) {
	cf := frame.New(frame.Continuation).(*frame.ContinuationFrame)
	cf.SetHeaderBlock(block)
	cf.SetEndHeaders(endHeaders)

	h := frame.Acquire()
	h.SetStream(stream)
	h.SetBody(cf)
	c.enqueue(h)
}

// WritePriority sends a PRIORITY frame and applies the same
// reprioritization locally, so the local tree and the peer's stay in
// sync (RFC 7540 §5.3).
func (c *Conn) WritePriority(stream, dependsOn uint32, exclusive bool, weight int) {
	pf := frame.New(frame.Priority).(*frame.PriorityFrame)
	pf.Set(dependsOn, exclusive, weight)

	h := frame.Acquire()
	h.SetStream(stream)
	h.SetBody(pf)
	c.enqueue(h)

	c.tree.Reprioritize(stream, dependsOn, exclusive, uint8(weight))
}

// WriteRstStream aborts stream with code, transitioning it to closed.
func (c *Conn) WriteRstStream(stream uint32, code errcode.Code) {
	rf := frame.New(frame.RstStream).(*frame.RstStreamFrame)
	rf.SetCode(code)

	h := frame.Acquire()
	h.SetStream(stream)
	h.SetBody(rf)
	c.enqueue(h)

	if s := c.streamFor(stream); s != nil {
		s.Reset(errcode.Stream(code, "RST_STREAM sent"))
		s.Apply(streamcore.SendRstStream)
		c.closeStream(s)
	}
}

// WriteSettings sends a non-ACK SETTINGS frame.
func (c *Conn) WriteSettings(settings ...frame.Setting) {
	sf := frame.New(frame.Settings).(*frame.SettingsFrame)
	for _, s := range settings {
		sf.Add(s.ID, s.Value)
	}

	h := frame.Acquire()
	h.SetBody(sf)
	c.enqueue(h)
}

// WritePushPromise announces a server-initiated stream.
func (c *Conn) WritePushPromise(stream, promisedStream uint32, block []byte, endHeaders bool) {
	pp := frame.New(frame.PushPromise).(*frame.PushPromiseFrame)
	pp.SetPromisedStream(promisedStream)
	pp.SetHeaderBlock(block)
	pp.SetEndHeaders(endHeaders)

	h := frame.Acquire()
	h.SetStream(stream)
	h.SetBody(pp)
	c.enqueue(h)

	if s := c.streamFor(promisedStream); s != nil {
		s.Apply(streamcore.ReserveLocal)
	}
}

// WritePing sends a PING frame, echoing data verbatim as RFC 7540
// §6.7 requires for ACK replies.
func (c *Conn) WritePing(data []byte, ack bool) {
	pf := frame.New(frame.Ping).(*frame.PingFrame)
	pf.SetData(data)
	pf.SetAck(ack)

	h := frame.Acquire()
	h.SetBody(pf)
	c.enqueue(h)
}

// WriteGoAway begins connection shutdown, reporting the last stream
// id the sender will process.
func (c *Conn) WriteGoAway(lastStreamID uint32, code errcode.Code, debug []byte) {
	gf := frame.New(frame.GoAway).(*frame.GoAwayFrame)
	gf.SetLastStreamID(lastStreamID)
	gf.SetCode(code)
	gf.SetDebug(debug)

	h := frame.Acquire()
	h.SetBody(gf)
	c.enqueue(h)
}

// WriteWindowUpdate credits stream's window from this side. Pass
// stream 0 for the connection-level window.
func (c *Conn) WriteWindowUpdate(stream uint32, increment uint32) {
	wf := frame.New(frame.WindowUpdate).(*frame.WindowUpdateFrame)
	wf.SetIncrement(increment)

	h := frame.Acquire()
	h.SetStream(stream)
	h.SetBody(wf)
	c.enqueue(h)
}

// GetHeaders blocks until the next header block for stream is
// available, ctx is done, or the stream closes (§4.8).
func (c *Conn) GetHeaders(ctx context.Context, stream uint32) (headerval.List, bool) {
	select {
	case <-c.closed:
		return nil, false
	default:
	}
	s := c.streamFor(stream)
	return s.PopHeaders(ctx)
}

// GetNextChunk blocks until the next DATA chunk for stream is
// available, ctx is done, or the stream closes (§4.8). The returned
// chunk's WireLen has already been charged against the stream's
// receive window by handleData; callers that only partially consume
// Payload should call Unget with the remainder.
func (c *Conn) GetNextChunk(ctx context.Context, stream uint32) (*streamcore.Chunk, bool) {
	select {
	case <-c.closed:
		return nil, false
	default:
	}
	s := c.streamFor(stream)
	chunk, ok := s.PopChunk(ctx)
	if !ok {
		return nil, false
	}

	if !chunk.Acked() {
		chunk.MarkAcked()
		_, recv := c.ledger.Stream(stream)
		_, connRecv := c.ledger.Conn()
		recv.Credit(chunk.WireLen)
		connRecv.Credit(chunk.WireLen)
		c.WriteWindowUpdate(stream, chunk.WireLen)
		c.WriteWindowUpdate(0, chunk.WireLen)
	}
	return chunk, true
}

// Unget returns an unconsumed remainder of a chunk to the front of
// stream's queue (§4.8). Its WireLen must already reflect only the
// unconsumed portion; the caller owns not crediting flow control
// twice for the same bytes.
func (c *Conn) Unget(stream uint32, chunk *streamcore.Chunk) {
	s := c.streamFor(stream)
	s.Unget(chunk)
}

// Shutdown sends GOAWAY, then waits until ctx is done or the
// connection has closed. It does not itself refuse streams the peer
// opens afterward, and does not close the connection.
func (c *Conn) Shutdown(ctx context.Context, code errcode.Code) {
	c.WriteGoAway(c.lastAssignedPeerStream(), code, nil)
	select {
	case <-ctx.Done():
	case <-c.closed:
	}
}

func (c *Conn) lastAssignedPeerStream() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	// Peer-initiated ids are odd when we are the server, even when we
	// are the client (RFC 7540 §5.1.1).
	peerParity := uint32(1)
	if c.role == Client {
		peerParity = 0
	}
	var last uint32
	c.streams.Each(func(s *streamcore.Stream) {
		if s.ID%2 == peerParity && s.ID > last {
			last = s.ID
		}
	})
	return last
}
