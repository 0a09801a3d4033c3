package conn

import (
	"context"

	"github.com/h2core/stream2/errcode"
	"github.com/h2core/stream2/frame"
	"github.com/h2core/stream2/headerval"
	"github.com/h2core/stream2/streamcore"
)

// readLoop is the connection's single inbound-frame goroutine. Only
// one goroutine ever reads frames, so every handler below runs
// single-threaded with respect to every other handler — the
// "single-threaded cooperative" model of §5 — even though the
// consumer API is called from arbitrary application goroutines.
func (c *Conn) readLoop(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		h, err := frame.ReadFrom(c.br, c.opts.Limits.MaxFrameSize)
		if err != nil {
			switch err {
			case frame.ErrUnknownType:
				continue
			case frame.ErrFrameSizeExceeded:
				c.enqueueGoAway(errcode.FrameSizeError, "frame exceeds negotiated size")
				return err
			case frame.ErrInvalidPadding:
				c.enqueueGoAway(errcode.ProtocolError, "invalid padding")
				return err
			default:
				return err
			}
		}

		c.logf("recv %s stream=%d len=%d", h.Type(), h.Stream(), h.Len())

		derr := c.dispatch(h)
		frame.Release(h)
		if derr == nil {
			continue
		}

		cerr, ok := derr.(errcode.Error)
		if !ok {
			return derr
		}
		if cerr.Severity == errcode.SeverityConnection {
			c.enqueueGoAway(cerr.Code, cerr.Message)
			return cerr
		}
		c.enqueueRstStream(h.Stream(), cerr.Code)
	}
}

func (c *Conn) dispatch(h *frame.Header) error {
	switch h.Type() {
	case frame.Data:
		return c.handleData(h)
	case frame.Headers:
		return c.handleHeaders(h)
	case frame.Priority:
		return c.handlePriority(h)
	case frame.RstStream:
		return c.handleRstStream(h)
	case frame.Settings:
		return c.handleSettings(h)
	case frame.PushPromise:
		return c.handlePushPromise(h)
	case frame.Ping:
		return c.handlePing(h)
	case frame.GoAway:
		return c.handleGoAway(h)
	case frame.WindowUpdate:
		return c.handleWindowUpdate(h)
	case frame.Continuation:
		return c.handleContinuation(h)
	}
	return nil
}

func (c *Conn) handleData(h *frame.Header) error {
	s := c.streamFor(h.Stream())
	if s.State() == streamcore.Idle {
		return errcode.Connection(errcode.ProtocolError, "DATA on idle stream")
	}

	d := h.Body().(*frame.DataFrame)

	_, recv := c.ledger.Stream(h.Stream())
	_, connRecv := c.ledger.Conn()
	wireLen := uint32(h.Len())
	if recv.Available() < int64(wireLen) || !recv.Charge(context.Background(), wireLen) {
		return errcode.Stream(errcode.FlowControlError, "stream receive window exhausted")
	}
	connRecv.Charge(context.Background(), wireLen)

	s.Counters.BytesReceived += uint64(d.Len())
	s.Counters.FramesReceived++

	s.PushChunk(&streamcore.Chunk{Payload: append([]byte(nil), d.Payload()...), WireLen: wireLen, EndOfMsg: d.EndStream()})

	if d.EndStream() {
		if err := s.Apply(streamcore.RecvDataEndStream); err != nil {
			return errcode.Connection(errcode.ProtocolError, err.Error())
		}
		s.CloseQueues()
	}
	return nil
}

func (c *Conn) handleHeaders(h *frame.Header) error {
	s := c.streamFor(h.Stream())
	hf := h.Body().(*frame.HeadersFrame)

	switch s.State() {
	case streamcore.Idle:
		if err := s.Apply(streamcore.RecvHeaders); err != nil {
			return errcode.Connection(errcode.ProtocolError, err.Error())
		}
	case streamcore.Open, streamcore.HalfClosedLocal:
		// a second header block: only legal as a trailer with END_STREAM.
	default:
		return errcode.Connection(errcode.ProtocolError, "HEADERS on a finished stream")
	}

	if hf.HasPriority() {
		dep, excl, weight := hf.Dependency()
		if dep == h.Stream() {
			return errcode.Connection(errcode.ProtocolError, "stream depends on itself")
		}
		c.tree.Reprioritize(h.Stream(), dep, excl, uint8(weight))
	}

	if err := c.asm.Begin(h.Stream(), hf.HeaderBlock()); err != nil {
		return errcode.Connection(errcode.ProtocolError, err.Error())
	}

	if hf.EndHeaders() {
		return c.finishHeaderBlock(s, hf.EndStream())
	}
	if hf.EndStream() {
		// CONTINUATION has no END_STREAM flag of its own, so the
		// transition is applied now and handleContinuation reads it
		// back from the stream's state.
		if err := s.Apply(streamcore.RecvHeadersEndStream); err != nil {
			return errcode.Connection(errcode.ProtocolError, err.Error())
		}
	}
	return nil
}

func (c *Conn) handleContinuation(h *frame.Header) error {
	stream, active := c.asm.Active()
	if !active || stream != h.Stream() {
		return errcode.Connection(errcode.ProtocolError, "CONTINUATION without matching HEADERS")
	}

	cf := h.Body().(*frame.ContinuationFrame)
	if err := c.asm.Append(cf.HeaderBlock()); err != nil {
		return errcode.Connection(errcode.ProtocolError, err.Error())
	}

	if !cf.EndHeaders() {
		return nil
	}

	s := c.streamFor(h.Stream())
	// END_STREAM, if any, was carried on the original HEADERS frame;
	// the assembler doesn't see it. handleHeaders already applied
	// RecvHeadersEndStream for it, so it shows up here as the stream
	// being half-closed(remote) or closed.
	return c.finishHeaderBlock(s, s.State() == streamcore.HalfClosedRemote || s.State() == streamcore.Closed)
}

func (c *Conn) finishHeaderBlock(s *streamcore.Stream, endStream bool) error {
	block, err := c.asm.Finish()
	if err != nil {
		return errcode.Connection(errcode.ProtocolError, err.Error())
	}

	isFirst := c.asm.BlockCount(s.ID) == 1
	if c.asm.BlockCount(s.ID) > 2 {
		return errcode.Connection(errcode.ProtocolError, "more than two header blocks on one stream")
	}

	fields, err := c.codec.DecodeHeaders(block)
	if err != nil {
		return errcode.Connection(errcode.CompressionError, err.Error())
	}

	kind := headerval.Request
	if c.role == Client {
		kind = headerval.Response
	}
	if !isFirst {
		kind = headerval.Trailer
	}

	if err := headerval.Validate(fields, kind, isFirst, endStream); err != nil {
		return err
	}

	s.PushHeaders(fields)

	if endStream {
		if st := s.State(); st != streamcore.Closed && st != streamcore.HalfClosedRemote {
			trigger := streamcore.RecvHeadersEndStream
			if err := s.Apply(trigger); err != nil {
				return errcode.Connection(errcode.ProtocolError, err.Error())
			}
		}
		s.CloseQueues()
	}
	return nil
}

func (c *Conn) handlePriority(h *frame.Header) error {
	p := h.Body().(*frame.PriorityFrame)
	if p.Stream() == h.Stream() {
		return errcode.Stream(errcode.ProtocolError, "stream depends on itself")
	}
	c.tree.Reprioritize(h.Stream(), p.Stream(), p.Exclusive(), uint8(p.Weight()))
	return nil
}

func (c *Conn) handleRstStream(h *frame.Header) error {
	s := c.streamFor(h.Stream())
	if s.State() == streamcore.Idle {
		return errcode.Connection(errcode.ProtocolError, "RST_STREAM on idle stream")
	}
	r := h.Body().(*frame.RstStreamFrame)
	s.Reset(errcode.Stream(r.Code(), "RST_STREAM from peer"))
	c.closeStream(s)
	return nil
}

func (c *Conn) handleSettings(h *frame.Header) error {
	sf := h.Body().(*frame.SettingsFrame)
	if sf.IsAck() {
		return nil
	}
	for _, st := range sf.Settings() {
		switch st.ID {
		case frame.SettingInitialWindowSize:
			if st.Value > flowctlMaxWindow {
				return errcode.Connection(errcode.FlowControlError, "initial window size exceeds maximum")
			}
			c.ledger.ShiftInitialSend(st.Value)
		case frame.SettingMaxFrameSize:
			if st.Value < frame.DefaultMaxFrameSize || st.Value > 1<<24-1 {
				return errcode.Connection(errcode.ProtocolError, "invalid max frame size")
			}
			c.opts.Limits.MaxFrameSize = st.Value
		case frame.SettingHeaderTableSize:
			c.codec.SetMaxDynamicTableSize(st.Value)
		case frame.SettingMaxHeaderListSize:
			c.opts.Limits.MaxHeaderListSize = st.Value
		}
	}
	c.enqueueSettingsAck()
	return nil
}

const flowctlMaxWindow = 1<<31 - 1

func (c *Conn) handlePushPromise(h *frame.Header) error {
	pp := h.Body().(*frame.PushPromiseFrame)
	pushed := c.streamFor(pp.PromisedStream())
	if err := pushed.Apply(streamcore.ReserveRemote); err != nil {
		return errcode.Connection(errcode.ProtocolError, err.Error())
	}

	if err := c.asm.Begin(pp.PromisedStream(), pp.HeaderBlock()); err != nil {
		return errcode.Connection(errcode.ProtocolError, err.Error())
	}
	if pp.EndHeaders() {
		return c.finishHeaderBlock(pushed, false)
	}
	return nil
}

func (c *Conn) handlePing(h *frame.Header) error {
	p := h.Body().(*frame.PingFrame)
	if p.IsAck() {
		return nil
	}
	c.enqueuePingAck(p.Data())
	return nil
}

func (c *Conn) handleGoAway(h *frame.Header) error {
	g := h.Body().(*frame.GoAwayFrame)
	c.logf("peer GOAWAY last_stream=%d code=%s", g.LastStreamID(), g.Code())
	return g
}

func (c *Conn) handleWindowUpdate(h *frame.Header) error {
	wu := h.Body().(*frame.WindowUpdateFrame)
	if wu.Increment() == 0 {
		if h.Stream() == 0 {
			return errcode.Connection(errcode.ProtocolError, "window increment of 0")
		}
		return errcode.Stream(errcode.ProtocolError, "window increment of 0")
	}

	if h.Stream() == 0 {
		send, _ := c.ledger.Conn()
		if err := send.Credit(wu.Increment()); err != nil {
			return errcode.Connection(errcode.FlowControlError, "connection window overflow")
		}
		return nil
	}

	s := c.streamFor(h.Stream())
	if s.State() == streamcore.Idle {
		return errcode.Connection(errcode.ProtocolError, "window update on idle stream")
	}
	send, _ := c.ledger.Stream(h.Stream())
	if err := send.Credit(wu.Increment()); err != nil {
		return errcode.Stream(errcode.FlowControlError, "stream window overflow")
	}
	return nil
}
