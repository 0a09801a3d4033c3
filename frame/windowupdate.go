package frame

import "github.com/h2core/stream2/wire"

// WindowUpdateFrame credits flow-control window (RFC 7540 §6.9).
// Fixed 4-octet payload: a 31-bit increment, top bit reserved.
type WindowUpdateFrame struct {
	increment uint32
}

func (w *WindowUpdateFrame) Type() Type { return WindowUpdate }

func (w *WindowUpdateFrame) Reset() { w.increment = 0 }

func (w *WindowUpdateFrame) Increment() uint32    { return w.increment }
func (w *WindowUpdateFrame) SetIncrement(n uint32) { w.increment = n & wire.StreamIDMask }

func (w *WindowUpdateFrame) Deserialize(h *Header) error {
	if len(h.payload) != 4 {
		return ErrFrameSize
	}
	w.increment = wire.StreamID(h.payload)
	return nil
}

func (w *WindowUpdateFrame) Serialize(h *Header) {
	h.setPayload(wire.AppendUint32Bytes(h.payload[:0], w.increment))
}
