package frame

import "github.com/h2core/stream2/wire"

// HeadersFrame opens or continues a header block (RFC 7540 §6.2).
// Flags: END_STREAM (0x1), END_HEADERS (0x4), PADDED (0x8),
// PRIORITY (0x20).
type HeadersFrame struct {
	padded     bool
	endStream  bool
	endHeaders bool
	hasPriority bool
	depStream  uint32
	exclusive  bool
	weight     uint8 // wire value; actual weight is this + 1, as Dependency returns

	raw []byte // header block fragment, pre-HPACK
}

func (h *HeadersFrame) Type() Type { return Headers }

func (h *HeadersFrame) Reset() {
	h.padded = false
	h.endStream = false
	h.endHeaders = false
	h.hasPriority = false
	h.depStream = 0
	h.exclusive = false
	h.weight = 0
	h.raw = h.raw[:0]
}

func (h *HeadersFrame) EndStream() bool     { return h.endStream }
func (h *HeadersFrame) SetEndStream(v bool) { h.endStream = v }
func (h *HeadersFrame) EndHeaders() bool     { return h.endHeaders }
func (h *HeadersFrame) SetEndHeaders(v bool) { h.endHeaders = v }
func (h *HeadersFrame) Padded() bool         { return h.padded }
func (h *HeadersFrame) SetPadded(v bool)     { h.padded = v }
func (h *HeadersFrame) HasPriority() bool    { return h.hasPriority }

// Dependency returns the priority-block fields when HasPriority is
// true: the dependency stream id, the exclusive bit, and the *decoded*
// weight (wire value + 1, in [1,256]).
func (h *HeadersFrame) Dependency() (stream uint32, exclusive bool, weight int) {
	return h.depStream, h.exclusive, int(h.weight) + 1
}

func (h *HeadersFrame) SetDependency(stream uint32, exclusive bool, weight int) {
	h.hasPriority = true
	h.depStream = stream
	h.exclusive = exclusive
	h.weight = uint8(weight - 1)
}

// HeaderBlock returns the raw (pre-HPACK) fragment carried by this
// frame, excluding any priority block or padding.
func (h *HeadersFrame) HeaderBlock() []byte { return h.raw }
func (h *HeadersFrame) SetHeaderBlock(b []byte) {
	h.raw = append(h.raw[:0], b...)
}

func (h *HeadersFrame) Deserialize(fh *Header) error {
	payload := fh.payload

	if fh.flags.Has(FlagPadded) {
		cut, ok := wire.CutPadding(payload)
		if !ok {
			return ErrInvalidPadding
		}
		payload = cut
		h.padded = true
	}

	if fh.flags.Has(FlagPriority) {
		if len(payload) < 5 {
			return ErrMissingBytes
		}
		raw := wire.BytesToUint32(payload)
		h.exclusive = raw&0x80000000 != 0
		h.depStream = raw & wire.StreamIDMask
		h.weight = payload[4]
		h.hasPriority = true
		payload = payload[5:]
	}

	h.endStream = fh.flags.Has(FlagEndStream)
	h.endHeaders = fh.flags.Has(FlagEndHeaders)
	h.raw = append(h.raw[:0], payload...)

	return nil
}

func (h *HeadersFrame) Serialize(fh *Header) {
	if h.endStream {
		fh.SetFlags(fh.Flags().Add(FlagEndStream))
	}
	if h.endHeaders {
		fh.SetFlags(fh.Flags().Add(FlagEndHeaders))
	}

	payload := h.raw

	if h.hasPriority {
		fh.SetFlags(fh.Flags().Add(FlagPriority))
		dep := h.depStream
		if h.exclusive {
			dep |= 0x80000000
		}
		pre := wire.AppendUint32Bytes(make([]byte, 0, 5), dep)
		pre = append(pre, h.weight)
		payload = append(pre, payload...)
	}

	if h.padded {
		fh.SetFlags(fh.Flags().Add(FlagPadded))
		payload = wire.AddPadding(append([]byte(nil), payload...))
	}

	fh.setPayload(payload)
}
