package frame

import "github.com/h2core/stream2/wire"

// PushPromiseFrame announces a server-initiated stream (RFC 7540
// §6.6). Flags: END_HEADERS (0x4), PADDED (0x8).
type PushPromiseFrame struct {
	padded       bool
	endHeaders   bool
	promisedID   uint32
	raw          []byte
}

func (pp *PushPromiseFrame) Type() Type { return PushPromise }

func (pp *PushPromiseFrame) Reset() {
	pp.padded = false
	pp.endHeaders = false
	pp.promisedID = 0
	pp.raw = pp.raw[:0]
}

func (pp *PushPromiseFrame) PromisedStream() uint32     { return pp.promisedID }
func (pp *PushPromiseFrame) SetPromisedStream(id uint32) { pp.promisedID = id & wire.StreamIDMask }
func (pp *PushPromiseFrame) EndHeaders() bool            { return pp.endHeaders }
func (pp *PushPromiseFrame) SetEndHeaders(v bool)        { pp.endHeaders = v }
func (pp *PushPromiseFrame) Padded() bool                { return pp.padded }
func (pp *PushPromiseFrame) SetPadded(v bool)            { pp.padded = v }
func (pp *PushPromiseFrame) HeaderBlock() []byte         { return pp.raw }
func (pp *PushPromiseFrame) SetHeaderBlock(b []byte)     { pp.raw = append(pp.raw[:0], b...) }

func (pp *PushPromiseFrame) Deserialize(h *Header) error {
	payload := h.payload

	if h.flags.Has(FlagPadded) {
		cut, ok := wire.CutPadding(payload)
		if !ok {
			return ErrInvalidPadding
		}
		payload = cut
		pp.padded = true
	}

	if len(payload) < 4 {
		return ErrMissingBytes
	}

	pp.promisedID = wire.StreamID(payload)
	pp.endHeaders = h.flags.Has(FlagEndHeaders)
	pp.raw = append(pp.raw[:0], payload[4:]...)

	return nil
}

func (pp *PushPromiseFrame) Serialize(h *Header) {
	if pp.endHeaders {
		h.SetFlags(h.Flags().Add(FlagEndHeaders))
	}

	payload := wire.AppendUint32Bytes(make([]byte, 0, 4+len(pp.raw)), pp.promisedID)
	payload = append(payload, pp.raw...)

	if pp.padded {
		h.SetFlags(h.Flags().Add(FlagPadded))
		payload = wire.AddPadding(payload)
	}

	h.setPayload(payload)
}
