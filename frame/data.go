package frame

import "github.com/h2core/stream2/wire"

// DataFrame carries application payload (RFC 7540 §6.1). Flags:
// END_STREAM (0x1), PADDED (0x8).
type DataFrame struct {
	endStream bool
	padded    bool
	b         []byte
}

func (d *DataFrame) Type() Type { return Data }

func (d *DataFrame) Reset() {
	d.endStream = false
	d.padded = false
	d.b = d.b[:0]
}

func (d *DataFrame) EndStream() bool        { return d.endStream }
func (d *DataFrame) SetEndStream(v bool)    { d.endStream = v }
func (d *DataFrame) Padded() bool           { return d.padded }
func (d *DataFrame) SetPadded(v bool)       { d.padded = v }
func (d *DataFrame) Payload() []byte        { return d.b }
func (d *DataFrame) SetPayload(b []byte)    { d.b = append(d.b[:0], b...) }
func (d *DataFrame) Len() int               { return len(d.b) }

// Deserialize strips padding (validating it is all-zero, RFC 7540
// §6.1) and records END_STREAM. A pad-length that consumes the whole
// payload (or more) is the DATA boundary case §4.6/§8 calls out and is
// surfaced as ErrInvalidPadding so the conn layer can raise
// PROTOCOL_ERROR.
func (d *DataFrame) Deserialize(h *Header) error {
	payload := h.payload

	if h.flags.Has(FlagPadded) {
		cut, ok := wire.CutPadding(payload)
		if !ok {
			return ErrInvalidPadding
		}
		payload = cut
	}

	d.endStream = h.flags.Has(FlagEndStream)
	d.padded = h.flags.Has(FlagPadded)
	d.b = append(d.b[:0], payload...)

	return nil
}

func (d *DataFrame) Serialize(h *Header) {
	if d.endStream {
		h.SetFlags(h.Flags().Add(FlagEndStream))
	}

	payload := d.b
	if d.padded {
		h.SetFlags(h.Flags().Add(FlagPadded))
		payload = wire.AddPadding(append([]byte(nil), d.b...))
	}

	h.setPayload(payload)
}
