package frame

import (
	"github.com/h2core/stream2/errcode"
	"github.com/h2core/stream2/wire"
)

// RstStreamFrame abruptly terminates a stream (RFC 7540 §6.4). Fixed
// 4-octet payload: a 32-bit error code.
type RstStreamFrame struct {
	code errcode.Code
}

func (r *RstStreamFrame) Type() Type { return RstStream }

func (r *RstStreamFrame) Reset() { r.code = 0 }

func (r *RstStreamFrame) Code() errcode.Code     { return r.code }
func (r *RstStreamFrame) SetCode(c errcode.Code) { r.code = c }

func (r *RstStreamFrame) Deserialize(h *Header) error {
	if len(h.payload) != 4 {
		return ErrFrameSize
	}
	r.code = errcode.FromWire(wire.BytesToUint32(h.payload))
	return nil
}

func (r *RstStreamFrame) Serialize(h *Header) {
	h.setPayload(wire.AppendUint32Bytes(h.payload[:0], uint32(r.code)))
}
