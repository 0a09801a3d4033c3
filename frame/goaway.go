package frame

import (
	"fmt"

	"github.com/h2core/stream2/errcode"
	"github.com/h2core/stream2/wire"
)

// GoAwayFrame initiates connection shutdown (RFC 7540 §6.8). Payload
// is at least 8 octets: last-stream-id (31 bits) then a 32-bit error
// code, followed by optional opaque debug data.
type GoAwayFrame struct {
	lastStreamID uint32
	code         errcode.Code
	debug        []byte
}

func (g *GoAwayFrame) Type() Type { return GoAway }

func (g *GoAwayFrame) Reset() {
	g.lastStreamID = 0
	g.code = 0
	g.debug = g.debug[:0]
}

func (g *GoAwayFrame) LastStreamID() uint32        { return g.lastStreamID }
func (g *GoAwayFrame) SetLastStreamID(id uint32)   { g.lastStreamID = id & wire.StreamIDMask }
func (g *GoAwayFrame) Code() errcode.Code          { return g.code }
func (g *GoAwayFrame) SetCode(c errcode.Code)      { g.code = c }
func (g *GoAwayFrame) Debug() []byte               { return g.debug }
func (g *GoAwayFrame) SetDebug(b []byte)           { g.debug = append(g.debug[:0], b...) }

func (g *GoAwayFrame) Error() string {
	return fmt.Sprintf("GOAWAY last_stream=%d code=%s debug=%q", g.lastStreamID, g.code, g.debug)
}

func (g *GoAwayFrame) Deserialize(h *Header) error {
	if len(h.payload) < 8 {
		return ErrMissingBytes
	}

	g.lastStreamID = wire.StreamID(h.payload)
	g.code = errcode.FromWire(wire.BytesToUint32(h.payload[4:]))
	if len(h.payload) > 8 {
		g.debug = append(g.debug[:0], h.payload[8:]...)
	}

	return nil
}

func (g *GoAwayFrame) Serialize(h *Header) {
	buf := wire.AppendUint32Bytes(h.payload[:0], g.lastStreamID)
	buf = wire.AppendUint32Bytes(buf, uint32(g.code))
	buf = append(buf, g.debug...)
	h.setPayload(buf)
}
