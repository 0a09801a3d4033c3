package frame

import "github.com/h2core/stream2/wire"

// PriorityFrame reprioritizes a stream (RFC 7540 §6.3). Payload is a
// fixed 5 octets: a 31-bit dependency stream id with an exclusive
// flag in the top bit, and a wire weight one below the actual weight
// (Weight() returns the actual weight, wire value + 1).
type PriorityFrame struct {
	stream    uint32
	exclusive bool
	weight    uint8
}

func (p *PriorityFrame) Type() Type { return Priority }

func (p *PriorityFrame) Reset() {
	p.stream = 0
	p.exclusive = false
	p.weight = 0
}

func (p *PriorityFrame) Stream() uint32    { return p.stream }
func (p *PriorityFrame) Exclusive() bool   { return p.exclusive }
func (p *PriorityFrame) Weight() int       { return int(p.weight) + 1 }

func (p *PriorityFrame) Set(stream uint32, exclusive bool, weight int) {
	p.stream = stream & wire.StreamIDMask
	p.exclusive = exclusive
	p.weight = uint8(weight - 1)
}

func (p *PriorityFrame) Deserialize(h *Header) error {
	if len(h.payload) != 5 {
		return ErrFrameSize
	}

	raw := wire.BytesToUint32(h.payload)
	p.exclusive = raw&0x80000000 != 0
	p.stream = raw & wire.StreamIDMask
	p.weight = h.payload[4]

	return nil
}

func (p *PriorityFrame) Serialize(h *Header) {
	dep := p.stream
	if p.exclusive {
		dep |= 0x80000000
	}

	buf := wire.AppendUint32Bytes(h.payload[:0], dep)
	buf = append(buf, p.weight)
	h.setPayload(buf)
}
