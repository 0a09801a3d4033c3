package frame

// PingFrame measures round-trip time and verifies liveness (RFC 7540
// §6.7). Fixed 8-octet opaque payload. Flag: ACK (0x1).
type PingFrame struct {
	ack  bool
	data [8]byte
}

func (p *PingFrame) Type() Type { return Ping }

func (p *PingFrame) Reset() {
	p.ack = false
	p.data = [8]byte{}
}

func (p *PingFrame) IsAck() bool       { return p.ack }
func (p *PingFrame) SetAck(v bool)     { p.ack = v }
func (p *PingFrame) Data() []byte      { return p.data[:] }
func (p *PingFrame) SetData(b []byte)  { copy(p.data[:], b) }

func (p *PingFrame) Deserialize(h *Header) error {
	if len(h.payload) != 8 {
		return ErrFrameSize
	}
	p.ack = h.flags.Has(FlagAck)
	copy(p.data[:], h.payload)
	return nil
}

func (p *PingFrame) Serialize(h *Header) {
	if p.ack {
		h.SetFlags(h.Flags().Add(FlagAck))
	}
	h.setPayload(p.data[:])
}
