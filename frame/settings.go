package frame

import "github.com/h2core/stream2/wire"

// Settings parameter identifiers (RFC 7540 §6.5.2).
const (
	SettingHeaderTableSize      uint16 = 0x1
	SettingEnablePush           uint16 = 0x2
	SettingMaxConcurrentStreams uint16 = 0x3
	SettingInitialWindowSize    uint16 = 0x4
	SettingMaxFrameSize         uint16 = 0x5
	SettingMaxHeaderListSize    uint16 = 0x6
)

// Setting is one (id, value) pair from a SETTINGS frame payload.
type Setting struct {
	ID    uint16
	Value uint32
}

// SettingsFrame carries connection configuration (RFC 7540 §6.5).
// Flag: ACK (0x1). A non-ACK frame's payload length must be a
// multiple of 6; each entry is id:uint16, value:uint32.
type SettingsFrame struct {
	ack      bool
	settings []Setting
}

func (s *SettingsFrame) Type() Type { return Settings }

func (s *SettingsFrame) Reset() {
	s.ack = false
	s.settings = s.settings[:0]
}

func (s *SettingsFrame) IsAck() bool    { return s.ack }
func (s *SettingsFrame) SetAck(v bool)  { s.ack = v }
func (s *SettingsFrame) Settings() []Setting { return s.settings }
func (s *SettingsFrame) Add(id uint16, value uint32) {
	s.settings = append(s.settings, Setting{ID: id, Value: value})
}

func (s *SettingsFrame) Deserialize(h *Header) error {
	s.ack = h.flags.Has(FlagAck)
	if s.ack {
		if len(h.payload) != 0 {
			return ErrFrameSize
		}
		return nil
	}

	if len(h.payload)%6 != 0 {
		return ErrFrameSize
	}

	for i := 0; i+6 <= len(h.payload); i += 6 {
		b := h.payload[i : i+6]
		s.settings = append(s.settings, Setting{
			ID:    uint16(b[0])<<8 | uint16(b[1]),
			Value: wire.BytesToUint32(b[2:]),
		})
	}

	return nil
}

func (s *SettingsFrame) Serialize(h *Header) {
	if s.ack {
		h.SetFlags(h.Flags().Add(FlagAck))
		h.setPayload(nil)
		return
	}

	buf := make([]byte, 0, 6*len(s.settings))
	for _, st := range s.settings {
		buf = append(buf, byte(st.ID>>8), byte(st.ID))
		buf = wire.AppendUint32Bytes(buf, st.Value)
	}
	h.setPayload(buf)
}
