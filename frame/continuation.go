package frame

// ContinuationFrame extends an in-progress header block (RFC 7540
// §6.10). Flag: END_HEADERS (0x4). It carries no fields of its own
// beyond the raw fragment and the flag; §4.4's assembler decides
// whether one is admissible at all.
type ContinuationFrame struct {
	endHeaders bool
	raw        []byte
}

func (c *ContinuationFrame) Type() Type { return Continuation }

func (c *ContinuationFrame) Reset() {
	c.endHeaders = false
	c.raw = c.raw[:0]
}

func (c *ContinuationFrame) EndHeaders() bool        { return c.endHeaders }
func (c *ContinuationFrame) SetEndHeaders(v bool)    { c.endHeaders = v }
func (c *ContinuationFrame) HeaderBlock() []byte     { return c.raw }
func (c *ContinuationFrame) SetHeaderBlock(b []byte) { c.raw = append(c.raw[:0], b...) }

func (c *ContinuationFrame) Deserialize(h *Header) error {
	c.endHeaders = h.flags.Has(FlagEndHeaders)
	c.raw = append(c.raw[:0], h.payload...)
	return nil
}

func (c *ContinuationFrame) Serialize(h *Header) {
	if c.endHeaders {
		h.SetFlags(h.Flags().Add(FlagEndHeaders))
	}
	h.setPayload(c.raw)
}
