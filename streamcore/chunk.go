package streamcore

// Chunk is one DATA payload handed to the consumer API (§4.8
// GetNextChunk). WireLen is the on-wire octet count (payload plus any
// padding that was stripped) — flow control charges against WireLen,
// not len(Payload), per §4.3.
type Chunk struct {
	Payload  []byte
	WireLen  uint32
	EndOfMsg bool

	acked bool
}

// Acked reports whether Unget-style flow-control credit for this
// chunk has already been returned to the peer. A chunk can only be
// credited back once; GetNextChunk's "unget" path (§4.8) relies on
// this to avoid double-crediting the connection-level window.
func (c *Chunk) Acked() bool { return c.acked }

// MarkAcked records that the chunk's WireLen has been credited back.
func (c *Chunk) MarkAcked() { c.acked = true }
