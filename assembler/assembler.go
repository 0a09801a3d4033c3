// Package assembler reassembles a header block fragmented across a
// HEADERS (or PUSH_PROMISE) frame and zero or more CONTINUATION
// frames into a single contiguous byte slice ready for the HPACK
// collaborator, per RFC 7540 §4.3 and §6.10.
package assembler

import "errors"

// MaxHeaderBlockSize caps the total reassembled block at 400 KiB,
// guarding against a peer that never sends END_HEADERS.
const MaxHeaderBlockSize = 400 * 1024

// ErrTooLarge is returned once the accumulated block would exceed
// MaxHeaderBlockSize; the caller turns this into a connection-level
// PROTOCOL_ERROR, since an over-long header block leaves the HPACK
// dynamic table desynchronized for the rest of the connection.
var ErrTooLarge = errors.New("assembler: header block exceeds maximum size")

// ErrNotInProgress is returned when Append or Finish is called without
// a matching Begin, or Begin is called while a block is already open —
// both indicate the caller let a second HEADERS/PUSH_PROMISE interrupt
// an in-progress CONTINUATION sequence, which is itself a
// PROTOCOL_ERROR per RFC 7540 §6.10.
var ErrNotInProgress = errors.New("assembler: header block not in the expected state")

// Assembler accumulates one stream's header block at a time. A
// connection owns exactly one Assembler, since RFC 7540 §6.10 forbids
// interleaving header blocks from different streams — but streams
// take turns using it one after another over the connection's life,
// so completed-block counts are tracked per stream id, not as one
// connection-wide total.
type Assembler struct {
	buf    []byte
	stream uint32
	active bool
	blocks map[uint32]int // per-stream count of header blocks completed
}

// New returns an empty Assembler.
func New() *Assembler {
	return &Assembler{blocks: make(map[uint32]int)}
}

// Begin starts a new header block for stream, seeded with the
// HEADERS/PUSH_PROMISE frame's own fragment (with padding already
// stripped by the frame layer). When that frame already carries
// END_HEADERS the block is complete and the caller calls Finish
// immediately rather than waiting for CONTINUATION frames.
func (a *Assembler) Begin(stream uint32, fragment []byte) error {
	if a.active {
		return ErrNotInProgress
	}
	if len(fragment) > MaxHeaderBlockSize {
		return ErrTooLarge
	}
	a.stream = stream
	a.buf = append(a.buf[:0], fragment...)
	a.active = true
	return nil
}

// Active reports whether a block is currently being accumulated, and
// for which stream — CONTINUATION frames for any other stream id are a
// PROTOCOL_ERROR (RFC 7540 §6.10).
func (a *Assembler) Active() (stream uint32, ok bool) {
	return a.stream, a.active
}

// Append adds a CONTINUATION frame's fragment to the in-progress block.
func (a *Assembler) Append(fragment []byte) error {
	if !a.active {
		return ErrNotInProgress
	}
	if len(a.buf)+len(fragment) > MaxHeaderBlockSize {
		return ErrTooLarge
	}
	a.buf = append(a.buf, fragment...)
	return nil
}

// Finish closes out the in-progress block (END_HEADERS seen, whether
// on the initial frame or a later CONTINUATION) and returns the fully
// reassembled bytes. The returned slice is only valid until the next
// Begin call.
func (a *Assembler) Finish() ([]byte, error) {
	if !a.active {
		return nil, ErrNotInProgress
	}
	a.active = false
	a.blocks[a.stream]++
	return a.buf, nil
}

// BlockCount reports how many header blocks stream has completed so
// far, used to enforce the at-most-two-header-blocks rule (an initial
// block and at most one trailer block) from §4.5 rule 7.
func (a *Assembler) BlockCount(stream uint32) int { return a.blocks[stream] }

// Forget drops stream's block count once it closes; callers evict it
// the way flowctl.Ledger.Forget and prio.Tree.Forget do for their own
// per-stream bookkeeping.
func (a *Assembler) Forget(stream uint32) { delete(a.blocks, stream) }
