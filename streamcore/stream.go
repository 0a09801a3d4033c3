package streamcore

import (
	"context"
	"sync"

	"github.com/h2core/stream2/errcode"
)

// Counters holds cumulative per-stream tallies. conn updates
// BytesReceived (DATA payload octets after padding is stripped) and
// FramesReceived (DATA frames only) as DATA arrives. BytesSent and
// FramesSent are not updated anywhere in this module, and header
// blocks are not counted.
type Counters struct {
	BytesSent     uint64
	BytesReceived uint64
	FramesSent    uint64
	FramesReceived uint64
}

// Stream is one HTTP/2 stream's mutable record: its position in the
// state machine and the two FIFOs the consumer API drains. The
// priority tree's parent/child bookkeeping lives in prio.Tree and the
// flow-control windows in flowctl.Ledger rather than here — a Stream
// only remembers its own id and weight.
type Stream struct {
	mu sync.Mutex

	ID     uint32
	Weight uint8 // 1-256, default 16 (RFC 7540 §5.3.2)
	state  State

	// RstErr is set by Reset when an RST_STREAM is sent or received, so a late
	// frame on an already-reset stream can be reported with its cause.
	RstErr errcode.Error
	isRst  bool

	Counters Counters

	headers *headerQueue
	chunks  *chunkQueue
}

// NewStream allocates a Stream in the idle state. Callers create the
// record before the first transition is applied.
func NewStream(id uint32) *Stream {
	return &Stream{
		ID:      id,
		Weight:  16,
		state:   Idle,
		headers: newHeaderQueue(),
		chunks:  newChunkQueue(),
	}
}

func (s *Stream) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Apply runs Transition and, on success, stores the resulting state.
// It never moves state backward: Transition already enforces that by
// construction, since every listed (from, trigger) pair maps to a
// state of equal or higher rank.
func (s *Stream) Apply(t Trigger) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := Transition(s.state, t)
	if err != nil {
		return err
	}
	s.state = next
	if t == SendRstStream || t == RecvRstStream {
		s.isRst = true
	}
	return nil
}

// Reset records the error that accompanied an RST_STREAM, closes the
// stream's queues so blocked consumers wake with io.EOF-equivalent
// behavior, and marks it closed.
func (s *Stream) Reset(cause errcode.Error) {
	s.mu.Lock()
	s.isRst = true
	s.RstErr = cause
	s.state = Closed
	s.mu.Unlock()

	s.headers.Close()
	s.chunks.Close()
}

// IsReset reports whether the stream was terminated by RST_STREAM
// (as opposed to a clean END_STREAM close).
func (s *Stream) IsReset() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRst
}

// PushHeaders enqueues a validated header list for GetHeaders.
func (s *Stream) PushHeaders(l List) { s.headers.Push(l) }

// PopHeaders is the blocking half of GetHeaders (§4.8).
func (s *Stream) PopHeaders(ctx context.Context) (List, bool) { return s.headers.Pop(ctx) }

// PushChunk enqueues a DATA chunk for GetNextChunk.
func (s *Stream) PushChunk(c *Chunk) { s.chunks.Push(c) }

// PopChunk is the blocking half of GetNextChunk (§4.8).
func (s *Stream) PopChunk(ctx context.Context) (*Chunk, bool) { return s.chunks.Pop(ctx) }

// Unget returns an unconsumed chunk to the front of the queue (§4.8).
func (s *Stream) Unget(c *Chunk) { s.chunks.Unget(c) }

// CloseQueues unblocks any pending GetHeaders/GetNextChunk call
// without marking the stream reset, used on a clean END_STREAM close.
func (s *Stream) CloseQueues() {
	s.headers.Close()
	s.chunks.Close()
}
