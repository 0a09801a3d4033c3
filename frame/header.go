package frame

import (
	"bufio"
	"errors"
	"io"
	"sync"

	"github.com/h2core/stream2/wire"
)

// HeaderSize is the fixed 9-octet frame header size (RFC 7540 §4.1).
const HeaderSize = 9

// ErrUnknownType is returned by ReadFrom when the frame type byte is
// outside 0x0..0x9; RFC 7540 requires the reader to skip the payload
// and continue, never treat it as a protocol error.
var ErrUnknownType = errors.New("frame: unknown frame type")

// ErrMissingBytes is returned by a Payload's Deserialize when the
// frame is shorter than its type's fixed-size fields require.
var ErrMissingBytes = errors.New("frame: payload shorter than required")

// Payload is the per-type codec every frame type implements.
type Payload interface {
	Type() Type
	// Deserialize populates the payload from h's raw bytes and flags.
	Deserialize(h *Header) error
	// Serialize renders the payload into h's byte buffer and flags,
	// ready for Header.WriteTo.
	Serialize(h *Header)
	Reset()
}

var headerPool = sync.Pool{
	New: func() interface{} { return &Header{} },
}

// Header is one on-wire HTTP/2 frame: the 9-byte header plus whatever
// Payload decoded its bytes. Acquire/Release pool every per-frame
// allocation.
//
// A Header must not be used from more than one goroutine at a time.
type Header struct {
	length int
	kind   Type
	flags  Flags
	stream uint32

	maxLen uint32

	raw     [HeaderSize]byte
	payload []byte

	body Payload
}

func Acquire() *Header {
	h := headerPool.Get().(*Header)
	h.Reset()
	return h
}

func Release(h *Header) {
	if h.body != nil {
		ReleasePayload(h.body)
	}
	headerPool.Put(h)
}

func (h *Header) Reset() {
	h.kind = 0
	h.flags = 0
	h.stream = 0
	h.length = 0
	h.maxLen = DefaultMaxFrameSize
	h.body = nil
	h.payload = h.payload[:0]
}

func (h *Header) Type() Type       { return h.kind }
func (h *Header) Flags() Flags     { return h.flags }
func (h *Header) SetFlags(f Flags) { h.flags = f }
func (h *Header) Stream() uint32   { return h.stream }
func (h *Header) SetStream(id uint32) {
	h.stream = id
}
func (h *Header) Len() int         { return h.length }
func (h *Header) MaxLen() uint32   { return h.maxLen }
func (h *Header) SetMaxLen(n uint32) { h.maxLen = n }
func (h *Header) Body() Payload    { return h.body }
func (h *Header) RawPayload() []byte { return h.payload }

// SetBody attaches a payload codec and derives the frame type from it.
func (h *Header) SetBody(p Payload) {
	if p == nil {
		panic("frame: body cannot be nil")
	}
	h.kind = p.Type()
	h.body = p
}

func (h *Header) setPayload(b []byte) {
	h.payload = append(h.payload[:0], b...)
}

// DefaultMaxFrameSize is the RFC 7540 §6.5.2 default
// SETTINGS_MAX_FRAME_SIZE value, used before any SETTINGS negotiation.
const DefaultMaxFrameSize = 1 << 14

// ReadFrom reads one frame header plus payload from br, with maxLen
// capping the accepted payload length (the negotiated
// SETTINGS_MAX_FRAME_SIZE). Pass 0 to accept any length the transport
// already bounds.
func ReadFrom(br *bufio.Reader, maxLen uint32) (*Header, error) {
	h := Acquire()
	h.maxLen = maxLen

	n, err := h.readFrom(br)
	if err != nil {
		if n > 0 && h.body != nil {
			Release(h)
		} else {
			headerPool.Put(h)
		}
		return nil, err
	}

	return h, nil
}

func (h *Header) readFrom(br *bufio.Reader) (int64, error) {
	raw, err := br.Peek(HeaderSize)
	if err != nil {
		return -1, err
	}
	br.Discard(HeaderSize)

	h.length = int(wire.BytesToUint24(raw[:3]))
	h.kind = Type(raw[3])
	h.flags = Flags(raw[4])
	h.stream = wire.StreamID(raw[5:])

	if h.maxLen != 0 && h.length > int(h.maxLen) {
		io.CopyN(io.Discard, br, int64(h.length))
		return int64(HeaderSize), ErrFrameSizeExceeded
	}

	if !h.kind.Known() {
		io.CopyN(io.Discard, br, int64(h.length))
		return int64(HeaderSize), ErrUnknownType
	}

	h.payload = wire.Resize(h.payload, h.length)
	read := 0
	if h.length > 0 {
		read, err = io.ReadFull(br, h.payload)
		if err != nil {
			return int64(HeaderSize + read), err
		}
	}

	h.body = AcquirePayload(h.kind)
	return int64(HeaderSize + read), h.body.Deserialize(h)
}

// ErrFrameSizeExceeded is returned when an inbound frame's declared
// length exceeds the negotiated SETTINGS_MAX_FRAME_SIZE.
var ErrFrameSizeExceeded = errors.New("frame: payload exceeds negotiated max size")

// WriteTo serializes Body (if set) and writes header+payload to bw.
func (h *Header) WriteTo(bw *bufio.Writer) (int64, error) {
	if h.body != nil {
		h.body.Serialize(h)
	}

	h.length = len(h.payload)
	wire.Uint24ToBytes(h.raw[:3], uint32(h.length))
	h.raw[3] = byte(h.kind)
	h.raw[4] = byte(h.flags)
	wire.Uint32ToBytes(h.raw[5:], h.stream)

	n, err := bw.Write(h.raw[:])
	if err != nil {
		return int64(n), err
	}

	m, err := bw.Write(h.payload)
	return int64(n + m), err
}
