// Package wire holds the low-level byte twiddling shared by the frame
// codec: big-endian uint24/uint32 helpers, the 31-bit stream-id mask,
// and the padding generation/validation used by DATA, HEADERS and
// PUSH_PROMISE frames.
package wire

import (
	"reflect"
	"unsafe"

	"github.com/valyala/fastrand"
)

// StreamIDMask clears the reserved top bit shared by every 31-bit
// stream-id and window-increment field on the wire.
const StreamIDMask = 1<<31 - 1

func Uint24ToBytes(b []byte, n uint32) {
	_ = b[2] // bound checking
	b[0] = byte(n >> 16)
	b[1] = byte(n >> 8)
	b[2] = byte(n)
}

func BytesToUint24(b []byte) uint32 {
	_ = b[2] // bound checking
	return uint32(b[0])<<16 |
		uint32(b[1])<<8 |
		uint32(b[2])
}

func AppendUint32Bytes(dst []byte, n uint32) []byte {
	dst = append(dst, byte(n>>24))
	dst = append(dst, byte(n>>16))
	dst = append(dst, byte(n>>8))
	dst = append(dst, byte(n))
	return dst
}

func Uint32ToBytes(b []byte, n uint32) {
	_ = b[3] // bound checking
	b[0] = byte(n >> 24)
	b[1] = byte(n >> 16)
	b[2] = byte(n >> 8)
	b[3] = byte(n)
}

func BytesToUint32(b []byte) uint32 {
	_ = b[3] // bound checking
	return uint32(b[0])<<24 |
		uint32(b[1])<<16 |
		uint32(b[2])<<8 |
		uint32(b[3])
}

// StreamID reads a 31-bit stream id from b, masking the reserved bit.
func StreamID(b []byte) uint32 {
	return BytesToUint32(b) & StreamIDMask
}

func EqualsFold(a, b []byte) bool {
	n := len(a)
	if n != len(b) {
		return false
	}
	for i := 0; i < n; i++ {
		if a[i]|0x20 != b[i]|0x20 {
			return false
		}
	}
	return true
}

func Resize(b []byte, neededLen int) []byte {
	b = b[:cap(b)]

	if n := neededLen - len(b); n > 0 {
		b = append(b, make([]byte, n)...)
	}

	return b[:neededLen]
}

// CutPadding strips a PADDED frame's leading pad-length octet and its
// trailing padding, verifying every padding byte is zero as RFC 7540
// §6.1 requires. ok is false when the pad length leaves no room for
// payload (pad-length >= remaining payload) or padding isn't all-zero;
// callers turn that into a PROTOCOL_ERROR.
func CutPadding(payload []byte) (data []byte, ok bool) {
	if len(payload) == 0 {
		return payload, true
	}

	pad := int(payload[0])
	if pad >= len(payload) {
		return nil, false
	}

	data = payload[1 : len(payload)-pad]
	for _, b := range payload[len(payload)-pad:] {
		if b != 0 {
			return nil, false
		}
	}

	return data, true
}

// AddPadding prepends a random pad-length octet (9..255) to b and
// appends that many zero bytes, the write-side counterpart of
// CutPadding. RFC 7540 §6.1 requires padding octets be set to zero;
// only the pad length itself is randomized, via fastrand.
func AddPadding(b []byte) []byte {
	n := int(fastrand.Uint32n(256-9)) + 9
	nn := len(b)

	b = Resize(b, nn+n+1)
	copy(b[1:], b[:nn])
	b[0] = uint8(n)

	for i := nn + 1; i < nn+1+n; i++ {
		b[i] = 0
	}

	return b
}

func FastBytesToString(b []byte) string {
	return *(*string)(unsafe.Pointer(&b))
}

func FastStringToBytes(s string) []byte {
	sh := (*reflect.StringHeader)(unsafe.Pointer(&s))
	bh := reflect.SliceHeader{
		Data: sh.Data,
		Len:  sh.Len,
		Cap:  sh.Len,
	}
	return *(*[]byte)(unsafe.Pointer(&bh))
}
