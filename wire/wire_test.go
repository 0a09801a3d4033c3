package wire

import "testing"

func TestUint24RoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 0xff, 0xabcdef, 1<<24 - 1} {
		b := make([]byte, 3)
		Uint24ToBytes(b, v)
		if got := BytesToUint24(b); got != v {
			t.Fatalf("Uint24 round trip %d => %d", v, got)
		}
	}
}

func TestUint32RoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 1 << 31, 1<<32 - 1} {
		b := make([]byte, 4)
		Uint32ToBytes(b, v)
		if got := BytesToUint32(b); got != v {
			t.Fatalf("Uint32 round trip %d => %d", v, got)
		}
	}
}

func TestStreamIDMasksReservedBit(t *testing.T) {
	b := []byte{0xff, 0xff, 0xff, 0xff}
	if got := StreamID(b); got != StreamIDMask {
		t.Fatalf("StreamID = %#x; want %#x", got, StreamIDMask)
	}
}

func TestCutPaddingStripsTrailingZeros(t *testing.T) {
	// pad-length byte (2), 3 bytes of data, 2 zero pad bytes.
	payload := []byte{2, 'a', 'b', 'c', 0, 0}
	data, ok := CutPadding(payload)
	if !ok {
		t.Fatal("CutPadding should succeed on well-formed padding")
	}
	if string(data) != "abc" {
		t.Fatalf("CutPadding data = %q; want abc", data)
	}
}

func TestCutPaddingRejectsNonZeroPadding(t *testing.T) {
	payload := []byte{1, 'a', 'b', 'c', 1}
	if _, ok := CutPadding(payload); ok {
		t.Fatal("CutPadding should reject non-zero padding bytes")
	}
}

func TestCutPaddingRejectsPadLengthExceedingPayload(t *testing.T) {
	payload := []byte{5, 'a', 'b'}
	if _, ok := CutPadding(payload); ok {
		t.Fatal("CutPadding should reject a pad length >= remaining payload")
	}
}

func TestAddPaddingThenCutPaddingRoundTrips(t *testing.T) {
	padded := AddPadding([]byte("payload"))
	data, ok := CutPadding(padded)
	if !ok {
		t.Fatal("CutPadding should accept AddPadding's own output")
	}
	if string(data) != "payload" {
		t.Fatalf("round trip data = %q; want payload", data)
	}
}
