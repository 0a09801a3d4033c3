// Package hpack defines the boundary between this module and an HPACK
// implementation. HPACK compression/decompression is treated as
// opaque: this package names the shape of that collaborator without
// providing one, so the conn package can be wired to whichever
// concrete encoder/decoder the embedder chooses
// (golang.org/x/net/http2/hpack or otherwise) without this module
// importing any of them.
package hpack

import "github.com/h2core/stream2/headerval"

// Encoder renders a header list to wire bytes, tracking its own
// dynamic table across calls.
type Encoder interface {
	// EncodeHeaders appends the HPACK-compressed representation of
	// fields to dst and returns the extended slice.
	EncodeHeaders(dst []byte, fields headerval.List) []byte

	// SetMaxDynamicTableSize applies a peer SETTINGS_HEADER_TABLE_SIZE
	// change (RFC 7540 §6.5.2) to the encoder's dynamic table.
	SetMaxDynamicTableSize(size uint32)
}

// Decoder parses wire bytes produced by a peer's Encoder back into a
// header list, tracking its own dynamic table across calls.
type Decoder interface {
	// DecodeHeaders parses a complete, reassembled header block (as
	// produced by assembler.Assembler.Finish) into a Field list.
	DecodeHeaders(block []byte) (headerval.List, error)

	// SetMaxDynamicTableSize applies a local SETTINGS_HEADER_TABLE_SIZE
	// change to the decoder's dynamic table.
	SetMaxDynamicTableSize(size uint32)
}

// Codec is the full collaborator contract: one Encoder/Decoder pair
// per connection, since HPACK's dynamic table is connection-scoped
// (RFC 7540 §4.3).
type Codec interface {
	Encoder
	Decoder
}
