package frame

import "errors"

// ErrInvalidPadding is returned by a Payload's Deserialize when a
// PADDED frame's pad-length octet is >= the remaining payload, or the
// padding bytes themselves aren't all zero (RFC 7540 §6.1).
var ErrInvalidPadding = errors.New("frame: invalid padding")

// ErrFrameSize is returned by a fixed-length frame type (PRIORITY,
// RST_STREAM, PING, WINDOW_UPDATE) whose payload isn't exactly the
// required length.
var ErrFrameSize = errors.New("frame: wrong payload size for frame type")
