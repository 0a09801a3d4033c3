// Package errcode defines the HTTP/2 error codes (RFC 7540 §11.4) and
// the typed error the core raises whenever a frame handler or writer
// rejects a frame, carrying the severity needed to pick between an
// outbound RST_STREAM and an outbound GOAWAY.
package errcode

import "fmt"

// Code is a 32-bit HTTP/2 error code, carried on the wire inside
// RST_STREAM and GOAWAY payloads.
type Code uint32

const (
	NoError            Code = 0x0
	ProtocolError      Code = 0x1
	InternalError      Code = 0x2
	FlowControlError   Code = 0x3
	SettingsTimeout    Code = 0x4
	StreamClosedError  Code = 0x5
	FrameSizeError     Code = 0x6
	RefusedStream      Code = 0x7
	Cancel             Code = 0x8
	CompressionError   Code = 0x9
	ConnectError       Code = 0xa
	EnhanceYourCalm    Code = 0xb
	InadequateSecurity Code = 0xc
	HTTP11Required     Code = 0xd
)

var names = [...]string{
	NoError:            "NO_ERROR",
	ProtocolError:      "PROTOCOL_ERROR",
	InternalError:      "INTERNAL_ERROR",
	FlowControlError:   "FLOW_CONTROL_ERROR",
	SettingsTimeout:    "SETTINGS_TIMEOUT",
	StreamClosedError:  "STREAM_CLOSED",
	FrameSizeError:     "FRAME_SIZE_ERROR",
	RefusedStream:      "REFUSED_STREAM",
	Cancel:             "CANCEL",
	CompressionError:   "COMPRESSION_ERROR",
	ConnectError:       "CONNECT_ERROR",
	EnhanceYourCalm:    "ENHANCE_YOUR_CALM",
	InadequateSecurity: "INADEQUATE_SECURITY",
	HTTP11Required:     "HTTP_1_1_REQUIRED",
}

func (c Code) String() string {
	if int(c) < len(names) && names[c] != "" {
		return names[c]
	}
	return fmt.Sprintf("UNKNOWN_ERROR(0x%x)", uint32(c))
}

// FromWire maps an unrecognized 32-bit wire value to InternalError,
// matching RST_STREAM handling in §4.6: "stores the 32-bit error code
// on the stream (mapped to a known error enum or INTERNAL_ERROR if
// unknown)".
func FromWire(v uint32) Code {
	if v <= uint32(HTTP11Required) {
		return Code(v)
	}
	return InternalError
}

// Severity says whether an Error should be surfaced as a stream-level
// reset or a connection-level shutdown.
type Severity uint8

const (
	// SeverityStream resets one stream; the connection continues.
	SeverityStream Severity = iota
	// SeverityConnection tears the whole connection down via GOAWAY.
	SeverityConnection
)

// Error is what every frame handler and writer in this module returns
// in place of a bare error: it carries enough metadata for the caller
// to pick RST_STREAM vs GOAWAY and to fill in the wire error code.
type Error struct {
	Code     Code
	Severity Severity
	Message  string
}

func (e Error) Error() string {
	if e.Message == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Stream builds a stream-level Error (⇒ outbound RST_STREAM).
func Stream(code Code, message string) Error {
	return Error{Code: code, Severity: SeverityStream, Message: message}
}

// Connection builds a connection-level Error (⇒ outbound GOAWAY).
func Connection(code Code, message string) Error {
	return Error{Code: code, Severity: SeverityConnection, Message: message}
}
