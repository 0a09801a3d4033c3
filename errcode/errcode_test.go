package errcode

import "testing"

func TestFromWireKnownAndUnknown(t *testing.T) {
	if got := FromWire(0x1); got != ProtocolError {
		t.Fatalf("FromWire(0x1) = %v; want ProtocolError", got)
	}
	if got := FromWire(0xFFFF); got != InternalError {
		t.Fatalf("FromWire(0xFFFF) = %v; want InternalError", got)
	}
}

func TestStreamAndConnectionSeverity(t *testing.T) {
	se := Stream(Cancel, "cancelled")
	if se.Severity != SeverityStream {
		t.Fatalf("Stream() severity = %v; want SeverityStream", se.Severity)
	}

	ce := Connection(ProtocolError, "bad frame")
	if ce.Severity != SeverityConnection {
		t.Fatalf("Connection() severity = %v; want SeverityConnection", ce.Severity)
	}

	var err error = ce
	if err.Error() == "" {
		t.Fatal("Error() should not be empty")
	}
}

func TestCodeString(t *testing.T) {
	if ProtocolError.String() != "PROTOCOL_ERROR" {
		t.Fatalf("String() = %q; want PROTOCOL_ERROR", ProtocolError.String())
	}
	if got := Code(0xabc).String(); got == "" {
		t.Fatal("unknown code should still render a non-empty string")
	}
}
