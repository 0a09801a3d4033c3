// Package headerval validates a decoded header list against the
// ordered rules of §4.5 that can be checked on one block (all but
// rule 7, which conn enforces) before it is handed to application
// code. It never touches HPACK or the wire — by the time a Field slice reaches
// Validate, the assembler has already concatenated and decoded the
// header block.
package headerval

import (
	"strings"

	"github.com/h2core/stream2/errcode"
)

// Field is one decoded header field. Name is already lowercased by the
// HPACK collaborator per RFC 7540 §8.1.2; Validate does not re-check case.
type Field struct {
	Name  string
	Value string
}

// List is an ordered decoded header block.
type List []Field

// Get returns the first value for name, and whether it was present.
func (l List) Get(name string) (string, bool) {
	for _, f := range l {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Kind distinguishes request from response header blocks; rule 5 and
// rule 8 of §4.5 are asymmetric between the two.
type Kind uint8

const (
	Request Kind = iota
	Response
	Trailer
)

// Validate applies rules 1–6 and 8 of §4.5 in sequence, stopping at
// the first violation. Rule 7 (at most two header blocks per stream)
// is not checked here, since it needs a count of earlier blocks;
// conn.finishHeaderBlock enforces it. isFirstBlock distinguishes an
// initial HEADERS block (where :method/:scheme/:path are mandatory)
// from a trailer block (informational headers never carry them).
func Validate(l List, kind Kind, isFirstBlock bool, endStream bool) error {
	if err := ruleOrdering(l); err != nil {
		return err
	}
	if err := ruleSegregation(l, kind, isFirstBlock); err != nil {
		return err
	}
	if err := ruleConnectionBanned(l); err != nil {
		return err
	}
	if err := ruleTE(l); err != nil {
		return err
	}
	if isFirstBlock && kind == Request {
		if err := ruleRequestPseudoHeaders(l); err != nil {
			return err
		}
	}
	if err := ruleTrailersEndStream(l, isFirstBlock, endStream); err != nil {
		return err
	}
	if kind == Response {
		if err := ruleSingleStatus(l, isFirstBlock); err != nil {
			return err
		}
	}
	return nil
}

// rule 1: all pseudo-headers (":"-prefixed) must precede all regular
// fields (RFC 7540 §8.1.2.1).
func ruleOrdering(l List) error {
	seenRegular := false
	for _, f := range l {
		if strings.HasPrefix(f.Name, ":") {
			if seenRegular {
				return errcode.Stream(errcode.ProtocolError, "pseudo-header after regular header")
			}
			continue
		}
		seenRegular = true
	}
	return nil
}

var requestPseudo = map[string]bool{":method": true, ":scheme": true, ":path": true, ":authority": true}
var responsePseudo = map[string]bool{":status": true}

// rule 2: a request block must not carry response pseudo-headers and
// vice versa; a trailer block carries none at all (RFC 7540 §8.1.2.1).
func ruleSegregation(l List, kind Kind, isFirstBlock bool) error {
	for _, f := range l {
		if !strings.HasPrefix(f.Name, ":") {
			continue
		}
		if kind == Trailer || !isFirstBlock {
			return errcode.Stream(errcode.ProtocolError, "pseudo-header in trailer block")
		}
		switch kind {
		case Request:
			if !requestPseudo[f.Name] {
				return errcode.Stream(errcode.ProtocolError, "response pseudo-header in request")
			}
		case Response:
			if !responsePseudo[f.Name] {
				return errcode.Stream(errcode.ProtocolError, "request pseudo-header in response")
			}
		}
	}
	return nil
}

// rule 3: the Connection header field must not appear (RFC 7540
// §8.1.2.2). Only the field named "connection" is checked; TE is
// handled by rule 4.
func ruleConnectionBanned(l List) error {
	for _, f := range l {
		if f.Name == "connection" {
			return errcode.Stream(errcode.ProtocolError, "connection header field present")
		}
	}
	return nil
}

// rule 4: a TE header field, if present, must carry only "trailers"
// (RFC 7540 §8.1.2.2).
func ruleTE(l List) error {
	v, ok := l.Get("te")
	if ok && v != "trailers" {
		return errcode.Stream(errcode.ProtocolError, "TE header field carries value other than trailers")
	}
	return nil
}

// rule 5: the first request header block must carry :method, :scheme
// and :path exactly once, except CONNECT requests which omit :scheme
// and :path (RFC 7540 §8.1.2.3, §8.3).
func ruleRequestPseudoHeaders(l List) error {
	counts := map[string]int{}
	for _, f := range l {
		if requestPseudo[f.Name] {
			counts[f.Name]++
		}
	}
	for name, n := range counts {
		if n > 1 {
			return errcode.Stream(errcode.ProtocolError, "duplicate pseudo-header "+name)
		}
	}
	method, _ := l.Get(":method")
	if counts[":method"] != 1 {
		return errcode.Stream(errcode.ProtocolError, "missing :method")
	}
	if method == "CONNECT" {
		return nil
	}
	if counts[":scheme"] != 1 {
		return errcode.Stream(errcode.ProtocolError, "missing :scheme")
	}
	path, _ := l.Get(":path")
	if counts[":path"] != 1 || path == "" {
		return errcode.Stream(errcode.ProtocolError, "missing or empty :path")
	}
	return nil
}

// rule 6: a trailer block is only legal when it carries END_STREAM
// (RFC 7540 §8.1 "Trailers").
func ruleTrailersEndStream(l List, isFirstBlock bool, endStream bool) error {
	if isFirstBlock {
		return nil
	}
	if !endStream {
		return errcode.Stream(errcode.ProtocolError, "second header block without END_STREAM")
	}
	return nil
}

// rule 8: a response carries exactly one :status pseudo-header
// (RFC 7540 §8.1.2.4).
func ruleSingleStatus(l List, isFirstBlock bool) error {
	if !isFirstBlock {
		return nil
	}
	n := 0
	for _, f := range l {
		if f.Name == ":status" {
			n++
		}
	}
	if n != 1 {
		return errcode.Stream(errcode.ProtocolError, "missing or duplicate :status")
	}
	return nil
}
