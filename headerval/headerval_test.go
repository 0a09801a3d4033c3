package headerval

import "testing"

func validGetRequest() List {
	return List{
		{Name: ":method", Value: "GET"},
		{Name: ":scheme", Value: "https"},
		{Name: ":path", Value: "/"},
		{Name: ":authority", Value: "example.com"},
		{Name: "user-agent", Value: "test"},
	}
}

func TestValidRequestPasses(t *testing.T) {
	if err := Validate(validGetRequest(), Request, true, false); err != nil {
		t.Fatalf("Validate valid request: %v", err)
	}
}

func TestPseudoHeaderAfterRegularRejected(t *testing.T) {
	l := List{
		{Name: "user-agent", Value: "test"},
		{Name: ":method", Value: "GET"},
	}
	if err := Validate(l, Request, true, false); err == nil {
		t.Fatal("expected error: pseudo-header after regular header")
	}
}

func TestResponsePseudoHeaderInRequestRejected(t *testing.T) {
	l := List{
		{Name: ":method", Value: "GET"},
		{Name: ":scheme", Value: "https"},
		{Name: ":path", Value: "/"},
		{Name: ":status", Value: "200"},
		{Name: "user-agent", Value: "test"},
	}
	if err := Validate(l, Request, true, false); err == nil {
		t.Fatal("expected error: response pseudo-header in request")
	}
}

func TestConnectionHeaderRejected(t *testing.T) {
	l := append(validGetRequest(), Field{Name: "connection", Value: "keep-alive"})
	if err := Validate(l, Request, true, false); err == nil {
		t.Fatal("expected error: connection header field present")
	}
}

func TestTEOtherThanTrailersRejected(t *testing.T) {
	l := append(validGetRequest(), Field{Name: "te", Value: "gzip"})
	if err := Validate(l, Request, true, false); err == nil {
		t.Fatal("expected error: TE header with value other than trailers")
	}
}

func TestTETrailersAllowed(t *testing.T) {
	l := append(validGetRequest(), Field{Name: "te", Value: "trailers"})
	if err := Validate(l, Request, true, false); err != nil {
		t.Fatalf("TE: trailers should be allowed: %v", err)
	}
}

func TestConnectOmitsSchemeAndPath(t *testing.T) {
	l := List{
		{Name: ":method", Value: "CONNECT"},
		{Name: ":authority", Value: "example.com:443"},
	}
	if err := Validate(l, Request, true, false); err != nil {
		t.Fatalf("CONNECT request should not require :scheme/:path: %v", err)
	}
}

func TestMissingMethodRejected(t *testing.T) {
	l := List{
		{Name: ":scheme", Value: "https"},
		{Name: ":path", Value: "/"},
	}
	if err := Validate(l, Request, true, false); err == nil {
		t.Fatal("expected error: missing :method")
	}
}

func TestDuplicatePseudoHeaderRejected(t *testing.T) {
	l := List{
		{Name: ":method", Value: "GET"},
		{Name: ":scheme", Value: "https"},
		{Name: ":path", Value: "/"},
		{Name: ":path", Value: "/other"},
		{Name: ":authority", Value: "example.com"},
	}
	if err := Validate(l, Request, true, false); err == nil {
		t.Fatal("expected error: duplicate :path")
	}
}

func TestTrailerBlockWithoutEndStreamRejected(t *testing.T) {
	l := List{{Name: "x-trailer", Value: "1"}}
	if err := Validate(l, Trailer, false, false); err == nil {
		t.Fatal("expected error: trailer block without END_STREAM")
	}
	if err := Validate(l, Trailer, false, true); err != nil {
		t.Fatalf("trailer block with END_STREAM should pass: %v", err)
	}
}

func TestTrailerBlockWithPseudoHeaderRejected(t *testing.T) {
	l := List{{Name: ":path", Value: "/"}}
	if err := Validate(l, Trailer, false, true); err == nil {
		t.Fatal("expected error: pseudo-header in trailer block")
	}
}

func TestResponseRequiresExactlyOneStatus(t *testing.T) {
	none := List{{Name: "content-type", Value: "text/plain"}}
	if err := Validate(none, Response, true, false); err == nil {
		t.Fatal("expected error: missing :status")
	}

	dup := List{{Name: ":status", Value: "200"}, {Name: ":status", Value: "200"}}
	if err := Validate(dup, Response, true, false); err == nil {
		t.Fatal("expected error: duplicate :status")
	}

	one := List{{Name: ":status", Value: "200"}}
	if err := Validate(one, Response, true, false); err != nil {
		t.Fatalf("single :status should pass: %v", err)
	}
}
