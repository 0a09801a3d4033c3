package conn

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/h2core/stream2/errcode"
	"github.com/h2core/stream2/headerval"
)

// fakeCodec is a minimal, test-only stand-in for the hpack.Codec
// collaborator: a trivial NUL/SOH-delimited wire format rather than
// real HPACK compression. Production code never uses this; it exists
// only so conn's plumbing can be exercised without a real HPACK
// dependency (the module treats HPACK as opaque, per its design).
type fakeCodec struct{}

func (fakeCodec) EncodeHeaders(dst []byte, fields headerval.List) []byte {
	for _, f := range fields {
		dst = append(dst, f.Name...)
		dst = append(dst, 0)
		dst = append(dst, f.Value...)
		dst = append(dst, 1)
	}
	return dst
}

func (fakeCodec) DecodeHeaders(block []byte) (headerval.List, error) {
	var out headerval.List
	for len(block) > 0 {
		i := bytes.IndexByte(block, 0)
		name := string(block[:i])
		block = block[i+1:]
		j := bytes.IndexByte(block, 1)
		value := string(block[:j])
		block = block[j+1:]
		out = append(out, headerval.Field{Name: name, Value: value})
	}
	return out, nil
}

func (fakeCodec) SetMaxDynamicTableSize(uint32) {}

// newPair wires a client and server Conn over a real loopback TCP
// connection rather than net.Pipe: the handshake writes a few dozen
// bytes from each side before either side's reader goroutine is
// running, and net.Pipe's unbuffered rendezvous would deadlock on
// that — a loopback socket's kernel buffer absorbs it the way a real
// HTTP/2 connection's TCP socket does.
func newPair(t *testing.T) (client, server *Conn) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	acceptc := make(chan net.Conn, 1)
	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		acceptc <- c
	}()

	c1, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	c2 := <-acceptc

	opts := Options{}
	client = New(c1, Client, fakeCodec{}, opts)
	server = New(c2, Server, fakeCodec{}, opts)

	errc := make(chan error, 2)
	go func() { errc <- client.Handshake() }()
	go func() { errc <- server.Handshake() }()
	for i := 0; i < 2; i++ {
		if err := <-errc; err != nil {
			t.Fatalf("handshake: %v", err)
		}
	}
	return client, server
}

func TestSimpleRequestResponse(t *testing.T) {
	client, server := newPair(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Serve(ctx)
	go server.Serve(ctx)

	stream := client.NextStreamID()
	req := headerval.List{
		{Name: ":method", Value: "GET"},
		{Name: ":scheme", Value: "https"},
		{Name: ":path", Value: "/"},
		{Name: ":authority", Value: "example.com"},
	}
	client.WriteHeaders(stream.ID, fakeCodec{}.EncodeHeaders(nil, req), true, true)

	getCtx, getCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer getCancel()
	got, ok := server.GetHeaders(getCtx, stream.ID)
	if !ok {
		t.Fatal("server never received headers")
	}
	if v, _ := got.Get(":method"); v != "GET" {
		t.Fatalf(":method = %q; want GET", v)
	}
}

func TestPaddedDataDelivery(t *testing.T) {
	client, server := newPair(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Serve(ctx)
	go server.Serve(ctx)

	stream := client.NextStreamID()
	req := headerval.List{
		{Name: ":method", Value: "POST"},
		{Name: ":scheme", Value: "https"},
		{Name: ":path", Value: "/upload"},
		{Name: ":authority", Value: "example.com"},
	}
	client.WriteHeaders(stream.ID, fakeCodec{}.EncodeHeaders(nil, req), false, true)

	hctx, hcancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer hcancel()
	if _, ok := server.GetHeaders(hctx, stream.ID); !ok {
		t.Fatal("server never received headers")
	}

	writeCtx, wcancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer wcancel()
	if err := client.WriteData(writeCtx, stream.ID, []byte("payload-bytes"), true, true); err != nil {
		t.Fatalf("WriteData: %v", err)
	}

	cctx, ccancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer ccancel()
	chunk, ok := server.GetNextChunk(cctx, stream.ID)
	if !ok {
		t.Fatal("server never received a chunk")
	}
	if string(chunk.Payload) != "payload-bytes" {
		t.Fatalf("chunk payload = %q; want payload-bytes", chunk.Payload)
	}
	if !chunk.EndOfMsg {
		t.Fatal("expected final chunk to carry EndOfMsg")
	}
}

func TestRstStreamDuringReceive(t *testing.T) {
	client, server := newPair(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Serve(ctx)
	go server.Serve(ctx)

	stream := client.NextStreamID()
	req := headerval.List{
		{Name: ":method", Value: "GET"},
		{Name: ":scheme", Value: "https"},
		{Name: ":path", Value: "/"},
		{Name: ":authority", Value: "example.com"},
	}
	client.WriteHeaders(stream.ID, fakeCodec{}.EncodeHeaders(nil, req), false, true)

	hctx, hcancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer hcancel()
	if _, ok := server.GetHeaders(hctx, stream.ID); !ok {
		t.Fatal("server never received headers")
	}

	client.WriteRstStream(stream.ID, errcode.Cancel)

	cctx, ccancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer ccancel()
	if _, ok := server.GetNextChunk(cctx, stream.ID); ok {
		t.Fatal("expected GetNextChunk to report closed after RST_STREAM")
	}
}

// TestSecondStreamHeadersAreNotMisclassifiedAsTrailers guards against
// treating the assembler's completed-block count as a connection-wide
// total: a second, independent stream's initial HEADERS must still be
// classified as a request (not a trailer) and must not trip the
// at-most-two-header-blocks rule, which applies per stream.
func TestSecondStreamHeadersAreNotMisclassifiedAsTrailers(t *testing.T) {
	client, server := newPair(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Serve(ctx)
	go server.Serve(ctx)

	req := func(path string) headerval.List {
		return headerval.List{
			{Name: ":method", Value: "GET"},
			{Name: ":scheme", Value: "https"},
			{Name: ":path", Value: path},
			{Name: ":authority", Value: "example.com"},
		}
	}

	first := client.NextStreamID()
	client.WriteHeaders(first.ID, fakeCodec{}.EncodeHeaders(nil, req("/one")), true, true)

	ctx1, cancel1 := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel1()
	if _, ok := server.GetHeaders(ctx1, first.ID); !ok {
		t.Fatal("server never received headers for the first stream")
	}

	second := client.NextStreamID()
	client.WriteHeaders(second.ID, fakeCodec{}.EncodeHeaders(nil, req("/two")), true, true)

	ctx2, cancel2 := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel2()
	got, ok := server.GetHeaders(ctx2, second.ID)
	if !ok {
		t.Fatal("server never received headers for the second stream")
	}
	if v, _ := got.Get(":method"); v != "GET" {
		t.Fatalf(":method = %q; want GET (second stream misclassified as a trailer)", v)
	}

	select {
	case <-server.Done():
		t.Fatalf("connection closed unexpectedly: %v", server.Err())
	default:
	}
}
