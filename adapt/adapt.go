// Package adapt bridges assembled header lists to and from fasthttp's
// Request/Response types; it does not touch DATA chunks or the
// streamcore chunk queues. The mapping runs
// against a fully decoded headerval.List rather than one field at a
// time, since the assembler/hpack boundary already produces a
// complete list before application code sees it.
package adapt

import (
	"strconv"
	"strings"

	"github.com/valyala/fasthttp"

	"github.com/h2core/stream2/headerval"
)

// ToRequest copies a validated request header list onto req.
func ToRequest(fields headerval.List, req *fasthttp.Request) {
	for _, f := range fields {
		if !strings.HasPrefix(f.Name, ":") {
			req.Header.Add(f.Name, f.Value)
			continue
		}

		switch f.Name {
		case ":method":
			req.Header.SetMethod(f.Value)
		case ":path":
			req.SetRequestURI(f.Value)
		case ":scheme":
			req.URI().SetScheme(f.Value)
		case ":authority":
			req.URI().SetHost(f.Value)
			req.Header.Set("Host", f.Value)
		}
	}
}

// ToResponseHeaders renders a fasthttp.Response's status and headers
// into a headerval.List suitable for HPACK encoding, the write-side
// rendering a server uses for its response header block.
func ToResponseHeaders(res *fasthttp.Response) headerval.List {
	out := make(headerval.List, 0, 8)
	out = append(out, headerval.Field{Name: ":status", Value: strconv.Itoa(res.StatusCode())})

	if cl := res.Header.ContentLength(); cl >= 0 {
		out = append(out, headerval.Field{Name: "content-length", Value: strconv.Itoa(cl)})
	}

	res.Header.VisitAll(func(k, v []byte) {
		name := strings.ToLower(string(k))
		if name == "content-length" || name == "connection" {
			return
		}
		out = append(out, headerval.Field{Name: name, Value: string(v)})
	})

	return out
}

// ToRequestHeaders is the write-side counterpart used by a client: it
// renders a fasthttp.Request into the first header block of an
// outbound stream.
func ToRequestHeaders(req *fasthttp.Request) headerval.List {
	out := make(headerval.List, 0, 8)
	out = append(out,
		headerval.Field{Name: ":method", Value: string(req.Header.Method())},
		headerval.Field{Name: ":scheme", Value: string(req.URI().Scheme())},
		headerval.Field{Name: ":path", Value: string(req.URI().RequestURI())},
		headerval.Field{Name: ":authority", Value: string(req.URI().Host())},
	)

	req.Header.VisitAll(func(k, v []byte) {
		name := strings.ToLower(string(k))
		if name == "host" || name == "connection" {
			return
		}
		out = append(out, headerval.Field{Name: name, Value: string(v)})
	})

	return out
}
