package frame

import "sync"

// payloadPools is a fixed table indexed by Type (0x0..0x9), one pool
// per frame type — the "fixed array of handler function pointers"
// shape the source's design notes call for, applied to allocation
// instead of dispatch (dispatch is the type switch in conn's
// Conn.dispatch).
var payloadPools [maxType + 1]*sync.Pool

func registerPayload(t Type, newFn func() interface{}) {
	payloadPools[t] = &sync.Pool{New: newFn}
}

func init() {
	registerPayload(Data, func() interface{} { return &DataFrame{} })
	registerPayload(Headers, func() interface{} { return &HeadersFrame{} })
	registerPayload(Priority, func() interface{} { return &PriorityFrame{} })
	registerPayload(RstStream, func() interface{} { return &RstStreamFrame{} })
	registerPayload(Settings, func() interface{} { return &SettingsFrame{} })
	registerPayload(PushPromise, func() interface{} { return &PushPromiseFrame{} })
	registerPayload(Ping, func() interface{} { return &PingFrame{} })
	registerPayload(GoAway, func() interface{} { return &GoAwayFrame{} })
	registerPayload(WindowUpdate, func() interface{} { return &WindowUpdateFrame{} })
	registerPayload(Continuation, func() interface{} { return &ContinuationFrame{} })
}

// AcquirePayload returns a zeroed Payload for t from its pool.
func AcquirePayload(t Type) Payload {
	p := payloadPools[t].Get().(Payload)
	p.Reset()
	return p
}

// ReleasePayload returns p to its type's pool.
func ReleasePayload(p Payload) {
	p.Reset()
	payloadPools[p.Type()].Put(p)
}

// New builds a fresh, pooled Payload of the given type — the
// application-facing constructor used by writers (conn package)
// instead of reaching into the pool table directly.
func New(t Type) Payload {
	return AcquirePayload(t)
}
