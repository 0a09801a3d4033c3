package flowctl

import "sync"

// Ledger owns the full set of windows for one connection: one
// connection-level window plus one per stream, each direction tracked
// independently since inbound and outbound credit are unrelated
// (RFC 7540 §6.9).
type Ledger struct {
	mu sync.Mutex

	connSend *Window
	connRecv *Window
	send     map[uint32]*Window
	recv     map[uint32]*Window

	initialSend uint32
	initialRecv uint32
}

// NewLedger creates a Ledger with the given initial per-stream window
// sizes for each direction; the connection-level window always starts
// at DefaultInitialWindow regardless, since SETTINGS_INITIAL_WINDOW_SIZE
// only ever applies to streams (RFC 7540 §6.9.2).
func NewLedger(initialSend, initialRecv uint32) *Ledger {
	return &Ledger{
		connSend:    NewWindow(DefaultInitialWindow),
		connRecv:    NewWindow(DefaultInitialWindow),
		send:        make(map[uint32]*Window),
		recv:        make(map[uint32]*Window),
		initialSend: initialSend,
		initialRecv: initialRecv,
	}
}

// Conn returns the connection-level send and receive windows.
func (l *Ledger) Conn() (send, recv *Window) { return l.connSend, l.connRecv }

// Stream returns (creating if necessary) the send and receive windows
// for id.
func (l *Ledger) Stream(id uint32) (send, recv *Window) {
	l.mu.Lock()
	defer l.mu.Unlock()

	send, ok := l.send[id]
	if !ok {
		send = NewWindow(l.initialSend)
		l.send[id] = send
	}
	recv, ok = l.recv[id]
	if !ok {
		recv = NewWindow(l.initialRecv)
		l.recv[id] = recv
	}
	return send, recv
}

// Forget closes and drops id's windows, called once a stream is fully
// closed and will never again see DATA or WINDOW_UPDATE.
func (l *Ledger) Forget(id uint32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if w, ok := l.send[id]; ok {
		w.Close()
		delete(l.send, id)
	}
	if w, ok := l.recv[id]; ok {
		w.Close()
		delete(l.recv, id)
	}
}

// ShiftInitialSend applies a SETTINGS_INITIAL_WINDOW_SIZE change from
// the peer to every currently open stream's send window, then updates
// the default used for streams created afterward (RFC 7540 §6.9.2).
func (l *Ledger) ShiftInitialSend(newInitial uint32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delta := int64(newInitial) - int64(l.initialSend)
	l.initialSend = newInitial
	for _, w := range l.send {
		w.SetInitial(delta)
	}
}
