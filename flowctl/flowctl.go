// Package flowctl implements the flow-control credit ledger of
// RFC 7540 §6.9: a signed window per stream and per connection,
// charged as DATA is sent and credited as WINDOW_UPDATE arrives,
// capped at 2^31-1 and permitted to go negative when SETTINGS shrinks
// the initial window underneath already-inflight data (§6.9.2).
package flowctl

import (
	"context"
	"errors"
	"sync"
)

// MaxWindow is the largest legal window size (RFC 7540 §6.9.1).
const MaxWindow = 1<<31 - 1

// DefaultInitialWindow is SETTINGS_INITIAL_WINDOW_SIZE's default
// (RFC 7540 §6.5.2).
const DefaultInitialWindow = 1<<16 - 1

// ErrWindowOverflow is returned by Credit when an increment would push
// the window above MaxWindow (RFC 7540 §6.9.1, a FLOW_CONTROL_ERROR).
var ErrWindowOverflow = errors.New("flowctl: window increment overflows 2^31-1")

// Window is one direction's credit ledger for one entity (a stream or
// the connection as a whole). Charge blocks until enough credit is
// available or the context is done, using a condition variable paired
// between the writer goroutine and WINDOW_UPDATE arrivals.
type Window struct {
	mu    sync.Mutex
	cond  *sync.Cond
	size  int64
	closed bool
}

// NewWindow creates a ledger starting at initial credits. initial may
// legally be negative only via SetInitial's shrink path; NewWindow
// itself takes the non-negative starting value.
func NewWindow(initial uint32) *Window {
	w := &Window{size: int64(initial)}
	w.cond = sync.NewCond(&w.mu)
	return w
}

// Available returns the current credit, which may be negative.
func (w *Window) Available() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

// Credit adds n octets of credit, as a WINDOW_UPDATE does. It returns
// ErrWindowOverflow without applying the increment if doing so would
// exceed MaxWindow (a stream or connection error per §6.9.1, left for
// the caller to turn into the right scope).
func (w *Window) Credit(n uint32) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.size+int64(n) > MaxWindow {
		return ErrWindowOverflow
	}
	w.size += int64(n)
	w.cond.Broadcast()
	return nil
}

// Charge blocks until at least n octets of credit are available (or
// the window is negative-but-draining below n), then deducts n and
// returns. It returns false if ctx is done or the window is closed
// before enough credit arrives.
func (w *Window) Charge(ctx context.Context, n uint32) bool {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			w.cond.Broadcast()
		case <-stop:
		}
	}()

	w.mu.Lock()
	defer w.mu.Unlock()
	for w.size < int64(n) && !w.closed && ctx.Err() == nil {
		w.cond.Wait()
	}
	if w.closed || ctx.Err() != nil {
		return false
	}
	w.size -= int64(n)
	return true
}

// Reserve attempts to deduct up to n octets without blocking, and
// returns how much it actually reserved (which may be less than n, or
// zero). Used when a writer wants to drain whatever credit exists
// right now rather than wait for the rest (§4.3 partial-send case).
func (w *Window) Reserve(n uint32) uint32 {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.size <= 0 {
		return 0
	}
	got := n
	if int64(got) > w.size {
		got = uint32(w.size)
	}
	w.size -= int64(got)
	return got
}

// SetInitial applies a SETTINGS_INITIAL_WINDOW_SIZE change, shifting
// every stream's window by the delta between old and new (RFC 7540
// §6.9.2). The shift can drive size negative; Charge simply keeps
// blocking in that case until enough WINDOW_UPDATEs bring it positive
// again.
func (w *Window) SetInitial(delta int64) {
	w.mu.Lock()
	w.size += delta
	w.mu.Unlock()
	w.cond.Broadcast()
}

// Close unblocks any pending Charge, used when the stream is reset or
// the connection is shutting down.
func (w *Window) Close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	w.cond.Broadcast()
}
