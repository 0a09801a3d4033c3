package flowctl

import (
	"context"
	"testing"
	"time"
)

func TestChargeWithinWindowSucceeds(t *testing.T) {
	w := NewWindow(100)
	ctx := context.Background()
	if !w.Charge(ctx, 60) {
		t.Fatal("Charge(60) on window of 100 should succeed")
	}
	if w.Available() != 40 {
		t.Fatalf("Available() = %d; want 40", w.Available())
	}
}

func TestChargeBlocksUntilCredited(t *testing.T) {
	w := NewWindow(0)
	done := make(chan bool, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		done <- w.Charge(ctx, 10)
	}()

	time.Sleep(20 * time.Millisecond)
	if err := w.Credit(10); err != nil {
		t.Fatalf("Credit: %v", err)
	}

	select {
	case ok := <-done:
		if !ok {
			t.Fatal("Charge should have succeeded once credited")
		}
	case <-time.After(time.Second):
		t.Fatal("Charge never returned after Credit")
	}
}

func TestChargeTimesOutOnContext(t *testing.T) {
	w := NewWindow(0)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if w.Charge(ctx, 1) {
		t.Fatal("Charge should fail: no credit and context expires")
	}
}

func TestCreditOverflowRejected(t *testing.T) {
	w := NewWindow(MaxWindow - 5)
	if err := w.Credit(10); err != ErrWindowOverflow {
		t.Fatalf("Credit overflow = %v; want ErrWindowOverflow", err)
	}
	if w.Available() != MaxWindow-5 {
		t.Fatal("Credit should not have applied a partial increment on overflow")
	}
}

func TestSetInitialCanGoNegative(t *testing.T) {
	w := NewWindow(100)
	w.SetInitial(-150)
	if w.Available() != -50 {
		t.Fatalf("Available() = %d; want -50", w.Available())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if w.Charge(ctx, 1) {
		t.Fatal("Charge should block while window is negative")
	}
}

func TestReserveNeverBlocks(t *testing.T) {
	w := NewWindow(30)
	got := w.Reserve(100)
	if got != 30 {
		t.Fatalf("Reserve(100) on window of 30 = %d; want 30", got)
	}
	if w.Available() != 0 {
		t.Fatalf("Available() after full reserve = %d; want 0", w.Available())
	}
	if got := w.Reserve(5); got != 0 {
		t.Fatalf("Reserve on empty window = %d; want 0", got)
	}
}

func TestLedgerPerStreamIndependence(t *testing.T) {
	l := NewLedger(DefaultInitialWindow, DefaultInitialWindow)
	sendA, _ := l.Stream(1)
	sendB, _ := l.Stream(3)

	sendA.Reserve(1000)
	if sendB.Available() != DefaultInitialWindow {
		t.Fatal("charging stream A's window must not affect stream B's")
	}
}

func TestLedgerShiftInitialSendAppliesToOpenStreams(t *testing.T) {
	l := NewLedger(DefaultInitialWindow, DefaultInitialWindow)
	send, _ := l.Stream(1)

	l.ShiftInitialSend(DefaultInitialWindow / 2)

	if send.Available() != DefaultInitialWindow/2 {
		t.Fatalf("Available() after shift = %d; want %d", send.Available(), DefaultInitialWindow/2)
	}
}
