package assembler

import (
	"bytes"
	"testing"
)

func TestBeginFinishSingleFrame(t *testing.T) {
	a := New()
	if err := a.Begin(1, []byte("hello")); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	got, err := a.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if !bytes.Equal(got, []byte("hello")) {
		t.Fatalf("Finish() = %q; want hello", got)
	}
	if a.BlockCount(1) != 1 {
		t.Fatalf("BlockCount(1) = %d; want 1", a.BlockCount(1))
	}
}

func TestBlockCountIsPerStream(t *testing.T) {
	a := New()
	must(t, a.Begin(1, []byte("req-1")))
	if _, err := a.Finish(); err != nil {
		t.Fatalf("Finish stream 1: %v", err)
	}
	must(t, a.Begin(3, []byte("req-2")))
	if _, err := a.Finish(); err != nil {
		t.Fatalf("Finish stream 3: %v", err)
	}

	if got := a.BlockCount(1); got != 1 {
		t.Fatalf("BlockCount(1) = %d; want 1", got)
	}
	if got := a.BlockCount(3); got != 1 {
		t.Fatalf("BlockCount(3) = %d; want 1 (independent of stream 1)", got)
	}
}

func TestForgetDropsStreamBlockCount(t *testing.T) {
	a := New()
	must(t, a.Begin(1, []byte("hello")))
	if _, err := a.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	a.Forget(1)
	if got := a.BlockCount(1); got != 0 {
		t.Fatalf("BlockCount(1) after Forget = %d; want 0", got)
	}
}

func TestAppendAcrossContinuationFrames(t *testing.T) {
	a := New()
	must(t, a.Begin(1, []byte("ab")))
	must(t, a.Append([]byte("cd")))
	must(t, a.Append([]byte("ef")))

	got, err := a.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if string(got) != "abcdef" {
		t.Fatalf("Finish() = %q; want abcdef", got)
	}
}

func TestAppendWithoutBeginFails(t *testing.T) {
	a := New()
	if err := a.Append([]byte("x")); err != ErrNotInProgress {
		t.Fatalf("Append without Begin = %v; want ErrNotInProgress", err)
	}
}

func TestBeginWhileActiveFails(t *testing.T) {
	a := New()
	must(t, a.Begin(1, nil))
	if err := a.Begin(2, nil); err != ErrNotInProgress {
		t.Fatalf("second Begin while active = %v; want ErrNotInProgress", err)
	}
}

func TestOversizeBlockRejected(t *testing.T) {
	a := New()
	if err := a.Begin(1, make([]byte, MaxHeaderBlockSize+1)); err != ErrTooLarge {
		t.Fatalf("Begin with oversize fragment = %v; want ErrTooLarge", err)
	}
}

func TestOversizeAccumulationRejected(t *testing.T) {
	a := New()
	must(t, a.Begin(1, make([]byte, MaxHeaderBlockSize-1)))
	if err := a.Append(make([]byte, 2)); err != ErrTooLarge {
		t.Fatalf("Append pushing past cap = %v; want ErrTooLarge", err)
	}
}

func TestActiveReportsStream(t *testing.T) {
	a := New()
	if _, ok := a.Active(); ok {
		t.Fatal("Active() should be false before Begin")
	}
	must(t, a.Begin(9, nil))
	stream, ok := a.Active()
	if !ok || stream != 9 {
		t.Fatalf("Active() = %d, %v; want 9, true", stream, ok)
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
