package main

import (
	"os"
	"testing"
)

func newPipeKeyboard(t *testing.T) (*KeyboardInput, *os.File) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	t.Cleanup(func() {
		r.Close()
		w.Close()
	})
	k := NewKeyboardInput(r)
	if err := k.Engage(); err != nil {
		t.Fatalf("Engage: %v", err)
	}
	t.Cleanup(k.Restore)
	return k, w
}

func TestKeyboardInput_NoKeyDoesNotBlock(t *testing.T) {
	k, _ := newPipeKeyboard(t)
	if key, ok := k.PollKey(); ok {
		t.Fatalf("expected no key, got %q", key)
	}
}

func TestKeyboardInput_ReadsOneKeyPerPoll(t *testing.T) {
	k, w := newPipeKeyboard(t)
	if _, err := w.Write([]byte("cq")); err != nil {
		t.Fatalf("write: %v", err)
	}

	for _, want := range []byte("cq") {
		key, ok := k.PollKey()
		if !ok || key != want {
			t.Fatalf("expected %q, got %q (ok=%v)", want, key, ok)
		}
	}
	if key, ok := k.PollKey(); ok {
		t.Fatalf("expected no more keys, got %q", key)
	}
}

func TestKeyboardInput_RestoreIdempotent(t *testing.T) {
	k, _ := newPipeKeyboard(t)
	k.Restore()
	k.Restore()
	if k.nonblockSet {
		t.Fatal("expected non-blocking mode cleared after Restore")
	}
}
