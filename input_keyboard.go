// input_keyboard.go - Non-blocking keystroke source for the render loop

/*
(c) 2024 - 2026 Zayn Otley
License: GPLv3 or later
*/

package main

import (
	"os"
	"sync"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// KeySource yields at most one pending keystroke per call and never blocks.
type KeySource interface {
	PollKey() (byte, bool)
}

// KeyboardInput puts a terminal into no-echo, no-line-buffering mode with
// non-blocking reads. Unlike term.MakeRaw it leaves ISIG alone so Ctrl-C still
// raises SIGINT and reaches the LifecycleGuard.
type KeyboardInput struct {
	file         *os.File
	fd           int
	oldTermState *term.State
	nonblockSet  bool
	restored     sync.Once
	buf          [1]byte
}

// NewKeyboardInput creates an input source over f (normally os.Stdin).
func NewKeyboardInput(f *os.File) *KeyboardInput {
	return &KeyboardInput{file: f, fd: int(f.Fd())}
}

// Engage switches the terminal mode and stdin to non-blocking. When f is not a
// terminal (pipe, redirected file) only the non-blocking flag is set.
func (k *KeyboardInput) Engage() error {
	if term.IsTerminal(k.fd) {
		state, err := term.GetState(k.fd)
		if err != nil {
			return err
		}
		if err := setCbreak(k.fd); err != nil {
			return err
		}
		k.oldTermState = state
	}

	if err := unix.SetNonblock(k.fd, true); err != nil {
		k.Restore()
		return err
	}
	k.nonblockSet = true
	return nil
}

// PollKey returns the next pending byte, or false when nothing is waiting.
// EAGAIN, EOF and read errors all read as "no key".
func (k *KeyboardInput) PollKey() (byte, bool) {
	n, _ := unix.Read(k.fd, k.buf[:])
	if n > 0 {
		return k.buf[0], true
	}
	return 0, false
}

// Restore puts stdin back into blocking mode and restores the saved terminal
// state. Only the first call has an effect.
func (k *KeyboardInput) Restore() {
	k.restored.Do(func() {
		if k.nonblockSet {
			_ = unix.SetNonblock(k.fd, false)
			k.nonblockSet = false
		}
		if k.oldTermState != nil {
			_ = term.Restore(k.fd, k.oldTermState)
			k.oldTermState = nil
		}
	})
}
