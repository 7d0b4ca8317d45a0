// lifecycle_guard.go - Process-wide teardown of mapped memory, device and terminal

/*
(c) 2024 - 2026 Zayn Otley
License: GPLv3 or later
*/

/*
LifecycleGuard tracks the resources that must be released on every exit path:

	Idle → Armed(device) → Armed(device, mapping) → Released

Release runs from the normal end of the render loop or from the signal
goroutine. Each slot is disarmed before its release runs, so a resource is
released at most once no matter how many callers race. Release is also a
barrier: a caller that arrives while another release is in flight blocks
until that release has restored the terminal.
Any subset of slots may be armed (startup can fail between steps).
*/

package main

import (
	"io"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Unmapper releases a memory mapping.
type Unmapper interface {
	Unmap() error
}

// Restorer returns the terminal to its saved mode.
type Restorer interface {
	Restore()
}

type LifecycleGuard struct {
	deviceArmed   atomic.Bool
	mappingArmed  atomic.Bool
	terminalArmed atomic.Bool

	device   io.Closer
	mapping  Unmapper
	terminal Restorer

	// slotMu pairs each armed flag with its resource; it is never held while
	// a resource is being released.
	slotMu sync.Mutex
	// releaseMu serializes whole releases.
	releaseMu sync.Mutex

	releases atomic.Uint64
	watching atomic.Int32
	exit     func(code int)
	logger   *zap.Logger
}

var lifecycle = NewLifecycleGuard(os.Exit)

// Lifecycle returns the process-wide guard.
func Lifecycle() *LifecycleGuard {
	return lifecycle
}

// NewLifecycleGuard creates a guard that calls exit after Teardown.
func NewLifecycleGuard(exit func(code int)) *LifecycleGuard {
	return &LifecycleGuard{exit: exit, logger: zap.NewNop()}
}

func (g *LifecycleGuard) SetLogger(logger *zap.Logger) {
	g.slotMu.Lock()
	defer g.slotMu.Unlock()
	g.logger = logger.With(zap.String("component", "lifecycle"))
}

func (g *LifecycleGuard) ArmDevice(dev io.Closer) {
	g.slotMu.Lock()
	defer g.slotMu.Unlock()
	g.device = dev
	g.deviceArmed.Store(true)
}

func (g *LifecycleGuard) ArmMapping(m Unmapper) {
	g.slotMu.Lock()
	defer g.slotMu.Unlock()
	g.mapping = m
	g.mappingArmed.Store(true)
}

func (g *LifecycleGuard) ArmTerminal(r Restorer) {
	g.slotMu.Lock()
	defer g.slotMu.Unlock()
	g.terminal = r
	g.terminalArmed.Store(true)
}

func (g *LifecycleGuard) DeviceArmed() bool   { return g.deviceArmed.Load() }
func (g *LifecycleGuard) MappingArmed() bool  { return g.mappingArmed.Load() }
func (g *LifecycleGuard) TerminalArmed() bool { return g.terminalArmed.Load() }

// Watching reports whether a HandleSignals handler is attached.
func (g *LifecycleGuard) Watching() bool {
	return g.watching.Load() > 0
}

// Releases counts individual resource releases performed.
func (g *LifecycleGuard) Releases() uint64 {
	return g.releases.Load()
}

// Release unmaps, closes the device, then restores the terminal, skipping any
// slot that is not armed. Safe to call repeatedly and concurrently; no call
// returns while another is still releasing.
func (g *LifecycleGuard) Release() {
	g.releaseMu.Lock()
	defer g.releaseMu.Unlock()

	var (
		device   io.Closer
		mapping  Unmapper
		terminal Restorer
	)
	g.slotMu.Lock()
	if g.mappingArmed.CompareAndSwap(true, false) {
		mapping = g.mapping
	}
	if g.deviceArmed.CompareAndSwap(true, false) {
		device = g.device
	}
	if g.terminalArmed.CompareAndSwap(true, false) {
		terminal = g.terminal
	}
	logger := g.logger
	g.slotMu.Unlock()

	// Reverse acquisition order.
	if mapping != nil {
		if err := mapping.Unmap(); err != nil {
			logger.Warn("munmap failed", zap.Error(err))
		}
		g.releases.Add(1)
	}
	if device != nil {
		if err := device.Close(); err != nil {
			logger.Warn("device close failed", zap.Error(err))
		}
		g.releases.Add(1)
	}
	if terminal != nil {
		terminal.Restore()
		g.releases.Add(1)
	}
}

// Teardown releases everything and terminates the process with code.
func (g *LifecycleGuard) Teardown(code int) {
	g.Release()
	g.exit(code)
}

// Supervise runs fn with sigs diverted to Teardown(0), then releases every
// armed slot before detaching the handler, so no signal can slip between the
// end of fn and the release.
func (g *LifecycleGuard) Supervise(fn func() error, sigs ...os.Signal) error {
	stop := g.HandleSignals(sigs...)
	err := fn()
	g.Release()
	stop()
	return err
}

// HandleSignals diverts the given signals to Teardown(0). The returned stop
// function detaches the handler without tearing down.
func (g *LifecycleGuard) HandleSignals(sigs ...os.Signal) (stop func()) {
	ch := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(ch, sigs...)

	go func() {
		select {
		case sig := <-ch:
			g.slotMu.Lock()
			logger := g.logger
			g.slotMu.Unlock()
			logger.Info("received signal, cleaning up", zap.String("signal", sig.String()))
			g.Teardown(0)
		case <-done:
		}
	}()

	g.watching.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(ch)
			close(done)
			g.watching.Add(-1)
		})
	}
}
