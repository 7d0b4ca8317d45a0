// render_loop.go - Capture, composite, display, poll keys

/*
(c) 2024 - 2026 Zayn Otley
License: GPLv3 or later
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// KeyBindings maps single keys to loop actions. Matching ignores ASCII case.
type KeyBindings struct {
	Save byte
	Quit byte
}

func DefaultKeyBindings() KeyBindings {
	return KeyBindings{Save: DEFAULT_SAVE_KEY, Quit: DEFAULT_QUIT_KEY}
}

func asciiLower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

func (k KeyBindings) isSave(b byte) bool { return asciiLower(b) == asciiLower(k.Save) }
func (k KeyBindings) isQuit(b byte) bool { return asciiLower(b) == asciiLower(k.Quit) }

type RenderLoopConfig struct {
	Source     FrameSource
	Compositor *FrameCompositor
	Surface    RowWriter
	Keys       KeySource
	Sessions   *CaptureSessionManager
	Session    *Session
	Bindings   KeyBindings
	FrameDelay time.Duration
	Logger     *zap.Logger
}

// RenderStats is a snapshot of loop counters.
type RenderStats struct {
	Frames uint64
	Shots  uint64
}

// RenderLoop drives one frame per iteration from source to surface.
type RenderLoop struct {
	cfg    RenderLoopConfig
	logger *zap.Logger

	frames atomic.Uint64
	shots  atomic.Uint64
}

func NewRenderLoop(cfg RenderLoopConfig) (*RenderLoop, error) {
	if cfg.Source == nil || cfg.Compositor == nil || cfg.Surface == nil {
		return nil, errors.New("render loop needs a source, compositor and surface")
	}
	if cfg.Bindings == (KeyBindings{}) {
		cfg.Bindings = DefaultKeyBindings()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RenderLoop{
		cfg:    cfg,
		logger: logger.With(zap.String("component", "render_loop")),
	}, nil
}

// Stats is safe to call from any goroutine.
func (l *RenderLoop) Stats() RenderStats {
	return RenderStats{Frames: l.frames.Load(), Shots: l.shots.Load()}
}

// Run loops until the quit key, end of stream, a capture error, ctx
// cancellation, or surface release. Only compositor and display failures
// other than release are returned as errors.
func (l *RenderLoop) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			l.logger.Debug("context done, stopping")
			return nil
		}

		frame, err := l.cfg.Source.NextFrame(ctx)
		if err != nil {
			switch {
			case ctx.Err() != nil:
				l.logger.Debug("context done during capture")
			case errors.Is(err, io.EOF):
				l.logger.Info("capture source exhausted")
			default:
				l.logger.Error("failed to capture frame", zap.Error(captureError(err)))
			}
			return nil
		}

		out, err := l.cfg.Compositor.Composite(frame)
		if err != nil {
			return fmt.Errorf("composite frame %d: %w", l.frames.Load(), err)
		}
		if err := l.cfg.Compositor.Blit(out, l.cfg.Surface); err != nil {
			if errors.Is(err, ErrSurfaceReleased) {
				l.logger.Debug("surface released, stopping")
				return nil
			}
			return fmt.Errorf("blit frame %d: %w", l.frames.Load(), err)
		}
		l.frames.Add(1)

		if l.cfg.Keys != nil {
			if key, ok := l.cfg.Keys.PollKey(); ok {
				switch {
				case l.cfg.Bindings.isSave(key):
					l.saveShot(frame)
				case l.cfg.Bindings.isQuit(key):
					l.logger.Info("quit key pressed")
					return nil
				}
			}
		}

		if l.cfg.FrameDelay > 0 {
			t := time.NewTimer(l.cfg.FrameDelay)
			select {
			case <-ctx.Done():
				t.Stop()
			case <-t.C:
			}
		}
	}
}

// saveShot persists the frame as captured, before letterboxing.
func (l *RenderLoop) saveShot(frame image.Image) {
	if l.cfg.Sessions == nil || l.cfg.Session == nil {
		l.logger.Warn("save key pressed but no capture session")
		return
	}
	path, err := l.cfg.Sessions.SaveShot(l.cfg.Session, frame)
	if err != nil {
		l.logger.Warn("screenshot not saved", zap.Error(err))
		return
	}
	l.shots.Add(1)
	l.logger.Info("saved screenshot", zap.String("path", path))
}

// captureError tags a source failure as a capture error unless it already is.
func captureError(err error) error {
	if errors.Is(err, ErrCaptureSource) {
		return err
	}
	return newFBError(ErrCaptureSource, "next frame", "", err)
}
