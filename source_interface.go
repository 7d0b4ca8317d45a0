// source_interface.go - Capture source collaborator

package main

import (
	"context"
	"image"

	"go.uber.org/zap"
)

// FrameSource yields complete frames. NextFrame may block until a frame is
// available; it returns io.EOF at end of stream. Any error ends the render
// loop cleanly.
type FrameSource interface {
	NextFrame(ctx context.Context) (image.Image, error)
	Close() error
}

// SourceConfig is fixed at open time.
type SourceConfig struct {
	Device string
	Image  string
	Width  int
	Height int
	FPS    int
	Format string
	Loops  int
	Logger *zap.Logger
}

func (c SourceConfig) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger.With(zap.String("component", "capture"))
}

// applyFramerate requests fps from the driver. Not every driver supports
// VIDIOC_S_PARM; a refusal leaves the device default rate in place.
func applyFramerate(set func(fps float32) error, fps int, logger *zap.Logger) {
	if fps <= 0 {
		return
	}
	if err := set(float32(fps)); err != nil {
		logger.Debug("framerate not applied", zap.Int("fps", fps), zap.Error(err))
	}
}

// OpenFrameSource opens a still-image source when cfg.Image is set and the
// V4L2 camera otherwise.
func OpenFrameSource(cfg SourceConfig) (FrameSource, error) {
	if cfg.Image != "" {
		src, err := OpenImageSource(cfg.Image, cfg.FPS, cfg.Loops)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
	return OpenWebcamSource(cfg)
}
