//go:build linux

// source_webcam_linux.go - V4L2 camera source

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

	"github.com/blackjack/webcam"
)

func init() {
	compiledFeatures = append(compiledFeatures, "capture:v4l2")
}

// WebcamSource streams frames from a V4L2 device.
type WebcamSource struct {
	cam    *webcam.Webcam
	width  int
	height int
	format frameFormat
}

// OpenWebcamSource opens cfg.Device, negotiates format, size and rate, and
// starts streaming. The driver may pick a different size; the negotiated one
// is used for decoding.
func OpenWebcamSource(cfg SourceConfig) (FrameSource, error) {
	format, err := lookupFrameFormat(cfg.Format)
	if err != nil {
		return nil, newFBError(ErrCaptureSource, "open", cfg.Device, err)
	}

	cam, err := webcam.Open(cfg.Device)
	if err != nil {
		return nil, newFBError(ErrCaptureSource, "open", cfg.Device, err)
	}

	supported := cam.GetSupportedFormats()
	if _, ok := supported[webcam.PixelFormat(format.fourcc)]; !ok {
		cam.Close()
		return nil, newFBError(ErrCaptureSource, "open", cfg.Device,
			fmt.Errorf("device does not offer %s (has %v)", cfg.Format, supported))
	}

	_, w, h, err := cam.SetImageFormat(webcam.PixelFormat(format.fourcc), uint32(cfg.Width), uint32(cfg.Height))
	if err != nil {
		cam.Close()
		return nil, newFBError(ErrCaptureSource, "set format", cfg.Device, err)
	}
	applyFramerate(cam.SetFramerate, cfg.FPS, cfg.logger())
	if err := cam.StartStreaming(); err != nil {
		cam.Close()
		return nil, newFBError(ErrCaptureSource, "start streaming", cfg.Device, err)
	}

	return &WebcamSource{
		cam:    cam,
		width:  int(w),
		height: int(h),
		format: format,
	}, nil
}

// NextFrame waits in bounded slices so ctx cancellation is noticed; a wait
// timeout is a retry, not an error.
func (s *WebcamSource) NextFrame(ctx context.Context) (image.Image, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		err := s.cam.WaitForFrame(WEBCAM_WAIT_TIMEOUT)
		var timeout *webcam.Timeout
		switch {
		case err == nil:
		case errors.As(err, &timeout):
			continue
		default:
			return nil, newFBError(ErrCaptureSource, "wait for frame", "", err)
		}

		data, err := s.cam.ReadFrame()
		if err != nil {
			return nil, newFBError(ErrCaptureSource, "read frame", "", err)
		}
		if len(data) == 0 {
			continue
		}
		img, err := s.format.decode(s.width, s.height, data)
		if err != nil {
			return nil, newFBError(ErrCaptureSource, "decode", "", err)
		}
		return img, nil
	}
}

func (s *WebcamSource) Close() error {
	_ = s.cam.StopStreaming()
	return s.cam.Close()
}
