//go:build !linux

package main

import "errors"

func init() {
	compiledFeatures = append(compiledFeatures, "capture:unavailable")
}

func OpenWebcamSource(cfg SourceConfig) (FrameSource, error) {
	return nil, newFBError(ErrCaptureSource, "open", cfg.Device, errors.New("V4L2 capture requires linux; use --image"))
}
