//go:build !linux

package main

import "errors"

func init() {
	compiledFeatures = append(compiledFeatures, "fbdev:unavailable")
}

func openFBDev(path string) (FramebufferDevice, error) {
	return nil, newFBError(ErrDeviceQuery, "open", path, errors.New("fbdev requires linux; use --headless"))
}
