// fb_device.go - Framebuffer device collaborators

/*
(c) 2024 - 2026 Zayn Otley
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"io"
)

// Mapper is the memory-mapping collaborator.
type Mapper interface {
	Mmap(length int) ([]byte, error)
	Munmap(mem []byte) error
}

// FramebufferDevice is an open display device handle.
type FramebufferDevice interface {
	GeometryQuerier
	Mapper
	io.Closer
}

// Predefined device backend types
const (
	FB_BACKEND_FBDEV    = iota // Linux /dev/fbN
	FB_BACKEND_HEADLESS        // Heap-backed, no hardware
)

// OpenFramebufferDevice opens the device for the given backend. path is the
// device node for FB_BACKEND_FBDEV and a WxHxBPP[+stride] geometry for
// FB_BACKEND_HEADLESS.
func OpenFramebufferDevice(backend int, path string) (FramebufferDevice, error) {
	switch backend {
	case FB_BACKEND_FBDEV:
		return openFBDev(path)
	case FB_BACKEND_HEADLESS:
		spec, err := ParseHeadlessGeometry(path)
		if err != nil {
			return nil, err
		}
		return NewHeadlessFramebuffer(spec), nil
	}
	return nil, newFBError(ErrDeviceQuery, "open", fmt.Sprintf("unknown backend type: %d", backend), nil)
}
