// fb_backend_headless.go - Heap-backed framebuffer for --headless runs and tests

package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
)

// HeadlessSpec describes the simulated display.
type HeadlessSpec struct {
	Width         int
	Height        int
	BitsPerPixel  int
	Stride        int // 0 = Width*bytes per pixel
	VirtualHeight int // 0 = Height
	ZeroLength    bool
}

// ParseHeadlessGeometry parses WxHxBPP with an optional +STRIDE suffix,
// e.g. "800x480x16" or "800x480x16+1664".
func ParseHeadlessGeometry(s string) (HeadlessSpec, error) {
	var spec HeadlessSpec
	dims, stride, hasStride := strings.Cut(strings.TrimSpace(s), "+")
	parts := strings.Split(dims, "x")
	if len(parts) != 3 {
		return spec, fmt.Errorf("headless geometry %q: want WxHxBPP[+STRIDE]", s)
	}
	vals := make([]int, 3)
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v <= 0 {
			return spec, fmt.Errorf("headless geometry %q: bad field %q", s, p)
		}
		vals[i] = v
	}
	spec.Width, spec.Height, spec.BitsPerPixel = vals[0], vals[1], vals[2]
	if hasStride {
		v, err := strconv.Atoi(stride)
		if err != nil || v <= 0 {
			return spec, fmt.Errorf("headless geometry %q: bad stride %q", s, stride)
		}
		spec.Stride = v
	}
	return spec, nil
}

// HeadlessFramebuffer implements FramebufferDevice on heap memory. The Fail*
// fields inject collaborator failures.
type HeadlessFramebuffer struct {
	spec    HeadlessSpec
	backing []byte

	FailVar  error
	FailFix  error
	FailMmap error

	mmapCalls   atomic.Uint64
	munmapCalls atomic.Uint64
	closeCalls  atomic.Uint64
}

func NewHeadlessFramebuffer(spec HeadlessSpec) *HeadlessFramebuffer {
	if spec.Stride == 0 {
		spec.Stride = spec.Width * ((spec.BitsPerPixel + 7) / 8)
	}
	if spec.VirtualHeight == 0 {
		spec.VirtualHeight = spec.Height
	}
	return &HeadlessFramebuffer{spec: spec}
}

func (h *HeadlessFramebuffer) VarScreenInfo() (VarScreenInfo, error) {
	if h.FailVar != nil {
		return VarScreenInfo{}, h.FailVar
	}
	return VarScreenInfo{
		XRes:         uint32(h.spec.Width),
		YRes:         uint32(h.spec.Height),
		XResVirtual:  uint32(h.spec.Width),
		YResVirtual:  uint32(h.spec.VirtualHeight),
		BitsPerPixel: uint32(h.spec.BitsPerPixel),
	}, nil
}

func (h *HeadlessFramebuffer) FixScreenInfo() (FixScreenInfo, error) {
	if h.FailFix != nil {
		return FixScreenInfo{}, h.FailFix
	}
	f := FixScreenInfo{LineLength: uint32(h.spec.Stride)}
	copy(f.ID[:], "headless")
	if !h.spec.ZeroLength {
		f.SmemLen = uint32(h.spec.Stride * h.spec.VirtualHeight)
	}
	return f, nil
}

func (h *HeadlessFramebuffer) Mmap(length int) ([]byte, error) {
	h.mmapCalls.Add(1)
	if h.FailMmap != nil {
		return nil, h.FailMmap
	}
	if h.backing != nil {
		return nil, errors.New("headless framebuffer already mapped")
	}
	h.backing = make([]byte, length)
	return h.backing, nil
}

func (h *HeadlessFramebuffer) Munmap(mem []byte) error {
	h.munmapCalls.Add(1)
	return nil
}

func (h *HeadlessFramebuffer) Close() error {
	h.closeCalls.Add(1)
	return nil
}

// Memory returns the backing store. It stays readable after Munmap so tests
// can inspect the last frame.
func (h *HeadlessFramebuffer) Memory() []byte {
	return h.backing
}

func (h *HeadlessFramebuffer) MmapCount() uint64   { return h.mmapCalls.Load() }
func (h *HeadlessFramebuffer) MunmapCount() uint64 { return h.munmapCalls.Load() }
func (h *HeadlessFramebuffer) CloseCount() uint64  { return h.closeCalls.Load() }
