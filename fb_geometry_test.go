package main

import (
	"errors"
	"testing"
)

func TestDiscoverGeometry_PaddedStride(t *testing.T) {
	dev := NewHeadlessFramebuffer(HeadlessSpec{Width: 800, Height: 480, BitsPerPixel: 16, Stride: 1664})
	geom, err := DiscoverGeometry(dev)
	if err != nil {
		t.Fatalf("DiscoverGeometry returned error: %v", err)
	}
	if geom.VisibleWidth != 800 || geom.VisibleHeight != 480 {
		t.Fatalf("expected 800x480, got %dx%d", geom.VisibleWidth, geom.VisibleHeight)
	}
	if geom.RowStrideBytes != 1664 {
		t.Fatalf("expected stride 1664, got %d", geom.RowStrideBytes)
	}
	if geom.VisibleRowBytes() != 1600 {
		t.Fatalf("expected 1600 visible row bytes, got %d", geom.VisibleRowBytes())
	}
	if geom.MappedLength != 1664*480 {
		t.Fatalf("expected mapped length %d, got %d", 1664*480, geom.MappedLength)
	}
}

func TestDiscoverGeometry_ZeroSmemLenFallsBack(t *testing.T) {
	dev := NewHeadlessFramebuffer(HeadlessSpec{Width: 320, Height: 240, BitsPerPixel: 32, VirtualHeight: 480, ZeroLength: true})
	geom, err := DiscoverGeometry(dev)
	if err != nil {
		t.Fatalf("DiscoverGeometry returned error: %v", err)
	}
	want := 480 * 320 * 4
	if geom.MappedLength != want {
		t.Fatalf("expected fallback length %d, got %d", want, geom.MappedLength)
	}
}

func TestDiscoverGeometry_QueryFailures(t *testing.T) {
	cause := errors.New("ioctl: inappropriate ioctl for device")

	dev := NewHeadlessFramebuffer(HeadlessSpec{Width: 8, Height: 8, BitsPerPixel: 16})
	dev.FailVar = cause
	if _, err := DiscoverGeometry(dev); !errors.Is(err, ErrDeviceQuery) || !errors.Is(err, cause) {
		t.Fatalf("expected DeviceQuery wrapping cause for var info, got %v", err)
	}

	dev = NewHeadlessFramebuffer(HeadlessSpec{Width: 8, Height: 8, BitsPerPixel: 16})
	dev.FailFix = cause
	if _, err := DiscoverGeometry(dev); !errors.Is(err, ErrDeviceQuery) || !errors.Is(err, cause) {
		t.Fatalf("expected DeviceQuery wrapping cause for fix info, got %v", err)
	}
}

func TestDeviceGeometry_Validate(t *testing.T) {
	ok := DeviceGeometry{
		VisibleWidth: 4, VisibleHeight: 2, VirtualWidth: 4, VirtualHeight: 2,
		BitsPerPixel: 16, RowStrideBytes: 8, MappedLength: 16,
	}
	if err := ok.Validate(); err != nil {
		t.Fatalf("expected valid geometry, got %v", err)
	}

	cases := map[string]func(g *DeviceGeometry){
		"zero bpp":     func(g *DeviceGeometry) { g.BitsPerPixel = 0 },
		"short stride": func(g *DeviceGeometry) { g.RowStrideBytes = 6 },
		"short length": func(g *DeviceGeometry) { g.MappedLength = 15 },
		"empty width":  func(g *DeviceGeometry) { g.VisibleWidth = 0 },
	}
	for name, mutate := range cases {
		g := ok
		mutate(&g)
		if err := g.Validate(); !errors.Is(err, ErrDeviceQuery) {
			t.Fatalf("%s: expected ErrDeviceQuery, got %v", name, err)
		}
	}
}

func TestDeviceGeometry_BytesPerPixelRoundsUp(t *testing.T) {
	for bits, want := range map[int]int{15: 2, 16: 2, 24: 3, 32: 4, 12: 2} {
		g := DeviceGeometry{BitsPerPixel: bits}
		if got := g.BytesPerPixel(); got != want {
			t.Fatalf("expected %d bytes for %d bits, got %d", want, bits, got)
		}
	}
}
