// fb_test_helpers_test.go - Shared fixtures for pipeline tests

package main

import (
	"context"
	"image"
	"image/color"
	"io"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"golang.org/x/image/bmp"
)

// mapHeadless opens a headless device for spec and maps its surface.
func mapHeadless(t *testing.T, spec string) (*HeadlessFramebuffer, DeviceGeometry, *MappedSurface) {
	t.Helper()
	hs, err := ParseHeadlessGeometry(spec)
	if err != nil {
		t.Fatalf("ParseHeadlessGeometry(%q): %v", spec, err)
	}
	dev := NewHeadlessFramebuffer(hs)
	geom, err := DiscoverGeometry(dev)
	if err != nil {
		t.Fatalf("DiscoverGeometry: %v", err)
	}
	surface, err := MapSurface(dev, geom)
	if err != nil {
		t.Fatalf("MapSurface: %v", err)
	}
	return dev, geom, surface
}

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	return img
}

var (
	white = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	red   = color.RGBA{0xFF, 0x00, 0x00, 0xFF}
)

// scriptedKeys returns keys[i] on poll i; polls past the end return nothing.
type scriptedKeys struct {
	mu    sync.Mutex
	keys  map[int]byte
	polls int
}

func (s *scriptedKeys) PollKey() (byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.keys[s.polls]
	s.polls++
	return k, ok
}

// scriptedFrames yields frames in order then err (io.EOF when nil).
type scriptedFrames struct {
	frames []image.Image
	err    error
	next   int
	closed bool
}

func (s *scriptedFrames) NextFrame(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.next >= len(s.frames) {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}
	f := s.frames[s.next]
	s.next++
	return f, nil
}

func (s *scriptedFrames) Close() error {
	s.closed = true
	return nil
}

// repeatFrames makes n references to img.
func repeatFrames(img image.Image, n int) []image.Image {
	out := make([]image.Image, n)
	for i := range out {
		out[i] = img
	}
	return out
}

func rgba(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 0xFF}
}

func decodeBMPFromFs(t *testing.T, fs afero.Fs, path string) image.Image {
	t.Helper()
	f, err := fs.Open(path)
	if err != nil {
		t.Fatalf("Open(%s): %v", path, err)
	}
	defer f.Close()
	img, err := bmp.Decode(f)
	if err != nil {
		t.Fatalf("bmp.Decode(%s): %v", path, err)
	}
	return img
}
