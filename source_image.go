// source_image.go - Still image replayed as a video feed

package main

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"time"

	_ "golang.org/x/image/bmp"
)

// ImageSource decodes one image and yields it at a fixed rate. Loops bounds
// the number of frames; 0 repeats forever.
type ImageSource struct {
	img      image.Image
	interval time.Duration
	loops    int
	served   int
	last     time.Time
}

// OpenImageSource decodes path (bmp, png or jpeg).
func OpenImageSource(path string, fps, loops int) (*ImageSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, newFBError(ErrCaptureSource, "open", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, newFBError(ErrCaptureSource, "decode", path, err)
	}
	return NewImageSource(img, fps, loops), nil
}

// NewImageSource wraps an already decoded image.
func NewImageSource(img image.Image, fps, loops int) *ImageSource {
	var interval time.Duration
	if fps > 0 {
		interval = time.Second / time.Duration(fps)
	}
	return &ImageSource{img: img, interval: interval, loops: loops}
}

func (s *ImageSource) NextFrame(ctx context.Context) (image.Image, error) {
	if s.img == nil {
		return nil, newFBError(ErrCaptureSource, "next frame", "source closed", io.EOF)
	}
	if s.loops > 0 && s.served >= s.loops {
		return nil, io.EOF
	}
	if s.interval > 0 && !s.last.IsZero() {
		wait := time.Until(s.last.Add(s.interval))
		if wait > 0 {
			t := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				t.Stop()
				return nil, ctx.Err()
			case <-t.C:
			}
		}
	}
	s.last = time.Now()
	s.served++
	return s.img, nil
}

func (s *ImageSource) Close() error {
	s.img = nil
	return nil
}

func (s *ImageSource) String() string {
	if s.img == nil {
		return "image (closed)"
	}
	b := s.img.Bounds()
	return fmt.Sprintf("image %dx%d", b.Dx(), b.Dy())
}
