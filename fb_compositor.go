// fb_compositor.go - Letterbox compositor for framebuffer output

/*
(c) 2024 - 2026 Zayn Otley
License: GPLv3 or later
*/

/*
fb_compositor.go - Source frame to framebuffer rows

Each source frame of arbitrary size goes through four steps:

 1. Letterbox scale: scale = min(dstW/srcW, dstH/srcH), aspect preserved.
 2. Center pad: draw into a zeroed destination-sized canvas; the border
    stays black.
 3. Convert: canvas → RGB565 / BGR888 / BGRA8888 by bits per pixel.
 4. Blit: rows go out in increasing order through RowWriter.WriteRow, which
    zero-fills the full stride before copying the visible bytes.

Signal Flow:

	FrameSource ──→ Canvas ──→ Convert ──→ Blit ──→ MappedSurface
	 (any WxH)    (dstW x dstH)  (bpp)     (stride)
*/

package main

import (
	"fmt"
	"image"
	"math"
	"strings"

	"golang.org/x/image/draw"
)

// Scaler names accepted by compositor.scaler
const (
	SCALER_NEAREST         = "nearest"
	SCALER_APPROX_BILINEAR = "approx-bilinear"
	SCALER_BILINEAR        = "bilinear"
	SCALER_CATMULL_ROM     = "catmull-rom"
)

// ScalerByName resolves a configured scaling kernel.
func ScalerByName(name string) (draw.Interpolator, error) {
	switch strings.ToLower(name) {
	case SCALER_NEAREST:
		return draw.NearestNeighbor, nil
	case SCALER_APPROX_BILINEAR:
		return draw.ApproxBiLinear, nil
	case SCALER_BILINEAR, "":
		return draw.BiLinear, nil
	case SCALER_CATMULL_ROM:
		return draw.CatmullRom, nil
	}
	return nil, fmt.Errorf("unknown scaler %q", name)
}

// FrameCompositor turns source images into destination-format frames. It is
// pure apart from allocation and is only used from the render loop.
type FrameCompositor struct {
	width   int
	height  int
	format  PixelFormat
	scaler  draw.Interpolator
	resizes uint64
}

// NewFrameCompositor validates the depth up front so an unsupported format
// aborts startup instead of producing corrupt pixels later.
func NewFrameCompositor(geom DeviceGeometry, scaler draw.Interpolator) (*FrameCompositor, error) {
	format, err := PixelFormatForDepth(geom.BitsPerPixel)
	if err != nil {
		return nil, err
	}
	if scaler == nil {
		scaler = draw.BiLinear
	}
	return &FrameCompositor{
		width:  geom.VisibleWidth,
		height: geom.VisibleHeight,
		format: format,
		scaler: scaler,
	}, nil
}

// Format returns the destination encoding.
func (c *FrameCompositor) Format() PixelFormat {
	return c.format
}

// Resizes counts frames that needed scaling.
func (c *FrameCompositor) Resizes() uint64 {
	return c.resizes
}

// Letterbox returns where a srcW x srcH image lands inside dstW x dstH.
func Letterbox(srcW, srcH, dstW, dstH int) image.Rectangle {
	scale := 1.0
	if srcW > 0 && srcH > 0 {
		scale = math.Min(float64(dstW)/float64(srcW), float64(dstH)/float64(srcH))
	}
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		scale = 1.0
	}
	w := max(1, int(math.Round(float64(srcW)*scale)))
	h := max(1, int(math.Round(float64(srcH)*scale)))

	x := max(0, (dstW-w)/2)
	y := max(0, (dstH-h)/2)
	return image.Rect(x, y, x+w, y+h)
}

// Canvas letterboxes src onto a zeroed destination-sized RGBA canvas.
func (c *FrameCompositor) Canvas(src image.Image) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	sb := src.Bounds()
	target := Letterbox(sb.Dx(), sb.Dy(), c.width, c.height)

	if target.Dx() == sb.Dx() && target.Dy() == sb.Dy() {
		draw.Draw(canvas, target, src, sb.Min, draw.Src)
		return canvas
	}
	c.resizes++
	c.scaler.Scale(canvas, target, src, sb, draw.Src, nil)
	return canvas
}

// Convert encodes a canvas in the destination pixel format.
func (c *FrameCompositor) Convert(canvas *image.RGBA) (*CompositedFrame, error) {
	return encodeCanvas(canvas, c.format)
}

// Composite runs letterbox then conversion. The result is a fresh value owned
// by the caller.
func (c *FrameCompositor) Composite(src image.Image) (*CompositedFrame, error) {
	return c.Convert(c.Canvas(src))
}

// Blit writes every visible row of frame in increasing row order.
func (c *FrameCompositor) Blit(frame *CompositedFrame, w RowWriter) error {
	for y := 0; y < frame.Height; y++ {
		if err := w.WriteRow(y, frame.Row(y)); err != nil {
			return err
		}
	}
	return nil
}
