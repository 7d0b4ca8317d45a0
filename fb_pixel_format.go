// fb_pixel_format.go - Destination pixel encodings

/*
(c) 2024 - 2026 Zayn Otley
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"image"
)

type PixelFormat int

const (
	PixelFormatRGB565   PixelFormat = iota // 16bpp, little-endian RRRRRGGG GGGBBBBB
	PixelFormatBGR888                      // 24bpp, B G R
	PixelFormatBGRA8888                    // 32bpp, B G R A(0xFF)
)

// PixelFormatForDepth maps a reported bit depth to an encoding. Anything
// outside {16, 24, 32} is an error, never a passthrough.
func PixelFormatForDepth(bitsPerPixel int) (PixelFormat, error) {
	switch bitsPerPixel {
	case 16:
		return PixelFormatRGB565, nil
	case 24:
		return PixelFormatBGR888, nil
	case 32:
		return PixelFormatBGRA8888, nil
	}
	return 0, newFBError(ErrUnsupportedFormat, "pixel format", fmt.Sprintf("%d bits per pixel", bitsPerPixel), nil)
}

func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case PixelFormatRGB565:
		return 2
	case PixelFormatBGR888:
		return 3
	case PixelFormatBGRA8888:
		return 4
	}
	return 0
}

func (f PixelFormat) String() string {
	switch f {
	case PixelFormatRGB565:
		return "RGB565"
	case PixelFormatBGR888:
		return "BGR888"
	case PixelFormatBGRA8888:
		return "BGRA8888"
	}
	return fmt.Sprintf("PixelFormat(%d)", int(f))
}

// CompositedFrame is a tightly packed destination-shaped pixel buffer.
type CompositedFrame struct {
	Width  int
	Height int
	Format PixelFormat
	Pix    []byte
}

// Row returns the packed bytes of row y.
func (f *CompositedFrame) Row(y int) []byte {
	n := f.Width * f.Format.BytesPerPixel()
	return f.Pix[y*n : (y+1)*n]
}

// encodeCanvas converts an RGBA canvas to the destination encoding.
func encodeCanvas(canvas *image.RGBA, format PixelFormat) (*CompositedFrame, error) {
	bpp := format.BytesPerPixel()
	if bpp == 0 {
		return nil, newFBError(ErrUnsupportedFormat, "convert", format.String(), nil)
	}
	w, h := canvas.Rect.Dx(), canvas.Rect.Dy()
	out := &CompositedFrame{
		Width:  w,
		Height: h,
		Format: format,
		Pix:    make([]byte, w*h*bpp),
	}

	for y := 0; y < h; y++ {
		src := canvas.Pix[y*canvas.Stride : y*canvas.Stride+w*4]
		dst := out.Pix[y*w*bpp : (y+1)*w*bpp]
		switch format {
		case PixelFormatRGB565:
			for x := 0; x < w; x++ {
				r, g, b := src[x*4], src[x*4+1], src[x*4+2]
				v := uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
				dst[x*2] = byte(v)
				dst[x*2+1] = byte(v >> 8)
			}
		case PixelFormatBGR888:
			for x := 0; x < w; x++ {
				dst[x*3] = src[x*4+2]
				dst[x*3+1] = src[x*4+1]
				dst[x*3+2] = src[x*4]
			}
		case PixelFormatBGRA8888:
			for x := 0; x < w; x++ {
				dst[x*4] = src[x*4+2]
				dst[x*4+1] = src[x*4+1]
				dst[x*4+2] = src[x*4]
				dst[x*4+3] = 0xFF
			}
		}
	}
	return out, nil
}
