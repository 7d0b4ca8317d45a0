// source_decode.go - Raw camera buffer decoders

package main

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
)

// V4L2 fourcc codes
const (
	V4L2_PIX_FMT_YUYV  = 0x56595559 // 'YUYV'
	V4L2_PIX_FMT_MJPEG = 0x47504A4D // 'MJPG'
)

type frameDecoder func(width, height int, data []byte) (image.Image, error)

type frameFormat struct {
	fourcc uint32
	decode frameDecoder
}

var frameFormats = map[string]frameFormat{
	"yuyv":  {fourcc: V4L2_PIX_FMT_YUYV, decode: decodeYUYV},
	"mjpeg": {fourcc: V4L2_PIX_FMT_MJPEG, decode: decodeMJPEG},
}

func lookupFrameFormat(name string) (frameFormat, error) {
	if f, ok := frameFormats[name]; ok {
		return f, nil
	}
	return frameFormat{}, fmt.Errorf("no decoder for capture format %q", name)
}

// decodeYUYV unpacks packed Y0 U Y1 V into a 4:2:2 YCbCr image. Drivers may
// pad each line past width*2 bytes; the line stride is taken from the buffer
// length, which V4L2 sizes as bytesperline*height.
func decodeYUYV(width, height int, data []byte) (image.Image, error) {
	if width <= 0 || height <= 0 || width%2 != 0 {
		return nil, fmt.Errorf("yuyv: bad frame size %dx%d", width, height)
	}
	line := width * 2
	stride := len(data) / height
	if stride < line {
		return nil, fmt.Errorf("yuyv: short frame %d < %d", len(data), line*height)
	}
	img := image.NewYCbCr(image.Rect(0, 0, width, height), image.YCbCrSubsampleRatio422)
	for y := 0; y < height; y++ {
		row := data[y*stride : y*stride+line]
		yOff := y * img.YStride
		cOff := y * img.CStride
		for x := 0; x < width; x += 2 {
			i := x * 2
			img.Y[yOff+x] = row[i]
			img.Y[yOff+x+1] = row[i+2]
			img.Cb[cOff+x/2] = row[i+1]
			img.Cr[cOff+x/2] = row[i+3]
		}
	}
	return img, nil
}

func decodeMJPEG(_, _ int, data []byte) (image.Image, error) {
	return jpeg.Decode(bytes.NewReader(data))
}
