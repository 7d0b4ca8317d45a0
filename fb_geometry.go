// fb_geometry.go - Display geometry discovery

/*
(c) 2024 - 2026 Zayn Otley
License: GPLv3 or later
*/

/*
DeviceGeometry is queried once at startup from the two fbdev ioctls:

	FBIOGET_VSCREENINFO  visible + virtual resolution, bits per pixel
	FBIOGET_FSCREENINFO  line_length (row stride incl. padding), smem_len

Row stride may exceed VisibleWidth*BytesPerPixel. All offsets into the mapped
surface are computed from RowStrideBytes, never from the visible width.
*/

package main

import "fmt"

// FixScreenInfo mirrors struct fb_fix_screeninfo.
type FixScreenInfo struct {
	ID           [16]byte
	SmemStart    uintptr
	SmemLen      uint32
	Type         uint32
	TypeAux      uint32
	Visual       uint32
	XPanStep     uint16
	YPanStep     uint16
	YWrapStep    uint16
	LineLength   uint32
	MmioStart    uintptr
	MmioLen      uint32
	Accel        uint32
	Capabilities uint16
	Reserved     [2]uint16
}

// FBBitField mirrors struct fb_bitfield.
type FBBitField struct {
	Offset, Length, MsbRight uint32
}

// VarScreenInfo mirrors struct fb_var_screeninfo.
type VarScreenInfo struct {
	XRes, YRes                uint32
	XResVirtual, YResVirtual  uint32
	XOffset, YOffset          uint32
	BitsPerPixel, Grayscale   uint32
	Red, Green, Blue, Transp  FBBitField
	Nonstd, Activate          uint32
	Height, Width             uint32
	AccelFlags, Pixclock      uint32
	LeftMargin, RightMargin   uint32
	UpperMargin, LowerMargin  uint32
	HsyncLen, VsyncLen, Sync  uint32
	Vmode, Rotate, Colorspace uint32
	Reserved                  [4]uint32
}

// GeometryQuerier is the display geometry query collaborator.
type GeometryQuerier interface {
	VarScreenInfo() (VarScreenInfo, error)
	FixScreenInfo() (FixScreenInfo, error)
}

// DeviceGeometry holds immutable hardware display parameters.
type DeviceGeometry struct {
	VisibleWidth   int
	VisibleHeight  int
	VirtualWidth   int
	VirtualHeight  int
	BitsPerPixel   int
	RowStrideBytes int
	MappedLength   int
}

// DiscoverGeometry queries variable then fixed screen info. Any failure is fatal
// for the caller; there is no fallback geometry.
func DiscoverGeometry(q GeometryQuerier) (DeviceGeometry, error) {
	vinfo, err := q.VarScreenInfo()
	if err != nil {
		return DeviceGeometry{}, newFBError(ErrDeviceQuery, "discover", "variable screen info", err)
	}
	finfo, err := q.FixScreenInfo()
	if err != nil {
		return DeviceGeometry{}, newFBError(ErrDeviceQuery, "discover", "fixed screen info", err)
	}

	g := DeviceGeometry{
		VisibleWidth:   int(vinfo.XRes),
		VisibleHeight:  int(vinfo.YRes),
		VirtualWidth:   int(vinfo.XResVirtual),
		VirtualHeight:  int(vinfo.YResVirtual),
		BitsPerPixel:   int(vinfo.BitsPerPixel),
		RowStrideBytes: int(finfo.LineLength),
		MappedLength:   int(finfo.SmemLen),
	}
	// Some drivers report a zero virtual height; the visible area is still addressable.
	if g.VirtualHeight < g.VisibleHeight {
		g.VirtualHeight = g.VisibleHeight
	}
	if g.VirtualWidth < g.VisibleWidth {
		g.VirtualWidth = g.VisibleWidth
	}
	if g.MappedLength == 0 {
		g.MappedLength = g.VirtualHeight * g.RowStrideBytes
	}
	if err := g.Validate(); err != nil {
		return DeviceGeometry{}, err
	}
	return g, nil
}

// BytesPerPixel rounds the reported depth up to whole bytes.
func (g DeviceGeometry) BytesPerPixel() int {
	return (g.BitsPerPixel + 7) / 8
}

// VisibleRowBytes is the number of image bytes in one visible row.
func (g DeviceGeometry) VisibleRowBytes() int {
	return g.VisibleWidth * g.BytesPerPixel()
}

// Validate checks the stride and length invariants.
func (g DeviceGeometry) Validate() error {
	switch {
	case g.VisibleWidth <= 0 || g.VisibleHeight <= 0:
		return newFBError(ErrDeviceQuery, "validate", fmt.Sprintf("empty visible area %dx%d", g.VisibleWidth, g.VisibleHeight), nil)
	case g.BitsPerPixel <= 0:
		return newFBError(ErrDeviceQuery, "validate", "zero bits per pixel", nil)
	case g.RowStrideBytes < g.VisibleRowBytes():
		return newFBError(ErrDeviceQuery, "validate",
			fmt.Sprintf("row stride %d below visible row %d", g.RowStrideBytes, g.VisibleRowBytes()), nil)
	case g.MappedLength < g.VirtualHeight*g.RowStrideBytes:
		return newFBError(ErrDeviceQuery, "validate",
			fmt.Sprintf("mapped length %d below %d rows of %d", g.MappedLength, g.VirtualHeight, g.RowStrideBytes), nil)
	}
	return nil
}

func (g DeviceGeometry) String() string {
	return fmt.Sprintf("%dx%d (virtual %dx%d) %dbpp stride %d len %d",
		g.VisibleWidth, g.VisibleHeight, g.VirtualWidth, g.VirtualHeight,
		g.BitsPerPixel, g.RowStrideBytes, g.MappedLength)
}
