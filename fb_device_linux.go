//go:build linux

// fb_device_linux.go - Linux fbdev backend (ioctl + mmap)

/*
(c) 2024 - 2026 Zayn Otley
License: GPLv3 or later
*/

package main

import (
	"os"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

func init() {
	compiledFeatures = append(compiledFeatures, "fbdev:linux")
}

// fbDev is an open /dev/fbN descriptor.
type fbDev struct {
	path   string
	fd     int
	closed sync.Once
}

func openFBDev(path string) (FramebufferDevice, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, newFBError(ErrDeviceQuery, "open", path, err)
	}
	return &fbDev{path: path, fd: fd}, nil
}

func (d *fbDev) ioctl(req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(d.fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

func (d *fbDev) VarScreenInfo() (VarScreenInfo, error) {
	var v VarScreenInfo
	if err := d.ioctl(FBIOGET_VSCREENINFO, unsafe.Pointer(&v)); err != nil {
		return VarScreenInfo{}, os.NewSyscallError("ioctl FBIOGET_VSCREENINFO", err)
	}
	return v, nil
}

func (d *fbDev) FixScreenInfo() (FixScreenInfo, error) {
	var f FixScreenInfo
	if err := d.ioctl(FBIOGET_FSCREENINFO, unsafe.Pointer(&f)); err != nil {
		return FixScreenInfo{}, os.NewSyscallError("ioctl FBIOGET_FSCREENINFO", err)
	}
	return f, nil
}

func (d *fbDev) Mmap(length int) ([]byte, error) {
	return unix.Mmap(d.fd, 0, length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
}

func (d *fbDev) Munmap(mem []byte) error {
	return unix.Munmap(mem)
}

// Close is safe to call more than once; only the first call closes the fd.
func (d *fbDev) Close() error {
	var err error
	d.closed.Do(func() {
		err = unix.Close(d.fd)
		d.fd = -1
	})
	return err
}
