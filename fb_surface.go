// fb_surface.go - Memory-mapped framebuffer surface

/*
(c) 2024 - 2026 Zayn Otley
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"sync"
)

// RowWriter accepts one destination row at a time.
type RowWriter interface {
	WriteRow(row int, data []byte) error
}

// MappedSurface owns the shared mapping of device memory. It has exactly one
// writer (the render loop). Unmap may arrive from the signal goroutine, so
// writes hold the read lock and Unmap takes the write lock: an unmap never
// lands in the middle of a row copy.
type MappedSurface struct {
	mu     sync.RWMutex
	mapper Mapper
	mem    []byte
	stride int
	rows   int
}

// MapSurface requests a shared read/write mapping of geom.MappedLength bytes.
func MapSurface(m Mapper, geom DeviceGeometry) (*MappedSurface, error) {
	mem, err := m.Mmap(geom.MappedLength)
	if err != nil {
		return nil, newFBError(ErrMapping, "mmap", fmt.Sprintf("%d bytes", geom.MappedLength), err)
	}
	if len(mem) < geom.MappedLength {
		_ = m.Munmap(mem)
		return nil, newFBError(ErrMapping, "mmap", fmt.Sprintf("short mapping %d < %d", len(mem), geom.MappedLength), nil)
	}
	return &MappedSurface{
		mapper: m,
		mem:    mem,
		stride: geom.RowStrideBytes,
		rows:   geom.MappedLength / geom.RowStrideBytes,
	}, nil
}

// WriteRow zero-fills the full stride of row, then copies up to one stride of
// data into it. Bytes past len(data) stay zero, so padding never carries stale
// pixels from an earlier, wider frame.
func (s *MappedSurface) WriteRow(row int, data []byte) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.mem == nil {
		return ErrSurfaceReleased
	}
	if row < 0 || row >= s.rows {
		return fmt.Errorf("row %d outside surface of %d rows", row, s.rows)
	}
	dst := s.mem[row*s.stride : (row+1)*s.stride]
	clear(dst)
	copy(dst, data)
	return nil
}

// Mapped reports whether the mapping is still live.
func (s *MappedSurface) Mapped() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mem != nil
}

// Stride returns the row stride in bytes.
func (s *MappedSurface) Stride() int {
	return s.stride
}

// Unmap releases the mapping. Later calls are no-ops.
func (s *MappedSurface) Unmap() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mem == nil {
		return nil
	}
	mem := s.mem
	s.mem = nil
	return s.mapper.Munmap(mem)
}
