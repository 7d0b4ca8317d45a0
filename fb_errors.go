// fb_errors.go - Error taxonomy for the framebuffer pipeline

/*
(c) 2024 - 2026 Zayn Otley
License: GPLv3 or later
*/

package main

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is against any error returned by the pipeline.
var (
	ErrDeviceQuery       = errors.New("device query failed")
	ErrMapping           = errors.New("mapping failed")
	ErrUnsupportedFormat = errors.New("unsupported pixel format")
	ErrCaptureSource     = errors.New("capture source failed")
	ErrDirectoryCreate   = errors.New("directory create failed")
	ErrShotWrite         = errors.New("screenshot write failed")

	ErrSurfaceReleased     = errors.New("surface released")
	ErrPersistenceDisabled = errors.New("screenshot persistence disabled")
)

// FramebufferError provides detailed error context for framebuffer operations
type FramebufferError struct {
	Kind    error  // One of the Err* kinds above
	Op      string // What operation was being attempted
	Details string // Additional error context
	Err     error  // Underlying error if any
}

func (e *FramebufferError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Kind, e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Op, e.Details)
}

func (e *FramebufferError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func newFBError(kind error, op, details string, err error) *FramebufferError {
	return &FramebufferError{Kind: kind, Op: op, Details: details, Err: err}
}
