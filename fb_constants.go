// fb_constants.go - Framebuffer ioctl numbers and pipeline defaults

/*
(c) 2024 - 2026 Zayn Otley
License: GPLv3 or later
*/

package main

import "time"

// linux/fb.h ioctl requests
const (
	FBIOGET_VSCREENINFO = 0x4600
	FBIOGET_FSCREENINFO = 0x4602
)

// Pipeline defaults
const (
	DEFAULT_FB_DEVICE         = "/dev/fb0"
	DEFAULT_CAPTURE_DEVICE    = "/dev/video2"
	DEFAULT_CAPTURE_WIDTH     = 640
	DEFAULT_CAPTURE_HEIGHT    = 480
	DEFAULT_CAPTURE_FPS       = 10
	DEFAULT_SCREENSHOT_BASE   = "/run/media/mmcblk1p1"
	DEFAULT_SCREENSHOT_EXT    = "bmp"
	DEFAULT_HEADLESS_GEOMETRY = "800x480x16"
	DEFAULT_SAVE_KEY          = 'c'
	DEFAULT_QUIT_KEY          = 'q'
	DEFAULT_FRAME_DELAY       = time.Millisecond

	// WaitForFrame timeout in seconds; bounds how long the loop ignores ctx.
	WEBCAM_WAIT_TIMEOUT = 1
)

// Persisted screenshot layout: <base>/screenshots_<N>/screenshot_<M>.<ext>
const (
	SESSION_DIR_PREFIX = "screenshots_"
	SHOT_FILE_PREFIX   = "screenshot_"
)
