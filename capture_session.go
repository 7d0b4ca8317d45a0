// capture_session.go - Per-run screenshot directories and sequential shot files

/*
(c) 2024 - 2026 Zayn Otley
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/image/bmp"
)

// Session is one run's screenshot directory.
type Session struct {
	ID       int
	Dir      string
	NextShot int
	Persist  bool // false when the directory could not be created
}

type imageEncoder func(w io.Writer, img image.Image) error

var shotEncoders = map[string]imageEncoder{
	"bmp": bmp.Encode,
	"png": png.Encode,
	"jpg": func(w io.Writer, img image.Image) error {
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
	},
}

// CaptureSessionManager allocates session directories and writes shots.
type CaptureSessionManager struct {
	fs     afero.Fs
	ext    string
	encode imageEncoder
	logger *zap.Logger
}

// NewCaptureSessionManager creates a manager writing <ext> files through fs.
func NewCaptureSessionManager(fs afero.Fs, ext string, logger *zap.Logger) (*CaptureSessionManager, error) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "jpeg" {
		ext = "jpg"
	}
	enc, ok := shotEncoders[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported screenshot extension %q", ext)
	}
	return &CaptureSessionManager{
		fs:     fs,
		ext:    ext,
		encode: enc,
		logger: logger.With(zap.String("component", "capture_session")),
	}, nil
}

// StartSession claims the first free base/screenshots_<id>. Mkdir is
// exclusive, so a directory created by a concurrent instance between the
// existence check and the create just moves the search on to the next id. A failed
// create is logged and yields a session with persistence disabled.
func (m *CaptureSessionManager) StartSession(base string) *Session {
	for id := 0; ; id++ {
		dir := filepath.Join(base, fmt.Sprintf("%s%d", SESSION_DIR_PREFIX, id))
		if _, err := m.fs.Stat(dir); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return m.disabled(id, dir, err)
		}

		if err := m.fs.Mkdir(dir, 0o777); err != nil {
			if os.IsExist(err) {
				continue
			}
			return m.disabled(id, dir, err)
		}
		m.logger.Info("saving screenshots for this session", zap.String("dir", dir))
		return &Session{ID: id, Dir: dir, Persist: true}
	}
}

func (m *CaptureSessionManager) disabled(id int, dir string, err error) *Session {
	m.logger.Error("screenshots disabled",
		zap.Error(newFBError(ErrDirectoryCreate, "mkdir", dir, err)))
	return &Session{ID: id, Dir: dir}
}

// SaveShot writes img as Dir/screenshot_<NextShot>.<ext> and advances
// NextShot. A failed write leaves NextShot where it was.
func (m *CaptureSessionManager) SaveShot(s *Session, img image.Image) (string, error) {
	if !s.Persist {
		return "", ErrPersistenceDisabled
	}
	path := filepath.Join(s.Dir, fmt.Sprintf("%s%d.%s", SHOT_FILE_PREFIX, s.NextShot, m.ext))

	f, err := m.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return "", newFBError(ErrShotWrite, "create", path, err)
	}
	if err := m.encode(f, img); err != nil {
		f.Close()
		_ = m.fs.Remove(path)
		return "", newFBError(ErrShotWrite, "encode", path, err)
	}
	if err := f.Close(); err != nil {
		return "", newFBError(ErrShotWrite, "close", path, err)
	}

	s.NextShot++
	return path, nil
}
