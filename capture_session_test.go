package main

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/image/bmp"
)

func newTestSessions(t *testing.T, fs afero.Fs, ext string) *CaptureSessionManager {
	t.Helper()
	m, err := NewCaptureSessionManager(fs, ext, zap.NewNop())
	if err != nil {
		t.Fatalf("NewCaptureSessionManager: %v", err)
	}
	return m
}

func TestStartSession_FirstFreeID(t *testing.T) {
	fs := afero.NewMemMapFs()
	base := "/media/sd"
	for i := 0; i < 5; i++ {
		if err := fs.MkdirAll(filepath.Join(base, fmt.Sprintf("screenshots_%d", i)), 0o755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
	}

	s := newTestSessions(t, fs, "bmp").StartSession(base)
	if s.ID != 5 {
		t.Fatalf("expected session id 5, got %d", s.ID)
	}
	if !s.Persist {
		t.Fatal("expected persistence enabled")
	}
	if info, err := fs.Stat(filepath.Join(base, "screenshots_5")); err != nil || !info.IsDir() {
		t.Fatalf("expected screenshots_5 directory, got %v", err)
	}
}

func TestStartSession_SkipsPlainFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	base := "/media/sd"
	if err := afero.WriteFile(fs, filepath.Join(base, "screenshots_0"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	s := newTestSessions(t, fs, "bmp").StartSession(base)
	if s.ID != 1 {
		t.Fatalf("expected id 1 past an existing file, got %d", s.ID)
	}
}

func TestStartSession_CreateFailureDisablesPersistence(t *testing.T) {
	// Read-only fs: Stat reports not-exist, Mkdir fails.
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	m := newTestSessions(t, fs, "bmp")

	s := m.StartSession("/media/sd")
	if s.Persist {
		t.Fatal("expected persistence disabled")
	}
	if _, err := m.SaveShot(s, solidImage(2, 2, red)); !errors.Is(err, ErrPersistenceDisabled) {
		t.Fatalf("expected ErrPersistenceDisabled, got %v", err)
	}
	if s.NextShot != 0 {
		t.Fatalf("expected NextShot 0, got %d", s.NextShot)
	}
}

func TestSaveShot_SequentialNames(t *testing.T) {
	fs := afero.NewMemMapFs()
	m := newTestSessions(t, fs, "bmp")
	s := m.StartSession("/media/sd")

	for i := 0; i < 3; i++ {
		path, err := m.SaveShot(s, solidImage(4, 3, red))
		if err != nil {
			t.Fatalf("SaveShot %d: %v", i, err)
		}
		want := filepath.Join("/media/sd", "screenshots_0", fmt.Sprintf("screenshot_%d.bmp", i))
		if path != want {
			t.Fatalf("expected %s, got %s", want, path)
		}
	}
	if s.NextShot != 3 {
		t.Fatalf("expected NextShot 3, got %d", s.NextShot)
	}

	f, err := fs.Open(filepath.Join("/media/sd", "screenshots_0", "screenshot_2.bmp"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()
	img, err := bmp.Decode(f)
	if err != nil {
		t.Fatalf("bmp.Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
		t.Fatalf("expected original 4x3 frame, got %v", b)
	}
	r, g, bl, _ := img.At(1, 1).RGBA()
	if r>>8 != 0xFF || g != 0 || bl != 0 {
		t.Fatalf("expected red pixel, got %v", img.At(1, 1))
	}
}

// failingImage has no pixels, which the png encoder rejects.
type failingImage struct{ image.Image }

func (failingImage) ColorModel() color.Model { return color.RGBAModel }
func (failingImage) Bounds() image.Rectangle { return image.Rect(0, 0, 0, 0) }

func TestSaveShot_WriteErrorKeepsIndex(t *testing.T) {
	fs := afero.NewMemMapFs()
	m := newTestSessions(t, fs, "png")
	s := m.StartSession("/media/sd")

	_, err := m.SaveShot(s, failingImage{})
	if !errors.Is(err, ErrShotWrite) {
		t.Fatalf("expected ErrShotWrite, got %v", err)
	}
	if s.NextShot != 0 {
		t.Fatalf("expected NextShot to stay 0, got %d", s.NextShot)
	}
	if _, err := fs.Stat(filepath.Join(s.Dir, "screenshot_0.png")); !os.IsNotExist(err) {
		t.Fatalf("expected partial file removed, got %v", err)
	}

	path, err := m.SaveShot(s, solidImage(1, 1, white))
	if err != nil {
		t.Fatalf("SaveShot after failure: %v", err)
	}
	if filepath.Base(path) != "screenshot_0.png" {
		t.Fatalf("expected index reused, got %s", path)
	}
}

func TestNewCaptureSessionManager_Extensions(t *testing.T) {
	for _, ext := range []string{"bmp", ".png", "JPG", "jpeg"} {
		if _, err := NewCaptureSessionManager(afero.NewMemMapFs(), ext, zap.NewNop()); err != nil {
			t.Fatalf("expected %q accepted, got %v", ext, err)
		}
	}
	if _, err := NewCaptureSessionManager(afero.NewMemMapFs(), "tiff", zap.NewNop()); err == nil {
		t.Fatal("expected tiff rejected")
	}
}
