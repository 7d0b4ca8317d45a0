package main

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

func execRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCLI_InfoHeadless(t *testing.T) {
	out, err := execRoot(t, "info", "--headless", "--geometry", "64x32x16+160")
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	for _, want := range []string{"visible:     64x32", "stride:      160 bytes (128 visible)", "format:      RGB565"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestCLI_InfoUnsupportedDepth(t *testing.T) {
	out, err := execRoot(t, "info", "--headless", "--geometry", "8x8x8")
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if !strings.Contains(out, "unsupported") {
		t.Fatalf("expected unsupported format line, got:\n%s", out)
	}
}

func TestCLI_ConfigDump(t *testing.T) {
	out, err := execRoot(t, "config", "--device", "/dev/fb1", "--log-format", "json")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	for _, want := range []string{"path: /dev/fb1", "format: json", "base_path: /run/media/mmcblk1p1", "frame_delay: 1ms"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestCLI_Version(t *testing.T) {
	out, err := execRoot(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "fbcam ") || !strings.Contains(out, "Compiled features:") {
		t.Fatalf("unexpected version output:\n%s", out)
	}
}

func TestCLI_RunRejectsBadArgCount(t *testing.T) {
	if _, err := execRoot(t, "run", "2", "640"); err == nil {
		t.Fatal("expected error for CAMERA WIDTH without HEIGHT")
	}
}

func TestApplyRunArgs(t *testing.T) {
	c := &cli{v: NewViper("")}
	if err := applyRunArgs(c, []string{"0", "320", "240", "30"}); err != nil {
		t.Fatalf("applyRunArgs: %v", err)
	}
	cfg, err := LoadConfig(c.v)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Capture.Device != "/dev/video0" || cfg.Capture.Width != 320 || cfg.Capture.Height != 240 || cfg.Capture.FPS != 30 {
		t.Fatalf("expected /dev/video0 320x240@30, got %+v", cfg.Capture)
	}

	if err := applyRunArgs(c, []string{"/dev/video5", "wide", "240"}); err == nil {
		t.Fatal("expected error for non-numeric width")
	}
}

func TestRunPipeline_HeadlessImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "still.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := png.Encode(f, solidImage(8, 4, red)); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	f.Close()

	cfg := DefaultConfig()
	cfg.Device.Headless = true
	cfg.Device.HeadlessGeometry = "16x8x16"
	cfg.Capture.Image = path
	cfg.Capture.FPS = 0
	cfg.Capture.Loops = 3
	cfg.Compositor.FrameDelay = 0
	cfg.Screenshots.BasePath = "/sd"

	fs := afero.NewMemMapFs()
	defer Lifecycle().Release()
	if err := runPipeline(context.Background(), cfg, fs, zap.NewNop()); err != nil {
		t.Fatalf("runPipeline: %v", err)
	}
	if !Lifecycle().DeviceArmed() || !Lifecycle().MappingArmed() {
		t.Fatal("expected device and mapping armed until the caller releases")
	}
	Lifecycle().Release()
	if Lifecycle().DeviceArmed() || Lifecycle().MappingArmed() || Lifecycle().TerminalArmed() {
		t.Fatal("expected all slots released")
	}
	if info, err := fs.Stat("/sd/screenshots_0"); err != nil || !info.IsDir() {
		t.Fatalf("expected session directory, got %v", err)
	}
}

func TestRunPipeline_StartupFailureLeavesGuardReleasable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Device.Headless = true
	cfg.Device.HeadlessGeometry = "16x8x12"
	cfg.Capture.Image = "unused.png"

	defer Lifecycle().Release()
	err := runPipeline(context.Background(), cfg, afero.NewMemMapFs(), zap.NewNop())
	if err == nil {
		t.Fatal("expected unsupported depth to fail startup")
	}
	if !Lifecycle().DeviceArmed() {
		t.Fatal("expected device armed so the caller's release closes it")
	}
	if Lifecycle().MappingArmed() {
		t.Fatal("expected mapping not armed before the failure point")
	}
}
