// cmd_run.go - Startup sequence and the run subcommand

/*
(c) 2024 - 2026 Zayn Otley
License: GPLv3 or later
*/

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// exitError carries a status whose cause has already been logged.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func newRunCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [CAMERA [WIDTH HEIGHT [FPS]]]",
		Short: "Run the capture to framebuffer loop (default)",
		Long: `Runs until the quit key, SIGINT/SIGTERM, or the end of the capture stream.
CAMERA is a device path or a /dev/videoN index; WIDTH HEIGHT and FPS
override the capture settings.`,
		Args: validateRunArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := applyRunArgs(c, args); err != nil {
				return err
			}
			cfg, err := LoadConfig(c.v)
			if err != nil {
				return err
			}
			logger, err := NewLogger(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			defer logger.Sync()

			err = Lifecycle().Supervise(func() error {
				err := runPipeline(cmd.Context(), cfg, afero.NewOsFs(), logger)
				if err != nil {
					logger.Error("fbcam stopped", zap.Error(err))
				}
				return err
			}, os.Interrupt, syscall.SIGTERM)
			if err != nil {
				return &exitError{code: 1, err: err}
			}
			return nil
		},
	}
	addRunFlags(cmd)
	return cmd
}

func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("camera", DEFAULT_CAPTURE_DEVICE, "V4L2 capture device")
	f.String("image", "", "replay a still image (bmp, png, jpeg) instead of the camera")
	f.Int("width", DEFAULT_CAPTURE_WIDTH, "capture width")
	f.Int("height", DEFAULT_CAPTURE_HEIGHT, "capture height")
	f.Int("fps", DEFAULT_CAPTURE_FPS, "capture frame rate")
	f.String("format", "yuyv", "capture format: yuyv or mjpeg")
	f.Int("loops", 0, "frames to show from --image before exiting (0 = forever)")
	f.String("scaler", SCALER_BILINEAR, "nearest, approx-bilinear, bilinear or catmull-rom")
	f.Duration("frame-delay", DEFAULT_FRAME_DELAY, "pause after each displayed frame")
	f.String("screenshots", DEFAULT_SCREENSHOT_BASE, "directory that receives screenshots_<N>/")
	f.String("ext", DEFAULT_SCREENSHOT_EXT, "screenshot format: bmp, png or jpg")
	f.String("save-key", string(rune(DEFAULT_SAVE_KEY)), "key that saves a screenshot")
	f.String("quit-key", string(rune(DEFAULT_QUIT_KEY)), "key that quits")
}

func validateRunArgs(cmd *cobra.Command, args []string) error {
	switch len(args) {
	case 0, 1, 3, 4:
		return nil
	}
	return fmt.Errorf("want [CAMERA [WIDTH HEIGHT [FPS]]], got %d args", len(args))
}

// applyRunArgs lets positional arguments override flags and config.
func applyRunArgs(c *cli, args []string) error {
	if len(args) >= 1 {
		dev := args[0]
		if n, err := strconv.Atoi(dev); err == nil && n >= 0 {
			dev = fmt.Sprintf("/dev/video%d", n)
		}
		c.v.Set("capture.device", dev)
	}
	keys := []string{"", "capture.width", "capture.height", "capture.fps"}
	for i := 1; i < len(args); i++ {
		n, err := strconv.Atoi(args[i])
		if err != nil || n <= 0 {
			return fmt.Errorf("%s: %q is not a positive integer", keys[i], args[i])
		}
		c.v.Set(keys[i], n)
	}
	return nil
}

// openDevice opens the configured framebuffer backend.
func openDevice(cfg *Config) (FramebufferDevice, error) {
	if cfg.Device.Headless {
		return OpenFramebufferDevice(FB_BACKEND_HEADLESS, cfg.Device.HeadlessGeometry)
	}
	return OpenFramebufferDevice(FB_BACKEND_FBDEV, cfg.Device.Path)
}

// runPipeline acquires resources in order, arming the lifecycle guard after
// each one, then runs the render loop. The caller releases the guard, normally
// through Supervise.
func runPipeline(ctx context.Context, cfg *Config, fs afero.Fs, logger *zap.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger = logger.With(zap.String("run", uuid.NewString()))
	guard := Lifecycle()
	guard.SetLogger(logger)

	dev, err := openDevice(cfg)
	if err != nil {
		return err
	}
	guard.ArmDevice(dev)

	geom, err := DiscoverGeometry(dev)
	if err != nil {
		return err
	}
	logger.Info("framebuffer geometry", zap.Stringer("geometry", geom))

	scaler, err := ScalerByName(cfg.Compositor.Scaler)
	if err != nil {
		return err
	}
	compositor, err := NewFrameCompositor(geom, scaler)
	if err != nil {
		return err
	}

	surface, err := MapSurface(dev, geom)
	if err != nil {
		return err
	}
	guard.ArmMapping(surface)

	srcCfg := cfg.SourceConfig()
	srcCfg.Logger = logger
	source, err := OpenFrameSource(srcCfg)
	if err != nil {
		return err
	}
	defer source.Close()

	sessions, err := NewCaptureSessionManager(fs, cfg.Screenshots.Ext, logger)
	if err != nil {
		return err
	}
	session := sessions.StartSession(cfg.Screenshots.BasePath)

	var keys KeySource
	kb := NewKeyboardInput(os.Stdin)
	if err := kb.Engage(); err != nil {
		logger.Warn("keyboard unavailable, save and quit keys disabled", zap.Error(err))
	} else {
		guard.ArmTerminal(kb)
		keys = kb
	}

	loop, err := NewRenderLoop(RenderLoopConfig{
		Source:     source,
		Compositor: compositor,
		Surface:    surface,
		Keys:       keys,
		Sessions:   sessions,
		Session:    session,
		Bindings:   cfg.KeyBindings(),
		FrameDelay: cfg.Compositor.FrameDelay,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	logger.Info("running",
		zap.String("format", compositor.Format().String()),
		zap.String("save_key", cfg.Keys.Save),
		zap.String("quit_key", cfg.Keys.Quit))
	err = loop.Run(ctx)
	stats := loop.Stats()
	logger.Info("render loop finished",
		zap.Uint64("frames", stats.Frames),
		zap.Uint64("screenshots", stats.Shots),
		zap.Uint64("resized", compositor.Resizes()))
	return err
}
