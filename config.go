// config.go - Layered configuration: defaults, file, FBCAM_* environment, flags

/*
(c) 2024 - 2026 Zayn Otley
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const CONFIG_ENV_PREFIX = "FBCAM"

type Config struct {
	Device      DeviceConfig      `mapstructure:"device" yaml:"device"`
	Capture     CaptureConfig     `mapstructure:"capture" yaml:"capture"`
	Compositor  CompositorConfig  `mapstructure:"compositor" yaml:"compositor"`
	Screenshots ScreenshotsConfig `mapstructure:"screenshots" yaml:"screenshots"`
	Keys        KeysConfig        `mapstructure:"keys" yaml:"keys"`
	Log         LogConfig         `mapstructure:"log" yaml:"log"`
}

type DeviceConfig struct {
	Path             string `mapstructure:"path" yaml:"path"`
	Headless         bool   `mapstructure:"headless" yaml:"headless"`
	HeadlessGeometry string `mapstructure:"headless_geometry" yaml:"headless_geometry"` // WxHxBPP[+STRIDE]
}

type CaptureConfig struct {
	Device string `mapstructure:"device" yaml:"device"`
	Image  string `mapstructure:"image" yaml:"image"` // replaces the camera when set
	Width  int    `mapstructure:"width" yaml:"width"`
	Height int    `mapstructure:"height" yaml:"height"`
	FPS    int    `mapstructure:"fps" yaml:"fps"`
	Format string `mapstructure:"format" yaml:"format"`
	Loops  int    `mapstructure:"loops" yaml:"loops"` // image source only; 0 = forever
}

type CompositorConfig struct {
	Scaler     string        `mapstructure:"scaler" yaml:"scaler"`
	FrameDelay time.Duration `mapstructure:"frame_delay" yaml:"frame_delay"`
}

type ScreenshotsConfig struct {
	BasePath string `mapstructure:"base_path" yaml:"base_path"`
	Ext      string `mapstructure:"ext" yaml:"ext"`
}

type KeysConfig struct {
	Save string `mapstructure:"save" yaml:"save"`
	Quit string `mapstructure:"quit" yaml:"quit"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DefaultConfig mirrors the stock single-board setup: fb0, camera 2 at
// 640x480@10, screenshots on the SD card.
func DefaultConfig() *Config {
	return &Config{
		Device: DeviceConfig{
			Path:             DEFAULT_FB_DEVICE,
			HeadlessGeometry: DEFAULT_HEADLESS_GEOMETRY,
		},
		Capture: CaptureConfig{
			Device: DEFAULT_CAPTURE_DEVICE,
			Width:  DEFAULT_CAPTURE_WIDTH,
			Height: DEFAULT_CAPTURE_HEIGHT,
			FPS:    DEFAULT_CAPTURE_FPS,
			Format: "yuyv",
		},
		Compositor: CompositorConfig{
			Scaler:     SCALER_BILINEAR,
			FrameDelay: DEFAULT_FRAME_DELAY,
		},
		Screenshots: ScreenshotsConfig{
			BasePath: DEFAULT_SCREENSHOT_BASE,
			Ext:      DEFAULT_SCREENSHOT_EXT,
		},
		Keys: KeysConfig{
			Save: string(rune(DEFAULT_SAVE_KEY)),
			Quit: string(rune(DEFAULT_QUIT_KEY)),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// SetDefaults registers every key so env overrides and Unmarshal see it.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("device.path", d.Device.Path)
	v.SetDefault("device.headless", d.Device.Headless)
	v.SetDefault("device.headless_geometry", d.Device.HeadlessGeometry)

	v.SetDefault("capture.device", d.Capture.Device)
	v.SetDefault("capture.image", d.Capture.Image)
	v.SetDefault("capture.width", d.Capture.Width)
	v.SetDefault("capture.height", d.Capture.Height)
	v.SetDefault("capture.fps", d.Capture.FPS)
	v.SetDefault("capture.format", d.Capture.Format)
	v.SetDefault("capture.loops", d.Capture.Loops)

	v.SetDefault("compositor.scaler", d.Compositor.Scaler)
	v.SetDefault("compositor.frame_delay", d.Compositor.FrameDelay)

	v.SetDefault("screenshots.base_path", d.Screenshots.BasePath)
	v.SetDefault("screenshots.ext", d.Screenshots.Ext)

	v.SetDefault("keys.save", d.Keys.Save)
	v.SetDefault("keys.quit", d.Keys.Quit)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// NewViper returns an instance with defaults, config search paths and
// FBCAM_* environment binding. cfgFile overrides the search.
func NewViper(cfgFile string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("fbcam")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(ConfigDir())
	}

	v.SetEnvPrefix(CONFIG_ENV_PREFIX)
	// FBCAM_CAPTURE_DEVICE for capture.device
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadConfigFile loads the config file if there is one. A missing file in the
// search path is fine; an explicit --config that cannot be read is not.
func ReadConfigFile(v *viper.Viper, explicit bool) error {
	err := v.ReadInConfig()
	if err == nil {
		return nil
	}
	if _, ok := err.(viper.ConfigFileNotFoundError); ok && !explicit {
		return nil
	}
	return fmt.Errorf("read config: %w", err)
}

// ConfigDir returns $XDG_CONFIG_HOME/fbcam or ~/.config/fbcam.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fbcam")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".fbcam"
	}
	return filepath.Join(home, ".config", "fbcam")
}

// LoadConfig unmarshals and validates.
func LoadConfig(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errs
	}
	return &cfg, nil
}

// ConfigError is one invalid setting.
type ConfigError struct {
	Field   string
	Value   any
	Message string
}

func (e ConfigError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

type ConfigErrors []ConfigError

func (e ConfigErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d config errors:", len(e))
	for _, err := range e {
		sb.WriteString("\n  ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

var (
	validCaptureFormats = []string{"yuyv", "mjpeg"}
	validLogLevels      = []string{"debug", "info", "warn", "error"}
	validLogFormats     = []string{"console", "json"}
)

// Validate collects every invalid value rather than stopping at the first.
func (c *Config) Validate() ConfigErrors {
	var errs ConfigErrors
	add := func(field string, value any, msg string) {
		errs = append(errs, ConfigError{Field: field, Value: value, Message: msg})
	}

	if c.Device.Headless {
		if _, err := ParseHeadlessGeometry(c.Device.HeadlessGeometry); err != nil {
			add("device.headless_geometry", c.Device.HeadlessGeometry, err.Error())
		}
	} else if c.Device.Path == "" {
		add("device.path", c.Device.Path, "must not be empty")
	}

	if c.Capture.Image == "" {
		if c.Capture.Device == "" {
			add("capture.device", c.Capture.Device, "must not be empty without capture.image")
		}
		if !slices.Contains(validCaptureFormats, c.Capture.Format) {
			add("capture.format", c.Capture.Format, fmt.Sprintf("must be one of %v", validCaptureFormats))
		}
		if c.Capture.Width <= 0 || c.Capture.Height <= 0 {
			add("capture.width/height", fmt.Sprintf("%dx%d", c.Capture.Width, c.Capture.Height), "must be positive")
		}
	}
	if c.Capture.FPS < 0 {
		add("capture.fps", c.Capture.FPS, "must not be negative")
	}
	if c.Capture.Loops < 0 {
		add("capture.loops", c.Capture.Loops, "must not be negative")
	}

	if _, err := ScalerByName(c.Compositor.Scaler); err != nil {
		add("compositor.scaler", c.Compositor.Scaler, err.Error())
	}
	if c.Compositor.FrameDelay < 0 {
		add("compositor.frame_delay", c.Compositor.FrameDelay, "must not be negative")
	}

	ext := strings.ToLower(strings.TrimPrefix(c.Screenshots.Ext, "."))
	if ext == "jpeg" {
		ext = "jpg"
	}
	if _, ok := shotEncoders[ext]; !ok {
		add("screenshots.ext", c.Screenshots.Ext, "must be bmp, png or jpg")
	}

	if len(c.Keys.Save) != 1 {
		add("keys.save", c.Keys.Save, "must be a single ASCII key")
	}
	if len(c.Keys.Quit) != 1 {
		add("keys.quit", c.Keys.Quit, "must be a single ASCII key")
	}
	if len(c.Keys.Save) == 1 && len(c.Keys.Quit) == 1 &&
		asciiLower(c.Keys.Save[0]) == asciiLower(c.Keys.Quit[0]) {
		add("keys.quit", c.Keys.Quit, "must differ from keys.save")
	}

	if !slices.Contains(validLogLevels, strings.ToLower(c.Log.Level)) {
		add("log.level", c.Log.Level, fmt.Sprintf("must be one of %v", validLogLevels))
	}
	if !slices.Contains(validLogFormats, strings.ToLower(c.Log.Format)) {
		add("log.format", c.Log.Format, fmt.Sprintf("must be one of %v", validLogFormats))
	}
	return errs
}

// KeyBindings converts the validated key strings.
func (c *Config) KeyBindings() KeyBindings {
	return KeyBindings{Save: c.Keys.Save[0], Quit: c.Keys.Quit[0]}
}

// SourceConfig converts the capture section.
func (c *Config) SourceConfig() SourceConfig {
	return SourceConfig{
		Device: c.Capture.Device,
		Image:  c.Capture.Image,
		Width:  c.Capture.Width,
		Height: c.Capture.Height,
		FPS:    c.Capture.FPS,
		Format: c.Capture.Format,
		Loops:  c.Capture.Loops,
	}
}
