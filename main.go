// main.go - fbcam: camera to Linux framebuffer with keyboard screenshots

/*
(c) 2024 - 2026 Zayn Otley
License: GPLv3 or later
*/

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cli carries state shared by every subcommand of one invocation.
type cli struct {
	cfgFile string
	v       *viper.Viper
}

// Flag name to config key, applied to whichever command is running.
var flagKeys = map[string]string{
	"device":      "device.path",
	"headless":    "device.headless",
	"geometry":    "device.headless_geometry",
	"log-level":   "log.level",
	"log-format":  "log.format",
	"camera":      "capture.device",
	"image":       "capture.image",
	"width":       "capture.width",
	"height":      "capture.height",
	"fps":         "capture.fps",
	"format":      "capture.format",
	"loops":       "capture.loops",
	"scaler":      "compositor.scaler",
	"frame-delay": "compositor.frame_delay",
	"screenshots": "screenshots.base_path",
	"ext":         "screenshots.ext",
	"save-key":    "keys.save",
	"quit-key":    "keys.quit",
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "fbcam [CAMERA [WIDTH HEIGHT [FPS]]]",
		Short: "Show a camera feed on the Linux framebuffer",
		Long: `fbcam captures frames from a V4L2 camera (or a still image), letterboxes
them onto /dev/fb0 in the display's native pixel format, and saves the
original frame as a screenshot when the save key is pressed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.cfgFile, "config", "", "config file (default ./fbcam.yaml or $HOME/.config/fbcam/fbcam.yaml)")
	pf.String("device", DEFAULT_FB_DEVICE, "framebuffer device")
	pf.Bool("headless", false, "use an in-memory framebuffer instead of the device")
	pf.String("geometry", DEFAULT_HEADLESS_GEOMETRY, "headless geometry WxHxBPP[+STRIDE]")
	pf.String("log-level", "info", "debug, info, warn or error")
	pf.String("log-format", "console", "console or json")

	run := newRunCmd(c)
	addRunFlags(root)
	root.Args = run.Args
	root.RunE = run.RunE

	root.AddCommand(run, newInfoCmd(c), newConfigCmd(c), newVersionCmd())
	return root
}

// load builds the viper instance and binds the flags the running command has.
func (c *cli) load(cmd *cobra.Command) error {
	c.v = NewViper(c.cfgFile)
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := c.v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	return ReadConfigFile(c.v, c.cfgFile != "")
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and compiled features",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printFeatures(cmd.OutOrStdout())
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintf(os.Stderr, "fbcam: %v\n", err)
		os.Exit(1)
	}
}
