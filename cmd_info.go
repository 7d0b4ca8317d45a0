// cmd_info.go - Print framebuffer geometry

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInfoCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Query the framebuffer and print its geometry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(c.v)
			if err != nil {
				return err
			}
			dev, err := openDevice(cfg)
			if err != nil {
				return err
			}
			defer dev.Close()

			geom, err := DiscoverGeometry(dev)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			name := cfg.Device.Path
			if cfg.Device.Headless {
				name = "headless " + cfg.Device.HeadlessGeometry
			}
			fmt.Fprintf(w, "device:      %s\n", name)
			fmt.Fprintf(w, "visible:     %dx%d\n", geom.VisibleWidth, geom.VisibleHeight)
			fmt.Fprintf(w, "virtual:     %dx%d\n", geom.VirtualWidth, geom.VirtualHeight)
			fmt.Fprintf(w, "depth:       %d bpp\n", geom.BitsPerPixel)
			fmt.Fprintf(w, "stride:      %d bytes (%d visible)\n", geom.RowStrideBytes, geom.VisibleRowBytes())
			fmt.Fprintf(w, "mapped:      %d bytes\n", geom.MappedLength)
			if format, err := PixelFormatForDepth(geom.BitsPerPixel); err != nil {
				fmt.Fprintf(w, "format:      unsupported (%v)\n", err)
			} else {
				fmt.Fprintf(w, "format:      %s\n", format)
			}
			return nil
		},
	}
}
