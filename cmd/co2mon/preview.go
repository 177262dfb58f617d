// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"github.com/spf13/cobra"
	"periph.io/x/conn/v3/physic"

	"github.com/GermanBionicSystems/co2mon/glyph"
	"github.com/GermanBionicSystems/co2mon/reading"
	"github.com/GermanBionicSystems/co2mon/screen2d"
)

func newPreviewCmd(a *app) *cobra.Command {
	var (
		out         string
		scale       int
		co2         uint16
		temperature float64
		humidity    float64
	)
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render a reading on the terminal",
		Long: `Render a reading with the configured font and layout on the terminal,
and optionally save it as a PNG. No hardware is needed.

Examples:
  co2mon preview
  co2mon preview --co2 1200 --out preview.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			panel, err := screen2d.New(&screen2d.Opts{W: termSize.X, H: termSize.Y, Out: cmd.OutOrStdout()})
			if err != nil {
				return err
			}
			defer panel.Halt()
			s, err := newSurface(a.cfg, panel)
			if err != nil {
				return err
			}
			s.DrawReading(reading.Reading{
				CO2:         reading.PPM(co2),
				Temperature: physic.ZeroCelsius + celsius(temperature),
				Humidity:    physic.RelativeHumidity(humidity * float64(physic.PercentRH)),
			})
			if _, err := s.Commit(); err != nil {
				return err
			}
			if out != "" {
				return glyph.SavePNG(out, s.Image(), scale)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "also save the frame as a PNG")
	cmd.Flags().IntVar(&scale, "scale", 2, "PNG scale factor")
	cmd.Flags().Uint16Var(&co2, "co2", 800, "CO2 in ppm")
	cmd.Flags().Float64Var(&temperature, "temperature", 22.5, "temperature in °C")
	cmd.Flags().Float64Var(&humidity, "humidity", 45, "relative humidity in %")
	return cmd
}
