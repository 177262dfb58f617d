// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/GermanBionicSystems/co2mon/reading"
	"github.com/GermanBionicSystems/co2mon/scd4x"
)

func newSensorCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sensor",
		Short: "Sensor maintenance",
	}
	cmd.AddCommand(newOffsetCmd(a), newReadCmd(a))
	return cmd
}

func newOffsetCmd(a *app) *cobra.Command {
	var (
		set     float64
		persist bool
	)
	cmd := &cobra.Command{
		Use:   "offset",
		Short: "Show or change the temperature offset",
		Long: `Show the temperature offset the sensor subtracts to compensate self
heating, or change it with --set. The new value is lost on power cycle
unless --persist is given.

Examples:
  co2mon sensor offset
  co2mon sensor offset --set 4 --persist`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := hostInit(); err != nil {
				return err
			}
			dev, bus, err := openSensor(a.cfg)
			if err != nil {
				return err
			}
			defer bus.Close()
			if cmd.Flags().Changed("set") {
				if err := dev.SetTemperatureOffset(celsius(set)); err != nil {
					return err
				}
			}
			if persist {
				if err := dev.PersistSettings(); err != nil {
					return err
				}
			}
			offset, err := dev.TemperatureOffset()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "temperature offset: %s\n", offset)
			return nil
		},
	}
	cmd.Flags().Float64Var(&set, "set", 0, "new offset in °C")
	cmd.Flags().BoolVar(&persist, "persist", false, "store the settings in the sensor EEPROM")
	return cmd
}

func newReadCmd(a *app) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "read",
		Short: "Take one measurement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := hostInit(); err != nil {
				return err
			}
			dev, bus, err := openSensor(a.cfg)
			if err != nil {
				return err
			}
			defer bus.Close()
			if err := dev.StartPeriodicMeasurement(); err != nil {
				return err
			}
			defer dev.Halt()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			r, err := waitReading(ctx, dev, time.Second)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), r)
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 15*time.Second, "time to wait for the first sample")
	return cmd
}

type measurer interface {
	ReadMeasurement() (reading.Reading, error)
}

// waitReading polls s every interval until a sample is available.
func waitReading(ctx context.Context, s measurer, interval time.Duration) (reading.Reading, error) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		r, err := s.ReadMeasurement()
		if !errors.Is(err, scd4x.ErrNotReady) {
			return r, err
		}
		select {
		case <-ctx.Done():
			return reading.Reading{}, fmt.Errorf("no sample: %w", context.Cause(ctx))
		case <-t.C:
		}
	}
}
