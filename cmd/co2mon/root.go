// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/GermanBionicSystems/co2mon/config"
	"github.com/GermanBionicSystems/co2mon/monitor"
)

// app is the state shared by the commands once the configuration is loaded.
type app struct {
	configFile string
	envFile    string

	v   *viper.Viper
	cfg *config.Config
	log monitor.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}
	root := &cobra.Command{
		Use:   "co2mon",
		Short: "CO2, temperature and humidity monitor",
		Long: `co2mon reads an SCD4x sensor every period, renders the values on an
e-paper panel and sends them to a metrics collector over UDP.

Settings are read from co2mon.yaml, a .env file, CO2MON_ prefixed
environment variables and the flags below, in increasing precedence.

Examples:
  co2mon
  co2mon run --display-panel term
  co2mon sensor offset --set 4 --persist
  co2mon preview --out preview.png`,
		SilenceUsage:      true,
		PersistentPreRunE: a.load,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd.Context())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "configuration file (default co2mon.yaml)")
	pf.StringVar(&a.envFile, "env-file", "", "env file (default .env)")
	pf.String("sensor-bus", "", "I²C bus name")
	pf.Bool("sensor-low-power", false, "use the 30s low power periodic mode")
	pf.Float64("sensor-temperature-offset", 0, "temperature offset in °C applied at start")
	pf.String("display-panel", config.PanelEPD, "panel kind: epd, term or none")
	pf.String("display-spi", "", "SPI port name")
	pf.Uint("display-full-refresh-every", 50, "full refresh every N updates")
	pf.String("display-font", "goregular", "font face")
	pf.Float64("display-font-size", 18, "font size in points")
	pf.Duration("loop-period", 10*time.Second, "sampling period")
	pf.Bool("loop-skip-unchanged", false, "do not redraw an unchanged reading")
	pf.String("metrics-address", "", "collector host:port, empty disables publishing")
	pf.StringToString("metrics-labels", nil, "extra labels, e.g. room=lab")
	pf.String("status-listen", "", "HTTP status address, empty disables it")
	pf.Bool("log-debug", false, "enable debug logging")

	root.AddCommand(newRunCmd(a), newSensorCmd(a), newPreviewCmd(a))
	return root
}

func (a *app) load(cmd *cobra.Command, _ []string) error {
	if err := config.BindFlags(a.v, cmd.Flags()); err != nil {
		return err
	}
	cfg, err := config.Load(a.v, a.configFile, a.envFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = monitor.NewStdLogger("[co2mon]", cfg.Log.Debug)
	if cfg.File != "" {
		a.log.Debug("using %s", cfg.File)
	}
	return nil
}

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Sample, render and publish until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd.Context())
		},
	}
}
