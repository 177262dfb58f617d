// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/GermanBionicSystems/co2mon/config"
	"github.com/GermanBionicSystems/co2mon/metrics"
	"github.com/GermanBionicSystems/co2mon/monitor"
)

func loopOpts(c *config.Config, log monitor.Logger) *monitor.Opts {
	return &monitor.Opts{
		Period:           c.Loop.Period,
		RetryInterval:    c.Loop.RetryInterval,
		FailureThreshold: c.Loop.FailureThreshold,
		BackoffBase:      c.Loop.BackoffBase,
		BackoffCap:       c.Loop.BackoffCap,
		SkipUnchanged:    c.Loop.SkipUnchanged,
		Logger:           log,
	}
}

// run wires the sensor, the panel and the publisher and runs the loop until
// ctx is canceled. Any failure before the loop starts is fatal.
func (a *app) run(ctx context.Context) error {
	c := a.cfg
	if err := hostInit(); err != nil {
		return err
	}

	sensor, bus, err := openSensor(c)
	if err != nil {
		return err
	}
	defer bus.Close()
	a.log.Info("%s", sensor)
	if c.Sensor.TemperatureOffset != nil {
		if err := sensor.SetTemperatureOffset(celsius(*c.Sensor.TemperatureOffset)); err != nil {
			return err
		}
	}
	if c.Sensor.LowPower {
		err = sensor.StartLowPowerPeriodicMeasurement()
	} else {
		err = sensor.StartPeriodicMeasurement()
	}
	if err != nil {
		return err
	}
	defer func() {
		if e := sensor.Halt(); e != nil {
			a.log.Warn("sensor: %v", e)
		}
	}()

	panel, release, err := openPanel(c, os.Stdout)
	if err != nil {
		return err
	}
	defer func() {
		if e := release(); e != nil {
			a.log.Warn("panel: %v", e)
		}
	}()
	display, err := startDisplay(c, panel)
	if err != nil {
		return err
	}

	var pub monitor.Publisher
	if c.Metrics.Address != "" {
		p, err := metrics.New(c.Metrics.Address, &metrics.Opts{Labels: c.Metrics.Labels})
		if err != nil {
			return err
		}
		defer p.Close()
		a.log.Info("publishing to %s", p)
		pub = p
	}

	loop, err := monitor.New(sensor, display, pub, loopOpts(c, a.log))
	if err != nil {
		return err
	}

	if c.Status.Listen != "" {
		srv := &http.Server{
			Addr:              c.Status.Listen,
			Handler:           monitor.NewStatusHandler(loop),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			a.log.Info("status on %s", c.Status.Listen)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.log.Error("status: %v", err)
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				a.log.Warn("status: %v", err)
			}
		}()
	}

	a.log.Info("sampling every %s", c.Loop.Period)
	loop.Run(ctx)
	if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
		return fmt.Errorf("stopped: %w", cause)
	}
	return nil
}
