// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"image"
	"io"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/co2mon/config"
	"github.com/GermanBionicSystems/co2mon/epdsurface"
	"github.com/GermanBionicSystems/co2mon/glyph"
	"github.com/GermanBionicSystems/co2mon/monitor"
	"github.com/GermanBionicSystems/co2mon/scd4x"
	"github.com/GermanBionicSystems/co2mon/screen2d"
	"github.com/GermanBionicSystems/co2mon/waveshare2in9v2"
)

// termSize matches the 2.9" panel in landscape orientation.
var termSize = image.Pt(296, 128)

func hostInit() error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("host: %w", err)
	}
	return nil
}

// celsius converts a configured offset in °C.
func celsius(c float64) physic.Temperature {
	return physic.Temperature(c * float64(physic.Celsius))
}

// openSensor opens the bus and the sensor. The bus must be closed by the
// caller.
func openSensor(c *config.Config) (*scd4x.Dev, i2c.BusCloser, error) {
	bus, err := i2creg.Open(c.Sensor.Bus)
	if err != nil {
		return nil, nil, fmt.Errorf("i2c: %w", err)
	}
	dev, err := scd4x.NewI2C(bus, c.Sensor.Address)
	if err != nil {
		bus.Close()
		return nil, nil, err
	}
	return dev, bus, nil
}

// openPanel returns the configured panel and the function releasing it. The
// panel is nil for config.PanelNone.
func openPanel(c *config.Config, out io.Writer) (epdsurface.Panel, func() error, error) {
	switch c.Display.Panel {
	case config.PanelEPD:
		port, err := spireg.Open(c.Display.SPI)
		if err != nil {
			return nil, nil, fmt.Errorf("spi: %w", err)
		}
		dev, err := waveshare2in9v2.NewHat(port, &waveshare2in9v2.EPD2in9v2)
		if err != nil {
			port.Close()
			return nil, nil, err
		}
		return dev, func() error {
			return errors.Join(dev.Sleep(), port.Close())
		}, nil
	case config.PanelTerm:
		dev, err := screen2d.New(&screen2d.Opts{W: termSize.X, H: termSize.Y, Out: out})
		if err != nil {
			return nil, nil, err
		}
		return dev, dev.Halt, nil
	case config.PanelNone:
		return nil, func() error { return nil }, nil
	}
	return nil, nil, fmt.Errorf("unknown panel %q", c.Display.Panel)
}

// startDisplay initializes the panel once and returns the surface drawing on
// it, or nil when there is no panel. A panel that does not answer is reported
// here instead of on every tick.
func startDisplay(c *config.Config, p epdsurface.Panel) (monitor.Display, error) {
	if p == nil {
		return nil, nil
	}
	if err := p.Init(epdsurface.Full); err != nil {
		return nil, fmt.Errorf("panel init: %w", err)
	}
	if err := p.Sleep(); err != nil {
		return nil, fmt.Errorf("panel sleep: %w", err)
	}
	s, err := newSurface(c, p)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func newSurface(c *config.Config, p epdsurface.Panel) (*epdsurface.Surface, error) {
	face, err := glyph.Face(c.Display.Font, c.Display.FontSize)
	if err != nil {
		return nil, err
	}
	return epdsurface.New(p, &epdsurface.Opts{
		FullRefreshEvery: c.Display.FullRefreshEvery,
		Face:             face,
	})
}
