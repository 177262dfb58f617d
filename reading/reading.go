// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package reading defines the immutable measurement value passed from the
// sensor driver to the display and the metric publisher.
package reading

import (
	"fmt"
	"math"

	"periph.io/x/conn/v3/physic"
)

// PPM=Parts Per Million. Units of measure for CO2 concentration.
type PPM uint16

func (p PPM) String() string {
	return fmt.Sprintf("%d PPM", uint16(p))
}

// Reading is one successful sample. Temperature and Humidity are the periph
// fixed point units (nano kelvin and tenth of micro %rH).
type Reading struct {
	CO2         PPM
	Temperature physic.Temperature
	Humidity    physic.RelativeHumidity
}

// Celsius returns the temperature in degrees Celsius.
func (r Reading) Celsius() float64 {
	return r.Temperature.Celsius()
}

// Percent returns the relative humidity in percent.
func (r Reading) Percent() float64 {
	return float64(r.Humidity) / float64(physic.PercentRH)
}

// Round returns v rounded to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}

func (r Reading) String() string {
	return fmt.Sprintf("Temperature: %s Humidity: %s CO2: %s", r.Temperature, r.Humidity, r.CO2)
}
