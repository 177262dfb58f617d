// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package co2mon is a container for the CO2 monitor packages.
//
// scd4x and waveshare2in9v2 are the device drivers, epdsurface keeps the
// frame shown on the panel, metrics forwards readings to a collector and
// monitor ties them together. The binary is in cmd/co2mon.
package co2mon
