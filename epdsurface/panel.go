// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epdsurface

import (
	"image"

	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Mode selects the refresh waveform.
type Mode uint8

const (
	// Full drives every pixel through the complete waveform. Slow and
	// flickering, but removes ghosting.
	Full Mode = iota
	// Partial only drives pixels that changed since the last update.
	Partial
)

func (m Mode) String() string {
	switch m {
	case Full:
		return "full"
	case Partial:
		return "partial"
	}
	return "unknown"
}

// Panel is the command sequence of a bistable display controller.
//
// An update is Init, one or more Write, Refresh and Sleep, in that order.
// The panel keeps its image without power once refreshed.
type Panel interface {
	// Bounds returns the logical size of the panel.
	Bounds() image.Rectangle
	// Init wakes the controller and loads the waveform for the mode.
	Init(m Mode) error
	// Write uploads the area of img to the controller RAM. The controller may
	// round the area out to its RAM granularity; img must cover Bounds.
	Write(area image.Rectangle, img *image1bit.VerticalLSB) error
	// Refresh applies the RAM content to the display and blocks until done.
	Refresh(m Mode) error
	// Sleep enters deep sleep.
	Sleep() error
}
