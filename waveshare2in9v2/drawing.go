// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package waveshare2in9v2

import (
	"encoding/binary"
	"image"

	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// setMemoryArea configures the target drawing area (horizontal is in bytes,
// vertical in pixels).
func setMemoryArea(ctrl controller, area image.Rectangle) {
	startX, endX := uint8(area.Min.X), uint8(area.Max.X-1)
	startY, endY := uint16(area.Min.Y), uint16(area.Max.Y-1)

	startEndY := [4]byte{}
	binary.LittleEndian.PutUint16(startEndY[0:], startY)
	binary.LittleEndian.PutUint16(startEndY[2:], endY)

	ctrl.sendCommand(dataEntryModeSetting)
	ctrl.sendData([]byte{
		// Y increment, X increment; update address counter in X direction
		0b011,
	})

	ctrl.sendCommand(setRAMXAddressStartEndPosition)
	ctrl.sendData([]byte{startX, endX})

	ctrl.sendCommand(setRAMYAddressStartEndPosition)
	ctrl.sendData(startEndY[:4])

	ctrl.sendCommand(setRAMXAddressCounter)
	ctrl.sendData([]byte{startX})

	ctrl.sendCommand(setRAMYAddressCounter)
	ctrl.sendData(startEndY[:2])
}

type drawOpts struct {
	// Logical size of the display.
	devSize image.Point
	origin  Corner
	buffer  *image1bit.VerticalLSB
	dstRect image.Rectangle
}

type drawSpec struct {
	// Destination in buffer in pixels.
	DstRect image.Rectangle

	// Destination in device RAM, rotated to match the origin.
	MemDstRect image.Rectangle

	// Area to send to device; horizontally in bytes (thus aligned to
	// 8 pixels), vertically in pixels. Computed from MemDstRect.
	MemRect image.Rectangle
}

// spec pre-computes the rectangles required for sending image updates to the
// device.
func (o *drawOpts) spec() drawSpec {
	s := drawSpec{
		DstRect: image.Rectangle{Max: o.devSize}.Intersect(o.dstRect),
	}

	if s.DstRect.Empty() {
		return drawSpec{}
	}

	switch o.origin {
	case TopLeft:
		s.MemDstRect = s.DstRect

	case TopRight:
		s.MemDstRect.Min.X = o.devSize.Y - s.DstRect.Max.Y
		s.MemDstRect.Max.X = o.devSize.Y - s.DstRect.Min.Y

		s.MemDstRect.Min.Y = s.DstRect.Min.X
		s.MemDstRect.Max.Y = s.DstRect.Max.X

	case BottomRight:
		s.MemDstRect.Min.X = o.devSize.X - s.DstRect.Max.X
		s.MemDstRect.Max.X = o.devSize.X - s.DstRect.Min.X

		s.MemDstRect.Min.Y = o.devSize.Y - s.DstRect.Max.Y
		s.MemDstRect.Max.Y = o.devSize.Y - s.DstRect.Min.Y

	case BottomLeft:
		s.MemDstRect.Min.X = s.DstRect.Min.Y
		s.MemDstRect.Max.X = s.DstRect.Max.Y

		s.MemDstRect.Min.Y = o.devSize.X - s.DstRect.Max.X
		s.MemDstRect.Max.Y = o.devSize.X - s.DstRect.Min.X
	}

	s.MemRect.Min.X = s.MemDstRect.Min.X / 8
	s.MemRect.Max.X = (s.MemDstRect.Max.X + 7) / 8
	s.MemRect.Min.Y = s.MemDstRect.Min.Y
	s.MemRect.Max.Y = s.MemDstRect.Max.Y

	return s
}

// posFor returns the function mapping a RAM position (row, byte column in
// pixels, bit) to the logical buffer position.
func (o *drawOpts) posFor() func(destY, destX, bit int) image.Point {
	switch o.origin {
	case TopRight:
		return func(destY, destX, bit int) image.Point {
			return image.Point{
				X: destY,
				Y: o.devSize.Y - destX - bit - 1,
			}
		}

	case BottomRight:
		return func(destY, destX, bit int) image.Point {
			return image.Point{
				X: o.devSize.X - destX - bit - 1,
				Y: o.devSize.Y - destY - 1,
			}
		}

	case BottomLeft:
		return func(destY, destX, bit int) image.Point {
			return image.Point{
				X: o.devSize.X - destY - 1,
				Y: destX + bit,
			}
		}
	}

	return func(destY, destX, bit int) image.Point {
		return image.Point{
			X: destX + bit,
			Y: destY,
		}
	}
}

// sendImage sends the buffer area to the controller RAM selected by cmd after
// setting up the registers.
func (o *drawOpts) sendImage(ctrl controller, cmd byte, spec *drawSpec) {
	if spec.MemRect.Empty() {
		return
	}

	setMemoryArea(ctrl, spec.MemRect)

	ctrl.sendCommand(cmd)

	posFor := o.posFor()
	rowData := make([]byte, spec.MemRect.Dx())

	for destY := spec.MemRect.Min.Y; destY < spec.MemRect.Max.Y; destY++ {
		for destX := 0; destX < len(rowData); destX++ {
			rowData[destX] = 0

			for bit := 0; bit < 8; bit++ {
				bufPos := posFor(destY, (spec.MemRect.Min.X+destX)*8, bit)

				if o.buffer.BitAt(bufPos.X, bufPos.Y) {
					rowData[destX] |= 0x80 >> bit
				}
			}
		}

		ctrl.sendData(rowData)
	}
}

// drawImage uploads the destination area of the buffer to each RAM in
// commands. The buffer is kept in logical orientation; rotation happens while
// sending.
func drawImage(ctrl controller, opts *drawOpts, commands []byte) {
	s := opts.spec()

	for _, cmd := range commands {
		opts.sendImage(ctrl, cmd, &s)
	}
}
