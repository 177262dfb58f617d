// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package waveshare2in9v2

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"github.com/GermanBionicSystems/co2mon/epdsurface"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3/rpi"
)

// Commands
const (
	driverOutputControl            byte = 0x01
	gateDrivingVoltageControl      byte = 0x03
	sourceDrivingVoltageControl    byte = 0x04
	deepSleepMode                  byte = 0x10
	dataEntryModeSetting           byte = 0x11
	swReset                        byte = 0x12
	masterActivation               byte = 0x20
	displayUpdateControl1          byte = 0x21
	displayUpdateControl2          byte = 0x22
	writeRAMBW                     byte = 0x24
	writeRAMRed                    byte = 0x26
	writeVcomRegister              byte = 0x2C
	writeLutRegister               byte = 0x32
	writeRegisterForDisplayOption  byte = 0x37
	borderWaveformControl          byte = 0x3C
	endOptionEOPT                  byte = 0x3F
	setRAMXAddressStartEndPosition byte = 0x44
	setRAMYAddressStartEndPosition byte = 0x45
	setRAMXAddressCounter          byte = 0x4E
	setRAMYAddressCounter          byte = 0x4F
)

// Flags for the displayUpdateControl2 command
const (
	displayUpdateDisableClock byte = 1 << iota
	displayUpdateDisableAnalog
	displayUpdateDisplay
	displayUpdateMode2
	displayUpdateLoadLUTFromOTP
	displayUpdateLoadTemperature
	displayUpdateEnableClock
	displayUpdateEnableAnalog
)

const defaultBusyTimeout = 5 * time.Second

// ErrBusyTimeout is returned when the controller kept the busy line high for
// longer than Opts.BusyTimeout.
var ErrBusyTimeout = errors.New("waveshare2in9v2: busy timeout")

// Corner describes a corner on the physical device and is used to define the
// origin for drawing operations.
type Corner uint8

const (
	TopLeft Corner = iota
	TopRight
	BottomRight
	BottomLeft
)

// Opts definies the structure of the display configuration.
type Opts struct {
	// Width is the number of source lines, a multiple of 8.
	Width int
	// Height is the number of gate lines.
	Height int
	// Origin rotates the logical image. TopRight and BottomLeft swap width
	// and height.
	Origin Corner
	// BusyTimeout bounds every wait on the busy line. Defaults to 5s.
	BusyTimeout   time.Duration
	FullUpdate    LUT
	PartialUpdate LUT
}

func (o *Opts) busyTimeout() time.Duration {
	if o.BusyTimeout <= 0 {
		return defaultBusyTimeout
	}
	return o.BusyTimeout
}

// EPD2in9v2 contains the display configuration for the Waveshare 2.9" v2 in
// landscape orientation.
var EPD2in9v2 = Opts{
	Width:         128,
	Height:        296,
	Origin:        TopRight,
	BusyTimeout:   defaultBusyTimeout,
	FullUpdate:    FullUpdateLUT,
	PartialUpdate: PartialUpdateLUT,
}

// Dev defines the handler which is used to access the display.
type Dev struct {
	c conn.Conn

	dc   gpio.PinOut
	cs   gpio.PinOut
	rst  gpio.PinOut
	busy gpio.PinIn

	bounds image.Rectangle
	// Mode of the last Init; selects the RAMs written by Write.
	mode epdsurface.Mode

	opts *Opts
}

// flipPt returns a new image.Point with the X and Y coordinates exchanged.
func flipPt(pt image.Point) image.Point {
	return image.Point{X: pt.Y, Y: pt.X}
}

// New creates new handler which is used to access the display.
func New(p spi.Port, dc, cs, rst gpio.PinOut, busy gpio.PinIn, opts *Opts) (*Dev, error) {
	if opts.Width <= 0 || opts.Width%8 != 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("waveshare2in9v2: invalid size %dx%d", opts.Width, opts.Height)
	}
	if len(opts.FullUpdate) != lutLen || len(opts.PartialUpdate) != lutLen {
		return nil, fmt.Errorf("waveshare2in9v2: LUT must be %d bytes", lutLen)
	}

	displaySize := image.Pt(opts.Width, opts.Height)

	switch opts.Origin {
	case TopLeft, BottomRight:
	case TopRight, BottomLeft:
		displaySize = flipPt(displaySize)
	default:
		return nil, fmt.Errorf("waveshare2in9v2: unknown corner %v", opts.Origin)
	}

	c, err := p.Connect(4*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, err
	}

	if err := busy.In(gpio.Float, gpio.NoEdge); err != nil {
		return nil, err
	}

	d := &Dev{
		c:      c,
		dc:     dc,
		cs:     cs,
		rst:    rst,
		busy:   busy,
		bounds: image.Rectangle{Max: displaySize},
		opts:   opts,
	}

	return d, nil
}

// NewHat creates new handler which is used to access the display. Default Waveshare Hat configuration is used.
func NewHat(p spi.Port, opts *Opts) (*Dev, error) {
	dc := rpi.P1_22
	cs := rpi.P1_24
	rst := rpi.P1_11
	busy := rpi.P1_18
	return New(p, dc, cs, rst, busy, opts)
}

// Init resets the controller and loads the waveform for the mode. It must be
// called before every update since the controller is put to deep sleep after
// each one.
func (d *Dev) Init(mode epdsurface.Mode) error {
	if err := d.Reset(); err != nil {
		return err
	}

	eh := errorHandler{d: *d}

	switch mode {
	case epdsurface.Full:
		initDisplayFull(&eh, d.opts)
	case epdsurface.Partial:
		initDisplayPartial(&eh, d.opts)
	default:
		return fmt.Errorf("waveshare2in9v2: unknown mode %v", mode)
	}

	if eh.err == nil {
		d.mode = mode
	}

	return eh.err
}

// Write uploads the area of img to the controller. After a full Init both the
// current and the previous image RAM are written; after a partial Init only
// the current one, so the controller drives the pixels that differ.
func (d *Dev) Write(area image.Rectangle, img *image1bit.VerticalLSB) error {
	if !d.bounds.In(img.Bounds()) {
		return fmt.Errorf("waveshare2in9v2: image %v does not cover %v", img.Bounds(), d.bounds)
	}

	commands := []byte{writeRAMBW, writeRAMRed}
	if d.mode == epdsurface.Partial {
		commands = commands[:1]
	}

	eh := errorHandler{d: *d}

	drawImage(&eh, &drawOpts{
		devSize: d.bounds.Max,
		origin:  d.opts.Origin,
		buffer:  img,
		dstRect: area,
	}, commands)

	return eh.err
}

// Refresh applies the RAM content to the display and waits until the
// controller is idle.
func (d *Dev) Refresh(mode epdsurface.Mode) error {
	eh := errorHandler{d: *d}

	updateDisplay(&eh, mode)

	return eh.err
}

// Sleep makes the controller enter deep sleep mode. It can be woken up by
// calling Init again.
func (d *Dev) Sleep() error {
	eh := errorHandler{d: *d}

	deepSleep(&eh)

	return eh.err
}

// Reset the hardware.
func (d *Dev) Reset() error {
	eh := errorHandler{d: *d}

	eh.rstOut(gpio.High)
	time.Sleep(20 * time.Millisecond)
	eh.rstOut(gpio.Low)
	time.Sleep(2 * time.Millisecond)
	eh.rstOut(gpio.High)
	time.Sleep(20 * time.Millisecond)

	return eh.err
}

// ColorModel returns a 1Bit color model.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds returns the bounds for the configurated display.
func (d *Dev) Bounds() image.Rectangle {
	return d.bounds
}

// Draw draws the given image on a white background and does a full update.
func (d *Dev) Draw(dstRect image.Rectangle, src image.Image, srcPts image.Point) error {
	buf := image1bit.NewVerticalLSB(d.bounds)
	draw.Src.Draw(buf, buf.Bounds(), &image.Uniform{image1bit.On}, image.Point{})
	draw.Src.Draw(buf, dstRect, src, srcPts)

	if err := d.Init(epdsurface.Full); err != nil {
		return err
	}
	if err := d.Write(d.bounds, buf); err != nil {
		return err
	}
	if err := d.Refresh(epdsurface.Full); err != nil {
		return err
	}
	return d.Sleep()
}

// Halt clears the display.
func (d *Dev) Halt() error {
	return d.Draw(d.bounds, &image.Uniform{image1bit.On}, image.Point{})
}

// String returns a string containing configuration information.
func (d *Dev) String() string {
	return fmt.Sprintf("epd.Dev{%s, %s, Width: %d, Height: %d}", d.c, d.dc, d.bounds.Dx(), d.bounds.Dy())
}

var _ display.Drawer = &Dev{}
var _ epdsurface.Panel = &Dev{}
