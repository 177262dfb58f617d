// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package screen2d implements a monochrome bistable panel that outputs to the
// terminal (stdout) using ANSI color codes.
//
// It follows the same command sequence as an e-paper controller so the whole
// monitor can run on a machine without a display attached. A full refresh
// clears the terminal before drawing, a partial refresh redraws in place.
package screen2d

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/GermanBionicSystems/co2mon/epdsurface"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// ErrAsleep is returned when Write or Refresh is called before Init.
var ErrAsleep = errors.New("screen2d: panel is asleep")

var (
	white = color.NRGBA{255, 255, 255, 255}
	black = color.NRGBA{0, 0, 0, 255}
)

// Opts represents the options available for this display.
type Opts struct {
	W, H int
	// Step is the number of pixels per terminal block in each direction.
	// Defaults to 2.
	Step    int
	Palette *ansi256.Palette
	// Out defaults to stdout.
	Out io.Writer

	_ struct{}
}

// Dev is a bistable panel emulator that outputs to the console.
type Dev struct {
	w       io.Writer
	step    int
	palette ansi256.Palette

	ram    *image1bit.VerticalLSB
	awake  bool
	counts map[epdsurface.Mode]int
	buf    bytes.Buffer
}

// New returns a Dev that displays at the console.
func New(opts *Opts) (*Dev, error) {
	if opts.W <= 0 || opts.H <= 0 {
		return nil, fmt.Errorf("screen2d: invalid size %dx%d", opts.W, opts.H)
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.Out
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	step := opts.Step
	if step <= 0 {
		step = 2
	}
	d := &Dev{
		w:       w,
		step:    step,
		palette: *p,
		ram:     image1bit.NewVerticalLSB(image.Rect(0, 0, opts.W, opts.H)),
		counts:  map[epdsurface.Mode]int{},
	}
	draw.Src.Draw(d.ram, d.ram.Bounds(), &image.Uniform{image1bit.On}, image.Point{})
	return d, nil
}

func (d *Dev) String() string {
	return "Screen2D"
}

// Init implements epdsurface.Panel.
func (d *Dev) Init(epdsurface.Mode) error {
	d.awake = true
	return nil
}

// Write implements epdsurface.Panel.
func (d *Dev) Write(area image.Rectangle, img *image1bit.VerticalLSB) error {
	if !d.awake {
		return ErrAsleep
	}
	area = area.Intersect(d.Bounds())
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			d.ram.SetBit(x, y, img.BitAt(x, y))
		}
	}
	return nil
}

// Refresh implements epdsurface.Panel.
func (d *Dev) Refresh(m epdsurface.Mode) error {
	if !d.awake {
		return ErrAsleep
	}
	d.counts[m]++
	return d.refresh(m == epdsurface.Full)
}

// Sleep implements epdsurface.Panel.
func (d *Dev) Sleep() error {
	d.awake = false
	return nil
}

// Refreshes returns the number of refreshes done in mode m.
func (d *Dev) Refreshes(m epdsurface.Mode) int {
	return d.counts[m]
}

// Halt implements conn.Resource.
//
// It resets the terminal colors so it is not corrupted.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\n\033[0m"))
	return err
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return d.ram.Bounds()
}

// Draw implements display.Drawer. It always does a full refresh.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	draw.Src.Draw(d.ram, r, src, sp)
	d.counts[epdsurface.Full]++
	return d.refresh(true)
}

// block returns the color of the step x step block at x, y. A block is black
// if any of its pixels is, so one pixel wide strokes survive.
func (d *Dev) block(x, y int) color.NRGBA {
	r := image.Rect(x, y, x+d.step, y+d.step).Intersect(d.ram.Bounds())
	for by := r.Min.Y; by < r.Max.Y; by++ {
		for bx := r.Min.X; bx < r.Max.X; bx++ {
			if !d.ram.BitAt(bx, by) {
				return black
			}
		}
	}
	return white
}

func (d *Dev) refresh(clear bool) error {
	// This code is designed to minimize the amount of memory allocated per call.
	d.buf.Reset()
	if clear {
		_, _ = d.buf.WriteString("\033[2J")
	}
	_, _ = d.buf.WriteString("\033[H")
	b := d.ram.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y += d.step {
		_, _ = d.buf.WriteString("\r\033[0m")
		for x := b.Min.X; x < b.Max.X; x += d.step {
			_, _ = io.WriteString(&d.buf, d.palette.Block(d.block(x, y)))
		}
		_, _ = d.buf.WriteString("\033[0m\n")
	}
	_, err := d.buf.WriteTo(d.w)
	return err
}

var _ display.Drawer = &Dev{}
var _ epdsurface.Panel = &Dev{}
var _ fmt.Stringer = &Dev{}
