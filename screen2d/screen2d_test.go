// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package screen2d

import (
	"bytes"
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/GermanBionicSystems/co2mon/epdsurface"
	"github.com/GermanBionicSystems/co2mon/reading"
	"github.com/maruel/ansi256"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

func newDev(t *testing.T, w, h int) (*Dev, *bytes.Buffer) {
	var out bytes.Buffer
	d, err := New(&Opts{W: w, H: h, Out: &out})
	if err != nil {
		t.Fatal(err)
	}
	return d, &out
}

func surfaceReading(i int) reading.Reading {
	return reading.Reading{
		CO2:         reading.PPM(400 + 10*i),
		Temperature: physic.ZeroCelsius + 21*physic.Celsius,
		Humidity:    40 * physic.PercentRH,
	}
}

func TestNew(t *testing.T) {
	if _, err := New(&Opts{W: 0, H: 4}); err == nil {
		t.Error("New() accepted an empty size")
	}
	d, out := newDev(t, 8, 4)
	if got, want := d.Bounds(), image.Rect(0, 0, 8, 4); got != want {
		t.Errorf("Bounds() = %v, want %v", got, want)
	}
	if d.String() != "Screen2D" {
		t.Errorf("String() = %q", d.String())
	}
	if out.Len() != 0 {
		t.Errorf("New() wrote %q", out.String())
	}
}

func TestAsleep(t *testing.T) {
	d, _ := newDev(t, 8, 4)
	img := image1bit.NewVerticalLSB(d.Bounds())
	if err := d.Write(d.Bounds(), img); !errors.Is(err, ErrAsleep) {
		t.Errorf("Write() = %v, want ErrAsleep", err)
	}
	if err := d.Refresh(epdsurface.Full); !errors.Is(err, ErrAsleep) {
		t.Errorf("Refresh() = %v, want ErrAsleep", err)
	}
	if err := d.Init(epdsurface.Partial); err != nil {
		t.Fatal(err)
	}
	if err := d.Sleep(); err != nil {
		t.Fatal(err)
	}
	if err := d.Refresh(epdsurface.Partial); !errors.Is(err, ErrAsleep) {
		t.Errorf("Refresh() after Sleep() = %v, want ErrAsleep", err)
	}
}

func TestRefresh(t *testing.T) {
	d, out := newDev(t, 8, 4)
	img := image1bit.NewVerticalLSB(d.Bounds())
	// All black but the top left block.
	img.SetBit(0, 0, image1bit.On)
	img.SetBit(1, 0, image1bit.On)
	img.SetBit(0, 1, image1bit.On)
	img.SetBit(1, 1, image1bit.On)

	if err := d.Init(epdsurface.Full); err != nil {
		t.Fatal(err)
	}
	if err := d.Write(d.Bounds(), img); err != nil {
		t.Fatal(err)
	}
	if err := d.Refresh(epdsurface.Full); err != nil {
		t.Fatal(err)
	}

	w := ansi256.Default.Block(white)
	b := ansi256.Default.Block(black)
	want := "\033[2J\033[H" +
		"\r\033[0m" + w + b + b + b + "\033[0m\n" +
		"\r\033[0m" + b + b + b + b + "\033[0m\n"
	if got := out.String(); got != want {
		t.Errorf("Refresh(full) output\n%q\nwant\n%q", got, want)
	}

	out.Reset()
	if err := d.Refresh(epdsurface.Partial); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); !strings.HasPrefix(got, "\033[H") || strings.Contains(got, "\033[2J") {
		t.Errorf("Refresh(partial) output %q", got)
	}

	if got := d.Refreshes(epdsurface.Full); got != 1 {
		t.Errorf("Refreshes(full) = %d, want 1", got)
	}
	if got := d.Refreshes(epdsurface.Partial); got != 1 {
		t.Errorf("Refreshes(partial) = %d, want 1", got)
	}
}

func TestWriteArea(t *testing.T) {
	d, _ := newDev(t, 8, 4)
	img := image1bit.NewVerticalLSB(d.Bounds())
	if err := d.Init(epdsurface.Partial); err != nil {
		t.Fatal(err)
	}
	if err := d.Write(image.Rect(4, 0, 20, 2), img); err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			want := image1bit.On
			if x >= 4 && y < 2 {
				want = image1bit.Off
			}
			if got := d.ram.BitAt(x, y); got != want {
				t.Errorf("ram(%d, %d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestSurface(t *testing.T) {
	d, out := newDev(t, 296, 128)
	s, err := epdsurface.New(d, &epdsurface.Opts{FullRefreshEvery: 2})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 4; i++ {
		s.DrawReading(surfaceReading(i))
		if _, err := s.Commit(); err != nil {
			t.Fatal(err)
		}
	}
	if got := d.Refreshes(epdsurface.Full); got != 2 {
		t.Errorf("Refreshes(full) = %d, want 2", got)
	}
	if got := d.Refreshes(epdsurface.Partial); got != 2 {
		t.Errorf("Refreshes(partial) = %d, want 2", got)
	}
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(out.String(), "\n\033[0m") {
		t.Error("Halt() did not reset colors")
	}
}
