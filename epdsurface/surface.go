// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package epdsurface renders readings onto a bistable panel.
//
// A Surface owns the frame buffer of the panel and decides for every commit
// whether the panel gets a full or a partial refresh. Partial refreshes are
// fast and do not flicker but leave ghosting behind, so every Nth commit is
// forced to be a full refresh. The very first commit is always full because
// the panel content is unknown at start.
package epdsurface

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/GermanBionicSystems/co2mon/glyph"
	"github.com/GermanBionicSystems/co2mon/reading"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// ErrUnresponsive wraps every panel failure during a commit.
var ErrUnresponsive = errors.New("epdsurface: panel unresponsive")

// RefreshState is the refresh policy counter.
type RefreshState struct {
	// PartialCount is the number of partial refreshes since the last full one.
	PartialCount uint
	// LastFullRefresh is zero until the first full refresh succeeded.
	LastFullRefresh time.Time
}

// Layout is the baseline origin of each field.
type Layout struct {
	Temperature image.Point
	Humidity    image.Point
	CO2         image.Point
}

// DefaultLayout fits a 296x128 landscape panel.
var DefaultLayout = Layout{
	Temperature: image.Pt(20, 50),
	Humidity:    image.Pt(160, 50),
	CO2:         image.Pt(20, 100),
}

// Opts is the Surface configuration.
type Opts struct {
	// FullRefreshEvery is N: every Nth commit is a full refresh. Must be at
	// least 1; 1 disables partial refreshes.
	FullRefreshEvery uint
	// Face defaults to basicfont.Face7x13.
	Face font.Face
	// Layout defaults to DefaultLayout.
	Layout *Layout
	// Now defaults to time.Now.
	Now func() time.Time
}

// DefaultOpts matches the vendor recommendation for the 2.9" panel.
var DefaultOpts = Opts{
	FullRefreshEvery: 50,
}

type field struct {
	dot  image.Point
	text string
	// Area covered by text; empty until first drawn.
	box image.Rectangle
}

// Surface is a frame buffer bound to a panel. It is not safe for concurrent
// use.
type Surface struct {
	p     Panel
	every uint
	face  font.Face
	now   func() time.Time

	buf    *image1bit.VerticalLSB
	fields [3]field
	dirty  image.Rectangle
	first  bool
	state  RefreshState
}

// New returns a Surface with an all white frame buffer sized to the panel.
// Nothing is sent to the panel until the first Commit.
func New(p Panel, opts *Opts) (*Surface, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if opts.FullRefreshEvery < 1 {
		return nil, fmt.Errorf("epdsurface: invalid full refresh interval %d", opts.FullRefreshEvery)
	}
	b := p.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("epdsurface: invalid panel bounds %v", b)
	}
	l := opts.Layout
	if l == nil {
		l = &DefaultLayout
	}
	s := &Surface{
		p:     p,
		every: opts.FullRefreshEvery,
		face:  opts.Face,
		now:   opts.Now,
		buf:   image1bit.NewVerticalLSB(b),
		fields: [3]field{
			{dot: l.Temperature},
			{dot: l.Humidity},
			{dot: l.CO2},
		},
		first: true,
	}
	if s.face == nil {
		s.face = basicfont.Face7x13
	}
	if s.now == nil {
		s.now = time.Now
	}
	glyph.Clear(s.buf, b)
	return s, nil
}

// Labels returns the text of each field for r, in layout order: temperature,
// humidity, CO2.
func Labels(r reading.Reading) [3]string {
	return [3]string{
		fmt.Sprintf("Temp: %2.1f C", r.Celsius()),
		fmt.Sprintf("Hum: %2.1f %%", r.Percent()),
		fmt.Sprintf("CO2: %4d ppm", uint16(r.CO2)),
	}
}

// DrawReading renders r into the frame buffer. Fields whose text did not
// change are left alone unless their box overlaps the box of a field that is
// redrawn, since clearing that box would erase part of them. The panel is not
// touched until Commit.
func (s *Surface) DrawReading(r reading.Reading) {
	labels := Labels(r)
	var redraw [len(labels)]bool
	for i := range s.fields {
		f := &s.fields[i]
		redraw[i] = f.text != labels[i] || f.box.Empty()
	}
	for grown := true; grown; {
		grown = false
		for i := range s.fields {
			if redraw[i] {
				continue
			}
			for j := range s.fields {
				if redraw[j] && s.fields[i].box.Overlaps(s.fields[j].box) {
					redraw[i] = true
					grown = true
					break
				}
			}
		}
	}

	for i := range s.fields {
		if redraw[i] {
			glyph.Clear(s.buf, s.fields[i].box)
			s.dirty = s.dirty.Union(s.fields[i].box)
		}
	}
	for i := range s.fields {
		if !redraw[i] {
			continue
		}
		f := &s.fields[i]
		f.box = glyph.DrawString(s.buf, s.face, f.dot, labels[i])
		f.text = labels[i]
		s.dirty = s.dirty.Union(f.box)
	}
	s.dirty = s.dirty.Intersect(s.buf.Bounds())
}

// Commit sends the frame buffer to the panel and returns the refresh mode
// that was chosen.
//
// On failure the returned error wraps ErrUnresponsive, the refresh state is
// left as it was before the call and the changed area is kept for the next
// commit.
func (s *Surface) Commit() (Mode, error) {
	count := s.state.PartialCount + 1
	mode := Partial
	if s.first || count >= s.every {
		mode = Full
	}

	var err error
	switch {
	case mode == Full:
		err = s.update(Full, s.buf.Bounds())
	case !s.dirty.Empty():
		err = s.update(Partial, s.dirty)
	}
	if err != nil {
		return mode, fmt.Errorf("%w: %s refresh: %w", ErrUnresponsive, mode, err)
	}

	if mode == Full {
		s.state.PartialCount = 0
		s.state.LastFullRefresh = s.now()
		s.first = false
	} else {
		s.state.PartialCount = count
	}
	s.dirty = image.Rectangle{}
	return mode, nil
}

// State returns the refresh policy counters.
func (s *Surface) State() RefreshState {
	return s.state
}

// Image returns the frame buffer. It must not be modified.
func (s *Surface) Image() image.Image {
	return s.buf
}

// Bounds returns the frame buffer size.
func (s *Surface) Bounds() image.Rectangle {
	return s.buf.Bounds()
}

func (s *Surface) update(m Mode, area image.Rectangle) error {
	if err := s.p.Init(m); err != nil {
		return err
	}
	if err := s.p.Write(area, s.buf); err != nil {
		return err
	}
	if err := s.p.Refresh(m); err != nil {
		return err
	}
	return s.p.Sleep()
}
