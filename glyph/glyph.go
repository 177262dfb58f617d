// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package glyph draws text into monochrome frame buffers.
//
// Faces are either the fixed basicfont bitmap or one of the Go TrueType fonts
// rasterized at a given point size. Text is always drawn black; the area
// reported for a string covers its full line height so that clearing it
// removes every pixel the string may have set.
package glyph

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sort"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// ErrUnknownFace is returned by Face for an unsupported face name.
var ErrUnknownFace = errors.New("glyph: unknown face")

var ttfs = map[string][]byte{
	"goregular": goregular.TTF,
	"gomono":    gomono.TTF,
}

// Names returns the supported face names.
func Names() []string {
	n := []string{"basic"}
	for k := range ttfs {
		n = append(n, k)
	}
	sort.Strings(n)
	return n
}

// Face returns the named face. size is in points at 72 DPI, so one point is
// one pixel; it is ignored for "basic" which only exists as 7x13.
func Face(name string, size float64) (font.Face, error) {
	if name == "basic" {
		return basicfont.Face7x13, nil
	}
	ttf, ok := ttfs[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownFace, name)
	}
	if size <= 0 {
		return nil, fmt.Errorf("glyph: invalid size %g", size)
	}
	f, err := truetype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("glyph: %s: %w", name, err)
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// Bounds returns the area covered by text drawn with its baseline starting at
// dot: the advance horizontally and ascent plus descent vertically.
func Bounds(face font.Face, dot image.Point, text string) image.Rectangle {
	m := face.Metrics()
	adv := font.MeasureString(face, text)
	return image.Rect(
		dot.X,
		dot.Y-m.Ascent.Ceil(),
		dot.X+adv.Ceil(),
		dot.Y+m.Descent.Ceil(),
	)
}

// DrawString draws black text with its baseline starting at dot and returns
// the area it covers, as computed by Bounds.
func DrawString(dst draw.Image, face font.Face, dot image.Point, text string) image.Rectangle {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.P(dot.X, dot.Y),
	}
	d.DrawString(text)
	return Bounds(face, dot, text)
}

// Clear paints r white.
func Clear(dst draw.Image, r image.Rectangle) {
	draw.Draw(dst, r, image.NewUniform(color.White), image.Point{}, draw.Src)
}
