// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package glyph

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
)

// Snapshot returns img scaled up by an integer factor with nearest neighbour
// sampling, framed by a one pixel grey border.
func Snapshot(img image.Image, scale int) (image.Image, error) {
	if scale < 1 {
		return nil, fmt.Errorf("glyph: invalid scale %d", scale)
	}
	b := img.Bounds()
	w, h := b.Dx()*scale, b.Dy()*scale
	rgba := image.NewRGBA(image.Rect(0, 0, w+2, h+2))

	dc := gg.NewContextForRGBA(rgba)
	dc.SetRGB(0.5, 0.5, 0.5)
	dc.Clear()
	xdraw.NearestNeighbor.Scale(rgba, image.Rect(1, 1, w+1, h+1), img, b, draw.Src, nil)
	return dc.Image(), nil
}

// SavePNG writes a scaled snapshot of img to path.
func SavePNG(path string, img image.Image, scale int) error {
	s, err := Snapshot(img, scale)
	if err != nil {
		return err
	}
	if err := gg.SavePNG(path, s); err != nil {
		return fmt.Errorf("glyph: %w", err)
	}
	return nil
}
