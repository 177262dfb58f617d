// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package waveshare2in9v2

import (
	"bytes"
	"image"
	"image/draw"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

func TestDrawSpec(t *testing.T) {
	for _, tc := range []struct {
		name string
		opts drawOpts
		want drawSpec
	}{
		{
			name: "empty",
		},
		{
			name: "smaller than display",
			opts: drawOpts{
				devSize: image.Pt(100, 200),
				dstRect: image.Rect(17, 4, 25, 8),
			},
			want: drawSpec{
				DstRect:    image.Rect(17, 4, 25, 8),
				MemDstRect: image.Rect(17, 4, 25, 8),
				MemRect:    image.Rect(2, 4, 4, 8),
			},
		},
		{
			name: "larger than display",
			opts: drawOpts{
				devSize: image.Pt(100, 200),
				dstRect: image.Rect(-20, 50, 125, 300),
			},
			want: drawSpec{
				DstRect:    image.Rect(0, 50, 100, 200),
				MemDstRect: image.Rect(0, 50, 100, 200),
				MemRect:    image.Rect(0, 50, 13, 200),
			},
		},
		{
			name: "top right",
			opts: drawOpts{
				devSize: image.Pt(296, 128),
				origin:  TopRight,
				dstRect: image.Rect(20, 39, 104, 52),
			},
			want: drawSpec{
				DstRect:    image.Rect(20, 39, 104, 52),
				MemDstRect: image.Rect(76, 20, 89, 104),
				MemRect:    image.Rect(9, 20, 12, 104),
			},
		},
		{
			name: "bottom left",
			opts: drawOpts{
				devSize: image.Pt(296, 128),
				origin:  BottomLeft,
				dstRect: image.Rect(20, 39, 104, 52),
			},
			want: drawSpec{
				DstRect:    image.Rect(20, 39, 104, 52),
				MemDstRect: image.Rect(39, 192, 52, 276),
				MemRect:    image.Rect(4, 192, 7, 276),
			},
		},
		{
			name: "bottom right",
			opts: drawOpts{
				devSize: image.Pt(128, 296),
				origin:  BottomRight,
				dstRect: image.Rect(0, 0, 8, 10),
			},
			want: drawSpec{
				DstRect:    image.Rect(0, 0, 8, 10),
				MemDstRect: image.Rect(120, 286, 128, 296),
				MemRect:    image.Rect(15, 286, 16, 296),
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.opts.spec()

			if diff := cmp.Diff(got, tc.want, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("spec() difference (-got +want):\n%s", diff)
			}
		})
	}
}

func TestSendImage(t *testing.T) {
	for _, tc := range []struct {
		name string
		cmd  byte
		opts drawOpts
		want []record
	}{
		{
			name: "empty",
			opts: drawOpts{
				buffer: image1bit.NewVerticalLSB(image.Rectangle{}),
			},
		},
		{
			name: "partial",
			cmd:  writeRAMBW,
			opts: drawOpts{
				devSize: image.Pt(64, 64),
				dstRect: image.Rect(16, 20, 32, 40),
				buffer:  image1bit.NewVerticalLSB(image.Rect(0, 0, 64, 64)),
			},
			want: []record{
				{cmd: dataEntryModeSetting, data: []byte{0x3}},
				{cmd: setRAMXAddressStartEndPosition, data: []byte{2, 4 - 1}},
				{cmd: setRAMYAddressStartEndPosition, data: []byte{20, 0, 40 - 1, 0}},
				{cmd: setRAMXAddressCounter, data: []byte{2}},
				{cmd: setRAMYAddressCounter, data: []byte{20, 0}},
				{
					cmd:  writeRAMBW,
					data: bytes.Repeat([]byte{0}, 2*(40-20)),
				},
			},
		},
		{
			name: "partial non-aligned",
			cmd:  writeRAMRed,
			opts: drawOpts{
				devSize: image.Pt(64, 64),
				dstRect: image.Rect(17, 4, 41, 8),
				buffer: func() *image1bit.VerticalLSB {
					img := image1bit.NewVerticalLSB(image.Rect(0, 0, 64, 64))
					draw.Src.Draw(img, image.Rect(17, 4, 41, 8), &image.Uniform{image1bit.On}, image.Point{})
					return img
				}(),
			},
			want: []record{
				{cmd: dataEntryModeSetting, data: []byte{0x3}},
				{cmd: setRAMXAddressStartEndPosition, data: []byte{2, 6 - 1}},
				{cmd: setRAMYAddressStartEndPosition, data: []byte{4, 0, 8 - 1, 0}},
				{cmd: setRAMXAddressCounter, data: []byte{2}},
				{cmd: setRAMYAddressCounter, data: []byte{4, 0}},
				{
					cmd:  writeRAMRed,
					data: bytes.Repeat([]byte{0x7f, 0xff, 0xff, 0x80}, 4),
				},
			},
		},
		{
			name: "top right",
			cmd:  writeRAMBW,
			opts: drawOpts{
				devSize: image.Pt(16, 8),
				origin:  TopRight,
				dstRect: image.Rect(0, 0, 16, 8),
				buffer: func() *image1bit.VerticalLSB {
					img := image1bit.NewVerticalLSB(image.Rect(0, 0, 16, 8))
					img.SetBit(0, 0, image1bit.On)
					img.SetBit(3, 7, image1bit.On)
					return img
				}(),
			},
			want: []record{
				{cmd: dataEntryModeSetting, data: []byte{0x3}},
				{cmd: setRAMXAddressStartEndPosition, data: []byte{0, 0}},
				{cmd: setRAMYAddressStartEndPosition, data: []byte{0, 0, 15, 0}},
				{cmd: setRAMXAddressCounter, data: []byte{0}},
				{cmd: setRAMYAddressCounter, data: []byte{0, 0}},
				{
					cmd:  writeRAMBW,
					data: []byte{0x01, 0, 0, 0x80, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
				},
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var got fakeController

			s := tc.opts.spec()
			tc.opts.sendImage(&got, tc.cmd, &s)

			if diff := diffRecords(got, tc.want); diff != "" {
				t.Errorf("sendImage() difference (-got +want):\n%s", diff)
			}
		})
	}
}

func TestDrawImage(t *testing.T) {
	buf := image1bit.NewVerticalLSB(image.Rect(0, 0, 8, 2))
	buf.SetBit(7, 1, image1bit.On)

	var got fakeController
	drawImage(&got, &drawOpts{
		devSize: image.Pt(8, 2),
		buffer:  buf,
		dstRect: buf.Bounds(),
	}, []byte{writeRAMBW, writeRAMRed})

	var want []record
	for _, cmd := range []byte{writeRAMBW, writeRAMRed} {
		want = append(want,
			record{cmd: dataEntryModeSetting, data: []byte{0x3}},
			record{cmd: setRAMXAddressStartEndPosition, data: []byte{0, 0}},
			record{cmd: setRAMYAddressStartEndPosition, data: []byte{0, 0, 1, 0}},
			record{cmd: setRAMXAddressCounter, data: []byte{0}},
			record{cmd: setRAMYAddressCounter, data: []byte{0, 0}},
			record{cmd: cmd, data: []byte{0x00, 0x01}},
		)
	}

	if diff := diffRecords(got, want); diff != "" {
		t.Errorf("drawImage() difference (-got +want):\n%s", diff)
	}
}
