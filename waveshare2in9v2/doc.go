// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package waveshare2in9v2 controls the Waveshare 2.9 inch v2 e-paper display
// (SSD1680 controller, 128x296 pixels, black and white).
//
// The driver exposes the vendor update sequence as separate steps: Init for a
// full or partial update, Write to upload an area of a frame buffer, Refresh
// to trigger the waveform and Sleep to enter deep sleep. The panel is put to
// deep sleep after every update, so each update starts with a hardware reset.
//
// Datasheet:
//
// https://www.waveshare.com/w/upload/7/79/2.9inch-e-paper-v2-specification.pdf
//
// Product page:
//
// https://www.waveshare.com/wiki/Pico-ePaper-2.9
package waveshare2in9v2
