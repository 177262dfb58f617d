// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package waveshare2in9v2

// LUT contains the waveform that is used to program the display. The first
// 153 bytes go to the LUT register, followed by EOPT, gate voltage, three
// source voltages and VCOM.
type LUT []byte

const (
	lutWaveformLen = 153
	lutLen         = lutWaveformLen + 6
)

// FullUpdateLUT is the black and white waveform for a full refresh.
var FullUpdateLUT = LUT{
	0x80, 0x66, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x40, 0x00, 0x00, 0x00, // VS L0
	0x10, 0x66, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x20, 0x00, 0x00, 0x00, // VS L1
	0x80, 0x66, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x40, 0x00, 0x00, 0x00, // VS L2
	0x10, 0x66, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x20, 0x00, 0x00, 0x00, // VS L3
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // VS L4
	0x14, 0x08, 0x00, 0x00, 0x00, 0x00, 0x01, // TP, SR, RP of Group0
	0x0A, 0x0A, 0x00, 0x0A, 0x0A, 0x00, 0x01, // TP, SR, RP of Group1
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // TP, SR, RP of Group2
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // TP, SR, RP of Group3
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // TP, SR, RP of Group4
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // TP, SR, RP of Group5
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // TP, SR, RP of Group6
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // TP, SR, RP of Group7
	0x14, 0x08, 0x00, 0x01, 0x00, 0x00, 0x01, // TP, SR, RP of Group8
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01, // TP, SR, RP of Group9
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // TP, SR, RP of Group10
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // TP, SR, RP of Group11
	0x44, 0x44, 0x44, 0x44, 0x44, 0x44, 0x00, 0x00, 0x00, // FR, XON
	0x22, 0x17, 0x41, 0x00, 0x32, 0x36, // EOPT VGH VSH1 VSH2 VSL VCOM
}

// PartialUpdateLUT is the waveform for a partial refresh. Only pixels that
// differ from the previous image are driven.
var PartialUpdateLUT = LUT{
	0x00, 0x40, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // VS L0
	0x80, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // VS L1
	0x40, 0x40, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // VS L2
	0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // VS L3
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // VS L4
	0x0A, 0x00, 0x00, 0x00, 0x00, 0x00, 0x02, // TP, SR, RP of Group0
	0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // TP, SR, RP of Group1
	0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // TP, SR, RP of Group2
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // TP, SR, RP of Group3
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // TP, SR, RP of Group4
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // TP, SR, RP of Group5
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // TP, SR, RP of Group6
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // TP, SR, RP of Group7
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // TP, SR, RP of Group8
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // TP, SR, RP of Group9
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // TP, SR, RP of Group10
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // TP, SR, RP of Group11
	0x22, 0x22, 0x22, 0x22, 0x22, 0x22, 0x00, 0x00, 0x00, // FR, XON
	0x22, 0x17, 0x41, 0xB0, 0x32, 0x36, // EOPT VGH VSH1 VSH2 VSL VCOM
}
