// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package waveshare2in9v2

import (
	"testing"

	"github.com/GermanBionicSystems/co2mon/epdsurface"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

type record struct {
	cmd  byte
	data []byte
}

type fakeController []record

func (r *fakeController) sendCommand(cmd byte) {
	*r = append(*r, record{
		cmd: cmd,
	})
}

func (r *fakeController) sendData(data []byte) {
	cur := &(*r)[len(*r)-1]
	cur.data = append(cur.data, data...)
}

func (*fakeController) waitUntilIdle() {
}

func diffRecords(got fakeController, want []record) string {
	return cmp.Diff([]record(got), want, cmpopts.EquateEmpty(), cmp.AllowUnexported(record{}))
}

func fullRAMArea() []record {
	return []record{
		{cmd: dataEntryModeSetting, data: []byte{0x03}},
		{cmd: setRAMXAddressStartEndPosition, data: []byte{0, 128/8 - 1}},
		{cmd: setRAMYAddressStartEndPosition, data: []byte{0, 0, 0x27, 0x01}},
		{cmd: setRAMXAddressCounter, data: []byte{0}},
		{cmd: setRAMYAddressCounter, data: []byte{0, 0}},
	}
}

func TestInitDisplayFull(t *testing.T) {
	want := []record{
		{cmd: swReset},
		{cmd: driverOutputControl, data: []byte{0x27, 0x01, 0x00}},
	}
	want = append(want, fullRAMArea()...)
	want = append(want,
		record{cmd: displayUpdateControl1, data: []byte{0x00, 0x80}},
		record{cmd: writeLutRegister, data: FullUpdateLUT[:153]},
		record{cmd: endOptionEOPT, data: []byte{0x22}},
		record{cmd: gateDrivingVoltageControl, data: []byte{0x17}},
		record{cmd: sourceDrivingVoltageControl, data: []byte{0x41, 0x00, 0x32}},
		record{cmd: writeVcomRegister, data: []byte{0x36}},
	)

	var got fakeController
	opts := EPD2in9v2
	initDisplayFull(&got, &opts)

	if diff := diffRecords(got, want); diff != "" {
		t.Errorf("initDisplayFull() difference (-got +want):\n%s", diff)
	}
}

func TestInitDisplayPartial(t *testing.T) {
	want := []record{
		{cmd: writeLutRegister, data: PartialUpdateLUT[:153]},
		{cmd: writeRegisterForDisplayOption, data: []byte{0, 0, 0, 0, 0, 0x40, 0, 0, 0, 0}},
		{cmd: borderWaveformControl, data: []byte{0x80}},
		{cmd: displayUpdateControl2, data: []byte{0xc0}},
		{cmd: masterActivation},
	}
	want = append(want, fullRAMArea()...)

	var got fakeController
	opts := EPD2in9v2
	initDisplayPartial(&got, &opts)

	if diff := diffRecords(got, want); diff != "" {
		t.Errorf("initDisplayPartial() difference (-got +want):\n%s", diff)
	}
}

func TestUpdateDisplay(t *testing.T) {
	for _, tc := range []struct {
		name string
		mode epdsurface.Mode
		want []record
	}{
		{
			name: "full",
			mode: epdsurface.Full,
			want: []record{
				{cmd: displayUpdateControl2, data: []byte{0xc7}},
				{cmd: masterActivation},
			},
		},
		{
			name: "partial",
			mode: epdsurface.Partial,
			want: []record{
				{cmd: displayUpdateControl2, data: []byte{0x0f}},
				{cmd: masterActivation},
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var got fakeController

			updateDisplay(&got, tc.mode)

			if diff := diffRecords(got, tc.want); diff != "" {
				t.Errorf("updateDisplay() difference (-got +want):\n%s", diff)
			}
		})
	}
}

func TestDeepSleep(t *testing.T) {
	var got fakeController

	deepSleep(&got)

	if diff := diffRecords(got, []record{{cmd: deepSleepMode, data: []byte{0x01}}}); diff != "" {
		t.Errorf("deepSleep() difference (-got +want):\n%s", diff)
	}
}
