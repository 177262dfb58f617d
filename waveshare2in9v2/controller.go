// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package waveshare2in9v2

import (
	"image"

	"github.com/GermanBionicSystems/co2mon/epdsurface"
)

type controller interface {
	sendCommand(byte)
	sendData([]byte)
	waitUntilIdle()
}

// ramArea returns the whole controller RAM; horizontally in bytes.
func ramArea(opts *Opts) image.Rectangle {
	return image.Rect(0, 0, opts.Width/8, opts.Height)
}

func initDisplayFull(ctrl controller, opts *Opts) {
	ctrl.waitUntilIdle()
	ctrl.sendCommand(swReset)
	ctrl.waitUntilIdle()

	ctrl.sendCommand(driverOutputControl)
	ctrl.sendData([]byte{
		byte((opts.Height - 1) % 256),
		byte((opts.Height - 1) / 256),
		0x00,
	})

	setMemoryArea(ctrl, ramArea(opts))

	ctrl.sendCommand(displayUpdateControl1)
	ctrl.sendData([]byte{0x00, 0x80})

	ctrl.waitUntilIdle()

	loadLUT(ctrl, opts.FullUpdate)
}

// loadLUT programs the waveform and the voltages stored after it.
func loadLUT(ctrl controller, lut LUT) {
	ctrl.sendCommand(writeLutRegister)
	ctrl.sendData(lut[:lutWaveformLen])
	ctrl.waitUntilIdle()

	ctrl.sendCommand(endOptionEOPT)
	ctrl.sendData(lut[153:154])

	ctrl.sendCommand(gateDrivingVoltageControl)
	ctrl.sendData(lut[154:155])

	ctrl.sendCommand(sourceDrivingVoltageControl)
	ctrl.sendData(lut[155:158])

	ctrl.sendCommand(writeVcomRegister)
	ctrl.sendData(lut[158:159])
}

func initDisplayPartial(ctrl controller, opts *Opts) {
	ctrl.waitUntilIdle()

	ctrl.sendCommand(writeLutRegister)
	ctrl.sendData(opts.PartialUpdate[:lutWaveformLen])

	// Undocumented display option used in vendor example code.
	ctrl.sendCommand(writeRegisterForDisplayOption)
	ctrl.sendData([]byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x40, 0x00, 0x00, 0x00, 0x00})

	ctrl.sendCommand(borderWaveformControl)
	ctrl.sendData([]byte{0x80})

	ctrl.sendCommand(displayUpdateControl2)
	ctrl.sendData([]byte{displayUpdateEnableClock | displayUpdateEnableAnalog})

	ctrl.sendCommand(masterActivation)
	ctrl.waitUntilIdle()

	setMemoryArea(ctrl, ramArea(opts))
	ctrl.waitUntilIdle()
}

func updateDisplay(ctrl controller, mode epdsurface.Mode) {
	var flags byte

	switch mode {
	case epdsurface.Full:
		flags = displayUpdateEnableClock | displayUpdateEnableAnalog |
			displayUpdateDisplay | displayUpdateDisableAnalog | displayUpdateDisableClock
	case epdsurface.Partial:
		flags = displayUpdateDisplay | displayUpdateMode2 |
			displayUpdateDisableAnalog | displayUpdateDisableClock
	}

	ctrl.sendCommand(displayUpdateControl2)
	ctrl.sendData([]byte{flags})

	ctrl.sendCommand(masterActivation)
	ctrl.waitUntilIdle()
}

func deepSleep(ctrl controller) {
	// Turn off DC/DC converter, clock, output load and MCU. RAM content is
	// retained.
	ctrl.sendCommand(deepSleepMode)
	ctrl.sendData([]byte{0x01})
}
