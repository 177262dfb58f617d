// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package scd4x

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/GermanBionicSystems/co2mon/common"
	"github.com/GermanBionicSystems/co2mon/reading"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

const (
	// These devices only support this i2c address.
	SensorAddress uint16 = 0x62
)

var (
	// ErrNotReady is returned by ReadMeasurement when the sensor has no new
	// sample yet. It is not a communication fault.
	ErrNotReady = errors.New("scd4x: data not ready")
	// ErrIntegrity is returned when a response word fails its CRC check. The
	// whole response is discarded.
	ErrIntegrity = errors.New("scd4x: integrity fault")
	// ErrBusTimeout wraps every failed bus transaction.
	ErrBusTimeout = errors.New("scd4x: bus timeout")
	// ErrSensing is returned for commands that the sensor refuses while
	// periodic measurement is running.
	ErrSensing = errors.New("scd4x: command not allowed during periodic measurement")
	// ErrNotSensing is returned by ReadMeasurement before periodic measurement
	// was started.
	ErrNotSensing = errors.New("scd4x: periodic measurement not started")
)

type cmd uint16

// Structure to simplify sending commands to the device.
type command struct {
	// The 16-bit command words.
	cmdWord cmd
	// The expected number of bytes returned. 0, 3, or 9.
	responseSize int
	// Time the sensor needs before the response can be read or the next
	// command can be sent.
	execTime time.Duration
	// True if this command is permitted while the sensor is running in
	// acquisition mode.
	whileSensing bool
}

var cmdStartMeasurement = command{
	cmdWord: 0x21b1,
}

var cmdStartLowPowerMeasurement = command{
	cmdWord: 0x21ac,
}

var cmdReadMeasurement = command{
	cmdWord:      0xec05,
	responseSize: 9,
	execTime:     time.Millisecond,
	whileSensing: true,
}

var cmdStopMeasurement = command{
	cmdWord:      0x3f86,
	execTime:     500 * time.Millisecond,
	whileSensing: true,
}

var cmdGetDataReadyStatus = command{
	cmdWord:      0xe4b8,
	responseSize: 3,
	execTime:     time.Millisecond,
	whileSensing: true,
}

var cmdGetTemperatureOffset = command{
	cmdWord:      0x2318,
	responseSize: 3,
	execTime:     time.Millisecond,
}

var cmdSetTemperatureOffset = command{
	cmdWord:  0x241d,
	execTime: time.Millisecond,
}

var cmdPersistSettings = command{
	cmdWord:  0x3615,
	execTime: 800 * time.Millisecond,
}

var cmdGetSerialNumber = command{
	cmdWord:      0x3682,
	responseSize: 9,
	execTime:     time.Millisecond,
}

var cmdPerformFactoryReset = command{
	cmdWord:  0x3632,
	execTime: 1200 * time.Millisecond,
}

var cmdReinit = command{
	cmdWord:  0x3646,
	execTime: 30 * time.Millisecond,
}

var cmdMeasureSingleShot = command{
	cmdWord:  0x219d,
	execTime: 5000 * time.Millisecond,
}

var cmdWakeUp = command{
	cmdWord:  0x36f6,
	execTime: 30 * time.Millisecond,
}

// Mask applied to the data ready status word. Zero means no new sample.
const dataReadyMask = 1<<11 - 1

// clock abstracts waiting so that tests don't sleep.
type clock interface {
	Now() time.Time
	Sleep(time.Duration)
}

type wallClock struct{}

func (wallClock) Now() time.Time        { return time.Now() }
func (wallClock) Sleep(d time.Duration) { time.Sleep(d) }

// Dev represents an SCD4x device.
type Dev struct {
	// The bus connection; an *i2c.Dev on real hardware.
	c   conn.Conn
	clk clock
	mu  sync.Mutex
	// True if the device is in periodic measurement mode.
	sensing bool
	// Earliest time the next command may be issued.
	readyAt time.Time
}

// NewI2C creates a new SCD4x sensor using the supplied bus and address.
// The constant value SensorAddress should be supplied as the value for
// addr.
//
// The sensor is woken up, any periodic measurement left running by a previous
// process is stopped and the serial number is read to prove the device
// answers. Measurement is not started.
func NewI2C(b i2c.Bus, addr uint16) (*Dev, error) {
	d := newDev(&i2c.Dev{Bus: b, Addr: addr}, wallClock{})
	if err := d.init(); err != nil {
		return nil, err
	}
	return d, nil
}

func newDev(c conn.Conn, clk clock) *Dev {
	return &Dev{c: c, clk: clk}
}

func (d *Dev) init() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	// The sensor does not acknowledge the wake up command.
	_, _ = d.sendCommand(cmdWakeUp)
	// Accepted in idle mode too; clears a measurement left over by a previous
	// run so the following idle-only command is accepted.
	if _, err := d.sendCommand(cmdStopMeasurement); err != nil {
		return err
	}
	if _, err := d.sendCommand(cmdGetSerialNumber); err != nil {
		return fmt.Errorf("scd4x: no device: %w", err)
	}
	return nil
}

// StartPeriodicMeasurement starts measuring every 5 seconds.
func (d *Dev) StartPeriodicMeasurement() error {
	return d.start(cmdStartMeasurement)
}

// StartLowPowerPeriodicMeasurement starts measuring every 30 seconds.
func (d *Dev) StartLowPowerPeriodicMeasurement() error {
	return d.start(cmdStartLowPowerMeasurement)
}

func (d *Dev) start(c command) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sensing {
		return nil
	}
	if _, err := d.sendCommand(c); err != nil {
		return err
	}
	d.sensing = true
	return nil
}

// StopPeriodicMeasurement returns the sensor to idle mode. The call blocks for
// the 500ms the sensor needs before it accepts further commands.
func (d *Dev) StopPeriodicMeasurement() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.sensing {
		return nil
	}
	if _, err := d.sendCommand(cmdStopMeasurement); err != nil {
		return err
	}
	d.sensing = false
	d.waitReady()
	return nil
}

// ReadMeasurement returns the latest sample.
//
// It first queries the data ready status and returns ErrNotReady when no new
// sample is available. A response with any bad checksum yields ErrIntegrity
// and no reading.
func (d *Dev) ReadMeasurement() (reading.Reading, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.sensing {
		return reading.Reading{}, ErrNotSensing
	}
	words, err := d.sendCommand(cmdGetDataReadyStatus)
	if err != nil {
		return reading.Reading{}, err
	}
	if words[0]&dataReadyMask == 0 {
		return reading.Reading{}, ErrNotReady
	}
	return d.readMeasurement()
}

func (d *Dev) readMeasurement() (reading.Reading, error) {
	words, err := d.sendCommand(cmdReadMeasurement)
	if err != nil {
		return reading.Reading{}, err
	}
	return reading.Reading{
		CO2:         reading.PPM(words[0]),
		Temperature: countToTemp(words[1]),
		Humidity:    countToHumidity(words[2]),
	}, nil
}

// MeasureSingleShot performs an on-demand measurement. SCD41 only. The sensor
// must be idle; the call blocks for 5 seconds.
func (d *Dev) MeasureSingleShot() (reading.Reading, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := d.sendCommand(cmdMeasureSingleShot); err != nil {
		return reading.Reading{}, err
	}
	return d.readMeasurement()
}

// TemperatureOffset returns the offset the sensor subtracts from its
// temperature reading to compensate self heating.
func (d *Dev) TemperatureOffset() (physic.Temperature, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	words, err := d.sendCommand(cmdGetTemperatureOffset)
	if err != nil {
		return 0, err
	}
	return countToOffset(words[0]), nil
}

// SetTemperatureOffset changes the temperature offset. The value is lost on
// power cycle unless PersistSettings is called.
func (d *Dev) SetTemperatureOffset(offset physic.Temperature) error {
	if offset < 0 || offset > 175*physic.Celsius {
		return fmt.Errorf("scd4x: invalid temperature offset %s", offset)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	_, err := d.sendCommand(cmdSetTemperatureOffset, offsetToCount(offset))
	return err
}

// PersistSettings writes the current configuration to the sensor EEPROM for
// use on the next power-up.
func (d *Dev) PersistSettings() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, err := d.sendCommand(cmdPersistSettings)
	return err
}

// WakeUp wakes the sensor from sleep mode. The sensor does not acknowledge
// the command, so bus errors are not reported.
func (d *Dev) WakeUp() {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, _ = d.sendCommand(cmdWakeUp)
}

// Reinit reloads the settings stored in EEPROM.
func (d *Dev) Reinit() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, err := d.sendCommand(cmdReinit)
	return err
}

// FactoryReset erases the stored configuration and calibration history.
func (d *Dev) FactoryReset() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, err := d.sendCommand(cmdPerformFactoryReset)
	return err
}

// SerialNumber returns the 48 bit unique serial number of the device.
func (d *Dev) SerialNumber() (uint64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	words, err := d.sendCommand(cmdGetSerialNumber)
	if err != nil {
		return 0, err
	}
	return uint64(words[0])<<32 | uint64(words[1])<<16 | uint64(words[2]), nil
}

// Sensing reports whether periodic measurement is running.
func (d *Dev) Sensing() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sensing
}

// Halt implements conn.Resource. It stops periodic measurement.
func (d *Dev) Halt() error {
	return d.StopPeriodicMeasurement()
}

// Precision returns the sensor's resolution, or minimum value between steps the
// device can make. The specified precision is 1 PPM for CO2, 1/65535 for temperature
// and humidity.
func (d *Dev) Precision() reading.Reading {
	countIncrement := float64(1.0) / float64((1<<16)-1)
	return reading.Reading{
		CO2:         1,
		Temperature: physic.Temperature(countIncrement * float64(physic.Celsius)),
		Humidity:    physic.RelativeHumidity(float64(physic.PercentRH) * countIncrement),
	}
}

func (d *Dev) String() string {
	return fmt.Sprintf("scd4x: %s", d.c)
}

func (d *Dev) waitReady() {
	if wait := d.readyAt.Sub(d.clk.Now()); wait > 0 {
		d.clk.Sleep(wait)
	}
}

// All commands to read or write to the sensor go through this function. The
// command is written, the execution time is waited out and, if the command has
// a response, it is read in a second transaction and checked.
func (d *Dev) sendCommand(c command, args ...uint16) ([]uint16, error) {
	if d.sensing && !c.whileSensing {
		return nil, fmt.Errorf("%w: 0x%04x", ErrSensing, c.cmdWord)
	}

	d.waitReady()

	w := []byte{byte(c.cmdWord >> 8), byte(c.cmdWord)}
	w = append(w, common.EncodeWords(args...)...)
	err := d.c.Tx(w, nil)
	d.readyAt = d.clk.Now().Add(c.execTime)
	if err != nil {
		return nil, fmt.Errorf("%w: cmd 0x%04x: %w", ErrBusTimeout, c.cmdWord, err)
	}
	if c.responseSize == 0 {
		return nil, nil
	}

	d.waitReady()
	r := make([]byte, c.responseSize)
	if err := d.c.Tx(nil, r); err != nil {
		return nil, fmt.Errorf("%w: cmd 0x%04x read: %w", ErrBusTimeout, c.cmdWord, err)
	}
	words, err := common.DecodeWords(r)
	if err != nil {
		return nil, fmt.Errorf("%w: cmd 0x%04x: %w", ErrIntegrity, c.cmdWord, err)
	}
	return words, nil
}

// countToTemp converts a device count to Temperature: -45 + 175*count/65535.
func countToTemp(count uint16) physic.Temperature {
	frac := float64(count) / 65535.0
	result := -45 + 175*frac
	return physic.ZeroCelsius + physic.Temperature(float64(physic.Celsius)*result)
}

// countToHumidity converts a device count to relative humidity: 100*count/65535.
func countToHumidity(count uint16) physic.RelativeHumidity {
	frac := float64(count) / 65535.0
	return physic.RelativeHumidity(frac * 100.0 * float64(physic.PercentRH))
}

// Formula used for temperature offset calculation: 175*count/65535.
func countToOffset(count uint16) physic.Temperature {
	frac := 175.0 / 65535.0
	return physic.Temperature(frac * float64(count) * float64(physic.Celsius))
}

func offsetToCount(offset physic.Temperature) uint16 {
	return uint16(math.Round(float64(offset) / float64(physic.Celsius) * 65535.0 / 175.0))
}

var _ conn.Resource = &Dev{}
