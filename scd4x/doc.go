// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package scd4x provides a driver for the Sensirion SCD4x CO2 sensors.
// The scd4x family provide a compact sensor that can be used to measure
// Temperature, Humidity, and CO2 concentration.
//
// The driver only frames commands and checks responses. It never retries and
// never loops waiting for data: ReadMeasurement reports ErrNotReady and the
// caller decides when to ask again. In periodic mode a new sample is produced
// every 5 seconds (30 seconds in low power mode); polling faster only yields
// ErrNotReady.
//
// Every command has a documented execution time. The driver blocks until that
// time has elapsed before sending the next command or reading a response, so
// the bus is never addressed early.
//
// Refer to the datasheet for more information.
//
// https://sensirion.com/media/documents/48C4B7FB/66E05452/CD_DS_SCD4x_Datasheet_D1.pdf
package scd4x
