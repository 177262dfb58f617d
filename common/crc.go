// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package common contains the Sensirion word framing shared by the sensor
// driver: the CRC-8 used on every 16-bit word and the helpers that split a
// response into checked words.
package common

import "errors"

// ErrCRC is returned by DecodeWords when a word does not match its checksum.
var ErrCRC = errors.New("crc mismatch")

// ErrFrameLength is returned by DecodeWords when the response is not made of
// whole (msb, lsb, crc) groups.
var ErrFrameLength = errors.New("response length is not a multiple of 3")

const (
	crc8Polynomial byte = 0x31
	crc8Init       byte = 0xff
)

// CRC8 calculates the 8-bit CRC of the byte slice parameter and returns the
// calculated value. Polynomial 0x31, initial value 0xff, no reflection, no
// final xor. CRC bytes are used in sensors from TI and Sensirion.
func CRC8(bytes []byte) byte {
	crc := crc8Init
	for _, val := range bytes {
		crc ^= val
		for i := 0; i < 8; i++ {
			if (crc & 0x80) == 0 {
				crc <<= 1
			} else {
				crc = (crc << 1) ^ crc8Polynomial
			}
		}
	}
	return crc
}

// EncodeWords converts the slice of word values into big-endian byte pairs,
// each followed by its CRC.
func EncodeWords(words ...uint16) []byte {
	b := make([]byte, len(words)*3)
	for i, w := range words {
		b[i*3] = byte(w >> 8)
		b[i*3+1] = byte(w)
		b[i*3+2] = CRC8(b[i*3 : i*3+2])
	}
	return b
}

// DecodeWords verifies every (msb, lsb, crc) group of r and returns the words.
//
// The whole frame is rejected if any group fails its check; no words are
// returned in that case.
func DecodeWords(r []byte) ([]uint16, error) {
	if len(r)%3 != 0 {
		return nil, ErrFrameLength
	}
	words := make([]uint16, len(r)/3)
	for i := range words {
		g := r[i*3 : i*3+3]
		if CRC8(g[:2]) != g[2] {
			return nil, ErrCRC
		}
		words[i] = uint16(g[0])<<8 | uint16(g[1])
	}
	return words, nil
}
