// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package reading

import (
	"testing"

	"periph.io/x/conn/v3/physic"
)

func TestReadingUnits(t *testing.T) {
	r := Reading{
		CO2:         800,
		Temperature: physic.ZeroCelsius + 22500*physic.MilliCelsius,
		Humidity:    45 * physic.PercentRH,
	}
	if got := Round(r.Celsius(), 2); got != 22.5 {
		t.Errorf("Celsius()=%v want 22.5", got)
	}
	if got := Round(r.Percent(), 2); got != 45 {
		t.Errorf("Percent()=%v want 45", got)
	}
	if got := r.CO2.String(); got != "800 PPM" {
		t.Errorf("PPM.String()=%q", got)
	}
	if r.String() == "" {
		t.Error("Reading.String() returned empty value")
	}
}

func TestRound(t *testing.T) {
	for _, tc := range []struct {
		v        float64
		decimals int
		want     float64
	}{
		{v: 22.50057221332112, decimals: 2, want: 22.5},
		{v: 45.00038147554742, decimals: 2, want: 45},
		{v: -3.456, decimals: 1, want: -3.5},
		{v: 1.005, decimals: 0, want: 1},
	} {
		if got := Round(tc.v, tc.decimals); got != tc.want {
			t.Errorf("Round(%v, %d)=%v want %v", tc.v, tc.decimals, got, tc.want)
		}
	}
}
