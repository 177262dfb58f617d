// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package monitor

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GermanBionicSystems/co2mon/epdsurface"
	"github.com/GermanBionicSystems/co2mon/metrics"
	"github.com/GermanBionicSystems/co2mon/screen2d"
)

func TestEndToEnd(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer pc.Close()

	ts := time.UnixMilli(1730620800000)
	pub, err := metrics.New(pc.LocalAddr().String(), &metrics.Opts{Now: func() time.Time { return ts }})
	require.NoError(t, err)
	defer pub.Close()

	var out bytes.Buffer
	panel, err := screen2d.New(&screen2d.Opts{W: 296, H: 128, Out: &out})
	require.NoError(t, err)
	surface, err := epdsurface.New(panel, nil)
	require.NoError(t, err)

	s := &fakeSensor{}
	l, log := newLoop(t, s, surface, pub, DefaultOpts)

	want := "co2_ppm 800 1730620800000\n" +
		"temperature_celsius 22.5 1730620800000\n" +
		"humidity_percent 45 1730620800000\n"
	buf := make([]byte, 1500)

	// Tick 1: first commit is a full refresh.
	s.push(sample(800), nil)
	l.Tick(time.Now())
	assert.Equal(t, 1, panel.Refreshes(epdsurface.Full))
	assert.Zero(t, surface.State().PartialCount)
	require.NoError(t, pc.SetReadDeadline(time.Now().Add(5*time.Second)))
	n, _, err := pc.ReadFrom(buf)
	require.NoError(t, err)
	assert.Equal(t, want, string(buf[:n]))

	// Tick 2: same reading, partial commit.
	s.push(sample(800), nil)
	l.Tick(time.Now())
	assert.Equal(t, 1, panel.Refreshes(epdsurface.Full))
	assert.Equal(t, uint(1), surface.State().PartialCount)
	n, _, err = pc.ReadFrom(buf)
	require.NoError(t, err)
	assert.Equal(t, want, string(buf[:n]))

	snap := l.Snapshot()
	assert.Zero(t, snap.ConsecutiveFailures)
	assert.Equal(t, uint64(2), snap.Renders)
	assert.Equal(t, uint64(2), snap.Publishes)
	assert.Zero(t, log.Count("error")+log.Count("warn"))
}
