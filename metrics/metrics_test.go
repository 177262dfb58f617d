// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package metrics

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/GermanBionicSystems/co2mon/reading"
	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/physic"
)

var t0 = time.Date(2024, 11, 3, 8, 0, 0, 0, time.UTC)

func sample() reading.Reading {
	return reading.Reading{
		CO2:         800,
		Temperature: physic.ZeroCelsius + 22500*physic.MilliCelsius,
		Humidity:    45 * physic.PercentRH,
	}
}

func TestFormatFloat(t *testing.T) {
	for _, tc := range []struct {
		v    float64
		want string
	}{
		{22.5, "22.5"},
		{45, "45"},
		{22.50057221332112, "22.5"},
		{45.00038147554742, "45"},
		{-3.456, "-3.46"},
		{0, "0"},
		{99.999, "100"},
	} {
		if got := FormatFloat(tc.v); got != tc.want {
			t.Errorf("FormatFloat(%v) = %q, want %q", tc.v, got, tc.want)
		}
	}
}

func TestEncode(t *testing.T) {
	for _, tc := range []struct {
		name string
		msgs []Message
		want string
	}{
		{
			name: "empty",
		},
		{
			name: "reading",
			msgs: Messages(sample(), t0, nil),
			want: "co2_ppm 800 1730620800000\n" +
				"temperature_celsius 22.5 1730620800000\n" +
				"humidity_percent 45 1730620800000\n",
		},
		{
			name: "labels",
			msgs: []Message{{
				Name:      CO2,
				Value:     "412",
				Labels:    map[string]string{"room": "lab", "host": "pi"},
				Timestamp: t0.Add(1500 * time.Millisecond),
			}},
			want: "co2_ppm{host=pi,room=lab} 412 1730620801500\n",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(string(Encode(tc.msgs)), tc.want); diff != "" {
				t.Errorf("Encode() difference (-got +want):\n%s", diff)
			}
		})
	}
}

func TestMessagesRawCounts(t *testing.T) {
	// Conversions straight from the sensor counts keep two decimals.
	celsius, percentRH := float64(physic.Celsius), float64(physic.PercentRH)
	r := reading.Reading{
		CO2:         1234,
		Temperature: physic.ZeroCelsius + physic.Temperature(22.50057221332112*celsius),
		Humidity:    physic.RelativeHumidity(45.00038147554742 * percentRH),
	}
	msgs := Messages(r, t0, map[string]string{"room": "lab"})
	var got []string
	for _, m := range msgs {
		got = append(got, m.Name+"="+m.Value+"@"+m.Labels["room"])
	}
	want := []string{"co2_ppm=1234@lab", "temperature_celsius=22.5@lab", "humidity_percent=45@lab"}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Messages() difference (-got +want):\n%s", diff)
	}
}

func TestPublish(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer pc.Close()

	p, err := New(pc.LocalAddr().String(), &Opts{
		Labels: map[string]string{"room": "lab"},
		Now:    func() time.Time { return t0 },
	})
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	for j := 0; j < 2; j++ {
		if err := p.Publish(sample()); err != nil {
			t.Fatal(err)
		}
	}

	want := "co2_ppm{room=lab} 800 1730620800000\n" +
		"temperature_celsius{room=lab} 22.5 1730620800000\n" +
		"humidity_percent{room=lab} 45 1730620800000\n"
	buf := make([]byte, 1500)
	for i := 0; i < 2; i++ {
		if err := pc.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
			t.Fatal(err)
		}
		n, _, err := pc.ReadFrom(buf)
		if err != nil {
			t.Fatalf("datagram %d: %v", i, err)
		}
		if diff := cmp.Diff(string(buf[:n]), want); diff != "" {
			t.Errorf("datagram %d difference (-got +want):\n%s", i, diff)
		}
	}
}

func TestValidateLabels(t *testing.T) {
	if err := ValidateLabels(map[string]string{"room": "lab", "host": "pi-4"}); err != nil {
		t.Errorf("ValidateLabels() = %v", err)
	}
	for _, labels := range []map[string]string{
		{"": "lab"},
		{"room": ""},
		{"room": "a,b"},
		{"room": "a}b"},
		{"room": "a=b"},
		{"room": "a b"},
		{"room": "a\nb"},
		{"ro{om": "lab"},
	} {
		if err := ValidateLabels(labels); !errors.Is(err, ErrInvalidLabel) {
			t.Errorf("ValidateLabels(%q) = %v, want ErrInvalidLabel", labels, err)
		}
	}
	if _, err := New("localhost:7004", &Opts{Labels: map[string]string{"room": "living room"}}); !errors.Is(err, ErrInvalidLabel) {
		t.Errorf("New() = %v, want ErrInvalidLabel", err)
	}
}

func TestAddress(t *testing.T) {
	for _, tc := range []struct {
		in, want string
	}{
		{"localhost", "localhost:7004"},
		{"192.168.1.10", "192.168.1.10:7004"},
		{"collector.local:9000", "collector.local:9000"},
		{"[::1]:7004", "[::1]:7004"},
	} {
		got, err := Address(tc.in)
		if err != nil {
			t.Errorf("Address(%q) = %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Address(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNewInvalidAddress(t *testing.T) {
	for _, addr := range []string{"", "[::1", ":7004", "host:0", "host:http", "host:70000"} {
		if _, err := New(addr, nil); err == nil {
			t.Errorf("New(%q) succeeded", addr)
		}
	}
	p, err := New("localhost", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := p.String(), "metrics.Publisher{udp://localhost:7004}"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestPublishUnreachable(t *testing.T) {
	p, err := New("host.invalid:7004", nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Publish(sample()); !errors.Is(err, ErrUnreachable) {
		t.Errorf("Publish() = %v, want ErrUnreachable", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
	if got, want := p.String(), "metrics.Publisher{udp://host.invalid:7004}"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
