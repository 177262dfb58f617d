// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package metrics

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/GermanBionicSystems/co2mon/reading"
)

// Metric names.
const (
	CO2         = "co2_ppm"
	Temperature = "temperature_celsius"
	Humidity    = "humidity_percent"
)

// Message is one metric line.
type Message struct {
	Name      string
	Value     string
	Labels    map[string]string
	Timestamp time.Time
}

// ErrInvalidLabel is returned for a label that cannot be written as is.
var ErrInvalidLabel = errors.New("metrics: invalid label")

// labelReserved are the bytes that would break the line syntax.
const labelReserved = ",{}=\" \t\r\n"

// ValidateLabels checks that every key and value is non-empty and free of
// separators, so that Encode never needs to quote or escape.
func ValidateLabels(labels map[string]string) error {
	for k, v := range labels {
		if k == "" || strings.ContainsAny(k, labelReserved) {
			return fmt.Errorf("%w: key %q", ErrInvalidLabel, k)
		}
		if v == "" || strings.ContainsAny(v, labelReserved) {
			return fmt.Errorf("%w: %s=%q", ErrInvalidLabel, k, v)
		}
	}
	return nil
}

// Encode returns the text form of msgs, one line per message:
//
//	name{key=value,...} value timestamp_ms
//
// Label keys are sorted. The braces are omitted when there are no labels.
// Labels are written verbatim and are expected to pass ValidateLabels.
func Encode(msgs []Message) []byte {
	var b bytes.Buffer
	for _, m := range msgs {
		b.WriteString(m.Name)
		if len(m.Labels) != 0 {
			keys := make([]string, 0, len(m.Labels))
			for k := range m.Labels {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			b.WriteByte('{')
			for i, k := range keys {
				if i != 0 {
					b.WriteByte(',')
				}
				b.WriteString(k)
				b.WriteByte('=')
				b.WriteString(m.Labels[k])
			}
			b.WriteByte('}')
		}
		b.WriteByte(' ')
		b.WriteString(m.Value)
		b.WriteByte(' ')
		b.WriteString(strconv.FormatInt(m.Timestamp.UnixMilli(), 10))
		b.WriteByte('\n')
	}
	return b.Bytes()
}

// FormatFloat rounds v to two decimals and returns its shortest form, so
// 22.5 is "22.5" and 45 is "45".
func FormatFloat(v float64) string {
	return strconv.FormatFloat(reading.Round(v, 2), 'f', -1, 64)
}

// Messages returns the metric lines for r, all stamped with ts and carrying
// labels.
func Messages(r reading.Reading, ts time.Time, labels map[string]string) []Message {
	return []Message{
		{Name: CO2, Value: strconv.Itoa(int(r.CO2)), Labels: labels, Timestamp: ts},
		{Name: Temperature, Value: FormatFloat(r.Celsius()), Labels: labels, Timestamp: ts},
		{Name: Humidity, Value: FormatFloat(r.Percent()), Labels: labels, Timestamp: ts},
	}
}
