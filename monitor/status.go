// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package monitor

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/GermanBionicSystems/co2mon/reading"
)

type statusReading struct {
	CO2         reading.PPM `json:"co2_ppm"`
	Temperature float64     `json:"temperature_celsius"`
	Humidity    float64     `json:"humidity_percent"`
}

type statusStats struct {
	Ticks         uint64 `json:"ticks"`
	NotReady      uint64 `json:"not_ready"`
	Faults        uint64 `json:"faults"`
	Renders       uint64 `json:"renders"`
	RenderErrors  uint64 `json:"render_errors"`
	Publishes     uint64 `json:"publishes"`
	PublishErrors uint64 `json:"publish_errors"`
	LastError     string `json:"last_error,omitempty"`
}

type statusResponse struct {
	State               string         `json:"state"`
	ConsecutiveFailures uint           `json:"consecutive_failures"`
	NextDeadline        *time.Time     `json:"next_deadline,omitempty"`
	LastReading         *statusReading `json:"last_reading"`
	Stats               statusStats    `json:"stats"`
}

// NewStatusHandler returns the HTTP handler serving the loop state.
//
//	GET /status   JSON snapshot of the loop
//	GET /healthz  503 once the sensor failure threshold is reached
func NewStatusHandler(l *Loop) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/status", l.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/healthz", l.handleHealth).Methods(http.MethodGet)
	return r
}

func (l *Loop) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s := l.Snapshot()
	resp := statusResponse{
		State:               s.State.String(),
		ConsecutiveFailures: s.ConsecutiveFailures,
		Stats:               statusStats(s.Stats),
	}
	if !s.NextDeadline.IsZero() {
		resp.NextDeadline = &s.NextDeadline
	}
	if r := s.LastReading; r != nil {
		resp.LastReading = &statusReading{
			CO2:         r.CO2,
			Temperature: reading.Round(r.Celsius(), 2),
			Humidity:    reading.Round(r.Percent(), 2),
		}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		l.log.Warn("status: %v", err)
	}
}

func (l *Loop) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if l.Snapshot().ConsecutiveFailures >= l.opts.FailureThreshold {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("sensor failing\n"))
		return
	}
	_, _ = w.Write([]byte("ok\n"))
}
