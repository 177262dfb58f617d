// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package monitor runs the sample, render and publish cycle.
//
// Each tick reads the sensor once. A fresh reading is drawn on the display
// and sent to the collector; display and collector failures are logged and
// never stop the loop. Sensor faults are counted and, once the failure
// threshold is reached, the loop backs off exponentially. A sensor that has
// no sample yet is polled again after a short retry interval without being
// counted as a failure.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/GermanBionicSystems/co2mon/epdsurface"
	"github.com/GermanBionicSystems/co2mon/reading"
	"github.com/GermanBionicSystems/co2mon/scd4x"
)

// Sensor produces readings. ReadMeasurement returns an error wrapping
// scd4x.ErrNotReady when no new sample is available.
type Sensor interface {
	ReadMeasurement() (reading.Reading, error)
}

// Display renders readings.
type Display interface {
	DrawReading(r reading.Reading)
	Commit() (epdsurface.Mode, error)
}

// Publisher forwards readings to a collector.
type Publisher interface {
	Publish(r reading.Reading) error
}

// State is the step the loop is in.
type State uint8

const (
	Idle State = iota
	Sampling
	Rendering
	Publishing
	Backoff
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Sampling:
		return "sampling"
	case Rendering:
		return "rendering"
	case Publishing:
		return "publishing"
	case Backoff:
		return "backoff"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// LoopState is the state carried between ticks.
type LoopState struct {
	// LastReading is nil until the first successful sample.
	LastReading         *reading.Reading
	ConsecutiveFailures uint
	NextDeadline        time.Time
}

// Stats are counters since start.
type Stats struct {
	Ticks         uint64
	NotReady      uint64
	Faults        uint64
	Renders       uint64
	RenderErrors  uint64
	Publishes     uint64
	PublishErrors uint64
	// LastError is the last sensor, display or publisher error.
	LastError string
}

// Snapshot is a consistent copy of the loop state.
type Snapshot struct {
	State State
	LoopState
	Stats
}

// Opts is the loop configuration.
type Opts struct {
	// Period between two samples.
	Period time.Duration
	// RetryInterval is the delay after a sensor reported no data yet.
	RetryInterval time.Duration
	// FailureThreshold is the number of consecutive sensor faults after
	// which the loop backs off.
	FailureThreshold uint
	// BackoffBase is the first backoff delay. It doubles with every further
	// fault up to BackoffCap. A backoff delay is always longer than Period.
	BackoffBase time.Duration
	BackoffCap  time.Duration
	// SkipUnchanged skips rendering when the reading equals the previous one.
	SkipUnchanged bool
	// Logger defaults to a standard logger prefixed with "[monitor]".
	Logger Logger
}

// DefaultOpts samples every 10 seconds.
var DefaultOpts = Opts{
	Period:           10 * time.Second,
	RetryInterval:    time.Second,
	FailureThreshold: 3,
	BackoffBase:      20 * time.Second,
	BackoffCap:       5 * time.Minute,
}

// Loop drives the sensor, the display and the publisher.
type Loop struct {
	sensor  Sensor
	display Display
	pub     Publisher
	opts    Opts
	log     Logger

	mu    sync.RWMutex
	state State
	ls    LoopState
	stats Stats
}

// New returns a Loop. display and pub may be nil to skip rendering or
// publishing.
func New(s Sensor, display Display, pub Publisher, opts *Opts) (*Loop, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	switch {
	case opts.Period <= 0:
		return nil, fmt.Errorf("monitor: invalid period %s", opts.Period)
	case opts.RetryInterval <= 0:
		return nil, fmt.Errorf("monitor: invalid retry interval %s", opts.RetryInterval)
	case opts.FailureThreshold < 1:
		return nil, errors.New("monitor: failure threshold must be at least 1")
	case opts.BackoffBase <= 0 || opts.BackoffCap < opts.BackoffBase:
		return nil, fmt.Errorf("monitor: invalid backoff %s..%s", opts.BackoffBase, opts.BackoffCap)
	}
	l := &Loop{
		sensor:  s,
		display: display,
		pub:     pub,
		opts:    *opts,
		log:     opts.Logger,
	}
	if l.log == nil {
		l.log = NewStdLogger("[monitor]", false)
	}
	return l, nil
}

// Run ticks until ctx is done. The first tick happens immediately; every
// following one at the deadline returned by the previous tick, measured from
// the start of that tick.
func (l *Loop) Run(ctx context.Context) {
	t := time.NewTimer(0)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			l.log.Info("stopping: %v", context.Cause(ctx))
			return
		case <-t.C:
		}
		start := time.Now()
		delay := l.Tick(start)
		t.Reset(time.Until(start.Add(delay)))
	}
}

// Tick runs one pass and returns the delay until the next one.
func (l *Loop) Tick(now time.Time) time.Duration {
	l.setState(Sampling)
	r, err := l.sensor.ReadMeasurement()

	l.mu.Lock()
	l.stats.Ticks++
	l.mu.Unlock()

	switch {
	case errors.Is(err, scd4x.ErrNotReady):
		l.mu.Lock()
		l.stats.NotReady++
		l.mu.Unlock()
		l.log.Debug("no sample yet, retrying in %s", l.opts.RetryInterval)
		return l.finish(Idle, now, l.opts.RetryInterval)
	case err != nil:
		return l.fault(now, err)
	}

	l.mu.Lock()
	prev := l.ls.LastReading
	failures := l.ls.ConsecutiveFailures
	l.ls.LastReading = &r
	l.ls.ConsecutiveFailures = 0
	l.mu.Unlock()

	if failures > 0 {
		l.log.Info("sensor recovered after %d failures", failures)
	}
	l.log.Debug("%s", r)

	if l.display != nil {
		if l.opts.SkipUnchanged && prev != nil && *prev == r {
			l.log.Debug("reading unchanged, not rendering")
		} else {
			l.render(r)
		}
	}
	if l.pub != nil {
		l.publish(r)
	}
	return l.finish(Idle, now, l.opts.Period)
}

func (l *Loop) fault(now time.Time, err error) time.Duration {
	l.mu.Lock()
	l.ls.ConsecutiveFailures++
	failures := l.ls.ConsecutiveFailures
	l.stats.Faults++
	l.stats.LastError = err.Error()
	l.mu.Unlock()

	if failures < l.opts.FailureThreshold {
		l.log.Warn("sensor fault (%d/%d): %v", failures, l.opts.FailureThreshold, err)
		return l.finish(Idle, now, l.opts.Period)
	}
	delay := l.backoff(failures)
	l.log.Error("sensor fault (%d in a row), backing off %s: %v", failures, delay, err)
	return l.finish(Backoff, now, delay)
}

// backoff returns min(BackoffCap, BackoffBase*2^(failures-FailureThreshold)),
// raised to more than Period.
func (l *Loop) backoff(failures uint) time.Duration {
	d := l.opts.BackoffBase
	for i := l.opts.FailureThreshold; i < failures && d < l.opts.BackoffCap; i++ {
		d *= 2
	}
	d = min(d, l.opts.BackoffCap)
	return max(d, l.opts.Period+time.Second)
}

func (l *Loop) render(r reading.Reading) {
	l.setState(Rendering)
	l.display.DrawReading(r)
	mode, err := l.display.Commit()

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.stats.RenderErrors++
		l.stats.LastError = err.Error()
		l.log.Error("display: %v", err)
		return
	}
	l.stats.Renders++
	l.log.Debug("display: %s refresh", mode)
}

func (l *Loop) publish(r reading.Reading) {
	l.setState(Publishing)
	err := l.pub.Publish(r)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.stats.PublishErrors++
		l.stats.LastError = err.Error()
		l.log.Warn("publish: %v", err)
		return
	}
	l.stats.Publishes++
}

func (l *Loop) setState(s State) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}

func (l *Loop) finish(s State, now time.Time, delay time.Duration) time.Duration {
	l.mu.Lock()
	l.state = s
	l.ls.NextDeadline = now.Add(delay)
	l.mu.Unlock()
	return delay
}

// Snapshot returns a copy of the loop state. It is safe to call while Run is
// active.
func (l *Loop) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s := Snapshot{State: l.state, LoopState: l.ls, Stats: l.stats}
	if l.ls.LastReading != nil {
		r := *l.ls.LastReading
		s.LastReading = &r
	}
	return s
}

// Options returns the loop configuration.
func (l *Loop) Options() Opts {
	return l.opts
}
