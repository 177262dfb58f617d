// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package metrics publishes readings to a remote collector.
//
// Every Publish sends all fields of one reading in a single UDP datagram,
// one text line per field. Delivery is best effort: there is no
// acknowledgement, no retry and no local buffering.
package metrics

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/GermanBionicSystems/co2mon/reading"
)

// DefaultPort is the port the collector listens on.
const DefaultPort = 7004

// ErrUnreachable wraps every failure to resolve, dial or send to the
// collector.
var ErrUnreachable = errors.New("metrics: collector unreachable")

// Opts is the Publisher configuration.
type Opts struct {
	// Labels are added to every line.
	Labels map[string]string
	// WriteTimeout bounds a send. Defaults to 1s.
	WriteTimeout time.Duration
	// Now stamps the messages. Defaults to time.Now.
	Now func() time.Time
}

// Publisher sends readings to a collector over UDP.
type Publisher struct {
	addr string
	opts Opts

	mu   sync.Mutex
	conn net.Conn
}

// New returns a Publisher for addr, a "host:port" pair. DefaultPort is used
// when addr has no port. The address is only resolved on the first Publish so
// a collector that is down at start does not prevent the monitor from
// running.
func New(addr string, opts *Opts) (*Publisher, error) {
	addr, err := Address(addr)
	if err != nil {
		return nil, err
	}
	p := &Publisher{addr: addr}
	if opts != nil {
		p.opts = *opts
	}
	if err := ValidateLabels(p.opts.Labels); err != nil {
		return nil, err
	}
	if p.opts.WriteTimeout <= 0 {
		p.opts.WriteTimeout = time.Second
	}
	if p.opts.Now == nil {
		p.opts.Now = time.Now
	}
	return p, nil
}

// Address returns addr as "host:port", adding DefaultPort to a bare host
// name or IPv4 address.
func Address(addr string) (string, error) {
	if !strings.Contains(addr, ":") {
		addr = net.JoinHostPort(addr, strconv.Itoa(DefaultPort))
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", fmt.Errorf("metrics: invalid address: %w", err)
	}
	if host == "" {
		return "", fmt.Errorf("metrics: invalid address %q: missing host", addr)
	}
	if n, err := strconv.ParseUint(port, 10, 16); err != nil || n == 0 {
		return "", fmt.Errorf("metrics: invalid address %q: bad port", addr)
	}
	return addr, nil
}

// Publish sends r as one datagram.
func (p *Publisher) Publish(r reading.Reading) error {
	now := p.opts.Now()
	b := Encode(Messages(r, now, p.opts.Labels))

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		c, err := net.Dial("udp", p.addr)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrUnreachable, err)
		}
		p.conn = c
	}
	if err := p.conn.SetWriteDeadline(time.Now().Add(p.opts.WriteTimeout)); err != nil {
		return fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	if _, err := p.conn.Write(b); err != nil {
		// Dial again on the next call.
		_ = p.conn.Close()
		p.conn = nil
		return fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	return nil
}

// Close releases the socket.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	return err
}

func (p *Publisher) String() string {
	return fmt.Sprintf("metrics.Publisher{udp://%s}", p.addr)
}
