// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// InterfaceMode is the width of the controller data bus.
type InterfaceMode int

const (
	// EightBit latches a whole byte per enable pulse on D0-D7.
	EightBit InterfaceMode = 8
	// FourBit latches a byte as two nibbles on D4-D7, high nibble first.
	FourBit InterfaceMode = 4
)

func (m InterfaceMode) String() string {
	switch m {
	case EightBit:
		return "8bit"
	case FourBit:
		return "4bit"
	default:
		return "InterfaceMode(invalid)"
	}
}

// Sleeper blocks the caller for at least d.
type Sleeper interface {
	Sleep(d time.Duration)
}

// SleeperFunc adapts a function such as time.Sleep to a Sleeper.
type SleeperFunc func(d time.Duration)

// Sleep calls f(d).
func (f SleeperFunc) Sleep(d time.Duration) {
	f(d)
}

// Timing holds the fixed delays used in place of busy flag polling. The
// values are deliberately larger than the datasheet minimums.
type Timing struct {
	// PowerOn is the wait before the first command after power is applied.
	PowerOn time.Duration
	// Pulse is how long the enable line is held before it is dropped. It is
	// the settle time the controller gets for every latched value.
	Pulse time.Duration
	// Command follows every instruction issued by the helpers.
	Command time.Duration
	// Reset follows the first function set of the reset handshake.
	Reset time.Duration
	// Clear follows the clear display instruction during initialization.
	Clear time.Duration
}

// DefaultTiming is conservative enough for every HD44780 clone seen in
// practice.
var DefaultTiming = Timing{
	PowerOn: 150 * time.Millisecond,
	Pulse:   15 * time.Millisecond,
	Command: 1 * time.Millisecond,
	Reset:   5 * time.Millisecond,
	Clear:   5 * time.Millisecond,
}

// Opts is the immutable configuration of a display. It is copied when a
// device or transport is created.
type Opts struct {
	// Mode selects the 8 bit or 4 bit protocol. I²C expanders only support
	// FourBit.
	Mode InterfaceMode
	// Cols is the number of visible characters per line.
	Cols int
	// Timing overrides DefaultTiming. Zero fields take the default value.
	Timing Timing
	// Sleeper defaults to time.Sleep. Tests inject a recorder.
	Sleeper Sleeper
	// Logger receives debug traces of the init sequence and of bus errors.
	// nil discards them.
	Logger logrus.FieldLogger
}

// DefaultOpts is a 16x2 display wired in 4 bit mode.
var DefaultOpts = Opts{
	Mode:   FourBit,
	Cols:   16,
	Timing: DefaultTiming,
}

// resolve returns a copy of opts with every unset field filled in.
func resolve(opts *Opts) (Opts, error) {
	o := DefaultOpts
	if opts != nil {
		o = *opts
	}
	if o.Mode == 0 {
		o.Mode = DefaultOpts.Mode
	}
	if o.Mode != FourBit && o.Mode != EightBit {
		return o, invalidArgument("interface mode %d", int(o.Mode))
	}
	if o.Cols == 0 {
		o.Cols = DefaultOpts.Cols
	}
	// DDRAM holds 40 characters per line.
	if o.Cols < 1 || o.Cols > 40 {
		return o, invalidArgument("columns %d", o.Cols)
	}
	o.Timing = o.Timing.withDefaults()
	if o.Sleeper == nil {
		o.Sleeper = SleeperFunc(time.Sleep)
	}
	if o.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		o.Logger = l
	}
	return o, nil
}

func (t Timing) withDefaults() Timing {
	pick := func(v, def time.Duration) time.Duration {
		if v <= 0 {
			return def
		}
		return v
	}
	return Timing{
		PowerOn: pick(t.PowerOn, DefaultTiming.PowerOn),
		Pulse:   pick(t.Pulse, DefaultTiming.Pulse),
		Command: pick(t.Command, DefaultTiming.Command),
		Reset:   pick(t.Reset, DefaultTiming.Reset),
		Clear:   pick(t.Clear, DefaultTiming.Clear),
	}
}
