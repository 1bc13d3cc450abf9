// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
)

// ParallelPins binds the controller lines to GPIO pins.
type ParallelPins struct {
	// RS selects the instruction (Low) or data (High) register.
	RS gpio.PinOut
	// RW may be nil when the line is tied to ground.
	RW gpio.PinOut
	// EN is the enable (strobe) line.
	EN gpio.PinOut
	// Data holds D0-D7 in EightBit mode or D4-D7 in FourBit mode, lowest line
	// first. Extra trailing pins in the group are never written.
	Data gpio.Group
	// Backlight may be nil.
	Backlight gpio.PinOut
}

// ParallelTransport drives the controller directly from GPIO lines.
type ParallelTransport struct {
	pins  ParallelPins
	mode  InterfaceMode
	pulse time.Duration
	sleep Sleeper
	bl    *GPIOMonoBacklight
}

// NewParallel validates the pin binding against opts.Mode and returns a
// transport. It does not touch the pins.
func NewParallel(pins ParallelPins, opts *Opts) (*ParallelTransport, error) {
	o, err := resolve(opts)
	if err != nil {
		return nil, err
	}
	if pins.RS == nil || pins.EN == nil || pins.Data == nil {
		return nil, invalidArgument("RS, EN and data pins are required")
	}
	if n := len(pins.Data.Pins()); n < int(o.Mode) {
		return nil, invalidArgument("%s needs %d data pins, group has %d", o.Mode, int(o.Mode), n)
	}
	t := &ParallelTransport{
		pins:  pins,
		mode:  o.Mode,
		pulse: o.Timing.Pulse,
		sleep: o.Sleeper,
	}
	if pins.Backlight != nil {
		t.bl = NewBacklight(pins.Backlight)
	}
	return t, nil
}

// NewGPIO returns an initialized display wired to GPIO lines.
func NewGPIO(pins ParallelPins, opts *Opts) (*Dev, error) {
	t, err := NewParallel(pins, opts)
	if err != nil {
		return nil, err
	}
	return New(t, opts)
}

// Command implements Transport.
func (t *ParallelTransport) Command(c byte, w InterfaceMode) error {
	if err := t.pins.EN.Out(gpio.Low); err != nil {
		return busError("command", err)
	}
	if err := t.control(gpio.Low); err != nil {
		return busError("command", err)
	}
	if err := t.latch(c, w); err != nil {
		return busError("command", err)
	}
	return nil
}

// Data implements Transport.
func (t *ParallelTransport) Data(p []byte, w InterfaceMode) error {
	if len(p) == 0 {
		return nil
	}
	if err := t.control(gpio.High); err != nil {
		return busError("data", err)
	}
	for _, b := range p {
		if err := t.latch(b, w); err != nil {
			return busError("data", err)
		}
	}
	if err := t.pins.RS.Out(gpio.Low); err != nil {
		return busError("data", err)
	}
	return nil
}

// Mode implements Transport.
func (t *ParallelTransport) Mode() InterfaceMode {
	return t.mode
}

// Backlight implements display.DisplayBacklight. It fails with
// display.ErrNotImplemented when no backlight pin was supplied.
func (t *ParallelTransport) Backlight(intensity display.Intensity) error {
	if t.bl == nil {
		return wrap(display.ErrNotImplemented)
	}
	return t.bl.Backlight(intensity)
}

// Halt releases the data group.
func (t *ParallelTransport) Halt() error {
	return t.pins.Data.Halt()
}

func (t *ParallelTransport) String() string {
	return fmt.Sprintf("Parallel{%s, %s}", t.pins.Data.String(), t.mode)
}

// control sets RS and pulls RW low for a write.
func (t *ParallelTransport) control(rs gpio.Level) error {
	if err := t.pins.RS.Out(rs); err != nil {
		return err
	}
	if t.pins.RW != nil {
		return t.pins.RW.Out(gpio.Low)
	}
	return nil
}

// latch transfers b in one enable cycle, or in two cycles high nibble first
// when the controller expects 4 bit transfers.
func (t *ParallelTransport) latch(b byte, w InterfaceMode) error {
	if w == FourBit {
		if err := t.cycle(b & 0xf0); err != nil {
			return err
		}
		return t.cycle(b << 4)
	}
	return t.cycle(b)
}

func (t *ParallelTransport) cycle(b byte) error {
	if err := t.putBus(b); err != nil {
		return err
	}
	if err := t.pins.EN.Out(gpio.High); err != nil {
		return err
	}
	t.sleep.Sleep(t.pulse)
	return t.pins.EN.Out(gpio.Low)
}

// putBus drives the upper bits of b onto the data lines. Only the data lines
// are written, other pins sharing the port keep their level.
func (t *ParallelTransport) putBus(b byte) error {
	if t.mode == FourBit {
		return t.pins.Data.Out(gpio.GPIOValue(b>>4), 0x0f)
	}
	return t.pins.Data.Out(gpio.GPIOValue(b), 0xff)
}

var _ Transport = &ParallelTransport{}
var _ display.DisplayBacklight = &ParallelTransport{}
var _ conn.Resource = &ParallelTransport{}
