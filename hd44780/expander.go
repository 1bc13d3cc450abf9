// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"fmt"
	"time"

	"github.com/GermanBionicSystems/charlcd/pcf857x"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
)

// DefaultBackpackAddress is where LCD1602/LCD2004 backpacks answer out of
// the box (PCF8574 with A0-A2 pulled high, 0x4E/0x4F in 8 bit notation).
const DefaultBackpackAddress uint16 = 0x27

// ExpanderPins maps the controller lines to expander port bits.
type ExpanderPins struct {
	RS, RW, EN, Backlight uint8
	D4, D5, D6, D7        uint8
}

// DefaultExpanderPins is the wiring of the common PCF8574 backpack:
//
//	P7 P6 P5 P4 P3 P2 P1 P0
//	D7 D6 D5 D4 BL E  RW RS
var DefaultExpanderPins = ExpanderPins{
	RS:        0,
	RW:        1,
	EN:        2,
	Backlight: 3,
	D4:        4,
	D5:        5,
	D6:        6,
	D7:        7,
}

func (p ExpanderPins) validate(width int) error {
	all := []uint8{p.RS, p.RW, p.EN, p.Backlight, p.D4, p.D5, p.D6, p.D7}
	var seen uint32
	for _, b := range all {
		if int(b) >= width {
			return invalidArgument("expander bit %d outside a %d line port", b, width)
		}
		if seen&(1<<b) != 0 {
			return invalidArgument("expander bit %d used twice", b)
		}
		seen |= 1 << b
	}
	return nil
}

// ExpanderTransport drives the controller through an I²C port expander. The
// expander only has room for 4 data lines, so it always runs in FourBit mode.
//
// Every byte becomes a single I²C burst of four port states: high nibble
// with EN high, high nibble with EN low, then the same for the low nibble.
type ExpanderTransport struct {
	exp       *pcf857x.Dev
	pins      ExpanderPins
	backlight bool
	pulse     time.Duration
	sleep     Sleeper
}

// NewExpander returns a transport writing through exp. The backlight starts
// on.
func NewExpander(exp *pcf857x.Dev, pins ExpanderPins, opts *Opts) (*ExpanderTransport, error) {
	if exp == nil {
		return nil, invalidArgument("nil expander")
	}
	o := DefaultOpts
	if opts != nil {
		o = *opts
	}
	if o.Mode == 0 {
		o.Mode = FourBit
	}
	o, err := resolve(&o)
	if err != nil {
		return nil, err
	}
	if o.Mode != FourBit {
		return nil, invalidArgument("an I²C expander only supports %s, not %s", FourBit, o.Mode)
	}
	if err := pins.validate(exp.Width()); err != nil {
		return nil, err
	}
	return &ExpanderTransport{
		exp:       exp,
		pins:      pins,
		backlight: true,
		pulse:     o.Timing.Pulse,
		sleep:     o.Sleeper,
	}, nil
}

// NewPCF857xBackpack returns an initialized display behind a PCF8574
// backpack at address on bus, wired as DefaultExpanderPins.
//
// # Product Information
//
// https://www.handsontec.com/dataspecs/I2C_2004_LCD.pdf
func NewPCF857xBackpack(bus i2c.Bus, address uint16, opts *Opts) (*Dev, error) {
	exp, err := pcf857x.New(bus, address, pcf857x.PCF8574)
	if err != nil {
		return nil, wrap(err)
	}
	t, err := NewExpander(exp, DefaultExpanderPins, opts)
	if err != nil {
		return nil, err
	}
	return New(t, opts)
}

// Command implements Transport.
func (t *ExpanderTransport) Command(c byte, w InterfaceMode) error {
	if err := t.send(c, false, w); err != nil {
		return busError("command", err)
	}
	return nil
}

// Data implements Transport. Each byte is its own I²C transaction with RS set
// in every frame.
func (t *ExpanderTransport) Data(p []byte, w InterfaceMode) error {
	for _, b := range p {
		if err := t.send(b, true, w); err != nil {
			return busError("data", err)
		}
	}
	return nil
}

// Mode implements Transport.
func (t *ExpanderTransport) Mode() InterfaceMode {
	return FourBit
}

// Backlight implements display.DisplayBacklight. The level is also carried in
// every later frame.
func (t *ExpanderTransport) Backlight(intensity display.Intensity) error {
	if int(t.pins.Backlight) >= len(t.exp.Pins) {
		return busError("backlight", pcf857x.ErrClosed)
	}
	t.backlight = intensity > 0
	if err := t.exp.Pins[t.pins.Backlight].Out(gpio.Level(t.backlight)); err != nil {
		return busError("backlight", err)
	}
	return nil
}

// Halt releases the expander.
func (t *ExpanderTransport) Halt() error {
	return t.exp.Halt()
}

func (t *ExpanderTransport) String() string {
	return fmt.Sprintf("Expander{%s}", t.exp)
}

func (t *ExpanderTransport) send(b byte, rs bool, w InterfaceMode) error {
	if err := t.exp.Burst(t.frames(b, rs, w)...); err != nil {
		return err
	}
	t.sleep.Sleep(t.pulse)
	return nil
}

// frames packs b into port states. In the single cycle case only the high
// nibble is strobed, which is all a controller still in 8 bit mode samples.
func (t *ExpanderTransport) frames(b byte, rs bool, w InterfaceMode) []gpio.GPIOValue {
	hi, lo := b>>4, b&0x0f
	f := make([]gpio.GPIOValue, 0, 4)
	f = append(f, t.pack(hi, rs, true), t.pack(hi, rs, false))
	if w == FourBit {
		f = append(f, t.pack(lo, rs, true), t.pack(lo, rs, false))
	}
	return f
}

func (t *ExpanderTransport) pack(nibble byte, rs, en bool) gpio.GPIOValue {
	var v gpio.GPIOValue
	set := func(on bool, bit uint8) {
		if on {
			v |= 1 << bit
		}
	}
	set(nibble&0x01 != 0, t.pins.D4)
	set(nibble&0x02 != 0, t.pins.D5)
	set(nibble&0x04 != 0, t.pins.D6)
	set(nibble&0x08 != 0, t.pins.D7)
	set(rs, t.pins.RS)
	set(en, t.pins.EN)
	set(t.backlight, t.pins.Backlight)
	return v
}

var _ Transport = &ExpanderTransport{}
var _ display.DisplayBacklight = &ExpanderTransport{}
var _ conn.Resource = &ExpanderTransport{}
