// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package pcf857x drives the output side of the TI/NXP PCF857X I²C I/O
// expanders. The PCF8574 has 8 pins and the PCF8575 has 16. These chips sit on
// the back of most I²C character LCD modules (LCD1602, LCD2004), where each
// written byte becomes the level of the 8 lines wired to the display
// controller.
//
// The chip has no registers. Every byte of an I²C write is latched onto the
// port after it is acknowledged, so several port states can be streamed in a
// single transaction with Burst. This is what makes it practical to strobe a
// display enable line over I²C.
//
// # Datasheet
//
// https://www.ti.com/lit/ds/symlink/pcf8574.pdf
//
// https://www.handsontec.com/dataspecs/I2C_2004_LCD.pdf
//
// # Notes
//
// Only the output direction is implemented. Setting a pin Low activates an open
// drain to ground; High releases it to the weak internal pull up.
package pcf857x

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
)

// Variant represents the actual chip model.
type Variant string

const (
	PCF8574 Variant = "PCF8574"
	PCF8575 Variant = "PCF8575"

	// DefaultAddress is the address with A0-A2 tied low.
	DefaultAddress uint16 = 0x20
)

var (
	ErrNotImplemented = errors.New("pcf857x: not implemented")
	ErrClosed         = errors.New("pcf857x: device halted")
)

// Dev is a PCF857x device.
type Dev struct {
	// The pins exposed by the device, 8 for the PCF8574 and 16 for the
	// PCF8575.
	Pins     []gpio.PinOut
	mask     gpio.GPIOValue
	width    int
	chipType Variant

	mu     sync.Mutex
	d      *i2c.Dev
	value  gpio.GPIOValue
	halted bool
}

// New returns a PCF857x on bus at address. Nothing is written until the first
// pin change or Burst. The port is assumed to be at its power on state, all
// lines High.
func New(bus i2c.Bus, address uint16, chip Variant) (*Dev, error) {
	dev := &Dev{d: &i2c.Dev{Bus: bus, Addr: address}, chipType: chip}
	switch chip {
	case PCF8574:
		dev.width = 8
	case PCF8575:
		dev.width = 16
	default:
		return nil, fmt.Errorf("pcf857x: unknown variant %q", chip)
	}
	dev.mask = gpio.GPIOValue((1 << dev.width) - 1)
	dev.value = dev.mask
	dev.Pins = make([]gpio.PinOut, dev.width)
	sDev := dev.String()
	for ix := range dev.width {
		dev.Pins[ix] = &pcfPin{dev: dev, number: ix, name: fmt.Sprintf("%s_GPIO%d", sDev, ix)}
	}
	return dev, nil
}

// Width returns the number of port lines.
func (dev *Dev) Width() int {
	return dev.width
}

// Value returns the last port state written to the chip.
func (dev *Dev) Value() gpio.GPIOValue {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.value
}

// Burst writes each value as a successive port state in one I²C transaction.
// The port holds each state for one byte time of the bus clock.
func (dev *Dev) Burst(values ...gpio.GPIOValue) error {
	if len(values) == 0 {
		return nil
	}
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.burstLocked(values...)
}

// burstLocked is Burst with mu held.
func (dev *Dev) burstLocked(values ...gpio.GPIOValue) error {
	if dev.halted {
		return ErrClosed
	}
	byteCount := dev.width / 8
	w := make([]byte, 0, len(values)*byteCount)
	for _, v := range values {
		v &= dev.mask
		for ix := range byteCount {
			w = append(w, byte(v>>(ix*8)))
		}
	}
	if err := dev.d.Tx(w, nil); err != nil {
		return fmt.Errorf("pcf857x: %w", err)
	}
	dev.value = values[len(values)-1] & dev.mask
	return nil
}

// Out sets the lines selected by mask to value and leaves the others
// unchanged. The write is skipped when the port would not change.
func (dev *Dev) Out(value, mask gpio.GPIOValue) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	wrValue := (dev.value & (dev.mask ^ mask)) | (value & mask)
	if wrValue == dev.value {
		return nil
	}
	return dev.burstLocked(wrValue)
}

// Halt releases the pins. The device cannot be used afterwards.
func (dev *Dev) Halt() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	dev.halted = true
	dev.Pins = make([]gpio.PinOut, 0)
	return nil
}

func (dev *Dev) String() string {
	return fmt.Sprintf("%s_%x", dev.chipType, dev.d.Addr)
}

var _ conn.Resource = &Dev{}
