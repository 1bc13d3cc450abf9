// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pcf857x

import (
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

type pcfPin struct {
	dev    *Dev
	number int
	name   string
}

// Halt implements conn.Resource.
func (pin *pcfPin) Halt() error {
	return nil
}

func (pin *pcfPin) Name() string {
	return pin.name
}

func (pin *pcfPin) Number() int {
	return pin.number
}

// Deprecated: returns "Out"
func (pin *pcfPin) Function() string {
	return "Out"
}

// Out drives the line. Other lines keep their last written level.
func (pin *pcfPin) Out(l gpio.Level) error {
	mask := gpio.GPIOValue(1) << pin.number
	value := gpio.GPIOValue(0)
	if l {
		value = mask
	}
	return pin.dev.Out(value, mask)
}

func (pin *pcfPin) PWM(duty gpio.Duty, f physic.Frequency) error {
	return ErrNotImplemented
}

func (pin *pcfPin) String() string {
	return pin.name
}

var _ gpio.PinOut = &pcfPin{}
