// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
)

// GPIOMonoBacklight switches the LED backlight of a parallel wired display
// with a single GPIO pin.
type GPIOMonoBacklight struct {
	blPin gpio.PinOut
}

// NewBacklight returns a backlight driven by blPin.
func NewBacklight(blPin gpio.PinOut) *GPIOMonoBacklight {
	return &GPIOMonoBacklight{blPin: blPin}
}

// Backlight turns the backlight on for any non zero intensity.
func (bl *GPIOMonoBacklight) Backlight(intensity display.Intensity) error {
	if err := bl.blPin.Out(gpio.Level(intensity > 0)); err != nil {
		return busError("backlight", err)
	}
	return nil
}

var _ display.DisplayBacklight = &GPIOMonoBacklight{}
