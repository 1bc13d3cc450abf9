// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780_test

import (
	"fmt"
	"log"
	"time"

	"github.com/GermanBionicSystems/charlcd/hd44780"
	"github.com/GermanBionicSystems/charlcd/lcdsim"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
	"periph.io/x/host/v3/gpioioctl"
)

// This example drives a display wired in 4 bit mode to GPIO lines. The
// periph.io/x/host/v3/gpioioctl package hands out the lines as a
// gpio.Group; any gpio.Group and gpio.PinOut implementation works.
func Example() {
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	chip := gpioioctl.Chips[0]
	// The first 4 lines of the group are D4-D7, then RS, EN and backlight.
	ls, err := chip.LineSet(gpioioctl.LineOutput, gpio.NoEdge, gpio.PullNoChange,
		"GPIO27", "GPIO22", "GPIO23", "GPIO24", "GPIO17", "GPIO18", "GPIO25")
	if err != nil {
		log.Fatal(err)
	}
	pins := ls.Pins()
	lcd, err := hd44780.NewGPIO(hd44780.ParallelPins{
		RS:        pins[4].(gpio.PinOut),
		EN:        pins[5].(gpio.PinOut),
		Data:      ls,
		Backlight: pins[6].(gpio.PinOut),
	}, &hd44780.Opts{Mode: hd44780.FourBit, Cols: 16})
	if err != nil {
		log.Fatal(err)
	}
	defer lcd.Halt()
	fmt.Println(lcd)

	if err := lcd.CursorControl(hd44780.CursorHidden); err != nil {
		log.Fatal(err)
	}
	if err := lcd.Display2Page("Hello", "from periph"); err != nil {
		log.Fatal(err)
	}
	time.Sleep(5 * time.Second)
	if err := lcd.SetCursor(hd44780.Line2, 12); err != nil {
		log.Fatal(err)
	}
	if err := lcd.CursorControl(hd44780.CursorBlink); err != nil {
		log.Fatal(err)
	}
}

func ExampleNewPCF857xBackpack() {
	// Make sure periph is initialized.
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}

	// Open default I²C bus.
	bus, err := i2creg.Open("")
	if err != nil {
		log.Fatalf("failed to open I²C: %v", err)
	}
	defer bus.Close()
	dev, err := hd44780.NewPCF857xBackpack(bus, hd44780.DefaultBackpackAddress, &hd44780.Opts{Cols: 20})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(dev.String())
	for range 5 {
		_ = dev.Backlight(0)
		time.Sleep(500 * time.Millisecond)
		_ = dev.Backlight(255)
		time.Sleep(500 * time.Millisecond)
	}
	if err := dev.CursorControl(hd44780.CursorHidden); err != nil {
		log.Fatal(err)
	}
	if err := dev.Display1Page("Hello"); err != nil {
		log.Fatal(err)
	}
}

// The emulator stands in for the I²C bus, so this example runs anywhere.
func ExampleNew() {
	sim := lcdsim.New(nil)
	dev, err := hd44780.NewPCF857xBackpack(sim, hd44780.DefaultBackpackAddress, &hd44780.Opts{
		Sleeper: hd44780.SleeperFunc(func(time.Duration) {}),
	})
	if err != nil {
		log.Fatal(err)
	}
	// Init leaves the display off.
	if err := dev.CursorControl(hd44780.CursorHidden); err != nil {
		log.Fatal(err)
	}
	if err := dev.Display2Page("Hello", "periph"); err != nil {
		log.Fatal(err)
	}
	for _, l := range sim.Lines() {
		fmt.Printf("%q\n", l)
	}
	// Output:
	// "Hello           "
	// "periph          "
}
