// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/GermanBionicSystems/charlcd/hd44780"
	"github.com/GermanBionicSystems/charlcd/internal/lcdconf"
	"github.com/GermanBionicSystems/charlcd/lcdsim"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
	"periph.io/x/host/v3/gpioioctl"
)

// session is an initialized display and whatever must be released after.
type session struct {
	dev     *hd44780.Dev
	sim     *lcdsim.Dev
	release func() error
}

// open initializes the display selected by the configuration and switches it
// on with a hidden cursor. out receives the emulator rendering.
func (a *app) open(out io.Writer) (*session, error) {
	opts := a.cfg.Opts()
	opts.Logger = a.log
	var s *session
	var err error
	switch a.cfg.Transport {
	case lcdconf.TransportSim:
		s, err = openSim(a.cfg, opts, out)
	case lcdconf.TransportI2C:
		s, err = openI2C(a.cfg, opts)
	case lcdconf.TransportGPIO:
		s, err = openGPIO(a.cfg, opts)
	default:
		return nil, fmt.Errorf("lcd: unknown transport %q", a.cfg.Transport)
	}
	if err != nil {
		return nil, err
	}
	if err := s.dev.CursorControl(hd44780.CursorHidden); err != nil {
		_ = s.close()
		return nil, err
	}
	return s, nil
}

func openSim(cfg lcdconf.Config, opts hd44780.Opts, out io.Writer) (*session, error) {
	if out == os.Stdout {
		out = colorable.NewColorableStdout()
	}
	sim := lcdsim.New(&lcdsim.Opts{Addr: cfg.I2C.Addr, Cols: cfg.Cols, Out: out})
	// Nothing to wait for.
	opts.Sleeper = hd44780.SleeperFunc(func(time.Duration) {})
	dev, err := hd44780.NewPCF857xBackpack(sim, cfg.I2C.Addr, &opts)
	if err != nil {
		return nil, err
	}
	return &session{dev: dev, sim: sim, release: sim.Close}, nil
}

func openI2C(cfg lcdconf.Config, opts hd44780.Opts) (*session, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	bus, err := i2creg.Open(cfg.I2C.Bus)
	if err != nil {
		return nil, fmt.Errorf("lcd: failed to open I²C: %w", err)
	}
	dev, err := hd44780.NewPCF857xBackpack(bus, cfg.I2C.Addr, &opts)
	if err != nil {
		_ = bus.Close()
		return nil, err
	}
	return &session{dev: dev, release: bus.Close}, nil
}

func openGPIO(cfg lcdconf.Config, opts hd44780.Opts) (*session, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	if cfg.GPIO.Chip < 0 || cfg.GPIO.Chip >= len(gpioioctl.Chips) {
		return nil, fmt.Errorf("lcd: no GPIO chip %d", cfg.GPIO.Chip)
	}
	chip := gpioioctl.Chips[cfg.GPIO.Chip]
	// Data lines come first so the group offsets match D4-D7 or D0-D7.
	names := append([]string{}, cfg.GPIO.Data...)
	names = append(names, cfg.GPIO.RS, cfg.GPIO.EN)
	if cfg.GPIO.RW != "" {
		names = append(names, cfg.GPIO.RW)
	}
	if cfg.GPIO.Backlight != "" {
		names = append(names, cfg.GPIO.Backlight)
	}
	ls, err := chip.LineSet(gpioioctl.LineOutput, gpio.NoEdge, gpio.PullNoChange, names...)
	if err != nil {
		return nil, fmt.Errorf("lcd: failed to request GPIO lines: %w", err)
	}
	line := func(name string) gpio.PinOut {
		if name == "" {
			return nil
		}
		p, _ := ls.ByName(name).(gpio.PinOut)
		return p
	}
	dev, err := hd44780.NewGPIO(hd44780.ParallelPins{
		RS:        line(cfg.GPIO.RS),
		RW:        line(cfg.GPIO.RW),
		EN:        line(cfg.GPIO.EN),
		Data:      ls,
		Backlight: line(cfg.GPIO.Backlight),
	}, &opts)
	if err != nil {
		_ = ls.Close()
		return nil, err
	}
	return &session{dev: dev, release: ls.Close}, nil
}

// close releases the bus without touching the display, which keeps showing
// what was written.
func (s *session) close() error {
	if s.release == nil {
		return nil
	}
	return s.release()
}

// release closes s and logs a failure, as there is nothing left to undo.
func (a *app) release(s *session) {
	if err := s.close(); err != nil {
		a.log.WithError(err).Warn("lcd: failed to release the bus")
	}
}
