// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package lcdconf loads the lcd command configuration file.
package lcdconf

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/GermanBionicSystems/charlcd/hd44780"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Transports.
const (
	TransportI2C  = "i2c"
	TransportGPIO = "gpio"
	TransportSim  = "sim"
)

// ErrInvalid is returned for a configuration that cannot drive a display.
var ErrInvalid = errors.New("lcdconf: invalid configuration")

// I2C locates the backpack.
type I2C struct {
	// Bus is the i2creg name; empty selects the first bus.
	Bus  string `mapstructure:"bus"`
	Addr uint16 `mapstructure:"addr"`
}

// GPIO names the lines of a directly wired display. Data lists D4-D7 in 4
// bit mode, D0-D7 in 8 bit mode.
type GPIO struct {
	Chip      int      `mapstructure:"chip"`
	RS        string   `mapstructure:"rs"`
	RW        string   `mapstructure:"rw"`
	EN        string   `mapstructure:"en"`
	Backlight string   `mapstructure:"backlight"`
	Data      []string `mapstructure:"data"`
}

// Timing overrides the driver delays. Zero keeps the driver default.
type Timing struct {
	PowerOn time.Duration `mapstructure:"power_on"`
	Pulse   time.Duration `mapstructure:"pulse"`
	Command time.Duration `mapstructure:"command"`
	Reset   time.Duration `mapstructure:"reset"`
	Clear   time.Duration `mapstructure:"clear"`
}

// Config is the content of the configuration file.
type Config struct {
	Transport string `mapstructure:"transport"`
	Mode      int    `mapstructure:"mode"`
	Cols      int    `mapstructure:"cols"`
	I2C       I2C    `mapstructure:"i2c"`
	GPIO      GPIO   `mapstructure:"gpio"`
	Timing    Timing `mapstructure:"timing"`
}

// Default returns the configuration of a 16x2 display on a PCF8574 backpack
// at its factory address.
func Default() Config {
	return Config{
		Transport: TransportI2C,
		Mode:      int(hd44780.FourBit),
		Cols:      16,
		I2C:       I2C{Addr: hd44780.DefaultBackpackAddress},
	}
}

// Load reads path on top of Default. An empty path returns Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("lcdconf: %w", err)
	}
	if err := Decode(raw, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Decode merges the YAML document raw into cfg. Durations are written as
// "150ms". Unknown keys are an error.
func Decode(raw []byte, cfg *Config) error {
	var m map[string]any
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("lcdconf: %w", err)
	}
	if m == nil {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           cfg,
	})
	if err != nil {
		return fmt.Errorf("lcdconf: %w", err)
	}
	if err := dec.Decode(m); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Validate checks the fields the driver cannot check itself.
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportI2C, TransportSim:
		if c.Mode != int(hd44780.FourBit) {
			return fmt.Errorf("%w: %s transport only runs in 4 bit mode", ErrInvalid, c.Transport)
		}
	case TransportGPIO:
		if c.Mode != int(hd44780.FourBit) && c.Mode != int(hd44780.EightBit) {
			return fmt.Errorf("%w: mode %d", ErrInvalid, c.Mode)
		}
		if c.GPIO.RS == "" || c.GPIO.EN == "" {
			return fmt.Errorf("%w: gpio transport needs rs and en lines", ErrInvalid)
		}
		if len(c.GPIO.Data) != c.Mode {
			return fmt.Errorf("%w: %d bit mode needs %d data lines, got %d", ErrInvalid, c.Mode, c.Mode, len(c.GPIO.Data))
		}
	default:
		return fmt.Errorf("%w: unknown transport %q", ErrInvalid, c.Transport)
	}
	if c.Cols < 1 || c.Cols > 40 {
		return fmt.Errorf("%w: %d columns", ErrInvalid, c.Cols)
	}
	if c.I2C.Addr > 0x7f {
		return fmt.Errorf("%w: I²C address %#x", ErrInvalid, c.I2C.Addr)
	}
	return nil
}

// Opts converts the configuration to driver options.
func (c *Config) Opts() hd44780.Opts {
	return hd44780.Opts{
		Mode: hd44780.InterfaceMode(c.Mode),
		Cols: c.Cols,
		Timing: hd44780.Timing{
			PowerOn: c.Timing.PowerOn,
			Pulse:   c.Timing.Pulse,
			Command: c.Timing.Command,
			Reset:   c.Timing.Reset,
			Clear:   c.Timing.Clear,
		},
	}
}
