// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"strconv"

	"github.com/GermanBionicSystems/charlcd/hd44780"
	"github.com/GermanBionicSystems/charlcd/internal/lcdconf"
	"github.com/spf13/cobra"
	"periph.io/x/conn/v3/display"
)

// run opens the display, calls fn and shows the emulated panel, if any.
func (a *app) run(cmd *cobra.Command, fn func(dev *hd44780.Dev) error) error {
	s, err := a.open(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.release(s)
	if err := fn(s.dev); err != nil {
		return err
	}
	if s.sim != nil {
		return s.sim.Show()
	}
	return nil
}

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Reset the controller and blank the display",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(dev *hd44780.Dev) error {
				a.log.Infof("lcd: %s ready", dev)
				return nil
			})
		},
	}
}

func newClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Blank the display and move the cursor home",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(dev *hd44780.Dev) error {
				return dev.ClearScreen()
			})
		},
	}
}

// page shows one or two lines.
func page(dev *hd44780.Dev, args []string) error {
	if len(args) == 1 {
		return dev.Display1Page(args[0])
	}
	return dev.Display2Page(args[0], args[1])
}

func newPrintCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "print <line1> [line2]",
		Short: "Clear the display and show one or two lines",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(dev *hd44780.Dev) error {
				return page(dev, args)
			})
		},
	}
}

var cursorModes = map[string]hd44780.CursorMode{
	"off":     hd44780.CursorOff,
	"blink":   hd44780.CursorBlink,
	"noblink": hd44780.CursorNoBlink,
	"hidden":  hd44780.CursorHidden,
}

func newCursorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cursor off|hidden|blink|noblink",
		Short: "Select how the cursor is shown",
		Long: `cursor selects the cursor mode. "off" clears the display control
register and so blanks the display; "hidden" keeps the text visible.`,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"off", "hidden", "blink", "noblink"},
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := cursorModes[args[0]]
			return a.run(cmd, func(dev *hd44780.Dev) error {
				return dev.CursorControl(mode)
			})
		},
	}
}

func newGotoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "goto <line> <col> [text]",
		Short: "Move the cursor and optionally write text there",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("lcd: line %q: %w", args[0], err)
			}
			col, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("lcd: column %q: %w", args[1], err)
			}
			return a.run(cmd, func(dev *hd44780.Dev) error {
				if err := dev.SetCursor(hd44780.Line(line), col); err != nil {
					return err
				}
				if len(args) == 3 {
					_, err := dev.WriteString(args[2])
					return err
				}
				return nil
			})
		},
	}
}

func newBacklightCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "backlight on|off",
		Short:     "Switch the backlight",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var i display.Intensity
			if args[0] == "on" {
				i = 255
			}
			return a.run(cmd, func(dev *hd44780.Dev) error {
				return dev.Backlight(i)
			})
		},
	}
}

func newPreviewCmd(a *app) *cobra.Command {
	var pngPath string
	cmd := &cobra.Command{
		Use:   "preview <line1> [line2]",
		Short: "Show text on the emulated display",
		Long: `preview runs the same sequence as print against the built in emulator
and draws the result in the terminal, or to a PNG file with --png.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.cfg.Transport = lcdconf.TransportSim
			s, err := a.open(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.release(s)
			if err := page(s.dev, args); err != nil {
				return err
			}
			if pngPath != "" {
				if err := s.sim.SavePNG(pngPath); err != nil {
					return err
				}
				a.log.Infof("lcd: wrote %s", pngPath)
				return nil
			}
			return s.sim.Show()
		},
	}
	cmd.Flags().StringVar(&pngPath, "png", "", "write a picture of the display to this file")
	return cmd
}
