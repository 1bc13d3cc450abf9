// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"io"
	"os"

	"github.com/GermanBionicSystems/charlcd/internal/lcdconf"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// app carries the state shared by the commands of one invocation.
type app struct {
	configPath string
	transport  string
	bus        string
	addr       uint16
	mode       int
	cols       int
	verbose    bool

	cfg lcdconf.Config
	log *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "lcd",
		Short: "Drive an HD44780 character display",
		Long: `lcd initializes and writes to an HD44780 character LCD wired to GPIO
lines or to a PCF8574 I²C backpack. Every invocation runs the controller
reset handshake first, so the display always starts from a known state.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	f := root.PersistentFlags()
	f.StringVar(&a.configPath, "config", "", "YAML configuration file")
	f.StringVar(&a.transport, "transport", lcdconf.TransportI2C, "i2c, gpio or sim")
	f.StringVar(&a.bus, "bus", "", "I²C bus name, empty for the first one")
	f.Uint16Var(&a.addr, "addr", 0, "I²C address of the backpack (default 0x27)")
	f.IntVar(&a.mode, "mode", 0, "bus width, 4 or 8 (default 4)")
	f.IntVar(&a.cols, "cols", 0, "characters per line (default 16)")
	f.BoolVarP(&a.verbose, "verbose", "v", false, "log every controller step")

	root.AddCommand(
		newInitCmd(a),
		newClearCmd(a),
		newPrintCmd(a),
		newCursorCmd(a),
		newGotoCmd(a),
		newBacklightCmd(a),
		newPreviewCmd(a),
	)
	return root
}

// setup builds the logger and the effective configuration: the file first,
// then flags explicitly set on the command line.
func (a *app) setup(cmd *cobra.Command) error {
	a.log = newLogger(cmd.ErrOrStderr(), a.verbose)
	cfg, err := lcdconf.Load(a.configPath)
	if err != nil {
		return err
	}
	f := cmd.Flags()
	if f.Changed("transport") {
		cfg.Transport = a.transport
	}
	if f.Changed("bus") {
		cfg.I2C.Bus = a.bus
	}
	if f.Changed("addr") {
		cfg.I2C.Addr = a.addr
	}
	if f.Changed("mode") {
		cfg.Mode = a.mode
	}
	if f.Changed("cols") {
		cfg.Cols = a.cols
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.log.WithField("config", a.configPath).Debugf("lcd: %s transport, %d bit, %d cols", cfg.Transport, cfg.Mode, cfg.Cols)
	return nil
}

// newLogger returns a text logger writing to w, colored only when w is a
// terminal.
func newLogger(w io.Writer, verbose bool) *logrus.Logger {
	l := logrus.New()
	tty := false
	if f, ok := w.(*os.File); ok {
		tty = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		if tty {
			w = colorable.NewColorable(f)
		}
	}
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{
		ForceColors:   tty,
		DisableColors: !tty,
		FullTimestamp: true,
	})
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}
