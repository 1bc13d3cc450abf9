// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hd44780 controls character LCDs built on the Hitachi HD44780
// controller and its clones (KS0066, SPLC780, ST7066).
//
// The display is reached either through GPIO lines (8 bit, or 4 bit nibble
// mode) or through a PCF8574 I²C backpack. The controller busy flag is never
// read; every operation waits a fixed, generous delay instead, so each call
// blocks for the sum of its delays.
//
// A Dev is meant to be owned by a single goroutine.
//
// # Datasheet
//
// https://www.sparkfun.com/datasheets/LCD/HD44780.pdf
package hd44780

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
)

// Instructions.
const (
	cmdClear         byte = 0x01
	cmdHome          byte = 0x02
	cmdEntryMode     byte = 0x06 // increment, no shift
	cmdDisplayOff    byte = 0x08
	cmdCursorOff     byte = 0x08 // D=0: the display goes blank too
	cmdCursorHidden  byte = 0x0c
	cmdCursorNoBlink byte = 0x0e
	cmdCursorBlink   byte = 0x0f
	cmdShiftLeft     byte = 0x10
	cmdShiftRight    byte = 0x14
	cmdReset         byte = 0x30 // function set, low nibble ignored
	cmdSet4Bit       byte = 0x20
	cmdFunction4Bit  byte = 0x28 // 2 lines, 5x8 dots, 4 bit bus
	cmdFunction8Bit  byte = 0x38 // 2 lines, 5x8 dots, 8 bit bus

	line1Base byte = 0x80
	line2Base byte = 0xc0
)

// Line selects a display row.
type Line int

const (
	Line1 Line = 1
	Line2 Line = 2
)

// CursorMode selects how the cursor is shown.
type CursorMode int

const (
	// CursorOff clears the whole display control register, which also blanks
	// the display until another cursor mode is selected.
	CursorOff CursorMode = iota
	CursorBlink
	CursorNoBlink
	// CursorHidden keeps the display on with no cursor.
	CursorHidden
)

// Dev is an HD44780 display.
type Dev struct {
	t      Transport
	mode   InterfaceMode
	cols   int
	timing Timing
	sleep  Sleeper
	log    logrus.FieldLogger
}

// New runs the power on handshake over t and returns the initialized display.
// Init leaves the display off; select CursorHidden, CursorBlink or
// CursorNoBlink to show text. opts may be nil. When opts.Mode is unset the transport's mode is used,
// otherwise both must agree.
func New(t Transport, opts *Opts) (*Dev, error) {
	if t == nil {
		return nil, invalidArgument("nil transport")
	}
	o := DefaultOpts
	if opts != nil {
		o = *opts
	}
	if o.Mode == 0 {
		o.Mode = t.Mode()
	}
	o, err := resolve(&o)
	if err != nil {
		return nil, err
	}
	if o.Mode != t.Mode() {
		return nil, invalidArgument("options ask for %s, transport is wired for %s", o.Mode, t.Mode())
	}
	dev := &Dev{
		t:      t,
		mode:   o.Mode,
		cols:   o.Cols,
		timing: o.Timing,
		sleep:  o.Sleeper,
		log:    o.Logger.WithField("display", t.String()),
	}
	if err := dev.Init(); err != nil {
		return nil, err
	}
	return dev, nil
}

type initStep struct {
	c     byte
	w     InterfaceMode
	delay time.Duration
}

// Init runs the power on handshake documented in the datasheet ("Initializing
// by Instruction"). It works whatever state the controller is in: the three
// function set instructions force 8 bit mode first, then 4 bit mode is
// selected if wired that way.
//
// The handshake ends with CursorControl(CursorOff), which clears the display
// control register: the display is left off with the DDRAM cleared.
//
// Init is not retried. A miswired display ends up blank or garbled without an
// error; only transport failures are reported.
func (dev *Dev) Init() error {
	dev.log.Debug("hd44780: waiting for power on")
	dev.sleep.Sleep(dev.timing.PowerOn)

	steps := []initStep{
		{cmdReset, EightBit, dev.timing.Reset},
		{cmdReset, EightBit, dev.timing.Command},
		{cmdReset, EightBit, dev.timing.Command},
	}
	if dev.mode == FourBit {
		// Still in 8 bit mode until 0x20 is latched.
		steps = append(steps,
			initStep{cmdSet4Bit, EightBit, dev.timing.Command},
			initStep{cmdFunction4Bit, FourBit, dev.timing.Command})
	} else {
		steps = append(steps, initStep{cmdFunction8Bit, EightBit, dev.timing.Command})
	}
	steps = append(steps,
		initStep{cmdDisplayOff, dev.mode, dev.timing.Command},
		initStep{cmdClear, dev.mode, dev.timing.Clear},
		initStep{cmdEntryMode, dev.mode, dev.timing.Command},
		initStep{cmdCursorBlink, dev.mode, dev.timing.Command},
	)
	for _, s := range steps {
		if err := dev.t.Command(s.c, s.w); err != nil {
			dev.log.WithError(err).WithField("command", fmt.Sprintf("%#02x", s.c)).Debug("hd44780: init aborted")
			return wrap(err)
		}
		dev.sleep.Sleep(s.delay)
	}
	dev.log.WithField("mode", dev.mode).Debug("hd44780: controller ready")
	if err := dev.ClearScreen(); err != nil {
		return err
	}
	return dev.CursorControl(CursorOff)
}

// WriteCommand sends one instruction byte. It waits only for the enable pulse
// settle time; callers issuing slow instructions add their own delay.
func (dev *Dev) WriteCommand(c byte) error {
	if err := dev.t.Command(c, dev.mode); err != nil {
		dev.log.WithError(err).WithField("command", fmt.Sprintf("%#02x", c)).Debug("hd44780: command failed")
		return wrap(err)
	}
	return nil
}

// WriteData sends p as character codes at the current address. An empty p
// does nothing.
func (dev *Dev) WriteData(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	if err := dev.t.Data(p, dev.mode); err != nil {
		dev.log.WithError(err).WithField("len", len(p)).Debug("hd44780: data failed")
		return wrap(err)
	}
	return nil
}

// ClearScreen blanks the display and returns the cursor home.
func (dev *Dev) ClearScreen() error {
	return dev.command(cmdClear)
}

// CursorControl selects the cursor mode. Every mode but CursorOff turns the
// display on.
func (dev *Dev) CursorControl(mode CursorMode) error {
	var c byte
	switch mode {
	case CursorOff:
		c = cmdCursorOff
	case CursorBlink:
		c = cmdCursorBlink
	case CursorNoBlink:
		c = cmdCursorNoBlink
	case CursorHidden:
		c = cmdCursorHidden
	default:
		return invalidArgument("cursor mode %d", int(mode))
	}
	return dev.command(c)
}

// MoveCursorToBegin moves the cursor to the first column of line.
func (dev *Dev) MoveCursorToBegin(line Line) error {
	base, err := lineBase(line)
	if err != nil {
		return err
	}
	return dev.command(base)
}

// SetCursor moves the cursor to column pos of line. Columns count from 0.
func (dev *Dev) SetCursor(line Line, pos int) error {
	base, err := lineBase(line)
	if err != nil {
		return err
	}
	if pos < 0 || pos >= dev.cols {
		return invalidArgument("column %d outside [0,%d)", pos, dev.cols)
	}
	return dev.command(base + byte(pos))
}

// Display1Page clears the screen and shows text on the first line. Text ends
// at the first NUL byte, if any.
func (dev *Dev) Display1Page(text string) error {
	text, err := dev.lineText(text)
	if err != nil {
		return err
	}
	if err := dev.ClearScreen(); err != nil {
		return err
	}
	if err := dev.MoveCursorToBegin(Line1); err != nil {
		return err
	}
	return dev.WriteData([]byte(text))
}

// Display2Page clears the screen and shows text1 and text2 on the two lines.
func (dev *Dev) Display2Page(text1, text2 string) error {
	text1, err := dev.lineText(text1)
	if err != nil {
		return err
	}
	text2, err = dev.lineText(text2)
	if err != nil {
		return err
	}
	if err := dev.ClearScreen(); err != nil {
		return err
	}
	if err := dev.MoveCursorToBegin(Line1); err != nil {
		return err
	}
	if err := dev.WriteData([]byte(text1)); err != nil {
		return err
	}
	if err := dev.MoveCursorToBegin(Line2); err != nil {
		return err
	}
	return dev.WriteData([]byte(text2))
}

// Home returns the cursor to line 1 column 0 and undoes any display shift.
func (dev *Dev) Home() error {
	if err := dev.WriteCommand(cmdHome); err != nil {
		return err
	}
	// Same execution time as clear.
	dev.sleep.Sleep(dev.timing.Clear)
	return nil
}

// ShiftCursor moves the cursor one position. Only display.Backward and
// display.Forward are supported.
func (dev *Dev) ShiftCursor(dir display.CursorDirection) error {
	switch dir {
	case display.Backward:
		return dev.command(cmdShiftLeft)
	case display.Forward:
		return dev.command(cmdShiftRight)
	default:
		return invalidArgument("cursor direction %d", int(dir))
	}
}

// DisplayOff blanks the display without losing its content.
func (dev *Dev) DisplayOff() error {
	return dev.command(cmdDisplayOff)
}

// Write implements io.Writer. Bytes are sent as is, there is no line wrapping.
func (dev *Dev) Write(p []byte) (int, error) {
	if err := dev.WriteData(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// WriteString writes text at the cursor.
func (dev *Dev) WriteString(text string) (int, error) {
	return dev.Write([]byte(text))
}

// Backlight switches the backlight if the transport controls one, otherwise
// it returns display.ErrNotImplemented.
func (dev *Dev) Backlight(intensity display.Intensity) error {
	bl, ok := dev.t.(display.DisplayBacklight)
	if !ok {
		return wrap(display.ErrNotImplemented)
	}
	return wrap(bl.Backlight(intensity))
}

// Cols returns the number of columns per line.
func (dev *Dev) Cols() int {
	return dev.cols
}

// Halt clears the display, turns it off and releases the transport.
func (dev *Dev) Halt() error {
	err := dev.ClearScreen()
	if err == nil {
		err = dev.DisplayOff()
	}
	if r, ok := dev.t.(conn.Resource); ok {
		if herr := r.Halt(); err == nil {
			err = wrap(herr)
		}
	}
	return err
}

func (dev *Dev) String() string {
	return fmt.Sprintf("HD44780{%s, %s, %d cols}", dev.t, dev.mode, dev.cols)
}

// command sends c and waits for it to execute.
func (dev *Dev) command(c byte) error {
	if err := dev.WriteCommand(c); err != nil {
		return err
	}
	dev.sleep.Sleep(dev.timing.Command)
	return nil
}

func lineBase(line Line) (byte, error) {
	switch line {
	case Line1:
		return line1Base, nil
	case Line2:
		return line2Base, nil
	default:
		return 0, invalidArgument("line %d", int(line))
	}
}

func (dev *Dev) lineText(text string) (string, error) {
	if i := strings.IndexByte(text, 0); i >= 0 {
		text = text[:i]
	}
	if len(text) > dev.cols {
		return "", invalidArgument("%d characters do not fit on a %d column line", len(text), dev.cols)
	}
	return text, nil
}

var _ conn.Resource = &Dev{}
var _ display.DisplayBacklight = &Dev{}
var _ io.Writer = &Dev{}
