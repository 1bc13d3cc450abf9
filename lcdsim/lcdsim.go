// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package lcdsim emulates an HD44780 character display sitting behind a
// PCF8574 I²C backpack.
//
// The emulator implements i2c.Bus, so any driver writing expander port
// states can be pointed at it. It decodes enable strobes the way the
// controller does and keeps the display RAM, address counter and display
// flags, which can then be inspected, rendered to a terminal using ANSI
// colors or saved as a PNG.
//
// Useful while you are waiting for your LCD1602 to come by mail.
package lcdsim

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// ErrNoDevice is returned for transactions to another address.
var ErrNoDevice = errors.New("lcdsim: no device at address")

// ErrClosed is returned once the bus is closed.
var ErrClosed = errors.New("lcdsim: bus closed")

// ddramLine is the DDRAM size of one line in two line mode.
const ddramLine = 40

// Wiring maps controller lines to expander port bits.
type Wiring struct {
	RS, RW, EN, Backlight uint8
	D4, D5, D6, D7        uint8
}

// DefaultWiring is the wiring of the common PCF8574 backpack.
var DefaultWiring = Wiring{RS: 0, RW: 1, EN: 2, Backlight: 3, D4: 4, D5: 5, D6: 6, D7: 7}

// Opts represents the options available for the emulator.
type Opts struct {
	// Addr is the I²C address answered to. Defaults to 0x27.
	Addr uint16
	// Wiring defaults to DefaultWiring when zero.
	Wiring Wiring
	// Cols and Rows of the visible window. Default to 16x2.
	Cols, Rows int
	// Palette used by Render. Defaults to ansi256.Default.
	Palette *ansi256.Palette
	// Out is where Show renders. Defaults to a colorable stdout.
	Out io.Writer

	_ struct{}
}

// Latch is one byte executed by the emulated controller.
type Latch struct {
	RS    bool
	Value byte
}

// State is a snapshot of the controller registers.
type State struct {
	FourBit   bool
	TwoLine   bool
	DisplayOn bool
	CursorOn  bool
	Blink     bool
	Increment bool
	// Address is the DDRAM address counter.
	Address byte
	// Shift is the display shift, in characters to the left.
	Shift     int
	Backlight bool
}

// Dev is an emulated display on an I²C bus.
type Dev struct {
	mu      sync.Mutex
	addr    uint16
	wiring  Wiring
	cols    int
	rows    int
	palette ansi256.Palette
	out     io.Writer
	closed  bool

	port    byte
	hasHigh bool
	high    byte
	cgram   bool
	ddram   [2][ddramLine]byte
	state   State
	latched []Latch
}

// New returns an emulated display in its power on state: 8 bit interface,
// display off, RAM filled with blanks.
func New(opts *Opts) *Dev {
	o := Opts{}
	if opts != nil {
		o = *opts
	}
	if o.Addr == 0 {
		o.Addr = 0x27
	}
	if o.Wiring == (Wiring{}) {
		o.Wiring = DefaultWiring
	}
	if o.Cols <= 0 {
		o.Cols = 16
	}
	if o.Cols > ddramLine {
		o.Cols = ddramLine
	}
	if o.Rows <= 0 || o.Rows > 2 {
		o.Rows = 2
	}
	p := o.Palette
	if p == nil {
		p = ansi256.Default
	}
	out := o.Out
	if out == nil {
		out = colorable.NewColorableStdout()
	}
	d := &Dev{
		addr:    o.Addr,
		wiring:  o.Wiring,
		cols:    o.Cols,
		rows:    o.Rows,
		palette: *p,
		out:     out,
		// Quasi-bidirectional ports idle high.
		port: 0xff,
	}
	d.state.Increment = true
	d.state.Backlight = d.bit(d.port, d.wiring.Backlight)
	d.clearRAM()
	return d
}

func (d *Dev) String() string {
	return fmt.Sprintf("lcdsim(%#x)", d.addr)
}

// Tx implements i2c.Bus. Every written byte is a new port state. Reads return
// the current port state.
func (d *Dev) Tx(addr uint16, w, r []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	if addr != d.addr {
		return fmt.Errorf("%w %#x", ErrNoDevice, addr)
	}
	for _, b := range w {
		d.write(b)
	}
	for i := range r {
		r[i] = d.port
	}
	return nil
}

// SetSpeed implements i2c.Bus. The emulator runs at any speed.
func (d *Dev) SetSpeed(f physic.Frequency) error {
	return nil
}

// Close implements i2c.BusCloser.
func (d *Dev) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// Lines returns the visible text, one string per row. A display turned off
// shows blanks.
func (d *Dev) Lines() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, d.rows)
	for row := range out {
		var sb strings.Builder
		for col := range d.cols {
			c := byte(' ')
			if d.state.DisplayOn {
				c = d.charAt(row, col)
			}
			sb.WriteByte(glyph(c))
		}
		out[row] = sb.String()
	}
	return out
}

// State returns a copy of the controller registers.
func (d *Dev) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Latched returns the bytes the controller executed so far, in order.
func (d *Dev) Latched() []Latch {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Latch(nil), d.latched...)
}

// write processes one port state. The controller samples the data lines on
// the falling edge of EN.
func (d *Dev) write(b byte) {
	prev := d.port
	d.port = b
	d.state.Backlight = d.bit(b, d.wiring.Backlight)
	if !d.bit(prev, d.wiring.EN) || d.bit(b, d.wiring.EN) {
		return
	}
	if d.bit(prev, d.wiring.RW) {
		// Reads of the busy flag are not emulated.
		return
	}
	var nibble byte
	for i, bit := range []uint8{d.wiring.D4, d.wiring.D5, d.wiring.D6, d.wiring.D7} {
		if d.bit(prev, bit) {
			nibble |= 1 << i
		}
	}
	rs := d.bit(prev, d.wiring.RS)
	if !d.state.FourBit {
		// D0-D3 are not wired on a backpack and read as 0.
		d.execute(rs, nibble<<4)
		return
	}
	if !d.hasHigh {
		d.high = nibble
		d.hasHigh = true
		return
	}
	d.hasHigh = false
	d.execute(rs, d.high<<4|nibble)
}

func (d *Dev) execute(rs bool, v byte) {
	d.latched = append(d.latched, Latch{RS: rs, Value: v})
	if rs {
		if !d.cgram {
			row, col := d.locate(d.state.Address)
			d.ddram[row][col] = v
			d.step(d.state.Increment)
		}
		return
	}
	switch {
	case v&0x80 != 0:
		d.cgram = false
		d.state.Address = d.normalize(v & 0x7f)
	case v&0x40 != 0:
		// Custom glyphs are not rendered; the writes are swallowed.
		d.cgram = true
	case v&0x20 != 0:
		d.state.FourBit = v&0x10 == 0
		d.state.TwoLine = v&0x08 != 0
		d.hasHigh = false
	case v&0x10 != 0:
		right := v&0x04 != 0
		if v&0x08 != 0 {
			if right {
				d.state.Shift--
			} else {
				d.state.Shift++
			}
			d.state.Shift = ((d.state.Shift % ddramLine) + ddramLine) % ddramLine
		} else {
			d.step(right)
		}
	case v&0x08 != 0:
		d.state.DisplayOn = v&0x04 != 0
		d.state.CursorOn = v&0x02 != 0
		d.state.Blink = v&0x01 != 0
	case v&0x04 != 0:
		d.state.Increment = v&0x02 != 0
	case v&0x02 != 0:
		d.cgram = false
		d.state.Address = 0
		d.state.Shift = 0
	case v&0x01 != 0:
		d.cgram = false
		d.clearRAM()
		d.state.Address = 0
		d.state.Shift = 0
		d.state.Increment = true
	}
}

// step moves the address counter one position, wrapping from the end of line
// 1 to line 2 and back.
func (d *Dev) step(forward bool) {
	a := d.state.Address
	if !d.state.TwoLine {
		if forward {
			a = (a + 1) % 80
		} else {
			a = (a + 79) % 80
		}
		d.state.Address = a
		return
	}
	switch {
	case forward && a == 0x27:
		a = 0x40
	case forward && a == 0x67:
		a = 0x00
	case !forward && a == 0x00:
		a = 0x67
	case !forward && a == 0x40:
		a = 0x27
	case forward:
		a++
	default:
		a--
	}
	d.state.Address = a
}

// normalize folds addresses that do not exist in the current line mode.
func (d *Dev) normalize(a byte) byte {
	if !d.state.TwoLine {
		return a % 80
	}
	if a >= 0x40 {
		return 0x40 + (a-0x40)%ddramLine
	}
	return a % ddramLine
}

// locate returns the RAM cell behind address a.
func (d *Dev) locate(a byte) (int, int) {
	if !d.state.TwoLine {
		a %= 80
		return int(a) / ddramLine, int(a) % ddramLine
	}
	if a >= 0x40 {
		return 1, int(a-0x40) % ddramLine
	}
	return 0, int(a) % ddramLine
}

func (d *Dev) charAt(row, col int) byte {
	return d.ddram[row][(col+d.state.Shift)%ddramLine]
}

func (d *Dev) clearRAM() {
	for row := range d.ddram {
		for col := range d.ddram[row] {
			d.ddram[row][col] = ' '
		}
	}
}

func (d *Dev) bit(v byte, b uint8) bool {
	return v&(1<<b) != 0
}

// glyph maps a character code of the A00 ROM to a printable byte. Codes
// outside printable ASCII show as a full block placeholder.
func glyph(c byte) byte {
	if c < 0x20 || c > 0x7d {
		return '#'
	}
	return c
}

var _ i2c.BusCloser = &Dev{}
