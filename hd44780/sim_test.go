// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/GermanBionicSystems/charlcd/hd44780"
	"github.com/GermanBionicSystems/charlcd/lcdsim"
	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/display"
)

func initSim(t *testing.T, cols int) (*hd44780.Dev, *lcdsim.Dev) {
	t.Helper()
	sim := lcdsim.New(&lcdsim.Opts{Cols: cols, Out: &bytes.Buffer{}})
	dev, err := hd44780.NewPCF857xBackpack(sim, hd44780.DefaultBackpackAddress, &hd44780.Opts{
		Cols:    cols,
		Sleeper: hd44780.SleeperFunc(func(time.Duration) {}),
	})
	if err != nil {
		t.Fatal(err)
	}
	return dev, sim
}

// newSim returns an initialized display switched on with a hidden cursor.
func newSim(t *testing.T, cols int) (*hd44780.Dev, *lcdsim.Dev) {
	t.Helper()
	dev, sim := initSim(t, cols)
	if err := dev.CursorControl(hd44780.CursorHidden); err != nil {
		t.Fatal(err)
	}
	return dev, sim
}

func pad(s string, n int) string {
	return s + strings.Repeat(" ", n-len(s))
}

func TestSimInit(t *testing.T) {
	dev, sim := initSim(t, 16)
	// Init ends with CursorOff, which leaves the display dark.
	want := lcdsim.State{
		FourBit:   true,
		TwoLine:   true,
		Increment: true,
		Backlight: true,
	}
	if diff := cmp.Diff(want, sim.State()); diff != "" {
		t.Errorf("state after init (-want +got):\n%s", diff)
	}
	if err := dev.Display1Page("dark"); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{pad("", 16), pad("", 16)}, sim.Lines()); diff != "" {
		t.Errorf("text shown before a cursor mode is selected (-want +got):\n%s", diff)
	}
	if err := dev.CursorControl(hd44780.CursorHidden); err != nil {
		t.Fatal(err)
	}
	if st := sim.State(); !st.DisplayOn || st.CursorOn || st.Blink {
		t.Errorf("state with a hidden cursor: %+v", st)
	}
	if diff := cmp.Diff([]string{pad("dark", 16), pad("", 16)}, sim.Lines()); diff != "" {
		t.Errorf("lines with a hidden cursor (-want +got):\n%s", diff)
	}
}

func TestSimClearScreenIdempotent(t *testing.T) {
	once, simOnce := newSim(t, 16)
	twice, simTwice := newSim(t, 16)
	for _, dev := range []*hd44780.Dev{once, twice} {
		if err := dev.Display2Page("left", "overs"); err != nil {
			t.Fatal(err)
		}
	}
	if err := once.ClearScreen(); err != nil {
		t.Fatal(err)
	}
	for range 2 {
		if err := twice.ClearScreen(); err != nil {
			t.Fatal(err)
		}
	}
	if diff := cmp.Diff(simOnce.State(), simTwice.State()); diff != "" {
		t.Errorf("state (-once +twice):\n%s", diff)
	}
	if diff := cmp.Diff(simOnce.Lines(), simTwice.Lines()); diff != "" {
		t.Errorf("lines (-once +twice):\n%s", diff)
	}
}

func TestSimDisplay2Page(t *testing.T) {
	dev, sim := newSim(t, 20)
	if err := dev.Display2Page("first", "second"); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{pad("first", 20), pad("second", 20)}, sim.Lines()); diff != "" {
		t.Errorf("lines (-want +got):\n%s", diff)
	}
	// The previous page is wiped.
	if err := dev.Display1Page("third"); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{pad("third", 20), pad("", 20)}, sim.Lines()); diff != "" {
		t.Errorf("lines (-want +got):\n%s", diff)
	}
}

func TestSimCursor(t *testing.T) {
	dev, sim := newSim(t, 16)
	if err := dev.SetCursor(hd44780.Line2, 5); err != nil {
		t.Fatal(err)
	}
	if a := sim.State().Address; a != 0x45 {
		t.Errorf("address = %#x", a)
	}
	if _, err := dev.WriteString("x"); err != nil {
		t.Fatal(err)
	}
	if err := dev.ShiftCursor(display.Backward); err != nil {
		t.Fatal(err)
	}
	if a := sim.State().Address; a != 0x45 {
		t.Errorf("address after shift = %#x", a)
	}
	if err := dev.CursorControl(hd44780.CursorBlink); err != nil {
		t.Fatal(err)
	}
	if st := sim.State(); !st.CursorOn || !st.Blink || !st.DisplayOn {
		t.Errorf("cursor not blinking: %+v", st)
	}
	if err := dev.Home(); err != nil {
		t.Fatal(err)
	}
	if a := sim.State().Address; a != 0 {
		t.Errorf("address after home = %#x", a)
	}
}

func TestSimBacklight(t *testing.T) {
	dev, sim := newSim(t, 16)
	if err := dev.Backlight(0); err != nil {
		t.Fatal(err)
	}
	if err := dev.Display1Page("dark"); err != nil {
		t.Fatal(err)
	}
	if sim.State().Backlight {
		t.Error("commands turned the backlight back on")
	}
	if err := dev.Backlight(255); err != nil {
		t.Fatal(err)
	}
	if !sim.State().Backlight {
		t.Error("backlight expected on")
	}
}

func TestSimHalt(t *testing.T) {
	dev, sim := newSim(t, 16)
	if err := dev.Display1Page("bye"); err != nil {
		t.Fatal(err)
	}
	if err := dev.Halt(); err != nil {
		t.Fatal(err)
	}
	if sim.State().DisplayOn {
		t.Error("display expected off")
	}
}
