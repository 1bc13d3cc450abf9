// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pcf857x

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

func getDev(t *testing.T, chip Variant) (*Dev, *i2ctest.Record) {
	rec := &i2ctest.Record{}
	dev, err := New(rec, 0x27, chip)
	if err != nil {
		t.Fatal(err)
	}
	return dev, rec
}

func TestBasic(t *testing.T) {
	for _, tc := range []struct {
		chip  Variant
		width int
	}{{PCF8574, 8}, {PCF8575, 16}} {
		dev, _ := getDev(t, tc.chip)
		if dev.Width() != tc.width || len(dev.Pins) != tc.width {
			t.Errorf("%s: expected %d pins, found width %d and %d pins", tc.chip, tc.width, dev.Width(), len(dev.Pins))
		}
		for ix, p := range dev.Pins {
			if p.Number() != ix {
				t.Errorf("pin.Number() does not match ordinal position %d! Found %d", ix, p.Number())
			}
			if !strings.HasPrefix(p.Name(), dev.String()) {
				t.Errorf("Expected pin.Name()=%s to start with dev.String()=%s", p.Name(), dev.String())
			}
		}
		if !errors.Is(dev.Pins[0].PWM(10, 10), ErrNotImplemented) {
			t.Error("PWM() expected ErrNotImplemented")
		}
	}
	if _, err := New(&i2ctest.Record{}, DefaultAddress, Variant("PCF9999")); err == nil {
		t.Error("expected an error for an unknown variant")
	}
}

func TestBurst(t *testing.T) {
	dev, rec := getDev(t, PCF8574)
	if err := dev.Burst(0x3c, 0x38, 0x0c, 0x108); err != nil {
		t.Fatal(err)
	}
	want := []i2ctest.IO{{Addr: 0x27, W: []byte{0x3c, 0x38, 0x0c, 0x08}}}
	if diff := cmp.Diff(want, rec.Ops, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Burst() mismatch (-want +got):\n%s", diff)
	}
	if dev.Value() != 0x08 {
		t.Errorf("Value() expected 0x08, found 0x%x", dev.Value())
	}
	if err := dev.Burst(); err != nil || len(rec.Ops) != 1 {
		t.Errorf("empty Burst() should not touch the bus, err=%v ops=%d", err, len(rec.Ops))
	}

	wide, rec := getDev(t, PCF8575)
	if err := wide.Burst(0x1234, 0xabcd); err != nil {
		t.Fatal(err)
	}
	want = []i2ctest.IO{{Addr: 0x27, W: []byte{0x34, 0x12, 0xcd, 0xab}}}
	if diff := cmp.Diff(want, rec.Ops, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("PCF8575 Burst() mismatch (-want +got):\n%s", diff)
	}
}

func TestOut(t *testing.T) {
	dev, rec := getDev(t, PCF8574)
	// Power on state is all High, so this is skipped.
	if err := dev.Pins[3].Out(gpio.High); err != nil {
		t.Fatal(err)
	}
	if len(rec.Ops) != 0 {
		t.Errorf("expected no write, found %#v", rec.Ops)
	}
	if err := dev.Out(0x00, 0xf0); err != nil {
		t.Fatal(err)
	}
	if err := dev.Pins[0].Out(gpio.Low); err != nil {
		t.Fatal(err)
	}
	want := []i2ctest.IO{
		{Addr: 0x27, W: []byte{0x0f}},
		{Addr: 0x27, W: []byte{0x0e}},
	}
	if diff := cmp.Diff(want, rec.Ops, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Out() mismatch (-want +got):\n%s", diff)
	}
}

func TestOutConcurrentPins(t *testing.T) {
	dev, rec := getDev(t, PCF8574)
	for round := range 500 {
		if err := dev.Burst(0x00); err != nil {
			t.Fatal(err)
		}
		var wg sync.WaitGroup
		for _, p := range dev.Pins {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := p.Out(gpio.High); err != nil {
					t.Error(err)
				}
			}()
		}
		wg.Wait()
		if v := dev.Value(); v != 0xff {
			t.Fatalf("round %d: pin writes lost, port is 0x%02x", round, v)
		}
		if last := rec.Ops[len(rec.Ops)-1].W; last[0] != 0xff {
			t.Fatalf("round %d: last write 0x%02x", round, last[0])
		}
	}
}

func TestBusFailure(t *testing.T) {
	bus := &i2ctest.Playback{DontPanic: true}
	dev, err := New(bus, DefaultAddress, PCF8574)
	if err != nil {
		t.Fatal(err)
	}
	err = dev.Burst(0x01)
	if err == nil || !strings.HasPrefix(err.Error(), "pcf857x") {
		t.Errorf("expected a pcf857x error, found %v", err)
	}
	if dev.Value() != 0xff {
		t.Errorf("failed write must not update the cached value, found 0x%x", dev.Value())
	}
}

func TestHalt(t *testing.T) {
	dev, _ := getDev(t, PCF8574)
	if err := dev.Halt(); err != nil {
		t.Error(err)
	}
	if !errors.Is(dev.Burst(0), ErrClosed) {
		t.Error("expected ErrClosed after Halt()")
	}
}
