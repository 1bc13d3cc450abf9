// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

// Transport moves instruction and character bytes to the controller. It owns
// the electrical protocol: control line setup, nibble splitting, enable pulses
// and the settle delay after each pulse.
//
// w is the width the controller currently expects. It equals Mode() except
// during the reset handshake, where the function set instructions are latched
// in a single enable cycle before the controller has been switched to 4 bit
// operation.
type Transport interface {
	// Command latches c with RS low.
	Command(c byte, w InterfaceMode) error
	// Data latches every byte of p with RS high. RS is raised once before the
	// first byte and lowered once after the last. An empty p is a no-op.
	Data(p []byte, w InterfaceMode) error
	// Mode is the bus width the transport is wired for.
	Mode() InterfaceMode
	String() string
}
