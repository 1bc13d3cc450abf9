// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// lcd writes to an HD44780 character display.
//
// The display is reached through a PCF8574 I²C backpack, through GPIO lines
// or through the built in emulator:
//
//	lcd print "Hello" "world"
//	lcd --transport gpio --config lcd.yaml cursor blink
//	lcd preview --png out.png "Hello"
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
