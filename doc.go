// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package charlcd is a container for the HD44780 character display driver
// and its companions.
//
// hd44780 is the driver itself, pcf857x the I²C port expander found on LCD
// backpacks and lcdsim an emulated display for running without hardware.
// cmd/lcd exposes them on the command line.
package charlcd
