// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"errors"
	"fmt"
	"strings"
)

const packageName = "hd44780"

var (
	// ErrBus is returned when the underlying GPIO or I²C transport fails to
	// transmit. The driver never retries; the periph error is
	// wrapped and can be inspected with errors.As.
	ErrBus = errors.New("bus error")

	// ErrInvalidArgument is returned for values the controller cannot address:
	// an unknown line or cursor mode, a column past the display width, text
	// longer than a line, or inconsistent options.
	ErrInvalidArgument = errors.New("invalid argument")
)

func wrap(err error) error {
	if err == nil || strings.HasPrefix(err.Error(), packageName) {
		return err
	}
	return fmt.Errorf("%s: %w", packageName, err)
}

// busError marks err as a transport failure while keeping it unwrappable.
func busError(op string, err error) error {
	if err == nil || errors.Is(err, ErrBus) {
		return err
	}
	return fmt.Errorf("%s: %s: %w: %w", packageName, op, ErrBus, err)
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", packageName, ErrInvalidArgument, fmt.Sprintf(format, args...))
}
