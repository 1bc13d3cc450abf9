// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"bytes"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/GermanBionicSystems/charlcd/internal/lcdconf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestPrintSim(t *testing.T) {
	out, _, err := execute(t, "--transport", "sim", "print", "Hello", "World")
	require.NoError(t, err)
	assert.Contains(t, out, "Hello           ")
	assert.Contains(t, out, "World           ")
}

func TestPrintTooLong(t *testing.T) {
	_, _, err := execute(t, "--transport", "sim", "print", "this line does not fit")
	assert.Error(t, err)
}

func TestGotoSim(t *testing.T) {
	out, _, err := execute(t, "--transport", "sim", "goto", "2", "3", "hi")
	require.NoError(t, err)
	assert.Contains(t, out, "   hi           ")

	_, _, err = execute(t, "--transport", "sim", "goto", "3", "0")
	assert.Error(t, err)
	_, _, err = execute(t, "--transport", "sim", "goto", "one", "0")
	assert.Error(t, err)
}

func TestCursorArgs(t *testing.T) {
	_, _, err := execute(t, "--transport", "sim", "cursor", "blink")
	require.NoError(t, err)
	_, _, err = execute(t, "--transport", "sim", "cursor", "sideways")
	assert.Error(t, err)
}

func TestClearAndInitSim(t *testing.T) {
	for _, cmd := range []string{"init", "clear", "backlight"} {
		args := []string{"--transport", "sim", cmd}
		if cmd == "backlight" {
			args = append(args, "off")
		}
		out, _, err := execute(t, args...)
		require.NoError(t, err, cmd)
		assert.NotEmpty(t, out, cmd)
	}
}

func TestVerboseLogs(t *testing.T) {
	_, logs, err := execute(t, "--transport", "sim", "-v", "init")
	require.NoError(t, err)
	assert.Contains(t, logs, "controller ready")
	assert.Contains(t, logs, "ready")

	_, logs, err = execute(t, "--transport", "sim", "clear")
	require.NoError(t, err)
	assert.NotContains(t, logs, "controller ready")
}

func TestConfigFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "lcd.yaml")
	require.NoError(t, os.WriteFile(p, []byte("transport: sim\ncols: 20\n"), 0o600))
	out, _, err := execute(t, "--config", p, "print", "twenty columns wide!")
	require.NoError(t, err)
	assert.Contains(t, out, "twenty columns wide!")

	// Flags win over the file.
	_, _, err = execute(t, "--config", p, "--cols", "8", "print", "twenty columns wide!")
	assert.Error(t, err)
}

func TestInvalidConfig(t *testing.T) {
	_, _, err := execute(t, "--transport", "spi", "init")
	assert.ErrorIs(t, err, lcdconf.ErrInvalid)
	_, _, err = execute(t, "--transport", "sim", "--mode", "8", "init")
	assert.ErrorIs(t, err, lcdconf.ErrInvalid)
}

func TestPreviewPNG(t *testing.T) {
	p := filepath.Join(t.TempDir(), "lcd.png")
	_, _, err := execute(t, "preview", "--png", p, "Hello")
	require.NoError(t, err)
	f, err := os.Open(p)
	require.NoError(t, err)
	defer f.Close()
	_, err = png.Decode(f)
	assert.NoError(t, err)
}

func TestPreviewTerminal(t *testing.T) {
	out, _, err := execute(t, "preview", "a", "b")
	require.NoError(t, err)
	assert.Contains(t, out, "a               ")
}

func TestReleaseLogsFailure(t *testing.T) {
	var logs bytes.Buffer
	a := &app{log: newLogger(&logs, false)}
	a.release(&session{release: func() error { return errors.New("bus stuck") }})
	assert.Contains(t, logs.String(), "failed to release the bus")
	assert.Contains(t, logs.String(), "bus stuck")

	logs.Reset()
	a.release(&session{})
	assert.Empty(t, logs.String())
}
