// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcdsim

import (
	"bytes"
	"image"
	"image/color"
	"io"
	"strconv"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

// Panel colors.
var (
	bezel      = color.NRGBA{0x20, 0x20, 0x20, 0xff}
	litPanel   = color.NRGBA{0x7c, 0xc0, 0x3c, 0xff}
	darkPanel  = color.NRGBA{0x3a, 0x52, 0x24, 0xff}
	pixelColor = color.NRGBA{0x10, 0x20, 0x10, 0xff}
)

// Cell geometry of the PNG rendering, in pixels.
const (
	cellW   = 24
	cellH   = 36
	margin  = 18
	fontPts = 28
)

var (
	faceOnce sync.Once
	face     font.Face
	faceErr  error
)

func monoFace() (font.Face, error) {
	faceOnce.Do(func() {
		f, err := truetype.Parse(gomono.TTF)
		if err != nil {
			faceErr = err
			return
		}
		face = truetype.NewFace(f, &truetype.Options{Size: fontPts})
	})
	return face, faceErr
}

// Render writes the display as a framed block of ANSI colored text to w.
func (d *Dev) Render(w io.Writer) error {
	lines := d.Lines()
	st := d.State()
	panel := darkPanel
	if st.Backlight {
		panel = litPanel
	}
	var buf bytes.Buffer
	edge := func() {
		_, _ = buf.WriteString("\033[0m")
		for range d.cols + 2 {
			_, _ = io.WriteString(&buf, d.palette.Block(bezel))
		}
		_, _ = buf.WriteString("\033[0m\n")
	}
	edge()
	for _, l := range lines {
		_, _ = buf.WriteString("\033[0m")
		_, _ = io.WriteString(&buf, d.palette.Block(bezel))
		_, _ = buf.WriteString(d.sgrText(panel))
		_, _ = buf.WriteString(l)
		_, _ = buf.WriteString("\033[0m")
		_, _ = io.WriteString(&buf, d.palette.Block(bezel))
		_, _ = buf.WriteString("\033[0m\n")
	}
	edge()
	_, err := buf.WriteTo(w)
	return err
}

// Show renders the display to the output configured in Opts.
func (d *Dev) Show() error {
	return d.Render(d.out)
}

// Image returns a picture of the display as it would look on the panel.
func (d *Dev) Image() (image.Image, error) {
	dc, err := d.draw()
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// SavePNG writes the picture of the display to path.
func (d *Dev) SavePNG(path string) error {
	dc, err := d.draw()
	if err != nil {
		return err
	}
	return dc.SavePNG(path)
}

// EncodePNG writes the picture of the display to w.
func (d *Dev) EncodePNG(w io.Writer) error {
	dc, err := d.draw()
	if err != nil {
		return err
	}
	return dc.EncodePNG(w)
}

func (d *Dev) draw() (*gg.Context, error) {
	ff, err := monoFace()
	if err != nil {
		return nil, err
	}
	lines := d.Lines()
	st := d.State()
	width := 2*margin + d.cols*cellW
	height := 2*margin + d.rows*cellH
	dc := gg.NewContext(width, height)
	dc.SetColor(bezel)
	dc.Clear()
	panel := darkPanel
	if st.Backlight {
		panel = litPanel
	}
	dc.SetColor(panel)
	dc.DrawRoundedRectangle(margin/2, margin/2, float64(width-margin), float64(height-margin), 6)
	dc.Fill()

	dc.SetFontFace(ff)
	dc.SetColor(pixelColor)
	for row, l := range lines {
		cy := float64(margin + row*cellH + cellH/2)
		for col, c := range []byte(l) {
			cx := float64(margin + col*cellW + cellW/2)
			dc.DrawStringAnchored(string(rune(c)), cx, cy, 0.5, 0.35)
		}
	}
	if st.DisplayOn && (st.CursorOn || st.Blink) {
		if row, col, ok := d.cursorCell(st); ok {
			x := float64(margin + col*cellW + 2)
			y := float64(margin + (row+1)*cellH - 4)
			if st.Blink {
				dc.DrawRectangle(x, float64(margin+row*cellH+2), cellW-4, cellH-4)
			} else {
				dc.DrawRectangle(x, y, cellW-4, 2)
			}
			dc.Fill()
		}
	}
	return dc, nil
}

// cursorCell returns the visible cell under the address counter.
func (d *Dev) cursorCell(st State) (int, int, bool) {
	d.mu.Lock()
	row, ram := d.locate(st.Address)
	d.mu.Unlock()
	if row >= d.rows {
		return 0, 0, false
	}
	col := ((ram-st.Shift)%ddramLine + ddramLine) % ddramLine
	if col >= d.cols {
		return 0, 0, false
	}
	return row, col, true
}

// sgrText selects the palette colors closest to the pixels on the panel.
func (d *Dev) sgrText(bg color.NRGBA) string {
	return "\033[38;5;" + strconv.Itoa(d.palette.ANSI(pixelColor)) + ";48;5;" + strconv.Itoa(d.palette.ANSI(bg)) + "m"
}
