// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Package pixel describes captured frames and how they are copied into
// destination images owned by the host.
package pixel

import (
	"errors"
	"fmt"
)

var (
	// ErrFormatMismatch is returned when a frame cannot be converted into the
	// destination's pixel format.
	ErrFormatMismatch = errors.New("pixel: unsupported format combination")
	// ErrLengthMismatch is returned when a buffer's byte length does not
	// match its declared dimensions.
	ErrLengthMismatch = errors.New("pixel: buffer length mismatch")
)

// Format is the memory layout of one pixel.
type Format uint8

const (
	RGB8 Format = iota + 1
	RGBA8
)

// Channels returns the number of bytes per pixel, or 0 for an unknown format.
func (f Format) Channels() int {
	switch f {
	case RGB8:
		return 3
	case RGBA8:
		return 4
	}
	return 0
}

func (f Format) String() string {
	switch f {
	case RGB8:
		return "RGB8"
	case RGBA8:
		return "RGBA8"
	}
	return fmt.Sprintf("Format(%d)", uint8(f))
}

// Buffer is one captured frame. Data holds Width*Height*Format.Channels()
// bytes, rows top to bottom with no padding.
type Buffer struct {
	Width  int
	Height int
	Format Format
	Data   []byte
}

// NewBuffer allocates a zeroed buffer.
func NewBuffer(width, height int, format Format) *Buffer {
	return &Buffer{
		Width:  width,
		Height: height,
		Format: format,
		Data:   make([]byte, width*height*format.Channels()),
	}
}

// Validate reports whether Data matches the declared dimensions.
func (b *Buffer) Validate() error {
	if b.Format.Channels() == 0 {
		return fmt.Errorf("%w: %s", ErrFormatMismatch, b.Format)
	}
	if want := b.Width * b.Height * b.Format.Channels(); len(b.Data) != want {
		return fmt.Errorf("%w: %dx%d %s wants %d bytes, has %d",
			ErrLengthMismatch, b.Width, b.Height, b.Format, want, len(b.Data))
	}
	return nil
}

// Fill paints every pixel with the given color. The alpha byte is ignored
// for RGB8 buffers.
func (b *Buffer) Fill(r, g, bl, a uint8) {
	ch := b.Format.Channels()
	if ch == 0 || len(b.Data) < ch {
		return
	}
	px := [4]byte{r, g, bl, a}
	copy(b.Data[:ch], px[:ch])
	// Doubling copy: each pass copies everything already painted.
	for n := ch; n < len(b.Data); n *= 2 {
		copy(b.Data[n:], b.Data[:n])
	}
}

// At returns the pixel at (x, y) widened to RGBA.
func (b *Buffer) At(x, y int) (r, g, bl, a uint8) {
	ch := b.Format.Channels()
	off := (y*b.Width + x) * ch
	if ch == 0 || x < 0 || y < 0 || x >= b.Width || y >= b.Height || off+ch > len(b.Data) {
		return 0, 0, 0, 0
	}
	if ch == 3 {
		return b.Data[off], b.Data[off+1], b.Data[off+2], 255
	}
	return b.Data[off], b.Data[off+1], b.Data[off+2], b.Data[off+3]
}
