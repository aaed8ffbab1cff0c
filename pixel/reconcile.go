// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package pixel

import (
	"fmt"
	"image"
)

// Image is a mutable destination owned by the host, typically the CPU side
// of a GPU texture.
type Image struct {
	Width  int
	Height int
	Format Format
	Pix    []byte
}

// NewImage allocates an RGBA8 destination sized to src and copies src into
// it through the conversion path.
func NewImage(src *Buffer) (*Image, error) {
	dst := &Image{
		Width:  src.Width,
		Height: src.Height,
		Format: RGBA8,
		Pix:    make([]byte, src.Width*src.Height*4),
	}
	if _, err := Reconcile(dst, src); err != nil {
		return nil, err
	}
	return dst, nil
}

// Reconcile copies src into dst without reallocating. It returns false when
// the dimensions differ; the caller must then allocate a new destination
// (see NewImage). On error dst is left unmodified.
func Reconcile(dst *Image, src *Buffer) (bool, error) {
	if dst.Width != src.Width || dst.Height != src.Height {
		return false, nil
	}
	switch {
	case src.Format == RGBA8 && dst.Format == RGBA8:
		if len(src.Data) != len(dst.Pix) {
			return true, fmt.Errorf("%w: source %d bytes, destination %d bytes",
				ErrLengthMismatch, len(src.Data), len(dst.Pix))
		}
		copy(dst.Pix, src.Data)
	case src.Format == RGB8 && dst.Format == RGBA8:
		n := src.Width * src.Height
		if len(src.Data) != n*3 || len(dst.Pix) != n*4 {
			return true, fmt.Errorf("%w: %d RGB bytes into %d RGBA bytes",
				ErrLengthMismatch, len(src.Data), len(dst.Pix))
		}
		WidenRGB(dst.Pix, src.Data)
	default:
		return true, fmt.Errorf("%w: %s into %s", ErrFormatMismatch, src.Format, dst.Format)
	}
	return true, nil
}

// WidenRGB expands packed RGB triplets in src into opaque RGBA quads in dst.
func WidenRGB(dst, src []byte) {
	d := 0
	for s := 0; s+2 < len(src) && d+3 < len(dst); s += 3 {
		dst[d+0] = src[s+0]
		dst[d+1] = src[s+1]
		dst[d+2] = src[s+2]
		dst[d+3] = 255
		d += 4
	}
}

// CopyBGRA converts a BGRA surface with the given row stride into a tightly
// packed RGBA slice of width*height*4 bytes.
func CopyBGRA(dst, src []byte, width, height, rowBytes int) error {
	if len(dst) < width*height*4 || len(src) < rowBytes*(height-1)+width*4 {
		return fmt.Errorf("%w: BGRA %dx%d stride %d", ErrLengthMismatch, width, height, rowBytes)
	}
	dstIdx := 0
	for y := 0; y < height; y++ {
		srcRowStart := y * rowBytes
		for x := 0; x < width; x++ {
			srcOff := srcRowStart + x*4
			dst[dstIdx+0] = src[srcOff+2] // BGRA -> RGBA
			dst[dstIdx+1] = src[srcOff+1]
			dst[dstIdx+2] = src[srcOff+0]
			dst[dstIdx+3] = src[srcOff+3]
			dstIdx += 4
		}
	}
	return nil
}

// NRGBA wraps the image's pixels, without copying, as a standard library
// image for encoding.
func (im *Image) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    im.Pix,
		Stride: im.Width * 4,
		Rect:   image.Rect(0, 0, im.Width, im.Height),
	}
}
