// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package pixel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatChannels(t *testing.T) {
	assert.Equal(t, 3, RGB8.Channels())
	assert.Equal(t, 4, RGBA8.Channels())
	assert.Equal(t, 0, Format(0).Channels())
	assert.Equal(t, "RGBA8", RGBA8.String())
}

func TestBufferValidate(t *testing.T) {
	b := NewBuffer(4, 3, RGB8)
	require.NoError(t, b.Validate())
	assert.Len(t, b.Data, 36)

	b.Data = b.Data[:35]
	require.ErrorIs(t, b.Validate(), ErrLengthMismatch)

	bad := &Buffer{Width: 1, Height: 1}
	require.ErrorIs(t, bad.Validate(), ErrFormatMismatch)
}

func TestBufferFill(t *testing.T) {
	b := NewBuffer(7, 5, RGBA8)
	b.Fill(255, 10, 20, 200)
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			r, g, bl, a := b.At(x, y)
			require.Equal(t, [4]uint8{255, 10, 20, 200}, [4]uint8{r, g, bl, a}, "pixel %d,%d", x, y)
		}
	}

	rgb := NewBuffer(3, 3, RGB8)
	rgb.Fill(1, 2, 3, 0)
	r, g, bl, a := rgb.At(2, 2)
	assert.Equal(t, [4]uint8{1, 2, 3, 255}, [4]uint8{r, g, bl, a})
}

func TestReconcileRGBAExact(t *testing.T) {
	src := NewBuffer(2, 2, RGBA8)
	for i := range src.Data {
		src.Data[i] = byte(i * 7)
	}
	dst := &Image{Width: 2, Height: 2, Format: RGBA8, Pix: make([]byte, 16)}

	ok, err := Reconcile(dst, src)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, src.Data, dst.Pix)
}

func TestReconcileRGBWidensOpaque(t *testing.T) {
	src := &Buffer{Width: 2, Height: 1, Format: RGB8, Data: []byte{10, 20, 30, 40, 50, 60}}
	dst := &Image{Width: 2, Height: 1, Format: RGBA8, Pix: make([]byte, 8)}

	ok, err := Reconcile(dst, src)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte{10, 20, 30, 255, 40, 50, 60, 255}, dst.Pix)

	// Same source twice gives the same result.
	ok, err = Reconcile(dst, src)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte{10, 20, 30, 255, 40, 50, 60, 255}, dst.Pix)
}

func TestReconcileSizeChangeNeedsReallocation(t *testing.T) {
	cases := []struct {
		name string
		w, h int
		want bool
	}{
		{"same", 4, 4, true},
		{"wider", 5, 4, false},
		{"taller", 4, 5, false},
		{"smaller", 2, 2, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dst := &Image{Width: 4, Height: 4, Format: RGBA8, Pix: make([]byte, 64)}
			ok, err := Reconcile(dst, NewBuffer(tc.w, tc.h, RGBA8))
			require.NoError(t, err)
			assert.Equal(t, tc.want, ok)
		})
	}
}

func TestReconcileErrorsLeaveDestination(t *testing.T) {
	orig := []byte{9, 9, 9, 9}

	dst := &Image{Width: 1, Height: 1, Format: RGBA8, Pix: append([]byte(nil), orig...)}
	short := &Buffer{Width: 1, Height: 1, Format: RGBA8, Data: []byte{1, 2, 3}}
	_, err := Reconcile(dst, short)
	require.ErrorIs(t, err, ErrLengthMismatch)
	assert.Equal(t, orig, dst.Pix)

	rgbDst := &Image{Width: 1, Height: 1, Format: RGB8, Pix: []byte{9, 9, 9}}
	_, err = Reconcile(rgbDst, NewBuffer(1, 1, RGBA8))
	require.ErrorIs(t, err, ErrFormatMismatch)
	assert.Equal(t, []byte{9, 9, 9}, rgbDst.Pix)
}

func TestNewImageConverts(t *testing.T) {
	src := &Buffer{Width: 1, Height: 2, Format: RGB8, Data: []byte{1, 2, 3, 4, 5, 6}}
	img, err := NewImage(src)
	require.NoError(t, err)
	assert.Equal(t, RGBA8, img.Format)
	assert.Equal(t, []byte{1, 2, 3, 255, 4, 5, 6, 255}, img.Pix)
}

func TestCopyBGRAHonoursStride(t *testing.T) {
	// 2x2 surface with 4 bytes of row padding.
	src := []byte{
		1, 2, 3, 4, 5, 6, 7, 8, 0, 0, 0, 0,
		9, 10, 11, 12, 13, 14, 15, 16, 0, 0, 0, 0,
	}
	dst := make([]byte, 16)
	require.NoError(t, CopyBGRA(dst, src, 2, 2, 12))
	assert.Equal(t, []byte{3, 2, 1, 4, 7, 6, 5, 8, 11, 10, 9, 12, 15, 14, 13, 16}, dst)

	require.ErrorIs(t, CopyBGRA(make([]byte, 4), src, 2, 2, 12), ErrLengthMismatch)
}

func TestImageNRGBASharesPixels(t *testing.T) {
	src := NewBuffer(3, 2, RGB8)
	src.Fill(10, 20, 30, 0)
	img, err := NewImage(src)
	require.NoError(t, err)

	n := img.NRGBA()
	assert.Equal(t, 3, n.Bounds().Dx())
	assert.Equal(t, 2, n.Bounds().Dy())
	c := n.NRGBAAt(2, 1)
	assert.Equal(t, [4]uint8{10, 20, 30, 255}, [4]uint8{c.R, c.G, c.B, c.A})

	n.Pix[0] = 99
	assert.Equal(t, uint8(99), img.Pix[0])
}
