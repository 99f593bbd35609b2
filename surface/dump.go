// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"fmt"
	"image"
	"io"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/tiff"
)

// DumpTIFF writes the first layer of buf, as last requested, to w as a
// TIFF image. Texels are read from guest memory, so the dump shows what
// the guest stored rather than what the host rendered. Only formats held
// as 8-bit RGBA on the host can be dumped.
func (c *Cache) DumpTIFF(w io.Writer, buf *Buffer) error {
	if c.closed {
		return ErrClosed
	}
	switch buf.HostFormat {
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatRGBA8UnormSrgb:
	default:
		return fmt.Errorf("%w: %v", ErrDumpFormat, buf.HostFormat)
	}
	s := c.pool.get(buf.active)
	if s == nil {
		return fmt.Errorf("%w: buffer has no surface", ErrDumpFormat)
	}

	req := buf.last
	_, swizzle := normalize(req.BaseAddress, req.TileMode)
	lin := c.linearize(buf, s, &req, swizzle)

	img := image.NewNRGBA(image.Rect(0, 0, int(req.Width), int(s.Extent.Height)))
	for y := 0; y < img.Rect.Dy(); y++ {
		row := lin.data[y*int(lin.rowBytes):]
		copy(img.Pix[y*img.Stride:(y+1)*img.Stride], row)
	}
	return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
}
