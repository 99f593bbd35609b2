// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"bytes"
	"errors"
	"image/color"
	"testing"

	"golang.org/x/image/tiff"

	"github.com/gogpu/latte/format"
)

func TestDumpTIFF(t *testing.T) {
	f := newFixture(t, Config{})
	guest := f.pattern(0x1000, 16*8*4, 9)
	buf, _ := f.resolve(t, linearRequest(0x1000, 16, 12, 8))

	var out bytes.Buffer
	if err := f.cache.DumpTIFF(&out, buf); err != nil {
		t.Fatalf("DumpTIFF() error = %v", err)
	}
	img, err := tiff.Decode(&out)
	if err != nil {
		t.Fatalf("tiff.Decode() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 12 || b.Dy() != 8 {
		t.Fatalf("bounds = %v, want 12x8", b)
	}
	for _, p := range [][2]int{{0, 0}, {11, 7}, {5, 3}} {
		off := (p[1]*16 + p[0]) * 4
		want := color.NRGBA{guest[off], guest[off+1], guest[off+2], guest[off+3]}
		if got := color.NRGBAModel.Convert(img.At(p[0], p[1])); got != want {
			t.Errorf("pixel %v = %v, want %v", p, got, want)
		}
	}
}

func TestDumpTIFFUnsupportedFormat(t *testing.T) {
	f := newFixture(t, Config{})
	req := linearRequest(0x1000, 16, 16, 16)
	req.Format = format.Descriptor{Format: format.Fmt8}
	buf, _ := f.resolve(t, req)

	var out bytes.Buffer
	if err := f.cache.DumpTIFF(&out, buf); !errors.Is(err, ErrDumpFormat) {
		t.Errorf("DumpTIFF() error = %v, want %v", err, ErrDumpFormat)
	}
	if out.Len() != 0 {
		t.Errorf("DumpTIFF wrote %d bytes on error", out.Len())
	}
}
