// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"github.com/gogpu/latte/format"
	"github.com/gogpu/latte/tiling"
)

// Key is the weak identity of a guest surface. Distinct requests can
// collide; Buffer.matches resolves collisions within a bucket.
type Key uint64

// KeyOf derives the key of a surface at the aligned address.
func KeyOf(aligned uint32, d format.Descriptor, dim Dim, pitch, height uint32) Key {
	k := uint64(aligned) << 32
	k ^= uint64(d.Format) << 22
	k ^= uint64(d.NumFormat) << 28
	k ^= uint64(d.Comp) << 30
	if d.Degamma {
		k ^= 1 << 31
	}
	switch dim {
	case Dim2D, Dim1DArray:
		k ^= uint64(pitch)
	case Dim2DArray, DimCubemap, Dim3D:
		k ^= uint64(pitch) ^ uint64(height)<<16
	}
	return Key(k)
}

// normalize returns the aligned base address and the swizzle bits.
func normalize(base uint32, mode tiling.TileMode) (aligned, swizzle uint32) {
	align := tiling.Alignment(mode)
	return base &^ (align - 1), base & (align - 1)
}
