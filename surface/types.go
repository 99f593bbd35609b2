// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/latte/format"
	"github.com/gogpu/latte/tiling"
)

// MaxExtent is the largest width, height or depth of a surface.
const MaxExtent = 8192

// Dim is the dimension kind of a surface. Values match the guest
// SQ_TEX_DIM encoding.
type Dim uint32

const (
	Dim1D        Dim = 0
	Dim2D        Dim = 1
	Dim3D        Dim = 2
	DimCubemap   Dim = 3
	Dim1DArray   Dim = 4
	Dim2DArray   Dim = 5
	Dim2DMSAA    Dim = 6
	Dim2DArrMSAA Dim = 7
)

func (d Dim) String() string {
	switch d {
	case Dim1D:
		return "1D"
	case Dim2D:
		return "2D"
	case Dim3D:
		return "3D"
	case DimCubemap:
		return "Cubemap"
	case Dim1DArray:
		return "1DArray"
	case Dim2DArray:
		return "2DArray"
	case Dim2DMSAA:
		return "2DMSAA"
	case Dim2DArrMSAA:
		return "2DArrayMSAA"
	default:
		return fmt.Sprintf("Unknown(%d)", uint32(d))
	}
}

// Supported reports whether the cache can hold surfaces of kind d.
func (d Dim) Supported() bool { return d <= Dim2DArray }

// volumetric reports whether height contributes to the surface identity.
func (d Dim) volumetric() bool {
	return d == Dim2DArray || d == DimCubemap || d == Dim3D
}

// Request describes one use of a guest surface.
type Request struct {
	BaseAddress uint32
	Pitch       uint32 // elements per row in guest memory
	Width       uint32
	Height      uint32
	Depth       uint32
	Dim         Dim
	Format      format.Descriptor
	IsDepth     bool
	TileMode    tiling.TileMode
	ForWrite    bool
}

func (r *Request) validate() error {
	if r.BaseAddress == 0 {
		return fmt.Errorf("%w: zero base address", ErrInvalidRequest)
	}
	for _, v := range []uint32{r.Width, r.Height, r.Depth} {
		if v < 1 || v > MaxExtent {
			return fmt.Errorf("%w: extent %dx%dx%d", ErrInvalidRequest, r.Width, r.Height, r.Depth)
		}
	}
	if !r.Dim.Supported() {
		return fmt.Errorf("%w: %v", ErrUnsupportedDimension, r.Dim)
	}
	if !r.TileMode.Valid() {
		return fmt.Errorf("%w: tile mode %v", ErrInvalidRequest, r.TileMode)
	}
	return nil
}

// Hash128 is a 128-bit content hash of guest memory.
type Hash128 struct {
	Lo, Hi uint64
}

// Handle addresses a Surface in the cache pool. The zero Handle is
// invalid; handles of destroyed surfaces go stale.
type Handle struct {
	index uint32
	gen   uint32
}

// Valid reports whether h was ever assigned.
func (h Handle) Valid() bool { return h.gen != 0 }

// Buffer is the cache entry for one guest surface identity.
//
// Exported fields are read-only for callers.
type Buffer struct {
	Key     Key
	Address uint32 // aligned base address
	Format  format.Descriptor
	Dim     Dim
	Pitch   uint32
	Height  uint32 // identity height; only meaningful for volumetric kinds
	IsDepth bool

	// HostFormat is the storage format of every surface in the chain.
	HostFormat gputypes.TextureFormat

	// MemStart and MemEnd bound the guest memory the buffer covers.
	// MemEnd only grows.
	MemStart, MemEnd uint32

	// Hash is the content hash of the last uploaded extent.
	Hash   Hash128
	hashed bool

	// Dirty marks guest memory as possibly changed since the last upload.
	Dirty bool

	master, active Handle
	gpuWritten     bool
	lastUsed       uint64
	last           Request // most recent request, for dumps
}

// Master returns the head of the surface chain.
func (b *Buffer) Master() Handle { return b.master }

// Active returns the surface most recently resolved.
func (b *Buffer) Active() Handle { return b.active }

// matches is the exact identity check that backs the weak Key.
func (b *Buffer) matches(aligned uint32, r *Request) bool {
	if b.Address != aligned || b.Format != r.Format || b.IsDepth != r.IsDepth || b.Dim != r.Dim {
		return false
	}
	if b.Dim == Dim1D {
		return true
	}
	if b.Pitch != r.Pitch {
		return false
	}
	return !b.Dim.volumetric() || b.Height == r.Height
}

// Surface is one host texture in a buffer's chain.
type Surface struct {
	Texture hal.Texture
	View    hal.TextureView

	// Logical extent as requested by the guest.
	Width, Height, Depth uint32

	// Extent is the host texture size (layers for arrays and cubemaps).
	Extent hal.Extent3D

	// ViewDimension is the dimension of View.
	ViewDimension gputypes.TextureViewDimension

	handle   Handle
	next     Handle
	lastUsed uint64
}

// Handle returns the pool handle of s.
func (s *Surface) Handle() Handle { return s.handle }

// Next returns the following surface in the chain.
func (s *Surface) Next() Handle { return s.next }

func (s *Surface) matches(w, h, d uint32) bool {
	return s.Width == w && s.Height == h && s.Depth == d
}

// Stats counts cache activity since creation.
type Stats struct {
	Buffers     int
	Surfaces    int
	Allocations uint64
	Uploads     uint64
	HashHits    uint64
	Copies      uint64
	Evictions   uint64
	Skipped     uint64 // uploads skipped for non-copyable formats
}
