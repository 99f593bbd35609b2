// Package tiling converts between the guest GPU's tiled memory layouts and
// linear layouts.
//
// The guest stores surfaces in one of sixteen array modes. Linear modes
// are row-major. 1D modes group texels into 8x8 micro tiles (8x8x4 for
// thick modes) laid out row-major. 2D and 3D modes additionally group
// micro tiles into macro tiles that are interleaved across 2 pipes and
// 4 banks in 256-byte groups; the low address bits discarded when a
// surface is aligned carry the pipe and bank swizzle.
//
// All functions are pure. Reads outside src yield zero texels and writes
// outside dst are dropped.
package tiling

import "fmt"

// TileMode is the guest ARRAY_MODE field.
type TileMode uint32

const (
	LinearGeneral TileMode = 0
	LinearAligned TileMode = 1
	Tiled1DThin1  TileMode = 2
	Tiled1DThick  TileMode = 3
	Tiled2DThin1  TileMode = 4
	Tiled2DThin2  TileMode = 5
	Tiled2DThin4  TileMode = 6
	Tiled2DThick  TileMode = 7
	Tiled2BThin1  TileMode = 8
	Tiled2BThin2  TileMode = 9
	Tiled2BThin4  TileMode = 10
	Tiled2BThick  TileMode = 11
	Tiled3DThin1  TileMode = 12
	Tiled3DThick  TileMode = 13
	Tiled3BThin1  TileMode = 14
	Tiled3BThick  TileMode = 15
)

var modeNames = [...]string{
	"LinearGeneral", "LinearAligned", "1DThin1", "1DThick",
	"2DThin1", "2DThin2", "2DThin4", "2DThick",
	"2BThin1", "2BThin2", "2BThin4", "2BThick",
	"3DThin1", "3DThick", "3BThin1", "3BThick",
}

func (m TileMode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Unknown(%d)", uint32(m))
}

// Valid reports whether m is a defined array mode.
func (m TileMode) Valid() bool { return m <= Tiled3BThick }

// IsLinear reports whether m stores texels row-major.
func (m TileMode) IsLinear() bool { return m <= LinearAligned }

// IsMacroTiled reports whether m is at or above the thin 2D threshold.
// Surfaces in these modes are aligned to MacroAlignment.
func (m TileMode) IsMacroTiled() bool { return m >= Tiled2DThin1 }

// Thickness returns the number of slices held by one micro tile.
func (m TileMode) Thickness() uint32 {
	switch m {
	case Tiled1DThick, Tiled2DThick, Tiled2BThick, Tiled3DThick, Tiled3BThick:
		return 4
	default:
		return 1
	}
}

func (m TileMode) rotatesBanks() bool { return m >= Tiled3DThin1 }

// macroTileSize returns the macro tile extent in texels.
func (m TileMode) macroTileSize() (width, height uint32) {
	switch m {
	case Tiled2DThin2, Tiled2BThin2:
		return MicroTileWidth * NumBanks / 2, MicroTileHeight * NumPipes * 2
	case Tiled2DThin4, Tiled2BThin4:
		return MicroTileWidth * NumBanks / 4, MicroTileHeight * NumPipes * 4
	default:
		return MicroTileWidth * NumBanks, MicroTileHeight * NumPipes
	}
}

// Memory configuration of the guest GPU.
const (
	NumPipes            = 2
	NumBanks            = 4
	PipeInterleaveBytes = 256
	MicroTileWidth      = 8
	MicroTileHeight     = 8

	// MacroAlignment is the base address alignment of macro-tiled
	// surfaces; MicroAlignment applies to every other mode.
	MacroAlignment = 0x800
	MicroAlignment = 0x100

	pipeBits  = 1
	bankBits  = 2
	groupBits = 8
	groupMask = PipeInterleaveBytes - 1
)

// Alignment returns the base address alignment of surfaces in mode m.
func Alignment(m TileMode) uint32 {
	if m.IsMacroTiled() {
		return MacroAlignment
	}
	return MicroAlignment
}

// layout holds the addressing parameters of one guest surface.
type layout struct {
	mode      TileMode
	bpp       uint32 // bits per element
	pitch     uint32 // elements, aligned to the tile width
	height    uint32 // rows, aligned to the tile height
	thickness uint32
	isDepth   bool

	macroW, macroH uint32
	pipeSwizzle    uint32
	bankSwizzle    uint32
}

func newLayout(mode TileMode, swizzle, pitch, height uint32, isDepth bool, bpp uint32) layout {
	l := layout{
		mode:        mode,
		bpp:         bpp,
		pitch:       pitch,
		height:      height,
		thickness:   mode.Thickness(),
		isDepth:     isDepth,
		pipeSwizzle: swizzle >> groupBits & (NumPipes - 1),
		bankSwizzle: swizzle >> (groupBits + pipeBits) & (NumBanks - 1),
	}
	switch {
	case mode.IsMacroTiled():
		l.macroW, l.macroH = mode.macroTileSize()
		l.pitch = alignUp(pitch, l.macroW)
		l.height = alignUp(height, l.macroH)
	case !mode.IsLinear():
		l.pitch = alignUp(pitch, MicroTileWidth)
		l.height = alignUp(height, MicroTileHeight)
	}
	return l
}

func alignUp(v, a uint32) uint32 { return (v + a - 1) / a * a }

// offset returns the byte offset of element (x, y, z) from the aligned
// surface base.
func (l *layout) offset(x, y, z uint32) uint64 {
	bytes := uint64(l.bpp / 8)
	switch {
	case l.mode.IsLinear():
		return ((uint64(z)*uint64(l.height)+uint64(y))*uint64(l.pitch) + uint64(x)) * bytes
	case l.mode.IsMacroTiled():
		return l.macroOffset(x, y, z)
	default:
		return l.microOffset(x, y, z)
	}
}

func (l *layout) sliceBytes() uint64 {
	return uint64(l.pitch) * uint64(l.height) * uint64(l.thickness) * uint64(l.bpp) / 8
}

func (l *layout) microTileBytes() uint64 {
	return uint64(MicroTileWidth*MicroTileHeight) * uint64(l.thickness) * uint64(l.bpp) / 8
}

func (l *layout) microOffset(x, y, z uint32) uint64 {
	tilesPerRow := uint64(l.pitch / MicroTileWidth)
	tile := uint64(y/MicroTileHeight)*tilesPerRow + uint64(x/MicroTileWidth)
	elem := uint64(l.pixelIndex(x, y, z)) * uint64(l.bpp) / 8
	return uint64(z/l.thickness)*l.sliceBytes() + tile*l.microTileBytes() + elem
}

func (l *layout) macroOffset(x, y, z uint32) uint64 {
	elem := uint64(l.pixelIndex(x, y, z)) * uint64(l.bpp) / 8

	macroTileBytes := uint64(l.macroW) * uint64(l.macroH) * uint64(l.thickness) * uint64(l.bpp) / 8
	tilesPerRow := uint64(l.pitch / l.macroW)
	macroTile := (uint64(y/l.macroH)*tilesPerRow + uint64(x/l.macroW)) * macroTileBytes

	slice := z / l.thickness
	sliceOff := uint64(slice) * l.sliceBytes()

	total := elem + (macroTile+sliceOff)>>(pipeBits+bankBits)

	pipe := (x>>3^y>>3)&1 ^ l.pipeSwizzle
	bank := ((x>>3 ^ y>>5) & 1) | ((x>>4^y>>4)&1)<<1
	if l.mode.rotatesBanks() {
		bank += slice
	}
	bank = (bank ^ l.bankSwizzle) & (NumBanks - 1)

	return (total&^groupMask)<<(pipeBits+bankBits) |
		uint64(bank)<<(groupBits+pipeBits) |
		uint64(pipe)<<groupBits |
		total&groupMask
}

// pixelIndex returns the position of (x, y, z) inside its micro tile.
// Depth surfaces use the depth sample order; color surfaces use the
// displayable order for their element size.
func (l *layout) pixelIndex(x, y, z uint32) uint32 {
	x0, x1, x2 := x&1, x>>1&1, x>>2&1
	y0, y1, y2 := y&1, y>>1&1, y>>2&1

	var idx uint32
	switch {
	case l.isDepth:
		idx = x0 | y0<<1 | x1<<2 | y1<<3 | x2<<4 | y2<<5
	case l.bpp <= 8:
		idx = x0 | x1<<1 | x2<<2 | y1<<3 | y0<<4 | y2<<5
	case l.bpp <= 16:
		idx = x0 | x1<<1 | x2<<2 | y0<<3 | y1<<4 | y2<<5
	case l.bpp <= 32:
		idx = x0 | x1<<1 | y0<<2 | x2<<3 | y1<<4 | y2<<5
	case l.bpp <= 64:
		idx = x0 | y0<<1 | x1<<2 | x2<<3 | y1<<4 | y2<<5
	default:
		idx = y0 | x0<<1 | x1<<2 | x2<<3 | y1<<4 | y2<<5
	}
	if l.thickness > 1 {
		idx |= (z&1)<<6 | (z>>1&1)<<7
	}
	return idx
}

// walk calls fn for every element of the width x height x depth region
// starting at slice sliceOffset, with the guest byte offset and the
// linear byte offset of that element.
func walk(l *layout, linearPitch, width, height, depth, sliceOffset uint32, fn func(guest, linear uint64)) {
	bytes := uint64(l.bpp / 8)
	for z := range depth {
		for y := range height {
			row := (uint64(z)*uint64(height) + uint64(y)) * uint64(linearPitch)
			for x := range width {
				fn(l.offset(x, y, z+sliceOffset), (row+uint64(x))*bytes)
			}
		}
	}
}

// Untile converts a tiled guest surface in src into a linear image in
// dst. Pitches and extents are in elements (4x4 blocks for compressed
// formats). src starts at the aligned surface base; swizzle is the
// base address bits discarded by alignment. dst receives depth slices of
// height rows of dstPitch elements, starting at guest slice sliceOffset.
func Untile(dst []byte, dstPitch uint32, src []byte, mode TileMode, swizzle, srcPitch, width, height, depth, sliceOffset uint32, isDepth bool, bitsPerElement uint32) {
	if bitsPerElement < 8 || !mode.Valid() {
		return
	}
	l := newLayout(mode, swizzle, srcPitch, height, isDepth, bitsPerElement)
	n := uint64(bitsPerElement / 8)
	walk(&l, dstPitch, width, height, depth, sliceOffset, func(guest, linear uint64) {
		if linear+n > uint64(len(dst)) {
			return
		}
		d := dst[linear : linear+n]
		if guest+n > uint64(len(src)) {
			clear(d)
			return
		}
		copy(d, src[guest:guest+n])
	})
}

// Tile is the inverse of Untile: it writes the linear image in src into
// the tiled guest surface dst.
func Tile(dst []byte, src []byte, srcPitch uint32, mode TileMode, swizzle, dstPitch, width, height, depth, sliceOffset uint32, isDepth bool, bitsPerElement uint32) {
	if bitsPerElement < 8 || !mode.Valid() {
		return
	}
	l := newLayout(mode, swizzle, dstPitch, height, isDepth, bitsPerElement)
	n := uint64(bitsPerElement / 8)
	walk(&l, srcPitch, width, height, depth, sliceOffset, func(guest, linear uint64) {
		if guest+n > uint64(len(dst)) || linear+n > uint64(len(src)) {
			return
		}
		copy(dst[guest:guest+n], src[linear:linear+n])
	})
}

// SurfaceBytes returns the guest byte size of a surface with the given
// geometry, including tile padding.
func SurfaceBytes(mode TileMode, pitch, height, depth uint32, bitsPerElement uint32) uint64 {
	l := newLayout(mode, 0, pitch, height, false, bitsPerElement)
	slices := uint64(alignUp(depth, l.thickness) / l.thickness)
	size := l.sliceBytes() * slices
	if mode.IsMacroTiled() {
		// Pipe and bank bits sit above the group offset, so the last
		// partial group row still spans a full interleave.
		const interleave = PipeInterleaveBytes * NumPipes * NumBanks
		size = (size + interleave - 1) / interleave * interleave
	}
	return size
}
