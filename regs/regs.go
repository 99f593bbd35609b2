// Package regs models the guest GPU register file.
//
// Registers are addressed by byte offset. Typed views wrap a raw 32-bit
// value and expose its bitfields; Get reads a register directly into a
// view:
//
//	cntl := regs.Get[regs.PaClClipCntl](f, regs.PA_CL_CLIP_CNTL)
//	if cntl.RasteriserDisable() { ... }
package regs

import "fmt"

// Register is the byte offset of a guest register.
type Register uint32

// Size is the byte size of the register space.
const Size = 0x40000

// Hardware limits of the shader stages.
const (
	MaxSamplers         = 16
	MaxTextures         = 16
	MaxUniformBlocks    = 16
	MaxRenderTargets    = 8
	MaxStreamOutBuffers = 4
	MaxAttribBuffers    = 16
	NumAluConstants     = 256
)

// File holds the current value of every register. The zero value has all
// registers cleared.
type File struct {
	words [Size / 4]uint32
}

// Read returns the raw value of r. Offsets outside the register space
// read as zero.
func (f *File) Read(r Register) uint32 {
	i := uint32(r) / 4
	if i >= uint32(len(f.words)) {
		return 0
	}
	return f.words[i]
}

// Write sets the raw value of r. Writes outside the register space are
// ignored.
func (f *File) Write(r Register, v uint32) {
	i := uint32(r) / 4
	if i < uint32(len(f.words)) {
		f.words[i] = v
	}
}

// Words returns n consecutive raw register values starting at r.
func (f *File) Words(r Register, n int) []uint32 {
	i := int(uint32(r) / 4)
	if i >= len(f.words) {
		return nil
	}
	return f.words[i:min(i+n, len(f.words))]
}

// Get reads r as the typed view T.
func Get[T ~uint32](f *File, r Register) T {
	return T(f.Read(r))
}

// Set writes the typed view v to r.
func Set[T ~uint32](f *File, r Register, v T) {
	f.Write(r, uint32(v))
}

// Stage is a programmable shader stage. Its value is also the index of
// the stage's descriptor bind group.
type Stage uint8

const (
	StageVertex Stage = iota
	StageGeometry
	StagePixel

	NumStages = 3
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageGeometry:
		return "geometry"
	case StagePixel:
		return "pixel"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(s))
	}
}

func field(v, shift, width uint32) uint32 {
	return v >> shift & (1<<width - 1)
}

func bit(v, shift uint32) bool {
	return v>>shift&1 != 0
}
