package format

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
)

// Sentinel errors for format mapping.
var (
	// ErrUnsupported is returned when a descriptor has no entry in the
	// mapping tables. It marks an emulation coverage gap and is fatal.
	ErrUnsupported = errors.New("format: unsupported format")

	// ErrTable is returned by Validate when the tables are inconsistent.
	ErrTable = errors.New("format: inconsistent format table")
)

// Error describes a descriptor the tables cannot map.
type Error struct {
	Op         string
	Descriptor Descriptor
	IsDepth    bool
}

func (e *Error) Error() string {
	return fmt.Sprintf("format: %s: unsupported %v (depth=%t)", e.Op, e.Descriptor, e.IsDepth)
}

// Unwrap returns ErrUnsupported.
func (e *Error) Unwrap() error { return ErrUnsupported }

// BitsPerElement returns the bit size of one element of f. For
// block-compressed formats this is the size of a 4x4 block.
func BitsPerElement(f DataFormat) uint32 {
	return bitsPerElement[f]
}

// IsCompressed reports whether f is a BC block-compressed format.
func IsCompressed(f DataFormat) bool {
	_, ok := compressed[f]
	return ok
}

// BlockBytes returns the byte size of one 4x4 block of a compressed
// format, or 0.
func BlockBytes(f DataFormat) uint32 {
	return compressed[f].blockBytes
}

// HostTexelBytes returns the byte size of one texel (one block for BC
// formats) of a host format produced by MapStorage, or 0.
func HostTexelBytes(f gputypes.TextureFormat) uint32 {
	return hostTexelBytes[f]
}

// IsHostCompressed reports whether a host format is block-compressed.
func IsHostCompressed(f gputypes.TextureFormat) bool {
	return f >= gputypes.TextureFormatBC1RGBAUnorm && f <= gputypes.TextureFormatBC7RGBAUnormSrgb
}

// MapTransfer returns the channel layout and element type of guest texels
// of format f. Element signedness follows comp.
func MapTransfer(f DataFormat, comp FormatComp) (Transfer, error) {
	if IsCompressed(f) {
		return Transfer{Layout: LayoutNone, Elem: ElemBlock}, nil
	}
	e, ok := table[f]
	if !ok {
		return Transfer{}, &Error{Op: "transfer", Descriptor: Descriptor{Format: f, Comp: comp}}
	}
	t := e.transfer
	if comp == CompSigned {
		t.Elem = signed(t.Elem)
	}
	return t, nil
}

func signed(e ElementType) ElementType {
	switch e {
	case ElemU8:
		return ElemS8
	case ElemU16:
		return ElemS16
	case ElemU32:
		return ElemS32
	default:
		return e
	}
}

// MapStorage returns the host storage format for a descriptor. Depth
// buffers select depth/stencil formats. Combinations absent from the
// tables return an *Error wrapping ErrUnsupported.
func MapStorage(d Descriptor, isDepth bool) (gputypes.TextureFormat, error) {
	fail := func() (gputypes.TextureFormat, error) {
		return none, &Error{Op: "storage", Descriptor: d, IsDepth: isDepth}
	}

	if c, ok := compressed[d.Format]; ok {
		if isDepth {
			return fail()
		}
		f := pick(d, c.unorm, c.snorm, none, none, c.srgb, none)
		if f == none {
			return fail()
		}
		return f, nil
	}

	e, ok := table[d.Format]
	if !ok {
		return fail()
	}
	if isDepth {
		if e.depth == none {
			return fail()
		}
		return e.depth, nil
	}
	f := pick(d, e.unorm, e.snorm, e.uint, e.sint, e.srgb, e.float)
	if f == none {
		return fail()
	}
	return f, nil
}

// pick applies the number-format selection rules. Degamma is only valid
// for unsigned normalized data; scaled data is only valid unsigned.
func pick(d Descriptor, unorm, snorm, ui, si, srgb, float gputypes.TextureFormat) gputypes.TextureFormat {
	if d.Degamma {
		if d.NumFormat == NumFormatNorm && d.Comp == CompUnsigned {
			return srgb
		}
		return none
	}
	switch d.NumFormat {
	case NumFormatNorm:
		switch d.Comp {
		case CompUnsigned:
			return unorm
		case CompSigned:
			return snorm
		}
	case NumFormatInt:
		switch d.Comp {
		case CompUnsigned:
			return ui
		case CompSigned:
			return si
		}
	case NumFormatScaled:
		if d.Comp == CompUnsigned {
			return float
		}
	}
	return none
}

// ConversionFor returns the repacking needed to upload guest texels of f.
func ConversionFor(f DataFormat) Conversion {
	return table[f].conv
}

// Validate checks the format tables exhaustively: every value of the
// enumeration is either mapped or listed as unsupported, every mapped
// entry yields host formats of the expected texel size, and every
// reachable storage format has a known texel size.
func Validate() error {
	for _, f := range All() {
		_, mapped := table[f]
		_, comp := compressed[f]
		gap := unsupported[f]

		n := 0
		for _, b := range []bool{mapped, comp, gap} {
			if b {
				n++
			}
		}
		if n != 1 {
			return fmt.Errorf("%w: %v classified %d times", ErrTable, f, n)
		}
		if _, ok := bitsPerElement[f]; !ok {
			return fmt.Errorf("%w: %v has no element size", ErrTable, f)
		}
		if gap {
			continue
		}
		if err := validateEntry(f); err != nil {
			return err
		}
	}
	for f := range table {
		if _, ok := formatNames[f]; !ok {
			return fmt.Errorf("%w: table holds unknown format %d", ErrTable, uint32(f))
		}
	}
	return nil
}

func validateEntry(f DataFormat) error {
	bits := bitsPerElement[f]
	if bits == 0 {
		return fmt.Errorf("%w: %v has zero element size", ErrTable, f)
	}

	if c, ok := compressed[f]; ok {
		if c.blockBytes*8 != bits {
			return fmt.Errorf("%w: %v block size %d != %d bits", ErrTable, f, c.blockBytes, bits)
		}
		for _, h := range []gputypes.TextureFormat{c.unorm, c.snorm, c.srgb} {
			if h != none && hostTexelBytes[h] != c.blockBytes {
				return fmt.Errorf("%w: %v maps to %v with mismatched block size", ErrTable, f, h)
			}
		}
		return nil
	}

	e := table[f]
	formats := []gputypes.TextureFormat{e.unorm, e.snorm, e.uint, e.sint, e.srgb, e.float}
	found := false
	for _, h := range formats {
		if h == none {
			continue
		}
		found = true
		size, ok := hostTexelBytes[h]
		if !ok {
			return fmt.Errorf("%w: %v maps to %v with unknown texel size", ErrTable, f, h)
		}
		if want := expandedBytes(e, bits); size != want {
			return fmt.Errorf("%w: %v maps to %v (%d bytes), want %d bytes", ErrTable, f, h, size, want)
		}
	}
	if e.depth != none {
		found = true
		if _, ok := hostTexelBytes[e.depth]; !ok {
			return fmt.Errorf("%w: %v depth format %v has unknown texel size", ErrTable, f, e.depth)
		}
	}
	if !found {
		return fmt.Errorf("%w: %v has no storage format", ErrTable, f)
	}
	return nil
}

// expandedBytes is the host texel size an entry must produce after its
// conversion runs.
func expandedBytes(e entry, bits uint32) uint32 {
	switch e.conv {
	case ConvRGBToRGBA:
		return bits / 8 / 3 * 4
	case Conv565ToRGBA8, Conv1555ToRGBA8, Conv5551ToRGBA8, Conv4444ToRGBA8:
		return 4
	default:
		return bits / 8
	}
}
