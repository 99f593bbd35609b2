package format

import "fmt"

// DataFormat is the guest SQ_DATA_FORMAT / CB_FORMAT enumeration.
type DataFormat uint32

// Guest data formats. Names list component widths the way the hardware
// documentation does.
//
//nolint:revive // hardware names
const (
	FmtInvalid          DataFormat = 0x00
	Fmt8                DataFormat = 0x01
	Fmt4_4              DataFormat = 0x02
	Fmt3_3_2            DataFormat = 0x03
	Fmt16               DataFormat = 0x05
	Fmt16Float          DataFormat = 0x06
	Fmt8_8              DataFormat = 0x07
	Fmt5_6_5            DataFormat = 0x08
	Fmt6_5_5            DataFormat = 0x09
	Fmt1_5_5_5          DataFormat = 0x0A
	Fmt4_4_4_4          DataFormat = 0x0B
	Fmt5_5_5_1          DataFormat = 0x0C
	Fmt32               DataFormat = 0x0D
	Fmt32Float          DataFormat = 0x0E
	Fmt16_16            DataFormat = 0x0F
	Fmt16_16Float       DataFormat = 0x10
	Fmt8_24             DataFormat = 0x11
	Fmt8_24Float        DataFormat = 0x12
	Fmt24_8             DataFormat = 0x13
	Fmt24_8Float        DataFormat = 0x14
	Fmt10_11_11         DataFormat = 0x15
	Fmt10_11_11Float    DataFormat = 0x16
	Fmt11_11_10         DataFormat = 0x17
	Fmt11_11_10Float    DataFormat = 0x18
	Fmt2_10_10_10       DataFormat = 0x19
	Fmt8_8_8_8          DataFormat = 0x1A
	Fmt10_10_10_2       DataFormat = 0x1B
	FmtX24_8_32Float    DataFormat = 0x1C
	Fmt32_32            DataFormat = 0x1D
	Fmt32_32Float       DataFormat = 0x1E
	Fmt16_16_16_16      DataFormat = 0x1F
	Fmt16_16_16_16Float DataFormat = 0x20
	Fmt32_32_32_32      DataFormat = 0x22
	Fmt32_32_32_32Float DataFormat = 0x23
	Fmt1                DataFormat = 0x25
	FmtGB_GR            DataFormat = 0x27
	FmtBG_RG            DataFormat = 0x28
	Fmt32As8            DataFormat = 0x29
	Fmt32As8_8          DataFormat = 0x2A
	Fmt5_9_9_9SharedExp DataFormat = 0x2B
	Fmt8_8_8            DataFormat = 0x2C
	Fmt16_16_16         DataFormat = 0x2D
	Fmt16_16_16Float    DataFormat = 0x2E
	Fmt32_32_32         DataFormat = 0x2F
	Fmt32_32_32Float    DataFormat = 0x30
	FmtBC1              DataFormat = 0x31
	FmtBC2              DataFormat = 0x32
	FmtBC3              DataFormat = 0x33
	FmtBC4              DataFormat = 0x34
	FmtBC5              DataFormat = 0x35
)

var formatNames = map[DataFormat]string{
	FmtInvalid:          "INVALID",
	Fmt8:                "8",
	Fmt4_4:              "4_4",
	Fmt3_3_2:            "3_3_2",
	Fmt16:               "16",
	Fmt16Float:          "16_FLOAT",
	Fmt8_8:              "8_8",
	Fmt5_6_5:            "5_6_5",
	Fmt6_5_5:            "6_5_5",
	Fmt1_5_5_5:          "1_5_5_5",
	Fmt4_4_4_4:          "4_4_4_4",
	Fmt5_5_5_1:          "5_5_5_1",
	Fmt32:               "32",
	Fmt32Float:          "32_FLOAT",
	Fmt16_16:            "16_16",
	Fmt16_16Float:       "16_16_FLOAT",
	Fmt8_24:             "8_24",
	Fmt8_24Float:        "8_24_FLOAT",
	Fmt24_8:             "24_8",
	Fmt24_8Float:        "24_8_FLOAT",
	Fmt10_11_11:         "10_11_11",
	Fmt10_11_11Float:    "10_11_11_FLOAT",
	Fmt11_11_10:         "11_11_10",
	Fmt11_11_10Float:    "11_11_10_FLOAT",
	Fmt2_10_10_10:       "2_10_10_10",
	Fmt8_8_8_8:          "8_8_8_8",
	Fmt10_10_10_2:       "10_10_10_2",
	FmtX24_8_32Float:    "X24_8_32_FLOAT",
	Fmt32_32:            "32_32",
	Fmt32_32Float:       "32_32_FLOAT",
	Fmt16_16_16_16:      "16_16_16_16",
	Fmt16_16_16_16Float: "16_16_16_16_FLOAT",
	Fmt32_32_32_32:      "32_32_32_32",
	Fmt32_32_32_32Float: "32_32_32_32_FLOAT",
	Fmt1:                "1",
	FmtGB_GR:            "GB_GR",
	FmtBG_RG:            "BG_RG",
	Fmt32As8:            "32_AS_8",
	Fmt32As8_8:          "32_AS_8_8",
	Fmt5_9_9_9SharedExp: "5_9_9_9_SHAREDEXP",
	Fmt8_8_8:            "8_8_8",
	Fmt16_16_16:         "16_16_16",
	Fmt16_16_16Float:    "16_16_16_FLOAT",
	Fmt32_32_32:         "32_32_32",
	Fmt32_32_32Float:    "32_32_32_FLOAT",
	FmtBC1:              "BC1",
	FmtBC2:              "BC2",
	FmtBC3:              "BC3",
	FmtBC4:              "BC4",
	FmtBC5:              "BC5",
}

// String returns the hardware name of the format.
func (f DataFormat) String() string {
	if s, ok := formatNames[f]; ok {
		return "FMT_" + s
	}
	return fmt.Sprintf("Unknown(%d)", uint32(f))
}

// All returns every value of the closed DataFormat enumeration.
func All() []DataFormat {
	out := make([]DataFormat, 0, len(formatNames))
	for f := FmtInvalid; f <= FmtBC5; f++ {
		if _, ok := formatNames[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

// NumFormat is the guest NUM_FORMAT_ALL field.
type NumFormat uint32

const (
	NumFormatNorm   NumFormat = 0
	NumFormatInt    NumFormat = 1
	NumFormatScaled NumFormat = 2
)

func (n NumFormat) String() string {
	switch n {
	case NumFormatNorm:
		return "Norm"
	case NumFormatInt:
		return "Int"
	case NumFormatScaled:
		return "Scaled"
	default:
		return fmt.Sprintf("Unknown(%d)", uint32(n))
	}
}

// FormatComp is the guest FORMAT_COMP field (component signedness).
type FormatComp uint32

const (
	CompUnsigned       FormatComp = 0
	CompSigned         FormatComp = 1
	CompUnsignedBiased FormatComp = 2
)

func (c FormatComp) String() string {
	switch c {
	case CompUnsigned:
		return "Unsigned"
	case CompSigned:
		return "Signed"
	case CompUnsignedBiased:
		return "UnsignedBiased"
	default:
		return fmt.Sprintf("Unknown(%d)", uint32(c))
	}
}

// Descriptor fully identifies how guest texels are interpreted.
// It is a value type and is never mutated.
type Descriptor struct {
	Format    DataFormat
	NumFormat NumFormat
	Comp      FormatComp
	Degamma   bool
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%v/%v/%v/degamma=%t", d.Format, d.NumFormat, d.Comp, d.Degamma)
}

// Layout is the channel layout of guest texels.
type Layout uint8

const (
	LayoutNone Layout = iota
	LayoutR
	LayoutRG
	LayoutRGB
	LayoutRGBA
	LayoutDepth
	LayoutDepthStencil
)

func (l Layout) String() string {
	switch l {
	case LayoutNone:
		return "None"
	case LayoutR:
		return "R"
	case LayoutRG:
		return "RG"
	case LayoutRGB:
		return "RGB"
	case LayoutRGBA:
		return "RGBA"
	case LayoutDepth:
		return "Depth"
	case LayoutDepthStencil:
		return "DepthStencil"
	default:
		return fmt.Sprintf("Unknown(%d)", l)
	}
}

// Channels returns the number of channels, or 0 for non-color layouts.
func (l Layout) Channels() int {
	switch l {
	case LayoutR:
		return 1
	case LayoutRG:
		return 2
	case LayoutRGB:
		return 3
	case LayoutRGBA:
		return 4
	default:
		return 0
	}
}

// ElementType is the storage type of one guest element.
type ElementType uint8

const (
	ElemNone ElementType = iota
	ElemU8
	ElemS8
	ElemU16
	ElemS16
	ElemF16
	ElemU32
	ElemS32
	ElemF32
	ElemPacked565
	ElemPacked1555
	ElemPacked5551
	ElemPacked4444
	ElemPacked1010102
	ElemPacked2101010
	ElemPackedF111110
	ElemPacked24_8
	ElemPackedF32_8
	ElemBlock
)

var elemNames = [...]string{
	ElemNone:          "None",
	ElemU8:            "U8",
	ElemS8:            "S8",
	ElemU16:           "U16",
	ElemS16:           "S16",
	ElemF16:           "F16",
	ElemU32:           "U32",
	ElemS32:           "S32",
	ElemF32:           "F32",
	ElemPacked565:     "Packed565",
	ElemPacked1555:    "Packed1555",
	ElemPacked5551:    "Packed5551",
	ElemPacked4444:    "Packed4444",
	ElemPacked1010102: "Packed1010102",
	ElemPacked2101010: "Packed2101010",
	ElemPackedF111110: "PackedF111110",
	ElemPacked24_8:    "Packed24_8",
	ElemPackedF32_8:   "PackedF32_8",
	ElemBlock:         "Block",
}

func (e ElementType) String() string {
	if int(e) < len(elemNames) {
		return elemNames[e]
	}
	return fmt.Sprintf("Unknown(%d)", e)
}

// Size returns the byte size of one channel for scalar element types,
// or of the whole packed element otherwise. Blocks report 0.
func (e ElementType) Size() int {
	switch e {
	case ElemU8, ElemS8:
		return 1
	case ElemU16, ElemS16, ElemF16,
		ElemPacked565, ElemPacked1555, ElemPacked5551, ElemPacked4444:
		return 2
	case ElemU32, ElemS32, ElemF32,
		ElemPacked1010102, ElemPacked2101010, ElemPackedF111110, ElemPacked24_8:
		return 4
	case ElemPackedF32_8:
		return 8
	default:
		return 0
	}
}

// Transfer describes guest texels as the Tiling Codec produces them.
type Transfer struct {
	Layout Layout
	Elem   ElementType
}

func (t Transfer) String() string { return t.Layout.String() + "/" + t.Elem.String() }
