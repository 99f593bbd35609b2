package format

import "github.com/gogpu/gputypes"

// Conversion names the texel repacking applied between the linear guest
// data and the host storage format.
type Conversion uint8

const (
	ConvNone Conversion = iota
	ConvRGBToRGBA
	Conv565ToRGBA8
	Conv1555ToRGBA8
	Conv5551ToRGBA8
	Conv4444ToRGBA8
	Conv1010102ToRGB10A2
)

func (c Conversion) String() string {
	switch c {
	case ConvNone:
		return "None"
	case ConvRGBToRGBA:
		return "RGBToRGBA"
	case Conv565ToRGBA8:
		return "565ToRGBA8"
	case Conv1555ToRGBA8:
		return "1555ToRGBA8"
	case Conv5551ToRGBA8:
		return "5551ToRGBA8"
	case Conv4444ToRGBA8:
		return "4444ToRGBA8"
	case Conv1010102ToRGB10A2:
		return "1010102ToRGB10A2"
	default:
		return "Unknown"
	}
}

// entry is one row of the format table. A zero storage format means the
// combination is not supported.
type entry struct {
	transfer Transfer
	conv     Conversion

	unorm gputypes.TextureFormat
	snorm gputypes.TextureFormat
	uint  gputypes.TextureFormat
	sint  gputypes.TextureFormat
	srgb  gputypes.TextureFormat
	float gputypes.TextureFormat
	depth gputypes.TextureFormat
}

const none = gputypes.TextureFormatUndefined

// bitsPerElement covers the whole enumeration, including formats with no
// host mapping. Block-compressed formats report bits per 4x4 block.
var bitsPerElement = map[DataFormat]uint32{
	FmtInvalid:          0,
	Fmt8:                8,
	Fmt4_4:              8,
	Fmt3_3_2:            8,
	Fmt16:               16,
	Fmt16Float:          16,
	Fmt8_8:              16,
	Fmt5_6_5:            16,
	Fmt6_5_5:            16,
	Fmt1_5_5_5:          16,
	Fmt4_4_4_4:          16,
	Fmt5_5_5_1:          16,
	Fmt32:               32,
	Fmt32Float:          32,
	Fmt16_16:            32,
	Fmt16_16Float:       32,
	Fmt8_24:             32,
	Fmt8_24Float:        32,
	Fmt24_8:             32,
	Fmt24_8Float:        32,
	Fmt10_11_11:         32,
	Fmt10_11_11Float:    32,
	Fmt11_11_10:         32,
	Fmt11_11_10Float:    32,
	Fmt2_10_10_10:       32,
	Fmt8_8_8_8:          32,
	Fmt10_10_10_2:       32,
	FmtX24_8_32Float:    64,
	Fmt32_32:            64,
	Fmt32_32Float:       64,
	Fmt16_16_16_16:      64,
	Fmt16_16_16_16Float: 64,
	Fmt32_32_32_32:      128,
	Fmt32_32_32_32Float: 128,
	Fmt1:                1,
	FmtGB_GR:            16,
	FmtBG_RG:            16,
	Fmt32As8:            32,
	Fmt32As8_8:          32,
	Fmt5_9_9_9SharedExp: 32,
	Fmt8_8_8:            24,
	Fmt16_16_16:         48,
	Fmt16_16_16Float:    48,
	Fmt32_32_32:         96,
	Fmt32_32_32Float:    96,
	FmtBC1:              64,
	FmtBC2:              128,
	FmtBC3:              128,
	FmtBC4:              64,
	FmtBC5:              128,
}

// table holds every supported format. Formats missing here are known
// coverage gaps and listed in unsupported.
var table = map[DataFormat]entry{
	Fmt8: {
		transfer: Transfer{LayoutR, ElemU8},
		unorm:    gputypes.TextureFormatR8Unorm,
		snorm:    gputypes.TextureFormatR8Snorm,
		uint:     gputypes.TextureFormatR8Uint,
		sint:     gputypes.TextureFormatR8Sint,
	},
	Fmt16: {
		transfer: Transfer{LayoutR, ElemU16},
		unorm:    gputypes.TextureFormatR16Unorm,
		snorm:    gputypes.TextureFormatR16Snorm,
		uint:     gputypes.TextureFormatR16Uint,
		sint:     gputypes.TextureFormatR16Sint,
		depth:    gputypes.TextureFormatDepth16Unorm,
	},
	Fmt16Float: {
		transfer: Transfer{LayoutR, ElemF16},
		float:    gputypes.TextureFormatR16Float,
	},
	Fmt8_8: {
		transfer: Transfer{LayoutRG, ElemU8},
		unorm:    gputypes.TextureFormatRG8Unorm,
		snorm:    gputypes.TextureFormatRG8Snorm,
		uint:     gputypes.TextureFormatRG8Uint,
		sint:     gputypes.TextureFormatRG8Sint,
	},
	Fmt5_6_5: {
		transfer: Transfer{LayoutRGB, ElemPacked565},
		conv:     Conv565ToRGBA8,
		unorm:    gputypes.TextureFormatRGBA8Unorm,
	},
	Fmt1_5_5_5: {
		transfer: Transfer{LayoutRGBA, ElemPacked1555},
		conv:     Conv1555ToRGBA8,
		unorm:    gputypes.TextureFormatRGBA8Unorm,
	},
	Fmt4_4_4_4: {
		transfer: Transfer{LayoutRGBA, ElemPacked4444},
		conv:     Conv4444ToRGBA8,
		unorm:    gputypes.TextureFormatRGBA8Unorm,
	},
	Fmt5_5_5_1: {
		transfer: Transfer{LayoutRGBA, ElemPacked5551},
		conv:     Conv5551ToRGBA8,
		unorm:    gputypes.TextureFormatRGBA8Unorm,
	},
	Fmt32: {
		transfer: Transfer{LayoutR, ElemU32},
		uint:     gputypes.TextureFormatR32Uint,
		sint:     gputypes.TextureFormatR32Sint,
	},
	Fmt32Float: {
		transfer: Transfer{LayoutR, ElemF32},
		float:    gputypes.TextureFormatR32Float,
		depth:    gputypes.TextureFormatDepth32Float,
	},
	Fmt16_16: {
		transfer: Transfer{LayoutRG, ElemU16},
		unorm:    gputypes.TextureFormatRG16Unorm,
		snorm:    gputypes.TextureFormatRG16Snorm,
		uint:     gputypes.TextureFormatRG16Uint,
		sint:     gputypes.TextureFormatRG16Sint,
	},
	Fmt16_16Float: {
		transfer: Transfer{LayoutRG, ElemF16},
		float:    gputypes.TextureFormatRG16Float,
	},
	Fmt8_24: {
		transfer: Transfer{LayoutDepthStencil, ElemPacked24_8},
		depth:    gputypes.TextureFormatDepth24PlusStencil8,
	},
	Fmt8_24Float: {
		transfer: Transfer{LayoutDepthStencil, ElemPacked24_8},
		depth:    gputypes.TextureFormatDepth32FloatStencil8,
	},
	Fmt10_11_11Float: {
		transfer: Transfer{LayoutRGB, ElemPackedF111110},
		float:    gputypes.TextureFormatRG11B10Ufloat,
	},
	Fmt11_11_10Float: {
		transfer: Transfer{LayoutRGB, ElemPackedF111110},
		float:    gputypes.TextureFormatRG11B10Ufloat,
	},
	Fmt2_10_10_10: {
		transfer: Transfer{LayoutRGBA, ElemPacked2101010},
		unorm:    gputypes.TextureFormatRGB10A2Unorm,
		uint:     gputypes.TextureFormatRGB10A2Uint,
	},
	Fmt8_8_8_8: {
		transfer: Transfer{LayoutRGBA, ElemU8},
		unorm:    gputypes.TextureFormatRGBA8Unorm,
		snorm:    gputypes.TextureFormatRGBA8Snorm,
		uint:     gputypes.TextureFormatRGBA8Uint,
		sint:     gputypes.TextureFormatRGBA8Sint,
		srgb:     gputypes.TextureFormatRGBA8UnormSrgb,
	},
	Fmt10_10_10_2: {
		transfer: Transfer{LayoutRGBA, ElemPacked1010102},
		conv:     Conv1010102ToRGB10A2,
		unorm:    gputypes.TextureFormatRGB10A2Unorm,
		uint:     gputypes.TextureFormatRGB10A2Uint,
	},
	FmtX24_8_32Float: {
		transfer: Transfer{LayoutDepthStencil, ElemPackedF32_8},
		depth:    gputypes.TextureFormatDepth32FloatStencil8,
	},
	Fmt32_32: {
		transfer: Transfer{LayoutRG, ElemU32},
		uint:     gputypes.TextureFormatRG32Uint,
		sint:     gputypes.TextureFormatRG32Sint,
	},
	Fmt32_32Float: {
		transfer: Transfer{LayoutRG, ElemF32},
		float:    gputypes.TextureFormatRG32Float,
	},
	Fmt16_16_16_16: {
		transfer: Transfer{LayoutRGBA, ElemU16},
		unorm:    gputypes.TextureFormatRGBA16Unorm,
		snorm:    gputypes.TextureFormatRGBA16Snorm,
		uint:     gputypes.TextureFormatRGBA16Uint,
		sint:     gputypes.TextureFormatRGBA16Sint,
	},
	Fmt16_16_16_16Float: {
		transfer: Transfer{LayoutRGBA, ElemF16},
		float:    gputypes.TextureFormatRGBA16Float,
	},
	Fmt32_32_32_32: {
		transfer: Transfer{LayoutRGBA, ElemU32},
		uint:     gputypes.TextureFormatRGBA32Uint,
		sint:     gputypes.TextureFormatRGBA32Sint,
	},
	Fmt32_32_32_32Float: {
		transfer: Transfer{LayoutRGBA, ElemF32},
		float:    gputypes.TextureFormatRGBA32Float,
	},
	Fmt8_8_8: {
		transfer: Transfer{LayoutRGB, ElemU8},
		conv:     ConvRGBToRGBA,
		unorm:    gputypes.TextureFormatRGBA8Unorm,
		snorm:    gputypes.TextureFormatRGBA8Snorm,
		uint:     gputypes.TextureFormatRGBA8Uint,
		sint:     gputypes.TextureFormatRGBA8Sint,
		srgb:     gputypes.TextureFormatRGBA8UnormSrgb,
	},
	Fmt16_16_16: {
		transfer: Transfer{LayoutRGB, ElemU16},
		conv:     ConvRGBToRGBA,
		unorm:    gputypes.TextureFormatRGBA16Unorm,
		snorm:    gputypes.TextureFormatRGBA16Snorm,
		uint:     gputypes.TextureFormatRGBA16Uint,
		sint:     gputypes.TextureFormatRGBA16Sint,
	},
	Fmt16_16_16Float: {
		transfer: Transfer{LayoutRGB, ElemF16},
		conv:     ConvRGBToRGBA,
		float:    gputypes.TextureFormatRGBA16Float,
	},
	Fmt32_32_32: {
		transfer: Transfer{LayoutRGB, ElemU32},
		conv:     ConvRGBToRGBA,
		uint:     gputypes.TextureFormatRGBA32Uint,
		sint:     gputypes.TextureFormatRGBA32Sint,
	},
	Fmt32_32_32Float: {
		transfer: Transfer{LayoutRGB, ElemF32},
		conv:     ConvRGBToRGBA,
		float:    gputypes.TextureFormatRGBA32Float,
	},
}

// compressed maps block-compressed formats by signedness and gamma.
// Only NORM number formats are meaningful for them.
var compressed = map[DataFormat]struct {
	blockBytes uint32
	unorm      gputypes.TextureFormat
	snorm      gputypes.TextureFormat
	srgb       gputypes.TextureFormat
}{
	FmtBC1: {8, gputypes.TextureFormatBC1RGBAUnorm, none, gputypes.TextureFormatBC1RGBAUnormSrgb},
	FmtBC2: {16, gputypes.TextureFormatBC2RGBAUnorm, none, gputypes.TextureFormatBC2RGBAUnormSrgb},
	FmtBC3: {16, gputypes.TextureFormatBC3RGBAUnorm, none, gputypes.TextureFormatBC3RGBAUnormSrgb},
	FmtBC4: {8, gputypes.TextureFormatBC4RUnorm, gputypes.TextureFormatBC4RSnorm, none},
	FmtBC5: {16, gputypes.TextureFormatBC5RGUnorm, gputypes.TextureFormatBC5RGSnorm, none},
}

// unsupported lists the formats deliberately left out of the tables.
var unsupported = map[DataFormat]bool{
	FmtInvalid:          true,
	Fmt4_4:              true,
	Fmt3_3_2:            true,
	Fmt6_5_5:            true,
	Fmt24_8:             true,
	Fmt24_8Float:        true,
	Fmt10_11_11:         true,
	Fmt11_11_10:         true,
	Fmt1:                true,
	FmtGB_GR:            true,
	FmtBG_RG:            true,
	Fmt32As8:            true,
	Fmt32As8_8:          true,
	Fmt5_9_9_9SharedExp: true,
}

// hostTexelBytes is the size of one texel (or one 4x4 block for BC
// formats) of every host format the tables can produce.
var hostTexelBytes = map[gputypes.TextureFormat]uint32{
	gputypes.TextureFormatR8Unorm:              1,
	gputypes.TextureFormatR8Snorm:              1,
	gputypes.TextureFormatR8Uint:               1,
	gputypes.TextureFormatR8Sint:               1,
	gputypes.TextureFormatR16Unorm:             2,
	gputypes.TextureFormatR16Snorm:             2,
	gputypes.TextureFormatR16Uint:              2,
	gputypes.TextureFormatR16Sint:              2,
	gputypes.TextureFormatR16Float:             2,
	gputypes.TextureFormatRG8Unorm:             2,
	gputypes.TextureFormatRG8Snorm:             2,
	gputypes.TextureFormatRG8Uint:              2,
	gputypes.TextureFormatRG8Sint:              2,
	gputypes.TextureFormatR32Float:             4,
	gputypes.TextureFormatR32Uint:              4,
	gputypes.TextureFormatR32Sint:              4,
	gputypes.TextureFormatRG16Unorm:            4,
	gputypes.TextureFormatRG16Snorm:            4,
	gputypes.TextureFormatRG16Uint:             4,
	gputypes.TextureFormatRG16Sint:             4,
	gputypes.TextureFormatRG16Float:            4,
	gputypes.TextureFormatRGBA8Unorm:           4,
	gputypes.TextureFormatRGBA8UnormSrgb:       4,
	gputypes.TextureFormatRGBA8Snorm:           4,
	gputypes.TextureFormatRGBA8Uint:            4,
	gputypes.TextureFormatRGBA8Sint:            4,
	gputypes.TextureFormatRGB10A2Uint:          4,
	gputypes.TextureFormatRGB10A2Unorm:         4,
	gputypes.TextureFormatRG11B10Ufloat:        4,
	gputypes.TextureFormatRG32Float:            8,
	gputypes.TextureFormatRG32Uint:             8,
	gputypes.TextureFormatRG32Sint:             8,
	gputypes.TextureFormatRGBA16Unorm:          8,
	gputypes.TextureFormatRGBA16Snorm:          8,
	gputypes.TextureFormatRGBA16Uint:           8,
	gputypes.TextureFormatRGBA16Sint:           8,
	gputypes.TextureFormatRGBA16Float:          8,
	gputypes.TextureFormatRGBA32Float:          16,
	gputypes.TextureFormatRGBA32Uint:           16,
	gputypes.TextureFormatRGBA32Sint:           16,
	gputypes.TextureFormatDepth16Unorm:         2,
	gputypes.TextureFormatDepth24PlusStencil8:  4,
	gputypes.TextureFormatDepth32Float:         4,
	gputypes.TextureFormatDepth32FloatStencil8: 8,
	gputypes.TextureFormatBC1RGBAUnorm:         8,
	gputypes.TextureFormatBC1RGBAUnormSrgb:     8,
	gputypes.TextureFormatBC2RGBAUnorm:         16,
	gputypes.TextureFormatBC2RGBAUnormSrgb:     16,
	gputypes.TextureFormatBC3RGBAUnorm:         16,
	gputypes.TextureFormatBC3RGBAUnormSrgb:     16,
	gputypes.TextureFormatBC4RUnorm:            8,
	gputypes.TextureFormatBC4RSnorm:            8,
	gputypes.TextureFormatBC5RGUnorm:           16,
	gputypes.TextureFormatBC5RGSnorm:           16,
}
