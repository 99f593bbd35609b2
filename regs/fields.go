package regs

import (
	"math"

	"github.com/gogpu/latte/format"
	"github.com/gogpu/latte/tiling"
)

// SqConfig is SQ_CONFIG.
type SqConfig uint32

// DX9Consts reports whether shaders read ALU constants from the register
// file instead of uniform blocks.
func (r SqConfig) DX9Consts() bool { return bit(uint32(r), 2) }

// PrimType is the VGT_DI_PRIMITIVE_TYPE enumeration.
type PrimType uint32

const (
	PrimPointList    PrimType = 0x01
	PrimLineList     PrimType = 0x02
	PrimLineStrip    PrimType = 0x03
	PrimTriList      PrimType = 0x04
	PrimTriFan       PrimType = 0x05
	PrimTriStrip     PrimType = 0x06
	PrimLineListAdj  PrimType = 0x0A
	PrimTriListAdj   PrimType = 0x0B
	PrimLineLoop     PrimType = 0x0C
	PrimTriStripAdj  PrimType = 0x0D
	PrimLineStripAdj PrimType = 0x0E
	PrimRectList     PrimType = 0x11
	PrimQuadList     PrimType = 0x13
	PrimQuadStrip    PrimType = 0x14
	PrimPolygon      PrimType = 0x15
)

// VgtPrimitiveType is VGT_PRIMITIVE_TYPE.
type VgtPrimitiveType uint32

func (r VgtPrimitiveType) PrimType() PrimType { return PrimType(field(uint32(r), 0, 6)) }

// VgtDrawInitiator is the draw initiator word of a draw packet.
type VgtDrawInitiator uint32

// Source selects.
const (
	SourceDMA       = 0
	SourceImmediate = 1
	SourceAutoIndex = 2
)

func (r VgtDrawInitiator) SourceSelect() uint32 { return field(uint32(r), 0, 2) }

// UseOpaque reports a stream-out draw whose vertex count comes from the
// stream-out filled-size counter.
func (r VgtDrawInitiator) UseOpaque() bool { return bit(uint32(r), 6) }

// VgtDmaIndexType is VGT_DMA_INDEX_TYPE.
type VgtDmaIndexType uint32

// IndexType values.
const (
	Index16 = 0
	Index32 = 1
)

// SwapMode values.
const (
	SwapNone  = 0
	Swap8In16 = 1
	Swap8In32 = 2
	Swap8In64 = 3
)

func (r VgtDmaIndexType) IndexType() uint32 { return field(uint32(r), 0, 1) }
func (r VgtDmaIndexType) SwapMode() uint32  { return field(uint32(r), 2, 2) }

// VgtGsMode is VGT_GS_MODE.
type VgtGsMode uint32

// Enabled reports whether the geometry stage runs.
func (r VgtGsMode) Enabled() bool { return field(uint32(r), 0, 2) != 0 }

// VgtStrmoutEn is VGT_STRMOUT_EN.
type VgtStrmoutEn uint32

func (r VgtStrmoutEn) Streamout() bool { return bit(uint32(r), 0) }

// VgtStrmoutBufferEn is VGT_STRMOUT_BUFFER_EN.
type VgtStrmoutBufferEn uint32

func (r VgtStrmoutBufferEn) Buffer(n int) bool { return bit(uint32(r), uint32(n)) }

// PaClClipCntl is PA_CL_CLIP_CNTL.
type PaClClipCntl uint32

// DxClipSpaceDef selects the [0,1] clip-space depth convention.
func (r PaClClipCntl) DxClipSpaceDef() bool    { return bit(uint32(r), 19) }
func (r PaClClipCntl) RasteriserDisable() bool { return bit(uint32(r), 22) }

// PaClVteCntl is PA_CL_VTE_CNTL.
type PaClVteCntl uint32

func (r PaClVteCntl) VportXScaleEna() bool  { return bit(uint32(r), 0) }
func (r PaClVteCntl) VportXOffsetEna() bool { return bit(uint32(r), 1) }
func (r PaClVteCntl) VportYScaleEna() bool  { return bit(uint32(r), 2) }
func (r PaClVteCntl) VportYOffsetEna() bool { return bit(uint32(r), 3) }
func (r PaClVteCntl) VportZScaleEna() bool  { return bit(uint32(r), 4) }
func (r PaClVteCntl) VportZOffsetEna() bool { return bit(uint32(r), 5) }

// Float is a register holding an IEEE-754 single.
type Float uint32

func (r Float) Value() float32 { return math.Float32frombits(uint32(r)) }

// FloatBits converts v to a register value.
func FloatBits(v float32) uint32 { return math.Float32bits(v) }

// PaScScissor is PA_SC_GENERIC_SCISSOR_TL or _BR.
type PaScScissor uint32

func (r PaScScissor) X() uint32 { return field(uint32(r), 0, 14) }
func (r PaScScissor) Y() uint32 { return field(uint32(r), 16, 14) }

// ScissorBits encodes a scissor corner.
func ScissorBits(x, y uint32) uint32 { return x&0x3FFF | (y&0x3FFF)<<16 }

// CbColorControl is CB_COLOR_CONTROL.
type CbColorControl uint32

func (r CbColorControl) TargetBlendEnable() uint32 { return field(uint32(r), 8, 8) }
func (r CbColorControl) Rop3() uint32              { return field(uint32(r), 16, 8) }

// CbTargetMask is CB_TARGET_MASK.
type CbTargetMask uint32

// Target returns the 4-bit channel write mask of render target n.
func (r CbTargetMask) Target(n int) uint32 { return field(uint32(r), uint32(4*n), 4) }

// CbBlendControl is CB_BLENDn_CONTROL.
type CbBlendControl uint32

func (r CbBlendControl) ColorSrcBlend() uint32  { return field(uint32(r), 0, 5) }
func (r CbBlendControl) ColorCombFcn() uint32   { return field(uint32(r), 5, 3) }
func (r CbBlendControl) ColorDestBlend() uint32 { return field(uint32(r), 8, 5) }
func (r CbBlendControl) AlphaSrcBlend() uint32  { return field(uint32(r), 16, 5) }
func (r CbBlendControl) AlphaCombFcn() uint32   { return field(uint32(r), 21, 3) }
func (r CbBlendControl) AlphaDestBlend() uint32 { return field(uint32(r), 24, 5) }
func (r CbBlendControl) SeparateAlpha() bool    { return bit(uint32(r), 29) }

// BLEND_FUNC values.
const (
	BlendZero                  = 0
	BlendOne                   = 1
	BlendSrcColor              = 2
	BlendOneMinusSrcColor      = 3
	BlendSrcAlpha              = 4
	BlendOneMinusSrcAlpha      = 5
	BlendDstAlpha              = 6
	BlendOneMinusDstAlpha      = 7
	BlendDstColor              = 8
	BlendOneMinusDstColor      = 9
	BlendSrcAlphaSaturate      = 10
	BlendConstantColor         = 13
	BlendOneMinusConstantColor = 14
	BlendConstantAlpha         = 19
	BlendOneMinusConstantAlpha = 20
)

// COMB_FCN values.
const (
	CombDstPlusSrc  = 0
	CombSrcMinusDst = 1
	CombMinDstSrc   = 2
	CombMaxDstSrc   = 3
	CombDstMinusSrc = 4
)

// BlendBits encodes a blend control with the same factors and function
// for color and alpha.
func BlendBits(src, dst, comb uint32) uint32 {
	return src&0x1F | (comb&7)<<5 | (dst&0x1F)<<8 | (src&0x1F)<<16 | (comb&7)<<21 | (dst&0x1F)<<24
}

// CB number types.
const (
	NumberUnorm   = 0
	NumberSnorm   = 1
	NumberUscaled = 2
	NumberSscaled = 3
	NumberUint    = 4
	NumberSint    = 5
	NumberSrgb    = 6
	NumberFloat   = 7
)

// CbColorInfo is CB_COLORn_INFO.
type CbColorInfo uint32

func (r CbColorInfo) Format() format.DataFormat  { return format.DataFormat(field(uint32(r), 2, 6)) }
func (r CbColorInfo) ArrayMode() tiling.TileMode { return tiling.TileMode(field(uint32(r), 8, 4)) }
func (r CbColorInfo) NumberType() uint32         { return field(uint32(r), 12, 3) }

// Descriptor maps the color buffer number type onto a texture format
// descriptor.
func (r CbColorInfo) Descriptor() format.Descriptor {
	d := format.Descriptor{Format: r.Format()}
	switch r.NumberType() {
	case NumberUnorm:
		d.NumFormat, d.Comp = format.NumFormatNorm, format.CompUnsigned
	case NumberSnorm:
		d.NumFormat, d.Comp = format.NumFormatNorm, format.CompSigned
	case NumberUscaled, NumberFloat:
		d.NumFormat, d.Comp = format.NumFormatScaled, format.CompUnsigned
	case NumberSscaled:
		d.NumFormat, d.Comp = format.NumFormatScaled, format.CompSigned
	case NumberUint:
		d.NumFormat, d.Comp = format.NumFormatInt, format.CompUnsigned
	case NumberSint:
		d.NumFormat, d.Comp = format.NumFormatInt, format.CompSigned
	case NumberSrgb:
		d.NumFormat, d.Comp, d.Degamma = format.NumFormatNorm, format.CompUnsigned, true
	}
	return d
}

// ColorInfoBits encodes a color buffer format, tiling and number type.
func ColorInfoBits(f format.DataFormat, mode tiling.TileMode, number uint32) uint32 {
	return uint32(f)&0x3F<<2 | uint32(mode)&0xF<<8 | number&7<<12
}

// CbColorSize is CB_COLORn_SIZE or DB_DEPTH_SIZE.
type CbColorSize uint32

func (r CbColorSize) PitchTileMax() uint32 { return field(uint32(r), 0, 10) }
func (r CbColorSize) SliceTileMax() uint32 { return field(uint32(r), 10, 20) }

// Pitch returns the surface pitch in elements.
func (r CbColorSize) Pitch() uint32 { return (r.PitchTileMax() + 1) * 8 }

// Height returns the surface height in rows.
func (r CbColorSize) Height() uint32 { return (r.SliceTileMax() + 1) * 64 / r.Pitch() }

// SizeBits encodes a surface pitch and height.
func SizeBits(pitch, height uint32) uint32 {
	return (pitch/8-1)&0x3FF | ((pitch*height/64-1)&0xFFFFF)<<10
}

// CbColorView is CB_COLORn_VIEW or DB_DEPTH_VIEW.
type CbColorView uint32

func (r CbColorView) SliceStart() uint32 { return field(uint32(r), 0, 11) }
func (r CbColorView) SliceMax() uint32   { return field(uint32(r), 13, 11) }

// DB depth formats.
const (
	DepthInvalid       = 0
	Depth16            = 1
	DepthX8_24         = 2
	Depth8_24          = 3
	DepthX8_24Float    = 4
	Depth8_24Float     = 5
	Depth32Float       = 6
	DepthX24_8_32Float = 7
)

// DbDepthInfo is DB_DEPTH_INFO.
type DbDepthInfo uint32

func (r DbDepthInfo) Format() uint32             { return field(uint32(r), 0, 3) }
func (r DbDepthInfo) ArrayMode() tiling.TileMode { return tiling.TileMode(field(uint32(r), 15, 4)) }

// Descriptor maps the depth buffer format onto a texture format
// descriptor. ok is false for DEPTH_INVALID.
func (r DbDepthInfo) Descriptor() (d format.Descriptor, ok bool) {
	d.NumFormat = format.NumFormatNorm
	switch r.Format() {
	case Depth16:
		d.Format = format.Fmt16
	case DepthX8_24, Depth8_24:
		d.Format = format.Fmt8_24
	case DepthX8_24Float, Depth8_24Float:
		d.Format = format.Fmt8_24Float
	case Depth32Float:
		d.Format, d.NumFormat = format.Fmt32Float, format.NumFormatScaled
	case DepthX24_8_32Float:
		d.Format = format.FmtX24_8_32Float
	default:
		return d, false
	}
	return d, true
}

// DepthInfoBits encodes a depth buffer format and tiling.
func DepthInfoBits(depthFormat uint32, mode tiling.TileMode) uint32 {
	return depthFormat&7 | uint32(mode)&0xF<<15
}

// DbDepthControl is DB_DEPTH_CONTROL.
type DbDepthControl uint32

func (r DbDepthControl) StencilEnable() bool { return bit(uint32(r), 0) }
func (r DbDepthControl) ZEnable() bool       { return bit(uint32(r), 1) }
func (r DbDepthControl) ZWriteEnable() bool  { return bit(uint32(r), 2) }
func (r DbDepthControl) ZFunc() RefFunc      { return RefFunc(field(uint32(r), 4, 3)) }

// RefFunc is the REF_FUNC comparison enumeration.
type RefFunc uint32

const (
	RefNever    RefFunc = 0
	RefLess     RefFunc = 1
	RefEqual    RefFunc = 2
	RefLequal   RefFunc = 3
	RefGreater  RefFunc = 4
	RefNotEqual RefFunc = 5
	RefGequal   RefFunc = 6
	RefAlways   RefFunc = 7
)

// SxAlphaTestControl is SX_ALPHA_TEST_CONTROL.
type SxAlphaTestControl uint32

func (r SxAlphaTestControl) AlphaFunc() RefFunc    { return RefFunc(field(uint32(r), 0, 3)) }
func (r SxAlphaTestControl) AlphaTestEnable() bool { return bit(uint32(r), 3) }
func (r SxAlphaTestControl) AlphaTestBypass() bool { return bit(uint32(r), 8) }

// Address is a register holding a 256-byte aligned guest address.
type Address uint32

func (r Address) Addr() uint32 { return uint32(r) << 8 }

// SqTexDim is the SQ_TEX_DIM enumeration.
type SqTexDim uint32

const (
	TexDim1D        SqTexDim = 0
	TexDim2D        SqTexDim = 1
	TexDim3D        SqTexDim = 2
	TexDimCubemap   SqTexDim = 3
	TexDim1DArray   SqTexDim = 4
	TexDim2DArray   SqTexDim = 5
	TexDim2DMSAA    SqTexDim = 6
	TexDim2DArrMSAA SqTexDim = 7
)

// SqTexResourceWord0 holds dimension, tiling, pitch and width.
type SqTexResourceWord0 uint32

func (r SqTexResourceWord0) Dim() SqTexDim { return SqTexDim(field(uint32(r), 0, 3)) }
func (r SqTexResourceWord0) TileMode() tiling.TileMode {
	return tiling.TileMode(field(uint32(r), 3, 4))
}
func (r SqTexResourceWord0) Pitch() uint32 { return (field(uint32(r), 8, 11) + 1) * 8 }
func (r SqTexResourceWord0) Width() uint32 { return field(uint32(r), 19, 13) + 1 }

// SqTexResourceWord1 holds height, depth and data format.
type SqTexResourceWord1 uint32

func (r SqTexResourceWord1) Height() uint32 { return field(uint32(r), 0, 13) + 1 }
func (r SqTexResourceWord1) Depth() uint32  { return field(uint32(r), 13, 13) + 1 }
func (r SqTexResourceWord1) DataFormat() format.DataFormat {
	return format.DataFormat(field(uint32(r), 26, 6))
}

// SqTexResourceWord4 holds component signedness, number format and
// gamma.
type SqTexResourceWord4 uint32

func (r SqTexResourceWord4) FormatCompX() format.FormatComp {
	return format.FormatComp(field(uint32(r), 0, 2))
}
func (r SqTexResourceWord4) NumFormatAll() format.NumFormat {
	return format.NumFormat(field(uint32(r), 8, 2))
}
func (r SqTexResourceWord4) ForceDegamma() bool { return bit(uint32(r), 11) }

// TexResourceBits encodes the words of a texture resource.
func TexResourceBits(dim SqTexDim, mode tiling.TileMode, pitch, width, height, depth uint32, d format.Descriptor) (w0, w1, w4 uint32) {
	w0 = uint32(dim)&7 | (uint32(mode)&0xF)<<3 | (pitch/8-1)&0x7FF<<8 | (width-1)&0x1FFF<<19
	w1 = (height-1)&0x1FFF | (depth-1)&0x1FFF<<13 | uint32(d.Format)&0x3F<<26
	w4 = uint32(d.Comp)&3 | uint32(d.NumFormat)&3<<8
	if d.Degamma {
		w4 |= 1 << 11
	}
	return w0, w1, w4
}

// SqTexClamp is the SQ_TEX_CLAMP enumeration.
type SqTexClamp uint32

const (
	ClampWrap             SqTexClamp = 0
	ClampMirror           SqTexClamp = 1
	ClampLastTexel        SqTexClamp = 2
	ClampMirrorOnceLast   SqTexClamp = 3
	ClampHalfBorder       SqTexClamp = 4
	ClampMirrorOnceHalf   SqTexClamp = 5
	ClampBorder           SqTexClamp = 6
	ClampMirrorOnceBorder SqTexClamp = 7
)

// SqTexSamplerWord0 holds addressing, filtering and comparison state.
type SqTexSamplerWord0 uint32

func (r SqTexSamplerWord0) ClampX() SqTexClamp    { return SqTexClamp(field(uint32(r), 0, 3)) }
func (r SqTexSamplerWord0) ClampY() SqTexClamp    { return SqTexClamp(field(uint32(r), 3, 3)) }
func (r SqTexSamplerWord0) ClampZ() SqTexClamp    { return SqTexClamp(field(uint32(r), 6, 3)) }
func (r SqTexSamplerWord0) XYMagFilter() uint32   { return field(uint32(r), 9, 3) }
func (r SqTexSamplerWord0) XYMinFilter() uint32   { return field(uint32(r), 12, 3) }
func (r SqTexSamplerWord0) MipFilter() uint32     { return field(uint32(r), 17, 2) }
func (r SqTexSamplerWord0) MaxAnisoRatio() uint32 { return field(uint32(r), 19, 3) }
func (r SqTexSamplerWord0) DepthCompare() RefFunc { return RefFunc(field(uint32(r), 26, 3)) }

// SqTexSamplerWord1 holds the LOD range in 4.6 fixed point.
type SqTexSamplerWord1 uint32

func (r SqTexSamplerWord1) MinLod() float32 { return float32(field(uint32(r), 0, 10)) / 64 }
func (r SqTexSamplerWord1) MaxLod() float32 { return float32(field(uint32(r), 10, 10)) / 64 }

// SqVtxResourceWord1 holds the size of a vertex fetch buffer minus one.
type SqVtxResourceWord1 uint32

func (r SqVtxResourceWord1) Size() uint32 { return uint32(r) + 1 }

// SqVtxResourceWord2 holds the stride of a vertex fetch buffer.
type SqVtxResourceWord2 uint32

func (r SqVtxResourceWord2) Stride() uint32 { return field(uint32(r), 8, 11) }

// SqAluConstBufferSize holds a uniform block size in 256-byte units.
type SqAluConstBufferSize uint32

func (r SqAluConstBufferSize) Bytes() uint32 { return uint32(r) << 8 }
