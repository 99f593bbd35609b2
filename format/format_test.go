package format

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
)

func TestValidate(t *testing.T) {
	if err := Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidateDetectsMissingEntry(t *testing.T) {
	saved := table[Fmt8_8_8_8]
	delete(table, Fmt8_8_8_8)
	t.Cleanup(func() { table[Fmt8_8_8_8] = saved })

	if err := Validate(); !errors.Is(err, ErrTable) {
		t.Errorf("Validate() with missing entry = %v, want ErrTable", err)
	}
}

func TestMapStorage(t *testing.T) {
	tests := []struct {
		name    string
		desc    Descriptor
		isDepth bool
		want    gputypes.TextureFormat
	}{
		{"rgba8 unorm", Descriptor{Fmt8_8_8_8, NumFormatNorm, CompUnsigned, false}, false, gputypes.TextureFormatRGBA8Unorm},
		{"rgba8 snorm", Descriptor{Fmt8_8_8_8, NumFormatNorm, CompSigned, false}, false, gputypes.TextureFormatRGBA8Snorm},
		{"rgba8 uint", Descriptor{Fmt8_8_8_8, NumFormatInt, CompUnsigned, false}, false, gputypes.TextureFormatRGBA8Uint},
		{"rgba8 sint", Descriptor{Fmt8_8_8_8, NumFormatInt, CompSigned, false}, false, gputypes.TextureFormatRGBA8Sint},
		{"rgba8 srgb", Descriptor{Fmt8_8_8_8, NumFormatNorm, CompUnsigned, true}, false, gputypes.TextureFormatRGBA8UnormSrgb},
		{"r32 float", Descriptor{Fmt32Float, NumFormatScaled, CompUnsigned, false}, false, gputypes.TextureFormatR32Float},
		{"rgba16 float", Descriptor{Fmt16_16_16_16Float, NumFormatScaled, CompUnsigned, false}, false, gputypes.TextureFormatRGBA16Float},
		{"565 expands", Descriptor{Fmt5_6_5, NumFormatNorm, CompUnsigned, false}, false, gputypes.TextureFormatRGBA8Unorm},
		{"rgb8 expands", Descriptor{Fmt8_8_8, NumFormatNorm, CompUnsigned, true}, false, gputypes.TextureFormatRGBA8UnormSrgb},
		{"depth16", Descriptor{Fmt16, NumFormatNorm, CompUnsigned, false}, true, gputypes.TextureFormatDepth16Unorm},
		{"depth32f", Descriptor{Fmt32Float, NumFormatScaled, CompUnsigned, false}, true, gputypes.TextureFormatDepth32Float},
		{"depth24 stencil8", Descriptor{Fmt8_24, NumFormatNorm, CompUnsigned, false}, true, gputypes.TextureFormatDepth24PlusStencil8},
		{"depth32f stencil8", Descriptor{FmtX24_8_32Float, NumFormatNorm, CompUnsigned, false}, true, gputypes.TextureFormatDepth32FloatStencil8},
		{"bc1", Descriptor{FmtBC1, NumFormatNorm, CompUnsigned, false}, false, gputypes.TextureFormatBC1RGBAUnorm},
		{"bc1 srgb", Descriptor{FmtBC1, NumFormatNorm, CompUnsigned, true}, false, gputypes.TextureFormatBC1RGBAUnormSrgb},
		{"bc4 signed", Descriptor{FmtBC4, NumFormatNorm, CompSigned, false}, false, gputypes.TextureFormatBC4RSnorm},
		{"bc5", Descriptor{FmtBC5, NumFormatNorm, CompUnsigned, false}, false, gputypes.TextureFormatBC5RGUnorm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MapStorage(tt.desc, tt.isDepth)
			if err != nil {
				t.Fatalf("MapStorage(%v) error = %v", tt.desc, err)
			}
			if got != tt.want {
				t.Errorf("MapStorage(%v) = %v, want %v", tt.desc, got, tt.want)
			}
		})
	}
}

func TestMapStorageUnsupported(t *testing.T) {
	tests := []struct {
		name    string
		desc    Descriptor
		isDepth bool
	}{
		{"float must be scaled", Descriptor{Fmt32Float, NumFormatNorm, CompUnsigned, false}, false},
		{"degamma needs unsigned norm", Descriptor{Fmt8_8_8_8, NumFormatInt, CompUnsigned, true}, false},
		{"no srgb r8", Descriptor{Fmt8, NumFormatNorm, CompUnsigned, true}, false},
		{"biased comp", Descriptor{Fmt8_8_8_8, NumFormatNorm, CompUnsignedBiased, false}, false},
		{"scaled signed", Descriptor{Fmt16_16Float, NumFormatScaled, CompSigned, false}, false},
		{"8_24 as color", Descriptor{Fmt8_24, NumFormatNorm, CompUnsigned, false}, false},
		{"rgba8 as depth", Descriptor{Fmt8_8_8_8, NumFormatNorm, CompUnsigned, false}, true},
		{"bc as depth", Descriptor{FmtBC3, NumFormatNorm, CompUnsigned, false}, true},
		{"signed bc1", Descriptor{FmtBC1, NumFormatNorm, CompSigned, false}, false},
		{"gap", Descriptor{Fmt3_3_2, NumFormatNorm, CompUnsigned, false}, false},
		{"invalid", Descriptor{FmtInvalid, NumFormatNorm, CompUnsigned, false}, false},
		{"outside enumeration", Descriptor{DataFormat(0x3F), NumFormatNorm, CompUnsigned, false}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MapStorage(tt.desc, tt.isDepth)
			if !errors.Is(err, ErrUnsupported) {
				t.Fatalf("MapStorage(%v) error = %v, want ErrUnsupported", tt.desc, err)
			}
			var fe *Error
			if !errors.As(err, &fe) || fe.Descriptor != tt.desc {
				t.Errorf("error %v does not carry descriptor %v", err, tt.desc)
			}
		})
	}
}

// TestMapStorageExhaustive walks every descriptor combination and checks
// the mapper is total: each input maps to a host format with a known
// texel size, or fails with ErrUnsupported.
func TestMapStorageExhaustive(t *testing.T) {
	mapped := 0
	for _, f := range All() {
		for _, nf := range []NumFormat{NumFormatNorm, NumFormatInt, NumFormatScaled} {
			for _, c := range []FormatComp{CompUnsigned, CompSigned, CompUnsignedBiased} {
				for _, dg := range []bool{false, true} {
					for _, depth := range []bool{false, true} {
						d := Descriptor{f, nf, c, dg}
						got, err := MapStorage(d, depth)
						if err != nil {
							if !errors.Is(err, ErrUnsupported) {
								t.Errorf("MapStorage(%v, %t) error = %v, want ErrUnsupported", d, depth, err)
							}
							continue
						}
						mapped++
						if HostTexelBytes(got) == 0 {
							t.Errorf("MapStorage(%v, %t) = %v with unknown texel size", d, depth, got)
						}
						if depth != got.IsDepthStencil() {
							t.Errorf("MapStorage(%v, %t) = %v, depth mismatch", d, depth, got)
						}
					}
				}
			}
		}
	}
	if mapped == 0 {
		t.Fatal("no descriptor mapped")
	}
}

func TestMapTransfer(t *testing.T) {
	tests := []struct {
		f    DataFormat
		comp FormatComp
		want Transfer
	}{
		{Fmt8, CompUnsigned, Transfer{LayoutR, ElemU8}},
		{Fmt8, CompSigned, Transfer{LayoutR, ElemS8}},
		{Fmt16_16, CompSigned, Transfer{LayoutRG, ElemS16}},
		{Fmt16Float, CompSigned, Transfer{LayoutR, ElemF16}},
		{Fmt5_6_5, CompUnsigned, Transfer{LayoutRGB, ElemPacked565}},
		{Fmt8_8_8_8, CompUnsigned, Transfer{LayoutRGBA, ElemU8}},
		{Fmt32_32_32, CompSigned, Transfer{LayoutRGB, ElemS32}},
		{FmtBC3, CompUnsigned, Transfer{LayoutNone, ElemBlock}},
	}
	for _, tt := range tests {
		got, err := MapTransfer(tt.f, tt.comp)
		if err != nil {
			t.Fatalf("MapTransfer(%v) error = %v", tt.f, err)
		}
		if got != tt.want {
			t.Errorf("MapTransfer(%v, %v) = %v, want %v", tt.f, tt.comp, got, tt.want)
		}
	}

	if _, err := MapTransfer(FmtGB_GR, CompUnsigned); !errors.Is(err, ErrUnsupported) {
		t.Errorf("MapTransfer(GB_GR) error = %v, want ErrUnsupported", err)
	}
}

func TestBitsPerElement(t *testing.T) {
	tests := []struct {
		f    DataFormat
		want uint32
	}{
		{Fmt8, 8},
		{Fmt5_6_5, 16},
		{Fmt8_8_8_8, 32},
		{Fmt8_8_8, 24},
		{Fmt32_32_32_32Float, 128},
		{FmtBC1, 64},
		{FmtBC3, 128},
	}
	for _, tt := range tests {
		if got := BitsPerElement(tt.f); got != tt.want {
			t.Errorf("BitsPerElement(%v) = %d, want %d", tt.f, got, tt.want)
		}
	}
	if !IsCompressed(FmtBC2) || IsCompressed(Fmt8_8_8_8) {
		t.Error("IsCompressed misclassifies BC2 or 8_8_8_8")
	}
}

func TestExpand(t *testing.T) {
	tests := []struct {
		name string
		desc Descriptor
		src  []byte
		want []byte
	}{
		{
			name: "rgb8 unorm",
			desc: Descriptor{Fmt8_8_8, NumFormatNorm, CompUnsigned, false},
			src:  []byte{1, 2, 3, 4, 5, 6},
			want: []byte{1, 2, 3, 0xFF, 4, 5, 6, 0xFF},
		},
		{
			name: "rgb8 snorm",
			desc: Descriptor{Fmt8_8_8, NumFormatNorm, CompSigned, false},
			src:  []byte{1, 2, 3},
			want: []byte{1, 2, 3, 0x7F},
		},
		{
			name: "rgb8 uint",
			desc: Descriptor{Fmt8_8_8, NumFormatInt, CompUnsigned, false},
			src:  []byte{9, 8, 7},
			want: []byte{9, 8, 7, 1},
		},
		{
			name: "rgb16 float",
			desc: Descriptor{Fmt16_16_16Float, NumFormatScaled, CompUnsigned, false},
			src:  []byte{0, 1, 0, 2, 0, 3},
			want: []byte{0, 1, 0, 2, 0, 3, 0x00, 0x3C},
		},
		{
			name: "565 white and red",
			desc: Descriptor{Fmt5_6_5, NumFormatNorm, CompUnsigned, false},
			src:  []byte{0xFF, 0xFF, 0x00, 0xF8},
			want: []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0, 0, 0xFF},
		},
		{
			name: "1555 red in low bits",
			desc: Descriptor{Fmt1_5_5_5, NumFormatNorm, CompUnsigned, false},
			src:  []byte{0x1F, 0x00, 0x00, 0xFC},
			want: []byte{0xFF, 0, 0, 0, 0, 0, 0xFF, 0xFF},
		},
		{
			name: "5551 red in high bits",
			desc: Descriptor{Fmt5_5_5_1, NumFormatNorm, CompUnsigned, false},
			src:  []byte{0x01, 0xF8, 0x3E, 0x00},
			want: []byte{0xFF, 0, 0, 0xFF, 0, 0, 0xFF, 0},
		},
		{
			name: "4444",
			desc: Descriptor{Fmt4_4_4_4, NumFormatNorm, CompUnsigned, false},
			src:  []byte{0x0F, 0xF0},
			want: []byte{0xFF, 0, 0, 0xFF},
		},
		{
			name: "10_10_10_2 red",
			desc: Descriptor{Fmt10_10_10_2, NumFormatNorm, CompUnsigned, false},
			src:  []byte{0x00, 0x00, 0xC0, 0xFF},
			want: []byte{0xFF, 0x03, 0x00, 0x00},
		},
		{
			name: "rgba8 untouched",
			desc: Descriptor{Fmt8_8_8_8, NumFormatNorm, CompUnsigned, false},
			src:  []byte{1, 2, 3, 4},
			want: []byte{1, 2, 3, 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Expand(tt.desc, tt.src)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Expand() = % x, want % x", got, tt.want)
			}
		})
	}
}

func TestStrings(t *testing.T) {
	if got := Fmt8_8_8_8.String(); got != "FMT_8_8_8_8" {
		t.Errorf("String() = %q, want FMT_8_8_8_8", got)
	}
	if got := DataFormat(0x3F).String(); got != "Unknown(63)" {
		t.Errorf("String() = %q, want Unknown(63)", got)
	}
	if got := NumFormatScaled.String(); got != "Scaled" {
		t.Errorf("String() = %q, want Scaled", got)
	}
}
