package format

import "encoding/binary"

// Expand repacks linear guest texels of d.Format into the layout of the
// host storage format. It returns src unchanged when no conversion is
// needed. Guest texel data is little-endian as stored in memory.
func Expand(d Descriptor, src []byte) []byte {
	conv := ConversionFor(d.Format)
	switch conv {
	case ConvRGBToRGBA:
		return expandRGB(d, src)
	case Conv565ToRGBA8, Conv1555ToRGBA8, Conv5551ToRGBA8, Conv4444ToRGBA8:
		return expand16(conv, src)
	case Conv1010102ToRGB10A2:
		return expand1010102(src)
	default:
		return src
	}
}

func expandRGB(d Descriptor, src []byte) []byte {
	size := table[d.Format].transfer.Elem.Size()
	if size == 0 {
		return src
	}
	one := alphaOne(d, size)
	n := len(src) / (3 * size)
	dst := make([]byte, n*4*size)
	for i := range n {
		copy(dst[i*4*size:], src[i*3*size:(i+1)*3*size])
		copy(dst[i*4*size+3*size:], one)
	}
	return dst
}

// alphaOne returns the encoding of a fully opaque alpha channel.
func alphaOne(d Descriptor, size int) []byte {
	one := make([]byte, size)
	switch {
	case d.NumFormat == NumFormatInt:
		one[0] = 1
	case d.NumFormat == NumFormatScaled && size == 2:
		binary.LittleEndian.PutUint16(one, 0x3C00)
	case d.NumFormat == NumFormatScaled && size == 4:
		binary.LittleEndian.PutUint32(one, 0x3F800000)
	default:
		for i := range one {
			one[i] = 0xFF
		}
		if d.Comp == CompSigned {
			one[size-1] = 0x7F
		}
	}
	return one
}

func expand16(conv Conversion, src []byte) []byte {
	n := len(src) / 2
	dst := make([]byte, n*4)
	for i := range n {
		v := uint32(binary.LittleEndian.Uint16(src[i*2:]))
		var r, g, b, a uint32
		switch conv {
		case Conv565ToRGBA8:
			r, g, b, a = scale(v>>11, 5), scale(v>>5, 6), scale(v, 5), 0xFF
		case Conv1555ToRGBA8:
			// Reversed packing: red in the low bits, alpha in bit 15.
			r, g, b, a = scale(v, 5), scale(v>>5, 5), scale(v>>10, 5), scale(v>>15, 1)
		case Conv5551ToRGBA8:
			r, g, b, a = scale(v>>11, 5), scale(v>>6, 5), scale(v>>1, 5), scale(v, 1)
		case Conv4444ToRGBA8:
			r, g, b, a = scale(v>>12, 4), scale(v>>8, 4), scale(v>>4, 4), scale(v, 4)
		}
		dst[i*4+0] = byte(r)
		dst[i*4+1] = byte(g)
		dst[i*4+2] = byte(b)
		dst[i*4+3] = byte(a)
	}
	return dst
}

// scale widens the low bits-wide field of v to 8 bits.
func scale(v uint32, bits uint) uint32 {
	m := uint32(1)<<bits - 1
	return (v & m) * 0xFF / m
}

// expand1010102 moves R from the top bits to the bottom bits, producing
// the RGB10A2 host layout.
func expand1010102(src []byte) []byte {
	n := len(src) / 4
	dst := make([]byte, n*4)
	for i := range n {
		v := binary.LittleEndian.Uint32(src[i*4:])
		r := v >> 22 & 0x3FF
		g := v >> 12 & 0x3FF
		b := v >> 2 & 0x3FF
		a := v & 0x3
		binary.LittleEndian.PutUint32(dst[i*4:], r|g<<10|b<<20|a<<30)
	}
	return dst
}
