// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"encoding/binary"
	"math/bits"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/latte/regs"
)

// indexPlan is the host form of a draw's vertex stream.
type indexPlan struct {
	topology gputypes.PrimitiveTopology
	indexed  bool
	format   gputypes.IndexFormat
	data     []byte // little-endian host indices when indexed
	count    uint32
}

// topology returns the host topology of a guest primitive type and
// whether its indices must be rewritten.
func topology(p regs.PrimType) (gputypes.PrimitiveTopology, bool, error) {
	switch p {
	case regs.PrimPointList:
		return gputypes.PrimitiveTopologyPointList, false, nil
	case regs.PrimLineList:
		return gputypes.PrimitiveTopologyLineList, false, nil
	case regs.PrimLineStrip:
		return gputypes.PrimitiveTopologyLineStrip, false, nil
	case regs.PrimLineLoop:
		return gputypes.PrimitiveTopologyLineStrip, true, nil
	case regs.PrimTriList:
		return gputypes.PrimitiveTopologyTriangleList, false, nil
	case regs.PrimTriStrip, regs.PrimQuadStrip:
		return gputypes.PrimitiveTopologyTriangleStrip, false, nil
	case regs.PrimTriFan, regs.PrimPolygon, regs.PrimQuadList, regs.PrimRectList:
		return gputypes.PrimitiveTopologyTriangleList, true, nil
	default:
		return 0, false, ErrPrimitive
	}
}

// planIndices decodes guest indices and converts primitive types the
// host cannot draw. indices is nil for auto-indexed draws.
func planIndices(prim regs.PrimType, indexType regs.VgtDmaIndexType, numIndices uint32, indices []byte, opaque bool) (indexPlan, error) {
	top, convert, err := topology(prim)
	if err != nil {
		return indexPlan{}, err
	}
	plan := indexPlan{topology: top, count: numIndices}
	if opaque {
		if numIndices != 0 || indices != nil {
			return indexPlan{}, ErrIndexCount
		}
		return plan, nil
	}
	if numIndices == 0 {
		return indexPlan{}, ErrIndexCount
	}

	size := uint32(2)
	if indexType.IndexType() == regs.Index32 {
		size = 4
	}
	var src []uint32
	if indices != nil {
		if uint64(len(indices)) < uint64(numIndices)*uint64(size) {
			return indexPlan{}, ErrIndexCount
		}
		src = decodeIndices(indices[:numIndices*size], size, indexType.SwapMode())
	}

	if !convert {
		if src == nil {
			return plan, nil
		}
		plan.indexed = true
		plan.format, plan.data = encodeIndices(src, size)
		return plan, nil
	}

	if src == nil {
		size = 4
		src = make([]uint32, numIndices)
		for i := range src {
			src[i] = uint32(i)
		}
	}
	var out []uint32
	switch prim {
	case regs.PrimRectList:
		if numIndices != 4 {
			return indexPlan{}, ErrIndexCount
		}
		out = []uint32{src[0], src[1], src[2], src[2], src[1], src[3]}
	case regs.PrimQuadList:
		out = quadIndices(src)
	case regs.PrimLineLoop:
		out = append(src, src[0])
	default:
		out = fanIndices(src)
	}
	if len(out) == 0 {
		return indexPlan{}, ErrIndexCount
	}
	plan.indexed = true
	plan.count = uint32(len(out))
	plan.format, plan.data = encodeIndices(out, size)
	return plan, nil
}

// decodeIndices applies the guest byte swap and reads indices of size
// bytes.
func decodeIndices(raw []byte, size, swap uint32) []uint32 {
	buf := append([]byte(nil), raw...)
	unit := 0
	switch swap {
	case regs.Swap8In16:
		unit = 2
	case regs.Swap8In32:
		unit = 4
	case regs.Swap8In64:
		unit = 8
	}
	if unit > 0 {
		for i := 0; i+unit <= len(buf); i += unit {
			switch unit {
			case 2:
				binary.LittleEndian.PutUint16(buf[i:], bits.ReverseBytes16(binary.LittleEndian.Uint16(buf[i:])))
			case 4:
				binary.LittleEndian.PutUint32(buf[i:], bits.ReverseBytes32(binary.LittleEndian.Uint32(buf[i:])))
			case 8:
				binary.LittleEndian.PutUint64(buf[i:], bits.ReverseBytes64(binary.LittleEndian.Uint64(buf[i:])))
			}
		}
	}
	out := make([]uint32, len(buf)/int(size))
	for i := range out {
		if size == 2 {
			out[i] = uint32(binary.LittleEndian.Uint16(buf[i*2:]))
		} else {
			out[i] = binary.LittleEndian.Uint32(buf[i*4:])
		}
	}
	return out
}

func encodeIndices(idx []uint32, size uint32) (gputypes.IndexFormat, []byte) {
	if size == 2 {
		out := make([]byte, alignUp(uint32(len(idx))*2, 4))
		for i, v := range idx {
			binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
		}
		return gputypes.IndexFormatUint16, out
	}
	out := make([]byte, len(idx)*4)
	for i, v := range idx {
		binary.LittleEndian.PutUint32(out[i*4:], v)
	}
	return gputypes.IndexFormatUint32, out
}

// quadIndices splits each quad into two triangles. Trailing vertices of
// an incomplete quad are dropped.
func quadIndices(src []uint32) []uint32 {
	out := make([]uint32, 0, len(src)/4*6)
	for i := 0; i+4 <= len(src); i += 4 {
		a, b, c, d := src[i], src[i+1], src[i+2], src[i+3]
		out = append(out, a, b, c, a, c, d)
	}
	return out
}

// fanIndices converts a triangle fan or polygon to a triangle list.
func fanIndices(src []uint32) []uint32 {
	if len(src) < 3 {
		return nil
	}
	out := make([]uint32, 0, (len(src)-2)*3)
	for i := 1; i+1 < len(src); i++ {
		out = append(out, src[0], src[i], src[i+1])
	}
	return out
}
