// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/latte/regs"
)

type viewport struct {
	x, y, width, height float32
	minDepth, maxDepth  float32
}

type scissor struct {
	x, y, width, height uint32
}

// viewportScissor derives the host viewport and scissor from the guest
// registers, clipped to a render area of w by h.
func viewportScissor(f *regs.File, w, h uint32) (viewport, scissor, error) {
	xScale := regs.Get[regs.Float](f, regs.PA_CL_VPORT_XSCALE_0).Value()
	xOffset := regs.Get[regs.Float](f, regs.PA_CL_VPORT_XOFFSET_0).Value()
	yScale := regs.Get[regs.Float](f, regs.PA_CL_VPORT_YSCALE_0).Value()
	yOffset := regs.Get[regs.Float](f, regs.PA_CL_VPORT_YOFFSET_0).Value()
	zScale := regs.Get[regs.Float](f, regs.PA_CL_VPORT_ZSCALE_0).Value()
	zOffset := regs.Get[regs.Float](f, regs.PA_CL_VPORT_ZOFFSET_0).Value()

	x0, x1 := ordered(xOffset-xScale, xOffset+xScale)
	y0, y1 := ordered(yOffset-yScale, yOffset+yScale)
	x0, y0 = max(x0, 0), max(y0, 0)
	x1, y1 = min(x1, float32(w)), min(y1, float32(h))
	if !(x1 > x0) || !(y1 > y0) {
		return viewport{}, scissor{}, ErrEmptyViewport
	}
	vp := viewport{x: x0, y: y0, width: x1 - x0, height: y1 - y0}

	cntl := regs.Get[regs.PaClClipCntl](f, regs.PA_CL_CLIP_CNTL)
	if cntl.DxClipSpaceDef() {
		vp.minDepth, vp.maxDepth = ordered(zOffset, zOffset+zScale)
	} else {
		vp.minDepth, vp.maxDepth = ordered(zOffset-zScale, zOffset+zScale)
	}
	vp.minDepth = clamp01(vp.minDepth)
	vp.maxDepth = clamp01(vp.maxDepth)

	tl := regs.Get[regs.PaScScissor](f, regs.PA_SC_GENERIC_SCISSOR_TL)
	br := regs.Get[regs.PaScScissor](f, regs.PA_SC_GENERIC_SCISSOR_BR)
	sx0, sy0 := tl.X(), tl.Y()
	sx1, sy1 := min(br.X(), w), min(br.Y(), h)
	if sx1 <= sx0 || sy1 <= sy0 {
		return viewport{}, scissor{}, ErrEmptyScissor
	}
	return vp, scissor{x: sx0, y: sy0, width: sx1 - sx0, height: sy1 - sy0}, nil
}

func ordered(a, b float32) (float32, float32) {
	if a > b {
		return b, a
	}
	return a, b
}

func clamp01(v float32) float32 {
	if math.IsNaN(float64(v)) {
		return 0
	}
	return min(max(v, 0), 1)
}

// Per-draw constant layout within a slot.
const (
	vsConstOffset = 0
	psConstOffset = 32
	constBytes    = 48
)

// drawConstants replace the push constants of the guest driver.
type drawConstants struct {
	windowScaleBias [4]float32
	depthRemap      [4]float32

	alphaTest       uint32
	alphaRef        float32
	premultiplyMask uint32
}

// vertexConstants maps guest clip coordinates onto the host viewport.
// Axes whose viewport transform is disabled are already in window
// coordinates and are scaled into clip space here.
func vertexConstants(f *regs.File, vp viewport) (windowScaleBias, depthRemap [4]float32) {
	vte := regs.Get[regs.PaClVteCntl](f, regs.PA_CL_VTE_CNTL)
	windowScaleBias = [4]float32{1, 1, 0, 0}
	if !vte.VportXScaleEna() {
		windowScaleBias[0] = 2 / vp.width
	}
	if !vte.VportYScaleEna() {
		windowScaleBias[1] = -2 / vp.height
	}
	if !vte.VportXOffsetEna() {
		windowScaleBias[2] = -1
	}
	if !vte.VportYOffsetEna() {
		windowScaleBias[3] = 1
	}

	// GL clip space [-w, w] maps onto [0, w] as (z + w) * 0.5.
	if regs.Get[regs.PaClClipCntl](f, regs.PA_CL_CLIP_CNTL).DxClipSpaceDef() {
		depthRemap = [4]float32{0, 1, 0, 0}
	} else {
		depthRemap = [4]float32{1, 0.5, 0, 0}
	}
	return windowScaleBias, depthRemap
}

// Logic op modes of the pixel constants.
const (
	lopNormal = 0
	lopSet    = 1
	lopClear  = 2
)

func logicOpMode(ctl regs.CbColorControl) uint32 {
	switch ctl.Rop3() {
	case 0xFF:
		return lopSet
	case 0x00:
		return lopClear
	default:
		return lopNormal
	}
}

// pixelConstants encodes alpha test state and the targets that need
// their output premultiplied.
func pixelConstants(f *regs.File, p *pipeline) (alphaTest uint32, alphaRef float32, premultiplyMask uint32) {
	alpha := regs.Get[regs.SxAlphaTestControl](f, regs.SX_ALPHA_TEST_CONTROL)
	fn := alpha.AlphaFunc()
	if !alpha.AlphaTestEnable() || alpha.AlphaTestBypass() {
		fn = regs.RefAlways
	}
	lop := logicOpMode(regs.Get[regs.CbColorControl](f, regs.CB_COLOR_CONTROL))
	alphaTest = lop<<8 | uint32(fn)
	alphaRef = regs.Get[regs.Float](f, regs.SX_ALPHA_REF).Value()

	if p != nil && p.needsPremultiplied {
		for i := range regs.MaxRenderTargets {
			if p.targets&(1<<i) != 0 && p.premultiplied&(1<<i) == 0 {
				premultiplyMask |= 1 << i
			}
		}
	}
	return alphaTest, alphaRef, premultiplyMask
}

func (c *drawConstants) bytes() []byte {
	out := make([]byte, constBytes)
	for i, v := range c.windowScaleBias {
		binary.LittleEndian.PutUint32(out[vsConstOffset+4*i:], math.Float32bits(v))
	}
	for i, v := range c.depthRemap {
		binary.LittleEndian.PutUint32(out[vsConstOffset+16+4*i:], math.Float32bits(v))
	}
	binary.LittleEndian.PutUint32(out[psConstOffset:], c.alphaTest)
	binary.LittleEndian.PutUint32(out[psConstOffset+4:], math.Float32bits(c.alphaRef))
	binary.LittleEndian.PutUint32(out[psConstOffset+8:], c.premultiplyMask)
	return out
}
