// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/latte/internal/cache"
	"github.com/gogpu/latte/regs"
)

type samplerKey struct {
	w0, w1     uint32
	comparison bool
}

type samplerCache struct {
	device hal.Device
	cache  *cache.Cache[samplerKey, hal.Sampler]
}

func newSamplerCache(device hal.Device, size int, retire *retirer) *samplerCache {
	return &samplerCache{
		device: device,
		cache: cache.New(size, func(_ samplerKey, s hal.Sampler) {
			retire.sampler(s)
		}),
	}
}

// get returns the host sampler for the sampler words of one slot.
func (c *samplerCache) get(w0 regs.SqTexSamplerWord0, w1 regs.SqTexSamplerWord1, comparison bool) (hal.Sampler, error) {
	key := samplerKey{w0: uint32(w0), w1: uint32(w1), comparison: comparison}
	return c.cache.Obtain(key, func() (hal.Sampler, error) {
		desc := samplerDescriptor(w0, w1, comparison)
		s, err := c.device.CreateSampler(&desc)
		if err != nil {
			return nil, fmt.Errorf("create sampler %#x: %w", uint32(w0), err)
		}
		return s, nil
	})
}

func (c *samplerCache) destroy() { c.cache.Purge() }

func samplerDescriptor(w0 regs.SqTexSamplerWord0, w1 regs.SqTexSamplerWord1, comparison bool) hal.SamplerDescriptor {
	desc := hal.SamplerDescriptor{
		Label:        fmt.Sprintf("latte-sampler-%#x", uint32(w0)),
		AddressModeU: addressMode(w0.ClampX()),
		AddressModeV: addressMode(w0.ClampY()),
		AddressModeW: addressMode(w0.ClampZ()),
		MagFilter:    xyFilter(w0.XYMagFilter()),
		MinFilter:    xyFilter(w0.XYMinFilter()),
		MipmapFilter: gputypes.FilterModeNearest,
		LodMinClamp:  w1.MinLod(),
		LodMaxClamp:  w1.MaxLod(),
		Anisotropy:   1,
	}
	if w0.MipFilter() == mipLinear {
		desc.MipmapFilter = gputypes.FilterModeLinear
	}
	if w0.MipFilter() == mipNone {
		desc.LodMaxClamp = desc.LodMinClamp
	}
	if desc.LodMaxClamp < desc.LodMinClamp {
		desc.LodMaxClamp = desc.LodMinClamp
	}
	if aniso(w0.XYMagFilter()) || aniso(w0.XYMinFilter()) {
		desc.Anisotropy = uint16(min(1<<w0.MaxAnisoRatio(), 16))
		desc.MagFilter = gputypes.FilterModeLinear
		desc.MinFilter = gputypes.FilterModeLinear
		desc.MipmapFilter = gputypes.FilterModeLinear
	}
	if comparison {
		desc.Compare = compareFunction(w0.DepthCompare())
	}
	return desc
}

// SQ_TEX_XY_FILTER and SQ_TEX_Z_FILTER values.
const (
	xyPoint       = 0
	xyBilinear    = 1
	xyAnisoPoint  = 2
	xyAnisoLinear = 3

	mipNone   = 0
	mipPoint  = 1
	mipLinear = 2
)

func xyFilter(f uint32) gputypes.FilterMode {
	if f == xyBilinear || f == xyAnisoLinear {
		return gputypes.FilterModeLinear
	}
	return gputypes.FilterModeNearest
}

func aniso(f uint32) bool { return f == xyAnisoPoint || f == xyAnisoLinear }

// addressMode maps SQ_TEX_CLAMP. Border modes have no host equivalent
// and clamp to the edge.
func addressMode(c regs.SqTexClamp) gputypes.AddressMode {
	switch c {
	case regs.ClampWrap:
		return gputypes.AddressModeRepeat
	case regs.ClampMirror:
		return gputypes.AddressModeMirrorRepeat
	default:
		return gputypes.AddressModeClampToEdge
	}
}

func compareFunction(f regs.RefFunc) gputypes.CompareFunction {
	switch f {
	case regs.RefNever:
		return gputypes.CompareFunctionNever
	case regs.RefLess:
		return gputypes.CompareFunctionLess
	case regs.RefEqual:
		return gputypes.CompareFunctionEqual
	case regs.RefLequal:
		return gputypes.CompareFunctionLessEqual
	case regs.RefGreater:
		return gputypes.CompareFunctionGreater
	case regs.RefNotEqual:
		return gputypes.CompareFunctionNotEqual
	case regs.RefGequal:
		return gputypes.CompareFunctionGreaterEqual
	default:
		return gputypes.CompareFunctionAlways
	}
}
