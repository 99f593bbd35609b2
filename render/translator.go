// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/latte/regs"
)

// ShaderTranslator converts guest shader programs to WGSL.
//
// Translate receives the program bytes of one stage together with the
// register file, which holds the state the translation may depend on.
// The returned description must stay valid for as long as the
// translator is in use.
//
// When the geometry stage is enabled its translation replaces the host
// vertex stage: the host has no geometry stage, so the geometry WGSL
// must contain the whole vertex-side program. The vertex translation
// still supplies the vertex layout and the stage 0 resources.
type ShaderTranslator interface {
	Translate(stage regs.Stage, program []byte, state *regs.File) (*ShaderDesc, error)
}

// ShaderDesc is a translated shader and the resources it reads.
type ShaderDesc struct {
	WGSL       string
	EntryPoint string

	// Samplers and Textures are indexed by guest slot.
	Samplers [regs.MaxSamplers]SamplerUsage
	Textures [regs.MaxTextures]TextureUsage

	// UniformBlocks has bit i set when uniform block i is read. It is
	// ignored when the register file holds the constants.
	UniformBlocks uint32

	// UsesRegisterFile reports a read of ALU constants. Whether they come
	// from the register file or uniform blocks is decided per draw by
	// SQ_CONFIG.
	UsesRegisterFile bool

	// AttribBuffers lists the vertex fetch buffers of a vertex shader.
	AttribBuffers []AttribBuffer

	// StreamOut has bit i set when stream-out buffer i is written.
	StreamOut uint32
}

// SamplerUsage declares a sampler slot.
type SamplerUsage struct {
	Used       bool
	Comparison bool
}

// TextureUsage declares a texture slot.
type TextureUsage struct {
	Used       bool
	ViewDim    gputypes.TextureViewDimension
	SampleType gputypes.TextureSampleType
}

// AttribBuffer declares one vertex fetch buffer slot. The stride and
// memory range come from the fetch constant registers.
type AttribBuffer struct {
	Slot       int
	StepMode   gputypes.VertexStepMode
	Attributes []gputypes.VertexAttribute
}
