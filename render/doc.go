// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render translates guest draw packets into host render passes.
//
// An [Orchestrator] owns the per-draw state machine. Each draw runs a
// fixed sequence of validation gates that read the guest register file,
// translate and compile shaders, resolve render targets and textures
// through the surface cache, and upload vertex, uniform and index data.
// A draw is only recorded once every gate has passed; the first gate
// that fails drops the draw without touching the command stream.
//
// # Gates
//
// The gates run strictly in this order:
//
//	vertex shader, geometry shader, pixel shader, render pass,
//	framebuffer, pipeline, samplers, textures, attribute buffers,
//	shader buffers, indices, viewport and scissor, stream-out buffers
//
// A failed gate is logged at debug level and counted in
// [Stats].Skipped. Conditions that leave the translation in an unknown
// state, such as an unmappable surface format, are returned as errors.
//
// # Bindings
//
// Each shader stage uses the bind group whose index is its [regs.Stage].
// Within a group, sampler i is bound at binding i, texture i at
// MaxSamplers+i, and the register file or uniform block i after the
// textures. Stream-out buffers follow the uniform blocks in the vertex
// group. Bind group 3 holds the per-draw constants in a ring buffer
// addressed with a dynamic offset.
//
// # Shaders
//
// Guest shader bytecode is translated by a [ShaderTranslator] supplied
// by the caller. The resulting WGSL is compiled to SPIR-V with naga and
// the host modules are cached by a hash of the guest program.
//
// # Opaque draws
//
// Stream-out "opaque" draws take their vertex count from the bytes the
// previous stream-out pass wrote. The host has no byte-count draw, so a
// one-thread compute pass divides the filled size by the vertex stride
// into indirect draw arguments before the render pass begins.
package render
