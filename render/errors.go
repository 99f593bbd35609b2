// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
)

// Gate is one validation step of a draw.
type Gate uint8

// Gates in the order they run.
const (
	GateVertexShader Gate = iota
	GateGeometryShader
	GatePixelShader
	GateRenderPass
	GateFramebuffer
	GatePipeline
	GateSamplers
	GateTextures
	GateAttribBuffers
	GateShaderBuffers
	GateIndices
	GateViewportScissor
	GateStreamOutBuffers

	NumGates = 13
)

var gateNames = [NumGates]string{
	"vertex shader",
	"geometry shader",
	"pixel shader",
	"render pass",
	"framebuffer",
	"pipeline",
	"samplers",
	"textures",
	"attribute buffers",
	"shader buffers",
	"index buffer",
	"viewport or scissor area",
	"stream out buffers",
}

func (g Gate) String() string {
	if int(g) < len(gateNames) {
		return gateNames[g]
	}
	return fmt.Sprintf("Gate(%d)", uint8(g))
}

// Reasons a gate rejects a draw.
var (
	// ErrNoProgram is returned when a required shader stage has no
	// program bound.
	ErrNoProgram = errors.New("render: no shader program bound")

	// ErrNoTranslator is returned when the orchestrator has no shader
	// translator.
	ErrNoTranslator = errors.New("render: no shader translator")

	// ErrNoTargets is returned when neither a color nor a depth target
	// is enabled.
	ErrNoTargets = errors.New("render: no render targets")

	// ErrTextureDimension is returned when a bound texture does not have
	// the view dimension the shader declares.
	ErrTextureDimension = errors.New("render: texture dimension mismatch")

	// ErrMissingBuffer is returned when a shader reads a buffer slot that
	// has no guest memory bound.
	ErrMissingBuffer = errors.New("render: buffer not bound")

	// ErrIndexCount is returned for an index count the primitive type
	// cannot use.
	ErrIndexCount = errors.New("render: invalid index count")

	// ErrUniformLimit is returned when the bound shaders read more
	// uniform buffers in one host stage than the host allows.
	ErrUniformLimit = errors.New("render: too many uniform buffers")

	// ErrPrimitive is returned for a primitive type the host cannot draw.
	ErrPrimitive = errors.New("render: unsupported primitive type")

	// ErrEmptyViewport is returned for a zero-area viewport.
	ErrEmptyViewport = errors.New("render: empty viewport")

	// ErrEmptyScissor is returned for a zero-area scissor rectangle.
	ErrEmptyScissor = errors.New("render: empty scissor")

	// ErrClosed is returned by an Orchestrator after Close.
	ErrClosed = errors.New("render: orchestrator closed")
)

// GateError reports why a draw was dropped.
type GateError struct {
	Gate Gate
	Err  error
}

func (e *GateError) Error() string {
	return fmt.Sprintf("render: skipped draw due to a %v error: %v", e.Gate, e.Err)
}

func (e *GateError) Unwrap() error { return e.Err }
