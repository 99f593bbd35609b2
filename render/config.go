// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "github.com/gogpu/gputypes"

// Default cache and ring sizes.
const (
	DefaultShaderCacheSize   = 256
	DefaultPipelineCacheSize = 512
	DefaultSamplerCacheSize  = 128
	DefaultConstantSlots     = 1024
)

// Config configures an Orchestrator. Zero fields select the defaults.
type Config struct {
	// ShaderCacheSize is the soft limit of compiled shader modules.
	ShaderCacheSize int

	// PipelineCacheSize is the soft limit of render pipelines.
	PipelineCacheSize int

	// SamplerCacheSize is the soft limit of host samplers.
	SamplerCacheSize int

	// ConstantSlots is the number of 256-byte per-draw constant slots in
	// each ring chunk.
	ConstantSlots int

	// MaxUniformBuffers is the host's uniform buffer limit per shader
	// stage. It defaults to the WebGPU default limit; raise it only when
	// the device was opened with a higher limit.
	MaxUniformBuffers int
}

func (c Config) withDefaults() Config {
	if c.ShaderCacheSize <= 0 {
		c.ShaderCacheSize = DefaultShaderCacheSize
	}
	if c.PipelineCacheSize <= 0 {
		c.PipelineCacheSize = DefaultPipelineCacheSize
	}
	if c.SamplerCacheSize <= 0 {
		c.SamplerCacheSize = DefaultSamplerCacheSize
	}
	if c.ConstantSlots <= 0 {
		c.ConstantSlots = DefaultConstantSlots
	}
	if c.MaxUniformBuffers <= 0 {
		c.MaxUniformBuffers = int(gputypes.DefaultLimits().MaxUniformBuffersPerShaderStage)
	}
	return c
}
