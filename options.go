package latte

import (
	"github.com/gogpu/latte/render"
	"github.com/gogpu/latte/surface"
)

// Option configures a Driver during creation.
//
// Example:
//
//	d, err := latte.New(device, queue, guestMem, translator,
//	    latte.WithEvictAfterFrames(120),
//	    latte.WithPipelineCacheSize(1024))
type Option func(*config)

// config holds the settings of the caches a Driver owns.
type config struct {
	surface surface.Config
	render  render.Config
}

// WithEvictAfterFrames sets how many frames an unused surface survives
// before it is destroyed. A negative value disables age eviction.
func WithEvictAfterFrames(n int) Option {
	return func(c *config) {
		c.surface.EvictAfterFrames = n
	}
}

// WithShaderCacheSize sets the soft limit of compiled shader modules.
func WithShaderCacheSize(n int) Option {
	return func(c *config) {
		c.render.ShaderCacheSize = n
	}
}

// WithPipelineCacheSize sets the soft limit of render pipelines.
func WithPipelineCacheSize(n int) Option {
	return func(c *config) {
		c.render.PipelineCacheSize = n
	}
}

// WithSamplerCacheSize sets the soft limit of host samplers.
func WithSamplerCacheSize(n int) Option {
	return func(c *config) {
		c.render.SamplerCacheSize = n
	}
}

// WithMaxUniformBuffers sets the host's uniform buffer limit per shader
// stage. Use it when the device was opened with limits above the WebGPU
// defaults. Draws needing more buffers are dropped.
func WithMaxUniformBuffers(n int) Option {
	return func(c *config) {
		c.render.MaxUniformBuffers = n
	}
}

// WithConstantSlots sets the number of per-draw constant slots allocated
// per ring chunk.
func WithConstantSlots(n int) Option {
	return func(c *config) {
		c.render.ConstantSlots = n
	}
}
