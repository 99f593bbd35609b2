// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
	"github.com/spaolacci/murmur3"

	"github.com/gogpu/latte/internal/cache"
	"github.com/gogpu/latte/internal/logging"
	"github.com/gogpu/latte/regs"
)

// compileWGSL compiles WGSL source to SPIR-V words.
func compileWGSL(source string) ([]uint32, error) {
	spirv, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}
	if len(spirv)%4 != 0 {
		return nil, fmt.Errorf("compile shader: SPIR-V size %d is not word aligned", len(spirv))
	}
	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirv)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirv[i*4:])
	}
	return words, nil
}

func createModule(device hal.Device, label, source string) (hal.ShaderModule, error) {
	words, err := compileWGSL(source)
	if err != nil {
		return nil, err
	}
	return device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{SPIRV: words},
	})
}

// shaderKey identifies a guest program.
type shaderKey struct {
	stage  regs.Stage
	lo, hi uint64
}

// shader is a translated and compiled guest program.
type shader struct {
	key    shaderKey
	desc   *ShaderDesc
	module hal.ShaderModule
}

// shaderCache compiles guest programs once per content hash.
type shaderCache struct {
	device     hal.Device
	translator ShaderTranslator
	cache      *cache.Cache[shaderKey, *shader]
}

func newShaderCache(device hal.Device, translator ShaderTranslator, size int, retire *retirer) *shaderCache {
	return &shaderCache{
		device:     device,
		translator: translator,
		cache: cache.New(size, func(_ shaderKey, s *shader) {
			retire.module(s.module)
		}),
	}
}

// get returns the host shader for the program of stage. Translation and
// compilation failures are returned as errors and nothing is cached.
func (c *shaderCache) get(stage regs.Stage, program []byte, state *regs.File) (*shader, error) {
	if c.translator == nil {
		return nil, ErrNoTranslator
	}
	lo, hi := murmur3.Sum128(program)
	key := shaderKey{stage: stage, lo: lo, hi: hi}
	return c.cache.Obtain(key, func() (*shader, error) {
		desc, err := c.translator.Translate(stage, program, state)
		if err != nil {
			return nil, fmt.Errorf("translate %v shader: %w", stage, err)
		}
		label := fmt.Sprintf("latte-%v-%016x", stage, lo)
		module, err := createModule(c.device, label, desc.WGSL)
		if err != nil {
			return nil, fmt.Errorf("%v shader: %w", stage, err)
		}
		logging.L().Debug("render: shader compiled", "stage", stage, "hash", fmt.Sprintf("%016x", lo))
		return &shader{key: key, desc: desc, module: module}, nil
	})
}

func (c *shaderCache) stats() cache.Stats { return c.cache.Stats() }

func (c *shaderCache) destroy() { c.cache.Purge() }
