// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/spaolacci/murmur3"

	"github.com/gogpu/latte/internal/cache"
	"github.com/gogpu/latte/internal/logging"
	"github.com/gogpu/latte/regs"
)

// Binding numbers within a stage's bind group.
const (
	samplerBinding   = 0
	textureBinding   = regs.MaxSamplers
	bufferBinding    = regs.MaxSamplers + regs.MaxTextures
	streamOutBinding = regs.MaxSamplers + regs.MaxTextures + regs.MaxUniformBlocks

	// constantsGroup is the bind group of the per-draw constants.
	constantsGroup = regs.NumStages
)

func stageVisibility(s regs.Stage) gputypes.ShaderStages {
	if s == regs.StagePixel {
		return gputypes.ShaderStageFragment
	}
	return gputypes.ShaderStageVertex
}

// stageEntries lists the bind group layout entries of a stage. The
// register file replaces the uniform blocks when dx9 is set; the
// geometry stage always reads uniform blocks. streamOut has a bit per
// bound stream-out buffer and only applies to the vertex stage.
func stageEntries(s regs.Stage, d *ShaderDesc, dx9 bool, streamOut uint32) []gputypes.BindGroupLayoutEntry {
	if d == nil {
		return nil
	}
	vis := stageVisibility(s)
	var entries []gputypes.BindGroupLayoutEntry
	for i, u := range d.Samplers {
		if !u.Used {
			continue
		}
		typ := gputypes.SamplerBindingTypeFiltering
		if u.Comparison {
			typ = gputypes.SamplerBindingTypeComparison
		}
		entries = append(entries, gputypes.BindGroupLayoutEntry{
			Binding:    samplerBinding + uint32(i),
			Visibility: vis,
			Sampler:    &gputypes.SamplerBindingLayout{Type: typ},
		})
	}
	for i, u := range d.Textures {
		if !u.Used {
			continue
		}
		entries = append(entries, gputypes.BindGroupLayoutEntry{
			Binding:    textureBinding + uint32(i),
			Visibility: vis,
			Texture:    &gputypes.TextureBindingLayout{SampleType: u.SampleType, ViewDimension: u.ViewDim},
		})
	}
	if registerFileStage(s, dx9) {
		if d.UsesRegisterFile {
			entries = append(entries, gputypes.BindGroupLayoutEntry{
				Binding:    bufferBinding,
				Visibility: vis,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			})
		}
	} else {
		for i := range regs.MaxUniformBlocks {
			if d.UniformBlocks&(1<<i) == 0 {
				continue
			}
			entries = append(entries, gputypes.BindGroupLayoutEntry{
				Binding:    bufferBinding + uint32(i),
				Visibility: vis,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			})
		}
	}
	if s == regs.StageVertex {
		for i := range regs.MaxStreamOutBuffers {
			if streamOut&(1<<i) == 0 {
				continue
			}
			entries = append(entries, gputypes.BindGroupLayoutEntry{
				Binding:    streamOutBinding + uint32(i),
				Visibility: vis,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage},
			})
		}
	}
	return entries
}

// checkUniformLimit counts the uniform buffers each host stage sees,
// including the per-draw constants, against limit. The vertex and
// geometry programs share the host vertex stage.
func checkUniformLimit(entries *[regs.NumStages][]gputypes.BindGroupLayoutEntry, limit int) error {
	vertex, fragment := 1, 1
	for _, stage := range entries {
		for _, e := range stage {
			if e.Buffer == nil || e.Buffer.Type != gputypes.BufferBindingTypeUniform {
				continue
			}
			if e.Visibility&gputypes.ShaderStageVertex != 0 {
				vertex++
			}
			if e.Visibility&gputypes.ShaderStageFragment != 0 {
				fragment++
			}
		}
	}
	if n := max(vertex, fragment); n > limit {
		return fmt.Errorf("%w: %d, limit %d", ErrUniformLimit, n, limit)
	}
	return nil
}

func registerFileStage(s regs.Stage, dx9 bool) bool {
	return dx9 && s != regs.StageGeometry
}

// layoutKey hashes bind group layout entries.
func layoutKey(entries []gputypes.BindGroupLayoutEntry) uint64 {
	b := make([]byte, 0, len(entries)*16)
	for _, e := range entries {
		b = binary.LittleEndian.AppendUint32(b, e.Binding)
		b = binary.LittleEndian.AppendUint32(b, uint32(e.Visibility))
		switch {
		case e.Sampler != nil:
			b = append(b, 's', byte(e.Sampler.Type))
		case e.Texture != nil:
			b = append(b, 't', byte(e.Texture.SampleType), byte(e.Texture.ViewDimension))
		case e.Buffer != nil:
			b = append(b, 'b', byte(e.Buffer.Type))
			if e.Buffer.HasDynamicOffset {
				b = append(b, 'd')
			}
		}
	}
	return murmur3.Sum64(b)
}

// colorTarget is one enabled guest render target.
type colorTarget struct {
	slot      int
	format    gputypes.TextureFormat
	writeMask uint32
	blend     bool
	control   regs.CbBlendControl
}

// pipelineState is everything a render pipeline depends on.
type pipelineState struct {
	shaders       [regs.NumStages]*shader
	entries       [regs.NumStages][]gputypes.BindGroupLayoutEntry
	vertexBuffers []gputypes.VertexBufferLayout
	topology      gputypes.PrimitiveTopology
	colors        []colorTarget
	depthFormat   gputypes.TextureFormat
	depthControl  regs.DbDepthControl
}

type pipelineKey struct{ lo, hi uint64 }

func (st *pipelineState) key() pipelineKey {
	b := make([]byte, 0, 256)
	for s, sh := range st.shaders {
		if sh != nil {
			b = binary.LittleEndian.AppendUint64(b, sh.key.lo)
			b = binary.LittleEndian.AppendUint64(b, sh.key.hi)
		}
		b = binary.LittleEndian.AppendUint64(b, layoutKey(st.entries[s]))
	}
	for _, vb := range st.vertexBuffers {
		b = binary.LittleEndian.AppendUint64(b, vb.ArrayStride)
		b = append(b, byte(vb.StepMode))
		for _, a := range vb.Attributes {
			b = binary.LittleEndian.AppendUint32(b, uint32(a.Format))
			b = binary.LittleEndian.AppendUint64(b, a.Offset)
			b = binary.LittleEndian.AppendUint32(b, a.ShaderLocation)
		}
	}
	b = append(b, byte(st.topology))
	for _, c := range st.colors {
		b = append(b, byte(c.slot), byte(c.writeMask))
		b = binary.LittleEndian.AppendUint32(b, uint32(c.format))
		if c.blend {
			b = binary.LittleEndian.AppendUint32(b, uint32(c.control))
		}
	}
	b = binary.LittleEndian.AppendUint32(b, uint32(st.depthFormat))
	b = binary.LittleEndian.AppendUint32(b, uint32(st.depthControl))
	lo, hi := murmur3.Sum128(b)
	return pipelineKey{lo: lo, hi: hi}
}

// pipeline is a host render pipeline with its layout.
type pipeline struct {
	pipeline hal.RenderPipeline
	layout   hal.PipelineLayout
	groups   [regs.NumStages]hal.BindGroupLayout

	// targets and premultiplied have a bit per guest render target.
	targets            uint8
	premultiplied      uint8
	needsPremultiplied bool
}

// pipelineCache owns render pipelines and the layouts they share.
// Layouts are few and never evicted.
type pipelineCache struct {
	device hal.Device

	constLayout     hal.BindGroupLayout
	layouts         map[uint64]hal.BindGroupLayout
	pipelineLayouts map[[regs.NumStages]uint64]hal.PipelineLayout
	cache           *cache.Cache[pipelineKey, *pipeline]
}

func newPipelineCache(device hal.Device, size int, retire *retirer) *pipelineCache {
	return &pipelineCache{
		device:          device,
		layouts:         make(map[uint64]hal.BindGroupLayout),
		pipelineLayouts: make(map[[regs.NumStages]uint64]hal.PipelineLayout),
		cache: cache.New(size, func(_ pipelineKey, p *pipeline) {
			retire.pipeline(p)
		}),
	}
}

func (c *pipelineCache) constantsLayout() (hal.BindGroupLayout, error) {
	if c.constLayout != nil {
		return c.constLayout, nil
	}
	l, err := c.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "latte-constants-layout",
		Entries: []gputypes.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
			Buffer: &gputypes.BufferBindingLayout{
				Type:             gputypes.BufferBindingTypeUniform,
				HasDynamicOffset: true,
				MinBindingSize:   constBytes,
			},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("create constants layout: %w", err)
	}
	c.constLayout = l
	return l, nil
}

func (c *pipelineCache) groupLayout(s regs.Stage, entries []gputypes.BindGroupLayoutEntry) (hal.BindGroupLayout, uint64, error) {
	key := layoutKey(entries)
	if l, ok := c.layouts[key]; ok {
		return l, key, nil
	}
	l, err := c.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   fmt.Sprintf("latte-%v-layout-%016x", s, key),
		Entries: entries,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("create %v bind group layout: %w", s, err)
	}
	c.layouts[key] = l
	return l, key, nil
}

// get returns the pipeline for st, creating it on first use.
func (c *pipelineCache) get(st *pipelineState) (*pipeline, error) {
	return c.cache.Obtain(st.key(), func() (*pipeline, error) {
		return c.create(st)
	})
}

//nolint:funlen // pipeline descriptors are inherently verbose
func (c *pipelineCache) create(st *pipelineState) (*pipeline, error) {
	p := &pipeline{}
	var keys [regs.NumStages]uint64
	for s := range regs.NumStages {
		l, key, err := c.groupLayout(regs.Stage(s), st.entries[s])
		if err != nil {
			return nil, err
		}
		p.groups[s], keys[s] = l, key
	}
	constLayout, err := c.constantsLayout()
	if err != nil {
		return nil, err
	}
	layout, ok := c.pipelineLayouts[keys]
	if !ok {
		layout, err = c.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
			Label:            "latte-pipeline-layout",
			BindGroupLayouts: []hal.BindGroupLayout{p.groups[0], p.groups[1], p.groups[2], constLayout},
		})
		if err != nil {
			return nil, fmt.Errorf("create pipeline layout: %w", err)
		}
		c.pipelineLayouts[keys] = layout
	}
	p.layout = layout

	vs := st.shaders[regs.StageVertex]
	if gs := st.shaders[regs.StageGeometry]; gs != nil {
		vs = gs
	}
	desc := &hal.RenderPipelineDescriptor{
		Label:  fmt.Sprintf("latte-pipeline-%016x", vs.key.lo),
		Layout: layout,
		Vertex: hal.VertexState{
			Module:     vs.module,
			EntryPoint: vs.desc.EntryPoint,
			Buffers:    st.vertexBuffers,
		},
		Primitive: gputypes.PrimitiveState{
			Topology:  st.topology,
			FrontFace: gputypes.FrontFaceCCW,
			CullMode:  gputypes.CullModeNone,
		},
		Multisample: gputypes.DefaultMultisampleState(),
	}

	if ps := st.shaders[regs.StagePixel]; ps != nil {
		targets := make([]gputypes.ColorTargetState, 0, len(st.colors))
		for _, ct := range st.colors {
			t := gputypes.ColorTargetState{
				Format:    ct.format,
				WriteMask: gputypes.ColorWriteMask(ct.writeMask),
			}
			if ct.blend {
				b := blendState(ct.control)
				t.Blend = &b
			}
			targets = append(targets, t)
		}
		desc.Fragment = &hal.FragmentState{
			Module:     ps.module,
			EntryPoint: ps.desc.EntryPoint,
			Targets:    targets,
		}
	}

	if st.depthFormat != gputypes.TextureFormatUndefined {
		ds := &hal.DepthStencilState{
			Format:       st.depthFormat,
			DepthCompare: gputypes.CompareFunctionAlways,
			StencilFront: keepStencil,
			StencilBack:  keepStencil,
		}
		if st.depthControl.ZEnable() {
			ds.DepthCompare = compareFunction(st.depthControl.ZFunc())
			ds.DepthWriteEnabled = st.depthControl.ZWriteEnable()
		}
		desc.DepthStencil = ds
	}

	rp, err := c.device.CreateRenderPipeline(desc)
	if err != nil {
		return nil, fmt.Errorf("create render pipeline: %w", err)
	}
	p.pipeline = rp

	for _, ct := range st.colors {
		p.targets |= 1 << ct.slot
		if ct.blend && ct.control.ColorSrcBlend() == regs.BlendOne {
			p.premultiplied |= 1 << ct.slot
			p.needsPremultiplied = true
		}
	}
	logging.L().Debug("render: pipeline created", "label", desc.Label, "targets", len(st.colors))
	return p, nil
}

var keepStencil = hal.StencilFaceState{
	Compare:     gputypes.CompareFunctionAlways,
	FailOp:      hal.StencilOperationKeep,
	DepthFailOp: hal.StencilOperationKeep,
	PassOp:      hal.StencilOperationKeep,
}

func (c *pipelineCache) len() int { return c.cache.Len() }

func (c *pipelineCache) destroy() {
	c.cache.Purge()
	for k, l := range c.pipelineLayouts {
		c.device.DestroyPipelineLayout(l)
		delete(c.pipelineLayouts, k)
	}
	for k, l := range c.layouts {
		c.device.DestroyBindGroupLayout(l)
		delete(c.layouts, k)
	}
	if c.constLayout != nil {
		c.device.DestroyBindGroupLayout(c.constLayout)
		c.constLayout = nil
	}
}

func blendState(ctl regs.CbBlendControl) gputypes.BlendState {
	color := gputypes.BlendComponent{
		SrcFactor: blendFactor(ctl.ColorSrcBlend()),
		DstFactor: blendFactor(ctl.ColorDestBlend()),
		Operation: blendOperation(ctl.ColorCombFcn()),
	}
	alpha := color
	if ctl.SeparateAlpha() {
		alpha = gputypes.BlendComponent{
			SrcFactor: blendFactor(ctl.AlphaSrcBlend()),
			DstFactor: blendFactor(ctl.AlphaDestBlend()),
			Operation: blendOperation(ctl.AlphaCombFcn()),
		}
	}
	return gputypes.BlendState{Color: color, Alpha: alpha}
}

func blendFactor(f uint32) gputypes.BlendFactor {
	switch f {
	case regs.BlendZero:
		return gputypes.BlendFactorZero
	case regs.BlendSrcColor:
		return gputypes.BlendFactorSrc
	case regs.BlendOneMinusSrcColor:
		return gputypes.BlendFactorOneMinusSrc
	case regs.BlendSrcAlpha:
		return gputypes.BlendFactorSrcAlpha
	case regs.BlendOneMinusSrcAlpha:
		return gputypes.BlendFactorOneMinusSrcAlpha
	case regs.BlendDstAlpha:
		return gputypes.BlendFactorDstAlpha
	case regs.BlendOneMinusDstAlpha:
		return gputypes.BlendFactorOneMinusDstAlpha
	case regs.BlendDstColor:
		return gputypes.BlendFactorDst
	case regs.BlendOneMinusDstColor:
		return gputypes.BlendFactorOneMinusDst
	case regs.BlendSrcAlphaSaturate:
		return gputypes.BlendFactorSrcAlphaSaturated
	case regs.BlendConstantColor, regs.BlendConstantAlpha:
		return gputypes.BlendFactorConstant
	case regs.BlendOneMinusConstantColor, regs.BlendOneMinusConstantAlpha:
		return gputypes.BlendFactorOneMinusConstant
	default:
		return gputypes.BlendFactorOne
	}
}

func blendOperation(c uint32) gputypes.BlendOperation {
	switch c {
	case regs.CombSrcMinusDst:
		return gputypes.BlendOperationSubtract
	case regs.CombDstMinusSrc:
		return gputypes.BlendOperationReverseSubtract
	case regs.CombMinDstSrc:
		return gputypes.BlendOperationMin
	case regs.CombMaxDstSrc:
		return gputypes.BlendOperationMax
	default:
		return gputypes.BlendOperationAdd
	}
}
