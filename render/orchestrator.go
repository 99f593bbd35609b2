// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/latte/format"
	"github.com/gogpu/latte/internal/logging"
	"github.com/gogpu/latte/mem"
	"github.com/gogpu/latte/regs"
	"github.com/gogpu/latte/surface"
)

// Outcome reports what happened to one draw.
type Outcome struct {
	// Drawn is true when the draw was recorded.
	Drawn bool
	// Gate and Reason describe the failed gate of a dropped draw.
	Gate   Gate
	Reason error
}

// Stats counts orchestrator activity since creation.
type Stats struct {
	Draws       uint64
	OpaqueDraws uint64
	Skipped     [NumGates]uint64

	BufferUploads uint64
	BufferHits    uint64

	Shaders        int
	ShaderHitRate  float64
	Pipelines      int
	PendingRetires int
}

// Orchestrator turns guest draw packets into host draws.
//
// Orchestrator is not safe for concurrent use.
type Orchestrator struct {
	device   hal.Device
	queue    hal.Queue
	regs     *regs.File
	mem      mem.View
	surfaces *surface.Cache

	retire    *retirer
	shaders   *shaderCache
	pipelines *pipelineCache
	samplers  *samplerCache
	data      *dataCache
	constants *ring
	args      *ring
	opaque    *opaquePass

	uniformLimit int

	stats  Stats
	closed bool
}

// New creates an orchestrator reading guest state from file and view.
// Render targets and textures are resolved through surfaces.
func New(device hal.Device, queue hal.Queue, file *regs.File, view mem.View, surfaces *surface.Cache, tr ShaderTranslator, cfg Config) *Orchestrator {
	cfg = cfg.withDefaults()
	retire := newRetirer(device)
	return &Orchestrator{
		device:    device,
		queue:     queue,
		regs:      file,
		mem:       view,
		surfaces:  surfaces,
		retire:    retire,
		shaders:   newShaderCache(device, tr, cfg.ShaderCacheSize, retire),
		pipelines: newPipelineCache(device, cfg.PipelineCacheSize, retire),
		samplers:  newSamplerCache(device, cfg.SamplerCacheSize, retire),
		data:      newDataCache(device, queue, retire),
		constants: newRing(device, "latte-constants",
			gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst, cfg.ConstantSlots),
		args: newRing(device, "latte-opaque-args",
			gputypes.BufferUsageStorage|gputypes.BufferUsageIndirect|gputypes.BufferUsageCopyDst, cfg.ConstantSlots),
		uniformLimit: cfg.MaxUniformBuffers,
	}
}

// fatalError marks gate errors that must abort the session instead of
// dropping the draw.
type fatalError struct{ err error }

func (e *fatalError) Error() string { return e.err.Error() }
func (e *fatalError) Unwrap() error { return e.err }

func fatal(err error) error { return &fatalError{err: err} }

// boundTarget is a resolved render target.
type boundTarget struct {
	req  surface.Request
	buf  *surface.Buffer
	surf *surface.Surface
	// color only
	slot      int
	writeMask uint32
}

type vertexBinding struct {
	slot uint32
	buf  hal.Buffer
}

// draw is the state the gates build up for one draw.
type draw struct {
	enc        hal.CommandEncoder
	init       regs.VgtDrawInitiator
	numIndices uint32
	indices    []byte
	opaque     bool

	shaders   [regs.NumStages]*shader
	dx9       bool
	streamOut uint32

	colors []boundTarget
	depth  *boundTarget
	width  uint32
	height uint32

	pipeline *pipeline
	entries  [regs.NumStages][]gputypes.BindGroupEntry

	vertexBuffers []vertexBinding
	plan          indexPlan
	vp            viewport
	sc            scissor

	counter   *dataBuffer
	argsChunk *ringChunk
	argsOff   uint32
}

type gateFunc func(*Orchestrator, *draw) error

var gates = [NumGates]gateFunc{
	GateVertexShader:     (*Orchestrator).vertexShaderGate,
	GateGeometryShader:   (*Orchestrator).geometryShaderGate,
	GatePixelShader:      (*Orchestrator).pixelShaderGate,
	GateRenderPass:       (*Orchestrator).renderPassGate,
	GateFramebuffer:      (*Orchestrator).framebufferGate,
	GatePipeline:         (*Orchestrator).pipelineGate,
	GateSamplers:         (*Orchestrator).samplersGate,
	GateTextures:         (*Orchestrator).texturesGate,
	GateAttribBuffers:    (*Orchestrator).attribBuffersGate,
	GateShaderBuffers:    (*Orchestrator).shaderBuffersGate,
	GateIndices:          (*Orchestrator).indicesGate,
	GateViewportScissor:  (*Orchestrator).viewportScissorGate,
	GateStreamOutBuffers: (*Orchestrator).streamOutGate,
}

// IssueIndexedDraw validates and records one draw into enc. indices
// holds numIndices guest indices for DMA draws and is nil for
// auto-indexed and opaque draws.
//
// A draw rejected by a gate returns an Outcome naming the gate and a nil
// error. The error is non-nil only for conditions the translation cannot
// recover from.
func (o *Orchestrator) IssueIndexedDraw(enc hal.CommandEncoder, init regs.VgtDrawInitiator, numIndices uint32, indices []byte) (Outcome, error) {
	if o.closed {
		return Outcome{}, ErrClosed
	}
	d := &draw{
		enc:        enc,
		init:       init,
		numIndices: numIndices,
		indices:    indices,
		opaque:     init.UseOpaque(),
	}
	if init.SourceSelect() == regs.SourceAutoIndex {
		d.indices = nil
	}
	for g, fn := range gates {
		err := fn(o, d)
		if err == nil {
			continue
		}
		var fe *fatalError
		if errors.As(err, &fe) {
			return Outcome{}, fmt.Errorf("render: %v: %w", Gate(g), fe.err)
		}
		o.stats.Skipped[g]++
		logging.L().Debug(fmt.Sprintf("render: skipped draw due to a %v error", Gate(g)), "err", err)
		return Outcome{Gate: Gate(g), Reason: err}, nil
	}
	if err := o.record(enc, d); err != nil {
		return Outcome{}, err
	}
	o.stats.Draws++
	if d.opaque {
		o.stats.OpaqueDraws++
	}
	return Outcome{Drawn: true}, nil
}

func (o *Orchestrator) program(s regs.Stage) ([]byte, error) {
	addr := regs.Get[regs.Address](o.regs, regs.PgmStart(s)).Addr()
	size := o.regs.Read(regs.PgmSize(s)) << 3
	if addr == 0 || size == 0 {
		return nil, ErrNoProgram
	}
	p := o.mem.Bytes(addr, size)
	if uint32(len(p)) < size {
		return nil, fmt.Errorf("%w: program at %#x is not mapped", ErrNoProgram, addr)
	}
	return p, nil
}

func (o *Orchestrator) shaderGate(d *draw, s regs.Stage) error {
	program, err := o.program(s)
	if err != nil {
		return err
	}
	sh, err := o.shaders.get(s, program, o.regs)
	if err != nil {
		return err
	}
	d.shaders[s] = sh
	return nil
}

func (o *Orchestrator) vertexShaderGate(d *draw) error {
	return o.shaderGate(d, regs.StageVertex)
}

func (o *Orchestrator) geometryShaderGate(d *draw) error {
	if !regs.Get[regs.VgtGsMode](o.regs, regs.VGT_GS_MODE).Enabled() {
		return nil
	}
	return o.shaderGate(d, regs.StageGeometry)
}

func (o *Orchestrator) pixelShaderGate(d *draw) error {
	if regs.Get[regs.PaClClipCntl](o.regs, regs.PA_CL_CLIP_CNTL).RasteriserDisable() {
		return nil
	}
	return o.shaderGate(d, regs.StagePixel)
}

func (o *Orchestrator) renderPassGate(d *draw) error {
	mask := regs.Get[regs.CbTargetMask](o.regs, regs.CB_TARGET_MASK)
	for n := range regs.MaxRenderTargets {
		writeMask := mask.Target(n)
		base := regs.Get[regs.Address](o.regs, regs.ColorBase(n)).Addr()
		info := regs.Get[regs.CbColorInfo](o.regs, regs.ColorInfo(n))
		if writeMask == 0 || base == 0 || info.Format() == format.FmtInvalid {
			continue
		}
		size := regs.Get[regs.CbColorSize](o.regs, regs.ColorSize(n))
		d.colors = append(d.colors, boundTarget{
			slot:      n,
			writeMask: writeMask,
			req: surface.Request{
				BaseAddress: base,
				Pitch:       size.Pitch(),
				Width:       size.Pitch(),
				Height:      size.Height(),
				Depth:       1,
				Dim:         surface.Dim2D,
				Format:      info.Descriptor(),
				TileMode:    info.ArrayMode(),
				ForWrite:    true,
			},
		})
	}

	base := regs.Get[regs.Address](o.regs, regs.DB_DEPTH_BASE).Addr()
	info := regs.Get[regs.DbDepthInfo](o.regs, regs.DB_DEPTH_INFO)
	if desc, ok := info.Descriptor(); ok && base != 0 {
		size := regs.Get[regs.CbColorSize](o.regs, regs.DB_DEPTH_SIZE)
		d.depth = &boundTarget{req: surface.Request{
			BaseAddress: base,
			Pitch:       size.Pitch(),
			Width:       size.Pitch(),
			Height:      size.Height(),
			Depth:       1,
			Dim:         surface.Dim2D,
			Format:      desc,
			IsDepth:     true,
			TileMode:    info.ArrayMode(),
			ForWrite:    true,
		}}
	}

	if len(d.colors) == 0 && d.depth == nil {
		return ErrNoTargets
	}
	return nil
}

// framebufferGate resolves every render target. Copies and uploads the
// surface cache needs are recorded ahead of the render pass and stay in
// the stream even if a later gate drops the draw.
func (o *Orchestrator) framebufferGate(d *draw) error {
	extent := func(t *boundTarget) {
		if d.width == 0 || t.surf.Width < d.width {
			d.width = t.surf.Width
		}
		if d.height == 0 || t.surf.Height < d.height {
			d.height = t.surf.Height
		}
	}
	for i := range d.colors {
		t := &d.colors[i]
		buf, surf, err := o.surfaces.Resolve(d.enc, t.req)
		if err != nil {
			return fatal(fmt.Errorf("color target %d: %w", t.slot, err))
		}
		t.buf, t.surf = buf, surf
		extent(t)
	}
	if d.depth != nil {
		buf, surf, err := o.surfaces.Resolve(d.enc, d.depth.req)
		if err != nil {
			return fatal(fmt.Errorf("depth target: %w", err))
		}
		d.depth.buf, d.depth.surf = buf, surf
		extent(d.depth)
	}
	return nil
}

// streamOutMask returns the stream-out buffers the vertex shader writes
// that are enabled in the registers.
func (o *Orchestrator) streamOutMask(d *draw) uint32 {
	vs := d.shaders[regs.StageVertex]
	if vs == nil || vs.desc.StreamOut == 0 {
		return 0
	}
	if !regs.Get[regs.VgtStrmoutEn](o.regs, regs.VGT_STRMOUT_EN).Streamout() {
		return 0
	}
	en := regs.Get[regs.VgtStrmoutBufferEn](o.regs, regs.VGT_STRMOUT_BUFFER_EN)
	var mask uint32
	for n := range regs.MaxStreamOutBuffers {
		if vs.desc.StreamOut&(1<<n) != 0 && en.Buffer(n) {
			mask |= 1 << n
		}
	}
	return mask
}

func (o *Orchestrator) vertexLayouts(d *draw) []gputypes.VertexBufferLayout {
	vs := d.shaders[regs.StageVertex]
	layouts := make([]gputypes.VertexBufferLayout, 0, len(vs.desc.AttribBuffers))
	for _, ab := range vs.desc.AttribBuffers {
		stride := regs.Get[regs.SqVtxResourceWord2](o.regs, regs.AttribResource(ab.Slot, 2)).Stride()
		layouts = append(layouts, gputypes.VertexBufferLayout{
			ArrayStride: uint64(stride),
			StepMode:    ab.StepMode,
			Attributes:  ab.Attributes,
		})
	}
	return layouts
}

func (o *Orchestrator) pipelineGate(d *draw) error {
	prim := regs.Get[regs.VgtPrimitiveType](o.regs, regs.VGT_PRIMITIVE_TYPE).PrimType()
	top, _, err := topology(prim)
	if err != nil {
		return err
	}
	d.dx9 = regs.Get[regs.SqConfig](o.regs, regs.SQ_CONFIG).DX9Consts()
	d.streamOut = o.streamOutMask(d)

	st := &pipelineState{
		shaders:       d.shaders,
		vertexBuffers: o.vertexLayouts(d),
		topology:      top,
		depthControl:  regs.Get[regs.DbDepthControl](o.regs, regs.DB_DEPTH_CONTROL),
	}
	for s, sh := range d.shaders {
		if sh != nil {
			st.entries[s] = stageEntries(regs.Stage(s), sh.desc, d.dx9, d.streamOut)
		}
	}
	if err := checkUniformLimit(&st.entries, o.uniformLimit); err != nil {
		return err
	}
	blend := regs.Get[regs.CbColorControl](o.regs, regs.CB_COLOR_CONTROL).TargetBlendEnable()
	for _, t := range d.colors {
		st.colors = append(st.colors, colorTarget{
			slot:      t.slot,
			format:    t.buf.HostFormat,
			writeMask: t.writeMask,
			blend:     blend&(1<<t.slot) != 0,
			control:   regs.Get[regs.CbBlendControl](o.regs, regs.BlendControl(t.slot)),
		})
	}
	if d.depth != nil {
		st.depthFormat = d.depth.buf.HostFormat
	}
	p, err := o.pipelines.get(st)
	if err != nil {
		return err
	}
	d.pipeline = p
	return nil
}

func (o *Orchestrator) samplersGate(d *draw) error {
	for s, sh := range d.shaders {
		if sh == nil {
			continue
		}
		for i, u := range sh.desc.Samplers {
			if !u.Used {
				continue
			}
			w0 := regs.Get[regs.SqTexSamplerWord0](o.regs, regs.TexSampler(regs.Stage(s), i, 0))
			w1 := regs.Get[regs.SqTexSamplerWord1](o.regs, regs.TexSampler(regs.Stage(s), i, 1))
			smp, err := o.samplers.get(w0, w1, u.Comparison)
			if err != nil {
				return err
			}
			d.entries[s] = append(d.entries[s], gputypes.BindGroupEntry{
				Binding:  samplerBinding + uint32(i),
				Resource: gputypes.SamplerBinding{Sampler: smp.NativeHandle()},
			})
		}
	}
	return nil
}

// textureRequest decodes the resource words of a texture slot.
func (o *Orchestrator) textureRequest(s regs.Stage, slot int) surface.Request {
	w0 := regs.Get[regs.SqTexResourceWord0](o.regs, regs.TexResource(s, slot, 0))
	w1 := regs.Get[regs.SqTexResourceWord1](o.regs, regs.TexResource(s, slot, 1))
	w2 := regs.Get[regs.Address](o.regs, regs.TexResource(s, slot, 2))
	w4 := regs.Get[regs.SqTexResourceWord4](o.regs, regs.TexResource(s, slot, 4))
	return surface.Request{
		BaseAddress: w2.Addr(),
		Pitch:       w0.Pitch(),
		Width:       w0.Width(),
		Height:      w1.Height(),
		Depth:       w1.Depth(),
		Dim:         surface.Dim(w0.Dim()),
		Format: format.Descriptor{
			Format:    w1.DataFormat(),
			Comp:      w4.FormatCompX(),
			NumFormat: w4.NumFormatAll(),
			Degamma:   w4.ForceDegamma(),
		},
		TileMode: w0.TileMode(),
	}
}

func (o *Orchestrator) texturesGate(d *draw) error {
	for s, sh := range d.shaders {
		if sh == nil {
			continue
		}
		for i, u := range sh.desc.Textures {
			if !u.Used {
				continue
			}
			req := o.textureRequest(regs.Stage(s), i)
			if req.BaseAddress == 0 {
				return fmt.Errorf("%w: %v texture %d", ErrMissingBuffer, regs.Stage(s), i)
			}
			_, surf, err := o.surfaces.Resolve(d.enc, req)
			if err != nil {
				return fatal(fmt.Errorf("%v texture %d: %w", regs.Stage(s), i, err))
			}
			if u.ViewDim != gputypes.TextureViewDimensionUndefined && surf.ViewDimension != u.ViewDim {
				return fmt.Errorf("%w: %v texture %d is %v, shader reads %v",
					ErrTextureDimension, regs.Stage(s), i, surf.ViewDimension, u.ViewDim)
			}
			d.entries[s] = append(d.entries[s], gputypes.BindGroupEntry{
				Binding:  textureBinding + uint32(i),
				Resource: gputypes.TextureViewBinding{TextureView: surf.View.NativeHandle()},
			})
		}
	}
	return nil
}

// guestBuffer uploads size bytes of guest memory at addr.
func (o *Orchestrator) guestBuffer(addr, size uint32, usage gputypes.BufferUsage) (*dataBuffer, error) {
	data := o.mem.Bytes(addr, size)
	if data == nil {
		return nil, fmt.Errorf("%w: %#x is not mapped", ErrMissingBuffer, addr)
	}
	b, err := o.data.upload(dataKey{kind: kindMemory, addr: addr, size: size, usage: usage}, data)
	if err != nil {
		return nil, fatal(err)
	}
	return b, nil
}

func (o *Orchestrator) attribBuffersGate(d *draw) error {
	vs := d.shaders[regs.StageVertex]
	for i, ab := range vs.desc.AttribBuffers {
		addr := o.regs.Read(regs.AttribResource(ab.Slot, 0))
		size := regs.Get[regs.SqVtxResourceWord1](o.regs, regs.AttribResource(ab.Slot, 1)).Size()
		if addr == 0 {
			return fmt.Errorf("%w: attribute buffer %d", ErrMissingBuffer, ab.Slot)
		}
		b, err := o.guestBuffer(addr, size, gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
		if err != nil {
			return err
		}
		d.vertexBuffers = append(d.vertexBuffers, vertexBinding{slot: uint32(i), buf: b.buf})
	}
	return nil
}

func (o *Orchestrator) shaderBuffersGate(d *draw) error {
	const usage = gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst
	for s, sh := range d.shaders {
		if sh == nil {
			continue
		}
		stage := regs.Stage(s)
		if registerFileStage(stage, d.dx9) {
			if !sh.desc.UsesRegisterFile {
				continue
			}
			words := o.regs.Words(regs.AluConstant(stage, 0), regs.NumAluConstants*4)
			data := make([]byte, 0, len(words)*4)
			for _, w := range words {
				data = binary.LittleEndian.AppendUint32(data, w)
			}
			key := dataKey{kind: kindRegisterFile, stage: stage, size: uint32(len(data)), usage: usage}
			b, err := o.data.upload(key, data)
			if err != nil {
				return fatal(err)
			}
			d.entries[s] = append(d.entries[s], gputypes.BindGroupEntry{
				Binding:  bufferBinding,
				Resource: gputypes.BufferBinding{Buffer: b.buf.NativeHandle(), Size: b.size},
			})
			continue
		}
		for i := range regs.MaxUniformBlocks {
			if sh.desc.UniformBlocks&(1<<i) == 0 {
				continue
			}
			addr := regs.Get[regs.Address](o.regs, regs.AluConstCache(stage, i)).Addr()
			size := regs.Get[regs.SqAluConstBufferSize](o.regs, regs.AluConstBufferSize(stage, i)).Bytes()
			if addr == 0 || size == 0 {
				return fmt.Errorf("%w: %v uniform block %d", ErrMissingBuffer, stage, i)
			}
			b, err := o.guestBuffer(addr, size, usage)
			if err != nil {
				return err
			}
			d.entries[s] = append(d.entries[s], gputypes.BindGroupEntry{
				Binding:  bufferBinding + uint32(i),
				Resource: gputypes.BufferBinding{Buffer: b.buf.NativeHandle(), Size: b.size},
			})
		}
	}
	return nil
}

func (o *Orchestrator) indicesGate(d *draw) error {
	prim := regs.Get[regs.VgtPrimitiveType](o.regs, regs.VGT_PRIMITIVE_TYPE).PrimType()
	indexType := regs.Get[regs.VgtDmaIndexType](o.regs, regs.VGT_DMA_INDEX_TYPE)
	plan, err := planIndices(prim, indexType, d.numIndices, d.indices, d.opaque)
	if err != nil {
		return err
	}
	d.plan = plan
	return nil
}

func (o *Orchestrator) viewportScissorGate(d *draw) error {
	vp, sc, err := viewportScissor(o.regs, d.width, d.height)
	if err != nil {
		return err
	}
	d.vp, d.sc = vp, sc
	return nil
}

func (o *Orchestrator) streamOutGate(d *draw) error {
	for n := range regs.MaxStreamOutBuffers {
		if d.streamOut&(1<<n) == 0 {
			continue
		}
		addr := regs.Get[regs.Address](o.regs, regs.StrmoutBufferBase(n)).Addr()
		size := o.regs.Read(regs.StrmoutBufferSize(n)) << 2
		if addr == 0 || size == 0 {
			return fmt.Errorf("%w: stream-out buffer %d", ErrMissingBuffer, n)
		}
		b, err := o.data.ensure(dataKey{
			kind:  kindStreamOut,
			addr:  addr,
			size:  size,
			usage: gputypes.BufferUsageStorage | gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst | gputypes.BufferUsageCopySrc,
		})
		if err != nil {
			return fatal(err)
		}
		d.entries[regs.StageVertex] = append(d.entries[regs.StageVertex], gputypes.BindGroupEntry{
			Binding:  streamOutBinding + uint32(n),
			Resource: gputypes.BufferBinding{Buffer: b.buf.NativeHandle(), Size: b.size},
		})
	}
	if !d.opaque {
		return nil
	}

	if o.opaque == nil {
		p, err := newOpaquePass(o.device)
		if err != nil {
			return err
		}
		o.opaque = p
	}
	filled := o.regs.Read(regs.VGT_STRMOUT_DRAW_OPAQUE_BUFFER_FILLED_SIZE)
	counter, err := o.data.upload(dataKey{
		kind:  kindCounter,
		addr:  uint32(regs.VGT_STRMOUT_DRAW_OPAQUE_BUFFER_FILLED_SIZE),
		size:  4,
		usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
	}, binary.LittleEndian.AppendUint32(nil, filled))
	if err != nil {
		return fatal(err)
	}
	chunk, off, err := o.args.alloc()
	if err != nil {
		return fatal(err)
	}
	stride := o.regs.Read(regs.VGT_STRMOUT_DRAW_OPAQUE_VERTEX_STRIDE) << 2
	if err := o.queue.WriteBuffer(chunk.buf, uint64(off+opaqueParamsOffset), opaqueParams(stride)); err != nil {
		return fatal(fmt.Errorf("write opaque params: %w", err))
	}
	d.counter, d.argsChunk, d.argsOff = counter, chunk, off
	return nil
}

// record writes the draw into enc. Every gate has passed.
//
//nolint:funlen // mirrors the fixed command order of a draw
func (o *Orchestrator) record(enc hal.CommandEncoder, d *draw) error {
	if d.opaque {
		enc.TransitionBuffers([]hal.BufferBarrier{
			{Buffer: d.counter.buf, Usage: hal.BufferUsageTransition{
				OldUsage: gputypes.BufferUsageCopyDst, NewUsage: gputypes.BufferUsageStorage,
			}},
			{Buffer: d.argsChunk.buf, Usage: hal.BufferUsageTransition{
				OldUsage: gputypes.BufferUsageCopyDst, NewUsage: gputypes.BufferUsageStorage,
			}},
		})
		group, err := o.opaque.bindGroup(d.counter, d.argsChunk.buf, d.argsOff)
		if err != nil {
			return fmt.Errorf("render: opaque args bind group: %w", err)
		}
		o.retire.bindGroup(group)
		o.opaque.record(enc, group)
		enc.TransitionBuffers([]hal.BufferBarrier{{
			Buffer: d.argsChunk.buf,
			Usage: hal.BufferUsageTransition{
				OldUsage: gputypes.BufferUsageStorage, NewUsage: gputypes.BufferUsageIndirect,
			},
		}})
	}

	var index hal.Buffer
	if d.plan.indexed {
		buf, err := o.device.CreateBuffer(&hal.BufferDescriptor{
			Label: "latte-indices",
			Size:  uint64(len(d.plan.data)),
			Usage: gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("render: create index buffer: %w", err)
		}
		o.retire.buffer(buf)
		if err := o.queue.WriteBuffer(buf, 0, d.plan.data); err != nil {
			return fmt.Errorf("render: write index buffer: %w", err)
		}
		index = buf
	}

	var groups [regs.NumStages]hal.BindGroup
	for s, entries := range d.entries {
		if len(entries) == 0 {
			continue
		}
		g, err := o.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:   fmt.Sprintf("latte-%v-group", regs.Stage(s)),
			Layout:  d.pipeline.groups[s],
			Entries: entries,
		})
		if err != nil {
			return fmt.Errorf("render: %v bind group: %w", regs.Stage(s), err)
		}
		o.retire.bindGroup(g)
		groups[s] = g
	}

	constGroup, constOff, err := o.writeConstants(d)
	if err != nil {
		return err
	}

	desc := &hal.RenderPassDescriptor{Label: "latte-draw"}
	for _, t := range d.colors {
		desc.ColorAttachments = append(desc.ColorAttachments, hal.RenderPassColorAttachment{
			View:    t.surf.View,
			LoadOp:  gputypes.LoadOpLoad,
			StoreOp: gputypes.StoreOpStore,
		})
	}
	if d.depth != nil {
		desc.DepthStencilAttachment = depthAttachment(d.depth.surf.View, d.depth.buf.HostFormat)
	}

	pass := enc.BeginRenderPass(desc)
	pass.SetPipeline(d.pipeline.pipeline)
	for _, vb := range d.vertexBuffers {
		pass.SetVertexBuffer(vb.slot, vb.buf, 0)
	}
	for s, g := range groups {
		if g != nil {
			pass.SetBindGroup(uint32(s), g, nil)
		}
	}
	pass.SetBindGroup(constantsGroup, constGroup, []uint32{constOff})
	pass.SetViewport(d.vp.x, d.vp.y, d.vp.width, d.vp.height, d.vp.minDepth, d.vp.maxDepth)
	pass.SetScissorRect(d.sc.x, d.sc.y, d.sc.width, d.sc.height)

	instances := max(o.regs.Read(regs.VGT_DMA_NUM_INSTANCES), 1)
	baseVertex := int32(o.regs.Read(regs.SQ_VTX_BASE_VTX_LOC))
	baseInstance := o.regs.Read(regs.SQ_VTX_START_INST_LOC)
	switch {
	case d.opaque:
		pass.DrawIndirect(d.argsChunk.buf, uint64(d.argsOff))
	case d.plan.indexed:
		pass.SetIndexBuffer(index, d.plan.format, 0)
		pass.DrawIndexed(d.plan.count, instances, 0, baseVertex, baseInstance)
	default:
		pass.Draw(d.plan.count, instances, uint32(baseVertex), baseInstance)
	}
	pass.End()
	return nil
}

// writeConstants fills a constants slot for d and returns its bind
// group and dynamic offset.
func (o *Orchestrator) writeConstants(d *draw) (hal.BindGroup, uint32, error) {
	var c drawConstants
	c.windowScaleBias, c.depthRemap = vertexConstants(o.regs, d.vp)
	c.alphaTest, c.alphaRef, c.premultiplyMask = pixelConstants(o.regs, d.pipeline)

	chunk, off, err := o.constants.alloc()
	if err != nil {
		return nil, 0, err
	}
	if err := o.queue.WriteBuffer(chunk.buf, uint64(off), c.bytes()); err != nil {
		return nil, 0, fmt.Errorf("render: write constants: %w", err)
	}
	if chunk.group == nil {
		layout, err := o.pipelines.constantsLayout()
		if err != nil {
			return nil, 0, err
		}
		g, err := o.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:  "latte-constants",
			Layout: layout,
			Entries: []gputypes.BindGroupEntry{{
				Binding:  0,
				Resource: gputypes.BufferBinding{Buffer: chunk.buf.NativeHandle(), Size: constBytes},
			}},
		})
		if err != nil {
			return nil, 0, fmt.Errorf("render: constants bind group: %w", err)
		}
		chunk.group = g
	}
	return chunk.group, off, nil
}

// FreeMemory drops host buffers backed by the guest range.
func (o *Orchestrator) FreeMemory(addr, size uint32) {
	o.data.free(addr, size)
}

// depthAttachment keeps the depth target's contents across passes.
// Stencil ops are set only for formats with a stencil aspect.
func depthAttachment(view hal.TextureView, f gputypes.TextureFormat) *hal.RenderPassDepthStencilAttachment {
	a := &hal.RenderPassDepthStencilAttachment{
		View:         view,
		DepthLoadOp:  gputypes.LoadOpLoad,
		DepthStoreOp: gputypes.StoreOpStore,
	}
	if f.HasStencil() {
		a.StencilLoadOp = gputypes.LoadOpLoad
		a.StencilStoreOp = gputypes.StoreOpStore
	}
	return a
}

// Submitted ties everything recorded since the last call to submission
// index. Retired objects and ring slots are held until Reclaim reports
// the submission complete.
func (o *Orchestrator) Submitted(index uint64) {
	o.retire.submitted(index)
	o.constants.submitted(index)
	o.args.submitted(index)
}

// Reclaim releases what submissions up to completed were holding.
func (o *Orchestrator) Reclaim(completed uint64) {
	o.retire.reclaim(completed)
	o.constants.reclaim(completed)
	o.args.reclaim(completed)
}

// Stats returns a snapshot of the counters.
func (o *Orchestrator) Stats() Stats {
	s := o.stats
	s.BufferUploads = o.data.uploads
	s.BufferHits = o.data.hits
	sh := o.shaders.stats()
	s.Shaders = sh.Len
	s.ShaderHitRate = sh.HitRate
	s.Pipelines = o.pipelines.len()
	s.PendingRetires = o.retire.len()
	return s
}

// Close destroys every host object. The device must be idle.
func (o *Orchestrator) Close() {
	if o.closed {
		return
	}
	o.closed = true
	o.shaders.destroy()
	o.pipelines.destroy()
	o.samplers.destroy()
	o.retire.drain()
	o.data.destroy()
	o.constants.destroy()
	o.args.destroy()
	if o.opaque != nil {
		o.opaque.destroy()
		o.opaque = nil
	}
}
