package haltest

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// Encoder records commands into a Log and executes copies between
// memory-backed resources immediately.
type Encoder struct {
	noop.CommandEncoder
	log *Log
}

// TransitionBuffers records the barriers.
func (e *Encoder) TransitionBuffers(barriers []hal.BufferBarrier) {
	e.log.add(Event{Kind: TransitionBuffers, Buffers: append([]hal.BufferBarrier(nil), barriers...)})
}

// TransitionTextures records the call.
func (e *Encoder) TransitionTextures(_ []hal.TextureBarrier) {
	e.log.add(Event{Kind: TransitionTextures})
}

// CopyBufferToBuffer copies between memory-backed buffers.
func (e *Encoder) CopyBufferToBuffer(src, dst hal.Buffer, regions []hal.BufferCopy) {
	e.log.add(Event{Kind: CopyBufferToBuffer, Buffer: dst})
	s, ok1 := src.(*Buffer)
	d, ok2 := dst.(*Buffer)
	if !ok1 || !ok2 {
		return
	}
	for _, r := range regions {
		copy(d.Data[r.DstOffset:r.DstOffset+r.Size], s.Data[r.SrcOffset:])
	}
}

// CopyBufferToTexture copies buffer rows into a memory-backed texture.
func (e *Encoder) CopyBufferToTexture(src hal.Buffer, dst hal.Texture, regions []hal.BufferTextureCopy) {
	e.log.add(Event{Kind: CopyBufferToTexture, Buffer: src, Textures: [2]hal.Texture{nil, dst}})
	s, ok1 := src.(*Buffer)
	d, ok2 := dst.(*Texture)
	if !ok1 || !ok2 {
		return
	}
	for _, r := range regions {
		copyIntoTexture(d, r.TextureBase.Origin, s.Data, r.BufferLayout, r.Size)
	}
}

// CopyTextureToBuffer copies texture rows into a memory-backed buffer.
func (e *Encoder) CopyTextureToBuffer(src hal.Texture, dst hal.Buffer, regions []hal.BufferTextureCopy) {
	e.log.add(Event{Kind: CopyTextureToBuffer, Buffer: dst, Textures: [2]hal.Texture{src, nil}})
	s, ok1 := src.(*Texture)
	d, ok2 := dst.(*Buffer)
	if !ok1 || !ok2 {
		return
	}
	for _, r := range regions {
		copyFromTexture(s, r.TextureBase.Origin, d.Data, r.BufferLayout, r.Size)
	}
}

// CopyTextureToTexture copies a region between memory-backed textures of
// the same format.
func (e *Encoder) CopyTextureToTexture(src, dst hal.Texture, regions []hal.TextureCopy) {
	e.log.add(Event{Kind: CopyTextureToTexture, Textures: [2]hal.Texture{src, dst}})
	s, ok1 := src.(*Texture)
	d, ok2 := dst.(*Texture)
	if !ok1 || !ok2 {
		return
	}
	bw, bh, size := blockDims(s.Desc.Format)
	for _, r := range regions {
		rowBytes := int((r.Size.Width + bw - 1) / bw * size)
		rows := (r.Size.Height + bh - 1) / bh
		for z := range max(r.Size.DepthOrArrayLayers, 1) {
			for y := range rows {
				so := s.offset(r.SrcBase.Origin.X, r.SrcBase.Origin.Y+y*bh, r.SrcBase.Origin.Z+z)
				do := d.offset(r.DstBase.Origin.X, r.DstBase.Origin.Y+y*bh, r.DstBase.Origin.Z+z)
				copy(d.Data[do:do+rowBytes], s.Data[so:so+rowBytes])
			}
		}
	}
}

// BeginRenderPass records the pass and returns a recording pass encoder.
func (e *Encoder) BeginRenderPass(desc *hal.RenderPassDescriptor) hal.RenderPassEncoder {
	e.log.add(Event{Kind: BeginRenderPass, Index: uint32(len(desc.ColorAttachments))})
	return &RenderPass{log: e.log}
}

// BeginComputePass records the pass and returns a recording pass encoder.
func (e *Encoder) BeginComputePass(_ *hal.ComputePassDescriptor) hal.ComputePassEncoder {
	e.log.add(Event{Kind: BeginComputePass})
	return &ComputePass{log: e.log}
}

// RenderPass records render pass commands.
type RenderPass struct {
	noop.RenderPassEncoder
	log *Log
}

func (p *RenderPass) End() { p.log.add(Event{Kind: EndRenderPass}) }

func (p *RenderPass) SetPipeline(_ hal.RenderPipeline) { p.log.add(Event{Kind: SetPipeline}) }

func (p *RenderPass) SetBindGroup(index uint32, _ hal.BindGroup, offsets []uint32) {
	p.log.add(Event{Kind: SetBindGroup, Index: index, Offsets: append([]uint32(nil), offsets...)})
}

func (p *RenderPass) SetVertexBuffer(slot uint32, buf hal.Buffer, _ uint64) {
	p.log.add(Event{Kind: SetVertexBuffer, Index: slot, Buffer: buf})
}

func (p *RenderPass) SetIndexBuffer(buf hal.Buffer, f gputypes.IndexFormat, _ uint64) {
	p.log.add(Event{Kind: SetIndexBuffer, Index: uint32(f), Buffer: buf})
}

func (p *RenderPass) SetViewport(x, y, w, h, minDepth, maxDepth float32) {
	p.log.add(Event{Kind: SetViewport, Args: []float32{x, y, w, h, minDepth, maxDepth}})
}

func (p *RenderPass) SetScissorRect(x, y, w, h uint32) {
	p.log.add(Event{Kind: SetScissorRect, Counts: [4]uint32{x, y, w, h}})
}

func (p *RenderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.log.add(Event{Kind: Draw, Counts: [4]uint32{vertexCount, instanceCount, firstVertex, firstInstance}})
}

func (p *RenderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.log.add(Event{Kind: DrawIndexed, Counts: [4]uint32{indexCount, instanceCount, uint32(baseVertex), firstInstance}, Index: firstIndex})
}

func (p *RenderPass) DrawIndirect(buf hal.Buffer, _ uint64) {
	p.log.add(Event{Kind: DrawIndirect, Buffer: buf})
}

// ComputePass records compute pass commands.
type ComputePass struct {
	noop.ComputePassEncoder
	log *Log
}

func (p *ComputePass) End() { p.log.add(Event{Kind: EndComputePass}) }

func (p *ComputePass) SetPipeline(_ hal.ComputePipeline) { p.log.add(Event{Kind: SetPipeline}) }

func (p *ComputePass) SetBindGroup(index uint32, _ hal.BindGroup, offsets []uint32) {
	p.log.add(Event{Kind: SetBindGroup, Index: index, Offsets: append([]uint32(nil), offsets...)})
}

func (p *ComputePass) Dispatch(x, y, z uint32) {
	p.log.add(Event{Kind: Dispatch, Counts: [4]uint32{x, y, z}})
}
