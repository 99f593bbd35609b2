// Package haltest provides HAL fakes for tests. They extend the noop
// backend with memory-backed textures and buffers, region-aware copies,
// and a log of the commands recorded into encoders.
package haltest

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/latte/format"
)

// Kind identifies a recorded command.
type Kind string

// Recorded command kinds.
const (
	TransitionBuffers    Kind = "transition-buffers"
	TransitionTextures   Kind = "transition-textures"
	CopyBufferToBuffer   Kind = "copy-buffer-to-buffer"
	CopyBufferToTexture  Kind = "copy-buffer-to-texture"
	CopyTextureToBuffer  Kind = "copy-texture-to-buffer"
	CopyTextureToTexture Kind = "copy-texture-to-texture"
	BeginRenderPass      Kind = "begin-render-pass"
	EndRenderPass        Kind = "end-render-pass"
	BeginComputePass     Kind = "begin-compute-pass"
	EndComputePass       Kind = "end-compute-pass"
	SetPipeline          Kind = "set-pipeline"
	SetBindGroup         Kind = "set-bind-group"
	SetVertexBuffer      Kind = "set-vertex-buffer"
	SetIndexBuffer       Kind = "set-index-buffer"
	SetViewport          Kind = "set-viewport"
	SetScissorRect       Kind = "set-scissor-rect"
	Dispatch             Kind = "dispatch"
	Draw                 Kind = "draw"
	DrawIndexed          Kind = "draw-indexed"
	DrawIndirect         Kind = "draw-indirect"
)

// Event is one recorded command.
type Event struct {
	Kind     Kind
	Buffers  []hal.BufferBarrier
	Buffer   hal.Buffer
	Textures [2]hal.Texture
	Index    uint32
	Offsets  []uint32
	Args     []float32
	Counts   [4]uint32
}

// Log is the ordered list of commands recorded by every encoder of a
// Device.
type Log struct {
	Events []Event
}

func (l *Log) add(e Event) { l.Events = append(l.Events, e) }

// Count returns the number of events of kind k.
func (l *Log) Count(k Kind) int {
	n := 0
	for _, e := range l.Events {
		if e.Kind == k {
			n++
		}
	}
	return n
}

// Index returns the position of the first event of kind k, or -1.
func (l *Log) Index(k Kind) int {
	for i, e := range l.Events {
		if e.Kind == k {
			return i
		}
	}
	return -1
}

// Filter returns the events of kind k.
func (l *Log) Filter(k Kind) []Event {
	var out []Event
	for _, e := range l.Events {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

// Reset drops all recorded events.
func (l *Log) Reset() { l.Events = l.Events[:0] }

// Texture is a memory-backed texture. Data holds every layer (or depth
// slice) tightly packed in texel blocks.
type Texture struct {
	noop.Texture
	Desc      hal.TextureDescriptor
	Data      []byte
	Destroyed bool
}

// blockDims returns the texel block extent and byte size of the format.
func blockDims(f gputypes.TextureFormat) (w, h, size uint32) {
	size = format.HostTexelBytes(f)
	if size == 0 {
		size = 4
	}
	if format.IsHostCompressed(f) {
		return 4, 4, size
	}
	return 1, 1, size
}

func (t *Texture) layers() uint32 { return max(t.Desc.Size.DepthOrArrayLayers, 1) }

func (t *Texture) rowBlocks() uint32 {
	bw, _, _ := blockDims(t.Desc.Format)
	return (t.Desc.Size.Width + bw - 1) / bw
}

func (t *Texture) colBlocks() uint32 {
	_, bh, _ := blockDims(t.Desc.Format)
	return (t.Desc.Size.Height + bh - 1) / bh
}

// offset returns the byte offset of the block containing texel (x, y) of
// layer z.
func (t *Texture) offset(x, y, z uint32) int {
	bw, bh, size := blockDims(t.Desc.Format)
	return int(((z*t.colBlocks()+y/bh)*t.rowBlocks() + x/bw) * size)
}

// Texel returns the bytes of the texel block at (x, y, z).
func (t *Texture) Texel(x, y, z uint32) []byte {
	_, _, size := blockDims(t.Desc.Format)
	off := t.offset(x, y, z)
	return t.Data[off : off+int(size)]
}

// Destroy marks the texture destroyed.
func (t *Texture) Destroy() { t.Destroyed = true }

// Buffer is a memory-backed buffer.
type Buffer struct {
	noop.Resource
	Desc      hal.BufferDescriptor
	Data      []byte
	Destroyed bool
}

// Destroy marks the buffer destroyed.
func (b *Buffer) Destroy() { b.Destroyed = true }

// TextureView is a view of a Texture.
type TextureView struct {
	noop.Resource
	Texture *Texture
	Desc    hal.TextureViewDescriptor
}

// BindGroup records the descriptor it was created from.
type BindGroup struct {
	noop.Resource
	Desc hal.BindGroupDescriptor
}

// Device is a noop device with memory-backed resources. Counters record
// how many objects of each kind were created.
type Device struct {
	noop.Device
	Log *Log

	Textures         []*Texture
	Buffers          []*Buffer
	BindGroups       []*BindGroup
	ShaderModules    int
	RenderPipelines  int
	ComputePipelines int
	Samplers         int

	// FailTextures makes CreateTexture fail.
	FailTextures bool
}

// Queue is a noop queue that writes into memory-backed resources.
type Queue struct {
	noop.Queue
	Submitted int
}

// New returns a fresh device and queue sharing one command log.
func New() (*Device, *Queue) {
	return &Device{Log: &Log{}}, &Queue{}
}

// NewNoop opens a plain noop device for tests that do not inspect
// resources.
func NewNoop(t testing.TB) (hal.Device, hal.Queue) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		openDev.Device.Destroy()
		instance.Destroy()
	})
	return openDev.Device, openDev.Queue
}

// CreateTexture allocates a memory-backed texture.
func (d *Device) CreateTexture(desc *hal.TextureDescriptor) (hal.Texture, error) {
	if d.FailTextures {
		return nil, hal.ErrDeviceOutOfMemory
	}
	t := &Texture{Desc: *desc}
	_, _, size := blockDims(desc.Format)
	t.Data = make([]byte, t.rowBlocks()*t.colBlocks()*t.layers()*size)
	d.Textures = append(d.Textures, t)
	return t, nil
}

// DestroyTexture marks t destroyed.
func (d *Device) DestroyTexture(t hal.Texture) {
	if tex, ok := t.(*Texture); ok {
		tex.Destroyed = true
	}
}

// LiveTextures returns the number of textures not yet destroyed.
func (d *Device) LiveTextures() int {
	n := 0
	for _, t := range d.Textures {
		if !t.Destroyed {
			n++
		}
	}
	return n
}

// CreateTextureView returns a view remembering its texture.
func (d *Device) CreateTextureView(t hal.Texture, desc *hal.TextureViewDescriptor) (hal.TextureView, error) {
	tex, _ := t.(*Texture)
	v := &TextureView{Texture: tex}
	if desc != nil {
		v.Desc = *desc
	}
	return v, nil
}

// CreateBuffer allocates a memory-backed buffer.
func (d *Device) CreateBuffer(desc *hal.BufferDescriptor) (hal.Buffer, error) {
	b := &Buffer{Desc: *desc, Data: make([]byte, desc.Size)}
	d.Buffers = append(d.Buffers, b)
	return b, nil
}

// DestroyBuffer marks b destroyed.
func (d *Device) DestroyBuffer(b hal.Buffer) {
	if buf, ok := b.(*Buffer); ok {
		buf.Destroyed = true
	}
}

// CreateBindGroup records the descriptor.
func (d *Device) CreateBindGroup(desc *hal.BindGroupDescriptor) (hal.BindGroup, error) {
	g := &BindGroup{Desc: *desc}
	d.BindGroups = append(d.BindGroups, g)
	return g, nil
}

// CreateShaderModule counts shader modules.
func (d *Device) CreateShaderModule(desc *hal.ShaderModuleDescriptor) (hal.ShaderModule, error) {
	d.ShaderModules++
	return d.Device.CreateShaderModule(desc)
}

// CreateRenderPipeline counts render pipelines.
func (d *Device) CreateRenderPipeline(desc *hal.RenderPipelineDescriptor) (hal.RenderPipeline, error) {
	d.RenderPipelines++
	return d.Device.CreateRenderPipeline(desc)
}

// CreateComputePipeline counts compute pipelines.
func (d *Device) CreateComputePipeline(desc *hal.ComputePipelineDescriptor) (hal.ComputePipeline, error) {
	d.ComputePipelines++
	return d.Device.CreateComputePipeline(desc)
}

// CreateSampler counts samplers.
func (d *Device) CreateSampler(desc *hal.SamplerDescriptor) (hal.Sampler, error) {
	d.Samplers++
	return d.Device.CreateSampler(desc)
}

// CreateCommandEncoder returns an encoder that records into d.Log.
func (d *Device) CreateCommandEncoder(_ *hal.CommandEncoderDescriptor) (hal.CommandEncoder, error) {
	return &Encoder{log: d.Log}, nil
}

// WriteBuffer copies data into a memory-backed buffer.
func (q *Queue) WriteBuffer(buffer hal.Buffer, offset uint64, data []byte) error {
	if b, ok := buffer.(*Buffer); ok {
		copy(b.Data[offset:], data)
		return nil
	}
	return q.Queue.WriteBuffer(buffer, offset, data)
}

// WriteTexture copies data into a memory-backed texture.
func (q *Queue) WriteTexture(dst *hal.ImageCopyTexture, data []byte, layout *hal.ImageDataLayout, size *hal.Extent3D) error {
	if t, ok := dst.Texture.(*Texture); ok {
		copyIntoTexture(t, dst.Origin, data, *layout, *size)
	}
	return nil
}

// Submit counts submissions.
func (q *Queue) Submit(cbs []hal.CommandBuffer) (uint64, error) {
	q.Submitted++
	return q.Queue.Submit(cbs)
}

func copyIntoTexture(t *Texture, origin hal.Origin3D, src []byte, layout hal.ImageDataLayout, size hal.Extent3D) {
	bw, bh, bsize := blockDims(t.Desc.Format)
	rowBytes := (size.Width + bw - 1) / bw * bsize
	rows := (size.Height + bh - 1) / bh
	rowsPerImage := max(layout.RowsPerImage, rows)
	for z := range max(size.DepthOrArrayLayers, 1) {
		for r := range rows {
			s := layout.Offset + uint64(z*rowsPerImage+r)*uint64(layout.BytesPerRow)
			if s+uint64(rowBytes) > uint64(len(src)) {
				return
			}
			d := t.offset(origin.X, origin.Y+r*bh, origin.Z+z)
			copy(t.Data[d:d+int(rowBytes)], src[s:])
		}
	}
}

func copyFromTexture(t *Texture, origin hal.Origin3D, dst []byte, layout hal.ImageDataLayout, size hal.Extent3D) {
	bw, bh, bsize := blockDims(t.Desc.Format)
	rowBytes := (size.Width + bw - 1) / bw * bsize
	rows := (size.Height + bh - 1) / bh
	rowsPerImage := max(layout.RowsPerImage, rows)
	for z := range max(size.DepthOrArrayLayers, 1) {
		for r := range rows {
			d := layout.Offset + uint64(z*rowsPerImage+r)*uint64(layout.BytesPerRow)
			if d+uint64(rowBytes) > uint64(len(dst)) {
				return
			}
			s := t.offset(origin.X, origin.Y+r*bh, origin.Z+z)
			copy(dst[d:], t.Data[s:s+int(rowBytes)])
		}
	}
}
