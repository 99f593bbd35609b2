// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	_ "embed"
	"encoding/binary"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/opaque_args.wgsl
var opaqueArgsWGSL string

// Layout of an indirect argument slot.
const (
	opaqueParamsOffset = 16
	opaqueSlotBytes    = 32
)

// opaquePass is the compute pipeline that turns a stream-out filled
// size into indirect draw arguments.
type opaquePass struct {
	device      hal.Device
	module      hal.ShaderModule
	groupLayout hal.BindGroupLayout
	layout      hal.PipelineLayout
	pipeline    hal.ComputePipeline
}

func newOpaquePass(device hal.Device) (*opaquePass, error) {
	p := &opaquePass{device: device}
	var err error
	p.module, err = createModule(device, "latte-opaque-args", opaqueArgsWGSL)
	if err != nil {
		return nil, fmt.Errorf("opaque args shader: %w", err)
	}
	p.groupLayout, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "latte-opaque-args-layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageCompute,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageCompute,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage},
			},
		},
	})
	if err != nil {
		p.destroy()
		return nil, fmt.Errorf("opaque args bind group layout: %w", err)
	}
	p.layout, err = device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "latte-opaque-args-pipeline-layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.groupLayout},
	})
	if err != nil {
		p.destroy()
		return nil, fmt.Errorf("opaque args pipeline layout: %w", err)
	}
	p.pipeline, err = device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:  "latte-opaque-args",
		Layout: p.layout,
		Compute: hal.ComputeState{
			Module:     p.module,
			EntryPoint: "main",
		},
	})
	if err != nil {
		p.destroy()
		return nil, fmt.Errorf("opaque args pipeline: %w", err)
	}
	return p, nil
}

// bindGroup binds the counter and the argument slot at off.
func (p *opaquePass) bindGroup(counter *dataBuffer, args hal.Buffer, off uint32) (hal.BindGroup, error) {
	return p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "latte-opaque-args",
		Layout: p.groupLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: counter.buf.NativeHandle(), Size: 4}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: args.NativeHandle(), Offset: uint64(off), Size: opaqueSlotBytes}},
		},
	})
}

// record dispatches the conversion. It must be recorded outside a
// render pass.
func (p *opaquePass) record(enc hal.CommandEncoder, group hal.BindGroup) {
	pass := enc.BeginComputePass(&hal.ComputePassDescriptor{Label: "latte-opaque-args"})
	pass.SetPipeline(p.pipeline)
	pass.SetBindGroup(0, group, nil)
	pass.Dispatch(1, 1, 1)
	pass.End()
}

func (p *opaquePass) destroy() {
	if p.pipeline != nil {
		p.device.DestroyComputePipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.layout != nil {
		p.device.DestroyPipelineLayout(p.layout)
		p.layout = nil
	}
	if p.groupLayout != nil {
		p.device.DestroyBindGroupLayout(p.groupLayout)
		p.groupLayout = nil
	}
	if p.module != nil {
		p.device.DestroyShaderModule(p.module)
		p.module = nil
	}
}

// opaqueParams encodes the host parameters of an argument slot: no
// vertex offset, the vertex stride in bytes, one instance starting at
// zero.
func opaqueParams(stride uint32) []byte {
	b := make([]byte, 0, opaqueSlotBytes-opaqueParamsOffset)
	b = binary.LittleEndian.AppendUint32(b, 0)
	b = binary.LittleEndian.AppendUint32(b, stride)
	b = binary.LittleEndian.AppendUint32(b, 1)
	b = binary.LittleEndian.AppendUint32(b, 0)
	return b
}
