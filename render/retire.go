// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "github.com/gogpu/wgpu/hal"

// retirer defers the destruction of host objects until the submission
// that last referenced them has completed.
type retirer struct {
	device   hal.Device
	pending  []func()
	inflight map[uint64][]func()
}

func newRetirer(device hal.Device) *retirer {
	return &retirer{device: device, inflight: make(map[uint64][]func())}
}

func (r *retirer) buffer(b hal.Buffer) {
	r.pending = append(r.pending, func() { r.device.DestroyBuffer(b) })
}

func (r *retirer) bindGroup(g hal.BindGroup) {
	r.pending = append(r.pending, func() { r.device.DestroyBindGroup(g) })
}

func (r *retirer) pipeline(p *pipeline) {
	r.pending = append(r.pending, func() {
		r.device.DestroyRenderPipeline(p.pipeline)
	})
}

func (r *retirer) module(m hal.ShaderModule) {
	r.pending = append(r.pending, func() { r.device.DestroyShaderModule(m) })
}

func (r *retirer) sampler(s hal.Sampler) {
	r.pending = append(r.pending, func() { r.device.DestroySampler(s) })
}

// submitted ties the objects retired since the last call to submission
// index.
func (r *retirer) submitted(index uint64) {
	if len(r.pending) == 0 {
		return
	}
	r.inflight[index] = append(r.inflight[index], r.pending...)
	r.pending = nil
}

// reclaim destroys the objects of submissions up to completed.
func (r *retirer) reclaim(completed uint64) {
	for idx, fns := range r.inflight {
		if idx > completed {
			continue
		}
		for _, fn := range fns {
			fn()
		}
		delete(r.inflight, idx)
	}
}

// drain destroys everything immediately.
func (r *retirer) drain() {
	for _, fn := range r.pending {
		fn()
	}
	r.pending = nil
	for idx, fns := range r.inflight {
		for _, fn := range fns {
			fn()
		}
		delete(r.inflight, idx)
	}
}

func (r *retirer) len() int {
	n := len(r.pending)
	for _, fns := range r.inflight {
		n += len(fns)
	}
	return n
}
