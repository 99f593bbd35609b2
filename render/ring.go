// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// slotSize is the size and alignment of a ring slot. It satisfies the
// dynamic offset alignment of uniform and storage bindings.
const slotSize = 256

// ringChunk is one host buffer of ring slots.
type ringChunk struct {
	buf   hal.Buffer
	group hal.BindGroup // created on first use by the owner
	used  int
}

// ring hands out 256-byte slots from chunks of host buffer. A chunk
// stays reserved until the submission that used it completes, so slots
// written with Queue.WriteBuffer are never overwritten while a
// recorded draw can still read them.
type ring struct {
	device hal.Device
	label  string
	usage  gputypes.BufferUsage
	slots  int

	cur      *ringChunk
	full     []*ringChunk
	free     []*ringChunk
	inflight map[uint64][]*ringChunk
	chunks   int
}

func newRing(device hal.Device, label string, usage gputypes.BufferUsage, slots int) *ring {
	return &ring{
		device:   device,
		label:    label,
		usage:    usage,
		slots:    slots,
		inflight: make(map[uint64][]*ringChunk),
	}
}

// alloc returns a chunk and the byte offset of a free slot in it.
func (r *ring) alloc() (*ringChunk, uint32, error) {
	if r.cur != nil && r.cur.used == r.slots {
		r.full = append(r.full, r.cur)
		r.cur = nil
	}
	if r.cur == nil {
		if n := len(r.free); n > 0 {
			r.cur = r.free[n-1]
			r.free = r.free[:n-1]
		} else {
			buf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
				Label: fmt.Sprintf("%s-%d", r.label, r.chunks),
				Size:  uint64(r.slots) * slotSize,
				Usage: r.usage,
			})
			if err != nil {
				return nil, 0, fmt.Errorf("render: create %s chunk: %w", r.label, err)
			}
			r.chunks++
			r.cur = &ringChunk{buf: buf}
		}
	}
	off := uint32(r.cur.used) * slotSize
	r.cur.used++
	return r.cur, off, nil
}

// submitted reserves every chunk used so far for submission index.
func (r *ring) submitted(index uint64) {
	if r.cur != nil && r.cur.used > 0 {
		r.full = append(r.full, r.cur)
		r.cur = nil
	}
	if len(r.full) == 0 {
		return
	}
	r.inflight[index] = append(r.inflight[index], r.full...)
	r.full = nil
}

// reclaim returns the chunks of submissions up to completed to the
// free list.
func (r *ring) reclaim(completed uint64) {
	for idx, chunks := range r.inflight {
		if idx > completed {
			continue
		}
		for _, c := range chunks {
			c.used = 0
			r.free = append(r.free, c)
		}
		delete(r.inflight, idx)
	}
}

func (r *ring) destroy() {
	all := append(r.full, r.free...)
	if r.cur != nil {
		all = append(all, r.cur)
	}
	for _, chunks := range r.inflight {
		all = append(all, chunks...)
	}
	for _, c := range all {
		if c.group != nil {
			r.device.DestroyBindGroup(c.group)
		}
		r.device.DestroyBuffer(c.buf)
	}
	r.cur, r.full, r.free = nil, nil, nil
	clear(r.inflight)
}
