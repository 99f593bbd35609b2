// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/spaolacci/murmur3"

	"github.com/gogpu/latte/internal/logging"
	"github.com/gogpu/latte/regs"
)

// dataKind separates buffers backed by guest memory from buffers built
// out of register state.
type dataKind uint8

const (
	kindMemory dataKind = iota
	kindRegisterFile
	kindCounter
	kindStreamOut
)

type dataKey struct {
	kind  dataKind
	stage regs.Stage
	addr  uint32
	size  uint32
	usage gputypes.BufferUsage
}

// dataBuffer is a host copy of guest data.
type dataBuffer struct {
	buf    hal.Buffer
	size   uint64
	hashLo uint64
	hashHi uint64
}

// dataCache keeps host buffers for vertex, uniform, counter and
// stream-out data. Content is re-hashed on every use; a change
// allocates a fresh buffer and retires the old one, so draws recorded
// earlier in the same submission keep reading the old content.
type dataCache struct {
	device  hal.Device
	queue   hal.Queue
	retire  *retirer
	entries map[dataKey]*dataBuffer

	uploads uint64
	hits    uint64
}

func newDataCache(device hal.Device, queue hal.Queue, retire *retirer) *dataCache {
	return &dataCache{
		device:  device,
		queue:   queue,
		retire:  retire,
		entries: make(map[dataKey]*dataBuffer),
	}
}

// upload returns the buffer for key holding data, uploading when the
// content differs from the last upload.
func (c *dataCache) upload(key dataKey, data []byte) (*dataBuffer, error) {
	lo, hi := murmur3.Sum128(data)
	if b, ok := c.entries[key]; ok {
		if b.hashLo == lo && b.hashHi == hi {
			c.hits++
			return b, nil
		}
		c.retire.buffer(b.buf)
		delete(c.entries, key)
	}

	b, err := c.create(key)
	if err != nil {
		return nil, err
	}
	padded := data
	if uint64(len(data)) != b.size {
		padded = make([]byte, b.size)
		copy(padded, data)
	}
	if err := c.queue.WriteBuffer(b.buf, 0, padded); err != nil {
		c.device.DestroyBuffer(b.buf)
		return nil, fmt.Errorf("render: write buffer %#x: %w", key.addr, err)
	}
	b.hashLo, b.hashHi = lo, hi
	c.entries[key] = b
	c.uploads++
	logging.L().Debug("render: buffer uploaded",
		"addr", fmt.Sprintf("%#x", key.addr), "size", key.size, "kind", key.kind)
	return b, nil
}

// ensure returns the buffer for key, creating it zeroed if missing. The
// host copy is authoritative; guest memory is never read.
func (c *dataCache) ensure(key dataKey) (*dataBuffer, error) {
	if b, ok := c.entries[key]; ok {
		c.hits++
		return b, nil
	}
	b, err := c.create(key)
	if err != nil {
		return nil, err
	}
	c.entries[key] = b
	return b, nil
}

func (c *dataCache) create(key dataKey) (*dataBuffer, error) {
	size := uint64(alignUp(max(key.size, 4), 4))
	buf, err := c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: fmt.Sprintf("latte-data-%d-%#x", key.kind, key.addr),
		Size:  size,
		Usage: key.usage,
	})
	if err != nil {
		return nil, fmt.Errorf("render: create buffer %#x: %w", key.addr, err)
	}
	return &dataBuffer{buf: buf, size: size}, nil
}

// free retires buffers backed by guest memory overlapping
// [addr, addr+size).
func (c *dataCache) free(addr, size uint32) {
	end := uint64(addr) + uint64(size)
	for key, b := range c.entries {
		if key.kind != kindMemory && key.kind != kindStreamOut {
			continue
		}
		if uint64(key.addr) < end && uint64(key.addr)+uint64(key.size) > uint64(addr) {
			c.retire.buffer(b.buf)
			delete(c.entries, key)
		}
	}
}

func (c *dataCache) destroy() {
	for key, b := range c.entries {
		c.device.DestroyBuffer(b.buf)
		delete(c.entries, key)
	}
}

func alignUp(v, a uint32) uint32 { return (v + a - 1) / a * a }
