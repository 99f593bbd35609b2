// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/latte/internal/haltest"
)

var halBufferDesc = hal.BufferDescriptor{Label: "test", Size: 16, Usage: gputypes.BufferUsageCopyDst}

func newTestDataCache() (*dataCache, *haltest.Device, *retirer) {
	device, queue := haltest.New()
	r := newRetirer(device)
	return newDataCache(device, queue, r), device, r
}

func TestDataCacheUpload(t *testing.T) {
	c, device, r := newTestDataCache()
	key := dataKey{kind: kindMemory, addr: 0x1000, size: 6, usage: gputypes.BufferUsageVertex}

	b1, err := c.upload(key, []byte{1, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatalf("upload() error = %v", err)
	}
	if b1.size != 8 {
		t.Errorf("size = %d, want 8", b1.size)
	}
	hb := b1.buf.(*haltest.Buffer)
	if string(hb.Data) != "\x01\x02\x03\x04\x05\x06\x00\x00" {
		t.Errorf("data = %v, want padded copy", hb.Data)
	}

	b2, err := c.upload(key, []byte{1, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatalf("upload() error = %v", err)
	}
	if b2 != b1 || c.hits != 1 || c.uploads != 1 {
		t.Errorf("unchanged upload: same %v hits %d uploads %d, want reuse", b2 == b1, c.hits, c.uploads)
	}

	b3, err := c.upload(key, []byte{9, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatalf("upload() error = %v", err)
	}
	if b3 == b1 || c.uploads != 2 {
		t.Errorf("changed upload reused the buffer")
	}
	if r.len() != 1 || hb.Destroyed {
		t.Errorf("old buffer retired %d destroyed %v, want retired and alive", r.len(), hb.Destroyed)
	}
	if len(device.Buffers) != 2 {
		t.Errorf("buffers = %d, want 2", len(device.Buffers))
	}
}

func TestDataCacheKeysSeparate(t *testing.T) {
	c, device, _ := newTestDataCache()
	data := []byte{1, 2, 3, 4}
	keys := []dataKey{
		{kind: kindMemory, addr: 0x1000, size: 4, usage: gputypes.BufferUsageVertex},
		{kind: kindMemory, addr: 0x1000, size: 4, usage: gputypes.BufferUsageUniform},
		{kind: kindCounter, addr: 0x1000, size: 4, usage: gputypes.BufferUsageStorage},
	}
	for _, k := range keys {
		if _, err := c.upload(k, data); err != nil {
			t.Fatalf("upload(%+v) error = %v", k, err)
		}
	}
	if len(device.Buffers) != len(keys) {
		t.Errorf("buffers = %d, want %d", len(device.Buffers), len(keys))
	}
}

func TestDataCacheEnsure(t *testing.T) {
	c, device, _ := newTestDataCache()
	key := dataKey{kind: kindStreamOut, addr: 0x2000, size: 64, usage: gputypes.BufferUsageStorage}
	a, err := c.ensure(key)
	if err != nil {
		t.Fatalf("ensure() error = %v", err)
	}
	b, _ := c.ensure(key)
	if a != b || len(device.Buffers) != 1 {
		t.Errorf("ensure() created %d buffers, want one", len(device.Buffers))
	}
}

func TestDataCacheFree(t *testing.T) {
	c, _, r := newTestDataCache()
	memKey := dataKey{kind: kindMemory, addr: 0x1000, size: 0x100}
	so := dataKey{kind: kindStreamOut, addr: 0x1800, size: 0x100}
	rf := dataKey{kind: kindRegisterFile, size: 0x1000}
	for _, k := range []dataKey{memKey, so} {
		if _, err := c.ensure(k); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := c.upload(rf, make([]byte, 0x1000)); err != nil {
		t.Fatal(err)
	}

	c.free(0x1080, 0x10)
	if _, ok := c.entries[memKey]; ok {
		t.Error("overlapping memory buffer survived free")
	}
	if _, ok := c.entries[so]; !ok {
		t.Error("disjoint stream-out buffer freed")
	}
	c.free(0, 0x10000)
	if _, ok := c.entries[so]; ok {
		t.Error("overlapping stream-out buffer survived free")
	}
	if _, ok := c.entries[rf]; !ok {
		t.Error("register file buffer freed by a memory range")
	}
	if r.len() != 2 {
		t.Errorf("retired = %d, want 2", r.len())
	}

	c.destroy()
	if len(c.entries) != 0 {
		t.Errorf("entries after destroy = %d", len(c.entries))
	}
}
