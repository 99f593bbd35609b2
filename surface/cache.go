// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/latte/format"
	"github.com/gogpu/latte/internal/logging"
	"github.com/gogpu/latte/mem"
)

// Cache maps guest surfaces to host textures.
//
// Cache is not safe for concurrent use; it is owned by the goroutine that
// records draw commands.
type Cache struct {
	device hal.Device
	queue  hal.Queue
	mem    mem.View
	cfg    Config

	buckets map[Key][]*Buffer
	pool    pool
	frame   uint64
	stats   Stats

	// Host objects released since the last submission, then per
	// submission index until the GPU completes it.
	pending  []func()
	inflight map[uint64][]func()
	closed   bool
}

// New creates a cache allocating host textures on device. Uploads read
// guest memory through view and stage data with queue.
func New(device hal.Device, queue hal.Queue, view mem.View, cfg Config) *Cache {
	return &Cache{
		device:   device,
		queue:    queue,
		mem:      view,
		cfg:      cfg,
		buckets:  make(map[Key][]*Buffer),
		inflight: make(map[uint64][]func()),
	}
}

// Resolve returns the buffer and host surface for req, creating,
// resizing and uploading as needed. Copies and uploads are recorded into
// enc, so they are ordered before any later use in the same stream.
//
// A read-use (ForWrite false) of a dirty buffer re-hashes guest memory
// and uploads on change. A write-use makes the host copy authoritative.
func (c *Cache) Resolve(enc hal.CommandEncoder, req Request) (*Buffer, *Surface, error) {
	if c.closed {
		return nil, nil, ErrClosed
	}
	if err := req.validate(); err != nil {
		return nil, nil, err
	}

	aligned, swizzle := normalize(req.BaseAddress, req.TileMode)
	key := KeyOf(aligned, req.Format, req.Dim, req.Pitch, req.Height)

	buf := c.lookup(key, aligned, &req)
	if buf == nil {
		return c.firstUse(enc, key, aligned, swizzle, &req)
	}

	active := c.pool.get(buf.active)
	if active != nil && active.matches(req.Width, req.Height, req.Depth) {
		c.touch(buf, active, &req)
		if err := c.finish(enc, buf, active, &req, swizzle); err != nil {
			return nil, nil, err
		}
		return buf, active, nil
	}

	found, err := c.realias(enc, buf, &req)
	if err != nil {
		return nil, nil, err
	}

	end := uint64(buf.MemStart) + surfaceBytes(&req)
	if end > uint64(buf.MemEnd) {
		buf.MemEnd = clampAddr(end)
	}

	c.touch(buf, found, &req)
	if err := c.finish(enc, buf, found, &req, swizzle); err != nil {
		return nil, nil, err
	}
	return buf, found, nil
}

// lookup returns the buffer in the key's bucket that exactly matches req.
func (c *Cache) lookup(key Key, aligned uint32, req *Request) *Buffer {
	for _, b := range c.buckets[key] {
		if b.matches(aligned, req) {
			return b
		}
	}
	return nil
}

func (c *Cache) firstUse(enc hal.CommandEncoder, key Key, aligned, swizzle uint32, req *Request) (*Buffer, *Surface, error) {
	host, err := format.MapStorage(req.Format, req.IsDepth)
	if err != nil {
		return nil, nil, fmt.Errorf("surface: resolve %#x: %w", req.BaseAddress, err)
	}

	buf := &Buffer{
		Key:        key,
		Address:    aligned,
		Format:     req.Format,
		Dim:        req.Dim,
		Pitch:      req.Pitch,
		Height:     req.Height,
		IsDepth:    req.IsDepth,
		HostFormat: host,
		MemStart:   aligned,
		MemEnd:     clampAddr(uint64(aligned) + surfaceBytes(req)),
		Dirty:      true,
	}

	s, err := c.createSurface(buf, req.Width, req.Height, req.Depth)
	if err != nil {
		return nil, nil, err
	}
	buf.master = s.handle
	buf.active = s.handle
	c.buckets[key] = append(c.buckets[key], buf)

	logging.L().Debug("surface: new buffer",
		"addr", fmt.Sprintf("%#x", aligned), "format", req.Format, "dim", req.Dim,
		"width", req.Width, "height", req.Height, "depth", req.Depth, "host", host)

	c.touch(buf, s, req)
	if err := c.finish(enc, buf, s, req, swizzle); err != nil {
		return nil, nil, err
	}
	return buf, s, nil
}

// realias selects or creates the surface matching req and funnels the
// active content into it through the master.
func (c *Cache) realias(enc hal.CommandEncoder, buf *Buffer, req *Request) (*Surface, error) {
	w, h, d := req.Width, req.Height, req.Depth
	master := c.pool.get(buf.master)

	var found, newMaster, newSurface *Surface
	for s := master; s != nil; s = c.pool.get(s.next) {
		if s.matches(w, h, d) {
			found = s
			break
		}
	}

	if found == nil {
		mw, mh, md := max(w, master.Width), max(h, master.Height), max(d, master.Depth)
		if master.Width < mw || master.Height < mh || master.Depth < md {
			s, err := c.createSurface(buf, mw, mh, md)
			if err != nil {
				return nil, err
			}
			newMaster = s
			if s.matches(w, h, d) {
				found = s
			}
		}
	}

	if found == nil {
		s, err := c.createSurface(buf, w, h, d)
		if err != nil {
			if newMaster != nil {
				c.destroySurface(newMaster)
			}
			return nil, err
		}
		found = s
		newSurface = s
	}

	active := c.pool.get(buf.active)
	if active == nil {
		active = master
	}
	if active != master {
		c.copySurface(enc, buf, active, master)
		active = master
	}
	if newMaster != nil {
		c.copySurface(enc, buf, active, newMaster)
		active = newMaster
	}
	if active != found {
		c.copySurface(enc, buf, active, found)
	}
	buf.active = found.handle

	if newMaster != nil {
		newMaster.next = buf.master
		buf.master = newMaster.handle
		master = newMaster
	}
	if newSurface != nil {
		newSurface.next = master.next
		master.next = newSurface.handle
	}
	return found, nil
}

// finish applies the dirty policy after a surface has been selected.
func (c *Cache) finish(enc hal.CommandEncoder, buf *Buffer, s *Surface, req *Request, swizzle uint32) error {
	if req.ForWrite {
		buf.gpuWritten = true
		buf.Dirty = false
		return nil
	}
	if !buf.Dirty {
		return nil
	}
	if err := c.upload(enc, buf, s, req, swizzle); err != nil {
		return err
	}
	buf.Dirty = false
	return nil
}

func (c *Cache) touch(buf *Buffer, s *Surface, req *Request) {
	buf.lastUsed = c.frame
	buf.last = *req
	s.lastUsed = c.frame
}

// hostExtent returns the host texture dimension, size and view kind for
// a surface of the given logical extent.
func hostExtent(buf *Buffer, w, h, d uint32) (gputypes.TextureDimension, hal.Extent3D, gputypes.TextureViewDimension) {
	if format.IsHostCompressed(buf.HostFormat) {
		w = alignUp(w, 4)
		h = alignUp(h, 4)
	}
	switch buf.Dim {
	case Dim1D:
		return gputypes.TextureDimension1D, hal.Extent3D{Width: w, Height: 1, DepthOrArrayLayers: 1}, gputypes.TextureViewDimension1D
	case Dim2DArray:
		return gputypes.TextureDimension2D, hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: d}, gputypes.TextureViewDimension2DArray
	case DimCubemap:
		view := gputypes.TextureViewDimensionCube
		if d > 1 {
			view = gputypes.TextureViewDimensionCubeArray
		}
		return gputypes.TextureDimension2D, hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 6 * d}, view
	case Dim3D:
		return gputypes.TextureDimension3D, hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: d}, gputypes.TextureViewDimension3D
	default:
		return gputypes.TextureDimension2D, hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1}, gputypes.TextureViewDimension2D
	}
}

func (c *Cache) createSurface(buf *Buffer, w, h, d uint32) (*Surface, error) {
	dim, extent, viewDim := hostExtent(buf, w, h, d)

	usage := gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst | gputypes.TextureUsageTextureBinding
	if !format.IsHostCompressed(buf.HostFormat) && dim != gputypes.TextureDimension1D {
		usage |= gputypes.TextureUsageRenderAttachment
	}

	label := fmt.Sprintf("latte-surface-%#x-%dx%dx%d", buf.Address, w, h, d)
	tex, err := c.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          extent,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     dim,
		Format:        buf.HostFormat,
		Usage:         usage,
	})
	if err != nil {
		return nil, fmt.Errorf("surface: create texture %s: %w", label, err)
	}

	view, err := c.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:           label,
		Format:          buf.HostFormat,
		Dimension:       viewDim,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   1,
		ArrayLayerCount: layerCount(dim, extent),
	})
	if err != nil {
		c.device.DestroyTexture(tex)
		return nil, fmt.Errorf("surface: create view %s: %w", label, err)
	}

	s := &Surface{
		Texture:       tex,
		View:          view,
		Width:         w,
		Height:        h,
		Depth:         d,
		Extent:        extent,
		ViewDimension: viewDim,
		lastUsed:      c.frame,
	}
	c.pool.alloc(s)
	c.stats.Allocations++
	return s, nil
}

func layerCount(dim gputypes.TextureDimension, e hal.Extent3D) uint32 {
	if dim == gputypes.TextureDimension3D {
		return 1
	}
	return e.DepthOrArrayLayers
}

// destroySurface releases s from the pool at once. Its texture and view
// live until the submissions that may reference them complete.
func (c *Cache) destroySurface(s *Surface) {
	tex, view := s.Texture, s.View
	c.retire(func() {
		if view != nil {
			c.device.DestroyTextureView(view)
		}
		c.device.DestroyTexture(tex)
	})
	c.pool.release(s.handle)
}

func (c *Cache) retire(fn func()) {
	c.pending = append(c.pending, fn)
}

// copySurface copies the overlapping region of src into dst.
func (c *Cache) copySurface(enc hal.CommandEncoder, buf *Buffer, src, dst *Surface) {
	if !copyable(buf.HostFormat) {
		c.stats.Skipped++
		logging.L().Warn("surface: copy skipped for format", "host", buf.HostFormat)
		return
	}
	enc.CopyTextureToTexture(src.Texture, dst.Texture, []hal.TextureCopy{{
		SrcBase: hal.ImageCopyTexture{Texture: src.Texture, Aspect: gputypes.TextureAspectAll},
		DstBase: hal.ImageCopyTexture{Texture: dst.Texture, Aspect: gputypes.TextureAspectAll},
		Size: hal.Extent3D{
			Width:              min(src.Extent.Width, dst.Extent.Width),
			Height:             min(src.Extent.Height, dst.Extent.Height),
			DepthOrArrayLayers: min(src.Extent.DepthOrArrayLayers, dst.Extent.DepthOrArrayLayers),
		},
	}})
	c.stats.Copies++
}

// copyable reports whether the host can copy texels of f between
// textures and from buffers.
func copyable(f gputypes.TextureFormat) bool {
	switch f {
	case gputypes.TextureFormatDepth24Plus,
		gputypes.TextureFormatDepth24PlusStencil8,
		gputypes.TextureFormatDepth32FloatStencil8:
		return false
	}
	return true
}

// InvalidateMemory marks every buffer overlapping [addr, addr+size) as
// dirty. The next read-use re-hashes its memory.
func (c *Cache) InvalidateMemory(addr, size uint32) {
	c.forOverlapping(addr, size, func(b *Buffer) bool {
		b.Dirty = true
		return true
	})
}

// FreeMemory destroys every buffer overlapping the released guest range
// [addr, addr+size).
func (c *Cache) FreeMemory(addr, size uint32) {
	n := 0
	c.forOverlapping(addr, size, func(b *Buffer) bool {
		c.destroyBuffer(b)
		n++
		return false
	})
	if n > 0 {
		logging.L().Debug("surface: freed buffers", "addr", fmt.Sprintf("%#x", addr), "size", size, "count", n)
	}
}

// forOverlapping calls fn for each buffer overlapping the range. Buffers
// for which fn returns false are removed from the cache.
func (c *Cache) forOverlapping(addr, size uint32, fn func(*Buffer) bool) {
	lo, hi := uint64(addr), uint64(addr)+uint64(size)
	for key, bucket := range c.buckets {
		kept := bucket[:0]
		for _, b := range bucket {
			if uint64(b.MemStart) < hi && lo < uint64(b.MemEnd) && !fn(b) {
				continue
			}
			kept = append(kept, b)
		}
		c.setBucket(key, kept)
	}
}

func (c *Cache) setBucket(key Key, bucket []*Buffer) {
	if len(bucket) == 0 {
		delete(c.buckets, key)
		return
	}
	c.buckets[key] = bucket
}

// destroyBuffer destroys every surface of b. The caller removes b from
// its bucket.
func (c *Cache) destroyBuffer(b *Buffer) {
	for h := b.master; h.Valid(); {
		s := c.pool.get(h)
		if s == nil {
			break
		}
		h = s.next
		c.destroySurface(s)
		c.stats.Evictions++
	}
	if s := c.pool.get(b.active); s != nil {
		c.destroySurface(s)
		c.stats.Evictions++
	}
	b.master, b.active = Handle{}, Handle{}
}

// BeginFrame advances the frame counter and evicts aged entries.
func (c *Cache) BeginFrame() {
	c.frame++
	limit := c.cfg.evictAfter()
	if limit < 0 || c.frame <= uint64(limit) {
		return
	}
	oldest := c.frame - uint64(limit)

	var buffers, surfaces int
	for key, bucket := range c.buckets {
		kept := bucket[:0]
		for _, b := range bucket {
			if !b.gpuWritten && b.lastUsed < oldest {
				c.destroyBuffer(b)
				buffers++
				continue
			}
			surfaces += c.evictChain(b, oldest)
			kept = append(kept, b)
		}
		c.setBucket(key, kept)
	}
	if buffers > 0 || surfaces > 0 {
		logging.L().Info("surface: evicted", "frame", c.frame, "buffers", buffers, "surfaces", surfaces)
	}
}

// evictChain unlinks and destroys chain entries other than the master
// and the active surface that were last used before frame oldest.
func (c *Cache) evictChain(b *Buffer, oldest uint64) int {
	n := 0
	prev := c.pool.get(b.master)
	for prev != nil {
		s := c.pool.get(prev.next)
		if s == nil {
			break
		}
		if s.handle != b.active && s.lastUsed < oldest {
			prev.next = s.next
			c.destroySurface(s)
			c.stats.Evictions++
			n++
			continue
		}
		prev = s
	}
	return n
}

// Surface returns the surface for h, or nil if h is stale.
func (c *Cache) Surface(h Handle) *Surface {
	return c.pool.get(h)
}

// Stats returns a snapshot of cache counters.
func (c *Cache) Stats() Stats {
	s := c.stats
	for _, bucket := range c.buckets {
		s.Buffers += len(bucket)
	}
	s.Surfaces = c.pool.live
	return s
}

// Submitted hands the staging buffers and surfaces released since the
// last call to the submission with the given index.
func (c *Cache) Submitted(index uint64) {
	if len(c.pending) == 0 {
		return
	}
	c.inflight[index] = append(c.inflight[index], c.pending...)
	c.pending = nil
}

// Reclaim destroys what submissions up to completed were holding.
func (c *Cache) Reclaim(completed uint64) {
	for idx, fns := range c.inflight {
		if idx > completed {
			continue
		}
		for _, fn := range fns {
			fn()
		}
		delete(c.inflight, idx)
	}
}

// Close destroys every host resource. The caller must ensure the device
// is idle.
func (c *Cache) Close() {
	if c.closed {
		return
	}
	for key, bucket := range c.buckets {
		for _, b := range bucket {
			c.destroyBuffer(b)
		}
		delete(c.buckets, key)
	}
	for _, fn := range c.pending {
		fn()
	}
	c.pending = nil
	for idx, fns := range c.inflight {
		for _, fn := range fns {
			fn()
		}
		delete(c.inflight, idx)
	}
	c.closed = true
}

// surfaceBytes returns the guest byte size of the surface described by
// req, used to extend the buffer's memory range.
func surfaceBytes(req *Request) uint64 {
	p, h, d := uint64(req.Pitch), uint64(req.Height), uint64(req.Depth)
	var n uint64
	switch req.Dim {
	case Dim1D:
		n = p
	case Dim2D, Dim1DArray:
		n = p * h
	case DimCubemap:
		n = p * h * d * 6
	default:
		n = p * h * d
	}
	if format.IsCompressed(req.Format.Format) {
		n /= 16
	}
	return n * uint64(format.BitsPerElement(req.Format.Format)) / 8
}

func clampAddr(v uint64) uint32 {
	return uint32(min(v, 1<<32-1))
}

func alignUp(v, a uint32) uint32 { return (v + a - 1) / a * a }
