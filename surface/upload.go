// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/spaolacci/murmur3"

	"github.com/gogpu/latte/format"
	"github.com/gogpu/latte/internal/logging"
	"github.com/gogpu/latte/tiling"
)

// rowAlignment is the buffer row pitch required by buffer-to-texture
// copies.
const rowAlignment = 256

// HashMemory returns the content hash of the guest memory read by req.
// The range follows the guest surface geometry: compressed formats are
// measured in blocks and cubemaps span six faces per layer.
func (c *Cache) HashMemory(req *Request) (Hash128, uint32) {
	aligned, _ := normalize(req.BaseAddress, req.TileMode)
	size := hashBytes(req)
	lo, hi := murmur3.Sum128(c.mem.Bytes(aligned, size))
	return Hash128{Lo: lo, Hi: hi}, size
}

func hashBytes(req *Request) uint32 {
	bpp := uint64(format.BitsPerElement(req.Format.Format))
	pitch, height := uint64(req.Pitch), uint64(req.Height)
	if format.IsCompressed(req.Format.Format) {
		height = (height + 3) / 4
		pitch /= 4
	}
	depth := uint64(req.Depth)
	if req.Dim == DimCubemap {
		depth *= 6
	}
	return clampAddr(pitch * height * depth * bpp / 8)
}

// upload re-hashes the buffer's memory and, when it changed, untiles it
// into s through a staging buffer.
func (c *Cache) upload(enc hal.CommandEncoder, buf *Buffer, s *Surface, req *Request, swizzle uint32) error {
	hash, size := c.HashMemory(req)
	if buf.hashed && hash == buf.Hash {
		c.stats.HashHits++
		logging.L().Debug("surface: upload skipped, content unchanged",
			"addr", fmt.Sprintf("%#x", buf.Address), "bytes", size)
		return nil
	}
	buf.Hash = hash
	buf.hashed = true

	if !copyable(buf.HostFormat) {
		c.stats.Skipped++
		logging.L().Warn("surface: upload skipped for format",
			"addr", fmt.Sprintf("%#x", buf.Address), "host", buf.HostFormat)
		return nil
	}

	img := c.linearize(buf, s, req, swizzle)
	bytesPerRow := alignUp(img.rowBytes, rowAlignment)
	data := img.data
	if bytesPerRow != img.rowBytes {
		data = make([]byte, uint64(bytesPerRow)*uint64(img.rows)*uint64(img.layers))
		for i := range img.rows * img.layers {
			copy(data[uint64(i)*uint64(bytesPerRow):], img.data[uint64(i)*uint64(img.rowBytes):uint64(i+1)*uint64(img.rowBytes)])
		}
	}

	staging, err := c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: fmt.Sprintf("latte-upload-%#x", buf.Address),
		Size:  uint64(len(data)),
		Usage: gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("surface: create staging buffer: %w", err)
	}
	c.retire(func() { c.device.DestroyBuffer(staging) })
	if err := c.queue.WriteBuffer(staging, 0, data); err != nil {
		return fmt.Errorf("surface: write staging buffer: %w", err)
	}

	aspect := gputypes.TextureAspectAll
	if req.IsDepth {
		aspect = gputypes.TextureAspectDepthOnly
	}
	enc.CopyBufferToTexture(staging, s.Texture, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{BytesPerRow: bytesPerRow, RowsPerImage: img.rows},
		TextureBase:  hal.ImageCopyTexture{Texture: s.Texture, Aspect: aspect},
		Size:         s.Extent,
	}})

	c.stats.Uploads++
	logging.L().Debug("surface: uploaded",
		"addr", fmt.Sprintf("%#x", buf.Address), "mode", req.TileMode,
		"width", req.Width, "height", req.Height, "depth", req.Depth, "bytes", len(data))
	return nil
}

// linearImage is guest texel data untiled and repacked for the host
// format. Rows and row bytes count texel blocks for compressed formats.
type linearImage struct {
	data     []byte
	width    uint32 // elements per row
	rows     uint32
	layers   uint32
	rowBytes uint32
}

// linearize untiles the surface from guest memory and converts it to the
// host texel layout.
func (c *Cache) linearize(buf *Buffer, s *Surface, req *Request, swizzle uint32) linearImage {
	d := req.Format
	bpp := format.BitsPerElement(d.Format)
	pitch := req.Pitch
	width, rows := s.Extent.Width, s.Extent.Height
	if format.IsCompressed(d.Format) {
		width, rows = width/4, rows/4
		pitch = max(pitch/4, 1)
	}
	layers := s.Extent.DepthOrArrayLayers

	linear := make([]byte, uint64(width)*uint64(rows)*uint64(layers)*uint64(bpp/8))
	src := c.mem.Bytes(buf.Address, clampAddr(tiling.SurfaceBytes(req.TileMode, pitch, rows, layers, bpp)))
	tiling.Untile(linear, width, src, req.TileMode, swizzle, pitch, width, rows, layers, 0, req.IsDepth, bpp)

	data := format.Expand(d, linear)
	texel := format.HostTexelBytes(buf.HostFormat)
	if texel == 0 {
		texel = bpp / 8
	}
	return linearImage{
		data:     data,
		width:    width,
		rows:     rows,
		layers:   layers,
		rowBytes: width * texel,
	}
}
