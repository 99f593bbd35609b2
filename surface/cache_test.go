// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"bytes"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/latte/format"
	"github.com/gogpu/latte/internal/haltest"
	"github.com/gogpu/latte/mem"
	"github.com/gogpu/latte/tiling"
)

var rgba8 = format.Descriptor{Format: format.Fmt8_8_8_8}

type fixture struct {
	cache  *Cache
	device *haltest.Device
	queue  *haltest.Queue
	mem    *mem.Flat
	enc    hal.CommandEncoder
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	device, queue := haltest.New()
	flat := mem.NewFlat(0, 4<<20)
	enc, err := device.CreateCommandEncoder(nil)
	if err != nil {
		t.Fatalf("CreateCommandEncoder() error = %v", err)
	}
	c := New(device, queue, flat, cfg)
	t.Cleanup(c.Close)
	return &fixture{cache: c, device: device, queue: queue, mem: flat, enc: enc}
}

func (f *fixture) resolve(t *testing.T, req Request) (*Buffer, *Surface) {
	t.Helper()
	buf, s, err := f.cache.Resolve(f.enc, req)
	if err != nil {
		t.Fatalf("Resolve(%+v) error = %v", req, err)
	}
	return buf, s
}

// pattern fills n bytes of guest memory at addr with a deterministic
// non-repeating pattern and returns it.
func (f *fixture) pattern(addr uint32, n int, seed byte) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = byte(i*7) ^ byte(i>>8) ^ seed
	}
	f.mem.Write(addr, p)
	return p
}

// complete submits everything recorded so far as submission index and
// marks it finished.
func (f *fixture) complete(index uint64) {
	f.cache.Submitted(index)
	f.cache.Reclaim(index)
}

func hostTexture(t *testing.T, s *Surface) *haltest.Texture {
	t.Helper()
	tex, ok := s.Texture.(*haltest.Texture)
	if !ok {
		t.Fatalf("surface texture is %T, want *haltest.Texture", s.Texture)
	}
	return tex
}

func linearRequest(addr, pitch, w, h uint32) Request {
	return Request{
		BaseAddress: addr,
		Pitch:       pitch,
		Width:       w,
		Height:      h,
		Depth:       1,
		Dim:         Dim2D,
		Format:      rgba8,
		TileMode:    tiling.LinearAligned,
	}
}

func TestResolveEndToEnd(t *testing.T) {
	f := newFixture(t, Config{})
	guest := f.pattern(0x1000, 256*256*4, 0)
	small := linearRequest(0x1000, 256, 128, 128)

	buf, first := f.resolve(t, small)
	if buf.Address != 0x1000 || buf.MemStart != 0x1000 {
		t.Errorf("Address, MemStart = %#x, %#x, want 0x1000", buf.Address, buf.MemStart)
	}
	if buf.Master() != first.Handle() || buf.Active() != first.Handle() {
		t.Errorf("first surface is not master and active")
	}
	if first.Width != 128 || first.Height != 128 {
		t.Errorf("first surface = %dx%d, want 128x128", first.Width, first.Height)
	}
	if got := f.cache.Stats().Uploads; got != 1 {
		t.Fatalf("Uploads after first resolve = %d, want 1", got)
	}

	_, again := f.resolve(t, small)
	if again != first {
		t.Errorf("second resolve returned a different surface")
	}
	if got := f.cache.Stats().Uploads; got != 1 {
		t.Errorf("Uploads after second resolve = %d, want 1", got)
	}

	big := linearRequest(0x1000, 256, 256, 256)
	_, master := f.resolve(t, big)
	if master == first {
		t.Fatal("256x256 resolve returned the 128x128 surface")
	}
	if buf.Master() != master.Handle() || buf.Active() != master.Handle() {
		t.Errorf("256x256 surface is not master and active")
	}
	if master.Next() != first.Handle() {
		t.Errorf("old surface not linked after new master")
	}
	if f.cache.Surface(first.Handle()) != first {
		t.Errorf("old surface no longer reachable")
	}
	if got := f.cache.Stats().Uploads; got != 1 {
		t.Errorf("Uploads after resize = %d, want 1", got)
	}
	if got := f.device.Log.Count(haltest.CopyTextureToTexture); got != 1 {
		t.Errorf("texture copies = %d, want 1", got)
	}
	if want := uint32(0x1000 + 256*256*4); buf.MemEnd != want {
		t.Errorf("MemEnd = %#x, want %#x", buf.MemEnd, want)
	}

	tex := hostTexture(t, master)
	for _, p := range [][2]uint32{{0, 0}, {17, 3}, {127, 127}, {64, 100}} {
		off := (p[1]*256 + p[0]) * 4
		if got, want := tex.Texel(p[0], p[1], 0), guest[off:off+4]; !bytes.Equal(got, want) {
			t.Errorf("texel %v = %v, want %v", p, got, want)
		}
	}
	if got := tex.Texel(200, 200, 0); !bytes.Equal(got, []byte{0, 0, 0, 0}) {
		t.Errorf("texel outside copied region = %v, want zero", got)
	}
}

func TestResolveIdempotentUpload(t *testing.T) {
	f := newFixture(t, Config{})
	f.pattern(0x4000, 64*64*4, 1)
	req := linearRequest(0x4000, 64, 64, 64)

	for range 5 {
		f.resolve(t, req)
	}
	if got := f.cache.Stats().Uploads; got != 1 {
		t.Errorf("Uploads = %d, want 1", got)
	}

	// Invalidation without a content change is caught by the hash.
	f.cache.InvalidateMemory(0x4000, 64)
	f.resolve(t, req)
	st := f.cache.Stats()
	if st.Uploads != 1 || st.HashHits != 1 {
		t.Errorf("Uploads, HashHits = %d, %d, want 1, 1", st.Uploads, st.HashHits)
	}
}

func TestResolveChangeDetection(t *testing.T) {
	f := newFixture(t, Config{})
	f.pattern(0x8000, 32*32*4, 2)
	req := linearRequest(0x8000, 32, 32, 32)

	buf, s := f.resolve(t, req)
	before := buf.Hash

	f.mem.Write(0x8000+5*32*4+3*4, []byte{0xde, 0xad, 0xbe, 0xef})
	f.cache.InvalidateMemory(0x8000+5*32*4, 4)
	if !buf.Dirty {
		t.Fatal("InvalidateMemory did not mark the buffer dirty")
	}
	f.resolve(t, req)

	if got := f.cache.Stats().Uploads; got != 2 {
		t.Errorf("Uploads = %d, want 2", got)
	}
	want, _ := f.cache.HashMemory(&req)
	if buf.Hash != want || buf.Hash == before {
		t.Errorf("Hash = %v, want %v (before %v)", buf.Hash, want, before)
	}
	if got := hostTexture(t, s).Texel(3, 5, 0); !bytes.Equal(got, []byte{0xde, 0xad, 0xbe, 0xef}) {
		t.Errorf("updated texel = %v", got)
	}
	if buf.Dirty {
		t.Error("buffer still dirty after upload")
	}
}

func TestResolveWithoutInvalidateKeepsHostCopy(t *testing.T) {
	f := newFixture(t, Config{})
	req := linearRequest(0x8000, 16, 16, 16)
	req.ForWrite = true
	buf, _ := f.resolve(t, req)
	if buf.Dirty {
		t.Error("write-use left the buffer dirty")
	}

	f.pattern(0x8000, 16*16*4, 3)
	req.ForWrite = false
	f.resolve(t, req)
	if got := f.cache.Stats().Uploads; got != 0 {
		t.Errorf("Uploads = %d, want 0", got)
	}
}

func TestResolveFindsChainEntry(t *testing.T) {
	f := newFixture(t, Config{})
	f.pattern(0x10000, 64*64*4, 4)

	buf, big := f.resolve(t, linearRequest(0x10000, 64, 64, 64))
	_, small := f.resolve(t, linearRequest(0x10000, 64, 32, 32))
	if buf.Master() != big.Handle() {
		t.Fatal("smaller request replaced the master")
	}
	if big.Next() != small.Handle() {
		t.Error("dedicated surface not linked after master")
	}

	f.device.Log.Reset()
	_, got := f.resolve(t, linearRequest(0x10000, 64, 64, 64))
	if got != big {
		t.Error("chain search did not return the master")
	}
	// Active (32x32) is copied up into the master only.
	if n := f.device.Log.Count(haltest.CopyTextureToTexture); n != 1 {
		t.Errorf("copies = %d, want 1", n)
	}
	if got := f.cache.Stats().Allocations; got != 2 {
		t.Errorf("Allocations = %d, want 2", got)
	}
}

func TestResolvePerAxisMaster(t *testing.T) {
	f := newFixture(t, Config{})
	buf, _ := f.resolve(t, linearRequest(0x20000, 128, 128, 32))
	_, tall := f.resolve(t, linearRequest(0x20000, 128, 32, 128))

	master := f.cache.Surface(buf.Master())
	if master.Width != 128 || master.Height != 128 {
		t.Errorf("master = %dx%d, want 128x128", master.Width, master.Height)
	}
	if tall == master {
		t.Error("32x128 request returned the master")
	}
	if buf.Active() != tall.Handle() {
		t.Error("dedicated surface is not active")
	}
	// old master -> new master, new master -> dedicated.
	if n := f.device.Log.Count(haltest.CopyTextureToTexture); n != 2 {
		t.Errorf("copies = %d, want 2", n)
	}
	if got := f.cache.Stats().Surfaces; got != 3 {
		t.Errorf("Surfaces = %d, want 3", got)
	}
}

func TestResolveContentPreservedAcrossChain(t *testing.T) {
	f := newFixture(t, Config{})
	guest := f.pattern(0x30000, 64*64*4, 5)

	_, small := f.resolve(t, linearRequest(0x30000, 64, 32, 32))
	f.resolve(t, linearRequest(0x30000, 64, 64, 16))
	_, back := f.resolve(t, linearRequest(0x30000, 64, 32, 32))
	if back != small {
		t.Fatal("chain search did not find the original surface")
	}

	tex := hostTexture(t, small)
	for y := range uint32(16) {
		for x := range uint32(32) {
			off := (y*64 + x) * 4
			if got := tex.Texel(x, y, 0); !bytes.Equal(got, guest[off:off+4]) {
				t.Fatalf("texel (%d,%d) = %v, want %v", x, y, got, guest[off:off+4])
			}
		}
	}
}

func TestResolveMacroTiledSwizzle(t *testing.T) {
	f := newFixture(t, Config{})
	const (
		base    = 0x40000 | 0x300
		pitch   = 64
		w, h    = 48, 32
		swizzle = 0x300
	)
	linear := make([]byte, w*h*4)
	for i := range linear {
		linear[i] = byte(i * 13)
	}
	tiled := make([]byte, tiling.SurfaceBytes(tiling.Tiled2DThin1, pitch, h, 1, 32))
	tiling.Tile(tiled, linear, w, tiling.Tiled2DThin1, swizzle, pitch, w, h, 1, 0, false, 32)
	f.mem.Write(0x40000, tiled)

	req := Request{
		BaseAddress: base, Pitch: pitch, Width: w, Height: h, Depth: 1,
		Dim: Dim2D, Format: rgba8, TileMode: tiling.Tiled2DThin1,
	}
	buf, s := f.resolve(t, req)
	if buf.Address != 0x40000 {
		t.Errorf("Address = %#x, want 0x40000", buf.Address)
	}
	tex := hostTexture(t, s)
	for y := range uint32(h) {
		for x := range uint32(w) {
			off := (y*w + x) * 4
			if got := tex.Texel(x, y, 0); !bytes.Equal(got, linear[off:off+4]) {
				t.Fatalf("texel (%d,%d) = %v, want %v", x, y, got, linear[off:off+4])
			}
		}
	}
}

func TestResolveHostExtent(t *testing.T) {
	tests := []struct {
		name     string
		req      Request
		dim      gputypes.TextureDimension
		extent   hal.Extent3D
		viewDim  gputypes.TextureViewDimension
		renderOK bool
	}{
		{
			name:     "1D",
			req:      Request{Width: 64, Height: 1, Depth: 1, Dim: Dim1D, Format: rgba8},
			dim:      gputypes.TextureDimension1D,
			extent:   hal.Extent3D{Width: 64, Height: 1, DepthOrArrayLayers: 1},
			viewDim:  gputypes.TextureViewDimension1D,
			renderOK: false,
		},
		{
			name:     "1DArray",
			req:      Request{Width: 64, Height: 8, Depth: 1, Dim: Dim1DArray, Format: rgba8},
			dim:      gputypes.TextureDimension2D,
			extent:   hal.Extent3D{Width: 64, Height: 8, DepthOrArrayLayers: 1},
			viewDim:  gputypes.TextureViewDimension2D,
			renderOK: true,
		},
		{
			name:     "2DArray",
			req:      Request{Width: 16, Height: 16, Depth: 4, Dim: Dim2DArray, Format: rgba8},
			dim:      gputypes.TextureDimension2D,
			extent:   hal.Extent3D{Width: 16, Height: 16, DepthOrArrayLayers: 4},
			viewDim:  gputypes.TextureViewDimension2DArray,
			renderOK: true,
		},
		{
			name:     "Cubemap",
			req:      Request{Width: 16, Height: 16, Depth: 1, Dim: DimCubemap, Format: rgba8},
			dim:      gputypes.TextureDimension2D,
			extent:   hal.Extent3D{Width: 16, Height: 16, DepthOrArrayLayers: 6},
			viewDim:  gputypes.TextureViewDimensionCube,
			renderOK: true,
		},
		{
			name:     "CubemapArray",
			req:      Request{Width: 16, Height: 16, Depth: 2, Dim: DimCubemap, Format: rgba8},
			dim:      gputypes.TextureDimension2D,
			extent:   hal.Extent3D{Width: 16, Height: 16, DepthOrArrayLayers: 12},
			viewDim:  gputypes.TextureViewDimensionCubeArray,
			renderOK: true,
		},
		{
			name:     "3D",
			req:      Request{Width: 8, Height: 8, Depth: 8, Dim: Dim3D, Format: rgba8},
			dim:      gputypes.TextureDimension3D,
			extent:   hal.Extent3D{Width: 8, Height: 8, DepthOrArrayLayers: 8},
			viewDim:  gputypes.TextureViewDimension3D,
			renderOK: true,
		},
		{
			name:     "BC1 rounds up",
			req:      Request{Width: 5, Height: 6, Depth: 1, Dim: Dim2D, Format: format.Descriptor{Format: format.FmtBC1}},
			dim:      gputypes.TextureDimension2D,
			extent:   hal.Extent3D{Width: 8, Height: 8, DepthOrArrayLayers: 1},
			viewDim:  gputypes.TextureViewDimension2D,
			renderOK: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Config{})
			req := tt.req
			req.BaseAddress = 0x1000
			req.Pitch = max(req.Width, 8)
			req.TileMode = tiling.LinearAligned
			_, s := f.resolve(t, req)

			tex := hostTexture(t, s)
			if tex.Desc.Dimension != tt.dim {
				t.Errorf("Dimension = %v, want %v", tex.Desc.Dimension, tt.dim)
			}
			if tex.Desc.Size != tt.extent || s.Extent != tt.extent {
				t.Errorf("Size = %+v, Extent = %+v, want %+v", tex.Desc.Size, s.Extent, tt.extent)
			}
			view := s.View.(*haltest.TextureView)
			if view.Desc.Dimension != tt.viewDim {
				t.Errorf("view Dimension = %v, want %v", view.Desc.Dimension, tt.viewDim)
			}
			if got := tex.Desc.Usage&gputypes.TextureUsageRenderAttachment != 0; got != tt.renderOK {
				t.Errorf("RenderAttachment usage = %t, want %t", got, tt.renderOK)
			}
			if got := f.cache.Stats().Uploads; got != 1 {
				t.Errorf("Uploads = %d, want 1", got)
			}
		})
	}
}

func TestResolveErrors(t *testing.T) {
	valid := linearRequest(0x1000, 16, 16, 16)
	tests := []struct {
		name   string
		modify func(*Request)
		want   error
	}{
		{"zero address", func(r *Request) { r.BaseAddress = 0 }, ErrInvalidRequest},
		{"zero width", func(r *Request) { r.Width = 0 }, ErrInvalidRequest},
		{"height too large", func(r *Request) { r.Height = MaxExtent + 1 }, ErrInvalidRequest},
		{"zero depth", func(r *Request) { r.Depth = 0 }, ErrInvalidRequest},
		{"bad tile mode", func(r *Request) { r.TileMode = 16 }, ErrInvalidRequest},
		{"msaa", func(r *Request) { r.Dim = Dim2DMSAA }, ErrUnsupportedDimension},
		{"unknown dim", func(r *Request) { r.Dim = 9 }, ErrUnsupportedDimension},
		{"unsupported format", func(r *Request) { r.Format = format.Descriptor{Format: format.Fmt3_3_2} }, format.ErrUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Config{})
			req := valid
			tt.modify(&req)
			_, _, err := f.cache.Resolve(f.enc, req)
			if !errors.Is(err, tt.want) {
				t.Errorf("Resolve() error = %v, want %v", err, tt.want)
			}
			if got := f.cache.Stats().Buffers; got != 0 {
				t.Errorf("Buffers = %d, want 0", got)
			}
		})
	}
}

func TestResolveAllocationFailure(t *testing.T) {
	f := newFixture(t, Config{})
	f.device.FailTextures = true
	_, _, err := f.cache.Resolve(f.enc, linearRequest(0x1000, 16, 16, 16))
	if !errors.Is(err, hal.ErrDeviceOutOfMemory) {
		t.Errorf("Resolve() error = %v, want %v", err, hal.ErrDeviceOutOfMemory)
	}
}

func TestResolveAfterClose(t *testing.T) {
	f := newFixture(t, Config{})
	f.resolve(t, linearRequest(0x1000, 16, 16, 16))
	f.cache.Close()
	if n := f.device.LiveTextures(); n != 0 {
		t.Errorf("live textures after Close = %d, want 0", n)
	}
	if _, _, err := f.cache.Resolve(f.enc, linearRequest(0x1000, 16, 16, 16)); !errors.Is(err, ErrClosed) {
		t.Errorf("Resolve() after Close error = %v, want %v", err, ErrClosed)
	}
}

func TestKeyCollisionExactMatch(t *testing.T) {
	f := newFixture(t, Config{})
	a := linearRequest(0x1000, 32, 32, 8)
	b := a
	b.Dim = Dim1DArray

	aligned, _ := normalize(a.BaseAddress, a.TileMode)
	if KeyOf(aligned, a.Format, a.Dim, a.Pitch, a.Height) != KeyOf(aligned, b.Format, b.Dim, b.Pitch, b.Height) {
		t.Fatal("test requests do not collide")
	}

	bufA, _ := f.resolve(t, a)
	bufB, _ := f.resolve(t, b)
	if bufA == bufB {
		t.Error("colliding requests share a buffer")
	}
	if got := len(f.cache.buckets[bufA.Key]); got != 2 {
		t.Errorf("bucket size = %d, want 2", got)
	}
}

func TestKeyBucketing(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	dims := []Dim{Dim1D, Dim2D, Dim3D, DimCubemap, Dim1DArray, Dim2DArray}
	formats := format.All()

	for range 10000 {
		mode := tiling.TileMode(rng.Uint32N(16))
		d := format.Descriptor{
			Format:    formats[rng.IntN(len(formats))],
			NumFormat: format.NumFormat(rng.Uint32N(3)),
			Comp:      format.FormatComp(rng.Uint32N(2)),
			Degamma:   rng.IntN(2) == 0,
		}
		dim := dims[rng.IntN(len(dims))]
		pitch, height := 1+rng.Uint32N(MaxExtent), 1+rng.Uint32N(MaxExtent)

		a1, _ := normalize(1+rng.Uint32(), mode)
		a2, _ := normalize(1+rng.Uint32(), mode)
		k1 := KeyOf(a1, d, dim, pitch, height)
		k2 := KeyOf(a2, d, dim, pitch, height)
		if a1 != a2 && k1 == k2 {
			t.Fatalf("KeyOf(%#x) == KeyOf(%#x) for %v %v pitch=%d height=%d", a1, a2, d, dim, pitch, height)
		}
		if a1 == a2 && k1 != k2 {
			t.Fatalf("KeyOf not deterministic for %#x", a1)
		}
	}
}

func TestKeyOf(t *testing.T) {
	d := format.Descriptor{Format: format.Fmt8_8_8_8, NumFormat: format.NumFormatInt, Comp: format.CompSigned, Degamma: true}
	base := uint64(0x1000)<<32 ^ 0x1A<<22 ^ 1<<28 ^ 1<<30 ^ 1<<31
	tests := []struct {
		dim  Dim
		want uint64
	}{
		{Dim1D, base},
		{Dim2D, base ^ 256},
		{Dim1DArray, base ^ 256},
		{Dim2DArray, base ^ 256 ^ 64<<16},
		{DimCubemap, base ^ 256 ^ 64<<16},
		{Dim3D, base ^ 256 ^ 64<<16},
	}
	for _, tt := range tests {
		if got := KeyOf(0x1000, d, tt.dim, 256, 64); uint64(got) != tt.want {
			t.Errorf("KeyOf(%v) = %#x, want %#x", tt.dim, uint64(got), tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		base          uint32
		mode          tiling.TileMode
		aligned, swzl uint32
	}{
		{0x1000, tiling.LinearAligned, 0x1000, 0},
		{0x1234, tiling.Tiled1DThin1, 0x1200, 0x34},
		{0x1234, tiling.Tiled2DThin1, 0x1000, 0x234},
		{0x1FFF, tiling.Tiled3BThick, 0x1800, 0x7FF},
	}
	for _, tt := range tests {
		aligned, swizzle := normalize(tt.base, tt.mode)
		if aligned != tt.aligned || swizzle != tt.swzl {
			t.Errorf("normalize(%#x, %v) = %#x, %#x, want %#x, %#x", tt.base, tt.mode, aligned, swizzle, tt.aligned, tt.swzl)
		}
	}
}

func TestBeginFrameEvictsOrphans(t *testing.T) {
	f := newFixture(t, Config{EvictAfterFrames: 2})
	big := linearRequest(0x1000, 64, 64, 64)
	big.ForWrite = true
	small := linearRequest(0x1000, 64, 32, 32)

	buf, master := f.resolve(t, big)
	_, dedicated := f.resolve(t, small)
	f.cache.BeginFrame()
	f.resolve(t, big)

	f.cache.BeginFrame()
	if f.cache.Surface(dedicated.Handle()) == nil {
		t.Fatal("dedicated surface evicted too early")
	}
	f.cache.BeginFrame()

	if f.cache.Surface(dedicated.Handle()) != nil {
		t.Error("orphaned surface not evicted")
	}
	f.complete(1)
	if !hostTexture(t, dedicated).Destroyed {
		t.Error("orphaned texture not destroyed")
	}
	if master.Next().Valid() {
		t.Error("evicted surface still linked")
	}
	if f.cache.Surface(buf.Master()) != master {
		t.Error("master evicted")
	}
	st := f.cache.Stats()
	if st.Buffers != 1 || st.Surfaces != 1 || st.Evictions != 1 {
		t.Errorf("Stats = %+v, want 1 buffer, 1 surface, 1 eviction", st)
	}
}

func TestBeginFrameDropsUnwrittenBuffers(t *testing.T) {
	f := newFixture(t, Config{EvictAfterFrames: 1})
	f.resolve(t, linearRequest(0x1000, 16, 16, 16))
	rt := linearRequest(0x2000, 16, 16, 16)
	rt.ForWrite = true
	f.resolve(t, rt)

	f.cache.BeginFrame()
	f.cache.BeginFrame()
	f.complete(1)

	if got := f.cache.Stats().Buffers; got != 1 {
		t.Errorf("Buffers = %d, want 1", got)
	}
	if got := f.device.LiveTextures(); got != 1 {
		t.Errorf("live textures = %d, want 1", got)
	}
}

func TestBeginFrameEvictionDisabled(t *testing.T) {
	f := newFixture(t, Config{EvictAfterFrames: -1})
	f.resolve(t, linearRequest(0x1000, 16, 16, 16))
	for range 200 {
		f.cache.BeginFrame()
	}
	if got := f.cache.Stats().Buffers; got != 1 {
		t.Errorf("Buffers = %d, want 1", got)
	}
}

func TestFreeMemory(t *testing.T) {
	f := newFixture(t, Config{})
	f.resolve(t, linearRequest(0x1000, 16, 16, 16)) // [0x1000, 0x1400)
	f.resolve(t, linearRequest(0x2000, 16, 16, 16))

	f.cache.FreeMemory(0x1400, 0x100)
	if got := f.cache.Stats().Buffers; got != 2 {
		t.Fatalf("Buffers after non-overlapping free = %d, want 2", got)
	}

	f.cache.FreeMemory(0x13FF, 1)
	if got := f.cache.Stats().Buffers; got != 1 {
		t.Errorf("Buffers = %d, want 1", got)
	}
	f.complete(1)
	if got := f.device.LiveTextures(); got != 1 {
		t.Errorf("live textures = %d, want 1", got)
	}

	// A freed range is recreated and uploaded on next use.
	f.resolve(t, linearRequest(0x1000, 16, 16, 16))
	if got := f.cache.Stats().Uploads; got != 3 {
		t.Errorf("Uploads = %d, want 3", got)
	}
}

func TestStagingReclaim(t *testing.T) {
	f := newFixture(t, Config{})
	f.resolve(t, linearRequest(0x1000, 16, 16, 16))
	if len(f.device.Buffers) != 1 {
		t.Fatalf("staging buffers = %d, want 1", len(f.device.Buffers))
	}
	staging := f.device.Buffers[0]
	if staging.Desc.Size != 256*16 {
		t.Errorf("staging size = %d, want %d", staging.Desc.Size, 256*16)
	}

	f.cache.Submitted(7)
	f.cache.Reclaim(6)
	if staging.Destroyed {
		t.Error("staging buffer destroyed before its submission completed")
	}
	f.cache.Reclaim(7)
	if !staging.Destroyed {
		t.Error("staging buffer not destroyed")
	}
}

func TestReleasedTextureOutlivesPendingCommands(t *testing.T) {
	tests := []struct {
		name    string
		release func(f *fixture)
	}{
		{"free memory", func(f *fixture) { f.cache.FreeMemory(0x1000, 0x400) }},
		{"eviction", func(f *fixture) {
			f.cache.BeginFrame()
			f.cache.BeginFrame()
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Config{EvictAfterFrames: 1})
			_, s := f.resolve(t, linearRequest(0x1000, 16, 16, 16))
			tex := hostTexture(t, s)

			// The upload into tex is still recorded in the open encoder.
			tt.release(f)
			if f.cache.Surface(s.Handle()) != nil {
				t.Fatal("released surface still resolvable")
			}
			if tex.Destroyed {
				t.Fatal("texture destroyed before its commands were submitted")
			}

			f.cache.Submitted(3)
			f.cache.Reclaim(2)
			if tex.Destroyed {
				t.Fatal("texture destroyed before its submission completed")
			}
			f.cache.Reclaim(3)
			if !tex.Destroyed {
				t.Error("texture not destroyed after its submission completed")
			}
		})
	}
}

func TestSurfaceBytesCoversHashedRange(t *testing.T) {
	tests := []struct {
		name  string
		dim   Dim
		depth uint32
		want  uint64
	}{
		{"2d array", Dim2DArray, 3, 16 * 16 * 3 * 4},
		{"cubemap", DimCubemap, 1, 16 * 16 * 6 * 4},
		{"cube array", DimCubemap, 2, 16 * 16 * 12 * 4},
		{"3d", Dim3D, 4, 16 * 16 * 4 * 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := linearRequest(0x1000, 16, 16, 16)
			req.Dim, req.Depth = tt.dim, tt.depth
			if got := surfaceBytes(&req); got != tt.want {
				t.Errorf("surfaceBytes() = %d, want %d", got, tt.want)
			}
			if got := uint64(hashBytes(&req)); got != tt.want {
				t.Errorf("hashBytes() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestHashBytes(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want uint32
	}{
		{"rgba8 2D", Request{Pitch: 64, Height: 32, Depth: 1, Dim: Dim2D, Format: rgba8}, 64 * 32 * 4},
		{"cubemap", Request{Pitch: 16, Height: 16, Depth: 1, Dim: DimCubemap, Format: rgba8}, 16 * 16 * 6 * 4},
		{"array", Request{Pitch: 16, Height: 16, Depth: 3, Dim: Dim2DArray, Format: rgba8}, 16 * 16 * 3 * 4},
		{"bc1", Request{Pitch: 64, Height: 30, Depth: 1, Dim: Dim2D, Format: format.Descriptor{Format: format.FmtBC1}}, 16 * 8 * 8},
		{"bc3", Request{Pitch: 64, Height: 64, Depth: 1, Dim: Dim2D, Format: format.Descriptor{Format: format.FmtBC3}}, 16 * 16 * 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hashBytes(&tt.req); got != tt.want {
				t.Errorf("hashBytes() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDimString(t *testing.T) {
	if got := DimCubemap.String(); got != "Cubemap" {
		t.Errorf("String() = %q", got)
	}
	if got := Dim(42).String(); got != "Unknown(42)" {
		t.Errorf("String() = %q", got)
	}
}

func BenchmarkKeyOf(b *testing.B) {
	d := rgba8
	for b.Loop() {
		_ = KeyOf(0x1000, d, Dim2D, 256, 256)
	}
}
