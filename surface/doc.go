// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface maps guest GPU surfaces onto host textures.
//
// The guest never allocates textures through an API: it writes texels
// into memory and points registers at them. The Cache infers resource
// identity from the aligned base address, the format descriptor and the
// pitch/height, and keeps host textures coherent with guest memory.
//
// # Buffers and chains
//
// Each distinct identity owns a Buffer. The same memory is often viewed
// at several sizes, so a Buffer holds a chain of host Surfaces: the
// master (largest yet seen, head of the chain) and any exact-size
// surfaces linked after it. One surface is active at a time. When a
// request selects a different surface, content is funnelled from the
// active surface through the master into the target with region copies,
// so nothing rendered or uploaded is lost.
//
// # Uploads
//
// A Buffer is dirty when created and after InvalidateMemory touches its
// memory. A read-use of a dirty Buffer hashes the guest memory with
// 128-bit MurmurHash3; only a changed hash triggers untiling and a
// host upload. Hash collisions are treated as unchanged.
//
// # Lifetime
//
// Surfaces live in a pool addressed by generation-checked handles.
// BeginFrame destroys orphaned chain entries (neither master nor active)
// unused for Config.EvictAfterFrames frames, and drops whole buffers that
// the GPU never wrote once they age out. FreeMemory drops every buffer
// overlapping a released guest range.
package surface
