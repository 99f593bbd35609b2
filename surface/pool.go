// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

// pool owns every Surface. Slots are reused; a generation counter makes
// handles to released slots stale.
type pool struct {
	slots []poolSlot
	free  []uint32
	live  int
}

type poolSlot struct {
	gen     uint32
	surface *Surface
}

func (p *pool) alloc(s *Surface) Handle {
	var idx uint32
	if n := len(p.free); n > 0 {
		idx = p.free[n-1]
		p.free = p.free[:n-1]
	} else {
		idx = uint32(len(p.slots))
		p.slots = append(p.slots, poolSlot{})
	}
	slot := &p.slots[idx]
	slot.gen++
	slot.surface = s
	s.handle = Handle{index: idx, gen: slot.gen}
	p.live++
	return s.handle
}

// get returns the surface for h, or nil if h is stale.
func (p *pool) get(h Handle) *Surface {
	if !h.Valid() || int(h.index) >= len(p.slots) {
		return nil
	}
	slot := &p.slots[h.index]
	if slot.gen != h.gen {
		return nil
	}
	return slot.surface
}

func (p *pool) release(h Handle) {
	if p.get(h) == nil {
		return
	}
	slot := &p.slots[h.index]
	slot.surface = nil
	slot.gen++
	p.free = append(p.free, h.index)
	p.live--
}
