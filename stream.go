package latte

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"
)

// submission is a command buffer the GPU may still be executing.
type submission struct {
	enc hal.CommandEncoder
	cb  hal.CommandBuffer
}

// stream is the host command stream. Uploads, copies and draws of one
// frame are recorded into a single encoder so their order on the GPU
// matches the order of the guest commands.
type stream struct {
	device hal.Device
	queue  hal.Queue

	enc      hal.CommandEncoder
	inflight map[uint64]submission
	last     uint64
}

func newStream(device hal.Device, queue hal.Queue) *stream {
	return &stream{
		device:   device,
		queue:    queue,
		inflight: make(map[uint64]submission),
	}
}

// encoder returns the open encoder, beginning a new one if needed.
func (s *stream) encoder() (hal.CommandEncoder, error) {
	if s.enc != nil {
		return s.enc, nil
	}
	enc, err := s.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "latte-frame"})
	if err != nil {
		return nil, fmt.Errorf("latte: create command encoder: %w", err)
	}
	if err := enc.BeginEncoding("latte-frame"); err != nil {
		enc.Destroy()
		return nil, fmt.Errorf("latte: begin encoding: %w", err)
	}
	s.enc = enc
	return enc, nil
}

// flush submits the open encoder and returns its submission index. With
// nothing recorded it returns false.
func (s *stream) flush() (uint64, bool, error) {
	if s.enc == nil {
		return 0, false, nil
	}
	enc := s.enc
	s.enc = nil
	cb, err := enc.EndEncoding()
	if err != nil {
		enc.Destroy()
		return 0, false, fmt.Errorf("latte: end encoding: %w", err)
	}
	index, err := s.queue.Submit([]hal.CommandBuffer{cb})
	if err != nil {
		s.device.FreeCommandBuffer(cb)
		enc.Destroy()
		return 0, false, fmt.Errorf("latte: submit: %w", err)
	}
	s.inflight[index] = submission{enc: enc, cb: cb}
	s.last = index
	return index, true, nil
}

// reclaim frees command buffers of submissions up to completed.
func (s *stream) reclaim(completed uint64) {
	for index, sub := range s.inflight {
		if index > completed {
			continue
		}
		s.device.FreeCommandBuffer(sub.cb)
		sub.enc.Destroy()
		delete(s.inflight, index)
	}
}

// pending returns the number of submissions not yet reclaimed.
func (s *stream) pending() int { return len(s.inflight) }

// close discards the open encoder and frees every submission. The device
// must be idle.
func (s *stream) close() {
	if s.enc != nil {
		s.enc.DiscardEncoding()
		s.enc.Destroy()
		s.enc = nil
	}
	s.reclaim(s.last)
}
