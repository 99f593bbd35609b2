package latte

import (
	"errors"
	"fmt"
	"io"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/latte/format"
	"github.com/gogpu/latte/internal/logging"
	"github.com/gogpu/latte/mem"
	"github.com/gogpu/latte/regs"
	"github.com/gogpu/latte/render"
	"github.com/gogpu/latte/surface"
)

// Stats is a snapshot of a Driver's counters.
type Stats struct {
	Surface surface.Stats
	Render  render.Stats

	Frames      uint64
	Submissions uint64
	// Inflight is the number of submissions not yet known to be complete.
	Inflight int
}

// Driver is a graphics-translation context. It owns the guest register
// file, the surface cache, the draw orchestrator and the host command
// stream they record into.
//
// Driver is not safe for concurrent use. One goroutine, the one
// processing the guest command buffer, owns it.
type Driver struct {
	device hal.Device
	queue  hal.Queue

	regs     *regs.File
	surfaces *surface.Cache
	orch     *render.Orchestrator
	stream   *stream

	frames      uint64
	submissions uint64
	halted      error
	closed      bool
}

// New creates a Driver that translates guest work onto device and queue.
// Guest memory is read through view and guest shaders are translated by
// tr, which may be nil when no draws are issued.
//
// New validates the format tables first and fails if any guest format
// is neither mapped nor listed as unsupported.
func New(device hal.Device, queue hal.Queue, view mem.View, tr render.ShaderTranslator, opts ...Option) (*Driver, error) {
	if device == nil || queue == nil {
		return nil, errors.New("latte: nil device or queue")
	}
	if view == nil {
		return nil, errors.New("latte: nil guest memory view")
	}
	if err := format.Validate(); err != nil {
		return nil, fmt.Errorf("latte: %w", err)
	}

	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	file := &regs.File{}
	surfaces := surface.New(device, queue, view, cfg.surface)
	d := &Driver{
		device:   device,
		queue:    queue,
		regs:     file,
		surfaces: surfaces,
		orch:     render.New(device, queue, file, view, surfaces, tr, cfg.render),
		stream:   newStream(device, queue),
	}
	logging.L().Debug("latte: driver created",
		"evictAfterFrames", cfg.surface.EvictAfterFrames,
		"pipelineCacheSize", cfg.render.PipelineCacheSize)
	return d, nil
}

// NewFromProvider creates a Driver on the HAL device of a host
// application's device provider.
func NewFromProvider(p render.DeviceHandle, view mem.View, tr render.ShaderTranslator, opts ...Option) (*Driver, error) {
	device, queue, err := render.HAL(p)
	if err != nil {
		return nil, fmt.Errorf("latte: %w", err)
	}
	return New(device, queue, view, tr, opts...)
}

// Registers returns the guest register file. The command processor
// writes register packets into it before each draw.
func (d *Driver) Registers() *regs.File { return d.regs }

// check returns the error every method reports once the driver stopped.
func (d *Driver) check() error {
	if d.closed {
		return ErrClosed
	}
	if d.halted != nil {
		return fmt.Errorf("%w: %w", ErrHalted, d.halted)
	}
	return nil
}

// halt records the first fatal error.
func (d *Driver) halt(err error) error {
	if d.halted == nil {
		d.halted = err
		logging.L().Warn("latte: driver halted", "err", err)
	}
	return err
}

// ResolveSurface returns the host surface for a guest surface request.
// Copies and uploads it needs are recorded into the frame's command
// stream. Every error is fatal and halts the driver.
func (d *Driver) ResolveSurface(req surface.Request) (*surface.Buffer, *surface.Surface, error) {
	if err := d.check(); err != nil {
		return nil, nil, err
	}
	enc, err := d.stream.encoder()
	if err != nil {
		return nil, nil, d.halt(err)
	}
	buf, s, err := d.surfaces.Resolve(enc, req)
	if err != nil {
		return nil, nil, d.halt(fmt.Errorf("latte: resolve surface %#x: %w", req.BaseAddress, err))
	}
	return buf, s, nil
}

// IssueIndexedDraw translates one guest draw using the current register
// state. indices holds numIndices guest indices for DMA draws and is nil
// for auto-indexed draws.
//
// A draw rejected by one of the orchestrator's gates is dropped: the
// Outcome names the gate and the error is nil. A non-nil error is fatal
// and halts the driver.
func (d *Driver) IssueIndexedDraw(init regs.VgtDrawInitiator, numIndices uint32, indices []byte) (render.Outcome, error) {
	if err := d.check(); err != nil {
		return render.Outcome{}, err
	}
	enc, err := d.stream.encoder()
	if err != nil {
		return render.Outcome{}, d.halt(err)
	}
	out, err := d.orch.IssueIndexedDraw(enc, init, numIndices, indices)
	if err != nil {
		return render.Outcome{}, d.halt(fmt.Errorf("latte: draw: %w", err))
	}
	return out, nil
}

// InvalidateMemory marks every surface overlapping the guest range as
// possibly changed by the CPU. The next read-use re-hashes it.
func (d *Driver) InvalidateMemory(addr, size uint32) {
	if d.closed {
		return
	}
	d.surfaces.InvalidateMemory(addr, size)
}

// FreeMemory drops every host resource backed by the released guest
// range.
func (d *Driver) FreeMemory(addr, size uint32) {
	if d.closed {
		return
	}
	d.surfaces.FreeMemory(addr, size)
	d.orch.FreeMemory(addr, size)
}

// Flush submits the commands recorded so far and releases resources of
// submissions the GPU has finished.
func (d *Driver) Flush() error {
	if err := d.check(); err != nil {
		return err
	}
	index, ok, err := d.stream.flush()
	if err != nil {
		return d.halt(err)
	}
	if ok {
		d.submissions++
	} else {
		// Nothing new was recorded, so objects released since the last
		// flush are referenced by earlier submissions at most.
		index = d.stream.last
	}
	d.surfaces.Submitted(index)
	d.orch.Submitted(index)
	d.reclaim(d.queue.PollCompleted())
	return nil
}

func (d *Driver) reclaim(completed uint64) {
	d.stream.reclaim(completed)
	d.surfaces.Reclaim(completed)
	d.orch.Reclaim(completed)
}

// EndFrame flushes the frame and ages the surface cache.
func (d *Driver) EndFrame() error {
	if err := d.Flush(); err != nil {
		return err
	}
	d.frames++
	d.surfaces.BeginFrame()
	s := d.surfaces.Stats()
	logging.L().Info("latte: frame done",
		"frame", d.frames,
		"buffers", s.Buffers,
		"surfaces", s.Surfaces,
		"evictions", s.Evictions)
	return nil
}

// DumpTIFF writes the guest contents of buf as a TIFF image.
func (d *Driver) DumpTIFF(w io.Writer, buf *surface.Buffer) error {
	if d.closed {
		return ErrClosed
	}
	return d.surfaces.DumpTIFF(w, buf)
}

// Stats returns a snapshot of the counters.
func (d *Driver) Stats() Stats {
	return Stats{
		Surface:     d.surfaces.Stats(),
		Render:      d.orch.Stats(),
		Frames:      d.frames,
		Submissions: d.submissions,
		Inflight:    d.stream.pending(),
	}
}

// Close waits for the GPU and destroys every host object. Commands
// recorded since the last Flush are discarded.
func (d *Driver) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	err := d.device.WaitIdle()
	if err != nil {
		err = fmt.Errorf("latte: wait idle: %w", err)
	}
	d.stream.close()
	d.orch.Close()
	d.surfaces.Close()
	return err
}
