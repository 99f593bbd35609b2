// Package latte translates work for the Wii U "Latte" GPU onto a modern
// WebGPU-shaped host API.
//
// # Overview
//
// The guest GPU describes everything through registers and raw memory:
// surfaces are addresses with a pitch, a format and a tile mode; draws
// are register state plus an index stream. latte turns that into host
// textures, buffers, pipelines and bind groups, and records the host
// commands in guest order.
//
// # Quick Start
//
//	d, err := latte.New(device, queue, guestMem, translator)
//	if err != nil {
//	    return err
//	}
//	defer d.Close()
//
//	// Register packets update the guest state.
//	d.Registers().Write(regs.VGT_PRIMITIVE_TYPE, uint32(regs.PrimTriList))
//
//	// Draw packets become host draws.
//	out, err := d.IssueIndexedDraw(init, 3, nil)
//	if err != nil {
//	    return err // fatal: the driver is halted
//	}
//	if !out.Drawn {
//	    log.Printf("draw dropped by %v: %v", out.Gate, out.Reason)
//	}
//
//	// Submit at the end of the guest frame.
//	err = d.EndFrame()
//
// # Architecture
//
// The library is organized into:
//   - format: guest surface formats and their host mapping
//   - tiling: micro and macro tile address decoding
//   - surface: the surface cache with aliasing chains and dirty tracking
//   - render: the draw orchestrator and its shader, pipeline and buffer caches
//   - regs, mem: the guest register file and guest memory view
//
// # Errors
//
// Draws rejected by validation are dropped and reported through
// render.Outcome. Errors returned by the Driver are fatal: unsupported
// formats, invalid surface requests and host allocation failures. After
// the first one every method returns ErrHalted. IsFatal classifies
// errors coming from the sub-packages.
package latte

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0-alpha.1"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0

	// VersionPrerelease is the prerelease identifier
	VersionPrerelease = "alpha.1"
)
