package latte

import (
	"errors"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/latte/format"
	"github.com/gogpu/latte/surface"
)

// ErrHalted is returned by every Driver method after a fatal error. The
// first fatal error is wrapped alongside it.
var ErrHalted = errors.New("latte: driver halted")

// ErrClosed is returned after Close.
var ErrClosed = errors.New("latte: driver closed")

// fatalErrors mark emulation coverage gaps and host failures that leave
// the translation in an unknown state.
var fatalErrors = []error{
	ErrHalted,
	format.ErrUnsupported,
	surface.ErrUnsupportedDimension,
	surface.ErrInvalidRequest,
	hal.ErrDeviceOutOfMemory,
	hal.ErrDeviceLost,
}

// IsFatal reports whether err ends the session. Gate failures of
// individual draws are never fatal; they are reported through
// render.Outcome instead of an error.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	for _, target := range fatalErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
