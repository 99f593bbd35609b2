// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import "errors"

// Sentinel errors. ErrInvalidRequest and ErrUnsupportedDimension mark
// emulation coverage gaps and are fatal to the session.
var (
	// ErrInvalidRequest is returned for a zero base address or an extent
	// outside 1..MaxExtent.
	ErrInvalidRequest = errors.New("surface: invalid request")

	// ErrUnsupportedDimension is returned for multisampled or unknown
	// dimension kinds.
	ErrUnsupportedDimension = errors.New("surface: unsupported dimension")

	// ErrDumpFormat is returned by DumpTIFF for formats without an 8-bit
	// RGBA host layout.
	ErrDumpFormat = errors.New("surface: format cannot be dumped")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("surface: cache closed")
)
