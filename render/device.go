// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"
)

// DeviceHandle provides GPU device access from the host application.
//
// The emulator does not create a device. The host application owns it
// and shares it through the gpucontext ecosystem; DeviceHandle is an
// alias for gpucontext.DeviceProvider so any provider can be passed
// directly.
type DeviceHandle = gpucontext.DeviceProvider

// ErrNoHAL is returned by HAL when a provider does not expose HAL
// objects.
var ErrNoHAL = errors.New("render: provider does not expose a HAL device")

// halProvider is implemented by providers that can hand out their HAL
// device and queue.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// HAL extracts the HAL device and queue behind a provider.
func HAL(h DeviceHandle) (hal.Device, hal.Queue, error) {
	hp, ok := h.(halProvider)
	if !ok {
		return nil, nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, nil, ErrNoHAL
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, nil, ErrNoHAL
	}
	return device, queue, nil
}
