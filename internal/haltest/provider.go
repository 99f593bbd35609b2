package haltest

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Provider is a gpucontext.DeviceProvider that also exposes its HAL
// device and queue, like a host application sharing its device.
type Provider struct {
	HAL      hal.Device
	HALQueue hal.Queue
}

func (p *Provider) Device() gpucontext.Device { return p.HAL }
func (p *Provider) Queue() gpucontext.Queue   { return p.HALQueue }

func (p *Provider) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

func (p *Provider) Adapter() gpucontext.Adapter { return nil }

func (p *Provider) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "haltest", Type: gpucontext.AdapterTypeUnknown}
}

// HalDevice returns the HAL device.
func (p *Provider) HalDevice() any { return p.HAL }

// HalQueue returns the HAL queue.
func (p *Provider) HalQueue() any { return p.HALQueue }

var _ gpucontext.DeviceProvider = (*Provider)(nil)
