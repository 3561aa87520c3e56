package gpu

import "github.com/cogentcore/webgpu/wgpu"

// WGPUDeviceOption is a functional option applied to the WebGPU device during NewWGPUDevice.
type WGPUDeviceOption func(*wgpuDevice)

// WithPresentMode sets how the window surface delivers frames.
//
// Parameters:
//   - mode: PresentModeVSync or PresentModeUncapped
//
// Returns:
//   - WGPUDeviceOption: a function that applies the present mode option to a device
func WithPresentMode(mode PresentMode) WGPUDeviceOption {
	return func(d *wgpuDevice) {
		switch mode {
		case PresentModeVSync:
			d.presentMode = wgpu.PresentModeFifo
		default:
			d.presentMode = wgpu.PresentModeImmediate
		}
	}
}

// WithForceFallbackAdapter requests the software fallback adapter, useful on CI machines
// without a GPU.
//
// Parameters:
//   - force: whether to force the fallback adapter
//
// Returns:
//   - WGPUDeviceOption: a function that applies the adapter option to a device
func WithForceFallbackAdapter(force bool) WGPUDeviceOption {
	return func(d *wgpuDevice) {
		d.forceFallbackAdapter = force
	}
}
