// Package wgpudrv implements gpu.Driver on WebGPU.
package wgpudrv

import (
	"github.com/pkg/errors"
	"github.com/rajveermalviya/go-webgpu/wgpu"

	"corewindow/internal/gpu"
)

// levelLimits are the adapter limits a feature level requires.
var levelLimits = map[gpu.FeatureLevel]struct {
	maxTexture2D      uint32
	maxStorageBuffers uint32
}{
	gpu.Level11_0: {maxTexture2D: 16384, maxStorageBuffers: 8},
	gpu.Level11_1: {maxTexture2D: 16384, maxStorageBuffers: 64},
}

var backends = map[string]wgpu.InstanceBackend{
	"":       wgpu.InstanceBackend_Primary,
	"vulkan": wgpu.InstanceBackend_Vulkan,
	"metal":  wgpu.InstanceBackend_Metal,
	"dx12":   wgpu.InstanceBackend_DX12,
	"gl":     wgpu.InstanceBackend_GL,
}

// Driver creates WebGPU devices on hardware adapters.
type Driver struct {
	backend  wgpu.InstanceBackend
	instance *wgpu.Instance
}

// New returns a driver for the named backend ("" picks the platform's
// primary backends).
func New(backend string) (*Driver, error) {
	b, ok := backends[backend]
	if !ok {
		return nil, errors.Errorf("unknown webgpu backend %q", backend)
	}
	return &Driver{backend: b}, nil
}

func (d *Driver) ensureInstance(debug bool) error {
	if d.instance != nil {
		return nil
	}
	if debug {
		wgpu.SetLogLevel(wgpu.LogLevel_Debug)
	} else {
		wgpu.SetLogLevel(wgpu.LogLevel_Warn)
	}
	d.instance = wgpu.CreateInstance(&wgpu.InstanceDescriptor{
		Backends: d.backend,
	})
	if d.instance == nil {
		return errors.Wrap(gpu.ErrNoAdapter, "failed to create WebGPU instance")
	}
	return nil
}

// CreateDevice requests a high-performance hardware adapter and creates a
// device on it if the adapter meets desc.Level.
func (d *Driver) CreateDevice(desc gpu.DeviceDesc) (gpu.Device, error) {
	if desc.Driver != gpu.DriverHardware {
		return nil, errors.Wrap(gpu.ErrNoAdapter, "only hardware drivers are supported")
	}
	want, ok := levelLimits[desc.Level]
	if !ok {
		return nil, errors.Wrapf(gpu.ErrUnsupportedLevel, "level %s", desc.Level)
	}
	if err := d.ensureInstance(desc.Flags.Has(gpu.CreateDebug)); err != nil {
		return nil, err
	}

	adapter, err := d.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference:      wgpu.PowerPreference_HighPerformance,
		ForceFallbackAdapter: false,
	})
	if err != nil {
		return nil, errors.Wrapf(gpu.ErrNoAdapter, "adapter request failed: %v", err)
	}

	props := adapter.GetProperties()
	if props.AdapterType == wgpu.AdapterType_CPU {
		adapter.Release()
		return nil, errors.Wrapf(gpu.ErrNoAdapter, "adapter %q is a software rasterizer", props.Name)
	}

	limits := adapter.GetLimits().Limits
	if limits.MaxTextureDimension2D < want.maxTexture2D || limits.MaxStorageBuffersPerShaderStage < want.maxStorageBuffers {
		adapter.Release()
		return nil, errors.Wrapf(gpu.ErrUnsupportedLevel, "adapter %q below level %s", props.Name, desc.Level)
	}

	gpu.Logger().Info("adapter selected", "name", props.Name, "driver", props.DriverDescription, "level", desc.Level)

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "CoreWindowDevice",
	})
	if err != nil {
		adapter.Release()
		return nil, errors.Wrap(err, "device request failed")
	}

	dev := &wgpuDevice{
		adapter: adapter,
		device:  device,
		queue:   device.GetQueue(),
		level:   desc.Level,
		flags:   desc.Flags,
		drv:     d,
	}
	dev.ctx = &immediateContext{dev: dev}
	return dev, nil
}

// Release frees the WebGPU instance. Devices must be released first.
func (d *Driver) Release() {
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
}

type wgpuDevice struct {
	drv     *Driver
	adapter *wgpu.Adapter
	device  *wgpu.Device
	queue   *wgpu.Queue
	ctx     *immediateContext
	level   gpu.FeatureLevel
	flags   gpu.CreateFlags
	latency int
}

func (d *wgpuDevice) FeatureLevel() gpu.FeatureLevel { return d.level }

func (d *wgpuDevice) ImmediateContext() gpu.Context { return d.ctx }

func (d *wgpuDevice) Presenter() (gpu.Presenter, error) {
	if d.device == nil {
		return nil, gpu.ErrReleased
	}
	return presenter{d}, nil
}

func (d *wgpuDevice) CreateTargetView(tex gpu.Texture) (gpu.TargetView, error) {
	bb, ok := tex.(*backBuffer)
	if !ok || bb.sc.dev != d {
		return nil, errors.New("texture does not belong to this device")
	}
	bb.sc.liveViews++
	return &targetView{sc: bb.sc}, nil
}

func (d *wgpuDevice) Release() {
	if d.queue != nil {
		d.queue.Release()
		d.queue = nil
	}
	if d.device != nil {
		d.device.Release()
		d.device = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
}

// presenter, adapterRef and factory borrow the device's handles; releasing
// them frees nothing.
type presenter struct{ dev *wgpuDevice }

func (p presenter) SetMaxFrameLatency(frames int) error {
	if frames < 0 {
		return errors.Errorf("invalid frame latency %d", frames)
	}
	p.dev.latency = frames
	return nil
}

func (p presenter) Adapter() (gpu.Adapter, error) { return adapterRef{p.dev}, nil }

func (p presenter) Release() {}

type adapterRef struct{ dev *wgpuDevice }

func (a adapterRef) Factory() (gpu.Factory, error) { return factory{a.dev}, nil }

func (a adapterRef) Release() {}

type factory struct{ dev *wgpuDevice }

func (f factory) Release() {}
