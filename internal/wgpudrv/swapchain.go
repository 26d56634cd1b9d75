package wgpudrv

import (
	"github.com/pkg/errors"
	"github.com/rajveermalviya/go-webgpu/wgpu"

	"corewindow/internal/gpu"
)

// Describer is implemented by surfaces that can be presented to with WebGPU.
type Describer interface {
	gpu.Surface
	SurfaceDescriptor() (*wgpu.SurfaceDescriptor, error)
}

var formats = map[gpu.Format]wgpu.TextureFormat{
	gpu.FormatBGRA8Unorm: wgpu.TextureFormat_BGRA8Unorm,
}

func (f factory) CreateSwapChain(dev gpu.Device, s gpu.Surface, desc gpu.SwapChainDesc) (gpu.SwapChain, error) {
	if dev != gpu.Device(f.dev) {
		return nil, errors.New("device was not created on this adapter")
	}
	if desc.SwapEffect != gpu.SwapEffectFlipSequential || desc.BufferCount != gpu.BufferCount || desc.SampleCount != gpu.SampleCount {
		return nil, errors.Errorf("unsupported present model: %d buffers, %d samples", desc.BufferCount, desc.SampleCount)
	}
	if _, ok := formats[desc.Format]; !ok {
		return nil, errors.Errorf("unsupported format %s", desc.Format)
	}
	if desc.Format == gpu.FormatBGRA8Unorm && !f.dev.flags.Has(gpu.CreateBGRASupport) {
		return nil, errors.New("device created without BGRA support")
	}

	ds, ok := s.(Describer)
	if !ok {
		return nil, errors.Errorf("surface %#x has no native descriptor", s.ID())
	}
	sd, err := ds.SurfaceDescriptor()
	if err != nil {
		return nil, errors.Wrap(err, "surface descriptor")
	}
	wsurf := f.dev.drv.instance.CreateSurface(sd)
	if wsurf == nil {
		return nil, errors.New("surface creation failed")
	}

	sc := &swapChain{dev: f.dev, surface: s, wsurf: wsurf, desc: desc}
	if err := sc.configure(desc.Width, desc.Height); err != nil {
		wsurf.Release()
		return nil, err
	}
	return sc, nil
}

type swapChain struct {
	dev     *wgpuDevice
	surface gpu.Surface
	wsurf   *wgpu.Surface
	native  *wgpu.SwapChain
	desc    gpu.SwapChainDesc

	width, height int
	liveViews     int

	// frame is the texture view acquired for the frame in progress.
	frame *wgpu.TextureView
}

// configure (re)creates the native swap chain. WebGPU has no in-place
// resize, so the old chain is released first.
func (sc *swapChain) configure(width, height int) error {
	if width == 0 || height == 0 {
		width, height = sc.surface.Size()
	}
	if width <= 0 || height <= 0 {
		return errors.Errorf("surface has no area (%dx%d)", width, height)
	}

	sc.dropFrame()
	if sc.native != nil {
		sc.native.Release()
		sc.native = nil
	}

	native, err := sc.dev.device.CreateSwapChain(sc.wsurf, &wgpu.SwapChainDescriptor{
		Usage:       wgpu.TextureUsage_RenderAttachment,
		Format:      formats[sc.desc.Format],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentMode_Fifo,
	})
	if err != nil {
		return errors.Wrap(err, "swap chain creation failed")
	}
	sc.native = native
	sc.width, sc.height = width, height
	return nil
}

func (sc *swapChain) ResizeBuffers(count, width, height int, format gpu.Format) error {
	if sc.liveViews > 0 {
		return errors.Wrapf(gpu.ErrResourceInUse, "%d target views alive", sc.liveViews)
	}
	if count != gpu.BufferCount {
		return errors.Errorf("unsupported buffer count %d", count)
	}
	if _, ok := formats[format]; !ok {
		return errors.Errorf("unsupported format %s", format)
	}
	sc.desc.Format = format
	return sc.configure(width, height)
}

func (sc *swapChain) BackBuffer(i int) (gpu.Texture, error) {
	if i < 0 || i >= sc.desc.BufferCount {
		return nil, errors.Errorf("no back buffer %d", i)
	}
	return &backBuffer{sc: sc, width: sc.width, height: sc.height}, nil
}

// acquire returns the texture view of the current frame.
func (sc *swapChain) acquire() (*wgpu.TextureView, error) {
	if sc.frame != nil {
		return sc.frame, nil
	}
	view, err := sc.native.GetCurrentTextureView()
	if err != nil {
		return nil, errors.Wrapf(gpu.ErrDeviceLost, "acquire frame: %v", err)
	}
	sc.frame = view
	return view, nil
}

func (sc *swapChain) dropFrame() {
	if sc.frame != nil {
		sc.frame.Release()
		sc.frame = nil
	}
}

// Present shows the frame. The native chain always waits for vertical
// blank; with a frame latency of 1 it also waits until the GPU has
// drained the queue, so at most one frame is ever queued. syncInterval
// must be gpu.PresentSyncInterval, the only pacing Fifo provides.
func (sc *swapChain) Present(syncInterval int) error {
	if syncInterval != gpu.PresentSyncInterval {
		return errors.Errorf("unsupported sync interval %d", syncInterval)
	}
	if _, err := sc.acquire(); err != nil {
		return err
	}
	sc.native.Present()
	sc.dropFrame()
	if sc.dev.latency > 0 {
		sc.dev.device.Poll(true, nil)
	}
	return nil
}

func (sc *swapChain) Release() {
	sc.dropFrame()
	if sc.native != nil {
		sc.native.Release()
		sc.native = nil
	}
	if sc.wsurf != nil {
		sc.wsurf.Release()
		sc.wsurf = nil
	}
}

type backBuffer struct {
	sc            *swapChain
	width, height int
}

func (b *backBuffer) Size() (int, int) { return b.width, b.height }

func (b *backBuffer) Release() {}

type targetView struct {
	sc       *swapChain
	released bool
}

func (v *targetView) Release() {
	if v.released {
		return
	}
	v.released = true
	v.sc.liveViews--
}
