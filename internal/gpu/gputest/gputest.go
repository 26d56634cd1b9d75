// Package gputest provides an in-memory gpu.Driver that records every call,
// for testing code that manages GPU resources without a GPU.
package gputest

import (
	"errors"
	"fmt"
	"sync"

	"corewindow/internal/gpu"
)

// Recorder is an ordered log of driver calls.
type Recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *Recorder) add(format string, args ...any) {
	r.mu.Lock()
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
	r.mu.Unlock()
}

// Calls returns a copy of the log.
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// Reset empties the log.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.calls = nil
	r.mu.Unlock()
}

// Driver is a fake hardware driver.
type Driver struct {
	// Levels lists the feature levels the driver accepts.
	Levels []gpu.FeatureLevel
	// Unavailable makes every CreateDevice fail with gpu.ErrNoAdapter.
	Unavailable bool
	// NoFlipModel makes swap chain creation fail for flip-model descriptions.
	NoFlipModel bool

	// FailResize, FailBackBuffer and FailTargetView, when set, are returned
	// by the matching call instead of performing it.
	FailResize     error
	FailBackBuffer error
	FailTargetView error

	Log Recorder

	// Live counts intermediate handles (presenter, adapter, factory, back
	// buffer) that have not been released.
	Live int

	devices []*Device
}

// NewDriver returns a driver that supports levels.
func NewDriver(levels ...gpu.FeatureLevel) *Driver {
	return &Driver{Levels: levels}
}

// Devices returns every device created so far.
func (d *Driver) Devices() []*Device { return d.devices }

func (d *Driver) CreateDevice(desc gpu.DeviceDesc) (gpu.Device, error) {
	d.Log.add("CreateDevice(%s)", desc.Level)
	if d.Unavailable || desc.Driver != gpu.DriverHardware {
		return nil, gpu.ErrNoAdapter
	}
	for _, l := range d.Levels {
		if l == desc.Level {
			dev := &Device{drv: d, level: desc.Level, Flags: desc.Flags}
			dev.ctx = &Context{dev: dev}
			d.devices = append(d.devices, dev)
			return dev, nil
		}
	}
	return nil, gpu.ErrUnsupportedLevel
}

// Device is a fake device.
type Device struct {
	drv      *Driver
	level    gpu.FeatureLevel
	ctx      *Context
	Flags    gpu.CreateFlags
	Latency  int
	Released bool
}

func (d *Device) FeatureLevel() gpu.FeatureLevel { return d.level }

func (d *Device) ImmediateContext() gpu.Context { return d.ctx }

// Ctx returns the immediate context with its concrete type.
func (d *Device) Ctx() *Context { return d.ctx }

func (d *Device) Presenter() (gpu.Presenter, error) {
	if d.Released {
		return nil, gpu.ErrReleased
	}
	d.drv.Log.add("Presenter")
	d.drv.Live++
	return &presenter{dev: d}, nil
}

func (d *Device) CreateTargetView(tex gpu.Texture) (gpu.TargetView, error) {
	bb, ok := tex.(*Texture)
	if !ok {
		return nil, errors.New("gputest: foreign texture")
	}
	d.drv.Log.add("CreateTargetView(%dx%d)", bb.w, bb.h)
	if d.drv.FailTargetView != nil {
		return nil, d.drv.FailTargetView
	}
	bb.chain.liveViews++
	return &View{tex: bb, gen: bb.gen}, nil
}

func (d *Device) Release() {
	d.drv.Log.add("ReleaseDevice")
	d.Released = true
}

type presenter struct {
	dev      *Device
	released bool
}

func (p *presenter) SetMaxFrameLatency(frames int) error {
	p.dev.drv.Log.add("SetMaxFrameLatency(%d)", frames)
	p.dev.Latency = frames
	return nil
}

func (p *presenter) Adapter() (gpu.Adapter, error) {
	p.dev.drv.Log.add("Adapter")
	p.dev.drv.Live++
	return &adapter{dev: p.dev}, nil
}

func (p *presenter) Release() {
	if !p.released {
		p.released = true
		p.dev.drv.Live--
	}
}

type adapter struct {
	dev      *Device
	released bool
}

func (a *adapter) Factory() (gpu.Factory, error) {
	a.dev.drv.Log.add("Factory")
	a.dev.drv.Live++
	return &factory{dev: a.dev}, nil
}

func (a *adapter) Release() {
	if !a.released {
		a.released = true
		a.dev.drv.Live--
	}
}

type factory struct {
	dev      *Device
	released bool
}

func (f *factory) CreateSwapChain(dev gpu.Device, s gpu.Surface, desc gpu.SwapChainDesc) (gpu.SwapChain, error) {
	drv := f.dev.drv
	drv.Log.add("CreateSwapChain(%d,%s,%d)", desc.BufferCount, desc.Format, desc.SampleCount)
	if dev != gpu.Device(f.dev) {
		return nil, errors.New("gputest: device from another adapter")
	}
	if fs, ok := s.(*Surface); !ok || fs.Invalid {
		return nil, errors.New("gputest: invalid surface")
	}
	if drv.NoFlipModel && desc.SwapEffect == gpu.SwapEffectFlipSequential {
		return nil, errors.New("gputest: present model not supported")
	}
	sc := &SwapChain{drv: drv, surface: s, Desc: desc, gen: 1}
	sc.applySize(desc.Width, desc.Height)
	return sc, nil
}

func (f *factory) Release() {
	if !f.released {
		f.released = true
		f.dev.drv.Live--
	}
}

// SwapChain is a fake swap chain.
type SwapChain struct {
	drv       *Driver
	surface   gpu.Surface
	Desc      gpu.SwapChainDesc
	w, h      int
	gen       int
	liveViews int
	Presents  []int
	Released  bool
}

func (sc *SwapChain) applySize(w, h int) {
	if w == 0 || h == 0 {
		w, h = sc.surface.Size()
	}
	sc.w, sc.h = w, h
}

// Size returns the current buffer size.
func (sc *SwapChain) Size() (int, int) { return sc.w, sc.h }

// Generation changes every time the buffers are reallocated.
func (sc *SwapChain) Generation() int { return sc.gen }

// LiveViews counts unreleased views over this chain's buffers.
func (sc *SwapChain) LiveViews() int { return sc.liveViews }

func (sc *SwapChain) ResizeBuffers(count, width, height int, format gpu.Format) error {
	sc.drv.Log.add("ResizeBuffers(%d,%d,%d,%s)", count, width, height, format)
	if sc.liveViews > 0 {
		return gpu.ErrResourceInUse
	}
	if sc.drv.FailResize != nil {
		return sc.drv.FailResize
	}
	sc.Desc.BufferCount = count
	sc.Desc.Format = format
	sc.applySize(width, height)
	sc.gen++
	return nil
}

func (sc *SwapChain) BackBuffer(i int) (gpu.Texture, error) {
	sc.drv.Log.add("BackBuffer(%d)", i)
	if sc.drv.FailBackBuffer != nil {
		return nil, sc.drv.FailBackBuffer
	}
	if i < 0 || i >= sc.Desc.BufferCount {
		return nil, fmt.Errorf("gputest: no back buffer %d", i)
	}
	sc.drv.Live++
	return &Texture{chain: sc, gen: sc.gen, w: sc.w, h: sc.h}, nil
}

func (sc *SwapChain) Present(syncInterval int) error {
	sc.drv.Log.add("Present(%d)", syncInterval)
	sc.Presents = append(sc.Presents, syncInterval)
	return nil
}

func (sc *SwapChain) Release() {
	sc.drv.Log.add("ReleaseSwapChain")
	sc.Released = true
}

// Texture is a fake back buffer.
type Texture struct {
	chain    *SwapChain
	gen      int
	w, h     int
	released bool
}

func (t *Texture) Size() (int, int) { return t.w, t.h }

func (t *Texture) Release() {
	if !t.released {
		t.released = true
		t.chain.drv.Live--
	}
}

// View is a fake target view.
type View struct {
	tex      *Texture
	gen      int
	released bool
}

// Size returns the size of the buffer the view was built over.
func (v *View) Size() (int, int) { return v.tex.w, v.tex.h }

// Valid reports whether the view is unreleased and its buffer still exists.
func (v *View) Valid() bool {
	return !v.released && v.gen == v.tex.chain.gen
}

// Released reports whether Release was called.
func (v *View) Released() bool { return v.released }

func (v *View) Release() {
	if v.released {
		return
	}
	v.released = true
	v.tex.chain.liveViews--
	v.tex.chain.drv.Log.add("ReleaseTargetView")
}

// Context is a fake immediate context.
type Context struct {
	dev      *Device
	Target   gpu.TargetView
	Viewport gpu.Viewport
	Clears   []gpu.Color
}

func (c *Context) SetRenderTargets(view gpu.TargetView) {
	c.dev.drv.Log.add("SetRenderTargets")
	c.Target = view
}

func (c *Context) SetViewport(vp gpu.Viewport) {
	c.dev.drv.Log.add("SetViewport(%g,%g,%g,%g,%g,%g)", vp.X, vp.Y, vp.Width, vp.Height, vp.MinDepth, vp.MaxDepth)
	c.Viewport = vp
}

func (c *Context) ClearRenderTargetView(view gpu.TargetView, col gpu.Color) error {
	c.dev.drv.Log.add("Clear")
	if v, ok := view.(*View); ok && !v.Valid() {
		return fmt.Errorf("gputest: clear through stale view: %w", gpu.ErrReleased)
	}
	c.Clears = append(c.Clears, col)
	return nil
}

// Surface is a fake native window.
type Surface struct {
	Handle  uintptr
	W, H    int
	Invalid bool
}

// NewSurface returns a valid surface of the given size.
func NewSurface(w, h int) *Surface {
	return &Surface{Handle: 1, W: w, H: h}
}

func (s *Surface) ID() uintptr { return s.Handle }

func (s *Surface) Size() (int, int) { return s.W, s.H }

// Pump is a fake event pump. Each call runs and clears the queued events.
type Pump struct {
	Calls  int
	events []func()
}

// Queue adds an event delivered on the next Pump.
func (p *Pump) Queue(fn func()) { p.events = append(p.events, fn) }

func (p *Pump) Pump() error {
	p.Calls++
	events := p.events
	p.events = nil
	for _, fn := range events {
		fn()
	}
	return nil
}
