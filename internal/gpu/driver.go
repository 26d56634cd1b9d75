package gpu

// Surface is a native window the host owns. The renderer only reads it.
type Surface interface {
	// ID identifies the native window.
	ID() uintptr
	// Size is the current client area in pixels.
	Size() (width, height int)
}

// Texture is a GPU image, such as a swap chain back buffer.
type Texture interface {
	Size() (width, height int)
	Release()
}

// TargetView lets rendering commands write into a texture. A view over a
// back buffer must be released before that swap chain can be resized.
type TargetView interface {
	Release()
}

// Context issues GPU commands. It is valid as long as the device that owns it.
type Context interface {
	// SetRenderTargets binds view as the sole color output. A nil view unbinds.
	SetRenderTargets(view TargetView)
	SetViewport(vp Viewport)
	ClearRenderTargetView(view TargetView, c Color) error
}

// SwapChain is a ring of back buffers cycled between rendering and display.
type SwapChain interface {
	// ResizeBuffers changes the buffer size. Zero width and height mean the
	// surface's current client area. Fails with ErrResourceInUse while any
	// view over a back buffer is alive.
	ResizeBuffers(count, width, height int, format Format) error
	// BackBuffer returns buffer i. The caller releases it.
	BackBuffer(i int) (Texture, error)
	// Present shows the current back buffer, blocking for syncInterval
	// vertical blanks.
	Present(syncInterval int) error
	Release()
}

// Factory creates swap chains on the adapter it was obtained from.
type Factory interface {
	CreateSwapChain(dev Device, s Surface, desc SwapChainDesc) (SwapChain, error)
	Release()
}

// Adapter is the physical GPU a device was created on.
type Adapter interface {
	Factory() (Factory, error)
	Release()
}

// Presenter is the presentation interface of a device.
type Presenter interface {
	SetMaxFrameLatency(frames int) error
	// Adapter returns the adapter that owns the device.
	Adapter() (Adapter, error)
	Release()
}

// Device is the low-level GPU device.
type Device interface {
	FeatureLevel() FeatureLevel
	ImmediateContext() Context
	Presenter() (Presenter, error)
	CreateTargetView(tex Texture) (TargetView, error)
	Release()
}

// Driver creates devices.
type Driver interface {
	// CreateDevice creates a device at exactly desc.Level. It fails with
	// ErrUnsupportedLevel when the level is not available and ErrNoAdapter
	// when no suitable driver exists.
	CreateDevice(desc DeviceDesc) (Device, error)
}
