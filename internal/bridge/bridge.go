// Package bridge turns window notifications into presentation chain and
// device transitions.
package bridge

import (
	"corewindow/internal/chain"
	"corewindow/internal/gpu"
)

// Host is the window system side of the bridge.
type Host interface {
	// PumpEvents processes all pending window events without blocking.
	PumpEvents()
	// Activate makes the window visible and focused.
	Activate()
	SetArrowCursor()
}

// Device is the graphics device as the bridge needs it.
type Device interface {
	chain.Device
	Release()
}

// Bridge applies window events to the chain and device. It must only be
// used from the render thread; other goroutines post to Queue.
type Bridge struct {
	host  Host
	dev   Device
	chain *chain.Chain
	queue Queue

	tornDown bool
}

// New returns a bridge for the given host, device and chain.
func New(host Host, dev Device, c *chain.Chain) *Bridge {
	return &Bridge{host: host, dev: dev, chain: c}
}

// Queue returns the bridge's event queue.
func (b *Bridge) Queue() *Queue { return &b.queue }

// TornDown reports whether OnTeardown has run.
func (b *Bridge) TornDown() bool { return b.tornDown }

// Pump runs the host's event pump and then applies queued events.
func (b *Bridge) Pump() error {
	b.host.PumpEvents()
	return b.queue.Drain(b)
}

// Handle dispatches e to the matching On method.
func (b *Bridge) Handle(e Event) error {
	switch e.Kind {
	case SurfaceReady:
		return b.OnSurfaceReady(e.Surface)
	case Activated:
		b.OnActivated()
	case SizeChanged:
		return b.OnSizeChanged(e.Width, e.Height)
	case Teardown:
		b.OnTeardown()
	}
	return nil
}

// OnSurfaceReady sets the arrow cursor and creates the chain for s.
func (b *Bridge) OnSurfaceReady(s gpu.Surface) error {
	if b.tornDown {
		return gpu.ErrReleased
	}
	b.host.SetArrowCursor()
	return b.chain.Ensure(b.dev, s)
}

// OnActivated asks the host to show and focus the window.
func (b *Bridge) OnActivated() {
	b.host.Activate()
}

// OnSizeChanged resizes the chain. The old target view is released before
// it returns. Sizes with no area, as reported while minimized, are skipped
// and so is any size before the chain exists.
func (b *Bridge) OnSizeChanged(width, height int) error {
	log := gpu.Logger()
	if b.tornDown {
		log.Debug("size change after teardown ignored")
		return nil
	}
	if b.chain.State() == chain.Absent {
		log.Debug("size change before surface ready ignored", "width", width, "height", height)
		return nil
	}
	if width <= 0 || height <= 0 {
		log.Debug("empty size skipped", "width", width, "height", height)
		return nil
	}
	return b.chain.Resize(width, height)
}

// OnTeardown releases the chain and then the device. Only the first call
// has an effect.
func (b *Bridge) OnTeardown() {
	if b.tornDown {
		return
	}
	b.tornDown = true
	b.chain.Release()
	b.dev.Release()
	gpu.Logger().Info("teardown complete")
}
