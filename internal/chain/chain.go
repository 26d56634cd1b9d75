// Package chain manages the swap chain and the render target view derived
// from its back buffer, as an explicit state machine.
package chain

import (
	"fmt"

	"corewindow/internal/gpu"
)

// State is the lifecycle state of a Chain.
type State int

const (
	// Absent: no swap chain has been created yet.
	Absent State = iota
	// Created: the swap chain exists but has no target view.
	Created
	// Resizing: the target view is released and the buffers are being resized.
	Resizing
	// Ready: swap chain, target view and viewport are all current.
	Ready
	// Released: torn down; no further transitions.
	Released
)

func (s State) String() string {
	switch s {
	case Absent:
		return "absent"
	case Created:
		return "created"
	case Resizing:
		return "resizing"
	case Ready:
		return "ready"
	case Released:
		return "released"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Device is what a chain needs from the graphics device.
type Device interface {
	Handle() gpu.Device
	Context() gpu.Context
}

// Chain is the presentation chain bound to one surface and one device.
type Chain struct {
	state State

	dev     gpu.Device
	ctx     gpu.Context
	surface gpu.Surface

	swap gpu.SwapChain
	desc gpu.SwapChainDesc
	view gpu.TargetView
	vp   gpu.Viewport

	width, height int
}

// New returns a chain in the Absent state.
func New() *Chain {
	return &Chain{state: Absent}
}

func (c *Chain) State() State { return c.state }

// Surface returns the bound surface, or nil while Absent.
func (c *Chain) Surface() gpu.Surface { return c.surface }

// SwapChain returns the driver swap chain, or nil while Absent.
func (c *Chain) SwapChain() gpu.SwapChain { return c.swap }

// Desc returns the description the swap chain was created with.
func (c *Chain) Desc() gpu.SwapChainDesc { return c.desc }

// TargetView returns the view over the current back buffer. It is nil
// unless the chain is Ready and must not be kept past the current frame.
func (c *Chain) TargetView() gpu.TargetView {
	if c.state != Ready {
		return nil
	}
	return c.view
}

// Viewport covers the whole current back buffer.
func (c *Chain) Viewport() gpu.Viewport { return c.vp }

// Size is the current back buffer size.
func (c *Chain) Size() (width, height int) { return c.width, c.height }

// Ensure makes the chain Ready for dev and s, creating it if it is Absent.
// Calling it again for the same device and surface does nothing.
func (c *Chain) Ensure(dev Device, s gpu.Surface) error {
	switch c.state {
	case Ready, Created:
		if c.dev != dev.Handle() || c.surface.ID() != s.ID() {
			return fmt.Errorf("%w: chain is bound to another device or surface", gpu.ErrInvalidTransition)
		}
		if c.state == Ready {
			return nil
		}
	case Released:
		return gpu.ErrReleased
	case Resizing:
		return fmt.Errorf("%w: ensure while %s", gpu.ErrInvalidTransition, c.state)
	case Absent:
		if err := c.create(dev, s); err != nil {
			return err
		}
		c.state = Created
		gpu.Logger().Info("swap chain created", "buffers", c.desc.BufferCount, "format", c.desc.Format)
	}

	if err := c.rebuild(); err != nil {
		return err
	}
	c.state = Ready
	return nil
}

// create builds the swap chain on the adapter that owns dev. Every
// intermediate interface is released before return.
func (c *Chain) create(dev Device, s gpu.Surface) error {
	handle := dev.Handle()
	desc := gpu.DefaultSwapChainDesc()

	presenter, err := handle.Presenter()
	if err != nil {
		return fmt.Errorf("%w: presenter: %w", gpu.ErrSwapChainCreation, err)
	}
	defer presenter.Release()

	if err := presenter.SetMaxFrameLatency(gpu.MaxFrameLatency); err != nil {
		return fmt.Errorf("%w: frame latency: %w", gpu.ErrSwapChainCreation, err)
	}

	adapter, err := presenter.Adapter()
	if err != nil {
		return fmt.Errorf("%w: adapter: %w", gpu.ErrSwapChainCreation, err)
	}
	defer adapter.Release()

	factory, err := adapter.Factory()
	if err != nil {
		return fmt.Errorf("%w: factory: %w", gpu.ErrSwapChainCreation, err)
	}
	defer factory.Release()

	swap, err := factory.CreateSwapChain(handle, s, desc)
	if err != nil {
		return fmt.Errorf("%w: %w", gpu.ErrSwapChainCreation, err)
	}

	c.dev = handle
	c.ctx = dev.Context()
	c.surface = s
	c.swap = swap
	c.desc = desc
	return nil
}

// rebuild creates the target view over back buffer 0 and registers a
// viewport covering it. Nothing is published unless every step succeeds.
func (c *Chain) rebuild() error {
	bb, err := c.swap.BackBuffer(0)
	if err != nil {
		return fmt.Errorf("back buffer: %w", err)
	}
	defer bb.Release()

	view, err := c.dev.CreateTargetView(bb)
	if err != nil {
		return fmt.Errorf("target view: %w", err)
	}

	w, h := bb.Size()
	vp := gpu.ViewportFor(w, h)
	c.ctx.SetViewport(vp)

	c.view = view
	c.vp = vp
	c.width, c.height = w, h
	return nil
}

// Resize reacts to a change of the surface size. The target view is
// released before the buffers are resized, and rebuilt after. The buffers
// take the surface's current client size; width and height are only logged.
func (c *Chain) Resize(width, height int) error {
	switch c.state {
	case Ready:
	case Released:
		return gpu.ErrReleased
	default:
		return fmt.Errorf("%w: resize while %s", gpu.ErrInvalidTransition, c.state)
	}

	c.state = Resizing
	gpu.Logger().Debug("resizing swap chain", "from_w", c.width, "from_h", c.height, "to_w", width, "to_h", height)

	c.releaseView()

	if err := c.swap.ResizeBuffers(c.desc.BufferCount, 0, 0, c.desc.Format); err != nil {
		return fmt.Errorf("resize buffers: %w", err)
	}
	if err := c.rebuild(); err != nil {
		return err
	}
	c.state = Ready
	return nil
}

// Present shows the current back buffer.
func (c *Chain) Present(syncInterval int) error {
	if c.state != Ready {
		return fmt.Errorf("%w: present while %s", gpu.ErrInvalidTransition, c.state)
	}
	return c.swap.Present(syncInterval)
}

// Release tears the chain down. Only the first call has an effect.
func (c *Chain) Release() {
	if c.state == Released {
		return
	}
	if c.swap != nil {
		c.releaseView()
		c.swap.Release()
		c.swap = nil
	}
	c.state = Released
	gpu.Logger().Info("swap chain released")
}

func (c *Chain) releaseView() {
	if c.view == nil {
		return
	}
	c.ctx.SetRenderTargets(nil)
	c.view.Release()
	c.view = nil
}
