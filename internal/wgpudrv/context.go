package wgpudrv

import (
	"github.com/pkg/errors"
	"github.com/rajveermalviya/go-webgpu/wgpu"

	"corewindow/internal/gpu"
)

// immediateContext records the bound target and viewport and submits
// work to the device queue as soon as it is issued.
type immediateContext struct {
	dev      *wgpuDevice
	target   *targetView
	viewport *gpu.Viewport
}

func (c *immediateContext) SetRenderTargets(view gpu.TargetView) {
	tv, _ := view.(*targetView)
	c.target = tv
}

func (c *immediateContext) SetViewport(vp gpu.Viewport) {
	c.viewport = &vp
}

func (c *immediateContext) ClearRenderTargetView(view gpu.TargetView, col gpu.Color) error {
	tv, ok := view.(*targetView)
	if !ok || tv.released {
		return errors.Wrap(gpu.ErrReleased, "clear: stale target view")
	}
	frame, err := tv.sc.acquire()
	if err != nil {
		return err
	}

	encoder, err := c.dev.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{})
	if err != nil {
		return errors.Wrap(err, "command encoder")
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:    frame,
			LoadOp:  wgpu.LoadOp_Clear,
			StoreOp: wgpu.StoreOp_Store,
			ClearValue: wgpu.Color{
				R: float64(col.R),
				G: float64(col.G),
				B: float64(col.B),
				A: float64(col.A),
			},
		}},
	})
	if vp := c.viewport; vp != nil {
		pass.SetViewport(vp.X, vp.Y, vp.Width, vp.Height, vp.MinDepth, vp.MaxDepth)
	}
	pass.End()

	cmdBuffer, err := encoder.Finish(&wgpu.CommandBufferDescriptor{})
	if err != nil {
		return errors.Wrap(err, "finish clear pass")
	}
	defer cmdBuffer.Release()

	c.dev.queue.Submit(cmdBuffer)
	return nil
}
