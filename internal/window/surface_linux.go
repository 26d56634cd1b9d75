//go:build linux && !wayland

package window

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/rajveermalviya/go-webgpu/wgpu"
)

// SurfaceDescriptor describes the window's X11 drawable to WebGPU.
func (w *Window) SurfaceDescriptor() (*wgpu.SurfaceDescriptor, error) {
	display := glfw.GetX11Display()
	if display == nil {
		return nil, fmt.Errorf("no X11 display")
	}

	return &wgpu.SurfaceDescriptor{
		Label: "MainSurface",
		XlibWindow: &wgpu.SurfaceDescriptorFromXlibWindow{
			Display: unsafe.Pointer(display),
			Window:  uint32(w.win.GetX11Window()),
		},
	}, nil
}
