package window

import (
	"fmt"
	"unsafe"

	"github.com/rajveermalviya/go-webgpu/wgpu"
	"golang.org/x/sys/windows"
)

// SurfaceDescriptor describes the window's HWND to WebGPU.
func (w *Window) SurfaceDescriptor() (*wgpu.SurfaceDescriptor, error) {
	hwnd := w.win.GetWin32Window()
	if hwnd == nil {
		return nil, fmt.Errorf("window has no HWND")
	}

	var module windows.Handle
	if err := windows.GetModuleHandleEx(0, nil, &module); err != nil {
		return nil, fmt.Errorf("module handle: %w", err)
	}

	return &wgpu.SurfaceDescriptor{
		Label: "MainSurface",
		WindowsHWND: &wgpu.SurfaceDescriptorFromWindowsHWND{
			Hwnd:      unsafe.Pointer(hwnd),
			Hinstance: unsafe.Pointer(module),
		},
	}, nil
}
