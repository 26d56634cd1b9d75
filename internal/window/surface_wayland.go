//go:build linux && wayland

package window

import (
	"errors"

	"github.com/rajveermalviya/go-webgpu/wgpu"
)

// SurfaceDescriptor is not available on Wayland builds; GLFW only exposes
// X11 handles to this package.
func (w *Window) SurfaceDescriptor() (*wgpu.SurfaceDescriptor, error) {
	return nil, errors.New("wayland surfaces are not supported; build without -tags wayland")
}
