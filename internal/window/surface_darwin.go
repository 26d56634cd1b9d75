package window

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Cocoa -framework QuartzCore -framework Metal

#import <Cocoa/Cocoa.h>
#import <QuartzCore/CAMetalLayer.h>
#import <Metal/Metal.h>

void* attachMetalLayer(void* nsWindow) {
    if (nsWindow == NULL) {
        return NULL;
    }

    NSWindow* window = (__bridge NSWindow*)nsWindow;
    NSView* view = [window contentView];
    if (view == nil) {
        return NULL;
    }

    [view setWantsLayer:YES];

    // BGRA8 matches the swap chain format.
    CAMetalLayer* layer = [CAMetalLayer layer];
    layer.device = MTLCreateSystemDefaultDevice();
    layer.pixelFormat = MTLPixelFormatBGRA8Unorm;
    layer.framebufferOnly = YES;
    layer.frame = view.bounds;
    layer.contentsScale = [window backingScaleFactor];

    [view setLayer:layer];
    return (__bridge void*)layer;
}
*/
import "C"

import (
	"errors"
	"unsafe"

	"github.com/rajveermalviya/go-webgpu/wgpu"
)

// SurfaceDescriptor attaches a CAMetalLayer to the window's content view
// and describes it to WebGPU.
func (w *Window) SurfaceDescriptor() (*wgpu.SurfaceDescriptor, error) {
	nsWindow := w.win.GetCocoaWindow()
	if nsWindow == nil {
		return nil, errors.New("GetCocoaWindow returned nil")
	}

	layer := C.attachMetalLayer(unsafe.Pointer(nsWindow))
	if layer == nil {
		return nil, errors.New("could not attach a Metal layer")
	}

	return &wgpu.SurfaceDescriptor{
		Label: "MainSurface",
		MetalLayer: &wgpu.SurfaceDescriptorFromMetalLayer{
			Layer: unsafe.Pointer(layer),
		},
	}, nil
}
