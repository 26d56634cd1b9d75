// Package window hosts the native window on GLFW and feeds its
// notifications to the render thread.
package window

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"

	"corewindow/internal/bridge"
)

// Poster accepts window events.
type Poster interface {
	Post(e bridge.Event)
}

// Options configures a new window.
type Options struct {
	Width, Height int
	Title         string
}

// Window is a GLFW window without a client API; presentation goes through
// a WebGPU surface created from its native handle.
type Window struct {
	win    *glfw.Window
	cursor *glfw.Cursor
	events Poster
}

// New initializes GLFW and creates a hidden window. It locks the calling
// goroutine to its OS thread, which must then run the render loop.
func New(opts Options, events Poster) (*Window, error) {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("GLFW init failed: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.CocoaRetinaFramebuffer, glfw.True)

	win, err := glfw.CreateWindow(opts.Width, opts.Height, opts.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("window creation failed: %w", err)
	}

	w := &Window{win: win, events: events}
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.events.Post(bridge.Event{Kind: bridge.SizeChanged, Width: width, Height: height})
	})
	return w, nil
}

// ID identifies the native window.
func (w *Window) ID() uintptr { return uintptr(unsafe.Pointer(w.win.Handle())) }

// Size is the framebuffer size in pixels.
func (w *Window) Size() (int, int) { return w.win.GetFramebufferSize() }

// PumpEvents processes pending events and returns immediately if there
// are none.
func (w *Window) PumpEvents() { glfw.PollEvents() }

// Activate shows and focuses the window.
func (w *Window) Activate() {
	w.win.Show()
	w.win.Focus()
}

func (w *Window) SetArrowCursor() {
	if w.cursor == nil {
		w.cursor = glfw.CreateStandardCursor(glfw.ArrowCursor)
	}
	w.win.SetCursor(w.cursor)
}

func (w *Window) ShouldClose() bool { return w.win.ShouldClose() }

func (w *Window) SetTitle(title string) { w.win.SetTitle(title) }

// Destroy destroys the window and terminates GLFW.
func (w *Window) Destroy() {
	if w.cursor != nil {
		w.cursor.Destroy()
		w.cursor = nil
	}
	if w.win != nil {
		w.win.Destroy()
		w.win = nil
	}
	glfw.Terminate()
}
