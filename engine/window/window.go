package window

import (
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
)

// MouseButton identifies a mouse button in input callbacks.
type MouseButton int

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
)

// Window is a desktop window that a render surface can be created on.
// It owns the event loop and forwards input and resize events to the
// registered callbacks.
type Window interface {
	// SetUpdateCallback sets the function called once per event loop
	// iteration, after pending events have been dispatched.
	//
	// Parameters:
	//   - callback: function to call each frame (nil disables)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is
	// resized. Dimensions are in pixels, not screen coordinates, so they
	// are valid for surface configuration on high-DPI displays.
	//
	// Parameters:
	//   - callback: function receiving the new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the callback for scroll wheel events.
	//
	// Parameters:
	//   - callback: function receiving the vertical scroll delta
	SetScrollCallback(callback func(delta float32))

	// SetKeyCallback sets the callback for key press and release events.
	//
	// Parameters:
	//   - callback: function receiving the key code and whether the key
	//     is now down
	SetKeyCallback(callback func(keyCode uint32, pressed bool))

	// SetMouseButtonCallback sets the callback for mouse button events.
	//
	// Parameters:
	//   - callback: function receiving the button, whether it is now
	//     down, and the cursor position in pixels
	SetMouseButtonCallback(callback func(button MouseButton, pressed bool, x, y int))

	// SetCursorCallback sets the callback for cursor movement.
	//
	// Parameters:
	//   - callback: function receiving the cursor position in pixels
	SetCursorCallback(callback func(x, y int))

	// SurfaceDescriptor returns a platform-appropriate descriptor for
	// creating a WebGPU surface on this window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the surface descriptor
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// Running reports whether the window is still open.
	//
	// Returns:
	//   - bool: false once the window has been closed
	Running() bool

	// Run drives the event loop until the window closes, invoking the
	// update callback each iteration. It must be called from the main
	// goroutine.
	Run()

	// Width returns the framebuffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the framebuffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int

	// Close destroys the window and releases windowing resources.
	Close()
}

type windowImpl struct {
	handle *glfw.Window

	title     string
	width     int
	height    int
	minWidth  int
	minHeight int
	resizable bool

	onUpdate      func()
	onResize      func(width, height int)
	onScroll      func(delta float32)
	onKey         func(keyCode uint32, pressed bool)
	onMouseButton func(button MouseButton, pressed bool, x, y int)
	onCursor      func(x, y int)
}

var _ Window = &windowImpl{}

// NewWindow creates and shows a desktop window. It must be called from the
// main goroutine; the calling goroutine is locked to its OS thread because
// the platform event loop requires it.
//
// Parameters:
//   - options: functional options configuring the window
//
// Returns:
//   - Window: the opened window
//   - error: non-nil if the windowing system or window could not be initialized
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &windowImpl{
		title:     "ember",
		width:     1280,
		height:    720,
		minWidth:  320,
		minHeight: 240,
		resizable: true,
	}
	for _, opt := range options {
		opt(w)
	}

	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, errors.Wrap(err, "window: glfw initialization failed")
	}

	// The surface is WebGPU-backed, so no GL context is wanted.
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	if !w.resizable {
		glfw.WindowHint(glfw.Resizable, glfw.False)
	}

	handle, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, errors.Wrap(err, "window: creation failed")
	}
	w.handle = handle
	handle.SetSizeLimits(w.minWidth, w.minHeight, glfw.DontCare, glfw.DontCare)

	handle.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			handle.SetShouldClose(true)
			return
		}
		if w.onKey == nil {
			return
		}
		switch action {
		case glfw.Press, glfw.Repeat:
			w.onKey(uint32(key), true)
		case glfw.Release:
			w.onKey(uint32(key), false)
		}
	})

	handle.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		if w.onScroll != nil {
			w.onScroll(float32(yoff))
		}
	})

	handle.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if w.onMouseButton == nil {
			return
		}
		var mapped MouseButton
		switch button {
		case glfw.MouseButtonLeft:
			mapped = MouseButtonLeft
		case glfw.MouseButtonRight:
			mapped = MouseButtonRight
		case glfw.MouseButtonMiddle:
			mapped = MouseButtonMiddle
		default:
			return
		}
		x, y := handle.GetCursorPos()
		w.onMouseButton(mapped, action == glfw.Press, int(x), int(y))
	})

	handle.SetCursorPosCallback(func(_ *glfw.Window, xpos, ypos float64) {
		if w.onCursor != nil {
			w.onCursor(int(xpos), int(ypos))
		}
	})

	// Framebuffer size, not window size: the two differ on high-DPI
	// displays and the surface needs pixel dimensions.
	handle.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.width = width
		w.height = height
		if w.onResize != nil {
			w.onResize(width, height)
		}
	})
	w.width, w.height = handle.GetFramebufferSize()

	return w, nil
}

func (w *windowImpl) SetUpdateCallback(callback func())          { w.onUpdate = callback }
func (w *windowImpl) SetResizeCallback(callback func(int, int))  { w.onResize = callback }
func (w *windowImpl) SetScrollCallback(callback func(float32))   { w.onScroll = callback }
func (w *windowImpl) SetKeyCallback(callback func(uint32, bool)) { w.onKey = callback }
func (w *windowImpl) SetCursorCallback(callback func(int, int))  { w.onCursor = callback }

func (w *windowImpl) SetMouseButtonCallback(callback func(MouseButton, bool, int, int)) {
	w.onMouseButton = callback
}

func (w *windowImpl) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(w.handle)
}

func (w *windowImpl) Running() bool {
	return w.handle != nil && !w.handle.ShouldClose()
}

func (w *windowImpl) Run() {
	for w.Running() {
		glfw.PollEvents()
		if w.onUpdate != nil {
			w.onUpdate()
		}
		runtime.Gosched()
	}
}

func (w *windowImpl) Width() int  { return w.width }
func (w *windowImpl) Height() int { return w.height }

func (w *windowImpl) Close() {
	if w.handle == nil {
		return
	}
	w.handle.SetShouldClose(true)
	w.handle.Destroy()
	w.handle = nil
	glfw.Terminate()
}
