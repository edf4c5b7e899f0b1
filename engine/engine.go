package engine

import (
	"sync"
	"time"

	"github.com/emberforge/ember-go/common"
	"github.com/emberforge/ember-go/engine/profiler"
	"github.com/emberforge/ember-go/engine/renderer"
	"github.com/emberforge/ember-go/engine/scene"
	"github.com/emberforge/ember-go/engine/window"
)

// engineImpl coordinates the window, the renderer, and the logic tick loop.
type engineImpl struct {
	win      window.Window
	renderer renderer.Renderer

	mu  sync.RWMutex
	scn scene.Scene

	tickRate        time.Duration
	tickRateChannel chan time.Duration
	tickCallback    func(deltaTime float64)
	renderCallback  func(deltaTime float64)

	frameLimit time.Duration // minimum frame duration; 0 = uncapped

	prof             *profiler.Profiler
	profilingEnabled bool

	sink common.LogSink

	wg          sync.WaitGroup
	quitChannel chan struct{}
	quitOnce    sync.Once
}

// Engine is the main entry point. It owns the frame loop: logic ticks run at
// a fixed rate on a background goroutine, rendering runs on the main thread
// inside the window's event loop.
type Engine interface {
	// Window returns the engine's window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the engine's renderer.
	//
	// Returns:
	//   - renderer.Renderer: the renderer instance
	Renderer() renderer.Renderer

	// Scene returns the scene currently being rendered, or nil.
	//
	// Returns:
	//   - scene.Scene: the active scene
	Scene() scene.Scene

	// SetScene swaps the scene being ticked and rendered. Safe to call
	// while the engine is running.
	//
	// Parameters:
	//   - s: the scene to make active
	SetScene(s scene.Scene)

	// SetTickRate sets the logic tick rate in ticks per second. Takes
	// effect immediately if the engine is running.
	//
	// Parameters:
	//   - tps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(tps float64)

	// SetTickCallback registers the function called each logic tick,
	// after the active scene's Update. Use it for input handling and
	// game logic.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float64))

	// SetRenderCallback registers the function called each render frame,
	// before the frame is drawn.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float64))

	// SetFrameLimit caps the render loop at the given frames per second.
	// Pass 0 to uncap (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second
	SetFrameLimit(fps float64)

	// EnableProfiler turns on per-interval performance logging.
	EnableProfiler()

	// DisableProfiler turns off performance logging.
	DisableProfiler()

	// Run starts the tick loop and drives the render loop. It blocks
	// until the window closes, then shuts everything down. Must be
	// called from the main goroutine.
	Run()

	// Quit signals the engine to stop. Safe to call multiple times.
	Quit()
}

var _ Engine = &engineImpl{}

// NewEngine creates an Engine around an existing window and renderer. The
// engine wires window resizes through to the renderer and the active scene's
// camera.
//
// Parameters:
//   - win: the window frames are presented to
//   - r: the renderer drawing the active scene
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the configured engine
func NewEngine(win window.Window, r renderer.Renderer, options ...EngineBuilderOption) Engine {
	if win == nil || r == nil {
		panic("engine: window and renderer are required")
	}
	e := &engineImpl{
		win:             win,
		renderer:        r,
		tickRate:        time.Second / 60,
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		sink:            common.NopSink(),
	}
	for _, opt := range options {
		opt(e)
	}
	if e.prof == nil {
		e.prof = profiler.NewProfiler(profiler.WithLogSink(e.sink))
	}

	win.SetResizeCallback(func(width, height int) {
		if width == 0 || height == 0 {
			return // minimized
		}
		e.renderer.Resize(width, height)
		if scn := e.Scene(); scn != nil && scn.Camera() != nil {
			scn.Camera().SetAspect(float32(width) / float32(height))
		}
	})

	return e
}

func (e *engineImpl) Window() window.Window       { return e.win }
func (e *engineImpl) Renderer() renderer.Renderer { return e.renderer }

func (e *engineImpl) Scene() scene.Scene {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.scn
}

func (e *engineImpl) SetScene(s scene.Scene) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scn = s
}

// SetTickRate sets the logic tick rate. If the tick loop is running the new
// rate is delivered through the rate channel; a pending unread update is
// replaced rather than blocking.
func (e *engineImpl) SetTickRate(tps float64) {
	if tps <= 0 {
		tps = 60
	}
	newRate := time.Second / time.Duration(tps)
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
	e.tickRate = newRate
}

func (e *engineImpl) SetTickCallback(callback func(deltaTime float64)) {
	e.tickCallback = callback
}

func (e *engineImpl) SetRenderCallback(callback func(deltaTime float64)) {
	e.renderCallback = callback
}

func (e *engineImpl) SetFrameLimit(fps float64) {
	if fps <= 0 {
		e.frameLimit = 0
		return
	}
	e.frameLimit = time.Second / time.Duration(fps)
}

func (e *engineImpl) EnableProfiler()  { e.profilingEnabled = true }
func (e *engineImpl) DisableProfiler() { e.profilingEnabled = false }

func (e *engineImpl) Run() {
	e.wg.Add(1)
	go e.handleTick()

	lastRender := time.Now()
	e.win.SetUpdateCallback(func() {
		now := time.Now()
		dt := now.Sub(lastRender).Seconds()
		lastRender = now

		if e.renderCallback != nil {
			e.renderCallback(dt)
		}

		scn := e.Scene()
		if scn != nil && scn.Active() {
			if err := e.renderer.Render(scn, scn.Camera()); err != nil {
				e.sink.Errorf("engine: frame render failed: %v", err)
			}
			if e.profilingEnabled {
				e.prof.Tick(e.renderer.Stats())
			}
		}

		if e.frameLimit > 0 {
			if remaining := e.frameLimit - time.Since(now); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	})

	e.win.Run()
	e.Quit()
	e.wg.Wait()
}

func (e *engineImpl) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// handleTick runs the fixed-rate logic loop. Each tick updates the active
// scene's transform hierarchy and fires the tick callback. Panics are
// recovered so a logic bug cannot take down the render thread silently.
func (e *engineImpl) handleTick() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			e.sink.Errorf("engine: tick goroutine recovered from panic: %v", r)
			e.Quit()
		}
	}()

	ticker := time.NewTicker(e.tickRate)
	defer ticker.Stop()

	lastTick := time.Now()
	for {
		select {
		case <-e.quitChannel:
			return
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
		case <-ticker.C:
			now := time.Now()
			dt := now.Sub(lastTick).Seconds()
			lastTick = now

			if scn := e.Scene(); scn != nil {
				scn.Update(dt)
			}
			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		}
	}
}
