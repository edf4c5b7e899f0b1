package engine

import (
	"time"

	"github.com/emberforge/ember-go/common"
	"github.com/emberforge/ember-go/engine/profiler"
	"github.com/emberforge/ember-go/engine/scene"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options.
type EngineBuilderOption func(*engineImpl)

// WithScene sets the scene that is active when the engine starts.
//
// Parameters:
//   - s: the initial scene
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(s scene.Scene) EngineBuilderOption {
	return func(e *engineImpl) {
		e.scn = s
	}
}

// WithTickRate sets the logic tick rate in ticks per second. Values <= 0
// fall back to the 60Hz default.
//
// Parameters:
//   - tps: target ticks per second
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(tps float64) EngineBuilderOption {
	return func(e *engineImpl) {
		if tps <= 0 {
			tps = 60
		}
		e.tickRate = time.Second / time.Duration(tps)
	}
}

// WithFrameLimit caps the render loop at the given frames per second.
// Zero leaves the loop uncapped.
//
// Parameters:
//   - fps: maximum render frames per second
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engineImpl) {
		if fps <= 0 {
			e.frameLimit = 0
			return
		}
		e.frameLimit = time.Second / time.Duration(fps)
	}
}

// WithProfiling enables performance logging from the start.
//
// Parameters:
//   - enabled: whether profiling output is on
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engineImpl) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler sets a pre-configured profiler instead of the default.
//
// Parameters:
//   - p: the profiler to use
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engineImpl) {
		if p != nil {
			e.prof = p
		}
	}
}

// WithLogSink sets the sink used for engine diagnostics.
//
// Parameters:
//   - sink: the log sink
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogSink(sink common.LogSink) EngineBuilderOption {
	return func(e *engineImpl) {
		if sink != nil {
			e.sink = sink
		}
	}
}
