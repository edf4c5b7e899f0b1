package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/emberforge/ember-go/common"
)

type SceneBuilderOption func(*scene)

// WithActive sets the scene's initial active state.
//
// Parameters:
//   - active: true to start active
//
// Returns:
//   - SceneBuilderOption: a function that sets the active state
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithAmbientColor sets the scene's ambient light color.
//
// Parameters:
//   - r, g, b: ambient color components
//
// Returns:
//   - SceneBuilderOption: a function that sets the ambient color
func WithAmbientColor(r, g, b float32) SceneBuilderOption {
	return func(s *scene) {
		s.ambient = mgl32.Vec3{r, g, b}
	}
}

// WithComputeWorkers sets the number of worker goroutines used during the
// parallel transform prewarm phase of Update. Defaults to NumCPU-1.
//
// Parameters:
//   - n: the number of compute workers (minimum 1)
//
// Returns:
//   - SceneBuilderOption: a function that sets the worker count
func WithComputeWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		if n >= 1 {
			s.computeWorkers = n
		}
	}
}

// WithLogSink sets the log sink used for scene diagnostics.
//
// Parameters:
//   - sink: the log sink
//
// Returns:
//   - SceneBuilderOption: a function that sets the sink
func WithLogSink(sink common.LogSink) SceneBuilderOption {
	return func(s *scene) {
		if sink != nil {
			s.sink = sink
		}
	}
}
