package shadow

import "github.com/emberforge/ember-go/common"

type ManagerBuilderOption func(*managerImpl)

// WithResolution sets the edge size in texels for new shadow maps.
//
// Parameters:
//   - resolution: the shadow map edge size in texels
//
// Returns:
//   - ManagerBuilderOption: a function that sets the resolution
func WithResolution(resolution int) ManagerBuilderOption {
	return func(m *managerImpl) {
		if resolution > 0 {
			m.resolution = resolution
		}
	}
}

// WithBias sets the constant depth bias applied to shadow comparisons.
//
// Parameters:
//   - bias: the depth bias
//
// Returns:
//   - ManagerBuilderOption: a function that sets the bias
func WithBias(bias float32) ManagerBuilderOption {
	return func(m *managerImpl) {
		m.bias = bias
	}
}

// WithLogSink sets the log sink used for shadow resource diagnostics.
//
// Parameters:
//   - sink: the log sink
//
// Returns:
//   - ManagerBuilderOption: a function that sets the sink
func WithLogSink(sink common.LogSink) ManagerBuilderOption {
	return func(m *managerImpl) {
		if sink != nil {
			m.sink = sink
		}
	}
}
