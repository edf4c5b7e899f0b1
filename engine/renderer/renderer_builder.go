package renderer

import (
	"github.com/emberforge/ember-go/common"
	"github.com/emberforge/ember-go/engine/postprocess"
	"github.com/emberforge/ember-go/engine/shadow"
)

type RendererBuilderOption func(*rendererImpl)

// WithShadowManager supplies a pre-configured shadow map manager instead of
// the default one created on the renderer's backend.
//
// Parameters:
//   - m: the shadow manager
//
// Returns:
//   - RendererBuilderOption: a function that sets the shadow manager
func WithShadowManager(m shadow.Manager) RendererBuilderOption {
	return func(r *rendererImpl) {
		r.shadows = m
	}
}

// WithPostProcess attaches a post-processing pipeline.
//
// Parameters:
//   - p: the pipeline
//
// Returns:
//   - RendererBuilderOption: a function that sets the pipeline
func WithPostProcess(p postprocess.Pipeline) RendererBuilderOption {
	return func(r *rendererImpl) {
		r.post = p
	}
}

// WithDepthSort sets the initial far-to-near queue sorting state.
//
// Parameters:
//   - enabled: true to sort the queue
//
// Returns:
//   - RendererBuilderOption: a function that sets the sorting state
func WithDepthSort(enabled bool) RendererBuilderOption {
	return func(r *rendererImpl) {
		r.depthSort = enabled
	}
}

// WithLogSink sets the log sink used for draw and resize diagnostics.
//
// Parameters:
//   - sink: the log sink
//
// Returns:
//   - RendererBuilderOption: a function that sets the sink
func WithLogSink(sink common.LogSink) RendererBuilderOption {
	return func(r *rendererImpl) {
		if sink != nil {
			r.sink = sink
		}
	}
}
