package postprocess

import "github.com/emberforge/ember-go/common"

type PipelineBuilderOption func(*pipelineImpl)

// WithEffects appends effects to the chain in the given order.
//
// Parameters:
//   - effects: the effects to append
//
// Returns:
//   - PipelineBuilderOption: a function that appends the effects
func WithEffects(effects ...Effect) PipelineBuilderOption {
	return func(p *pipelineImpl) {
		p.effects = append(p.effects, effects...)
	}
}

// WithEnabled sets the pipeline's initial enabled state.
//
// Parameters:
//   - enabled: true to start enabled
//
// Returns:
//   - PipelineBuilderOption: a function that sets the enabled state
func WithEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipelineImpl) {
		p.enabled = enabled
	}
}

// WithLogSink sets the log sink used for pipeline diagnostics.
//
// Parameters:
//   - sink: the log sink
//
// Returns:
//   - PipelineBuilderOption: a function that sets the sink
func WithLogSink(sink common.LogSink) PipelineBuilderOption {
	return func(p *pipelineImpl) {
		if sink != nil {
			p.sink = sink
		}
	}
}
