package renderer

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/emberforge/ember-go/common"
)

type WGPUBackendBuilderOption func(*wgpuBackend)

// WithDefaultSampler sets the staging configuration for the shared sampler
// used by fullscreen passes. Zero-valued fields keep the linear clamp-to-edge
// defaults.
//
// Parameters:
//   - staging: the sampler configuration
//
// Returns:
//   - WGPUBackendBuilderOption: a function that sets the sampler staging data
func WithDefaultSampler(staging common.SamplerStagingData) WGPUBackendBuilderOption {
	return func(b *wgpuBackend) {
		b.samplerStaging = staging
	}
}

// WithInitialPresentMode sets the present mode used when the surface is
// first configured.
//
// Parameters:
//   - mode: the present mode
//
// Returns:
//   - WGPUBackendBuilderOption: a function that sets the present mode
func WithInitialPresentMode(mode PresentMode) WGPUBackendBuilderOption {
	return func(b *wgpuBackend) {
		switch mode {
		case PresentModeVSync:
			b.presentMode = wgpu.PresentModeFifo
		default:
			b.presentMode = wgpu.PresentModeImmediate
		}
	}
}

// WithBackendLogSink sets the log sink used for backend diagnostics.
//
// Parameters:
//   - sink: the log sink
//
// Returns:
//   - WGPUBackendBuilderOption: a function that sets the sink
func WithBackendLogSink(sink common.LogSink) WGPUBackendBuilderOption {
	return func(b *wgpuBackend) {
		if sink != nil {
			b.sink = sink
		}
	}
}
