package postprocess

import (
	"github.com/pkg/errors"

	"github.com/emberforge/ember-go/common"
	"github.com/emberforge/ember-go/engine/shader"
)

// Target is an offscreen color render target. The concrete type is owned by
// the renderer backend that allocated it.
type Target interface {
	// Width returns the target width in pixels.
	Width() int

	// Height returns the target height in pixels.
	Height() int

	// Release frees the target's GPU resources. Safe to call once.
	Release()
}

// GPU is the slice of the renderer backend the post-processing pipeline
// consumes: target allocation, plain copies, and fullscreen shader passes.
// A nil output target always means the final backbuffer.
type GPU interface {
	// CreateRenderTarget allocates a color render target of the given size.
	//
	// Parameters:
	//   - width, height: target size in pixels
	//
	// Returns:
	//   - Target: the allocated target
	//   - error: a wrapped allocation or framebuffer-incompleteness error
	CreateRenderTarget(width, height int) (Target, error)

	// Blit copies input to output without running any effect shader.
	//
	// Parameters:
	//   - input: the source target
	//   - output: the destination target, or nil for the backbuffer
	//
	// Returns:
	//   - error: an error if the copy fails
	Blit(input, output Target) error

	// DrawFullscreen runs a fullscreen triangle pass: the effect shader
	// samples the input targets and writes output, with params bound as a
	// uniform blob. The shader's binding convention is: binding 0 the first
	// input texture, binding 1 the sampler, further inputs from binding 2,
	// and the params uniform on the binding after the last texture.
	//
	// Parameters:
	//   - effectShader: the fullscreen fragment program
	//   - inputs: the source targets sampled by the shader, first is primary
	//   - output: the destination target, or nil for the backbuffer
	//   - params: packed uniform bytes, may be nil
	//
	// Returns:
	//   - error: an error if the pass fails
	DrawFullscreen(effectShader shader.Shader, inputs []Target, output Target, params []byte) error
}

// Effect defines the interface for a single post-processing pass. Effects
// read an input target and write an output target; they never render in
// place.
type Effect interface {
	// Name retrieves the effect identifier, unique within a pipeline.
	//
	// Returns:
	//   - string: the effect name
	Name() string

	// Enabled reports whether the effect participates in the pipeline.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// SetEnabled enables or disables the effect.
	//
	// Parameters:
	//   - enabled: the new enabled state
	SetEnabled(enabled bool)

	// Render applies the effect: sample input, write output. Output nil
	// means the final backbuffer.
	//
	// Parameters:
	//   - gpu: the backend slice to issue the pass through
	//   - input: the source target
	//   - output: the destination target, or nil for the backbuffer
	//
	// Returns:
	//   - error: an error if the pass fails
	Render(gpu GPU, input, output Target) error

	// Dispose releases any GPU resources the effect allocated.
	Dispose()
}

type pipelineImpl struct {
	gpu      GPU
	effects  []Effect
	scratchA Target
	scratchB Target
	width    int
	height   int
	enabled  bool
	sink     common.LogSink
}

// Pipeline defines the interface for an ordered chain of post-processing
// effects executed over a pair of ping-pong scratch targets. Each effect
// reads the previous effect's output; the final effect writes the caller's
// output so no extra copy runs at the end of the chain.
type Pipeline interface {
	// Add appends an effect to the end of the chain.
	//
	// Parameters:
	//   - e: the effect to append
	Add(e Effect)

	// Remove removes the named effect from the chain and disposes it.
	//
	// Parameters:
	//   - name: the effect name
	//
	// Returns:
	//   - bool: true when an effect was removed
	Remove(name string) bool

	// Effect retrieves an effect by name.
	//
	// Parameters:
	//   - name: the effect name
	//
	// Returns:
	//   - Effect: the effect, or nil
	//   - bool: false when no effect has the name
	Effect(name string) (Effect, bool)

	// Effects returns the chain in execution order.
	//
	// Returns:
	//   - []Effect: the effects
	Effects() []Effect

	// Enabled reports whether the pipeline runs its effects at all.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// SetEnabled enables or disables the whole pipeline.
	//
	// Parameters:
	//   - enabled: the new enabled state
	SetEnabled(enabled bool)

	// Render runs every enabled effect in order, ping-ponging between the
	// two scratch targets, with the last enabled effect writing output.
	// When the pipeline is disabled or no effect is enabled, input is copied
	// to output without invoking any effect.
	//
	// Parameters:
	//   - input: the rendered scene target
	//   - output: the destination target, or nil for the backbuffer
	//
	// Returns:
	//   - error: the first effect or copy error
	Render(input, output Target) error

	// Resize recreates both scratch targets at the new size. Stale-sized
	// scratch targets would stretch every intermediate pass.
	//
	// Parameters:
	//   - width, height: the new size in pixels
	//
	// Returns:
	//   - error: a fatal allocation error
	Resize(width, height int) error

	// Dispose releases the scratch targets and every effect, in chain order.
	Dispose()
}

var _ Pipeline = &pipelineImpl{}

// NewPipeline creates a post-processing pipeline with scratch targets sized
// width by height.
//
// Parameters:
//   - gpu: the backend slice used for targets and fullscreen passes
//   - width, height: initial scratch target size in pixels
//   - options: functional options to configure the pipeline
//
// Returns:
//   - Pipeline: the newly created pipeline
//   - error: a fatal scratch target allocation error
func NewPipeline(gpu GPU, width, height int, options ...PipelineBuilderOption) (Pipeline, error) {
	p := &pipelineImpl{
		gpu:     gpu,
		width:   width,
		height:  height,
		enabled: true,
		sink:    common.NopSink(),
	}
	for _, option := range options {
		option(p)
	}
	if err := p.allocateScratch(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *pipelineImpl) allocateScratch() error {
	a, err := p.gpu.CreateRenderTarget(p.width, p.height)
	if err != nil {
		return errors.Wrap(err, "postprocess: failed to allocate scratch target A")
	}
	b, err := p.gpu.CreateRenderTarget(p.width, p.height)
	if err != nil {
		a.Release()
		return errors.Wrap(err, "postprocess: failed to allocate scratch target B")
	}
	p.scratchA, p.scratchB = a, b
	return nil
}

func (p *pipelineImpl) Add(e Effect) {
	p.effects = append(p.effects, e)
}

func (p *pipelineImpl) Remove(name string) bool {
	for i, e := range p.effects {
		if e.Name() == name {
			p.effects = append(p.effects[:i], p.effects[i+1:]...)
			e.Dispose()
			return true
		}
	}
	return false
}

func (p *pipelineImpl) Effect(name string) (Effect, bool) {
	for _, e := range p.effects {
		if e.Name() == name {
			return e, true
		}
	}
	return nil, false
}

func (p *pipelineImpl) Effects() []Effect {
	out := make([]Effect, len(p.effects))
	copy(out, p.effects)
	return out
}

func (p *pipelineImpl) Enabled() bool {
	return p.enabled
}

func (p *pipelineImpl) SetEnabled(enabled bool) {
	p.enabled = enabled
}

func (p *pipelineImpl) Render(input, output Target) error {
	var active []Effect
	if p.enabled {
		for _, e := range p.effects {
			if e.Enabled() {
				active = append(active, e)
			}
		}
	}

	// A disabled or empty chain still has to deliver the scene: plain copy,
	// no effect shaders run.
	if len(active) == 0 {
		return p.gpu.Blit(input, output)
	}

	current := input
	scratch := [2]Target{p.scratchA, p.scratchB}
	for i, e := range active {
		dst := output
		if i < len(active)-1 {
			dst = scratch[i%2]
		}
		if err := e.Render(p.gpu, current, dst); err != nil {
			return errors.Wrapf(err, "postprocess: effect %q failed", e.Name())
		}
		current = dst
	}
	return nil
}

func (p *pipelineImpl) Resize(width, height int) error {
	if width == p.width && height == p.height {
		return nil
	}
	p.width, p.height = width, height

	old := [2]Target{p.scratchA, p.scratchB}
	if err := p.allocateScratch(); err != nil {
		return err
	}
	for _, t := range old {
		if t != nil {
			t.Release()
		}
	}
	p.sink.Debugf("postprocess: scratch targets resized to %dx%d", width, height)
	return nil
}

func (p *pipelineImpl) Dispose() {
	for _, e := range p.effects {
		e.Dispose()
	}
	p.effects = nil
	if p.scratchA != nil {
		p.scratchA.Release()
		p.scratchA = nil
	}
	if p.scratchB != nil {
		p.scratchB.Release()
		p.scratchB = nil
	}
}
